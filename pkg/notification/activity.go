package notification

// ActivityMessage 推送给外部渠道的地址活动内容
// 字段与Relay事件对齐，渠道发送器各自负责转成自家的消息格式
type ActivityMessage struct {
	Category    string
	FromAddress string
	ToAddress   string
}
