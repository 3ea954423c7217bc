package types

// ActivityCategory 地址活动分类
type ActivityCategory string

const (
	ActivityCategoryToken    ActivityCategory = "token"
	ActivityCategoryInternal ActivityCategory = "internal"
	ActivityCategoryExternal ActivityCategory = "external"
)

// WebhookRequestBody 地址监控服务推送的 Webhook 请求体
type WebhookRequestBody struct {
	WebhookID string       `json:"webhookId"`
	ID        string       `json:"id"`
	CreatedAt string       `json:"createdAt"`
	Type      string       `json:"type"`
	Event     WebHookEvent `json:"event"`
}

// WebHookEvent Webhook 事件内容
type WebHookEvent struct {
	Network  string                   `json:"network"`
	Activity []WebHookAddressActivity `json:"activity"`
}

// WebHookAddressActivity 单条地址活动
type WebHookAddressActivity struct {
	Category      ActivityCategory `json:"category"` // token, internal, external
	FromAddress   string           `json:"fromAddress"`
	ToAddress     string           `json:"toAddress"`
	Erc721TokenID *string          `json:"erc721TokenId,omitempty"`
	Value         *float64         `json:"value,omitempty"`
	Asset         string           `json:"asset"`
	RawContract   RawContract      `json:"rawContract"`
	Hash          string           `json:"hash"` // 交易哈希
}

// RawContract 活动关联的合约原始信息
type RawContract struct {
	RawValue *string `json:"rawValue,omitempty"`
	Address  *string `json:"address,omitempty"`
	Decimal  *string `json:"decimal,omitempty"`
}

// NormalizedEvent 发布到 Relay 的规范化事件
// 只保留订阅端需要的最小字段，payload 形状变化即为破坏性变更
type NormalizedEvent struct {
	Event       ActivityCategory `json:"event"`
	FromAddress string           `json:"fromAddress"`
	ToAddress   string           `json:"toAddress"`
}
