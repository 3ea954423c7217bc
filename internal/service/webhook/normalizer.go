package webhook

import (
	"walletgate-backend/internal/types"
)

// Normalize 从Webhook请求体中提取规范化事件
// 只取 activity 的第一条（按发送方投递顺序），没有活动时返回 nil
// value/hash/asset 等字段在这一层被有意丢弃，Relay 的payload保持最小
func Normalize(body *types.WebhookRequestBody) *types.NormalizedEvent {
	if body == nil || len(body.Event.Activity) == 0 {
		return nil
	}

	first := body.Event.Activity[0]
	return &types.NormalizedEvent{
		Event:       first.Category,
		FromAddress: first.FromAddress,
		ToAddress:   first.ToAddress,
	}
}
