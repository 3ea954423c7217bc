package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	activityRepo "walletgate-backend/internal/repository/activity"
	"walletgate-backend/internal/service/relay"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"
)

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrMissingBody      = errors.New("missing request body")
	ErrInvalidSignature = errors.New("signature verification failed")
	ErrMalformedBody    = errors.New("malformed webhook body")
)

// Publisher 事件发布接口（Relay实现）
type Publisher interface {
	Publish(ctx context.Context, trigger relay.SubscriptionName, event *types.NormalizedEvent) error
}

// Processor Webhook处理器：验签 -> 规范化 -> 发布 -> 落库
type Processor struct {
	verifier     *SignatureVerifier
	publisher    Publisher
	activityRepo activityRepo.Repository
}

// NewProcessor 创建Webhook处理器
// activityRepo 可以为nil（不落库，仅中继）
func NewProcessor(verifier *SignatureVerifier, publisher Publisher, activityRepo activityRepo.Repository) *Processor {
	return &Processor{
		verifier:     verifier,
		publisher:    publisher,
		activityRepo: activityRepo,
	}
}

// Process 处理一次Webhook调用
// 返回的错误仅用于运维日志，HTTP层统一折叠为500，不向调用方泄露细节
func (p *Processor) Process(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if len(rawBody) == 0 {
		return ErrMissingBody
	}
	if signatureHeader == "" {
		return ErrMissingSignature
	}

	if !p.verifier.Verify(rawBody, signatureHeader) {
		return ErrInvalidSignature
	}

	var body types.WebhookRequestBody
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	event := Normalize(&body)
	if event == nil {
		// 没有活动可处理也算成功接收
		logger.Info("Webhook delivered no activity", "webhook_id", body.WebhookID)
		return nil
	}

	// 目前只中继第一条活动，后续条目被丢弃
	// 监控服务若开始批量推送多条相关活动，这里的告警会先暴露出来
	if dropped := len(body.Event.Activity) - 1; dropped > 0 {
		logger.Warn("Webhook carried multiple activities, only the first is relayed",
			"webhook_id", body.WebhookID, "dropped", dropped)
	}

	if err := p.publisher.Publish(ctx, relay.TriggerAddressUpdated, event); err != nil {
		return fmt.Errorf("failed to publish address activity: %w", err)
	}

	// 落库失败只记日志，不影响对发送方的应答
	if p.activityRepo != nil {
		if err := p.activityRepo.Create(ctx, toActivityRecord(&body)); err != nil {
			logger.Error("Failed to persist address activity", err, "webhook_id", body.WebhookID)
		}
	}

	logger.Info("Webhook processed",
		"webhook_id", body.WebhookID,
		"network", body.Event.Network,
		"category", event.Event,
		"from", event.FromAddress,
		"to", event.ToAddress)
	return nil
}

// toActivityRecord 将Webhook第一条活动转换为数据库记录
func toActivityRecord(body *types.WebhookRequestBody) *types.AddressActivityDB {
	first := body.Event.Activity[0]
	return &types.AddressActivityDB{
		WebhookID:     body.WebhookID,
		EventID:       body.ID,
		Network:       body.Event.Network,
		Category:      string(first.Category),
		FromAddress:   first.FromAddress,
		ToAddress:     first.ToAddress,
		Asset:         first.Asset,
		Value:         first.Value,
		Erc721TokenID: first.Erc721TokenID,
		TxHash:        first.Hash,
		RawValue:      first.RawContract.RawValue,
		RawAddress:    first.RawContract.Address,
		RawDecimal:    first.RawContract.Decimal,
	}
}
