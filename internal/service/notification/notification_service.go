package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	notificationRepo "walletgate-backend/internal/repository/notification"
	"walletgate-backend/internal/service/relay"
	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"
	notificationPkg "walletgate-backend/pkg/notification"
)

var (
	ErrChannelExists   = errors.New("notification channel already exists")
	ErrChannelNotFound = errors.New("notification channel not found")
	ErrInvalidChannel  = errors.New("invalid channel type")
)

// Service 通知服务接口
type Service interface {
	// 渠道配置管理
	CreateChannel(ctx context.Context, walletAddress string, req *types.CreateNotificationRequest) error
	UpdateChannel(ctx context.Context, walletAddress string, req *types.UpdateNotificationRequest) error
	DeleteChannel(ctx context.Context, walletAddress string, req *types.DeleteNotificationRequest) error
	ListChannels(ctx context.Context, walletAddress string) (*types.NotificationChannelListResponse, error)

	// 通过Relay消费地址活动并推送
	Start() error
	Stop()
}

type service struct {
	repo          notificationRepo.Repository
	relay         *relay.Relay
	slackSender   *notificationPkg.SlackSender
	discordSender *notificationPkg.DiscordSender

	subscriptionID int64
}

// NewService 创建通知服务
func NewService(repo notificationRepo.Repository, r *relay.Relay) Service {
	return &service{
		repo:          repo,
		relay:         r,
		slackSender:   notificationPkg.NewSlackSender(),
		discordSender: notificationPkg.NewDiscordSender(),
	}
}

// Start 在Relay上注册地址活动订阅
func (s *service) Start() error {
	id, err := s.relay.Subscribe(relay.TriggerAddressUpdated, s.handleAddressActivity)
	if err != nil {
		return fmt.Errorf("failed to subscribe notification service: %w", err)
	}
	s.subscriptionID = id
	logger.Info("Notification service subscribed", "subscription_id", id)
	return nil
}

// Stop 注销订阅
func (s *service) Stop() {
	if s.subscriptionID != 0 {
		s.relay.Unsubscribe(s.subscriptionID)
		s.subscriptionID = 0
	}
}

// handleAddressActivity Relay回调：向事件涉及地址的启用渠道推送消息
// 投递是at-least-once的，重复回调只会重复推送同一条文本，可接受
func (s *service) handleAddressActivity(event *types.NormalizedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	channels, err := s.repo.GetActiveByAddresses(ctx, []string{event.FromAddress, event.ToAddress})
	if err != nil {
		logger.Error("Failed to load notification channels for event", err, "from", event.FromAddress, "to", event.ToAddress)
		return
	}
	if len(channels) == 0 {
		return
	}

	activity := &notificationPkg.ActivityMessage{
		Category:    string(event.Event),
		FromAddress: event.FromAddress,
		ToAddress:   event.ToAddress,
	}
	for _, channel := range channels {
		if err := s.send(&channel, activity); err != nil {
			logger.Error("Failed to push notification", err,
				"wallet_address", channel.WalletAddress, "channel", channel.Channel, "name", channel.Name)
		}
	}
}

// send 按渠道类型推送
func (s *service) send(channel *types.NotificationChannelDB, activity *notificationPkg.ActivityMessage) error {
	switch channel.Channel {
	case "slack":
		return s.slackSender.SendActivity(channel.WebhookURL, activity)
	case "discord":
		return s.discordSender.SendActivity(channel.WebhookURL, activity)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidChannel, channel.Channel)
	}
}

// ===== 渠道配置管理 =====

// CreateChannel 创建通知渠道
func (s *service) CreateChannel(ctx context.Context, walletAddress string, req *types.CreateNotificationRequest) error {
	channelType := strings.ToLower(req.Channel)
	if channelType != "slack" && channelType != "discord" {
		return fmt.Errorf("%w: %s", ErrInvalidChannel, req.Channel)
	}

	existing, err := s.repo.GetByWalletAndName(ctx, walletAddress, req.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrChannelExists
	}

	return s.repo.Create(ctx, &types.NotificationChannelDB{
		WalletAddress: strings.ToLower(walletAddress),
		Name:          req.Name,
		Channel:       channelType,
		WebhookURL:    req.WebhookURL,
		IsActive:      true,
	})
}

// UpdateChannel 更新通知渠道
// 不需要更新的字段可以不填
func (s *service) UpdateChannel(ctx context.Context, walletAddress string, req *types.UpdateNotificationRequest) error {
	if req.WebhookURL == nil && req.IsActive == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	channel, err := s.repo.GetByWalletAndName(ctx, walletAddress, req.Name)
	if err != nil {
		return err
	}
	if channel == nil {
		return ErrChannelNotFound
	}

	if req.WebhookURL != nil {
		channel.WebhookURL = *req.WebhookURL
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}

	return s.repo.Update(ctx, channel)
}

// DeleteChannel 删除通知渠道
func (s *service) DeleteChannel(ctx context.Context, walletAddress string, req *types.DeleteNotificationRequest) error {
	channel, err := s.repo.GetByWalletAndName(ctx, walletAddress, req.Name)
	if err != nil {
		return err
	}
	if channel == nil {
		return ErrChannelNotFound
	}
	return s.repo.Delete(ctx, walletAddress, req.Name)
}

// ListChannels 查询账户全部通知渠道
func (s *service) ListChannels(ctx context.Context, walletAddress string) (*types.NotificationChannelListResponse, error) {
	channels, err := s.repo.GetAllByWallet(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	return &types.NotificationChannelListResponse{
		Total:    int64(len(channels)),
		Channels: channels,
	}, nil
}
