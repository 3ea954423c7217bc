package notification

import (
	"context"
	"strings"

	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"gorm.io/gorm"
)

// Repository 通知渠道数据库操作接口
type Repository interface {
	Create(ctx context.Context, channel *types.NotificationChannelDB) error
	GetByWalletAndName(ctx context.Context, walletAddress, name string) (*types.NotificationChannelDB, error)
	GetAllByWallet(ctx context.Context, walletAddress string) ([]types.NotificationChannelDB, error)
	GetActiveByAddresses(ctx context.Context, addresses []string) ([]types.NotificationChannelDB, error)
	Update(ctx context.Context, channel *types.NotificationChannelDB) error
	Delete(ctx context.Context, walletAddress, name string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建通知渠道仓库
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create 创建通知渠道
func (r *repository) Create(ctx context.Context, channel *types.NotificationChannelDB) error {
	if err := r.db.WithContext(ctx).Create(channel).Error; err != nil {
		logger.Error("Failed to create notification channel", err, "wallet_address", channel.WalletAddress, "name", channel.Name)
		return err
	}
	return nil
}

// GetByWalletAndName 按账户和名称查询渠道
func (r *repository) GetByWalletAndName(ctx context.Context, walletAddress, name string) (*types.NotificationChannelDB, error) {
	var channel types.NotificationChannelDB
	err := r.db.WithContext(ctx).
		Where("LOWER(wallet_address) = LOWER(?) AND name = ?", walletAddress, name).
		First(&channel).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to get notification channel", err, "wallet_address", walletAddress, "name", name)
		return nil, err
	}
	return &channel, nil
}

// GetAllByWallet 查询账户的全部渠道
func (r *repository) GetAllByWallet(ctx context.Context, walletAddress string) ([]types.NotificationChannelDB, error) {
	var channels []types.NotificationChannelDB
	err := r.db.WithContext(ctx).
		Where("LOWER(wallet_address) = LOWER(?)", walletAddress).
		Order("created_at ASC").
		Find(&channels).Error
	if err != nil {
		logger.Error("Failed to list notification channels", err, "wallet_address", walletAddress)
		return nil, err
	}
	return channels, nil
}

// GetActiveByAddresses 查询一批地址的启用渠道（事件涉及的from/to地址）
func (r *repository) GetActiveByAddresses(ctx context.Context, addresses []string) ([]types.NotificationChannelDB, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	lowered := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		lowered = append(lowered, strings.ToLower(addr))
	}

	var channels []types.NotificationChannelDB
	err := r.db.WithContext(ctx).
		Where("LOWER(wallet_address) IN ?", lowered).
		Where("is_active = ?", true).
		Find(&channels).Error
	if err != nil {
		logger.Error("Failed to query active notification channels", err)
		return nil, err
	}
	return channels, nil
}

// Update 更新通知渠道
func (r *repository) Update(ctx context.Context, channel *types.NotificationChannelDB) error {
	if err := r.db.WithContext(ctx).Save(channel).Error; err != nil {
		logger.Error("Failed to update notification channel", err, "wallet_address", channel.WalletAddress, "name", channel.Name)
		return err
	}
	return nil
}

// Delete 删除通知渠道
func (r *repository) Delete(ctx context.Context, walletAddress, name string) error {
	err := r.db.WithContext(ctx).
		Where("LOWER(wallet_address) = LOWER(?) AND name = ?", walletAddress, name).
		Delete(&types.NotificationChannelDB{}).Error
	if err != nil {
		logger.Error("Failed to delete notification channel", err, "wallet_address", walletAddress, "name", name)
		return err
	}
	return nil
}
