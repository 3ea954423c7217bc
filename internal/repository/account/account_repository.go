package account

import (
	"context"

	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"gorm.io/gorm"
)

// Repository 账户数据库操作接口
type Repository interface {
	GetByWalletAddress(ctx context.Context, walletAddress string) (*types.Account, error)
	Create(ctx context.Context, account *types.Account) error
	Update(ctx context.Context, account *types.Account) error
	UpdateNonce(ctx context.Context, walletAddress, nonce string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建账户仓库
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetByWalletAddress 按钱包地址查询账户（大小写不敏感）
func (r *repository) GetByWalletAddress(ctx context.Context, walletAddress string) (*types.Account, error) {
	var account types.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(wallet_address) = LOWER(?)", walletAddress).
		First(&account).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to get account", err, "wallet_address", walletAddress)
		return nil, err
	}
	return &account, nil
}

// Create 创建账户
func (r *repository) Create(ctx context.Context, account *types.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		logger.Error("Failed to create account", err, "wallet_address", account.WalletAddress)
		return err
	}
	return nil
}

// Update 更新账户
func (r *repository) Update(ctx context.Context, account *types.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		logger.Error("Failed to update account", err, "wallet_address", account.WalletAddress)
		return err
	}
	return nil
}

// UpdateNonce 更新签名挑战nonce
func (r *repository) UpdateNonce(ctx context.Context, walletAddress, nonce string) error {
	err := r.db.WithContext(ctx).Model(&types.Account{}).
		Where("LOWER(wallet_address) = LOWER(?)", walletAddress).
		Update("nonce", nonce).Error
	if err != nil {
		logger.Error("Failed to update nonce", err, "wallet_address", walletAddress)
		return err
	}
	return nil
}
