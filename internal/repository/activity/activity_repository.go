package activity

import (
	"context"

	"walletgate-backend/internal/types"
	"walletgate-backend/pkg/logger"

	"gorm.io/gorm"
)

// Repository 地址活动数据库操作接口
type Repository interface {
	Create(ctx context.Context, record *types.AddressActivityDB) error
	GetByAddress(ctx context.Context, address string, offset, limit int) ([]types.AddressActivityDB, int64, error)
	GetByTxHash(ctx context.Context, txHash string) (*types.AddressActivityDB, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建活动仓库
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create 写入一条活动记录
func (r *repository) Create(ctx context.Context, record *types.AddressActivityDB) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		logger.Error("Failed to create address activity", err, "tx_hash", record.TxHash)
		return err
	}
	return nil
}

// GetByAddress 按地址查询活动（from或to匹配，大小写不敏感），按时间倒序分页
func (r *repository) GetByAddress(ctx context.Context, address string, offset, limit int) ([]types.AddressActivityDB, int64, error) {
	query := r.db.WithContext(ctx).Model(&types.AddressActivityDB{}).
		Where("LOWER(from_address) = LOWER(?) OR LOWER(to_address) = LOWER(?)", address, address)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count address activities", err, "address", address)
		return nil, 0, err
	}

	var activities []types.AddressActivityDB
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&activities).Error
	if err != nil {
		logger.Error("Failed to query address activities", err, "address", address)
		return nil, 0, err
	}

	return activities, total, nil
}

// GetByTxHash 按交易哈希查询单条活动
func (r *repository) GetByTxHash(ctx context.Context, txHash string) (*types.AddressActivityDB, error) {
	var record types.AddressActivityDB
	err := r.db.WithContext(ctx).
		Where("LOWER(tx_hash) = LOWER(?)", txHash).
		First(&record).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to get activity by tx hash", err, "tx_hash", txHash)
		return nil, err
	}
	return &record, nil
}
