package database

import (
	"errors"
	"fmt"
	"time"

	"walletgate-backend/internal/config"
	"walletgate-backend/internal/types"
	wg_logger "walletgate-backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresConnection 创建PostgreSQL数据库连接
func NewPostgresConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		wg_logger.Error("NewPostgresConnection Error: ", errors.New("failed to connect to database"), "error: ", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层的sql.DB对象进行连接池配置
	sqlDB, err := db.DB()
	if err != nil {
		wg_logger.Error("NewPostgresConnection Error: ", errors.New("failed to get underlying sql.DB"), "error: ", err)
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	wg_logger.Info("NewPostgresConnection: ", "host: ", cfg.Host, "port: ", cfg.Port, "user: ", cfg.User, "dbname: ", cfg.DBName, "sslmode: ", cfg.SSLMode)
	return db, nil
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&types.Account{},
		&types.AddressActivityDB{},
		&types.NotificationChannelDB{},
		&wg_logger.ErrorLog{},
	)
	if err != nil {
		wg_logger.Error("AutoMigrate Error: ", errors.New("failed to migrate database"), "error: ", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	wg_logger.Info("AutoMigrate: ", "database migration completed successfully")
	return nil
}

// CreateIndexes 创建额外的数据库索引
func CreateIndexes(db *gorm.DB) error {
	// 活动表按地址+时间的组合索引，订阅端回放查询使用
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_activities_to_created ON address_activities(to_address, created_at)").Error; err != nil {
		wg_logger.Error("CreateIndexes Error: ", errors.New("failed to create to_address index"), "error: ", err)
		return fmt.Errorf("failed to create to_address index: %w", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_activities_from_created ON address_activities(from_address, created_at)").Error; err != nil {
		wg_logger.Error("CreateIndexes Error: ", errors.New("failed to create from_address index"), "error: ", err)
		return fmt.Errorf("failed to create from_address index: %w", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notification_channels_wallet ON notification_channels(wallet_address, is_active)").Error; err != nil {
		wg_logger.Error("CreateIndexes Error: ", errors.New("failed to create notification_channels index"), "error: ", err)
		return fmt.Errorf("failed to create notification_channels index: %w", err)
	}

	wg_logger.Info("CreateIndexes: ", "database indexes created successfully")
	return nil
}
