package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
	Relay        RelayConfig        `mapstructure:"relay"`
	KMS          KMSConfig          `mapstructure:"kms"`
	Notification NotificationConfig `mapstructure:"notification"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	AccessExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
}

// WebhookConfig Webhook 验签配置
type WebhookConfig struct {
	SigningKey      string `mapstructure:"signing_key"`      // 与地址监控服务共享的 HMAC 密钥
	SignatureHeader string `mapstructure:"signature_header"` // 签名所在的请求头
}

// RelayConfig Pub/Sub Relay 配置
// Topic 与 Group 需要在 Redis 中预先创建好，Relay 只做按名解析
type RelayConfig struct {
	Topics         map[string]string `mapstructure:"topics"` // trigger -> stream key
	Groups         map[string]string `mapstructure:"groups"` // trigger -> consumer group
	CallTimeout    time.Duration     `mapstructure:"call_timeout"`
	BlockInterval  time.Duration     `mapstructure:"block_interval"`   // XREADGROUP 阻塞时长
	ReclaimMinIdle time.Duration     `mapstructure:"reclaim_min_idle"` // pending 消息重投最小空闲时长
}

// KMSConfig 签名微服务配置
type KMSConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig 加载配置
// 优先级：环境变量 > config.yaml > 默认值
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// 环境变量覆盖，如 WALLETGATE_SERVER_PORT
	viper.SetEnvPrefix("WALLETGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// 配置文件缺失时使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Webhook.SigningKey == "" {
		return nil, fmt.Errorf("webhook signing key is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.dbname", "walletgate")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("jwt.access_expiry", "24h")
	viper.SetDefault("jwt.refresh_expiry", "168h")

	viper.SetDefault("webhook.signature_header", "X-Signature")

	viper.SetDefault("relay.topics", map[string]string{
		"address_updated": "walletgate:address-activity",
	})
	viper.SetDefault("relay.groups", map[string]string{
		"address_updated": "walletgate-subscribers",
	})
	viper.SetDefault("relay.call_timeout", "10s")
	viper.SetDefault("relay.block_interval", "5s")
	viper.SetDefault("relay.reclaim_min_idle", "30s")

	viper.SetDefault("kms.timeout", "30s")

	viper.SetDefault("notification.enabled", true)
}
