package types

import "time"

// Account 账户数据库模型
type Account struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	WalletAddress string    `json:"wallet_address" gorm:"size:42;not null;uniqueIndex"`
	DisplayName   *string   `json:"display_name" gorm:"size:100"`
	AvatarURL     *string   `json:"avatar_url" gorm:"type:text"`
	Email         *string   `json:"email" gorm:"size:255"`
	Nonce         string    `json:"-" gorm:"size:64;not null"`
	Status        int       `json:"status" gorm:"not null;default:1"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 设置表名
func (Account) TableName() string {
	return "accounts"
}

// NonceRequest 获取签名挑战请求
type NonceRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// NonceResponse 签名挑战响应
type NonceResponse struct {
	WalletAddress string `json:"wallet_address"`
	Nonce         string `json:"nonce"`
	Message       string `json:"message"` // 待签名的完整消息
}

// WalletConnectRequest 钱包连接认证请求
type WalletConnectRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
}

// WalletConnectResponse 钱包连接认证响应
type WalletConnectResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    int64           `json:"expires_at"`
	Account      *AccountProfile `json:"account"`
}

// RefreshTokenRequest 刷新Token请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AccountProfile 账户资料
type AccountProfile struct {
	WalletAddress string  `json:"wallet_address"`
	DisplayName   *string `json:"display_name"`
	AvatarURL     *string `json:"avatar_url"`
	Email         *string `json:"email"`
	CreatedAt     int64   `json:"created_at"`
}

// UpdateProfileRequest 更新账户资料请求
// 不需要更新的字段可以不填
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Email       *string `json:"email"`
}
