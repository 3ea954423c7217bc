package types

import "time"

// NotificationChannelDB 账户通知渠道数据库模型
type NotificationChannelDB struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	WalletAddress string    `json:"wallet_address" gorm:"size:42;not null;index"`
	Name          string    `json:"name" gorm:"size:100;not null"`
	Channel       string    `json:"channel" gorm:"size:20;not null"` // slack, discord
	WebhookURL    string    `json:"webhook_url" gorm:"type:text;not null"`
	IsActive      bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 设置表名
func (NotificationChannelDB) TableName() string {
	return "notification_channels"
}

// CreateNotificationRequest 创建通知渠道请求
type CreateNotificationRequest struct {
	Name       string `json:"name" binding:"required"`
	Channel    string `json:"channel" binding:"required"` // slack, discord
	WebhookURL string `json:"webhook_url" binding:"required"`
}

// UpdateNotificationRequest 更新通知渠道请求
// 不需要更新的字段可以不填
type UpdateNotificationRequest struct {
	Name       string  `json:"name" binding:"required"`
	WebhookURL *string `json:"webhook_url"`
	IsActive   *bool   `json:"is_active"`
}

// DeleteNotificationRequest 删除通知渠道请求
type DeleteNotificationRequest struct {
	Name string `json:"name" binding:"required"`
}

// NotificationChannelListResponse 通知渠道列表响应
type NotificationChannelListResponse struct {
	Total    int64                   `json:"total"`
	Channels []NotificationChannelDB `json:"channels"`
}
