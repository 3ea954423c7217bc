package types

import "time"

// AddressActivityDB 地址活动数据库模型
// 每次验签通过的 webhook 调用落一条记录
type AddressActivityDB struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	WebhookID     string    `json:"webhook_id" gorm:"size:128;not null;index"`
	EventID       string    `json:"event_id" gorm:"size:128;not null"`
	Network       string    `json:"network" gorm:"size:32;not null;index"`
	Category      string    `json:"category" gorm:"size:20;not null"`
	FromAddress   string    `json:"from_address" gorm:"size:42;not null;index"`
	ToAddress     string    `json:"to_address" gorm:"size:42;not null;index"`
	Asset         string    `json:"asset" gorm:"size:32;not null"`
	Value         *float64  `json:"value"`
	Erc721TokenID *string   `json:"erc721_token_id" gorm:"size:78"`
	TxHash        string    `json:"tx_hash" gorm:"size:66;not null;index"`
	RawValue      *string   `json:"raw_value" gorm:"size:78"`
	RawAddress    *string   `json:"raw_address" gorm:"size:42"`
	RawDecimal    *string   `json:"raw_decimal" gorm:"size:8"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;default:now()"`
}

// TableName 设置表名
func (AddressActivityDB) TableName() string {
	return "address_activities"
}

// ActivityListResponse 活动列表响应
type ActivityListResponse struct {
	Total      int64               `json:"total"`
	Activities []AddressActivityDB `json:"activities"`
}
