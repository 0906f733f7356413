package model

import (
	"time"
)

// Ticket 门票目录表（库存计数归目录侧所有，只由订单生命周期引擎增减）
type Ticket struct {
	TicketID     uint64    `gorm:"primaryKey;column:ticket_id;autoIncrement"`
	ScenicSpotID uint64    `gorm:"not null;index"`
	TicketName   string    `gorm:"type:varchar(128);not null"`
	Price        float64   `gorm:"type:decimal(10,2);not null"`
	Status       int8      `gorm:"not null;default:1"` // 1:上架, 0:下架
	SoldCount    int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Ticket) TableName() string {
	return "ticket"
}
