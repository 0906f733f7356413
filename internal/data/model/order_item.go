package model

import (
	"time"
)

// OrderItem 订单明细表
// item_name 和 price 是下单时从目录快照下来的，与目录后续改价解耦。
type OrderItem struct {
	OrderItemID uint64    `gorm:"primaryKey;column:order_item_id;autoIncrement"`
	OrderID     uint64    `gorm:"not null;index"`
	ItemType    string    `gorm:"type:varchar(20);not null"`
	ItemID      uint64    `gorm:"not null"`
	ItemName    string    `gorm:"type:varchar(128);not null"`
	Price       float64   `gorm:"type:decimal(10,2);not null"`
	Quantity    int       `gorm:"not null"`
	TotalAmount float64   `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_item"
}
