package model

import (
	"time"

	"scenic-order-service/internal/constants"
)

// 订单状态常量（引用 constants 包中的常量，保持一致性）
const (
	OrderStatusPending   = constants.OrderStatusPending   // 待支付
	OrderStatusPaid      = constants.OrderStatusPaid      // 已支付
	OrderStatusCancelled = constants.OrderStatusCancelled // 已取消
	OrderStatusRefunded  = constants.OrderStatusRefunded  // 已退款
	OrderStatusCompleted = constants.OrderStatusCompleted // 已完成
)

// Order 订单表
// 订单行只做状态原地更新，从不删除；order_no 是对外的业务标识，
// order_id 仅用于内部关联。
type Order struct {
	OrderID      uint64     `gorm:"primaryKey;column:order_id;autoIncrement"`
	OrderNo      string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	UserID       uint64     `gorm:"not null;index"`
	Phone        string     `gorm:"type:varchar(20)"`
	OrderType    string     `gorm:"type:varchar(20);not null"`
	VisitDate    time.Time  `gorm:"type:date;not null;index"`
	TotalAmount  float64    `gorm:"type:decimal(10,2);not null"`
	OrderStatus  string     `gorm:"type:enum('pending','paid','cancelled','refunded','completed');not null;default:'pending';index:idx_status_expire"`
	PayTime      *time.Time `gorm:""`
	CancelTime   *time.Time `gorm:""`
	CancelReason string     `gorm:"type:varchar(255)"`
	RefundTime   *time.Time `gorm:""`
	CompleteTime *time.Time `gorm:""`
	ExpireTime   time.Time  `gorm:"not null;index:idx_status_expire"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:OrderID"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
