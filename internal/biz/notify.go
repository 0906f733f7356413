package biz

import (
	"context"
	"time"
)

// OrderEvent 订单事件（支付成功/退款/完成/超时取消后分发）
// event_id 供下游消费端去重，通知本身不保证恰好一次。
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderNo     string    `json:"order_no"`
	UserID      uint64    `json:"user_id"`
	OrderType   string    `json:"order_type"`
	TotalAmount float64   `json:"total_amount"`
	VisitDate   string    `json:"visit_date"`
	OccurTime   time.Time `json:"occur_time"`
}

// NotificationDispatcher 通知分发接口（fire-and-forget，不保证送达）
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, event *OrderEvent) error
}
