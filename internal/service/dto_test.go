package service

import (
	"testing"
	"time"

	"scenic-order-service/internal/biz"

	"github.com/stretchr/testify/require"
)

func TestToOrderDetailReply(t *testing.T) {
	t.Parallel()

	payTime := time.Date(2026, 8, 20, 10, 30, 0, 0, time.Local)
	order := &biz.Order{
		OrderNo:     "SO1001_123",
		UserID:      1001,
		Phone:       "13800138000",
		OrderType:   biz.OrderTypeTicket,
		Status:      biz.OrderStatusPaid,
		VisitDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local),
		TotalAmount: 110,
		PayTime:     &payTime,
		ExpireTime:  time.Date(2026, 8, 20, 10, 45, 0, 0, time.Local),
		CreatedAt:   time.Date(2026, 8, 20, 10, 15, 0, 0, time.Local),
		Items: []*biz.OrderItem{
			{ItemType: biz.OrderTypeTicket, ItemID: 1, ItemName: "故宫成人票", Price: 50, Quantity: 1, TotalAmount: 50},
			{ItemType: biz.OrderTypeCatering, ItemID: 9, ItemName: "午餐套餐", Price: 30, Quantity: 2, TotalAmount: 60},
		},
	}

	reply := toOrderDetailReply(order)
	require.Equal(t, "SO1001_123", reply.OrderNo)
	require.Equal(t, "paid", reply.OrderStatus)
	require.Equal(t, "2026-09-01", reply.VisitDate)
	require.Equal(t, "2026-08-20 10:30:00", reply.PayTime)
	require.Empty(t, reply.CancelTime)
	require.Len(t, reply.OrderItems, 2)
	require.Equal(t, "故宫成人票", reply.OrderItems[0].ItemName)

	// 仅待支付订单展示支付截止时间
	require.Empty(t, reply.ExpireTime)
	order.Status = biz.OrderStatusPending
	require.Equal(t, "2026-08-20 10:45:00", toOrderDetailReply(order).ExpireTime)
}

func TestToOrderSummary(t *testing.T) {
	t.Parallel()

	order := &biz.Order{
		OrderNo:     "SO1001_456",
		OrderType:   biz.OrderTypeTicket,
		Status:      biz.OrderStatusCompleted,
		VisitDate:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.Local),
		TotalAmount: 50,
		CreatedAt:   time.Date(2026, 8, 10, 9, 0, 0, 0, time.Local),
	}

	summary := toOrderSummary(order)
	require.Equal(t, "SO1001_456", summary.OrderNo)
	require.Equal(t, "completed", summary.OrderStatus)
	require.Equal(t, "2026-08-15", summary.VisitDate)
	require.Equal(t, "2026-08-10 09:00:00", summary.CreateTime)
}
