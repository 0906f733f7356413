package service

import (
	"time"

	"scenic-order-service/internal/biz"
	"scenic-order-service/internal/constants"
)

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	UserID     uint64                 `json:"userId"`
	Phone      string                 `json:"phone"`
	OrderType  string                 `json:"orderType"`
	VisitDate  string                 `json:"visitDate"` // YYYY-MM-DD
	OrderItems []CreateOrderItemInput `json:"orderItems"`
}

// CreateOrderItemInput 创建订单明细入参
type CreateOrderItemInput struct {
	ItemType string  `json:"itemType"`
	ItemID   uint64  `json:"itemId"`
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CreateOrderReply 创建订单响应
type CreateOrderReply struct {
	OrderNo string `json:"orderNo"`
}

// PayOrderRequest 支付订单请求
type PayOrderRequest struct {
	OrderNo string `json:"orderNo"`
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	UserID       uint64 `json:"userId"`
	OrderNo      string `json:"orderNo"`
	CancelReason string `json:"cancelReason"`
}

// OrderDetailRequest 订单详情请求
type OrderDetailRequest struct {
	OrderNo string `json:"orderNo"`
}

// OrderListRequest 订单列表请求
type OrderListRequest struct {
	UserID          uint64 `json:"userId"`
	OrderStatus     string `json:"orderStatus"`
	OrderType       string `json:"orderType"`
	CreateTimeStart string `json:"createTimeStart"`
	CreateTimeEnd   string `json:"createTimeEnd"`
	PageNumber      int    `json:"pageNumber"`
	PageSize        int    `json:"pageSize"`
}

// OrderCountRequest 订单计数请求
type OrderCountRequest struct {
	UserID uint64 `json:"userId"`
}

// EmptyReply 空响应
type EmptyReply struct{}

// OrderItemVO 订单明细视图
type OrderItemVO struct {
	ItemType    string  `json:"itemType"`
	ItemID      uint64  `json:"itemId"`
	ItemName    string  `json:"itemName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"totalAmount"`
}

// OrderDetailReply 订单详情视图（含明细）
type OrderDetailReply struct {
	OrderNo      string         `json:"orderNo"`
	UserID       uint64         `json:"userId"`
	Phone        string         `json:"phone,omitempty"`
	OrderType    string         `json:"orderType"`
	OrderStatus  string         `json:"orderStatus"`
	VisitDate    string         `json:"visitDate"`
	TotalAmount  float64        `json:"totalAmount"`
	PayTime      string         `json:"payTime,omitempty"`
	CancelTime   string         `json:"cancelTime,omitempty"`
	CancelReason string         `json:"cancelReason,omitempty"`
	RefundTime   string         `json:"refundTime,omitempty"`
	CompleteTime string         `json:"completeTime,omitempty"`
	ExpireTime   string         `json:"expireTime,omitempty"`
	CreateTime   string         `json:"createTime"`
	OrderItems   []*OrderItemVO `json:"orderItems"`
}

// OrderSummary 订单列表条目（不含明细）
type OrderSummary struct {
	OrderNo     string  `json:"orderNo"`
	OrderType   string  `json:"orderType"`
	OrderStatus string  `json:"orderStatus"`
	VisitDate   string  `json:"visitDate"`
	TotalAmount float64 `json:"totalAmount"`
	CreateTime  string  `json:"createTime"`
}

// OrderListReply 订单列表响应
type OrderListReply struct {
	Total      int64           `json:"total"`
	PageNumber int             `json:"pageNumber"`
	PageSize   int             `json:"pageSize"`
	Orders     []*OrderSummary `json:"orders"`
}

func toOrderDetailReply(order *biz.Order) *OrderDetailReply {
	reply := &OrderDetailReply{
		OrderNo:      order.OrderNo,
		UserID:       order.UserID,
		Phone:        order.Phone,
		OrderType:    string(order.OrderType),
		OrderStatus:  string(order.Status),
		VisitDate:    order.VisitDate.Format(constants.TimeFormatDate),
		TotalAmount:  order.TotalAmount,
		PayTime:      formatTimePtr(order.PayTime),
		CancelTime:   formatTimePtr(order.CancelTime),
		CancelReason: order.CancelReason,
		RefundTime:   formatTimePtr(order.RefundTime),
		CompleteTime: formatTimePtr(order.CompleteTime),
		CreateTime:   order.CreatedAt.Format(constants.TimeFormatDateTime),
		OrderItems:   make([]*OrderItemVO, 0, len(order.Items)),
	}
	if order.Status == biz.OrderStatusPending {
		reply.ExpireTime = order.ExpireTime.Format(constants.TimeFormatDateTime)
	}
	for _, item := range order.Items {
		reply.OrderItems = append(reply.OrderItems, &OrderItemVO{
			ItemType:    string(item.ItemType),
			ItemID:      item.ItemID,
			ItemName:    item.ItemName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			TotalAmount: item.TotalAmount,
		})
	}
	return reply
}

func toOrderSummary(order *biz.Order) *OrderSummary {
	return &OrderSummary{
		OrderNo:     order.OrderNo,
		OrderType:   string(order.OrderType),
		OrderStatus: string(order.Status),
		VisitDate:   order.VisitDate.Format(constants.TimeFormatDate),
		TotalAmount: order.TotalAmount,
		CreateTime:  order.CreatedAt.Format(constants.TimeFormatDateTime),
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(constants.TimeFormatDateTime)
}
