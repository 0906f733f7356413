package service

import (
	"time"

	"scenic-order-service/internal/biz"
	"scenic-order-service/internal/constants"

	orderErrors "scenic-order-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// OrderService 订单 HTTP 服务
type OrderService struct {
	uc  *biz.OrderUseCase
	log *log.Helper
}

// NewOrderService 创建 OrderService
func NewOrderService(uc *biz.OrderUseCase, logger log.Logger) *OrderService {
	return &OrderService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// CreateOrder 创建订单
// POST /api/v1/order/create
func (s *OrderService) CreateOrder(ctx http.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if req.UserID == 0 || req.OrderType == "" || req.VisitDate == "" || len(req.OrderItems) == 0 {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
	}

	visitDate, err := time.ParseInLocation(constants.TimeFormatDate, req.VisitDate, time.Local)
	if err != nil {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderVisitDateInvalid)
	}

	items := make([]*biz.CreateOrderItemInput, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		items = append(items, &biz.CreateOrderItemInput{
			ItemType: biz.OrderType(item.ItemType),
			ItemID:   item.ItemID,
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	orderNo, err := s.uc.CreateOrder(ctx, req.UserID, req.Phone, biz.OrderType(req.OrderType), visitDate, items)
	if err != nil {
		s.log.Errorf("CreateOrder failed: user_id=%d, error=%v", req.UserID, err)
		return err
	}

	return ctx.Result(200, &CreateOrderReply{OrderNo: orderNo})
}

// PayOrder 支付订单（模拟支付）
// POST /api/v1/order/pay?orderNo=...
func (s *OrderService) PayOrder(ctx http.Context) error {
	var req PayOrderRequest
	if err := ctx.BindQuery(&req); err != nil {
		return err
	}
	if req.OrderNo == "" {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
	}

	if err := s.uc.PayOrder(ctx, req.OrderNo); err != nil {
		s.log.Errorf("PayOrder failed: order_no=%s, error=%v", req.OrderNo, err)
		return err
	}

	return ctx.Result(200, &EmptyReply{})
}

// CancelOrder 用户取消订单
// POST /api/v1/order/cancel
func (s *OrderService) CancelOrder(ctx http.Context) error {
	var req CancelOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if req.UserID == 0 || req.OrderNo == "" {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
	}

	if err := s.uc.CancelOrder(ctx, req.OrderNo, req.UserID, req.CancelReason); err != nil {
		s.log.Errorf("CancelOrder failed: order_no=%s, user_id=%d, error=%v", req.OrderNo, req.UserID, err)
		return err
	}

	return ctx.Result(200, &EmptyReply{})
}

// GetOrderDetail 获取订单详情
// GET /api/v1/order/detail?orderNo=...
func (s *OrderService) GetOrderDetail(ctx http.Context) error {
	var req OrderDetailRequest
	if err := ctx.BindQuery(&req); err != nil {
		return err
	}
	if req.OrderNo == "" {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
	}

	order, err := s.uc.GetOrderDetail(ctx, req.OrderNo)
	if err != nil {
		return err
	}

	return ctx.Result(200, toOrderDetailReply(order))
}

// ListOrders 分页查询订单列表
// GET /api/v1/order/list?userId=...
func (s *OrderService) ListOrders(ctx http.Context) error {
	var req OrderListRequest
	if err := ctx.BindQuery(&req); err != nil {
		return err
	}
	if req.UserID == 0 {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
	}

	query := &biz.OrderListQuery{
		UserID:    req.UserID,
		Status:    biz.OrderStatus(req.OrderStatus),
		OrderType: biz.OrderType(req.OrderType),
		Page:      req.PageNumber,
		PageSize:  req.PageSize,
	}
	if req.CreateTimeStart != "" {
		t, err := time.ParseInLocation(constants.TimeFormatDateTime, req.CreateTimeStart, time.Local)
		if err != nil {
			return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
		}
		query.CreateTimeStart = &t
	}
	if req.CreateTimeEnd != "" {
		t, err := time.ParseInLocation(constants.TimeFormatDateTime, req.CreateTimeEnd, time.Local)
		if err != nil {
			return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
		}
		query.CreateTimeEnd = &t
	}

	orders, total, err := s.uc.ListOrders(ctx, query)
	if err != nil {
		return err
	}

	reply := &OrderListReply{
		Total:      total,
		PageNumber: query.Page,
		PageSize:   query.PageSize,
		Orders:     make([]*OrderSummary, 0, len(orders)),
	}
	for _, order := range orders {
		reply.Orders = append(reply.Orders, toOrderSummary(order))
	}

	return ctx.Result(200, reply)
}

// CountOrders 按状态统计订单数（五个状态全量返回，零值填充）
// GET /api/v1/order/count?userId=...
func (s *OrderService) CountOrders(ctx http.Context) error {
	var req OrderCountRequest
	if err := ctx.BindQuery(&req); err != nil {
		return err
	}
	if req.UserID == 0 {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeParamInvalid)
	}

	counts, err := s.uc.CountOrdersByStatus(ctx, req.UserID)
	if err != nil {
		return err
	}

	reply := make(map[string]int64, len(counts))
	for status, count := range counts {
		reply[string(status)] = count
	}
	return ctx.Result(200, reply)
}
