package biz

import (
	"context"
	"fmt"
	"time"

	"scenic-order-service/internal/constants"
	"scenic-order-service/internal/metrics"

	orderErrors "scenic-order-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// OrderStatus 订单状态（封闭枚举，边界处拒绝未知值）
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = constants.OrderStatusPending
	OrderStatusPaid      OrderStatus = constants.OrderStatusPaid
	OrderStatusCancelled OrderStatus = constants.OrderStatusCancelled
	OrderStatusRefunded  OrderStatus = constants.OrderStatusRefunded
	OrderStatusCompleted OrderStatus = constants.OrderStatusCompleted
)

// Valid 判断是否是已定义的订单状态
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded, OrderStatusCompleted:
		return true
	}
	return false
}

// AllOrderStatuses 返回全部订单状态（用于计数零值填充）
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded, OrderStatusCompleted}
}

// OrderType 订单类型
type OrderType string

const (
	OrderTypeTicket        OrderType = constants.OrderTypeTicket
	OrderTypeAccommodation OrderType = constants.OrderTypeAccommodation
	OrderTypeCatering      OrderType = constants.OrderTypeCatering
	OrderTypeGoods         OrderType = constants.OrderTypeGoods
)

// Valid 判断是否是已定义的订单类型
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeTicket, OrderTypeAccommodation, OrderTypeCatering, OrderTypeGoods:
		return true
	}
	return false
}

// Order 订单领域对象
type Order struct {
	ID           uint64      // 内部订单ID（仅用于关联）
	OrderNo      string      // 订单号（对外业务标识）
	UserID       uint64      // 用户ID
	Phone        string      // 联系电话
	OrderType    OrderType   // 订单类型
	VisitDate    time.Time   // 游玩日期
	TotalAmount  float64     // 订单总金额
	Status       OrderStatus // 订单状态
	PayTime      *time.Time  // 支付时间
	CancelTime   *time.Time  // 取消时间
	CancelReason string      // 取消原因
	RefundTime   *time.Time  // 退款时间
	CompleteTime *time.Time  // 完成时间
	ExpireTime   time.Time   // 支付超时时间（仅 pending 状态有意义）
	CreatedAt    time.Time   // 创建时间
	UpdatedAt    time.Time   // 更新时间
	Items        []*OrderItem
}

// OrderItem 订单明细领域对象（item_name/price 为下单时快照）
type OrderItem struct {
	ID          uint64
	OrderID     uint64
	ItemType    OrderType
	ItemID      uint64
	ItemName    string
	Price       float64
	Quantity    int
	TotalAmount float64
}

// Ticket 门票目录领域对象（目录侧协作方）
type Ticket struct {
	ID           uint64
	ScenicSpotID uint64
	Name         string
	Price        float64
	Status       int8
	SoldCount    int
}

// OrderListQuery 订单列表查询条件
type OrderListQuery struct {
	UserID          uint64
	Status          OrderStatus // 空值表示不过滤
	OrderType       OrderType   // 空值表示不过滤
	CreateTimeStart *time.Time
	CreateTimeEnd   *time.Time
	Page            int
	PageSize        int
}

// OrderRepo 订单数据层接口（定义在 biz 层）
//
// Mark* 系列是带状态前置条件的单次条件更新：状态写入、库存增减在
// 同一事务内提交，缓存失效在事务提交后执行。返回 false 表示前置
// 条件不满足（并发竞争中输掉或状态已变），不是错误。
type OrderRepo interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByNo(ctx context.Context, orderNo string) (*Order, error)
	GetOrderByID(ctx context.Context, orderID uint64) (*Order, error)
	// GetOrderDetail 读详情（经过 order:detail 缓存，写路径只失效不回填）
	GetOrderDetail(ctx context.Context, orderNo string) (*Order, error)
	// MarkPaid pending→paid，同事务内 sold_count += quantity（仅门票明细）
	MarkPaid(ctx context.Context, order *Order, payTime time.Time) (bool, error)
	// MarkCancelled paid→cancelled，同事务内 sold_count -= quantity（下限 0）
	MarkCancelled(ctx context.Context, order *Order, reason string, cancelTime time.Time) (bool, error)
	// MarkExpired pending→cancelled(timeout)，不动库存（订单从未到达 paid）
	MarkExpired(ctx context.Context, order *Order, cancelTime time.Time) (bool, error)
	// MarkCompleted paid→completed
	MarkCompleted(ctx context.Context, order *Order, completeTime time.Time) (bool, error)
	// ListExpiredPending 过期未支付订单，最早过期的在前
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Order, error)
	// ListPaidVisitedBefore 游玩日期已过的已支付订单
	ListPaidVisitedBefore(ctx context.Context, day time.Time, limit int) ([]*Order, error)
	ListOrders(ctx context.Context, query *OrderListQuery) ([]*Order, int64, error)
	CountByStatus(ctx context.Context, userID uint64) (map[OrderStatus]int64, error)
}

// TicketRepo 门票目录数据层接口
type TicketRepo interface {
	GetTicket(ctx context.Context, ticketID uint64) (*Ticket, error)
}

// CreateOrderItemInput 下单明细入参（price 用于与目录价比对，防篡改）
type CreateOrderItemInput struct {
	ItemType OrderType
	ItemID   uint64
	ItemName string
	Quantity int
	Price    float64
}

// OrderUseCase 订单生命周期引擎
type OrderUseCase struct {
	repo       OrderRepo
	ticketRepo TicketRepo
	dispatcher NotificationDispatcher
	conf       *OrderConfig
	log        *log.Helper
	metrics    *metrics.OrderMetrics
}

// NewOrderUseCase 创建订单 UseCase
func NewOrderUseCase(
	repo OrderRepo,
	ticketRepo TicketRepo,
	dispatcher NotificationDispatcher,
	conf *OrderConfig,
	logger log.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repo:       repo,
		ticketRepo: ticketRepo,
		dispatcher: dispatcher,
		conf:       conf,
		log:        log.NewHelper(logger),
		metrics:    metrics.GetMetrics(),
	}
}

// CreateOrder 创建订单
// 门票明细校验目录存在性、上架状态和提交价与目录价一致；订单与明细
// 在一个事务内落库，初始状态 pending，expire_time = now + 支付时限。
func (uc *OrderUseCase) CreateOrder(ctx context.Context, userID uint64, phone string, orderType OrderType, visitDate time.Time, items []*CreateOrderItemInput) (string, error) {
	startTime := time.Now()

	if !orderType.Valid() {
		return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderTypeInvalid)
	}
	if len(items) == 0 {
		return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderItemsInvalid)
	}
	if visitDate.IsZero() {
		return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderVisitDateInvalid)
	}

	now := time.Now()
	order := &Order{
		OrderNo:    fmt.Sprintf("%s%d_%d", constants.OrderNoPrefix, userID, now.UnixNano()),
		UserID:     userID,
		Phone:      phone,
		OrderType:  orderType,
		VisitDate:  dateOnly(visitDate),
		Status:     OrderStatusPending,
		ExpireTime: now.Add(time.Duration(uc.conf.ExpireMinutes) * time.Minute),
	}

	var total float64
	for _, in := range items {
		if !in.ItemType.Valid() {
			return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderItemsInvalid)
		}
		if in.Quantity <= 0 {
			return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderItemsInvalid)
		}

		item := &OrderItem{
			ItemType: in.ItemType,
			ItemID:   in.ItemID,
			ItemName: in.ItemName,
			Price:    in.Price,
			Quantity: in.Quantity,
		}

		// 门票明细按目录校验并快照
		if in.ItemType == OrderTypeTicket {
			ticket, err := uc.ticketRepo.GetTicket(ctx, in.ItemID)
			if err != nil {
				uc.log.Errorf("GetTicket failed: ticket_id=%d, error=%v", in.ItemID, err)
				return "", pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeTicketGetFailed)
			}
			if ticket == nil {
				return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeTicketNotFound)
			}
			if ticket.Status != constants.TicketStatusEnabled {
				return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeTicketDisabled)
			}
			if in.Price != ticket.Price {
				uc.log.Warnf("ticket price mismatch: ticket_id=%d, submitted=%.2f, catalog=%.2f", in.ItemID, in.Price, ticket.Price)
				return "", pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeTicketPriceMismatch)
			}
			item.ItemName = ticket.Name
			item.Price = ticket.Price
		}

		item.TotalAmount = item.Price * float64(item.Quantity)
		total += item.TotalAmount
		order.Items = append(order.Items, item)
	}
	order.TotalAmount = total

	if err := uc.repo.CreateOrder(ctx, order); err != nil {
		uc.log.Errorf("CreateOrder failed: %v", err)
		if uc.metrics != nil {
			uc.metrics.OrderCreateTotal.WithLabelValues("failed").Inc()
		}
		return "", pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderCreateFailed)
	}

	if uc.metrics != nil {
		uc.metrics.OrderCreateTotal.WithLabelValues("success").Inc()
		uc.metrics.OrderAmount.WithLabelValues(string(orderType)).Add(total)
		uc.metrics.OrderCreateDuration.Observe(time.Since(startTime).Seconds())
	}

	uc.log.Infof("Order created: order_no=%s, user_id=%d, total=%.2f, expire_time=%s",
		order.OrderNo, userID, total, order.ExpireTime.Format(constants.TimeFormatDateTime))
	return order.OrderNo, nil
}

// PayOrder 支付订单（模拟支付：直接状态翻转）
// 过期的 pending 订单在此处走与扫描任务相同的超时取消路径（惰性过期）。
// 状态翻转和库存增量通过一次条件更新落库，重复支付不会二次加库存。
func (uc *OrderUseCase) PayOrder(ctx context.Context, orderNo string) error {
	startTime := time.Now()

	order, err := uc.repo.GetOrderByNo(ctx, orderNo)
	if err != nil {
		uc.log.Errorf("GetOrderByNo failed: order_no=%s, error=%v", orderNo, err)
		return pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderGetFailed)
	}
	if order == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotFound)
	}

	now := time.Now()

	switch order.Status {
	case OrderStatusPending:
		// 继续
	case OrderStatusPaid, OrderStatusCompleted:
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderAlreadyPaid)
	case OrderStatusCancelled, OrderStatusRefunded:
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderAlreadyCancelled)
	default:
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderStatusInvalid)
	}

	if now.After(order.ExpireTime) {
		// 晚到的支付视作一次惰性过期
		if err := uc.CancelExpiredOrder(ctx, order); err != nil {
			uc.log.Errorf("lazy expire failed: order_no=%s, error=%v", orderNo, err)
		}
		if uc.metrics != nil {
			uc.metrics.OrderPayTotal.WithLabelValues("expired").Inc()
		}
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderExpired)
	}

	ok, err := uc.repo.MarkPaid(ctx, order, now)
	if err != nil {
		uc.log.Errorf("MarkPaid failed: order_no=%s, error=%v", orderNo, err)
		if uc.metrics != nil {
			uc.metrics.OrderPayTotal.WithLabelValues("failed").Inc()
		}
		return pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderUpdateFailed)
	}
	if !ok {
		// 条件更新没有命中：并发方（扫描任务或另一次支付）先赢了
		if uc.metrics != nil {
			uc.metrics.OrderPayTotal.WithLabelValues("conflict").Inc()
		}
		current, err := uc.repo.GetOrderByNo(ctx, orderNo)
		if err == nil && current != nil {
			switch current.Status {
			case OrderStatusPaid, OrderStatusCompleted:
				return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderAlreadyPaid)
			case OrderStatusCancelled, OrderStatusRefunded:
				return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderExpired)
			}
		}
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderStatusInvalid)
	}

	if uc.metrics != nil {
		uc.metrics.OrderPayTotal.WithLabelValues("success").Inc()
		uc.metrics.OrderPayDuration.Observe(time.Since(startTime).Seconds())
	}

	uc.log.Infof("Order paid: order_no=%s, user_id=%d, total=%.2f", order.OrderNo, order.UserID, order.TotalAmount)
	uc.notifyAsync(order, constants.OrderEventPaid, now)
	return nil
}

// CancelOrder 用户取消订单
// 仅已支付订单可由用户取消，且必须满足提前量：按日历日比较，
// 今天 + cancel_lead_days >= 游玩日期 时拒绝（含当天边界）。
func (uc *OrderUseCase) CancelOrder(ctx context.Context, orderNo string, userID uint64, reason string) error {
	order, err := uc.repo.GetOrderByNo(ctx, orderNo)
	if err != nil {
		uc.log.Errorf("GetOrderByNo failed: order_no=%s, error=%v", orderNo, err)
		return pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderGetFailed)
	}
	if order == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotFound)
	}
	if order.UserID != userID {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotOwner)
	}
	if order.Status != OrderStatusPaid {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotPaid)
	}

	now := time.Now()
	cutoff := dateOnly(now).AddDate(0, 0, uc.conf.CancelLeadDays)
	if !cutoff.Before(dateOnly(order.VisitDate)) {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderCancelCutoff)
	}

	ok, err := uc.repo.MarkCancelled(ctx, order, reason, now)
	if err != nil {
		uc.log.Errorf("MarkCancelled failed: order_no=%s, error=%v", orderNo, err)
		return pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderUpdateFailed)
	}
	if !ok {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotPaid)
	}

	if uc.metrics != nil {
		uc.metrics.OrderCancelTotal.WithLabelValues("user").Inc()
	}

	uc.log.Infof("Order cancelled by user: order_no=%s, user_id=%d, reason=%s", orderNo, userID, reason)
	uc.notifyAsync(order, constants.OrderEventRefunded, now)
	return nil
}

// CancelExpiredOrder 超时取消（仅系统调用：扫描任务或支付时惰性触发）
// 订单从未到达 paid，不做任何库存调整。
func (uc *OrderUseCase) CancelExpiredOrder(ctx context.Context, order *Order) error {
	now := time.Now()
	ok, err := uc.repo.MarkExpired(ctx, order, now)
	if err != nil {
		return pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderUpdateFailed)
	}
	if !ok {
		// 竞争中被支付或已被其他扫描实例取消，保持现状
		uc.log.Infof("skip expire: order_no=%s no longer pending", order.OrderNo)
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.OrderCancelTotal.WithLabelValues("timeout").Inc()
	}

	uc.log.Infof("Order expired: order_no=%s, expire_time=%s", order.OrderNo, order.ExpireTime.Format(constants.TimeFormatDateTime))
	uc.notifyAsync(order, constants.OrderEventExpired, now)
	return nil
}

// CompleteOrder 将已支付订单置为完成（游玩日期已过的扫描任务或管理操作）
func (uc *OrderUseCase) CompleteOrder(ctx context.Context, orderID uint64) error {
	order, err := uc.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderGetFailed)
	}
	if order == nil {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotFound)
	}
	if order.Status != OrderStatusPaid {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotPaid)
	}

	now := time.Now()
	ok, err := uc.repo.MarkCompleted(ctx, order, now)
	if err != nil {
		return pkgErrors.WrapErrorWithLang(ctx, err, orderErrors.ErrCodeOrderUpdateFailed)
	}
	if !ok {
		return pkgErrors.NewBizErrorWithLang(ctx, orderErrors.ErrCodeOrderNotPaid)
	}

	uc.log.Infof("Order completed: order_no=%s", order.OrderNo)
	uc.notifyAsync(order, constants.OrderEventCompleted, now)
	return nil
}

// notifyAsync 通知分发（fire-and-forget，失败只记日志）
func (uc *OrderUseCase) notifyAsync(order *Order, eventType string, occurTime time.Time) {
	if uc.dispatcher == nil {
		return
	}
	event := &OrderEvent{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		OrderNo:     order.OrderNo,
		UserID:      order.UserID,
		OrderType:   string(order.OrderType),
		TotalAmount: order.TotalAmount,
		VisitDate:   order.VisitDate.Format(constants.TimeFormatDate),
		OccurTime:   occurTime,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := uc.dispatcher.Dispatch(ctx, event); err != nil {
			uc.log.Warnf("dispatch %s failed: order_no=%s, error=%v", eventType, event.OrderNo, err)
		}
	}()
}

// dateOnly 截断到日历日（取消时限按日期而不是 24 小时间隔比较）
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
