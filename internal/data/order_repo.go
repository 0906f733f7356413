package data

import (
	"context"
	"errors"
	"time"

	"scenic-order-service/internal/biz"
	"scenic-order-service/internal/constants"
	"scenic-order-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// errPrecondition 条件更新未命中（状态前置条件不满足），不是基础设施错误
var errPrecondition = errors.New("order status precondition failed")

// orderRepo 订单相关数据访问
type orderRepo struct {
	data *Data
	conf *biz.OrderConfig
	log  *log.Helper
}

// NewOrderRepo 创建订单 repo（返回 biz.OrderRepo 接口）
func NewOrderRepo(data *Data, conf *biz.OrderConfig, logger log.Logger) biz.OrderRepo {
	return &orderRepo{
		data: data,
		conf: conf,
		log:  log.NewHelper(logger),
	}
}

// CreateOrder 创建订单及明细（单事务）
func (r *orderRepo) CreateOrder(ctx context.Context, order *biz.Order) error {
	return r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := model.Order{
			OrderNo:     order.OrderNo,
			UserID:      order.UserID,
			Phone:       order.Phone,
			OrderType:   string(order.OrderType),
			VisitDate:   order.VisitDate,
			TotalAmount: order.TotalAmount,
			OrderStatus: model.OrderStatusPending,
			ExpireTime:  order.ExpireTime,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, model.OrderItem{
				OrderID:     m.OrderID,
				ItemType:    string(item.ItemType),
				ItemID:      item.ItemID,
				ItemName:    item.ItemName,
				Price:       item.Price,
				Quantity:    item.Quantity,
				TotalAmount: item.TotalAmount,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		order.ID = m.OrderID
		for i, item := range items {
			order.Items[i].ID = item.OrderItemID
			order.Items[i].OrderID = m.OrderID
		}
		return nil
	})
}

// GetOrderByNo 通过订单号查询订单（含明细，直读库）
func (r *orderRepo) GetOrderByNo(ctx context.Context, orderNo string) (*biz.Order, error) {
	var m model.Order
	if err := r.data.db.WithContext(ctx).Preload("Items").
		Where("order_no = ?", orderNo).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toBizOrder(&m), nil
}

// GetOrderByID 通过内部ID查询订单（含明细）
func (r *orderRepo) GetOrderByID(ctx context.Context, orderID uint64) (*biz.Order, error) {
	var m model.Order
	if err := r.data.db.WithContext(ctx).Preload("Items").
		Where("order_id = ?", orderID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toBizOrder(&m), nil
}

// MarkPaid pending→paid 条件更新，同事务内为门票明细累加 sold_count
// 条件里带 expire_time > payTime，和扫描任务的超时取消互斥：
// 同一订单最终只会有一个赢家。
func (r *orderRepo) MarkPaid(ctx context.Context, order *biz.Order, payTime time.Time) (bool, error) {
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("order_no = ? AND order_status = ? AND expire_time > ?",
				order.OrderNo, model.OrderStatusPending, payTime).
			Updates(map[string]interface{}{
				"order_status": model.OrderStatusPaid,
				"pay_time":     payTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPrecondition
		}

		for _, item := range order.Items {
			if item.ItemType != biz.OrderTypeTicket {
				continue
			}
			if err := tx.Model(&model.Ticket{}).
				Where("ticket_id = ?", item.ItemID).
				Update("sold_count", gorm.Expr("sold_count + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errPrecondition) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// 事务提交后失效缓存
	r.invalidateOrderCache(order.OrderNo)
	r.invalidateTicketCaches(order.Items)
	return true, nil
}

// MarkCancelled paid→cancelled 条件更新，同事务内释放门票库存（下限 0）
func (r *orderRepo) MarkCancelled(ctx context.Context, order *biz.Order, reason string, cancelTime time.Time) (bool, error) {
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("order_no = ? AND order_status = ?", order.OrderNo, model.OrderStatusPaid).
			Updates(map[string]interface{}{
				"order_status":  model.OrderStatusCancelled,
				"cancel_time":   cancelTime,
				"cancel_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errPrecondition
		}

		for _, item := range order.Items {
			if item.ItemType != biz.OrderTypeTicket {
				continue
			}
			// 下限 0，防御重复取消或计数漂移
			if err := tx.Model(&model.Ticket{}).
				Where("ticket_id = ?", item.ItemID).
				Update("sold_count", gorm.Expr("GREATEST(sold_count - ?, 0)", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errPrecondition) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.invalidateOrderCache(order.OrderNo)
	r.invalidateTicketCaches(order.Items)
	return true, nil
}

// MarkExpired pending→cancelled(timeout) 条件更新，不调整库存
func (r *orderRepo) MarkExpired(ctx context.Context, order *biz.Order, cancelTime time.Time) (bool, error) {
	res := r.data.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_no = ? AND order_status = ?", order.OrderNo, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"order_status":  model.OrderStatusCancelled,
			"cancel_time":   cancelTime,
			"cancel_reason": constants.CancelReasonTimeout,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	r.invalidateOrderCache(order.OrderNo)
	return true, nil
}

// MarkCompleted paid→completed 条件更新
func (r *orderRepo) MarkCompleted(ctx context.Context, order *biz.Order, completeTime time.Time) (bool, error) {
	res := r.data.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND order_status = ?", order.ID, model.OrderStatusPaid).
		Updates(map[string]interface{}{
			"order_status":  model.OrderStatusCompleted,
			"complete_time": completeTime,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	r.invalidateOrderCache(order.OrderNo)
	return true, nil
}

// ListExpiredPending 过期未支付订单，最早过期的在前
func (r *orderRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*biz.Order, error) {
	var models []model.Order
	if err := r.data.db.WithContext(ctx).
		Where("order_status = ? AND expire_time < ?", model.OrderStatusPending, now).
		Order("expire_time ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toBizOrders(models), nil
}

// ListPaidVisitedBefore 游玩日期不晚于 day 的已支付订单
func (r *orderRepo) ListPaidVisitedBefore(ctx context.Context, day time.Time, limit int) ([]*biz.Order, error) {
	var models []model.Order
	if err := r.data.db.WithContext(ctx).
		Where("order_status = ? AND visit_date <= ?", model.OrderStatusPaid, day).
		Order("visit_date ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toBizOrders(models), nil
}

// ListOrders 分页查询用户订单（不含明细）
func (r *orderRepo) ListOrders(ctx context.Context, query *biz.OrderListQuery) ([]*biz.Order, int64, error) {
	db := r.data.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", query.UserID)
	if query.Status != "" {
		db = db.Where("order_status = ?", string(query.Status))
	}
	if query.OrderType != "" {
		db = db.Where("order_type = ?", string(query.OrderType))
	}
	if query.CreateTimeStart != nil {
		db = db.Where("created_at >= ?", *query.CreateTimeStart)
	}
	if query.CreateTimeEnd != nil {
		db = db.Where("created_at <= ?", *query.CreateTimeEnd)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []model.Order
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	return toBizOrders(models), total, nil
}

// CountByStatus 按状态统计用户订单数
func (r *orderRepo) CountByStatus(ctx context.Context, userID uint64) (map[biz.OrderStatus]int64, error) {
	var rows []struct {
		OrderStatus string
		Cnt         int64
	}
	if err := r.data.db.WithContext(ctx).Model(&model.Order{}).
		Select("order_status, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group("order_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[biz.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[biz.OrderStatus(row.OrderStatus)] = row.Cnt
	}
	return counts, nil
}

func toBizOrder(m *model.Order) *biz.Order {
	order := &biz.Order{
		ID:           m.OrderID,
		OrderNo:      m.OrderNo,
		UserID:       m.UserID,
		Phone:        m.Phone,
		OrderType:    biz.OrderType(m.OrderType),
		VisitDate:    m.VisitDate,
		TotalAmount:  m.TotalAmount,
		Status:       biz.OrderStatus(m.OrderStatus),
		PayTime:      m.PayTime,
		CancelTime:   m.CancelTime,
		CancelReason: m.CancelReason,
		RefundTime:   m.RefundTime,
		CompleteTime: m.CompleteTime,
		ExpireTime:   m.ExpireTime,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, item := range m.Items {
		order.Items = append(order.Items, &biz.OrderItem{
			ID:          item.OrderItemID,
			OrderID:     item.OrderID,
			ItemType:    biz.OrderType(item.ItemType),
			ItemID:      item.ItemID,
			ItemName:    item.ItemName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			TotalAmount: item.TotalAmount,
		})
	}
	return order
}

func toBizOrders(models []model.Order) []*biz.Order {
	orders := make([]*biz.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toBizOrder(&models[i]))
	}
	return orders
}
