package biz

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"scenic-order-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

// memStore 内存版订单/门票存储，复刻数据层的条件更新语义：
// Mark* 在锁内校验前置状态并连带调整库存，前置不满足返回 (false, nil)。
type memStore struct {
	mu      sync.Mutex
	orders  map[string]*Order
	byID    map[uint64]*Order
	tickets map[uint64]*Ticket
	nextID  uint64

	// markExpiredErr 指定订单号的 MarkExpired 强制失败（模拟单条失败）
	markExpiredErr map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		orders:         make(map[string]*Order),
		byID:           make(map[uint64]*Order),
		tickets:        make(map[uint64]*Ticket),
		markExpiredErr: make(map[string]error),
	}
}

func (s *memStore) addTicket(t *Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = t
}

func (s *memStore) ticketSoldCount(id uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets[id].SoldCount
}

func (s *memStore) getStored(orderNo string) *Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[orderNo])
}

func (s *memStore) setExpireTime(orderNo string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[orderNo].ExpireTime = t
}

func cloneOrder(o *Order) *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = make([]*OrderItem, len(o.Items))
	for i, it := range o.Items {
		itc := *it
		c.Items[i] = &itc
	}
	return &c
}

func (s *memStore) CreateOrder(_ context.Context, order *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order.ID = s.nextID
	for _, it := range order.Items {
		s.nextID++
		it.ID = s.nextID
		it.OrderID = order.ID
	}
	stored := cloneOrder(order)
	s.orders[order.OrderNo] = stored
	s.byID[order.ID] = stored
	return nil
}

func (s *memStore) GetOrderByNo(_ context.Context, orderNo string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[orderNo]), nil
}

func (s *memStore) GetOrderByID(_ context.Context, orderID uint64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.byID[orderID]), nil
}

func (s *memStore) GetOrderDetail(ctx context.Context, orderNo string) (*Order, error) {
	return s.GetOrderByNo(ctx, orderNo)
}

func (s *memStore) MarkPaid(_ context.Context, order *Order, payTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.orders[order.OrderNo]
	if stored == nil || stored.Status != OrderStatusPending || !stored.ExpireTime.After(payTime) {
		return false, nil
	}
	stored.Status = OrderStatusPaid
	pt := payTime
	stored.PayTime = &pt
	for _, it := range stored.Items {
		if it.ItemType == OrderTypeTicket {
			if t := s.tickets[it.ItemID]; t != nil {
				t.SoldCount += it.Quantity
			}
		}
	}
	return true, nil
}

func (s *memStore) MarkCancelled(_ context.Context, order *Order, reason string, cancelTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.orders[order.OrderNo]
	if stored == nil || stored.Status != OrderStatusPaid {
		return false, nil
	}
	stored.Status = OrderStatusCancelled
	stored.CancelReason = reason
	ct := cancelTime
	stored.CancelTime = &ct
	for _, it := range stored.Items {
		if it.ItemType == OrderTypeTicket {
			if t := s.tickets[it.ItemID]; t != nil {
				t.SoldCount -= it.Quantity
				if t.SoldCount < 0 {
					t.SoldCount = 0
				}
			}
		}
	}
	return true, nil
}

func (s *memStore) MarkExpired(_ context.Context, order *Order, cancelTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.markExpiredErr[order.OrderNo]; err != nil {
		return false, err
	}
	stored := s.orders[order.OrderNo]
	if stored == nil || stored.Status != OrderStatusPending {
		return false, nil
	}
	stored.Status = OrderStatusCancelled
	stored.CancelReason = constants.CancelReasonTimeout
	ct := cancelTime
	stored.CancelTime = &ct
	return true, nil
}

func (s *memStore) MarkCompleted(_ context.Context, order *Order, completeTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.orders[order.OrderNo]
	if stored == nil || stored.Status != OrderStatusPaid {
		return false, nil
	}
	stored.Status = OrderStatusCompleted
	ct := completeTime
	stored.CompleteTime = &ct
	return true, nil
}

func (s *memStore) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*Order
	for _, o := range s.orders {
		if o.Status == OrderStatusPending && now.After(o.ExpireTime) {
			result = append(result, cloneOrder(o))
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (s *memStore) ListPaidVisitedBefore(_ context.Context, day time.Time, limit int) ([]*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*Order
	for _, o := range s.orders {
		if o.Status == OrderStatusPaid && !o.VisitDate.After(day) {
			result = append(result, cloneOrder(o))
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (s *memStore) ListOrders(_ context.Context, query *OrderListQuery) ([]*Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*Order
	for _, o := range s.orders {
		if o.UserID != query.UserID {
			continue
		}
		if query.Status != "" && o.Status != query.Status {
			continue
		}
		if query.OrderType != "" && o.OrderType != query.OrderType {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	return result, int64(len(result)), nil
}

func (s *memStore) CountByStatus(_ context.Context, userID uint64) (map[OrderStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[OrderStatus]int64)
	for _, o := range s.orders {
		if o.UserID == userID {
			counts[o.Status]++
		}
	}
	return counts, nil
}

func (s *memStore) GetTicket(_ context.Context, ticketID uint64) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tickets[ticketID]
	if t == nil {
		return nil, nil
	}
	c := *t
	return &c, nil
}

// chanDispatcher 把事件写入带缓冲 channel，测试侧用超时读取
type chanDispatcher struct {
	events chan *OrderEvent
}

func newChanDispatcher() *chanDispatcher {
	return &chanDispatcher{events: make(chan *OrderEvent, 16)}
}

func (d *chanDispatcher) Dispatch(_ context.Context, event *OrderEvent) error {
	d.events <- event
	return nil
}

func (d *chanDispatcher) waitFor(t *testing.T, eventType string) *OrderEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-d.events:
			if ev.EventType == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("event %s not dispatched within timeout", eventType)
			return nil
		}
	}
}

func testConfig() *OrderConfig {
	return &OrderConfig{
		ExpireMinutes:  30,
		CancelLeadDays: 1,
		SweepBatchSize: 200,
		DetailCacheTTL: 5 * time.Minute,
	}
}

func newTestUseCase(store *memStore, dispatcher NotificationDispatcher) *OrderUseCase {
	return NewOrderUseCase(store, store, dispatcher, testConfig(), log.NewStdLogger(io.Discard))
}

func enabledTicket(id uint64, price float64) *Ticket {
	return &Ticket{
		ID:           id,
		ScenicSpotID: 1,
		Name:         "故宫成人票",
		Price:        price,
		Status:       constants.TicketStatusEnabled,
	}
}

func createTestOrder(t *testing.T, uc *OrderUseCase, visitDate time.Time) string {
	t.Helper()
	orderNo, err := uc.CreateOrder(context.Background(), 1001, "13800138000", OrderTypeTicket, visitDate,
		[]*CreateOrderItemInput{
			{ItemType: OrderTypeTicket, ItemID: 1, Quantity: 2, Price: 50},
		})
	require.NoError(t, err)
	require.NotEmpty(t, orderNo)
	return orderNo
}

func TestCreateOrder_TotalAmountAndSnapshot(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	uc := newTestUseCase(store, nil)

	visitDate := time.Now().AddDate(0, 0, 3)
	orderNo, err := uc.CreateOrder(context.Background(), 1001, "13800138000", OrderTypeTicket, visitDate,
		[]*CreateOrderItemInput{
			{ItemType: OrderTypeTicket, ItemID: 1, ItemName: "ignored", Quantity: 1, Price: 50},
			{ItemType: OrderTypeCatering, ItemID: 9, ItemName: "午餐套餐", Quantity: 2, Price: 30},
		})
	require.NoError(t, err)

	order, err := uc.GetOrderDetail(context.Background(), orderNo)
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, order.Status)
	require.InDelta(t, 110.0, order.TotalAmount, 1e-9)
	require.Len(t, order.Items, 2)

	// 门票明细以目录为准快照名称和价格
	require.Equal(t, "故宫成人票", order.Items[0].ItemName)
	require.InDelta(t, 50.0, order.Items[0].Price, 1e-9)
	require.InDelta(t, 50.0, order.Items[0].TotalAmount, 1e-9)

	// 非门票明细保留提交值
	require.Equal(t, "午餐套餐", order.Items[1].ItemName)
	require.InDelta(t, 60.0, order.Items[1].TotalAmount, 1e-9)

	// 明细金额之和等于订单总额
	var sum float64
	for _, it := range order.Items {
		sum += it.TotalAmount
	}
	require.InDelta(t, order.TotalAmount, sum, 1e-9)
}

func TestCreateOrder_Validation(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	store.addTicket(&Ticket{ID: 2, ScenicSpotID: 1, Name: "下架票", Price: 20, Status: constants.TicketStatusDisabled})
	uc := newTestUseCase(store, nil)

	ctx := context.Background()
	visitDate := time.Now().AddDate(0, 0, 3)
	validItems := []*CreateOrderItemInput{{ItemType: OrderTypeTicket, ItemID: 1, Quantity: 1, Price: 50}}

	tests := []struct {
		name      string
		orderType OrderType
		visitDate time.Time
		items     []*CreateOrderItemInput
	}{
		{"未知订单类型", OrderType("unknown"), visitDate, validItems},
		{"空明细", OrderTypeTicket, visitDate, nil},
		{"零值游玩日期", OrderTypeTicket, time.Time{}, validItems},
		{"数量非正", OrderTypeTicket, visitDate, []*CreateOrderItemInput{{ItemType: OrderTypeTicket, ItemID: 1, Quantity: 0, Price: 50}}},
		{"未知明细类型", OrderTypeTicket, visitDate, []*CreateOrderItemInput{{ItemType: OrderType("bad"), ItemID: 1, Quantity: 1, Price: 50}}},
		{"门票不存在", OrderTypeTicket, visitDate, []*CreateOrderItemInput{{ItemType: OrderTypeTicket, ItemID: 404, Quantity: 1, Price: 50}}},
		{"门票已下架", OrderTypeTicket, visitDate, []*CreateOrderItemInput{{ItemType: OrderTypeTicket, ItemID: 2, Quantity: 1, Price: 20}}},
		{"提交价与目录价不一致", OrderTypeTicket, visitDate, []*CreateOrderItemInput{{ItemType: OrderTypeTicket, ItemID: 1, Quantity: 1, Price: 49}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateOrder(ctx, 1001, "13800138000", tt.orderType, tt.visitDate, tt.items)
			require.Error(t, err)
		})
	}
}

func TestPayOrder_Success(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	dispatcher := newChanDispatcher()
	uc := newTestUseCase(store, dispatcher)

	orderNo := createTestOrder(t, uc, time.Now().AddDate(0, 0, 3))
	require.NoError(t, uc.PayOrder(context.Background(), orderNo))

	stored := store.getStored(orderNo)
	require.Equal(t, OrderStatusPaid, stored.Status)
	require.NotNil(t, stored.PayTime)
	require.Equal(t, 2, store.ticketSoldCount(1))

	ev := dispatcher.waitFor(t, constants.OrderEventPaid)
	require.Equal(t, orderNo, ev.OrderNo)
	require.NotEmpty(t, ev.EventID)
}

func TestPayOrder_Idempotence(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	uc := newTestUseCase(store, nil)

	orderNo := createTestOrder(t, uc, time.Now().AddDate(0, 0, 3))
	require.NoError(t, uc.PayOrder(context.Background(), orderNo))

	// 重复支付报错，库存不会二次增加
	require.Error(t, uc.PayOrder(context.Background(), orderNo))
	require.Equal(t, 2, store.ticketSoldCount(1))
	require.Equal(t, OrderStatusPaid, store.getStored(orderNo).Status)
}

func TestPayOrder_NotFound(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	uc := newTestUseCase(store, nil)
	require.Error(t, uc.PayOrder(context.Background(), "SO_missing"))
}

func TestPayOrder_LazyExpire(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	uc := newTestUseCase(store, nil)

	orderNo := createTestOrder(t, uc, time.Now().AddDate(0, 0, 3))
	store.setExpireTime(orderNo, time.Now().Add(-time.Minute))

	// 晚到的支付触发惰性过期
	require.Error(t, uc.PayOrder(context.Background(), orderNo))

	stored := store.getStored(orderNo)
	require.Equal(t, OrderStatusCancelled, stored.Status)
	require.Equal(t, constants.CancelReasonTimeout, stored.CancelReason)
	require.Equal(t, 0, store.ticketSoldCount(1))

	// 之后的支付同样失败
	require.Error(t, uc.PayOrder(context.Background(), orderNo))
}

func TestPayOrder_RaceWithExpire(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		store := newMemStore()
		store.addTicket(enabledTicket(1, 50))
		uc := newTestUseCase(store, nil)

		orderNo := createTestOrder(t, uc, time.Now().AddDate(0, 0, 3))
		stored := store.getStored(orderNo)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = uc.PayOrder(context.Background(), orderNo)
		}()
		go func() {
			defer wg.Done()
			_ = uc.CancelExpiredOrder(context.Background(), stored)
		}()
		wg.Wait()

		// 只能有一个赢家：paid 则库存加了一次，cancelled 则库存保持为零
		final := store.getStored(orderNo)
		switch final.Status {
		case OrderStatusPaid:
			require.Equal(t, 2, store.ticketSoldCount(1))
		case OrderStatusCancelled:
			require.Equal(t, 0, store.ticketSoldCount(1))
			require.Equal(t, constants.CancelReasonTimeout, final.CancelReason)
		default:
			t.Fatalf("unexpected final status: %s", final.Status)
		}
	}
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	uc := newTestUseCase(store, nil)
	ctx := context.Background()

	orderNo := createTestOrder(t, uc, time.Now().AddDate(0, 0, 3))

	// 未支付订单不可由用户取消
	require.Error(t, uc.CancelOrder(ctx, orderNo, 1001, "行程有变"))

	require.NoError(t, uc.PayOrder(ctx, orderNo))

	// 非所有者不可取消
	require.Error(t, uc.CancelOrder(ctx, orderNo, 2002, "行程有变"))

	require.NoError(t, uc.CancelOrder(ctx, orderNo, 1001, "行程有变"))

	stored := store.getStored(orderNo)
	require.Equal(t, OrderStatusCancelled, stored.Status)
	require.Equal(t, "行程有变", stored.CancelReason)
	require.NotNil(t, stored.CancelTime)
	// 取消回补库存
	require.Equal(t, 0, store.ticketSoldCount(1))

	// 再次取消报错
	require.Error(t, uc.CancelOrder(ctx, orderNo, 1001, "again"))
}

func TestCancelOrder_CutoffBoundary(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	uc := newTestUseCase(store, nil)
	ctx := context.Background()

	// 提前量 1 天：游玩日期为明天时已到时限，拒绝取消
	tomorrow := createTestOrder(t, uc, time.Now().AddDate(0, 0, 1))
	require.NoError(t, uc.PayOrder(ctx, tomorrow))
	require.Error(t, uc.CancelOrder(ctx, tomorrow, 1001, "too late"))
	require.Equal(t, OrderStatusPaid, store.getStored(tomorrow).Status)

	// 游玩日期为后天时仍可取消
	dayAfter := createTestOrder(t, uc, time.Now().AddDate(0, 0, 2))
	require.NoError(t, uc.PayOrder(ctx, dayAfter))
	require.NoError(t, uc.CancelOrder(ctx, dayAfter, 1001, "in time"))
	require.Equal(t, OrderStatusCancelled, store.getStored(dayAfter).Status)
}

func TestCompleteOrder(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	uc := newTestUseCase(store, nil)
	ctx := context.Background()

	orderNo := createTestOrder(t, uc, time.Now().AddDate(0, 0, 3))
	pending := store.getStored(orderNo)

	// 未支付订单不可完成
	require.Error(t, uc.CompleteOrder(ctx, pending.ID))

	require.NoError(t, uc.PayOrder(ctx, orderNo))
	require.NoError(t, uc.CompleteOrder(ctx, pending.ID))

	stored := store.getStored(orderNo)
	require.Equal(t, OrderStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompleteTime)
	// 完成不回补库存
	require.Equal(t, 2, store.ticketSoldCount(1))

	// 已完成订单不可重复完成
	require.Error(t, uc.CompleteOrder(ctx, pending.ID))
}

func TestListOrders_Validation(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	uc := newTestUseCase(store, nil)
	ctx := context.Background()

	_, _, err := uc.ListOrders(ctx, &OrderListQuery{UserID: 1001, Status: OrderStatus("bogus")})
	require.Error(t, err)

	_, _, err = uc.ListOrders(ctx, &OrderListQuery{UserID: 1001, OrderType: OrderType("bogus")})
	require.Error(t, err)

	// 分页参数修正为默认值/上限
	query := &OrderListQuery{UserID: 1001, Page: 0, PageSize: 0}
	_, _, err = uc.ListOrders(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 1, query.Page)
	require.Equal(t, constants.DefaultPageSize, query.PageSize)

	query = &OrderListQuery{UserID: 1001, Page: 1, PageSize: 9999}
	_, _, err = uc.ListOrders(ctx, query)
	require.NoError(t, err)
	require.Equal(t, constants.MaxPageSize, query.PageSize)
}

func TestCountOrdersByStatus_ZeroFill(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addTicket(enabledTicket(1, 50))
	uc := newTestUseCase(store, nil)
	ctx := context.Background()

	orderNo := createTestOrder(t, uc, time.Now().AddDate(0, 0, 3))
	require.NoError(t, uc.PayOrder(ctx, orderNo))

	counts, err := uc.CountOrdersByStatus(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, counts, 5)
	require.Equal(t, int64(1), counts[OrderStatusPaid])
	require.Equal(t, int64(0), counts[OrderStatusPending])
	require.Equal(t, int64(0), counts[OrderStatusCancelled])
	require.Equal(t, int64(0), counts[OrderStatusRefunded])
	require.Equal(t, int64(0), counts[OrderStatusCompleted])
}

func TestGetOrderDetail_NotFound(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	uc := newTestUseCase(store, nil)

	_, err := uc.GetOrderDetail(context.Background(), "SO_missing")
	require.Error(t, err)
}
