package biz

import (
	"context"
	"time"

	"scenic-order-service/internal/constants"
	"scenic-order-service/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

// OrderSweeper 订单扫描任务
// 两个定时任务共用同一个生命周期引擎：超时扫描取消过期未支付订单，
// 完成扫描把游玩日期已过的已支付订单置为完成。单个订单失败只记日志
// 继续下一个，下一轮扫描会重新选中它。
type OrderSweeper struct {
	uc      *OrderUseCase
	repo    OrderRepo
	rs      *redsync.Redsync
	conf    *OrderConfig
	log     *log.Helper
	metrics *metrics.OrderMetrics
}

// NewOrderSweeper 创建订单扫描任务
func NewOrderSweeper(uc *OrderUseCase, repo OrderRepo, rs *redsync.Redsync, conf *OrderConfig, logger log.Logger) *OrderSweeper {
	return &OrderSweeper{
		uc:      uc,
		repo:    repo,
		rs:      rs,
		conf:    conf,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// SweepExpiredOrders 扫描并取消过期未支付订单
// 返回本轮成功取消的订单数。每个订单独立一个事务，绝不跨批持有事务。
func (s *OrderSweeper) SweepExpiredOrders(ctx context.Context) (int, error) {
	unlock, ok := s.tryLock(ctx, constants.RedisKeySweepExpireLock)
	if !ok {
		return 0, nil
	}
	defer unlock()

	startTime := time.Now()
	now := time.Now()

	orders, err := s.repo.ListExpiredPending(ctx, now, s.conf.SweepBatchSize)
	if err != nil {
		s.log.Errorf("ListExpiredPending failed: %v", err)
		return 0, err
	}

	count := 0
	for _, order := range orders {
		if err := s.uc.CancelExpiredOrder(ctx, order); err != nil {
			// 单个失败不中断批次，下一轮扫描会再次选中
			s.log.Errorf("expire order failed: order_no=%s, error=%v", order.OrderNo, err)
			if s.metrics != nil {
				s.metrics.SweepTotal.WithLabelValues("expire", "failed").Inc()
			}
			continue
		}
		count++
		if s.metrics != nil {
			s.metrics.SweepTotal.WithLabelValues("expire", "success").Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.SweepDuration.WithLabelValues("expire").Observe(time.Since(startTime).Seconds())
	}
	if len(orders) > 0 {
		s.log.Infof("expire sweep done: selected=%d, cancelled=%d", len(orders), count)
	}
	return count, nil
}

// SweepCompletedOrders 扫描并完成游玩日期已过的已支付订单
// 只选 paid 状态，completed 订单不会被重复处理。
func (s *OrderSweeper) SweepCompletedOrders(ctx context.Context) (int, error) {
	unlock, ok := s.tryLock(ctx, constants.RedisKeySweepCompleteLock)
	if !ok {
		return 0, nil
	}
	defer unlock()

	startTime := time.Now()
	yesterday := dateOnly(time.Now()).AddDate(0, 0, -1)

	orders, err := s.repo.ListPaidVisitedBefore(ctx, yesterday, s.conf.SweepBatchSize)
	if err != nil {
		s.log.Errorf("ListPaidVisitedBefore failed: %v", err)
		return 0, err
	}

	count := 0
	for _, order := range orders {
		if err := s.uc.CompleteOrder(ctx, order.ID); err != nil {
			s.log.Errorf("complete order failed: order_no=%s, error=%v", order.OrderNo, err)
			if s.metrics != nil {
				s.metrics.SweepTotal.WithLabelValues("complete", "failed").Inc()
			}
			continue
		}
		count++
		if s.metrics != nil {
			s.metrics.SweepTotal.WithLabelValues("complete", "success").Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.SweepDuration.WithLabelValues("complete").Observe(time.Since(startTime).Seconds())
	}
	if len(orders) > 0 {
		s.log.Infof("complete sweep done: selected=%d, completed=%d", len(orders), count)
	}
	return count, nil
}

// tryLock 获取扫描任务的分布式锁，防止多实例重复扫描
// 未配置 redsync 时（单元测试、单机部署）直接放行。
func (s *OrderSweeper) tryLock(ctx context.Context, key string) (func(), bool) {
	if s.rs == nil {
		return func() {}, true
	}

	mutex := s.rs.NewMutex(
		key,
		redsync.WithExpiry(5*time.Minute),
		redsync.WithTries(1), // 只尝试一次，拿不到说明有实例正在扫描
	)
	if err := mutex.LockContext(ctx); err != nil {
		s.log.Infof("skip sweep: lock %s busy", key)
		if s.metrics != nil {
			s.metrics.SweepLockAcquireTotal.WithLabelValues("busy").Inc()
		}
		return nil, false
	}
	if s.metrics != nil {
		s.metrics.SweepLockAcquireTotal.WithLabelValues("success").Inc()
	}

	return func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			s.log.Warnf("failed to unlock %s: %v", key, err)
		}
	}, true
}
