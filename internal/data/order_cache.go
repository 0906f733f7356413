package data

import (
	"context"
	"encoding/json"
	"time"

	"scenic-order-service/internal/biz"
	"scenic-order-service/internal/constants"
)

// 订单详情缓存：读路径回填，写路径只失效不更新，
// 缓存未命中退化为库读，不构成正确性问题。

// GetOrderDetail 读订单详情（经过缓存）
func (r *orderRepo) GetOrderDetail(ctx context.Context, orderNo string) (*biz.Order, error) {
	key := constants.RedisKeyOrderDetail + orderNo
	if raw, err := r.data.rdb.Get(ctx, key).Result(); err == nil {
		var cached biz.Order
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	order, err := r.GetOrderByNo(ctx, orderNo)
	if err != nil || order == nil {
		return order, err
	}

	// 回填缓存（异步，不阻塞，设置超时避免长时间等待）
	if data, err := json.Marshal(order); err == nil {
		ttl := r.conf.DetailCacheTTL
		go func() {
			cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cacheCancel()
			_ = r.data.rdb.Set(cacheCtx, key, data, ttl).Err()
		}()
	}

	return order, nil
}

// invalidateOrderCache 失效订单详情缓存（事务提交后调用）
func (r *orderRepo) invalidateOrderCache(orderNo string) {
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cacheCancel()
	if err := r.data.rdb.Del(cacheCtx, constants.RedisKeyOrderDetail+orderNo).Err(); err != nil {
		// 缓存失效失败不影响主流程，只记录日志
		r.log.Warnf("failed to invalidate order cache: order_no=%s, error=%v", orderNo, err)
	}
}

// invalidateTicketCaches 失效库存变动涉及的门票派生缓存
// （按ID详情 + 按景区列表）
func (r *orderRepo) invalidateTicketCaches(items []*biz.OrderItem) {
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cacheCancel()

	for _, item := range items {
		if item.ItemType != biz.OrderTypeTicket {
			continue
		}
		keys := ticketCacheKeys(cacheCtx, r.data, item.ItemID)
		if len(keys) == 0 {
			continue
		}
		if err := r.data.rdb.Del(cacheCtx, keys...).Err(); err != nil {
			r.log.Warnf("failed to invalidate ticket caches: ticket_id=%d, error=%v", item.ItemID, err)
		}
	}
}
