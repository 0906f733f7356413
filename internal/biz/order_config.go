package biz

import (
	"time"

	"scenic-order-service/internal/conf"
	"scenic-order-service/internal/constants"
)

// OrderConfig 订单业务配置
type OrderConfig struct {
	ExpireMinutes  int           // 支付时限（分钟）
	CancelLeadDays int           // 取消订单提前天数
	SweepBatchSize int           // 扫描任务单批上限
	DetailCacheTTL time.Duration // 订单详情缓存时长
}

// NewOrderConfig 从配置创建 OrderConfig
func NewOrderConfig(c *conf.Bootstrap) *OrderConfig {
	config := &OrderConfig{
		ExpireMinutes:  constants.DefaultOrderExpireMinutes,
		CancelLeadDays: constants.DefaultCancelLeadDays,
		SweepBatchSize: constants.DefaultSweepBatchSize,
		DetailCacheTTL: 5 * time.Minute,
	}
	if c.Order != nil {
		if c.Order.ExpireMinutes > 0 {
			config.ExpireMinutes = c.Order.ExpireMinutes
		}
		if c.Order.CancelLeadDays > 0 {
			config.CancelLeadDays = c.Order.CancelLeadDays
		}
		if c.Order.SweepBatchSize > 0 {
			config.SweepBatchSize = c.Order.SweepBatchSize
		}
		if c.Order.DetailCacheTtl != "" {
			if d, err := time.ParseDuration(c.Order.DetailCacheTtl); err == nil && d > 0 {
				config.DetailCacheTTL = d
			}
		}
	}
	return config
}
