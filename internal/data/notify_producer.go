package data

import (
	"context"
	"encoding/json"

	"scenic-order-service/internal/biz"
	"scenic-order-service/internal/conf"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/go-kratos/kratos/v2/log"
)

// notifyProducer 订单事件通知生产者（RocketMQ）
// 未配置或初始化失败时降级为禁用：Dispatch 变成空操作，
// 通知是 fire-and-forget，不构成主流程依赖。
type notifyProducer struct {
	p       rocketmq.Producer
	topic   string
	log     *log.Helper
	enabled bool
}

// NewNotifyProducer 创建通知分发器（返回 biz.NotificationDispatcher 接口）
func NewNotifyProducer(c *conf.Bootstrap, logger log.Logger) (biz.NotificationDispatcher, func(), error) {
	logHelper := log.NewHelper(logger)

	if c.Data == nil || c.Data.Rocketmq == nil || !c.Data.Rocketmq.Enabled {
		logHelper.Info("notify producer is disabled")
		return &notifyProducer{enabled: false, log: logHelper}, func() {}, nil
	}

	mq := c.Data.Rocketmq
	p, err := rocketmq.NewProducer(
		producer.WithNsResolver(primitive.NewPassthroughResolver(mq.NameServers)),
		producer.WithGroupName(mq.GroupName),
		producer.WithRetry(int(mq.RetryTimes)),
	)
	if err != nil {
		logHelper.Errorf("init notify producer error: %v", err)
		return &notifyProducer{enabled: false, log: logHelper}, func() {}, nil
	}

	if err := p.Start(); err != nil {
		logHelper.Errorf("start notify producer error: %v", err)
		return &notifyProducer{enabled: false, log: logHelper}, func() {}, nil
	}

	np := &notifyProducer{
		p:       p,
		topic:   mq.Topic,
		log:     logHelper,
		enabled: true,
	}
	cleanup := func() {
		logHelper.Info("shutting down notify producer")
		if err := p.Shutdown(); err != nil {
			logHelper.Errorf("failed to shutdown notify producer: %v", err)
		}
	}
	return np, cleanup, nil
}

// Dispatch 发送订单事件
func (n *notifyProducer) Dispatch(ctx context.Context, event *biz.OrderEvent) error {
	if !n.enabled {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := primitive.NewMessage(n.topic, body)
	msg.WithTag(event.EventType)

	if _, err := n.p.SendSync(ctx, msg); err != nil {
		return err
	}

	n.log.Infof("order event dispatched: type=%s, order_no=%s", event.EventType, event.OrderNo)
	return nil
}
