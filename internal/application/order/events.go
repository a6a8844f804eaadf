package order

import (
	"context"
	"log"

	"github.com/xiebiao/shopadmin/pkg/circuitbreaker"
	"github.com/xiebiao/shopadmin/pkg/metrics"
	"github.com/xiebiao/shopadmin/pkg/mq"
)

// EventSink 事件发布出口
// 用例层只依赖这个小接口,测试时用内存实现替换真实的RabbitMQ
type EventSink interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// EventPublisher 带熔断保护的事件发布器
// 设计说明:
// 1. 事件在数据库事务提交之后发布,发布失败只记日志不回滚,
//    后台操作以数据库为准,MQ故障不能阻塞管理员干活
// 2. 熔断器挡住持续故障:broker宕机时快速失败,不让每个请求
//    都白等一次连接超时
// 3. sink为nil表示事件通道未启用(mq.enabled=false),只打日志
type EventPublisher struct {
	sink    EventSink
	breaker *circuitbreaker.Breaker
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(sink EventSink) *EventPublisher {
	return &EventPublisher{
		sink:    sink,
		breaker: circuitbreaker.New("order-events", circuitbreaker.Config{}),
	}
}

// Fire 发布事件,永不向调用方返回错误
func (p *EventPublisher) Fire(ctx context.Context, routingKey string, event interface{}) {
	if p.sink == nil {
		log.Printf("[事件] 通道未启用,丢弃: key=%s event=%+v", routingKey, event)
		return
	}

	err := p.breaker.Execute(func() error {
		return p.sink.Publish(ctx, routingKey, event)
	})

	switch {
	case err == nil:
		metrics.EventsPublishedTotal.WithLabelValues(routingKey, "success").Inc()
	case err == circuitbreaker.ErrOpenState || err == circuitbreaker.ErrTooManyRequests:
		metrics.EventsPublishedTotal.WithLabelValues(routingKey, "rejected").Inc()
		log.Printf("[事件] 熔断中,丢弃: key=%s", routingKey)
	default:
		metrics.EventsPublishedTotal.WithLabelValues(routingKey, "failure").Inc()
		log.Printf("[事件] 发布失败: key=%s err=%v", routingKey, err)
	}
}

// 确保真实发布者满足接口
var _ EventSink = (*mq.Publisher)(nil)
