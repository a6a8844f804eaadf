package order

import (
	"context"
	"time"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	"github.com/xiebiao/shopadmin/pkg/metrics"
	"github.com/xiebiao/shopadmin/pkg/mq"
)

// StatsInvalidator 统计缓存失效出口
// 状态流转会改变仪表盘口径,提交后清掉统计快照缓存
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// UpdateStatusUseCase 状态流转用例
// 教学要点:
// 1. 校验和落库的顺序:先用策略校验流转合法性,再做条件更新,
//    落库成功后才发事件(事件不可靠,数据库为准)
// 2. 同一个用例同时服务order和payment两类状态,kind由调用方传入,
//    落库时只写本类状态的列,两类状态的并发流转互不覆盖
// 3. 流转失败绝不自动重试:签收这类流转带库存副作用,
//    模糊失败后重发可能导致副作用重复执行,必须让管理员确认后重提
type UpdateStatusUseCase struct {
	orderRepo order.Repository
	events    *EventPublisher
	stats     StatsInvalidator
	now       func() time.Time
}

// NewUpdateStatusUseCase 创建状态流转用例
func NewUpdateStatusUseCase(orderRepo order.Repository, events *EventPublisher, stats StatsInvalidator) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		orderRepo: orderRepo,
		events:    events,
		stats:     stats,
		now:       time.Now,
	}
}

// UpdateStatusRequest 状态流转请求DTO
type UpdateStatusRequest struct {
	OrderID    uint
	Kind       order.StatusKind // order | payment
	Status     string           // 目标状态值
	OperatorID uint             // 操作的管理员ID(从JWT中提取)
}

// UpdateStatusResponse 状态流转响应DTO
type UpdateStatusResponse struct {
	OrderID    uint   `json:"order_id"`
	Kind       string `json:"kind"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Warning    string `json:"warning,omitempty"` // 敏感流转的提示,操作已生效
}

// Execute 执行状态流转
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, req UpdateStatusRequest) (*UpdateStatusResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	var from string
	switch req.Kind {
	case order.KindOrder:
		from = string(o.OrderStatus)
	case order.KindPayment:
		from = string(o.PaymentStatus)
	default:
		return nil, order.ErrInvalidStatusKind
	}

	result, err := order.ApplyTransition(req.Kind, from, req.Status)
	if err != nil {
		metrics.StatusTransitionsTotal.WithLabelValues(string(req.Kind), "illegal").Inc()
		return nil, err
	}

	// 原状态提交是合法的空操作,不落库不发事件
	if result.Status == from {
		return &UpdateStatusResponse{
			OrderID:    o.ID,
			Kind:       string(req.Kind),
			FromStatus: from,
			ToStatus:   from,
		}, nil
	}

	// 条件更新:WHERE带上读取到的原状态,读取和落库之间被并发操作
	// 改掉就返回冲突,让管理员刷新后基于新状态重新决策
	now := uc.now()
	if req.Kind == order.KindOrder {
		o.ApplyOrderStatus(order.OrderStatus(result.Status), now)
		err = uc.orderRepo.UpdateOrderStatus(ctx, o, order.OrderStatus(from))
	} else {
		o.ApplyPaymentStatus(order.PaymentStatus(result.Status), now)
		err = uc.orderRepo.UpdatePaymentStatus(ctx, o, order.PaymentStatus(from))
	}
	if err != nil {
		metrics.StatusTransitionsTotal.WithLabelValues(string(req.Kind), "failure").Inc()
		return nil, err
	}
	metrics.StatusTransitionsTotal.WithLabelValues(string(req.Kind), "success").Inc()

	// 落库成功后:清统计缓存、发事件,这两步失败都不影响操作结果
	if uc.stats != nil {
		_ = uc.stats.Invalidate(ctx)
	}

	routingKey := mq.RoutingKeyOrderStatus
	if req.Kind == order.KindPayment {
		routingKey = mq.RoutingKeyPaymentStatus
	}
	uc.events.Fire(ctx, routingKey, mq.StatusChangedEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		Kind:       string(req.Kind),
		FromStatus: from,
		ToStatus:   result.Status,
		OperatorID: req.OperatorID,
		OccurredAt: now,
	})

	return &UpdateStatusResponse{
		OrderID:    o.ID,
		Kind:       string(req.Kind),
		FromStatus: from,
		ToStatus:   result.Status,
		Warning:    result.Warning,
	}, nil
}
