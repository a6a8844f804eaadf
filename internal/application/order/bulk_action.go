package order

import (
	"context"
	"time"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
	"github.com/xiebiao/shopadmin/pkg/metrics"
	"github.com/xiebiao/shopadmin/pkg/mq"
)

// 批量操作动作名
const (
	ActionDelete  = "delete"
	ActionRestore = "restore"
)

// TxRunner 事务执行出口(由mysql.TxManager实现)
type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BulkActionUseCase 批量操作用例
// 教学要点:
// 1. 前置校验失败就整体拒绝,绝不悄悄跳过不合格的订单:
//    管理员勾了10个点恢复,恢复了7个却说"成功",是最坏的行为
// 2. 校验和更新放在同一事务:校验完删除标记后,
//    不能让并发请求在更新前改掉它
// 3. 结果按ID区分成功/失败,前端把失败的重新勾选上供重试
type BulkActionUseCase struct {
	orderRepo order.Repository
	tx        TxRunner
	events    *EventPublisher
	stats     StatsInvalidator
	now       func() time.Time
}

// NewBulkActionUseCase 创建批量操作用例
func NewBulkActionUseCase(orderRepo order.Repository, tx TxRunner, events *EventPublisher, stats StatsInvalidator) *BulkActionUseCase {
	return &BulkActionUseCase{
		orderRepo: orderRepo,
		tx:        tx,
		events:    events,
		stats:     stats,
		now:       time.Now,
	}
}

// BulkActionRequest 批量操作请求DTO
type BulkActionRequest struct {
	Action     string // delete | restore
	IDs        []uint
	OperatorID uint
}

// BulkActionResult 批量操作结果DTO
type BulkActionResult struct {
	Action       string `json:"action"`
	SucceededIDs []uint `json:"succeeded_ids"`
	FailedIDs    []uint `json:"failed_ids,omitempty"`

	// ClearSelection/RequiresRefetch 指示前端:清空勾选并重拉当前页
	// (被删除的订单可能不再满足当前过滤条件)
	ClearSelection  bool `json:"clear_selection"`
	RequiresRefetch bool `json:"requires_refetch"`
}

// Execute 执行批量操作
func (uc *BulkActionUseCase) Execute(ctx context.Context, req BulkActionRequest) (*BulkActionResult, error) {
	if len(req.IDs) == 0 {
		metrics.BulkActionsTotal.WithLabelValues(req.Action, "failure").Inc()
		return nil, order.ErrEmptySelection
	}
	if req.Action != ActionDelete && req.Action != ActionRestore {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的批量操作: "+req.Action)
	}

	var succeeded, failed []uint
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		flags, err := uc.orderRepo.DeletedFlags(txCtx, req.IDs)
		if err != nil {
			return err
		}

		// 不存在的ID直接算失败(可能已被其他人硬删或ID传错)
		var missing []uint
		for _, id := range req.IDs {
			if _, ok := flags[id]; !ok {
				missing = append(missing, id)
			}
		}

		if req.Action == ActionRestore {
			// 恢复要求所有选中订单都处于已删除状态,
			// 不满足的全部列出来,整体拒绝
			var offending []uint
			for _, id := range req.IDs {
				if deleted, ok := flags[id]; ok && !deleted {
					offending = append(offending, id)
				}
			}
			offending = append(offending, missing...)
			if len(offending) > 0 {
				return order.NewInvalidSelectionStateError("恢复", offending)
			}

			if _, err := uc.orderRepo.RestoreByIDs(txCtx, req.IDs); err != nil {
				return err
			}
			succeeded = req.IDs
			return nil
		}

		// 删除是幂等的:已删除的订单重复删除算成功
		var eligible []uint
		for _, id := range req.IDs {
			if _, ok := flags[id]; ok {
				eligible = append(eligible, id)
			}
		}
		if len(eligible) > 0 {
			if _, err := uc.orderRepo.SoftDeleteByIDs(txCtx, eligible); err != nil {
				return err
			}
		}
		succeeded = eligible
		failed = missing
		return nil
	})
	if err != nil {
		metrics.BulkActionsTotal.WithLabelValues(req.Action, "failure").Inc()
		return nil, err
	}

	metrics.BulkActionsTotal.WithLabelValues(req.Action, "success").Inc()
	metrics.BulkActionSize.Observe(float64(len(req.IDs)))

	if uc.stats != nil {
		_ = uc.stats.Invalidate(ctx)
	}

	uc.events.Fire(ctx, mq.RoutingKeyBulkExecuted, mq.BulkExecutedEvent{
		Action:       req.Action,
		SucceededIDs: succeeded,
		FailedIDs:    failed,
		OperatorID:   req.OperatorID,
		OccurredAt:   uc.now(),
	})

	return &BulkActionResult{
		Action:          req.Action,
		SucceededIDs:    succeeded,
		FailedIDs:       failed,
		ClearSelection:  true,
		RequiresRefetch: true,
	}, nil
}
