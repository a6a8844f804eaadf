package order

import (
	"fmt"
	"strings"

	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrNoteNotFound 订单备注不存在
	ErrNoteNotFound = apperrors.ErrNoteNotFound

	// ErrInvalidStatusKind 状态类别非法(只有order/payment两类)
	ErrInvalidStatusKind = apperrors.New(apperrors.ErrCodeInvalidStatusKind, "状态类别非法")

	// ErrEmptySelection 批量操作选择集为空
	ErrEmptySelection = apperrors.New(apperrors.ErrCodeEmptySelection, "请先选择订单")

	// ErrTransitionConflict 读取和落库之间状态被其他操作改掉了
	ErrTransitionConflict = apperrors.New(apperrors.ErrCodeTransitionConflict, "订单状态已被其他操作修改,请刷新后重试")

	// ErrAmountMismatch 金额不变式不成立(上游数据问题)
	ErrAmountMismatch = apperrors.New(apperrors.ErrCodeBusinessError, "订单金额字段不一致")

	// ErrNegativeAmount 出现负金额(上游数据问题)
	ErrNegativeAmount = apperrors.New(apperrors.ErrCodeBusinessError, "订单金额不能为负")
)

// NewUnknownStatusError 未知状态值错误
func NewUnknownStatusError(kind StatusKind, value string) *apperrors.AppError {
	return apperrors.New(
		apperrors.ErrCodeUnknownStatus,
		fmt.Sprintf("未知的%s状态: %s", kind.Label(), value),
	)
}

// NewIllegalTransitionError 非法状态流转错误
// 把当前状态和目标状态都带上,便于前端直接展示
func NewIllegalTransitionError(kind StatusKind, current, requested string) *apperrors.AppError {
	return apperrors.New(
		apperrors.ErrCodeIllegalTransition,
		fmt.Sprintf("%s不允许从[%s]流转到[%s]", kind.Label(), current, requested),
	)
}

// NewInvalidSelectionStateError 选择集状态不满足前置条件
// 教学要点:把不满足条件的订单ID全部列出来,而不是悄悄跳过,
// 否则管理员会以为恢复成功了,实际只恢复了一部分
func NewInvalidSelectionStateError(action string, offendingIDs []uint) *apperrors.AppError {
	ids := make([]string, len(offendingIDs))
	for i, id := range offendingIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return apperrors.New(
		apperrors.ErrCodeInvalidSelectionState,
		fmt.Sprintf("以下订单不满足%s操作的前置条件: %s", action, strings.Join(ids, ", ")),
	)
}
