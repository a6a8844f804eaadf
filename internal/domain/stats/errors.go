package stats

import (
	"fmt"

	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// NewUnknownPeriodError 未知的时间范围类型
func NewUnknownPeriodError(value string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeIncompletePeriod,
		fmt.Sprintf("未知的时间范围类型: %s", value))
}

// NewIncompletePeriodError 自定义范围缺少起止日期
// 错误信息指出缺的是哪一端,方便前端定位到具体输入框
func NewIncompletePeriodError(hasFrom, hasTo bool) *apperrors.AppError {
	switch {
	case !hasFrom && !hasTo:
		return apperrors.New(apperrors.ErrCodeIncompletePeriod, "自定义范围需要同时提供起止日期")
	case !hasFrom:
		return apperrors.New(apperrors.ErrCodeIncompletePeriod, "自定义范围缺少起始日期")
	default:
		return apperrors.New(apperrors.ErrCodeIncompletePeriod, "自定义范围缺少结束日期")
	}
}

// NewDataInconsistencyError 统计口径不一致
// 教学要点:这类错误说明上游数据有bug,必须抛出来让人看见,
// 绝不能在展示层悄悄把数字"修正"掉
func NewDataInconsistencyError(detail string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeDataInconsistency,
		fmt.Sprintf("统计数据不一致: %s", detail))
}
