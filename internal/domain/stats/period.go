package stats

import (
	"time"

	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// PeriodType 报表时间范围的类型
// 设计说明:预设名直接作为API参数值,和前端下拉框选项一一对应
type PeriodType string

const (
	PeriodToday     PeriodType = "today"
	PeriodYesterday PeriodType = "yesterday"
	PeriodWeek      PeriodType = "week"
	PeriodMonth     PeriodType = "month"
	PeriodQuarter   PeriodType = "quarter"
	PeriodYear      PeriodType = "year"
	PeriodCustom    PeriodType = "custom"
)

// Valid 判断是否为合法的范围类型
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodToday, PeriodYesterday, PeriodWeek, PeriodMonth,
		PeriodQuarter, PeriodYear, PeriodCustom:
		return true
	}
	return false
}

// Range 一段左闭右开的时间区间 [From, To)
// 教学要点:统一用半开区间,跨区间统计(环比)不会把边界时刻算两次
type Range struct {
	From time.Time
	To   time.Time
}

// Duration 区间长度
func (r Range) Duration() time.Duration {
	return r.To.Sub(r.From)
}

// Previous 返回紧邻在前、等长的区间(环比的对照区间)
func (r Range) Previous() Range {
	d := r.Duration()
	return Range{From: r.From.Add(-d), To: r.From}
}

// Contains 时刻是否落在区间内
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// ResolvePeriod 把范围类型解析为具体区间
// 预设按自然日历对齐(本周从周一起算,本季度从1/4/7/10月起算)
// custom要求from/to同时提供,缺一个返回IncompletePeriod错误;
// from/to按自然日理解,区间含to当天整天
func ResolvePeriod(p PeriodType, from, to *time.Time, now time.Time) (Range, error) {
	if !p.Valid() {
		return Range{}, NewUnknownPeriodError(string(p))
	}

	day := startOfDay(now)

	switch p {
	case PeriodToday:
		return Range{From: day, To: day.AddDate(0, 0, 1)}, nil

	case PeriodYesterday:
		return Range{From: day.AddDate(0, 0, -1), To: day}, nil

	case PeriodWeek:
		// 周一为一周的开始
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return Range{From: monday, To: monday.AddDate(0, 0, 7)}, nil

	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: first.AddDate(0, 1, 0)}, nil

	case PeriodQuarter:
		qMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		first := time.Date(now.Year(), qMonth, 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: first.AddDate(0, 3, 0)}, nil

	case PeriodYear:
		first := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return Range{From: first, To: first.AddDate(1, 0, 0)}, nil

	default: // PeriodCustom
		if from == nil || to == nil {
			return Range{}, NewIncompletePeriodError(from != nil, to != nil)
		}
		if from.After(*to) {
			return Range{}, apperrors.NewValidation(map[string]string{
				"to_date": "结束日期不能早于起始日期",
			})
		}
		f := startOfDay(*from)
		t := startOfDay(*to).AddDate(0, 0, 1)
		return Range{From: f, To: t}, nil
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
