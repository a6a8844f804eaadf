package order

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// TestParseFilter_Defaults 测试空参数产生默认条件
func TestParseFilter_Defaults(t *testing.T) {
	f, err := ParseFilter(url.Values{})
	if err != nil {
		t.Fatalf("空参数不应报错: %v", err)
	}

	want := DefaultFilter()
	if !reflect.DeepEqual(f, want) {
		t.Errorf("默认条件不符: got=%+v want=%+v", f, want)
	}
	if f.HasActiveFilters() {
		t.Error("默认条件不应视为有生效过滤")
	}
	if f.Offset() != 0 {
		t.Errorf("默认偏移量应为0,实际%d", f.Offset())
	}
}

// TestParseFilter_TrimsWhitespace 测试文本字段去空白
func TestParseFilter_TrimsWhitespace(t *testing.T) {
	values := url.Values{}
	values.Set("keyword", "  ORD-2026  ")
	values.Set("customer_name", "   ")

	f, err := ParseFilter(values)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if f.Keyword != "ORD-2026" {
		t.Errorf("关键词应去除首尾空白,实际%q", f.Keyword)
	}
	if f.CustomerName != "" {
		t.Errorf("全空白的买家名应视为未填写,实际%q", f.CustomerName)
	}
}

// TestParseFilter_CollectsAllErrors 测试错误一次性聚合返回
func TestParseFilter_CollectsAllErrors(t *testing.T) {
	values := url.Values{}
	values.Set("order_status", "archived")
	values.Set("page", "0")
	values.Set("limit", "25")
	values.Set("sort_by", "customer_age")

	_, err := ParseFilter(values)
	if err == nil {
		t.Fatal("非法参数应报错")
	}

	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Code != apperrors.ErrCodeValidation {
		t.Fatalf("期望校验错误,实际: %v", err)
	}
	for _, field := range []string{"order_status", "page", "limit", "sort_by"} {
		if appErr.Fields[field] == "" {
			t.Errorf("字段%s应有错误信息,实际明细: %v", field, appErr.Fields)
		}
	}
}

// TestParseFilter_AmountRange 测试金额范围规则
func TestParseFilter_AmountRange(t *testing.T) {
	values := url.Values{}
	values.Set("min_amount", "50000")
	values.Set("max_amount", "10000")

	_, err := ParseFilter(values)
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		t.Fatal("金额上限小于下限应报错")
	}
	if appErr.Fields["max_amount"] == "" {
		t.Errorf("错误应挂在max_amount上,实际明细: %v", appErr.Fields)
	}
	if appErr.Fields["min_amount"] != "" {
		t.Errorf("min_amount本身合法,不应有错误: %v", appErr.Fields)
	}

	// 相等是合法的(精确金额查询)
	values.Set("max_amount", "50000")
	f, err := ParseFilter(values)
	if err != nil {
		t.Fatalf("上下限相等应合法: %v", err)
	}
	if *f.MinAmount != 50000 || *f.MaxAmount != 50000 {
		t.Errorf("金额解析错误: min=%d max=%d", *f.MinAmount, *f.MaxAmount)
	}
}

// TestParseFilter_CustomDateRange 测试自定义日期范围规则
func TestParseFilter_CustomDateRange(t *testing.T) {
	values := url.Values{}
	values.Set("date_range_type", "custom")
	values.Set("from_date", "2026-08-20")
	values.Set("to_date", "2026-08-01")

	_, err := ParseFilter(values)
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Fields["to_date"] == "" {
		t.Fatalf("结束日期早于起始日期应在to_date上报错,实际: %v", err)
	}

	values.Set("to_date", "2026-08-20")
	f, err := ParseFilter(values)
	if err != nil {
		t.Fatalf("起止同一天应合法: %v", err)
	}
	if !f.FromDate.Equal(*f.ToDate) {
		t.Error("起止日期解析不一致")
	}
}

// TestParseFilter_ReversedDates 测试起止日期倒置在任何情况下都被拒绝
// 不依赖date_range_type,只要from/to同时存在就检查先后
func TestParseFilter_ReversedDates(t *testing.T) {
	values := url.Values{}
	values.Set("from_date", "2026-08-20")
	values.Set("to_date", "2026-08-01")

	_, err := ParseFilter(values)
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Fields["to_date"] == "" {
		t.Fatalf("未指定date_range_type时倒置日期也应在to_date上报错,实际: %v", err)
	}
}

// TestFilter_DateBounds 测试日期条件解析为查询区间
func TestFilter_DateBounds(t *testing.T) {
	// 2026-08-31是周一
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   ListFilter
		wantFrom string
		wantTo   string
	}{
		{
			name:     "today",
			filter:   ListFilter{DateRangeType: "today"},
			wantFrom: "2026-08-31", wantTo: "2026-09-01",
		},
		{
			name:     "week",
			filter:   ListFilter{DateRangeType: "week"},
			wantFrom: "2026-08-31", wantTo: "2026-09-07",
		},
		{
			name:     "month",
			filter:   ListFilter{DateRangeType: "month"},
			wantFrom: "2026-08-01", wantTo: "2026-09-01",
		},
		{
			name: "custom含结束日整天",
			filter: ListFilter{
				DateRangeType: "custom",
				FromDate:      datePtr(2026, 8, 1),
				ToDate:        datePtr(2026, 8, 20),
			},
			wantFrom: "2026-08-01", wantTo: "2026-08-21",
		},
		{
			name: "无类型时直接用显式日期",
			filter: ListFilter{
				FromDate: datePtr(2026, 8, 1),
				ToDate:   datePtr(2026, 8, 20),
			},
			wantFrom: "2026-08-01", wantTo: "2026-08-21",
		},
		{
			name: "预设优先于显式日期",
			filter: ListFilter{
				DateRangeType: "today",
				FromDate:      datePtr(2020, 1, 1),
				ToDate:        datePtr(2020, 12, 31),
			},
			wantFrom: "2026-08-31", wantTo: "2026-09-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := tt.filter.DateBounds(now)
			if from == nil || to == nil {
				t.Fatalf("区间不应为空: from=%v to=%v", from, to)
			}
			if got := from.Format(dateLayout); got != tt.wantFrom {
				t.Errorf("区间起点不符: got=%s want=%s", got, tt.wantFrom)
			}
			if got := to.Format(dateLayout); got != tt.wantTo {
				t.Errorf("区间终点不符: got=%s want=%s", got, tt.wantTo)
			}
		})
	}

	// 没有任何日期条件时不产生区间
	from, to := DefaultFilter().DateBounds(now)
	if from != nil || to != nil {
		t.Errorf("无日期条件不应产生区间: from=%v to=%v", from, to)
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// TestParseFilter_BadDateFormat 测试日期格式错误
func TestParseFilter_BadDateFormat(t *testing.T) {
	values := url.Values{}
	values.Set("from_date", "08/20/2026")

	_, err := ParseFilter(values)
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Fields["from_date"] == "" {
		t.Fatalf("非YYYY-MM-DD格式应报错,实际: %v", err)
	}
}

// TestParseFilter_LimitWhitelist 测试每页条数白名单
func TestParseFilter_LimitWhitelist(t *testing.T) {
	for _, limit := range []string{"10", "20", "50", "100"} {
		values := url.Values{}
		values.Set("limit", limit)
		if _, err := ParseFilter(values); err != nil {
			t.Errorf("limit=%s应合法: %v", limit, err)
		}
	}

	for _, limit := range []string{"0", "-10", "15", "1000", "abc"} {
		values := url.Values{}
		values.Set("limit", limit)
		if _, err := ParseFilter(values); err == nil {
			t.Errorf("limit=%s应被拒绝", limit)
		}
	}
}

// TestFilter_RoundTrip 测试条件与URL参数的互逆序列化
func TestFilter_RoundTrip(t *testing.T) {
	values := url.Values{}
	values.Set("keyword", "ORD-2026")
	values.Set("order_status", "shipped")
	values.Set("payment_status", "paid")
	values.Set("date_range_type", "custom")
	values.Set("from_date", "2026-08-01")
	values.Set("to_date", "2026-08-20")
	values.Set("min_amount", "1000")
	values.Set("max_amount", "99900")
	values.Set("customer_name", "王芳")
	values.Set("sort_by", "total_amount")
	values.Set("sort_order", "asc")
	values.Set("page", "3")
	values.Set("limit", "50")
	values.Set("deleted", "true")

	f, err := ParseFilter(values)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	back, err := ParseFilter(f.Values())
	if err != nil {
		t.Fatalf("反序列化再解析失败: %v", err)
	}
	if !reflect.DeepEqual(f, back) {
		t.Errorf("往返序列化后条件不一致:\n前=%+v\n后=%+v", f, back)
	}
}

// TestFilter_ValuesOmitsDefaults 测试默认值不出现在序列化结果里
func TestFilter_ValuesOmitsDefaults(t *testing.T) {
	if got := DefaultFilter().Values(); len(got) != 0 {
		t.Errorf("默认条件序列化应为空,实际: %v", got)
	}
}

// TestFilter_HasActiveFilters 测试过滤生效判定
func TestFilter_HasActiveFilters(t *testing.T) {
	f := DefaultFilter()

	// 只改分页和排序不算过滤
	f.Page = 5
	f.SortBy = "total_amount"
	f.SortOrder = "asc"
	f.Limit = 100
	if f.HasActiveFilters() {
		t.Error("分页排序变化不应视为过滤生效")
	}

	f.OrderStatus = "pending"
	if !f.HasActiveFilters() {
		t.Error("设置状态过滤后应视为生效")
	}

	reset := f.ResetToDefaults()
	if reset.HasActiveFilters() {
		t.Error("重置后不应有生效过滤")
	}
	if f.OrderStatus != "pending" {
		t.Error("重置不应修改原实例")
	}
}

// TestFilter_Offset 测试分页偏移量计算
func TestFilter_Offset(t *testing.T) {
	f := DefaultFilter().WithPage(4)
	f.Limit = 20
	if f.Offset() != 60 {
		t.Errorf("第4页每页20条的偏移量应为60,实际%d", f.Offset())
	}
}
