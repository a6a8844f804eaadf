package order

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xiebiao/shopadmin/internal/domain/stats"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// ListFilter 订单列表查询条件(值对象)
// 设计说明:
// 1. 不可变:所有修改都返回新实例,前端可以安全地diff"编辑中"和"已应用"的条件
// 2. 只能通过ParseFilter或DefaultFilter构造,保证进入查询层的条件都校验过
// 3. 序列化为URL查询串(Values),支持把当前视图存成书签/分享链接
//
// 校验规则(所有规则一起检查,不短路,错误按字段聚合):
// - min_amount/max_amount同时存在时 min<=max,错误挂在max_amount上
// - from/to同时存在时 from<=to,错误挂在to_date上
// - page>=1;limit只允许10/20/50/100(拒绝而不是悄悄取整)
// - 文本字段先trim,全空白视为未填写
type ListFilter struct {
	Keyword       string // 全文检索词(订单号/买家名)
	OrderStatus   string // 为空表示全部
	PaymentStatus string // 为空表示全部

	DateRangeType string     // 预设名(today/yesterday/week/month/quarter/year)或custom,为空表示不限
	FromDate      *time.Time // custom时的起始日期(含当天)
	ToDate        *time.Time // custom时的结束日期(含当天)

	MinAmount *int64 // 金额下限(分)
	MaxAmount *int64 // 金额上限(分)

	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string

	SortBy    string // order_date | total_amount | order_no
	SortOrder string // asc | desc
	Page      int
	Limit     int

	Deleted bool // true时只看已删除订单(回收站视图)
}

// 默认值与取值约束
const (
	DefaultSortBy    = "order_date"
	DefaultSortOrder = "desc"
	DefaultPage      = 1
	DefaultLimit     = 10

	dateLayout = "2006-01-02"
)

// allowedLimits 每页条数白名单
var allowedLimits = map[int]bool{10: true, 20: true, 50: true, 100: true}

// allowedSortFields 排序字段白名单
var allowedSortFields = map[string]bool{
	"order_date":   true,
	"total_amount": true,
	"order_no":     true,
}

// allowedDateRangeTypes 日期范围类型白名单
var allowedDateRangeTypes = map[string]bool{
	"today": true, "yesterday": true, "week": true,
	"month": true, "quarter": true, "year": true, "custom": true,
}

// DefaultFilter 返回全部字段为默认值的查询条件
func DefaultFilter() ListFilter {
	return ListFilter{
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
		Page:      DefaultPage,
		Limit:     DefaultLimit,
	}
}

// ParseFilter 从URL查询参数解析查询条件
// 返回合法的ListFilter,或一个带字段级明细的校验错误
// 教学要点:所有字段的错误一次性收集完再返回,前端可以同时高亮多个控件
func ParseFilter(values url.Values) (ListFilter, error) {
	f := DefaultFilter()
	fields := map[string]string{}

	text := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}

	f.Keyword = text("keyword")
	f.CustomerName = text("customer_name")
	f.CustomerPhone = text("customer_phone")
	f.CustomerEmail = text("customer_email")
	f.CustomerAddress = text("customer_address")

	if v := text("order_status"); v != "" {
		if !OrderStatus(v).Valid() {
			fields["order_status"] = "未知的订单状态: " + v
		} else {
			f.OrderStatus = v
		}
	}

	if v := text("payment_status"); v != "" {
		if !PaymentStatus(v).Valid() {
			fields["payment_status"] = "未知的支付状态: " + v
		} else {
			f.PaymentStatus = v
		}
	}

	if v := text("date_range_type"); v != "" {
		if !allowedDateRangeTypes[v] {
			fields["date_range_type"] = "未知的日期范围类型: " + v
		} else {
			f.DateRangeType = v
		}
	}

	if v := text("from_date"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			fields["from_date"] = "日期格式应为YYYY-MM-DD"
		} else {
			f.FromDate = &t
		}
	}

	if v := text("to_date"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			fields["to_date"] = "日期格式应为YYYY-MM-DD"
		} else {
			f.ToDate = &t
		}
	}

	if v := text("min_amount"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			fields["min_amount"] = "金额下限必须是非负整数(分)"
		} else {
			f.MinAmount = &n
		}
	}

	if v := text("max_amount"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			fields["max_amount"] = "金额上限必须是非负整数(分)"
		} else {
			f.MaxAmount = &n
		}
	}

	if v := text("sort_by"); v != "" {
		if !allowedSortFields[v] {
			fields["sort_by"] = "不支持按该字段排序: " + v
		} else {
			f.SortBy = v
		}
	}

	if v := text("sort_order"); v != "" {
		if v != "asc" && v != "desc" {
			fields["sort_order"] = "排序方向只能是asc或desc"
		} else {
			f.SortOrder = v
		}
	}

	if v := text("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["page"] = "页码必须是>=1的整数"
		} else {
			f.Page = n
		}
	}

	if v := text("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !allowedLimits[n] {
			fields["limit"] = "每页条数只允许10/20/50/100"
		} else {
			f.Limit = n
		}
	}

	if v := text("deleted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["deleted"] = "deleted只能是true或false"
		} else {
			f.Deleted = b
		}
	}

	// 跨字段规则(在单字段都解析成功的前提下检查)
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MinAmount > *f.MaxAmount {
		fields["max_amount"] = "金额上限不能小于金额下限"
	}
	if f.FromDate != nil && f.ToDate != nil && f.FromDate.After(*f.ToDate) {
		fields["to_date"] = "结束日期不能早于起始日期"
	}

	if len(fields) > 0 {
		return ListFilter{}, apperrors.NewValidation(fields)
	}
	return f, nil
}

// Values 序列化为URL查询参数(与ParseFilter互逆)
// 默认值字段不输出,保持链接简洁
func (f ListFilter) Values() url.Values {
	values := url.Values{}

	set := func(key, v string) {
		if v != "" {
			values.Set(key, v)
		}
	}

	set("keyword", f.Keyword)
	set("order_status", f.OrderStatus)
	set("payment_status", f.PaymentStatus)
	set("date_range_type", f.DateRangeType)
	if f.FromDate != nil {
		values.Set("from_date", f.FromDate.Format(dateLayout))
	}
	if f.ToDate != nil {
		values.Set("to_date", f.ToDate.Format(dateLayout))
	}
	if f.MinAmount != nil {
		values.Set("min_amount", strconv.FormatInt(*f.MinAmount, 10))
	}
	if f.MaxAmount != nil {
		values.Set("max_amount", strconv.FormatInt(*f.MaxAmount, 10))
	}
	set("customer_name", f.CustomerName)
	set("customer_phone", f.CustomerPhone)
	set("customer_email", f.CustomerEmail)
	set("customer_address", f.CustomerAddress)

	if f.SortBy != DefaultSortBy {
		values.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != DefaultSortOrder {
		values.Set("sort_order", f.SortOrder)
	}
	if f.Page != DefaultPage {
		values.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit != DefaultLimit {
		values.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Deleted {
		values.Set("deleted", "true")
	}

	return values
}

// HasActiveFilters 是否有生效中的过滤条件
// 只看过滤字段,分页和排序的变化不算(用于驱动"清空筛选"按钮的显隐,
// 不参与查询逻辑)
func (f ListFilter) HasActiveFilters() bool {
	return f.Keyword != "" ||
		f.OrderStatus != "" ||
		f.PaymentStatus != "" ||
		f.DateRangeType != "" ||
		f.FromDate != nil ||
		f.ToDate != nil ||
		f.MinAmount != nil ||
		f.MaxAmount != nil ||
		f.CustomerName != "" ||
		f.CustomerPhone != "" ||
		f.CustomerEmail != "" ||
		f.CustomerAddress != "" ||
		f.Deleted
}

// ResetToDefaults 返回全部字段为默认值的新实例(不修改原实例)
func (f ListFilter) ResetToDefaults() ListFilter {
	return DefaultFilter()
}

// WithPage 返回换页后的新实例(不修改原实例)
func (f ListFilter) WithPage(page int) ListFilter {
	f.Page = page
	return f
}

// Offset 计算SQL偏移量
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// DateBounds 把日期条件解析为查询用的半开区间 [from, to)
// 预设类型(today/week等)按自然日历对齐,复用报表的区间算法,
// 此时忽略显式的from_date/to_date;
// custom或未指定类型时使用from_date/to_date,含结束日整天
func (f ListFilter) DateBounds(now time.Time) (from, to *time.Time) {
	if f.DateRangeType != "" && f.DateRangeType != "custom" {
		// 白名单已在ParseFilter校验过,这里不会出错
		r, err := stats.ResolvePeriod(stats.PeriodType(f.DateRangeType), nil, nil, now)
		if err != nil {
			return nil, nil
		}
		return &r.From, &r.To
	}
	if f.FromDate != nil {
		t := *f.FromDate
		from = &t
	}
	if f.ToDate != nil {
		t := f.ToDate.AddDate(0, 0, 1)
		to = &t
	}
	return from, to
}
