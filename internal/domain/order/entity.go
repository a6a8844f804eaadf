package order

import (
	"time"
)

// OrderStatus 订单履约状态
// 设计说明:
// 1. 使用string类型而非int:状态值直接出现在API、事件和导出文件里,
//    字符串可读性好,也避免前后端枚举映射错位
// 2. 定义为类型别名,便于添加方法
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // 待处理
	OrderStatusProcessing OrderStatus = "processing" // 处理中
	OrderStatusShipped    OrderStatus = "shipped"    // 已发货
	OrderStatusDelivered  OrderStatus = "delivered"  // 已签收(终态)
	OrderStatusCancelled  OrderStatus = "cancelled"  // 已取消
)

// Label 返回状态的中文展示名(后台界面用)
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "待处理"
	case OrderStatusProcessing:
		return "处理中"
	case OrderStatusShipped:
		return "已发货"
	case OrderStatusDelivered:
		return "已签收"
	case OrderStatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// Valid 判断是否为合法的订单状态值
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// AllOrderStatuses 返回全部订单状态(按业务推进顺序)
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled,
	}
}

// PaymentStatus 支付结算状态,与履约状态相互独立
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"  // 待支付
	PaymentStatusPaid     PaymentStatus = "paid"     // 已支付
	PaymentStatusFailed   PaymentStatus = "failed"   // 支付失败
	PaymentStatusRefunded PaymentStatus = "refunded" // 已退款(终态)
)

// Label 返回支付状态的中文展示名
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusPending:
		return "待支付"
	case PaymentStatusPaid:
		return "已支付"
	case PaymentStatusFailed:
		return "支付失败"
	case PaymentStatusRefunded:
		return "已退款"
	default:
		return "未知状态"
	}
}

// Valid 判断是否为合法的支付状态值
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// AllPaymentStatuses 返回全部支付状态
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentStatusPending, PaymentStatusPaid,
		PaymentStatusFailed, PaymentStatusRefunded,
	}
}

// Order 订单实体(聚合根)
// 教学要点:
// 1. Order是聚合根,OrderItem/OrderNote是子实体,必须通过Order访问
// 2. 所有金额字段以"分"为单位的int64存储(避免浮点数精度问题)
// 3. 订单由商城下单链路创建,后台只做状态流转、备注和软删除,
//    OrderNo/OrderDate/金额字段在后台视角全部只读
type Order struct {
	ID            uint
	OrderNo       string // 订单号(业务主键,全局唯一,创建后不可变)
	OrderStatus   OrderStatus
	PaymentStatus PaymentStatus

	// 金额字段(分)
	// 不变式: TotalAmount = Subtotal + ShippingFee + Tax - Discount
	TotalAmount int64
	Subtotal    int64
	ShippingFee int64
	Discount    int64
	Tax         int64

	// 买家快照(下单时落库,用于后台检索,不回查用户服务)
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	ShippingAddress string

	// IsDeleted 软删除标记
	// 注意:没有用gorm.DeletedAt,因为后台需要"查看已删除"过滤器
	// 把已删除订单列出来并支持恢复,显式bool字段语义更直接
	IsDeleted bool

	Items []OrderItem // 订单明细(价格快照,不回查商品服务)
	Notes []OrderNote // 管理员备注(追加写,单条可删)

	OrderDate   time.Time  // 下单时间(创建后不可变)
	PaidAt      *time.Time // 首次标记已支付的时间
	DeliveredAt *time.Time // 签收时间(驱动平均处理时长统计)
	UpdatedAt   time.Time
}

// OrderItem 订单明细项
// Price记录下单时的单价快照,商品改价不影响历史订单
type OrderItem struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	ProductName string // 商品名快照
	Quantity    int    // 购买数量(>=1)
	Price       int64  // 下单时单价(分,>=0)
}

// OrderNote 管理员备注
// IsPrivate=true的备注只在后台可见,不会同步给买家
type OrderNote struct {
	ID        uint
	OrderID   uint
	Author    string
	Content   string
	IsPrivate bool
	CreatedAt time.Time
}

// CheckAmounts 校验金额不变式
// 返回nil表示 TotalAmount = Subtotal + ShippingFee + Tax - Discount 成立
// 且所有金额非负;不成立说明上游写入有问题,后台只上报不修正
func (o *Order) CheckAmounts() error {
	if o.Subtotal < 0 || o.ShippingFee < 0 || o.Discount < 0 || o.Tax < 0 || o.TotalAmount < 0 {
		return ErrNegativeAmount
	}
	if o.TotalAmount != o.Subtotal+o.ShippingFee+o.Tax-o.Discount {
		return ErrAmountMismatch
	}
	return nil
}

// ApplyOrderStatus 应用履约状态流转(已通过策略校验后调用)
// 签收时记录DeliveredAt,供仪表盘统计平均处理时长
func (o *Order) ApplyOrderStatus(target OrderStatus, now time.Time) {
	o.OrderStatus = target
	if target == OrderStatusDelivered && o.DeliveredAt == nil {
		t := now
		o.DeliveredAt = &t
	}
	o.UpdatedAt = now
}

// ApplyPaymentStatus 应用支付状态流转(已通过策略校验后调用)
func (o *Order) ApplyPaymentStatus(target PaymentStatus, now time.Time) {
	o.PaymentStatus = target
	if target == PaymentStatusPaid && o.PaidAt == nil {
		t := now
		o.PaidAt = &t
	}
	o.UpdatedAt = now
}

// ProcessingHours 返回从下单到签收的处理时长(小时)
// 未签收的订单返回0和false
func (o *Order) ProcessingHours() (float64, bool) {
	if o.DeliveredAt == nil {
		return 0, false
	}
	return o.DeliveredAt.Sub(o.OrderDate).Hours(), true
}
