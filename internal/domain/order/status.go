package order

// 状态流转策略
// 教学要点:
// 1. 纯函数决策表,不碰数据库也不发网络请求,可以脱离传输层单测
// 2. 当前状态永远在候选列表里(原地流转=不变更,前端下拉框默认选中项)
// 3. delivered和refunded是终态,没有任何出边
// 4. cancelled→pending是刻意保留的"订单复活"通道:客服挽回订单时使用
//    (多数订单系统把取消当终态,这里跟现行业务确认过保留)

// StatusKind 状态类别:订单履约状态或支付结算状态
type StatusKind string

const (
	KindOrder   StatusKind = "order"
	KindPayment StatusKind = "payment"
)

// Label 返回类别的中文名
func (k StatusKind) Label() string {
	switch k {
	case KindOrder:
		return "订单状态"
	case KindPayment:
		return "支付状态"
	default:
		return "未知类别"
	}
}

// Valid 判断类别是否合法
func (k StatusKind) Valid() bool {
	return k == KindOrder || k == KindPayment
}

// StatusOption 一个可选的目标状态
type StatusOption struct {
	Value string `json:"value"` // 状态值(入库/上报用)
	Label string `json:"label"` // 中文展示名
}

// orderTransitions 订单状态流转表(有向,不含隐式回边)
// 候选列表有序:当前状态在首位,其余按业务上的推进方向排列
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPending, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusDelivered}, // 终态:签收后不可重开
	OrderStatusCancelled:  {OrderStatusCancelled, OrderStatusPending},
}

// paymentTransitions 支付状态流转表
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:  {PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:     {PaymentStatusPaid, PaymentStatusRefunded},
	PaymentStatusFailed:   {PaymentStatusFailed, PaymentStatusPending, PaymentStatusPaid},
	PaymentStatusRefunded: {PaymentStatusRefunded}, // 终态
}

// ValidNextStatuses 返回当前状态的合法目标状态列表(含当前状态自身)
// 错误:
// - kind不是order/payment → ErrInvalidStatusKind
// - current不是对应枚举的成员 → UnknownStatus
func ValidNextStatuses(kind StatusKind, current string) ([]StatusOption, error) {
	switch kind {
	case KindOrder:
		s := OrderStatus(current)
		if !s.Valid() {
			return nil, NewUnknownStatusError(kind, current)
		}
		targets := orderTransitions[s]
		options := make([]StatusOption, len(targets))
		for i, t := range targets {
			options[i] = StatusOption{Value: string(t), Label: t.Label()}
		}
		return options, nil

	case KindPayment:
		s := PaymentStatus(current)
		if !s.Valid() {
			return nil, NewUnknownStatusError(kind, current)
		}
		targets := paymentTransitions[s]
		options := make([]StatusOption, len(targets))
		for i, t := range targets {
			options[i] = StatusOption{Value: string(t), Label: t.Label()}
		}
		return options, nil

	default:
		return nil, ErrInvalidStatusKind
	}
}

// TransitionResult 流转结果
// Warning是提示而非错误:操作已被允许,但有需要管理员留意的副作用
type TransitionResult struct {
	Status  string // 流转后的状态值
	Warning string // 提示信息,为空表示无需提醒
}

// ApplyTransition 校验并执行一次状态流转
// requested不是对应枚举的成员时返回UnknownStatus错误;
// 是合法状态但不在ValidNextStatuses结果中时返回IllegalTransition错误
//
// 提示信息规则(全部是建议性提醒,不阻断操作):
// - processing/shipped → cancelled: 库存和支付可能需要人工对账
// - → delivered: 会触发库存核销(副作用在下游,策略只负责提醒)
// - payment → refunded: 只是记账,并不会真的把钱退给买家
// - payment pending → paid: 提醒先核实钱确实到账了
func ApplyTransition(kind StatusKind, current, requested string) (*TransitionResult, error) {
	options, err := ValidNextStatuses(kind, current)
	if err != nil {
		return nil, err
	}

	// 先区分"不存在的状态"和"存在但不允许",两者对前端的含义不同
	switch kind {
	case KindOrder:
		if !OrderStatus(requested).Valid() {
			return nil, NewUnknownStatusError(kind, requested)
		}
	case KindPayment:
		if !PaymentStatus(requested).Valid() {
			return nil, NewUnknownStatusError(kind, requested)
		}
	}

	allowed := false
	for _, opt := range options {
		if opt.Value == requested {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, NewIllegalTransitionError(kind, current, requested)
	}

	return &TransitionResult{
		Status:  requested,
		Warning: transitionWarning(kind, current, requested),
	}, nil
}

// transitionWarning 敏感流转的提示文案
func transitionWarning(kind StatusKind, current, requested string) string {
	if kind == KindOrder {
		switch {
		case requested == string(OrderStatusCancelled) &&
			(current == string(OrderStatusProcessing) || current == string(OrderStatusShipped)):
			return "订单已进入履约流程,取消后请人工核对库存与支付状态"
		case requested == string(OrderStatusDelivered) && current != string(OrderStatusDelivered):
			return "标记签收会触发库存核销,请确认包裹已实际送达"
		}
		return ""
	}

	switch {
	case requested == string(PaymentStatusRefunded) && current != string(PaymentStatusRefunded):
		return "标记退款仅更新记录,不会实际退还款项,请另行在支付渠道操作"
	case current == string(PaymentStatusPending) && requested == string(PaymentStatusPaid):
		return "请先核实款项确已到账再标记为已支付"
	}
	return ""
}
