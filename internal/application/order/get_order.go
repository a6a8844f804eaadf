package order

import (
	"context"
	"log"

	"github.com/xiebiao/shopadmin/internal/domain/order"
)

// GetOrderUseCase 订单详情查询用例
// 详情页一次拿全:订单、明细、备注,加上两类状态各自的
// 合法流转候选(前端直接渲染下拉框,不用再发请求)
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建详情查询用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// OrderItemDTO 订单明细DTO
type OrderItemDTO struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	LineTotal   int64  `json:"line_total"`
}

// OrderNoteDTO 订单备注DTO
type OrderNoteDTO struct {
	ID        uint   `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	IsPrivate bool   `json:"is_private"`
	CreatedAt string `json:"created_at"`
}

// GetOrderResponse 订单详情响应DTO
type GetOrderResponse struct {
	ID            uint   `json:"id"`
	OrderNo       string `json:"order_no"`
	OrderStatus   string `json:"order_status"`
	StatusLabel   string `json:"status_label"`
	PaymentStatus string `json:"payment_status"`
	PaymentLabel  string `json:"payment_label"`

	TotalAmount int64 `json:"total_amount"`
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Discount    int64 `json:"discount"`
	Tax         int64 `json:"tax"`

	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`

	IsDeleted bool           `json:"is_deleted"`
	Items     []OrderItemDTO `json:"items"`
	Notes     []OrderNoteDTO `json:"notes"`

	OrderDate   string `json:"order_date"`
	PaidAt      string `json:"paid_at,omitempty"`
	DeliveredAt string `json:"delivered_at,omitempty"`

	// 两类状态各自的合法流转候选(首项是当前状态)
	NextOrderStatuses   []order.StatusOption `json:"next_order_statuses"`
	NextPaymentStatuses []order.StatusOption `json:"next_payment_statuses"`

	// 金额不变式不成立时的提示,正常订单为空
	AmountWarning string `json:"amount_warning,omitempty"`
}

// Execute 执行详情查询
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID uint) (*GetOrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItemDTO, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			LineTotal:   item.Price * int64(item.Quantity),
		}
	}

	notes := make([]OrderNoteDTO, len(o.Notes))
	for i, note := range o.Notes {
		notes[i] = OrderNoteDTO{
			ID:        note.ID,
			Author:    note.Author,
			Content:   note.Content,
			IsPrivate: note.IsPrivate,
			CreatedAt: note.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	resp := &GetOrderResponse{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		OrderStatus:     string(o.OrderStatus),
		StatusLabel:     o.OrderStatus.Label(),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentLabel:    o.PaymentStatus.Label(),
		TotalAmount:     o.TotalAmount,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Discount:        o.Discount,
		Tax:             o.Tax,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		IsDeleted:       o.IsDeleted,
		Items:           items,
		Notes:           notes,
		OrderDate:       o.OrderDate.Format("2006-01-02 15:04:05"),
	}

	if o.PaidAt != nil {
		resp.PaidAt = o.PaidAt.Format("2006-01-02 15:04:05")
	}
	if o.DeliveredAt != nil {
		resp.DeliveredAt = o.DeliveredAt.Format("2006-01-02 15:04:05")
	}

	// 状态值来自数据库,理论上必然合法;查询失败说明有脏数据,
	// 候选列表留空,详情仍然返回
	if options, err := order.ValidNextStatuses(order.KindOrder, string(o.OrderStatus)); err == nil {
		resp.NextOrderStatuses = options
	}
	if options, err := order.ValidNextStatuses(order.KindPayment, string(o.PaymentStatus)); err == nil {
		resp.NextPaymentStatuses = options
	}

	// 金额对不上只提示不拦截:详情页要照常展示,让人看见问题
	if err := o.CheckAmounts(); err != nil {
		log.Printf("[订单%d] 金额不变式不成立: %v", o.ID, err)
		resp.AmountWarning = "订单金额字段存在不一致,请联系技术人员核查"
	}

	return resp, nil
}
