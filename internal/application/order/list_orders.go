package order

import (
	"context"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	"github.com/xiebiao/shopadmin/pkg/latest"
)

// ListOrdersUseCase 订单列表查询用例
// 教学要点:
// 1. 过滤条件在领域层已经校验过,用例只负责执行查询和装配响应
// 2. 序号守卫解决"旧响应覆盖新视图"的问题:管理员快速连续改条件时,
//    慢请求的结果到达后已经过期,必须丢弃而不是渲染
// 3. 序号按viewer隔离,每个管理员各自一条序号流,
//    别人发起查询不会把自己正在等待的结果变成过期
type ListOrdersUseCase struct {
	orderRepo order.Repository
	guards    *latest.Guards
}

// NewListOrdersUseCase 创建列表查询用例
func NewListOrdersUseCase(orderRepo order.Repository, guards *latest.Guards) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo, guards: guards}
}

// OrderRow 列表行DTO
type OrderRow struct {
	ID            uint   `json:"id"`
	OrderNo       string `json:"order_no"`
	CustomerName  string `json:"customer_name"`
	OrderStatus   string `json:"order_status"`
	StatusLabel   string `json:"status_label"`
	PaymentStatus string `json:"payment_status"`
	PaymentLabel  string `json:"payment_label"`
	TotalAmount   int64  `json:"total_amount"`
	ItemCount     int    `json:"item_count"`
	OrderDate     string `json:"order_date"`
	IsDeleted     bool   `json:"is_deleted"`
}

// ListOrdersResponse 列表查询响应DTO
type ListOrdersResponse struct {
	Rows       []OrderRow `json:"rows"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`

	// Seq 本次查询的请求序号,Stale=true表示查询期间有更新的
	// 查询已发出,本结果不应上屏
	Seq   uint64 `json:"seq"`
	Stale bool   `json:"-"`
}

// Execute 执行列表查询
// viewer标识是谁在看列表(管理员ID),序号只在同一viewer内比较新旧
func (uc *ListOrdersUseCase) Execute(ctx context.Context, viewer string, filter order.ListFilter) (*ListOrdersResponse, error) {
	// 领取序号必须在查询之前:序号标记的是"发起时刻"的新旧
	guard := uc.guards.For(viewer)
	seq := guard.Next()

	summaries, total, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]OrderRow, len(summaries))
	for i, s := range summaries {
		rows[i] = OrderRow{
			ID:            s.ID,
			OrderNo:       s.OrderNo,
			CustomerName:  s.CustomerName,
			OrderStatus:   string(s.Status),
			StatusLabel:   s.Status.Label(),
			PaymentStatus: string(s.PaymentStatus),
			PaymentLabel:  s.PaymentStatus.Label(),
			TotalAmount:   s.TotalAmount,
			ItemCount:     s.ItemCount,
			OrderDate:     s.OrderDate.Format("2006-01-02 15:04:05"),
			IsDeleted:     s.IsDeleted,
		}
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return &ListOrdersResponse{
		Rows:       rows,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Seq:        seq,
		Stale:      !guard.Accept(seq),
	}, nil
}
