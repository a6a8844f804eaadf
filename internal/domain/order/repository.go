package order

import (
	"context"
	"time"
)

// Summary 订单列表行(投影)
// 列表页只需要这些字段,不加载条目和备注,避免N+1查询
type Summary struct {
	ID            uint
	OrderNo       string
	CustomerName  string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	TotalAmount   int64
	ItemCount     int
	OrderDate     time.Time
	IsDeleted     bool
}

// Repository 订单仓储接口
// 教学要点:接口定义在领域层,实现在infrastructure/persistence,
// 依赖方向永远指向领域
type Repository interface {
	// List 按条件分页查询,返回当前页的行和过滤后的总数
	List(ctx context.Context, filter ListFilter) ([]Summary, int64, error)

	// FindByID 加载完整聚合(含条目和备注),未找到返回ErrOrderNotFound
	// 已软删除的订单也能查到,详情页要能看回收站里的订单
	FindByID(ctx context.Context, id uint) (*Order, error)

	// ListByIDs 按ID集合加载聚合,结果顺序与入参一致,缺失的ID直接跳过
	ListByIDs(ctx context.Context, ids []uint) ([]*Order, error)

	// UpdateOrderStatus 条件更新履约状态:仅当库中order_status仍等于from时
	// 写入o的order_status/delivered_at/updated_at,其余列不碰
	// 状态已被并发操作改掉时返回ErrTransitionConflict
	UpdateOrderStatus(ctx context.Context, o *Order, from OrderStatus) error

	// UpdatePaymentStatus 条件更新结算状态:仅当库中payment_status仍等于from时
	// 写入o的payment_status/paid_at/updated_at
	UpdatePaymentStatus(ctx context.Context, o *Order, from PaymentStatus) error

	// DeletedFlags 返回各ID当前的软删除标记,用于批量操作前置校验
	// 不存在的ID不出现在结果里
	DeletedFlags(ctx context.Context, ids []uint) (map[uint]bool, error)

	// SoftDeleteByIDs 批量软删除,返回实际更新的行数
	SoftDeleteByIDs(ctx context.Context, ids []uint) (int64, error)

	// RestoreByIDs 批量恢复软删除,返回实际更新的行数
	RestoreByIDs(ctx context.Context, ids []uint) (int64, error)

	// AddNote 给订单追加一条备注
	AddNote(ctx context.Context, orderID uint, note *OrderNote) error

	// DeleteNote 删除订单下的某条备注,未找到返回ErrNoteNotFound
	DeleteNote(ctx context.Context, orderID, noteID uint) error
}
