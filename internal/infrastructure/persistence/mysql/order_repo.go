package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 教学要点:
// 1. Order和OrderItem/OrderNote是聚合关系,读取时一起加载
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// sortColumns 排序字段到数据库列的映射
// 白名单映射而不是直接拼接,杜绝排序参数注入
var sortColumns = map[string]string{
	"order_date":   "order_date",
	"total_amount": "total_amount",
	"order_no":     "order_no",
}

// List 按条件分页查询订单列表
// 教学要点:
// 1. 列表查询只取投影列,不Preload明细,明细数用子查询一次算好
// 2. 过滤条件逐个叠加,GORM的链式Where天然适合可选条件
func (r *orderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Summary, int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&OrderModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	column := sortColumns[filter.SortBy]
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}

	var rows []struct {
		OrderModel
		ItemCount int
	}
	err := query.
		Select("orders.*, (SELECT COALESCE(SUM(quantity),0) FROM order_items WHERE order_items.order_id = orders.id) AS item_count").
		Order(column + " " + direction).
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	summaries := make([]order.Summary, len(rows))
	for i, row := range rows {
		summaries[i] = order.Summary{
			ID:            row.ID,
			OrderNo:       row.OrderNo,
			CustomerName:  row.CustomerName,
			Status:        order.OrderStatus(row.OrderStatus),
			PaymentStatus: order.PaymentStatus(row.PaymentStatus),
			TotalAmount:   row.TotalAmount,
			ItemCount:     row.ItemCount,
			OrderDate:     row.OrderDate,
			IsDeleted:     row.IsDeleted,
		}
	}

	return summaries, total, nil
}

// applyFilter 把查询条件翻译为WHERE子句
func (r *orderRepository) applyFilter(query *gorm.DB, filter order.ListFilter) *gorm.DB {
	// 回收站视图和普通视图互斥
	query = query.Where("is_deleted = ?", filter.Deleted)

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("order_no LIKE ? OR customer_name LIKE ?", like, like)
	}
	if filter.OrderStatus != "" {
		query = query.Where("order_status = ?", filter.OrderStatus)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	// 预设日期范围在这里解析成具体区间,custom用显式的from/to
	from, to := filter.DateBounds(time.Now())
	if from != nil {
		query = query.Where("order_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("order_date < ?", *to)
	}
	if filter.MinAmount != nil {
		query = query.Where("total_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_amount <= ?", *filter.MaxAmount)
	}
	if filter.CustomerName != "" {
		query = query.Where("customer_name LIKE ?", "%"+filter.CustomerName+"%")
	}
	if filter.CustomerPhone != "" {
		query = query.Where("customer_phone LIKE ?", "%"+filter.CustomerPhone+"%")
	}
	if filter.CustomerEmail != "" {
		query = query.Where("customer_email LIKE ?", "%"+filter.CustomerEmail+"%")
	}
	if filter.CustomerAddress != "" {
		query = query.Where("shipping_address LIKE ?", "%"+filter.CustomerAddress+"%")
	}

	return query
}

// FindByID 根据ID查找订单(含明细和备注)
// 教学要点:使用Preload预加载关联,避免N+1查询
// 已软删除的订单也返回,详情页要能查看回收站里的订单
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)

	err := db.Preload("Items").Preload("Notes").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// ListByIDs 按ID集合加载订单
func (r *orderRepository) ListByIDs(ctx context.Context, ids []uint) ([]*order.Order, error) {
	var models []OrderModel
	db := r.getDB(ctx)

	err := db.Preload("Items").Preload("Notes").Where("id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "批量查询订单失败")
	}

	byID := make(map[uint]*OrderModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	// 结果顺序与入参一致,缺失的ID跳过
	out := make([]*order.Order, 0, len(models))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, toOrderEntity(m))
		}
	}
	return out, nil
}

// UpdateOrderStatus 条件更新履约状态字段
// 教学要点:
// 1. 后台只改状态和时间戳,金额和明细在后台视角全部只读
// 2. WHERE带上读取时的状态做乐观并发控制,读取和落库之间被别人改过
//    就拒绝写入,不会把一份过期快照整体覆盖回去
// 3. 支付状态列完全不在更新集里,两类状态的并发流转互不干扰
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, o *order.Order, from order.OrderStatus) error {
	return r.updateStatusColumns(ctx, o.ID,
		map[string]interface{}{
			"order_status": string(o.OrderStatus),
			"delivered_at": o.DeliveredAt,
			"updated_at":   o.UpdatedAt,
		},
		"order_status = ?", string(from))
}

// UpdatePaymentStatus 条件更新结算状态字段,并发语义同UpdateOrderStatus
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, o *order.Order, from order.PaymentStatus) error {
	return r.updateStatusColumns(ctx, o.ID,
		map[string]interface{}{
			"payment_status": string(o.PaymentStatus),
			"paid_at":        o.PaidAt,
			"updated_at":     o.UpdatedAt,
		},
		"payment_status = ?", string(from))
}

func (r *orderRepository) updateStatusColumns(ctx context.Context, id uint, columns map[string]interface{}, cond string, from string) error {
	db := r.getDB(ctx)

	result := db.Model(&OrderModel{}).
		Where("id = ? AND "+cond, id, from).
		Updates(columns)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// 零行有两种可能:订单不存在,或状态已被并发修改
	var count int64
	if err := db.Model(&OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "更新订单失败")
	}
	if count == 0 {
		return order.ErrOrderNotFound
	}
	return order.ErrTransitionConflict
}

// DeletedFlags 查询各ID的软删除标记
func (r *orderRepository) DeletedFlags(ctx context.Context, ids []uint) (map[uint]bool, error) {
	var rows []struct {
		ID        uint
		IsDeleted bool
	}
	db := r.getDB(ctx)

	err := db.Model(&OrderModel{}).Select("id, is_deleted").Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询删除标记失败")
	}

	flags := make(map[uint]bool, len(rows))
	for _, row := range rows {
		flags[row.ID] = row.IsDeleted
	}
	return flags, nil
}

// SoftDeleteByIDs 批量软删除
// 幂等:对已删除的订单重复删除不报错,也不计入返回的行数
func (r *orderRepository) SoftDeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	db := r.getDB(ctx)

	result := db.Model(&OrderModel{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "批量删除订单失败")
	}
	return result.RowsAffected, nil
}

// RestoreByIDs 批量恢复软删除
func (r *orderRepository) RestoreByIDs(ctx context.Context, ids []uint) (int64, error) {
	db := r.getDB(ctx)

	result := db.Model(&OrderModel{}).
		Where("id IN ? AND is_deleted = ?", ids, true).
		Update("is_deleted", false)
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "批量恢复订单失败")
	}
	return result.RowsAffected, nil
}

// AddNote 追加订单备注
func (r *orderRepository) AddNote(ctx context.Context, orderID uint, note *order.OrderNote) error {
	db := r.getDB(ctx)

	// 先确认订单存在,外键约束的错误信息对调用方不友好
	var count int64
	if err := db.Model(&OrderModel{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "查询订单失败")
	}
	if count == 0 {
		return order.ErrOrderNotFound
	}

	model := OrderNoteModel{
		OrderID:   orderID,
		Author:    note.Author,
		Content:   note.Content,
		IsPrivate: note.IsPrivate,
		CreatedAt: note.CreatedAt,
	}
	if err := db.Create(&model).Error; err != nil {
		return apperrors.Wrap(err, "添加备注失败")
	}

	note.ID = model.ID
	return nil
}

// DeleteNote 删除订单备注
// WHERE同时限定order_id,防止拿着别的订单的noteID误删
func (r *orderRepository) DeleteNote(ctx context.Context, orderID, noteID uint) error {
	db := r.getDB(ctx)

	result := db.Where("id = ? AND order_id = ?", noteID, orderID).Delete(&OrderNoteModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除备注失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrNoteNotFound
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}

	notes := make([]order.OrderNote, len(model.Notes))
	for i, note := range model.Notes {
		notes[i] = order.OrderNote{
			ID:        note.ID,
			OrderID:   note.OrderID,
			Author:    note.Author,
			Content:   note.Content,
			IsPrivate: note.IsPrivate,
			CreatedAt: note.CreatedAt,
		}
	}

	return &order.Order{
		ID:              model.ID,
		OrderNo:         model.OrderNo,
		OrderStatus:     order.OrderStatus(model.OrderStatus),
		PaymentStatus:   order.PaymentStatus(model.PaymentStatus),
		TotalAmount:     model.TotalAmount,
		Subtotal:        model.Subtotal,
		ShippingFee:     model.ShippingFee,
		Discount:        model.Discount,
		Tax:             model.Tax,
		CustomerName:    model.CustomerName,
		CustomerPhone:   model.CustomerPhone,
		CustomerEmail:   model.CustomerEmail,
		ShippingAddress: model.ShippingAddress,
		IsDeleted:       model.IsDeleted,
		Items:           items,
		Notes:           notes,
		OrderDate:       model.OrderDate,
		PaidAt:          model.PaidAt,
		DeliveredAt:     model.DeliveredAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
