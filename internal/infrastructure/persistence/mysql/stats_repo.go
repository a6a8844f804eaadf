package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	"github.com/xiebiao/shopadmin/internal/domain/stats"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// statsRepository 统计读模型实现(MySQL)
// 设计说明:
// 1. 所有查询都是聚合SQL,直接扫orders/order_items表,不走领域实体
// 2. 软删除订单一律排除,回收站里的数据不参与任何统计
// 3. 营收口径:排除已取消订单的totalAmount之和
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(db *gorm.DB) stats.Repository {
	return &statsRepository{db: db}
}

// scoped 叠加软删除排除和可选的时间区间条件
func (r *statsRepository) scoped(ctx context.Context, rng *stats.Range) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&OrderModel{}).Where("is_deleted = ?", false)
	if rng != nil {
		query = query.Where("order_date >= ? AND order_date < ?", rng.From, rng.To)
	}
	return query
}

// CountsByStatus 按状态分解的订单数
// 教学要点:一条GROUP BY查出全部分项,再在内存里装配,
// 比按状态发五条COUNT便宜,也保证各分项出自同一时刻的数据
func (r *statsRepository) CountsByStatus(ctx context.Context, rng *stats.Range) (stats.StatusCounts, error) {
	var rows []struct {
		OrderStatus string
		Count       int64
	}
	err := r.scoped(ctx, rng).
		Select("order_status, COUNT(*) AS count").
		Group("order_status").
		Find(&rows).Error
	if err != nil {
		return stats.StatusCounts{}, apperrors.Wrap(err, "统计订单状态分布失败")
	}

	var counts stats.StatusCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch order.OrderStatus(row.OrderStatus) {
		case order.OrderStatusPending:
			counts.Pending = row.Count
		case order.OrderStatusProcessing:
			counts.Processing = row.Count
		case order.OrderStatusShipped:
			counts.Shipped = row.Count
		case order.OrderStatusDelivered:
			counts.Delivered = row.Count
		case order.OrderStatusCancelled:
			counts.Cancelled = row.Count
		}
	}
	return counts, nil
}

// TotalRevenue 区间内未取消订单的总营收
func (r *statsRepository) TotalRevenue(ctx context.Context, rng stats.Range) (int64, error) {
	var revenue int64
	err := r.scoped(ctx, &rng).
		Where("order_status <> ?", string(order.OrderStatusCancelled)).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计营收失败")
	}
	return revenue, nil
}

// AvgProcessingHours 已签收订单从下单到签收的平均小时数
func (r *statsRepository) AvgProcessingHours(ctx context.Context, rng stats.Range) (float64, error) {
	var hours float64
	err := r.scoped(ctx, &rng).
		Where("order_status = ? AND delivered_at IS NOT NULL", string(order.OrderStatusDelivered)).
		Select("COALESCE(AVG(TIMESTAMPDIFF(SECOND, order_date, delivered_at)) / 3600, 0)").
		Scan(&hours).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计平均处理时长失败")
	}
	return hours, nil
}

// TopProducts 按销量排序的商品排行
// 销量和销售额都只统计未取消订单
func (r *statsRepository) TopProducts(ctx context.Context, rng stats.Range, limit int) ([]stats.ProductSales, error) {
	var rows []stats.ProductSales
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, order_items.product_name, "+
			"SUM(order_items.quantity) AS quantity_sold, "+
			"SUM(order_items.quantity * order_items.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.is_deleted = ? AND orders.order_status <> ?", false, string(order.OrderStatusCancelled)).
		Where("orders.order_date >= ? AND orders.order_date < ?", rng.From, rng.To).
		Group("order_items.product_id, order_items.product_name").
		Order("quantity_sold DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计商品排行失败")
	}
	return rows, nil
}

// RecentOrders 区间内最近下单的订单
func (r *statsRepository) RecentOrders(ctx context.Context, rng stats.Range, limit int) ([]stats.RecentOrder, error) {
	var models []OrderModel
	err := r.scoped(ctx, &rng).
		Order("order_date DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询近期订单失败")
	}

	out := make([]stats.RecentOrder, len(models))
	for i, m := range models {
		out[i] = stats.RecentOrder{
			ID:           m.ID,
			OrderNo:      m.OrderNo,
			CustomerName: m.CustomerName,
			Status:       m.OrderStatus,
			TotalAmount:  m.TotalAmount,
			OrderDate:    m.OrderDate,
		}
	}
	return out, nil
}

// RevenueSeries 按日或按月聚合的营收时序
// 教学要点:DATE_FORMAT在MySQL侧完成分桶,Go侧不再二次聚合
func (r *statsRepository) RevenueSeries(ctx context.Context, rng stats.Range, groupBy string) ([]stats.RevenuePoint, error) {
	format := "%Y-%m-%d"
	if groupBy == stats.GroupByMonth {
		format = "%Y-%m"
	}

	var rows []stats.RevenuePoint
	err := r.scoped(ctx, &rng).
		Where("order_status <> ?", string(order.OrderStatusCancelled)).
		Select("DATE_FORMAT(order_date, ?) AS bucket, "+
			"COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders", format).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计营收时序失败")
	}
	return rows, nil
}
