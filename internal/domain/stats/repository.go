package stats

import "context"

// 营收时序的聚合粒度
const (
	GroupByDay   = "day"
	GroupByMonth = "month"
)

// Repository 统计读模型接口
// 设计说明:与order.Repository分开定义,统计查询全是聚合SQL,
// 和聚合根的读写路径完全不同,接口混在一起只会互相拖累
type Repository interface {
	// CountsByStatus 区间内按状态分解的订单数,r为nil时统计全量
	// 已软删除的订单不计入任何统计
	CountsByStatus(ctx context.Context, r *Range) (StatusCounts, error)

	// TotalRevenue 区间内未取消订单的总营收(分)
	TotalRevenue(ctx context.Context, r Range) (int64, error)

	// AvgProcessingHours 区间内已签收订单从下单到签收的平均小时数
	// 区间内没有已签收订单时返回0
	AvgProcessingHours(ctx context.Context, r Range) (float64, error)

	// TopProducts 区间内按销量排序的商品排行
	TopProducts(ctx context.Context, r Range, limit int) ([]ProductSales, error)

	// RecentOrders 区间内最近下单的订单
	RecentOrders(ctx context.Context, r Range, limit int) ([]RecentOrder, error)

	// RevenueSeries 区间内按日或按月聚合的营收时序,空桶不补零
	RevenueSeries(ctx context.Context, r Range, groupBy string) ([]RevenuePoint, error)
}
