package stats

import (
	"fmt"
	"time"
)

// StatusCounts 按订单状态分解的数量
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Shipped    int64 `json:"shipped"`
	Delivered  int64 `json:"delivered"`
	Cancelled  int64 `json:"cancelled"`
}

// Check 校验分项之和等于总数
// 不相等说明上游聚合查询有口径问题,返回DataInconsistency错误
func (c StatusCounts) Check() error {
	sum := c.Pending + c.Processing + c.Shipped + c.Delivered + c.Cancelled
	if sum != c.Total {
		return NewDataInconsistencyError(
			fmt.Sprintf("状态分项之和%d不等于总数%d", sum, c.Total))
	}
	return nil
}

// ProductSales 商品销量排行的一行
type ProductSales struct {
	ProductID    uint   `json:"productId"`
	ProductName  string `json:"productName"`
	QuantitySold int64  `json:"quantitySold"`
	Revenue      int64  `json:"revenue"` // 销售额(分),已取消订单不计入
}

// RecentOrder 近期订单列表行(仪表盘用的精简投影)
type RecentOrder struct {
	ID           uint      `json:"id"`
	OrderNo      string    `json:"orderNo"`
	CustomerName string    `json:"customerName"`
	Status       string    `json:"status"`
	TotalAmount  int64     `json:"totalAmount"`
	OrderDate    time.Time `json:"orderDate"`
}

// Snapshot 一个时间区间的统计快照
// 口径说明:
// - TotalRevenue只统计未取消订单的totalAmount,取消的订单不产生收入
// - AvgProcessingHours只统计已签收订单,从下单到签收的小时数
type Snapshot struct {
	Range              Range          `json:"range"`
	Counts             StatusCounts   `json:"counts"`
	TotalRevenue       int64          `json:"totalRevenue"`
	AvgProcessingHours float64        `json:"avgProcessingHours"`
	TopProducts        []ProductSales `json:"topProducts"`
	RecentOrders       []RecentOrder  `json:"recentOrders"`
}

// Delta 环比变化量
// Pct为nil表示对照期为0,无法计算百分比(前端展示为"--"而不是无穷大)
type Delta struct {
	Abs int64    `json:"abs"`
	Pct *float64 `json:"pct,omitempty"`
}

// NewDelta 计算当前值相对对照值的变化
func NewDelta(current, previous int64) Delta {
	d := Delta{Abs: current - previous}
	if previous != 0 {
		pct := float64(current-previous) / float64(previous) * 100
		d.Pct = &pct
	}
	return d
}

// Comparison 带环比的统计结果
type Comparison struct {
	Current      *Snapshot `json:"current"`
	OrderDelta   Delta     `json:"orderDelta"`
	RevenueDelta Delta     `json:"revenueDelta"`
}

// Compare 计算当前快照相对对照快照的环比
func Compare(current, previous *Snapshot) *Comparison {
	return &Comparison{
		Current:      current,
		OrderDelta:   NewDelta(current.Counts.Total, previous.Counts.Total),
		RevenueDelta: NewDelta(current.TotalRevenue, previous.TotalRevenue),
	}
}

// RevenuePoint 营收时序的一个数据点
type RevenuePoint struct {
	Bucket  string `json:"bucket"` // 日粒度为YYYY-MM-DD,月粒度为YYYY-MM
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}
