package dashboard

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/shopadmin/internal/domain/stats"
	"github.com/xiebiao/shopadmin/pkg/metrics"
	"github.com/xiebiao/shopadmin/pkg/tracing"
)

// 仪表盘展示条数的固定上限
const (
	topProductsLimit  = 10
	recentOrdersLimit = 10
)

// SnapshotCache 统计快照缓存出口(由redis.StatsCache实现)
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, r stats.Range) (*stats.Snapshot, error)
	SetSnapshot(ctx context.Context, r stats.Range, snapshot *stats.Snapshot) error
}

// StatsUseCase 仪表盘统计用例
// 教学要点:
// 1. 快照由多条聚合查询装配,装配完必须做求和校验:
//    分项加起来对不上总数,说明查询口径出了bug,直接报错,
//    绝不在展示层悄悄把数字抹平
// 2. 环比就是把同样的口径在"紧邻等长的前一区间"再算一遍
// 3. 缓存失败一律降级回源,仪表盘不能因为Redis抖动而打不开
type StatsUseCase struct {
	statsRepo stats.Repository
	cache     SnapshotCache
	now       func() time.Time
}

// NewStatsUseCase 创建统计用例
func NewStatsUseCase(statsRepo stats.Repository, cache SnapshotCache) *StatsUseCase {
	return &StatsUseCase{
		statsRepo: statsRepo,
		cache:     cache,
		now:       time.Now,
	}
}

// StatsRequest 统计请求DTO
type StatsRequest struct {
	Period              stats.PeriodType
	FromDate            *time.Time // period=custom时必填
	ToDate              *time.Time // period=custom时必填
	CompareWithPrevious bool
}

// GetStats 查询区间统计(可选环比)
func (uc *StatsUseCase) GetStats(ctx context.Context, req StatsRequest) (*stats.Comparison, error) {
	rng, err := stats.ResolvePeriod(req.Period, req.FromDate, req.ToDate, uc.now())
	if err != nil {
		return nil, err
	}

	current, err := uc.snapshot(ctx, rng)
	if err != nil {
		return nil, err
	}

	if !req.CompareWithPrevious {
		return &stats.Comparison{Current: current}, nil
	}

	previous, err := uc.snapshot(ctx, rng.Previous())
	if err != nil {
		return nil, err
	}
	return stats.Compare(current, previous), nil
}

// snapshot 装配一个区间的统计快照(带缓存)
func (uc *StatsUseCase) snapshot(ctx context.Context, rng stats.Range) (*stats.Snapshot, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.GetSnapshot(ctx, rng); err != nil {
			log.Printf("[仪表盘] 读缓存失败,回源: %v", err)
		} else if cached != nil {
			metrics.DashboardCacheHitsTotal.Inc()
			return cached, nil
		}
		metrics.DashboardCacheMissesTotal.Inc()
	}

	// 缓存未命中才会走到这里,装配过程打上Span,慢了能看出慢在哪条聚合
	ctx, span := tracing.StartSpan(ctx, "dashboard", "stats.snapshot")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.DashboardQueryDuration.Observe(time.Since(start).Seconds())
	}()

	counts, err := uc.statsRepo.CountsByStatus(ctx, &rng)
	if err != nil {
		return nil, err
	}
	// 分项求和校验,对不上直接报DataInconsistency
	if err := counts.Check(); err != nil {
		return nil, err
	}

	revenue, err := uc.statsRepo.TotalRevenue(ctx, rng)
	if err != nil {
		return nil, err
	}

	hours, err := uc.statsRepo.AvgProcessingHours(ctx, rng)
	if err != nil {
		return nil, err
	}

	top, err := uc.statsRepo.TopProducts(ctx, rng, topProductsLimit)
	if err != nil {
		return nil, err
	}

	recent, err := uc.statsRepo.RecentOrders(ctx, rng, recentOrdersLimit)
	if err != nil {
		return nil, err
	}

	snapshot := &stats.Snapshot{
		Range:              rng,
		Counts:             counts,
		TotalRevenue:       revenue,
		AvgProcessingHours: hours,
		TopProducts:        top,
		RecentOrders:       recent,
	}

	if uc.cache != nil {
		if err := uc.cache.SetSnapshot(ctx, rng, snapshot); err != nil {
			log.Printf("[仪表盘] 写缓存失败,忽略: %v", err)
		}
	}
	return snapshot, nil
}

// RevenueSeriesRequest 营收时序请求DTO
type RevenueSeriesRequest struct {
	Period   stats.PeriodType
	FromDate *time.Time
	ToDate   *time.Time
	GroupBy  string // day | month
}

// GetRevenueSeries 查询营收时序
func (uc *StatsUseCase) GetRevenueSeries(ctx context.Context, req RevenueSeriesRequest) ([]stats.RevenuePoint, error) {
	rng, err := stats.ResolvePeriod(req.Period, req.FromDate, req.ToDate, uc.now())
	if err != nil {
		return nil, err
	}

	groupBy := req.GroupBy
	if groupBy == "" {
		groupBy = stats.GroupByDay
	}

	return uc.statsRepo.RevenueSeries(ctx, rng, groupBy)
}

// GetTopProducts 查询商品销量排行
func (uc *StatsUseCase) GetTopProducts(ctx context.Context, req StatsRequest, limit int) ([]stats.ProductSales, error) {
	rng, err := stats.ResolvePeriod(req.Period, req.FromDate, req.ToDate, uc.now())
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = topProductsLimit
	}
	return uc.statsRepo.TopProducts(ctx, rng, limit)
}

// GetStatusCounts 查询全量订单状态分布(不限区间)
// 列表页顶部的状态Tab计数用
func (uc *StatsUseCase) GetStatusCounts(ctx context.Context) (stats.StatusCounts, error) {
	counts, err := uc.statsRepo.CountsByStatus(ctx, nil)
	if err != nil {
		return stats.StatusCounts{}, err
	}
	if err := counts.Check(); err != nil {
		return stats.StatusCounts{}, err
	}
	return counts, nil
}
