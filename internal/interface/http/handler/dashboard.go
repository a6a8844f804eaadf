package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appdashboard "github.com/xiebiao/shopadmin/internal/application/dashboard"
	"github.com/xiebiao/shopadmin/internal/domain/stats"
	"github.com/xiebiao/shopadmin/internal/interface/http/dto"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
	"github.com/xiebiao/shopadmin/pkg/response"
)

// DashboardHandler 数据看板HTTP处理器
type DashboardHandler struct {
	statsUseCase *appdashboard.StatsUseCase
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler(statsUseCase *appdashboard.StatsUseCase) *DashboardHandler {
	return &DashboardHandler{statsUseCase: statsUseCase}
}

// GetStats 区间统计
// @Summary      看板统计
// @Description  查询指定时间范围的订单量、营收、状态分布、热销商品、最新订单，可选与上一周期环比
// @Tags         数据看板
// @Produce      json
// @Security     BearerAuth
// @Param        period query string false "时间范围，默认week" Enums(today, yesterday, week, month, quarter, year, custom)
// @Param        from query string false "起始日期 YYYY-MM-DD（period=custom必填）"
// @Param        to query string false "结束日期 YYYY-MM-DD（period=custom必填）"
// @Param        compare query bool false "是否带上一周期环比"
// @Success      200 {object} response.Response "查询成功"
// @Failure      40006 {object} response.Response "自定义区间缺少起止日期"
// @Failure      40007 {object} response.Response "统计数据不一致"
// @Router       /admin/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	var req dto.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	period, from, to, err := parsePeriod(req.Period, req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.statsUseCase.GetStats(c.Request.Context(), appdashboard.StatsRequest{
		Period:              period,
		FromDate:            from,
		ToDate:              to,
		CompareWithPrevious: req.Compare,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetRevenueSeries 营收趋势
// @Summary      营收趋势
// @Description  查询指定范围内按日或按月聚合的营收时序（已取消订单不计入）
// @Tags         数据看板
// @Produce      json
// @Security     BearerAuth
// @Param        period query string false "时间范围，默认month" Enums(today, yesterday, week, month, quarter, year, custom)
// @Param        from query string false "起始日期 YYYY-MM-DD"
// @Param        to query string false "结束日期 YYYY-MM-DD"
// @Param        group_by query string false "聚合粒度，默认day" Enums(day, month)
// @Success      200 {object} response.Response "查询成功"
// @Router       /admin/dashboard/revenue [get]
func (h *DashboardHandler) GetRevenueSeries(c *gin.Context) {
	var req dto.RevenueSeriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	if req.Period == "" {
		req.Period = string(stats.PeriodMonth)
	}

	period, from, to, err := parsePeriod(req.Period, req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.statsUseCase.GetRevenueSeries(c.Request.Context(), appdashboard.RevenueSeriesRequest{
		Period:   period,
		FromDate: from,
		ToDate:   to,
		GroupBy:  req.GroupBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetTopProducts 热销商品
// @Summary      热销商品排行
// @Description  按销量降序返回指定范围内的商品排行
// @Tags         数据看板
// @Produce      json
// @Security     BearerAuth
// @Param        period query string false "时间范围，默认month" Enums(today, yesterday, week, month, quarter, year, custom)
// @Param        from query string false "起始日期 YYYY-MM-DD"
// @Param        to query string false "结束日期 YYYY-MM-DD"
// @Param        limit query int false "返回条数，默认10，最大100"
// @Success      200 {object} response.Response "查询成功"
// @Router       /admin/dashboard/top-products [get]
func (h *DashboardHandler) GetTopProducts(c *gin.Context) {
	var req dto.TopProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}
	if req.Period == "" {
		req.Period = string(stats.PeriodMonth)
	}

	period, from, to, err := parsePeriod(req.Period, req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.statsUseCase.GetTopProducts(c.Request.Context(), appdashboard.StatsRequest{
		Period:   period,
		FromDate: from,
		ToDate:   to,
	}, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetStatusCounts 全量状态分布
// @Summary      订单状态分布
// @Description  不限时间范围统计各状态订单数（回收站不计入）
// @Tags         数据看板
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "查询成功"
// @Failure      40007 {object} response.Response "统计数据不一致"
// @Router       /admin/dashboard/status-counts [get]
func (h *DashboardHandler) GetStatusCounts(c *gin.Context) {
	result, err := h.statsUseCase.GetStatusCounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePeriod 把查询串里的范围参数转成领域类型
// period为空时默认week,日期解析失败的错误交给ResolvePeriod之前拦截
func parsePeriod(period, fromStr, toStr string) (stats.PeriodType, *time.Time, *time.Time, error) {
	p := stats.PeriodType(period)
	if period == "" {
		p = stats.PeriodWeek
	}

	var from, to *time.Time
	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return "", nil, nil, apperrors.NewValidation(map[string]string{"from": "起始日期格式应为YYYY-MM-DD"})
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return "", nil, nil, apperrors.NewValidation(map[string]string{"to": "结束日期格式应为YYYY-MM-DD"})
		}
		to = &t
	}
	return p, from, to, nil
}
