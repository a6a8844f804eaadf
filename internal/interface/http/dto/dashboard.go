package dto

// StatsRequest HTTP看板统计查询参数
// period为custom时必须同时携带from和to,均为YYYY-MM-DD
type StatsRequest struct {
	Period  string `form:"period" binding:"omitempty,oneof=today yesterday week month quarter year custom" example:"week"`
	From    string `form:"from" binding:"omitempty,len=10" example:"2026-08-01"`
	To      string `form:"to" binding:"omitempty,len=10" example:"2026-08-31"`
	Compare bool   `form:"compare" example:"true"`
}

// RevenueSeriesRequest HTTP营收趋势查询参数
type RevenueSeriesRequest struct {
	Period  string `form:"period" binding:"omitempty,oneof=today yesterday week month quarter year custom" example:"month"`
	From    string `form:"from" binding:"omitempty,len=10" example:"2026-08-01"`
	To      string `form:"to" binding:"omitempty,len=10" example:"2026-08-31"`
	GroupBy string `form:"group_by" binding:"omitempty,oneof=day month" example:"day"`
}

// TopProductsRequest HTTP热销商品查询参数
type TopProductsRequest struct {
	Period string `form:"period" binding:"omitempty,oneof=today yesterday week month quarter year custom" example:"month"`
	From   string `form:"from" binding:"omitempty,len=10" example:"2026-08-01"`
	To     string `form:"to" binding:"omitempty,len=10" example:"2026-08-31"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
}
