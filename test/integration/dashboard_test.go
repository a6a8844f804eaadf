package integration

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：数据看板集成测试
//
// 关键口径验证：
// 1. 已取消订单不计入营收（金额刻意设成100万分,混入也会立刻暴露）
// 2. 回收站订单不计入任何统计
// 3. 状态分布各项之和等于总数
//
// 注意：仪表盘有Redis缓存,测试用custom区间把范围限定在一个
// 独立的历史日期上,既不会命中别人的快照,也不受并发写入干扰

// statsData 看板统计响应数据
type statsData struct {
	Current struct {
		Counts struct {
			Total     int64 `json:"total"`
			Pending   int64 `json:"pending"`
			Cancelled int64 `json:"cancelled"`
		} `json:"counts"`
		TotalRevenue int64 `json:"totalRevenue"`
	} `json:"current"`
}

// TestDashboardStats 测试看板统计口径
func TestDashboardStats(t *testing.T) {
	token := AdminToken(t)
	db := OpenTestDB(t)

	// 把测试数据放在一个固定的历史日内,custom区间只查这一天
	day := time.Date(2020, 3, 15, 10, 0, 0, 0, time.Local)

	paid := SeedOrder(t, db, SeedOrderOption{
		OrderStatus: "delivered", PaymentStatus: "paid",
		TotalAmount: 30000, OrderDate: day,
	})
	cancelled := SeedOrder(t, db, SeedOrderOption{
		OrderStatus: "cancelled", PaymentStatus: "refunded",
		TotalAmount: 1000000, OrderDate: day,
	})
	trashed := SeedOrder(t, db, SeedOrderOption{
		OrderStatus: "pending", TotalAmount: 50000,
		OrderDate: day, IsDeleted: true,
	})
	defer CleanupOrders(t, db, paid, cancelled, trashed)

	url := fmt.Sprintf("%s/admin/dashboard/stats?period=custom&from=2020-03-15&to=2020-03-15", BaseURL)
	resp := GetJSON(t, url, token)
	require.Equal(t, 0, resp.Code, "看板统计查询失败: %s", resp.Message)

	var data statsData
	require.NoError(t, json.Unmarshal(resp.Data, &data), "解析统计响应失败")

	assert.Equal(t, int64(2), data.Current.Counts.Total, "回收站订单不应计入总数")
	assert.Equal(t, int64(1), data.Current.Counts.Cancelled, "已取消订单计入状态分布")
	assert.Equal(t, int64(30000), data.Current.TotalRevenue,
		"营收应只含未取消订单(混入已取消的100万分会立刻暴露)")
}

// TestDashboardCompare 测试环比
func TestDashboardCompare(t *testing.T) {
	token := AdminToken(t)
	db := OpenTestDB(t)

	current := SeedOrder(t, db, SeedOrderOption{
		OrderStatus: "delivered", PaymentStatus: "paid",
		TotalAmount: 20000, OrderDate: time.Date(2020, 5, 10, 9, 0, 0, 0, time.Local),
	})
	previous := SeedOrder(t, db, SeedOrderOption{
		OrderStatus: "delivered", PaymentStatus: "paid",
		TotalAmount: 10000, OrderDate: time.Date(2020, 5, 9, 9, 0, 0, 0, time.Local),
	})
	defer CleanupOrders(t, db, current, previous)

	url := fmt.Sprintf("%s/admin/dashboard/stats?period=custom&from=2020-05-10&to=2020-05-10&compare=true", BaseURL)
	resp := GetJSON(t, url, token)
	require.Equal(t, 0, resp.Code, "环比查询失败: %s", resp.Message)

	var data struct {
		RevenueDelta struct {
			Abs int64    `json:"abs"`
			Pct *float64 `json:"pct"`
		} `json:"revenueDelta"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data), "解析环比响应失败")

	assert.Equal(t, int64(10000), data.RevenueDelta.Abs, "营收差值应为当前减上期")
	require.NotNil(t, data.RevenueDelta.Pct, "上期有数据时百分比不应为空")
	assert.InDelta(t, 100.0, *data.RevenueDelta.Pct, 0.01, "营收环比应为+100%%")
}

// TestDashboardCustomPeriodValidation 测试自定义区间校验
func TestDashboardCustomPeriodValidation(t *testing.T) {
	token := AdminToken(t)

	t.Run("缺少结束日期", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/dashboard/stats?period=custom&from=2020-03-01", token)
		assert.Equal(t, 40006, resp.Code, "custom缺to应返回40006")
	})

	t.Run("起止颠倒", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/dashboard/stats?period=custom&from=2020-03-10&to=2020-03-01", token)
		assert.Equal(t, 40902, resp.Code, "from晚于to应返回校验错误")
	})
}

// TestDashboardStatusCounts 测试全量状态分布
func TestDashboardStatusCounts(t *testing.T) {
	token := AdminToken(t)

	resp := GetJSON(t, BaseURL+"/admin/dashboard/status-counts", token)
	require.Equal(t, 0, resp.Code, "状态分布查询失败: %s", resp.Message)

	var counts struct {
		Total      int64 `json:"total"`
		Pending    int64 `json:"pending"`
		Processing int64 `json:"processing"`
		Shipped    int64 `json:"shipped"`
		Delivered  int64 `json:"delivered"`
		Cancelled  int64 `json:"cancelled"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &counts), "解析状态分布失败")
	assert.Equal(t, counts.Total,
		counts.Pending+counts.Processing+counts.Shipped+counts.Delivered+counts.Cancelled,
		"各状态之和应等于总数")
}
