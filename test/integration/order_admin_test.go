package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：订单后台集成测试
//
// 测试场景覆盖：
// 1. 订单列表的过滤、分页、回收站视图
// 2. 状态流转（合法、非法、敏感流转的警告）
// 3. 批量删除/恢复（恢复的整体拒绝语义）
// 4. 订单备注的增删
// 5. CSV导出
//
// 运行前提：服务已启动（go run ./cmd/api），MySQL与服务共用

// orderRowData 列表行响应数据
type orderRowData struct {
	ID            uint   `json:"id"`
	OrderNo       string `json:"order_no"`
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
	TotalAmount   int64  `json:"total_amount"`
	IsDeleted     bool   `json:"is_deleted"`
}

// orderListData 列表响应数据
type orderListData struct {
	Rows  []orderRowData `json:"rows"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// TestOrderList 测试订单列表查询
func TestOrderList(t *testing.T) {
	token := AdminToken(t)
	db := OpenTestDB(t)

	id1 := SeedOrder(t, db, SeedOrderOption{OrderStatus: "shipped", PaymentStatus: "paid", TotalAmount: 25000})
	id2 := SeedOrder(t, db, SeedOrderOption{OrderStatus: "pending", IsDeleted: true})
	defer CleanupOrders(t, db, id1, id2)

	t.Run("默认视图不含回收站订单", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/orders?order_status=shipped&limit=100", token)
		require.Equal(t, 0, resp.Code, "列表查询失败: %s", resp.Message)

		var data orderListData
		require.NoError(t, json.Unmarshal(resp.Data, &data), "解析列表响应失败")

		found := false
		for _, row := range data.Rows {
			assert.False(t, row.IsDeleted, "默认视图不应出现已删除订单")
			if row.ID == id1 {
				found = true
				assert.Equal(t, int64(25000), row.TotalAmount, "金额应与写入一致")
			}
		}
		assert.True(t, found, "新建的shipped订单应出现在列表中")
	})

	t.Run("回收站视图只含已删除订单", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/orders?deleted=true&limit=100", token)
		require.Equal(t, 0, resp.Code, "回收站查询失败: %s", resp.Message)

		var data orderListData
		require.NoError(t, json.Unmarshal(resp.Data, &data), "解析列表响应失败")

		for _, row := range data.Rows {
			assert.True(t, row.IsDeleted, "回收站视图只应出现已删除订单")
		}
	})

	t.Run("日期预设过滤掉历史订单", func(t *testing.T) {
		// 同一买家下两笔订单,一笔今天一笔多年前,按today预设只应查到今天这笔
		buyer := fmt.Sprintf("预设买家%d", time.Now().UnixNano())
		idToday := SeedOrder(t, db, SeedOrderOption{CustomerName: buyer})
		idOld := SeedOrder(t, db, SeedOrderOption{
			CustomerName: buyer,
			OrderDate:    time.Date(2019, 5, 5, 12, 0, 0, 0, time.Local),
		})
		defer CleanupOrders(t, db, idToday, idOld)

		resp := GetJSON(t, BaseURL+"/admin/orders?customer_name="+url.QueryEscape(buyer)+"&date_range_type=today&limit=100", token)
		require.Equal(t, 0, resp.Code, "预设日期查询失败: %s", resp.Message)

		var data orderListData
		require.NoError(t, json.Unmarshal(resp.Data, &data), "解析列表响应失败")
		require.Equal(t, int64(1), data.Total, "today预设应只命中今天的订单")
		assert.Equal(t, idToday, data.Rows[0].ID, "命中的应是今天下的订单")
	})

	t.Run("非法limit逐字段报错", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/orders?limit=33&page=0", token)
		assert.Equal(t, 40902, resp.Code, "非法分页参数应返回校验错误")
	})

	t.Run("未登录被拒绝", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/admin/orders", "")
		assert.NotEqual(t, 0, resp.Code, "未登录应该失败")
	})
}

// TestOrderStatusTransition 测试状态流转
func TestOrderStatusTransition(t *testing.T) {
	token := AdminToken(t)
	db := OpenTestDB(t)

	t.Run("合法流转", func(t *testing.T) {
		id := SeedOrder(t, db, SeedOrderOption{OrderStatus: "pending"})
		defer CleanupOrders(t, db, id)

		resp := PutJSON(t, fmt.Sprintf("%s/admin/orders/%d/status", BaseURL, id),
			map[string]string{"kind": "order", "status": "processing"}, token)
		require.Equal(t, 0, resp.Code, "pending→processing应该成功: %s", resp.Message)
		assert.Empty(t, resp.Warning, "常规流转不应有警告")
	})

	t.Run("非法流转被拒绝", func(t *testing.T) {
		id := SeedOrder(t, db, SeedOrderOption{OrderStatus: "pending"})
		defer CleanupOrders(t, db, id)

		resp := PutJSON(t, fmt.Sprintf("%s/admin/orders/%d/status", BaseURL, id),
			map[string]string{"kind": "order", "status": "delivered"}, token)
		assert.Equal(t, 40001, resp.Code, "pending→delivered应被拒绝")
	})

	t.Run("敏感流转带警告但已生效", func(t *testing.T) {
		id := SeedOrder(t, db, SeedOrderOption{OrderStatus: "shipped", PaymentStatus: "paid"})
		defer CleanupOrders(t, db, id)

		resp := PutJSON(t, fmt.Sprintf("%s/admin/orders/%d/status", BaseURL, id),
			map[string]string{"kind": "order", "status": "cancelled"}, token)
		require.Equal(t, 0, resp.Code, "shipped→cancelled应该成功: %s", resp.Message)
		assert.NotEmpty(t, resp.Warning, "已发货订单取消应返回警告")

		detail := GetJSON(t, fmt.Sprintf("%s/admin/orders/%d", BaseURL, id), token)
		require.Equal(t, 0, detail.Code, "详情查询失败")
		var data struct {
			OrderStatus string `json:"order_status"`
		}
		require.NoError(t, json.Unmarshal(detail.Data, &data), "解析详情失败")
		assert.Equal(t, "cancelled", data.OrderStatus, "警告不阻止操作,状态应已落库")
	})

	t.Run("终态不可再流转", func(t *testing.T) {
		id := SeedOrder(t, db, SeedOrderOption{OrderStatus: "delivered", PaymentStatus: "paid"})
		defer CleanupOrders(t, db, id)

		resp := PutJSON(t, fmt.Sprintf("%s/admin/orders/%d/status", BaseURL, id),
			map[string]string{"kind": "order", "status": "shipped"}, token)
		assert.Equal(t, 40001, resp.Code, "delivered是终态,不应允许回退")
	})
}

// TestOrderBulkAction 测试批量操作
func TestOrderBulkAction(t *testing.T) {
	token := AdminToken(t)
	db := OpenTestDB(t)

	t.Run("批量删除后可恢复", func(t *testing.T) {
		id1 := SeedOrder(t, db, SeedOrderOption{})
		id2 := SeedOrder(t, db, SeedOrderOption{})
		defer CleanupOrders(t, db, id1, id2)

		resp := PostJSON(t, BaseURL+"/admin/orders/bulk",
			map[string]interface{}{"action": "delete", "ids": []uint{id1, id2}}, token)
		require.Equal(t, 0, resp.Code, "批量删除失败: %s", resp.Message)

		var result struct {
			SucceededIDs    []uint `json:"succeeded_ids"`
			ClearSelection  bool   `json:"clear_selection"`
			RequiresRefetch bool   `json:"requires_refetch"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result), "解析批量结果失败")
		assert.Len(t, result.SucceededIDs, 2, "两笔订单都应删除成功")
		assert.True(t, result.ClearSelection, "批量操作后应指示清空勾选")
		assert.True(t, result.RequiresRefetch, "批量操作后应指示重拉列表")

		restore := PostJSON(t, BaseURL+"/admin/orders/bulk",
			map[string]interface{}{"action": "restore", "ids": []uint{id1, id2}}, token)
		require.Equal(t, 0, restore.Code, "批量恢复失败: %s", restore.Message)
	})

	t.Run("恢复集合含未删除订单时整体拒绝", func(t *testing.T) {
		deleted := SeedOrder(t, db, SeedOrderOption{IsDeleted: true})
		active := SeedOrder(t, db, SeedOrderOption{})
		defer CleanupOrders(t, db, deleted, active)

		resp := PostJSON(t, BaseURL+"/admin/orders/bulk",
			map[string]interface{}{"action": "restore", "ids": []uint{deleted, active}}, token)
		assert.Equal(t, 40005, resp.Code, "含未删除订单的恢复应整体拒绝")

		// 整体拒绝意味着已删除的那笔也不能被恢复
		trash := GetJSON(t, BaseURL+"/admin/orders?deleted=true&limit=100", token)
		require.Equal(t, 0, trash.Code, "回收站查询失败")
		var data orderListData
		require.NoError(t, json.Unmarshal(trash.Data, &data), "解析列表响应失败")
		found := false
		for _, row := range data.Rows {
			if row.ID == deleted {
				found = true
			}
		}
		assert.True(t, found, "整体拒绝后已删除订单应仍在回收站")
	})

	t.Run("空集合被拒绝", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/admin/orders/bulk",
			map[string]interface{}{"action": "delete", "ids": []uint{}}, token)
		assert.Equal(t, 40004, resp.Code, "空勾选集合应返回40004")
	})
}

// TestOrderNotes 测试订单备注
func TestOrderNotes(t *testing.T) {
	token := AdminToken(t)
	db := OpenTestDB(t)

	id := SeedOrder(t, db, SeedOrderOption{})
	defer CleanupOrders(t, db, id)

	resp := PostJSON(t, fmt.Sprintf("%s/admin/orders/%d/notes", BaseURL, id),
		map[string]interface{}{"content": "  买家要求周末配送  ", "is_private": true}, token)
	require.Equal(t, 0, resp.Code, "添加备注失败: %s", resp.Message)

	var note struct {
		ID      uint   `json:"id"`
		Author  string `json:"author"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &note), "解析备注响应失败")
	assert.Equal(t, "买家要求周末配送", note.Content, "备注内容应去掉首尾空白")
	assert.Equal(t, "admin", note.Author, "作者应取自JWT里的用户名")

	del := DeleteJSON(t, fmt.Sprintf("%s/admin/orders/%d/notes/%d", BaseURL, id, note.ID), token)
	assert.Equal(t, 0, del.Code, "删除备注失败: %s", del.Message)

	again := DeleteJSON(t, fmt.Sprintf("%s/admin/orders/%d/notes/%d", BaseURL, id, note.ID), token)
	assert.Equal(t, 40402, again.Code, "重复删除应返回备注不存在")
}

// TestOrderExport 测试CSV导出
func TestOrderExport(t *testing.T) {
	token := AdminToken(t)
	db := OpenTestDB(t)

	id := SeedOrder(t, db, SeedOrderOption{OrderStatus: "shipped", PaymentStatus: "paid"})
	defer CleanupOrders(t, db, id)

	req, err := http.NewRequest("GET", BaseURL+"/admin/orders/export?order_status=shipped", nil)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode, "导出应返回200")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv", "应返回CSV内容类型")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment", "应作为附件下载")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取CSV失败")
	require.True(t, len(body) > 3, "CSV不应为空")
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, body[:3], "CSV应带UTF-8 BOM")
}

// TestStatusOptions 测试状态候选查询
func TestStatusOptions(t *testing.T) {
	token := AdminToken(t)

	resp := GetJSON(t, BaseURL+"/admin/orders/status-options?kind=order&current=pending", token)
	require.Equal(t, 0, resp.Code, "状态候选查询失败: %s", resp.Message)

	var options []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &options), "解析候选列表失败")
	require.NotEmpty(t, options, "候选不应为空")
	assert.Equal(t, "pending", options[0].Value, "当前状态应排在第一位")

	bad := GetJSON(t, BaseURL+"/admin/orders/status-options?kind=order&current=nonsense", token)
	assert.Equal(t, 40003, bad.Code, "未知状态应返回40003")
}
