package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/shopadmin/internal/application/order"
	"github.com/xiebiao/shopadmin/internal/domain/order"
	"github.com/xiebiao/shopadmin/internal/interface/http/dto"
	"github.com/xiebiao/shopadmin/internal/interface/http/middleware"
	"github.com/xiebiao/shopadmin/pkg/response"
)

// OrderHandler 订单管理HTTP处理器
type OrderHandler struct {
	listOrdersUseCase   *apporder.ListOrdersUseCase
	getOrderUseCase     *apporder.GetOrderUseCase
	updateStatusUseCase *apporder.UpdateStatusUseCase
	bulkActionUseCase   *apporder.BulkActionUseCase
	exportOrdersUseCase *apporder.ExportOrdersUseCase
	orderNotesUseCase   *apporder.OrderNotesUseCase
}

// NewOrderHandler 创建订单管理处理器
func NewOrderHandler(
	listOrdersUseCase *apporder.ListOrdersUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	updateStatusUseCase *apporder.UpdateStatusUseCase,
	bulkActionUseCase *apporder.BulkActionUseCase,
	exportOrdersUseCase *apporder.ExportOrdersUseCase,
	orderNotesUseCase *apporder.OrderNotesUseCase,
) *OrderHandler {
	return &OrderHandler{
		listOrdersUseCase:   listOrdersUseCase,
		getOrderUseCase:     getOrderUseCase,
		updateStatusUseCase: updateStatusUseCase,
		bulkActionUseCase:   bulkActionUseCase,
		exportOrdersUseCase: exportOrdersUseCase,
		orderNotesUseCase:   orderNotesUseCase,
	}
}

// ListOrders 订单列表
// @Summary      订单列表
// @Description  分页查询订单，支持关键词、状态、日期区间、金额区间、买家信息过滤
// @Tags         订单管理
// @Produce      json
// @Security     BearerAuth
// @Param        keyword query string false "订单号或买家姓名（模糊）"
// @Param        order_status query string false "订单状态" Enums(pending, processing, shipped, delivered, cancelled)
// @Param        payment_status query string false "支付状态" Enums(pending, paid, failed, refunded)
// @Param        date_range_type query string false "日期区间类型" Enums(today, yesterday, week, month, quarter, year, custom)
// @Param        from_date query string false "起始日期 YYYY-MM-DD"
// @Param        to_date query string false "结束日期 YYYY-MM-DD"
// @Param        min_amount query int false "最小金额（分）"
// @Param        max_amount query int false "最大金额（分）"
// @Param        sort_by query string false "排序字段" Enums(order_date, total_amount, order_no)
// @Param        sort_order query string false "排序方向" Enums(asc, desc)
// @Param        page query int false "页码，默认1"
// @Param        limit query int false "每页条数" Enums(10, 20, 50, 100)
// @Param        deleted query bool false "是否查回收站"
// @Success      200 {object} response.Response{data=apporder.ListOrdersResponse} "查询成功"
// @Failure      40902 {object} response.Response "过滤参数错误（逐字段返回）"
// @Router       /admin/orders [get]
//
// 教学说明：过期响应丢弃
// 管理员快速连续修改过滤条件时，慢查询的结果可能晚于新查询到达。
// 用例层用单调序号标记每次查询，旧序号的结果在这里直接丢弃，
// 返回204让前端保持当前视图，等最新查询的结果。
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter, err := order.ParseFilter(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	// 序号按管理员隔离,别人刷新列表不影响自己请求的新旧判定
	viewer := strconv.FormatUint(uint64(middleware.MustGetAdminID(c)), 10)
	result, err := h.listOrdersUseCase.Execute(c.Request.Context(), viewer, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Stale {
		c.Status(204)
		return
	}

	response.Success(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  查询单个订单的完整信息（含商品明细、备注、可选的下一状态）
// @Tags         订单管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.GetOrderResponse} "查询成功"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /admin/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	result, err := h.getOrderUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus 状态流转
// @Summary      修改订单状态
// @Description  修改订单履约状态或支付状态，非法流转会被拒绝，敏感流转返回警告
// @Tags         订单管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.UpdateStatusResponse} "流转成功（warning非空时需前端提示）"
// @Failure      40001 {object} response.Response "非法状态流转"
// @Failure      40003 {object} response.Response "未知状态值"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateStatusUseCase.Execute(c.Request.Context(), apporder.UpdateStatusRequest{
		OrderID:    id,
		Kind:       order.StatusKind(req.Kind),
		Status:     req.Status,
		OperatorID: middleware.MustGetAdminID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 流转成功但属于敏感操作时，warning随响应带回去提示管理员
	if result.Warning != "" {
		response.SuccessWithWarning(c, result, result.Warning)
		return
	}
	response.Success(c, result)
}

// StatusOptions 状态候选
// @Summary      查询可流转的状态
// @Description  给定当前状态，返回合法的目标状态列表（含当前状态本身），用于前端下拉框
// @Tags         订单管理
// @Produce      json
// @Security     BearerAuth
// @Param        kind query string true "状态类别" Enums(order, payment)
// @Param        current query string true "当前状态值"
// @Success      200 {object} response.Response "查询成功"
// @Failure      40002 {object} response.Response "未知状态类别"
// @Failure      40003 {object} response.Response "未知状态值"
// @Router       /admin/orders/status-options [get]
func (h *OrderHandler) StatusOptions(c *gin.Context) {
	var req dto.StatusOptionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	options, err := order.ValidNextStatuses(order.StatusKind(req.Kind), req.Current)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, options)
}

// BulkAction 批量操作
// @Summary      批量操作
// @Description  对勾选的订单执行批量删除/恢复/导出；恢复要求集合内全部是已删除订单，否则整体拒绝
// @Tags         订单管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BulkActionRequest true "操作与ID集合"
// @Success      200 {object} response.Response{data=apporder.BulkActionResult} "执行成功"
// @Failure      40004 {object} response.Response "勾选集合为空"
// @Failure      40005 {object} response.Response "勾选集合中有订单状态不符（恢复时）"
// @Router       /admin/orders/bulk [post]
func (h *OrderHandler) BulkAction(c *gin.Context) {
	var req dto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 批量导出不走事务用例，直接复用导出逻辑
	if req.Action == "export" {
		h.exportByIDs(c, req.IDs)
		return
	}

	result, err := h.bulkActionUseCase.Execute(c.Request.Context(), apporder.BulkActionRequest{
		Action:     req.Action,
		IDs:        req.IDs,
		OperatorID: middleware.MustGetAdminID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ExportOrders 按过滤条件导出
// @Summary      导出订单CSV
// @Description  按当前列表过滤条件导出全部匹配订单（非仅当前页），返回带BOM的CSV文件
// @Tags         订单管理
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200 {file} file "CSV文件"
// @Failure      40902 {object} response.Response "过滤参数错误"
// @Router       /admin/orders/export [get]
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	filter, err := order.ParseFilter(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exportOrdersUseCase.ExportByFilter(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	writeCSV(c, result)
}

// AddNote 添加备注
// @Summary      添加订单备注
// @Description  给订单添加管理备注，作者取自当前登录管理员
// @Tags         订单管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.AddNoteRequest true "备注内容"
// @Success      200 {object} response.Response{data=apporder.OrderNoteDTO} "添加成功"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /admin/orders/{id}/notes [post]
func (h *OrderHandler) AddNote(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.orderNotesUseCase.AddNote(c.Request.Context(), apporder.AddNoteRequest{
		OrderID:   id,
		Author:    middleware.GetUsername(c),
		Content:   req.Content,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteNote 删除备注
// @Summary      删除订单备注
// @Tags         订单管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        note_id path int true "备注ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      40402 {object} response.Response "备注不存在"
// @Router       /admin/orders/{id}/notes/{note_id} [delete]
func (h *OrderHandler) DeleteNote(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}
	noteID, err := parseIDParam(c, "note_id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的备注ID")
		return
	}

	if err := h.orderNotesUseCase.DeleteNote(c.Request.Context(), id, noteID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// exportByIDs 批量导出勾选的订单
func (h *OrderHandler) exportByIDs(c *gin.Context, ids []uint) {
	result, err := h.exportOrdersUseCase.ExportByIDs(c.Request.Context(), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeCSV(c, result)
}

// writeCSV 以文件下载形式返回CSV
func writeCSV(c *gin.Context, result *apporder.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	c.Data(200, result.ContentType, result.Data)
}

// parseIDParam 解析路径中的数字ID
func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id param %q", c.Param(name))
	}
	return uint(id), nil
}
