package order

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
	"github.com/xiebiao/shopadmin/pkg/metrics"
)

// ExportOrdersUseCase 订单导出用例
// 两种入口共用一个用例:
// 1. 按当前过滤条件导出(不分页,导出过滤命中的全部订单)
// 2. 按勾选的ID集合导出(批量操作里的export动作)
type ExportOrdersUseCase struct {
	orderRepo order.Repository
}

// NewExportOrdersUseCase 创建导出用例
func NewExportOrdersUseCase(orderRepo order.Repository) *ExportOrdersUseCase {
	return &ExportOrdersUseCase{orderRepo: orderRepo}
}

// ExportResult 导出结果
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	RowCount    int
}

// csvHeader 导出列与后台列表页的列保持一致
var csvHeader = []string{
	"订单号", "买家", "电话", "订单状态", "支付状态",
	"商品数", "总金额(元)", "下单时间",
}

// ExportByIDs 按勾选的ID集合导出
func (uc *ExportOrdersUseCase) ExportByIDs(ctx context.Context, ids []uint) (*ExportResult, error) {
	if len(ids) == 0 {
		return nil, order.ErrEmptySelection
	}

	orders, err := uc.orderRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(orders))
	for i, o := range orders {
		quantity := 0
		for _, item := range o.Items {
			quantity += item.Quantity
		}
		rows[i] = csvRow(o.OrderNo, o.CustomerName, o.CustomerPhone,
			o.OrderStatus.Label(), o.PaymentStatus.Label(),
			quantity, o.TotalAmount, o.OrderDate)
	}

	return uc.write(rows)
}

// ExportByFilter 按过滤条件导出(不分页)
// 教学要点:复用列表查询的过滤逻辑,但分页改成逐页扫完,
// 导出和列表页看到的永远是同一个口径
func (uc *ExportOrdersUseCase) ExportByFilter(ctx context.Context, filter order.ListFilter) (*ExportResult, error) {
	var rows [][]string

	// 逐页拉取,单页用最大允许的条数
	filter.Limit = 100
	for page := 1; ; page++ {
		filter.Page = page
		summaries, total, err := uc.orderRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}

		for _, s := range summaries {
			rows = append(rows, csvRow(s.OrderNo, s.CustomerName, "",
				s.Status.Label(), s.PaymentStatus.Label(),
				s.ItemCount, s.TotalAmount, s.OrderDate))
		}

		if int64(page*filter.Limit) >= total || len(summaries) == 0 {
			break
		}
	}

	return uc.write(rows)
}

// write 生成CSV文件
func (uc *ExportOrdersUseCase) write(rows [][]string) (*ExportResult, error) {
	var buf bytes.Buffer

	// UTF-8 BOM:Excel直接打开不乱码
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, apperrors.Wrap(err, "写入导出文件失败")
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, apperrors.Wrap(err, "写入导出文件失败")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Wrap(err, "写入导出文件失败")
	}

	metrics.OrdersExportedTotal.Add(float64(len(rows)))

	return &ExportResult{
		Filename:    "orders-" + time.Now().Format("20060102-150405") + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        buf.Bytes(),
		RowCount:    len(rows),
	}, nil
}

// csvRow 拼一行导出数据
func csvRow(orderNo, customer, phone, status, payment string, quantity int, amount int64, date time.Time) []string {
	return []string{
		orderNo,
		customer,
		phone,
		status,
		payment,
		strconv.Itoa(quantity),
		formatYuan(amount),
		date.Format("2006-01-02 15:04:05"),
	}
}

// formatYuan 格式化金额(分→元)
func formatYuan(fen int64) string {
	return strconv.FormatFloat(float64(fen)/100.0, 'f', 2, 64)
}
