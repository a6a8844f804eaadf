package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/shopadmin/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/shopadmin/pkg/jwt"
)

// 教学说明：集成测试辅助工具
// 集成测试要求服务已在本地启动（go run ./cmd/api），且连同一个MySQL实例。
// 后台没有注册/登录接口（JWT由独立认证服务签发），所以测试里直接用
// 相同密钥签发Token，测试数据也直接写库构造。

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	// 与config/config.yaml保持一致
	testJWTSecret = "your-secret-key-change-in-production"
	testDSN       = "root:root123@tcp(127.0.0.1:3306)/shopadmin?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai"
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Warning string          `json:"warning"`
	Data    json.RawMessage `json:"data"`
}

// orderNoSeq 保证同一测试进程内订单号唯一
var orderNoSeq uint64

// AdminToken 签发测试用管理员Token
func AdminToken(t *testing.T) string {
	manager := jwt.NewManager(testJWTSecret, 2*time.Hour)
	token, err := manager.GenerateToken(1, "admin", "admin")
	require.NoError(t, err, "签发测试Token失败")
	return token
}

// OpenTestDB 连接测试数据库
func OpenTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(gormmysql.Open(testDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接测试数据库失败")
	return db
}

// SeedOrderOption 测试订单的可调参数
type SeedOrderOption struct {
	OrderStatus   string
	PaymentStatus string
	TotalAmount   int64
	IsDeleted     bool
	OrderDate     time.Time
	CustomerName  string
	ItemQuantity  int
}

// SeedOrder 直接写库构造一笔测试订单，返回订单ID
func SeedOrder(t *testing.T, db *gorm.DB, opt SeedOrderOption) uint {
	if opt.OrderStatus == "" {
		opt.OrderStatus = "pending"
	}
	if opt.PaymentStatus == "" {
		opt.PaymentStatus = "pending"
	}
	if opt.TotalAmount == 0 {
		opt.TotalAmount = 10000
	}
	if opt.OrderDate.IsZero() {
		opt.OrderDate = time.Now()
	}
	if opt.CustomerName == "" {
		opt.CustomerName = "测试买家"
	}
	if opt.ItemQuantity == 0 {
		opt.ItemQuantity = 1
	}

	seq := atomic.AddUint64(&orderNoSeq, 1)
	order := mysql.OrderModel{
		OrderNo:       fmt.Sprintf("IT%d%04d", time.Now().UnixNano(), seq),
		OrderStatus:   opt.OrderStatus,
		PaymentStatus: opt.PaymentStatus,
		TotalAmount:   opt.TotalAmount,
		Subtotal:      opt.TotalAmount,
		CustomerName:  opt.CustomerName,
		CustomerPhone: "13800000000",
		IsDeleted:     opt.IsDeleted,
		OrderDate:     opt.OrderDate,
		UpdatedAt:     time.Now(),
		Items: []mysql.OrderItemModel{
			{
				ProductID:   1,
				ProductName: "集成测试商品",
				Quantity:    opt.ItemQuantity,
				Price:       opt.TotalAmount / int64(opt.ItemQuantity),
			},
		},
	}
	require.NoError(t, db.Create(&order).Error, "构造测试订单失败")
	return order.ID
}

// CleanupOrders 删除测试构造的订单
func CleanupOrders(t *testing.T, db *gorm.DB, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	db.Where("order_id IN ?", ids).Delete(&mysql.OrderItemModel{})
	db.Where("order_id IN ?", ids).Delete(&mysql.OrderNoteModel{})
	db.Where("id IN ?", ids).Delete(&mysql.OrderModel{})
}

// doJSON 发送HTTP请求并解析JSON响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "POST", url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "PUT", url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "GET", url, nil, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "DELETE", url, nil, token)
}
