package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/shopadmin/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&OrderModel{},
		&OrderItemModel{},
		&OrderNoteModel{},
	)
}

// OrderModel GORM订单模型
// 设计说明:
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/order/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
// 4. IsDeleted用显式bool而不是gorm.DeletedAt:回收站视图要把
//    已删除订单当普通数据查出来,恢复操作再把标记翻回去,
//    GORM的软删除钩子会在所有查询里强插WHERE条件,反而碍事
type OrderModel struct {
	ID            uint   `gorm:"primaryKey"`
	OrderNo       string `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	OrderStatus   string `gorm:"index:idx_status;type:varchar(20);not null;comment:订单状态"`
	PaymentStatus string `gorm:"index:idx_status;type:varchar(20);not null;comment:支付状态"`

	TotalAmount int64 `gorm:"index;not null;comment:订单总金额(分)"`
	Subtotal    int64 `gorm:"not null;comment:商品小计(分)"`
	ShippingFee int64 `gorm:"not null;default:0;comment:运费(分)"`
	Discount    int64 `gorm:"not null;default:0;comment:优惠金额(分)"`
	Tax         int64 `gorm:"not null;default:0;comment:税费(分)"`

	CustomerName    string `gorm:"index;size:100;not null;comment:买家姓名(下单快照)"`
	CustomerPhone   string `gorm:"index;size:32;comment:买家电话"`
	CustomerEmail   string `gorm:"size:100;comment:买家邮箱"`
	ShippingAddress string `gorm:"size:500;comment:收货地址"`

	IsDeleted bool `gorm:"index;not null;default:false;comment:软删除标记"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
	Notes []OrderNoteModel `gorm:"foreignKey:OrderID"`

	OrderDate   time.Time  `gorm:"index;not null;comment:下单时间"`
	PaidAt      *time.Time `gorm:"comment:支付时间"`
	DeliveredAt *time.Time `gorm:"comment:签收时间"`
	UpdatedAt   time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 教学要点:记录下单时的名称和价格快照,商品后续改价改名不影响历史订单
type OrderItemModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     uint   `gorm:"index;not null;comment:订单ID"`
	ProductID   uint   `gorm:"index;not null;comment:商品ID"`
	ProductName string `gorm:"size:200;not null;comment:下单时商品名(快照)"`
	Quantity    int    `gorm:"not null;comment:购买数量"`
	Price       int64  `gorm:"not null;comment:下单时单价(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderNoteModel GORM订单备注模型
type OrderNoteModel struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   uint      `gorm:"index;not null;comment:订单ID"`
	Author    string    `gorm:"size:50;not null;comment:备注人"`
	Content   string    `gorm:"type:text;not null;comment:备注内容"`
	IsPrivate bool      `gorm:"not null;default:false;comment:是否仅内部可见"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (OrderNoteModel) TableName() string {
	return "order_notes"
}
