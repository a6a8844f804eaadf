//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appdashboard "github.com/xiebiao/shopadmin/internal/application/dashboard"
	apporder "github.com/xiebiao/shopadmin/internal/application/order"
	"github.com/xiebiao/shopadmin/internal/infrastructure/config"
	"github.com/xiebiao/shopadmin/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/shopadmin/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/shopadmin/internal/interface/http/handler"
	"github.com/xiebiao/shopadmin/internal/interface/http/middleware"
	"github.com/xiebiao/shopadmin/pkg/jwt"
	"github.com/xiebiao/shopadmin/pkg/latest"
	"github.com/xiebiao/shopadmin/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewOrderRepository, // 订单仓储
	mysql.NewStatsRepository, // 统计仓储
	mysql.NewTxManager,       // 事务管理器
	wire.Bind(new(apporder.TxRunner), new(*mysql.TxManager)),
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	latest.NewGuards,                // 列表查询序号守卫(按管理员隔离)
	provideEventPublisher,           // 事件发布器
	apporder.NewListOrdersUseCase,   // 订单列表用例
	apporder.NewGetOrderUseCase,     // 订单详情用例
	apporder.NewUpdateStatusUseCase, // 状态流转用例
	apporder.NewBulkActionUseCase,   // 批量操作用例
	apporder.NewExportOrdersUseCase, // 订单导出用例
	apporder.NewOrderNotesUseCase,   // 订单备注用例
	appdashboard.NewStatsUseCase,    // 看板统计用例
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideTokenStore,            // Token黑名单存储
	provideStatsCache,            // 统计快照缓存
	wire.Bind(new(apporder.StatsInvalidator), new(*redis.StatsCache)),
	wire.Bind(new(appdashboard.SnapshotCache), new(*redis.StatsCache)),
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewOrderHandler,     // 订单管理处理器
	handler.NewDashboardHandler, // 看板处理器
)

// provideJWTManager 从配置创建JWT管理器
// 教学要点：config.Config包含多个字段,Wire无法自动知道如何提取,需要手动Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

// provideTokenStore 从Redis客户端创建Token黑名单存储
func provideTokenStore(client *goredis.Client) *redis.TokenStore {
	return redis.NewTokenStore(client)
}

// provideStatsCache 从Redis客户端创建统计快照缓存
func provideStatsCache(cfg *config.Config, client *goredis.Client) *redis.StatsCache {
	return redis.NewStatsCache(client, cfg.Redis.StatsTTL)
}

// provideEventPublisher 创建事件发布器
// mq.enabled=false时传nil sink,事件只打日志不上报
func provideEventPublisher(cfg *config.Config) (*apporder.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return apporder.NewEventPublisher(nil), nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		return nil, err
	}
	return apporder.NewEventPublisher(publisher), nil
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册复用main.go中的registerRoutes
func provideGinEngine(
	cfg *config.Config,
	orderHandler *handler.OrderHandler,
	dashboardHandler *handler.DashboardHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, orderHandler, dashboardHandler, authMiddleware)
	return r
}

// InitializeApp 初始化整个应用
// Wire会按正确的顺序调用所有构造函数,生成wire_gen.go
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
