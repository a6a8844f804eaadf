package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/shopadmin/docs" // swagger文档注册
	appdashboard "github.com/xiebiao/shopadmin/internal/application/dashboard"
	apporder "github.com/xiebiao/shopadmin/internal/application/order"
	"github.com/xiebiao/shopadmin/internal/infrastructure/config"
	"github.com/xiebiao/shopadmin/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/shopadmin/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/shopadmin/internal/interface/http/handler"
	"github.com/xiebiao/shopadmin/internal/interface/http/middleware"
	"github.com/xiebiao/shopadmin/pkg/jwt"
	"github.com/xiebiao/shopadmin/pkg/latest"
	"github.com/xiebiao/shopadmin/pkg/metrics"
	"github.com/xiebiao/shopadmin/pkg/mq"
	"github.com/xiebiao/shopadmin/pkg/response"
	"github.com/xiebiao/shopadmin/pkg/tracing"
)

// @title           订单后台API
// @version         1.0
// @description     电商后台订单管理与数据看板接口
// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// main 主程序入口
// 说明：手动依赖注入，组装链与wire.go中的ProviderSet一一对应
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化指标与链路追踪
	metrics.Init()

	if cfg.Tracing.Endpoint != "" {
		shutdown, err := tracing.InitTracer("shopadmin", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("关闭链路追踪失败: %v", err)
			}
		}()
	}

	// 3. 初始化数据库与Redis连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化消息队列（可选,关闭时事件只打日志）
	var eventSink apporder.EventSink
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatalf("初始化消息队列失败: %v", err)
		}
		defer publisher.Close()
		eventSink = publisher
	}

	// 5. 依赖注入（手动组装）
	// Repository ← UseCase ← Handler

	// 基础设施层
	orderRepo := mysql.NewOrderRepository(db)
	statsRepo := mysql.NewStatsRepository(db)
	txManager := mysql.NewTxManager(db)
	tokenStore := redis.NewTokenStore(redisClient)
	statsCache := redis.NewStatsCache(redisClient, cfg.Redis.StatsTTL)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
	listGuards := latest.NewGuards()
	events := apporder.NewEventPublisher(eventSink)

	// 应用层
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo, listGuards)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	updateStatusUseCase := apporder.NewUpdateStatusUseCase(orderRepo, events, statsCache)
	bulkActionUseCase := apporder.NewBulkActionUseCase(orderRepo, txManager, events, statsCache)
	exportOrdersUseCase := apporder.NewExportOrdersUseCase(orderRepo)
	orderNotesUseCase := apporder.NewOrderNotesUseCase(orderRepo)
	statsUseCase := appdashboard.NewStatsUseCase(statsRepo, statsCache)

	// 接口层
	orderHandler := handler.NewOrderHandler(
		listOrdersUseCase,
		getOrderUseCase,
		updateStatusUseCase,
		bulkActionUseCase,
		exportOrdersUseCase,
		orderNotesUseCase,
	)
	dashboardHandler := handler.NewDashboardHandler(statsUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, tokenStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 7. 注册路由
	registerRoutes(r, orderHandler, dashboardHandler, authMiddleware)

	// 8. 启动服务（支持优雅停机）
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   接口文档: http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在停止服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("停止服务失败: %v", err)
	}
	fmt.Println("服务已停止")
}

// registerRoutes 注册路由
// 后台接口全部要求登录,JWT由独立的认证服务签发
func registerRoutes(
	r *gin.Engine,
	orderHandler *handler.OrderHandler,
	dashboardHandler *handler.DashboardHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档路由
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			// 订单管理
			orders := admin.Group("/orders")
			{
				orders.GET("", orderHandler.ListOrders)
				orders.GET("/status-options", orderHandler.StatusOptions)
				orders.GET("/export", orderHandler.ExportOrders)
				orders.POST("/bulk", orderHandler.BulkAction)
				orders.GET("/:id", orderHandler.GetOrder)
				orders.PUT("/:id/status", orderHandler.UpdateStatus)
				orders.POST("/:id/notes", orderHandler.AddNote)
				orders.DELETE("/:id/notes/:note_id", orderHandler.DeleteNote)
			}

			// 数据看板
			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/stats", dashboardHandler.GetStats)
				dashboard.GET("/revenue", dashboardHandler.GetRevenueSeries)
				dashboard.GET("/top-products", dashboardHandler.GetTopProducts)
				dashboard.GET("/status-counts", dashboardHandler.GetStatusCounts)
			}
		}
	}
}
