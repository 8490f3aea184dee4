package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	apporder "github.com/xiebiao/cocomart/internal/application/order"
	appproduct "github.com/xiebiao/cocomart/internal/application/product"
	appreview "github.com/xiebiao/cocomart/internal/application/review"
	appuser "github.com/xiebiao/cocomart/internal/application/user"
	"github.com/xiebiao/cocomart/internal/domain/user"
	"github.com/xiebiao/cocomart/internal/infrastructure/config"
	"github.com/xiebiao/cocomart/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/cocomart/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/cocomart/internal/interface/http/handler"
	"github.com/xiebiao/cocomart/internal/interface/http/middleware"
	"github.com/xiebiao/cocomart/pkg/jwt"
	"github.com/xiebiao/cocomart/pkg/metrics"
	"github.com/xiebiao/cocomart/pkg/mq"
	"github.com/xiebiao/cocomart/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供等价的Wire注入器，wire gen后可切换）
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

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化消息发布者
	// RabbitMQ不可用时降级运行：事件丢失只影响通知/报表等旁路消费方
	var publisher *mq.Publisher
	publisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("[WARN] 初始化RabbitMQ失败，事件发布已禁用: %v", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// 6. 依赖注入（手动组装）
	// 依赖链：Repository ← Service/UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)

	publishProductUseCase := appproduct.NewPublishProductUseCase(productRepo)
	updateProductUseCase := appproduct.NewUpdateProductUseCase(productRepo)
	listProductsUseCase := appproduct.NewListProductsUseCase(productRepo)
	getProductUseCase := appproduct.NewGetProductUseCase(productRepo)

	var orderPublisher apporder.EventPublisher
	var reviewPublisher appreview.EventPublisher
	if publisher != nil {
		orderPublisher = publisher
		reviewPublisher = publisher
	}

	createOrderUseCase := apporder.NewCreateOrderUseCase(orderRepo, productRepo, userRepo, txManager, orderPublisher)
	advanceStatusUseCase := apporder.NewAdvanceStatusUseCase(orderRepo, txManager, orderPublisher)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(orderRepo, productRepo, txManager, orderPublisher)
	updatePaymentUseCase := apporder.NewUpdatePaymentUseCase(orderRepo, txManager)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo)
	revenueUseCase := apporder.NewRevenueUseCase(orderRepo)

	createReviewUseCase := appreview.NewCreateReviewUseCase(reviewRepo, productRepo, orderRepo, txManager, reviewPublisher)
	updateReviewUseCase := appreview.NewUpdateReviewUseCase(reviewRepo, productRepo, txManager, reviewPublisher)
	deleteReviewUseCase := appreview.NewDeleteReviewUseCase(reviewRepo, productRepo, txManager, reviewPublisher)
	moderateReviewUseCase := appreview.NewModerateReviewUseCase(reviewRepo, productRepo, txManager, reviewPublisher)
	markHelpfulUseCase := appreview.NewMarkHelpfulUseCase(reviewRepo, txManager)
	listReviewsUseCase := appreview.NewListReviewsUseCase(reviewRepo, productRepo)
	ratingQueryUseCase := appreview.NewRatingQueryUseCase(reviewRepo, productRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, jwtManager)
	productHandler := handler.NewProductHandler(publishProductUseCase, updateProductUseCase, listProductsUseCase, getProductUseCase)
	orderHandler := handler.NewOrderHandler(createOrderUseCase, advanceStatusUseCase, cancelOrderUseCase,
		updatePaymentUseCase, getOrderUseCase, listOrdersUseCase, revenueUseCase)
	reviewHandler := handler.NewReviewHandler(createReviewUseCase, updateReviewUseCase, deleteReviewUseCase,
		moderateReviewUseCase, markHelpfulUseCase, listReviewsUseCase, ratingQueryUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())

	// 8. 注册路由
	registerRoutes(r, userHandler, productHandler, orderHandler, reviewHandler, authMiddleware)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	reviewHandler *handler.ReviewHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档（生产环境建议禁用或加访问控制）
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证模块（公开接口）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/refresh", userHandler.RefreshToken)
			auth.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 商品模块（公开接口；OptionalAuth让管理员能看到未上架商品和未审核评价）
		products := v1.Group("/products")
		products.Use(authMiddleware.OptionalAuth())
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/reviews", reviewHandler.ListProductReviews)
			products.GET("/:id/rating", reviewHandler.GetProductRating)

			// 发表评价需要登录
			products.POST("/:id/reviews", authMiddleware.RequireAuth(), reviewHandler.CreateReview)
		}

		// 评价模块（需要登录）
		reviews := v1.Group("/reviews")
		reviews.Use(authMiddleware.RequireAuth())
		{
			reviews.GET("/mine", reviewHandler.ListMyReviews)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
			reviews.POST("/:id/helpful", reviewHandler.MarkHelpful)
		}

		// 订单模块（需要登录）
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/no/:order_no", orderHandler.GetOrderByNo)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		// 管理后台（需要管理员角色）
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			admin.POST("/products", productHandler.PublishProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)

			admin.GET("/orders", orderHandler.ListOrdersByStatus)
			admin.GET("/orders/pending", orderHandler.ListPendingOrders)
			admin.GET("/orders/revenue", orderHandler.Revenue)
			admin.PUT("/orders/:id/status", orderHandler.AdvanceStatus)
			admin.PUT("/orders/:id/payment", orderHandler.UpdatePayment)

			admin.GET("/reviews/pending", reviewHandler.ListPendingReviews)
			admin.POST("/reviews/:id/approve", reviewHandler.ApproveReview)
			admin.POST("/reviews/:id/reject", reviewHandler.RejectReview)
			admin.POST("/reviews/:id/respond", reviewHandler.RespondReview)
		}
	}
}
