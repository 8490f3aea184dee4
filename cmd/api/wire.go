//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewUserRepository）
// - Injector: 声明最终要构造的目标类型（如*gin.Engine）
// - wire.Build(): 告诉Wire如何组装依赖链

package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================
// 教学说明：
// ProviderSet 将相关的 Provider 分组，便于管理和复用
// 例如：基础设施层的所有Provider放在一起

// infrastructureSet 基础设施层依赖
// 包含：配置加载、数据库连接、Redis连接、消息发布者
var infrastructureSet = wire.NewSet(
	config.Load,      // 加载配置文件
	mysql.NewDB,      // 创建MySQL连接
	redis.NewClient,  // 创建Redis连接
	providePublisher, // 创建RabbitMQ发布者（不可用时降级为nil）
)

// repositorySet 仓储层依赖
// 包含：所有Repository的构造函数和事务管理器
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,    // 用户仓储
	mysql.NewProductRepository, // 商品仓储
	mysql.NewOrderRepository,   // 订单仓储
	mysql.NewReviewRepository,  // 评价仓储
	mysql.NewTxManager,         // 事务管理器
	provideOrderTxManager,      // 订单应用层事务接口适配
	provideReviewTxManager,     // 评价应用层事务接口适配
	provideOrderPublisher,      // 订单应用层事件发布接口适配
	provideReviewPublisher,     // 评价应用层事件发布接口适配
)

// domainSet 领域层依赖
// 包含：所有领域服务的构造函数
var domainSet = wire.NewSet(
	user.NewService, // 用户领域服务
)

// applicationSet 应用层依赖
// 包含：所有Use Case的构造函数
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase, // 用户注册用例
	appuser.NewLoginUseCase,    // 用户登录用例

	appproduct.NewPublishProductUseCase, // 商品发布用例
	appproduct.NewUpdateProductUseCase,  // 商品更新用例
	appproduct.NewListProductsUseCase,   // 商品列表用例
	appproduct.NewGetProductUseCase,     // 商品详情用例

	apporder.NewCreateOrderUseCase,   // 创建订单用例
	apporder.NewAdvanceStatusUseCase, // 订单状态推进用例
	apporder.NewCancelOrderUseCase,   // 取消订单用例
	apporder.NewUpdatePaymentUseCase, // 更新支付用例
	apporder.NewGetOrderUseCase,      // 订单详情用例
	apporder.NewListOrdersUseCase,    // 订单列表用例
	apporder.NewRevenueUseCase,       // 营收统计用例

	appreview.NewCreateReviewUseCase,   // 创建评价用例
	appreview.NewUpdateReviewUseCase,   // 修改评价用例
	appreview.NewDeleteReviewUseCase,   // 删除评价用例
	appreview.NewModerateReviewUseCase, // 评价审核用例
	appreview.NewMarkHelpfulUseCase,    // 评价点赞用例
	appreview.NewListReviewsUseCase,    // 评价列表用例
	appreview.NewRatingQueryUseCase,    // 评分查询用例
)

// middlewareSet 中间件依赖
// 包含：JWT管理器、认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideSessionStore,          // Session存储（需要从Redis创建）
	provideSessionExpire,         // 会话有效期（与Refresh Token一致）
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
// 包含：所有Handler的构造函数
var handlerSet = wire.NewSet(
	handler.NewUserHandler,    // 用户处理器
	handler.NewProductHandler, // 商品处理器
	handler.NewOrderHandler,   // 订单处理器
	handler.NewReviewHandler,  // 评价处理器
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 教学说明：
// 有些依赖的构造函数参数不是直接的类型，需要从Config中提取
// 这时需要编写自定义Provider函数

// provideJWTManager 从配置创建JWT管理器
// 教学要点：config.Config 包含多个字段，但jwt.NewManager只需要JWT相关的配置
// Wire无法自动知道如何从Config提取参数，所以需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideSessionExpire 会话有效期
// 登录用例用它设置Redis会话TTL
func provideSessionExpire(cfg *config.Config) time.Duration {
	return cfg.JWT.RefreshTokenExpire
}

// providePublisher 创建RabbitMQ消息发布者
// RabbitMQ不可用时降级运行（返回nil），事件丢失只影响通知/报表等旁路消费方
func providePublisher(cfg *config.Config) *mq.Publisher {
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("[WARN] 初始化RabbitMQ失败，事件发布已禁用: %v", err)
		return nil
	}
	return publisher
}

// provideOrderTxManager 把MySQL事务管理器适配为订单应用层的事务接口
// 教学要点：应用层依赖自己声明的小接口而非具体类型，
// Wire不支持跨包的隐式接口实现，需要显式适配
func provideOrderTxManager(tm *mysql.TxManager) apporder.TxManager {
	return tm
}

// provideReviewTxManager 把MySQL事务管理器适配为评价应用层的事务接口
func provideReviewTxManager(tm *mysql.TxManager) appreview.TxManager {
	return tm
}

// provideOrderPublisher 把RabbitMQ发布者适配为订单应用层的事件发布接口
// 注意nil守卫：直接返回nil指针会得到"非nil接口包nil指针"，用例的nil判断会失效
func provideOrderPublisher(p *mq.Publisher) apporder.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

// provideReviewPublisher 把RabbitMQ发布者适配为评价应用层的事件发布接口
func provideReviewPublisher(p *mq.Publisher) appreview.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

// provideGinEngine 创建并配置Gin引擎
// 教学要点：
// 1. Gin引擎需要注册所有路由
// 2. 路由注册需要所有的Handler和Middleware
// 3. Wire会自动注入这些依赖
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	reviewHandler *handler.ReviewHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	// 指标必须在第一个请求到来前注册
	metrics.InitMetrics()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())

	// 路由注册与main.go共用同一份registerRoutes
	registerRoutes(r, userHandler, productHandler, orderHandler, reviewHandler, authMiddleware)

	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================
// 教学说明：
// InitializeApp是Wire的入口函数（Injector）
//
// wire.Build() 告诉Wire需要哪些Provider来构建*gin.Engine
// Wire会自动分析依赖关系：
//
// 依赖链示例：
// *gin.Engine 需要 → *handler.OrderHandler
// *handler.OrderHandler 需要 → *apporder.CreateOrderUseCase
// *apporder.CreateOrderUseCase 需要 → order.Repository + apporder.TxManager
// order.Repository 需要 → *gorm.DB
// *gorm.DB 需要 → *config.Config
//
// Wire会按正确的顺序调用所有构造函数

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎
// 错误：如果任何依赖创建失败
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		// 基础设施层
		infrastructureSet,

		// 仓储层
		repositorySet,

		// 领域层
		domainSet,

		// 应用层
		applicationSet,

		// 中间件层
		middlewareSet,

		// 接口层
		handlerSet,

		// Gin引擎
		provideGinEngine,
	)

	// 返回值类型必须与wire.Build的最终产出一致
	// Wire会在wire_gen.go中生成实际的初始化代码
	return nil, nil
}
