package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/cocomart/internal/infrastructure/config"
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
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

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
// 注意：这里使用GORM的模型定义（带tag），不是domain层的实体
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&OrderModel{},
		&OrderItemModel{},
		&ReviewModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Name      string         `gorm:"size:50;not null;comment:姓名"`
	Phone     string         `gorm:"size:20;comment:手机号"`
	Role      string         `gorm:"size:20;not null;default:customer;comment:角色(customer/admin)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. SKU有唯一索引,防止重复
// 3. Rating/ReviewCount是派生列,由评分聚合流程维护
// 4. 添加复合索引优化列表查询性能
type ProductModel struct {
	ID             uint           `gorm:"primaryKey"`
	Name           string         `gorm:"index:idx_search;size:200;not null;comment:商品名称"` // 搜索索引
	Description    string         `gorm:"type:text;comment:商品描述"`
	Category       string         `gorm:"index:idx_list;size:20;not null;comment:品类"` // 列表过滤索引
	Price          int64          `gorm:"not null;comment:价格(分)"`
	CompareAtPrice *int64         `gorm:"comment:划线价(分)"`
	Stock          int            `gorm:"default:0;comment:库存数量"`
	SKU            string         `gorm:"uniqueIndex;size:50;not null;comment:SKU编码"`
	Unit           string         `gorm:"size:20;not null;default:piece;comment:计量单位"`
	Image          string         `gorm:"size:500;comment:商品图片URL"`
	IsActive       bool           `gorm:"index:idx_list;default:true;comment:是否上架"`
	IsFeatured     bool           `gorm:"default:false;comment:是否推荐"`
	Rating         float64        `gorm:"type:decimal(2,1);default:0;comment:平均评分(1位小数)"`
	ReviewCount    int            `gorm:"default:0;comment:有效评价数"`
	CreatedAt      time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt      time.Time      `gorm:"comment:更新时间"`
	DeletedAt      gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status/PaymentStatus使用tinyint存储(节省空间,便于索引)
// 4. 地址以JSON文本存储(地址是值对象,不需要按字段查询)
// 5. DeliveredAt单独建索引,营收统计按送达时间过滤
type OrderModel struct {
	ID            uint   `gorm:"primaryKey"`
	OrderNo       string `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID        uint   `gorm:"index;not null;comment:买家用户ID"`
	Status        int    `gorm:"index;type:tinyint;default:1;comment:订单状态(1待处理2处理中3已确认4已发货5已送达6已取消)"`
	PaymentStatus int    `gorm:"type:tinyint;default:1;comment:支付状态(1待支付2已支付3失败4已退款)"`

	Subtotal     int64 `gorm:"not null;comment:商品小计(分)"`
	Tax          int64 `gorm:"not null;comment:税费(分)"`
	Discount     int64 `gorm:"default:0;comment:优惠金额(分)"`
	ShippingCost int64 `gorm:"not null;comment:运费(分)"`
	Total        int64 `gorm:"not null;comment:订单总金额(分)"`

	CustomerName  string `gorm:"size:50;not null;comment:下单时客户姓名快照"`
	CustomerEmail string `gorm:"size:100;not null;comment:下单时客户邮箱快照"`
	CustomerPhone string `gorm:"size:20;comment:下单时客户手机快照"`

	ShippingAddress string  `gorm:"type:text;not null;comment:收货地址(JSON)"`
	BillingAddress  *string `gorm:"type:text;comment:账单地址(JSON)"`

	PaymentMethod  string `gorm:"size:20;not null;comment:支付方式"`
	PaymentDetails string `gorm:"type:text;comment:支付详情(JSON)"`

	Notes          string `gorm:"size:500;comment:买家备注"`
	TrackingNumber string `gorm:"size:50;comment:物流单号"`

	DeliveredAt        *time.Time `gorm:"index;comment:送达时间"`
	CancelledAt        *time.Time `gorm:"comment:取消时间"`
	CancellationReason string     `gorm:"size:200;comment:取消原因"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联

	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 设计说明:
// 1. 记录下单时的名称与单价快照(ProductName/UnitPrice字段)
// 2. OrderID外键关联orders表
type OrderItemModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     uint   `gorm:"index;not null;comment:订单ID"`
	ProductID   uint   `gorm:"index;not null;comment:商品ID"`
	ProductName string `gorm:"size:200;not null;comment:下单时商品名称快照"`
	Quantity    int    `gorm:"not null;comment:购买数量"`
	UnitPrice   int64  `gorm:"not null;comment:下单时单价(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ReviewModel GORM评价模型
// 设计说明:
// 1. (product_id, user_id)复合唯一索引:每个用户对每个商品最多一条评价
// 2. IsApproved带索引:评分聚合只读审核通过的评价
type ReviewModel struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"uniqueIndex:uniq_product_user;index:idx_product_approved;not null;comment:商品ID"`
	UserID    uint `gorm:"uniqueIndex:uniq_product_user;index;not null;comment:用户ID"`

	Rating  int    `gorm:"type:tinyint;not null;comment:评分(1-5)"`
	Title   string `gorm:"size:200;comment:评价标题"`
	Comment string `gorm:"size:2000;not null;comment:评价内容"`

	IsVerifiedPurchase bool `gorm:"default:false;comment:是否已购买(存在含该商品的已送达订单)"`
	IsApproved         bool `gorm:"index:idx_product_approved;default:true;comment:是否审核通过"`

	HelpfulCount int `gorm:"default:0;comment:有帮助计数"`

	AdminResponse string     `gorm:"size:1000;comment:商家回复"`
	RespondedAt   *time.Time `gorm:"comment:回复时间"`

	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
