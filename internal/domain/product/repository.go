package product

import (
	"context"
)

// ListParams 商品列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string   // 搜索名称/描述
	Category Category // 为空表示不过滤
	OnlyOn   bool     // 只返回上架商品
}

// Repository 商品仓储接口
type Repository interface {
	// Create 创建商品
	// SKU唯一索引冲突时返回ErrSKUDuplicate
	Create(ctx context.Context, p *Product) error

	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, id uint) (*Product, error)

	// LockByID 锁定并读取商品行（SELECT FOR UPDATE）
	// 评分重算前必须先锁定商品行：同一商品的并发评价写入
	// 在此串行化，不同商品互不竞争；只能在TxManager.Transaction内调用
	LockByID(ctx context.Context, id uint) (*Product, error)

	// Update 更新商品基础信息（不含Rating/ReviewCount）
	Update(ctx context.Context, p *Product) error

	// UpdateRating 写入聚合后的评分与评价数
	// 这是Rating/ReviewCount唯一的写入路径
	UpdateRating(ctx context.Context, id uint, rating float64, reviewCount int) error

	// UpdateStock 原子性增减库存（delta可为负）
	// 库存不足时返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error

	// List 分页查询商品列表
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)
}
