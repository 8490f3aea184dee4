package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/cocomart/internal/domain/product"
	apperrors "github.com/xiebiao/cocomart/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/product/repository.go定义的接口
// 2. Rating/ReviewCount只能经由UpdateRating写入,Update不碰这两列
// 3. 处理数据库特定的错误(如SKU重复),转换为业务错误
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	model := toProductModel(p)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		// 检查是否为SKU重复错误
		if isDuplicateError(err) {
			return product.ErrSKUDuplicate
		}
		return apperrors.Wrap(err, "创建商品失败")
	}

	// 回填自增ID
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	db := r.getDB(ctx)
	err := db.First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// LockByID 悲观锁查询商品(SELECT FOR UPDATE)
// 评分重算前先锁定商品行:同一商品的并发评价写入在此串行化
// 注意:必须使用getDB(ctx)从context获取事务DB
func (r *productRepository) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}

	return toProductEntity(&model), nil
}

// Update 更新商品基础信息
// 注意:不更新rating/review_count,派生列只走UpdateRating
func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	db := r.getDB(ctx)
	result := db.Model(&ProductModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":             p.Name,
		"description":      p.Description,
		"category":         string(p.Category),
		"price":            p.Price,
		"compare_at_price": p.CompareAtPrice,
		"stock":            p.Stock,
		"unit":             p.Unit,
		"image":            p.Image,
		"is_active":        p.IsActive,
		"is_featured":      p.IsFeatured,
		"updated_at":       p.UpdatedAt,
	})

	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return product.ErrSKUDuplicate
		}
		return apperrors.Wrap(result.Error, "更新商品失败")
	}

	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}

	return nil
}

// UpdateRating 写入聚合后的评分与评价数
// 这是rating/review_count两列唯一的写入路径
func (r *productRepository) UpdateRating(ctx context.Context, id uint, rating float64, reviewCount int) error {
	db := r.getDB(ctx)
	result := db.Model(&ProductModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating":       rating,
		"review_count": reviewCount,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新商品评分失败")
	}

	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}

	return nil
}

// UpdateStock 原子性增减库存
// UPDATE products SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
// 注意:必须使用getDB(ctx)参与事务
func (r *productRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := r.getDB(ctx)
	result := db.Model(&ProductModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta). // 防止库存为负
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是商品不存在,或者库存不足,再查一次确定原因
		var model ProductModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return apperrors.Wrap(err, "查询商品失败")
		}
		return product.ErrInsufficientStock
	}

	return nil
}

// List 分页查询商品列表
func (r *productRepository) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	var models []ProductModel
	var total int64

	db := r.getDB(ctx)
	query := db.Model(&ProductModel{})

	// 关键词搜索(搜索名称、描述)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", keyword, keyword)
	}

	if params.Category != "" {
		query = query.Where("category = ?", string(params.Category))
	}

	if params.OnlyOn {
		query = query.Where("is_active = ?", true)
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品总数失败")
	}

	// 分页
	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品列表失败")
	}

	// 转换为领域实体
	products := make([]*product.Product, len(models))
	for i, model := range models {
		products[i] = toProductEntity(&model)
	}

	return products, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toProductModel 领域实体 → GORM模型
func toProductModel(p *product.Product) *ProductModel {
	return &ProductModel{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       string(p.Category),
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Stock:          p.Stock,
		SKU:            p.SKU,
		Unit:           p.Unit,
		Image:          p.Image,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *product.Product {
	return &product.Product{
		ID:             model.ID,
		Name:           model.Name,
		Description:    model.Description,
		Category:       product.Category(model.Category),
		Price:          model.Price,
		CompareAtPrice: model.CompareAtPrice,
		Stock:          model.Stock,
		SKU:            model.SKU,
		Unit:           model.Unit,
		Image:          model.Image,
		IsActive:       model.IsActive,
		IsFeatured:     model.IsFeatured,
		Rating:         model.Rating,
		ReviewCount:    model.ReviewCount,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
