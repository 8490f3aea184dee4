package product

import (
	"context"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/product"
)

// UpdateProductUseCase 更新商品用例(管理员)
// 注意:评分相关派生字段不在本用例范围内,只能由评分聚合流程写入
type UpdateProductUseCase struct {
	productRepo product.Repository
}

// NewUpdateProductUseCase 创建更新商品用例
func NewUpdateProductUseCase(productRepo product.Repository) *UpdateProductUseCase {
	return &UpdateProductUseCase{productRepo: productRepo}
}

// UpdateProductRequest 更新商品请求
// 指针字段为nil表示该字段不修改
type UpdateProductRequest struct {
	ProductID uint

	Name           *string
	Description    *string
	Category       *string
	Price          *int64
	CompareAtPrice *int64
	Stock          *int
	Unit           *string
	Image          *string
	IsActive       *bool
	IsFeatured     *bool
}

// Execute 执行更新商品
func (uc *UpdateProductUseCase) Execute(ctx context.Context, req UpdateProductRequest) (*product.Product, error) {
	p, err := uc.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		category := product.Category(*req.Category)
		if !category.IsValid() {
			return nil, product.ErrInvalidCategory
		}
		p.Category = category
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, product.ErrInvalidPrice
		}
		p.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		p.CompareAtPrice = req.CompareAtPrice
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}
	p.UpdatedAt = time.Now()

	if err := uc.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}
