package product

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/product"
)

// PublishProductUseCase 发布商品用例(管理员)
type PublishProductUseCase struct {
	productRepo product.Repository
}

// NewPublishProductUseCase 创建发布商品用例
func NewPublishProductUseCase(productRepo product.Repository) *PublishProductUseCase {
	return &PublishProductUseCase{productRepo: productRepo}
}

// PublishProductRequest 发布商品请求
type PublishProductRequest struct {
	Name           string
	Description    string
	Category       string
	Price          int64 // 分
	CompareAtPrice *int64
	Stock          int
	SKU            string
	Unit           string
	Image          string
	IsFeatured     bool
}

// Execute 执行发布商品
func (uc *PublishProductUseCase) Execute(ctx context.Context, req PublishProductRequest) (*product.Product, error) {
	category := product.Category(req.Category)
	if !category.IsValid() {
		return nil, product.ErrInvalidCategory
	}
	if req.Price <= 0 {
		return nil, product.ErrInvalidPrice
	}

	p := product.NewProduct(req.Name, req.Description, category, req.Price, req.Stock, req.SKU, req.Unit)
	p.CompareAtPrice = req.CompareAtPrice
	p.Image = req.Image
	p.IsFeatured = req.IsFeatured

	if err := uc.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}
