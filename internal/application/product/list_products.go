package product

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/product"
)

// ListProductsUseCase 商品列表查询用例
type ListProductsUseCase struct {
	productRepo product.Repository
}

// NewListProductsUseCase 创建商品列表用例
func NewListProductsUseCase(productRepo product.Repository) *ListProductsUseCase {
	return &ListProductsUseCase{productRepo: productRepo}
}

// ListProductsRequest 商品列表请求
type ListProductsRequest struct {
	Page     int
	PageSize int
	Keyword  string
	Category string
	OnlyOn   bool // 公开接口只看上架商品;后台可看全部
}

// Execute 执行商品列表查询
func (uc *ListProductsUseCase) Execute(ctx context.Context, req ListProductsRequest) ([]*product.Product, int64, error) {
	if req.Category != "" && !product.Category(req.Category).IsValid() {
		return nil, 0, product.ErrInvalidCategory
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	return uc.productRepo.List(ctx, product.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Category: product.Category(req.Category),
		OnlyOn:   req.OnlyOn,
	})
}
