package product

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/product"
)

// GetProductUseCase 商品详情查询用例
type GetProductUseCase struct {
	productRepo product.Repository
}

// NewGetProductUseCase 创建商品详情用例
func NewGetProductUseCase(productRepo product.Repository) *GetProductUseCase {
	return &GetProductUseCase{productRepo: productRepo}
}

// Execute 查询商品详情
// 商品详情携带的Rating/ReviewCount是商品行上持久化的派生值,
// 由评分聚合流程维护,与评价表始终一致
func (uc *GetProductUseCase) Execute(ctx context.Context, productID uint) (*product.Product, error) {
	return uc.productRepo.FindByID(ctx, productID)
}
