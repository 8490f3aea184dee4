package review

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
)

// ListReviewsUseCase 评价列表查询用例
type ListReviewsUseCase struct {
	reviewRepo  review.Repository
	productRepo product.Repository
}

// NewListReviewsUseCase 创建评价列表用例
func NewListReviewsUseCase(reviewRepo review.Repository, productRepo product.Repository) *ListReviewsUseCase {
	return &ListReviewsUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// ListByProduct 查询商品的评价列表
// 公开接口只返回审核通过的评价;后台(includeAll)返回全部
func (uc *ListReviewsUseCase) ListByProduct(ctx context.Context, productID uint, includeAll bool) ([]*review.Review, error) {
	// 商品必须存在,否则统一报"商品不存在"而非空列表
	if _, err := uc.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	if includeAll {
		return uc.reviewRepo.ListByProduct(ctx, productID)
	}
	return uc.reviewRepo.ListApprovedByProduct(ctx, productID)
}

// ListByUser 查询用户发表的评价(新评价在前)
func (uc *ListReviewsUseCase) ListByUser(ctx context.Context, userID uint) ([]*review.Review, error) {
	return uc.reviewRepo.ListByUser(ctx, userID)
}
