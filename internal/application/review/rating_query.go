package review

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
)

// RatingQueryUseCase 评分查询用例
//
// 口径说明:均分、评价数、星级分布都只统计审核通过的评价,
// 与商品行上持久化的派生值(Rating/ReviewCount)使用同一资格集,
// 三者永远一致。
type RatingQueryUseCase struct {
	reviewRepo  review.Repository
	productRepo product.Repository
}

// NewRatingQueryUseCase 创建评分查询用例
func NewRatingQueryUseCase(reviewRepo review.Repository, productRepo product.Repository) *RatingQueryUseCase {
	return &RatingQueryUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// RatingSummary 评分概览
type RatingSummary struct {
	ProductID    uint
	Average      float64     // 0~5,保留1位小数;无有效评价时为0
	Count        int         // 有效评价数
	Distribution map[int]int // 星级分布,键固定为1~5
}

// Execute 查询商品评分概览
func (uc *RatingQueryUseCase) Execute(ctx context.Context, productID uint) (*RatingSummary, error) {
	if _, err := uc.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	reviews, err := uc.reviewRepo.ListApprovedByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	avg, count := review.Aggregate(reviews)

	return &RatingSummary{
		ProductID:    productID,
		Average:      avg,
		Count:        count,
		Distribution: review.Distribution(reviews),
	}, nil
}
