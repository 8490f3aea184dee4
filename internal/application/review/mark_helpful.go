package review

import (
	"context"

	"github.com/xiebiao/cocomart/internal/domain/review"
)

// MarkHelpfulUseCase "有帮助"点赞用例
// 点赞不影响评分聚合,不需要锁商品行
type MarkHelpfulUseCase struct {
	reviewRepo review.Repository
	txManager  TxManager
}

// NewMarkHelpfulUseCase 创建点赞用例
func NewMarkHelpfulUseCase(reviewRepo review.Repository, txManager TxManager) *MarkHelpfulUseCase {
	return &MarkHelpfulUseCase{
		reviewRepo: reviewRepo,
		txManager:  txManager,
	}
}

// Execute 执行点赞
func (uc *MarkHelpfulUseCase) Execute(ctx context.Context, reviewID uint) (*review.Review, error) {
	var result *review.Review
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		rev, err := uc.reviewRepo.FindByID(txCtx, reviewID)
		if err != nil {
			return err
		}

		rev.MarkHelpful()

		if err := uc.reviewRepo.Update(txCtx, rev); err != nil {
			return err
		}

		result = rev
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
