package review

import (
	"context"
	"log"

	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// DeleteReviewUseCase 删除评价用例
// 权限规则:评价作者或管理员
// 删除后在同一事务内重算商品评分(派生值必须与评价表保持一致)
type DeleteReviewUseCase struct {
	reviewRepo  review.Repository
	productRepo product.Repository
	txManager   TxManager
	publisher   EventPublisher
}

// NewDeleteReviewUseCase 创建删除评价用例
func NewDeleteReviewUseCase(
	reviewRepo review.Repository,
	productRepo product.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// Execute 执行删除评价
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, reviewID, actorID uint, isAdmin bool) error {
	var deleted *review.Review
	var avgRating float64
	var count int

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		rev, err := uc.reviewRepo.FindByID(txCtx, reviewID)
		if err != nil {
			return err
		}

		if !rev.CanMutate(actorID, isAdmin) {
			return review.ErrReviewPermissionDenied
		}

		// 锁定顺序与创建路径一致:先商品后评价
		if _, err := uc.productRepo.LockByID(txCtx, rev.ProductID); err != nil {
			return err
		}

		if err := uc.reviewRepo.Delete(txCtx, reviewID); err != nil {
			return err
		}

		avgRating, count, err = recomputeRating(txCtx, uc.productRepo, uc.reviewRepo, rev.ProductID)
		if err != nil {
			return err
		}

		deleted = rev
		return nil
	})

	if err != nil {
		return err
	}

	if uc.publisher != nil {
		event := ReviewEvent{
			ReviewID:  deleted.ID,
			ProductID: deleted.ProductID,
			UserID:    deleted.UserID,
			Rating:    deleted.Rating,
			Approved:  deleted.IsApproved,
			AvgRating: avgRating,
			Count:     count,
		}
		if err := uc.publisher.Publish(ctx, EventReviewDeleted, event); err != nil {
			log.Printf("发布评价删除事件失败: review_id=%d, err=%v", deleted.ID, err)
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewDeleted, "error").Inc()
		} else {
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewDeleted, "ok").Inc()
		}
	}

	return nil
}
