package review

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// UpdateReviewUseCase 修改评价用例
// 权限规则:评价作者或管理员
type UpdateReviewUseCase struct {
	reviewRepo  review.Repository
	productRepo product.Repository
	txManager   TxManager
	publisher   EventPublisher
}

// NewUpdateReviewUseCase 创建修改评价用例
func NewUpdateReviewUseCase(
	reviewRepo review.Repository,
	productRepo product.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// UpdateReviewRequest 修改评价请求
// 指针字段为nil表示该字段不修改
type UpdateReviewRequest struct {
	ReviewID uint
	ActorID  uint
	IsAdmin  bool

	Rating  *int
	Title   *string
	Comment *string
}

// Execute 执行修改评价
// 评分变化时在同一事务内重算商品评分
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (*review.Review, error) {
	var result *review.Review
	var avgRating float64
	var count int
	ratingChanged := false

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		rev, err := uc.reviewRepo.FindByID(txCtx, req.ReviewID)
		if err != nil {
			return err
		}

		if !rev.CanMutate(req.ActorID, req.IsAdmin) {
			return review.ErrReviewPermissionDenied
		}

		// 组装修改后的值并校验
		newRating := rev.Rating
		if req.Rating != nil {
			newRating = *req.Rating
			if err := review.ValidateRating(newRating); err != nil {
				return err
			}
		}
		newTitle := rev.Title
		if req.Title != nil {
			newTitle = *req.Title
		}
		newComment := rev.Comment
		if req.Comment != nil {
			newComment = *req.Comment
		}
		if err := review.ValidateContent(newTitle, newComment); err != nil {
			return err
		}

		ratingChanged = newRating != rev.Rating

		// 评分变化才需要锁商品行重算;锁定顺序与创建路径一致(先商品后评价)
		if ratingChanged {
			if _, err := uc.productRepo.LockByID(txCtx, rev.ProductID); err != nil {
				return err
			}
		}

		rev.Rating = newRating
		rev.Title = newTitle
		rev.Comment = newComment
		rev.UpdatedAt = time.Now()

		if err := uc.reviewRepo.Update(txCtx, rev); err != nil {
			return err
		}

		if ratingChanged {
			avgRating, count, err = recomputeRating(txCtx, uc.productRepo, uc.reviewRepo, rev.ProductID)
			if err != nil {
				return err
			}
		}

		result = rev
		return nil
	})

	if err != nil {
		return nil, err
	}

	if uc.publisher != nil && ratingChanged {
		event := ReviewEvent{
			ReviewID:  result.ID,
			ProductID: result.ProductID,
			UserID:    result.UserID,
			Rating:    result.Rating,
			Approved:  result.IsApproved,
			AvgRating: avgRating,
			Count:     count,
		}
		if err := uc.publisher.Publish(ctx, EventReviewUpdated, event); err != nil {
			log.Printf("发布评价更新事件失败: review_id=%d, err=%v", result.ID, err)
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewUpdated, "error").Inc()
		} else {
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewUpdated, "ok").Inc()
		}
	}

	return result, nil
}
