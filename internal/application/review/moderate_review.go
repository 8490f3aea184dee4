package review

import (
	"context"
	"log"

	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// ModerateReviewUseCase 评价审核用例(管理员)
//
// 审核通过/驳回会改变评价的聚合资格,因此与创建/删除一样,
// 在同一事务内锁商品行并重算评分。
type ModerateReviewUseCase struct {
	reviewRepo  review.Repository
	productRepo product.Repository
	txManager   TxManager
	publisher   EventPublisher
}

// NewModerateReviewUseCase 创建评价审核用例
func NewModerateReviewUseCase(
	reviewRepo review.Repository,
	productRepo product.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *ModerateReviewUseCase {
	return &ModerateReviewUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// Approve 审核通过
func (uc *ModerateReviewUseCase) Approve(ctx context.Context, reviewID uint) (*review.Review, error) {
	return uc.moderate(ctx, reviewID, true)
}

// Reject 审核驳回(评价保留但不再参与评分聚合)
func (uc *ModerateReviewUseCase) Reject(ctx context.Context, reviewID uint) (*review.Review, error) {
	return uc.moderate(ctx, reviewID, false)
}

func (uc *ModerateReviewUseCase) moderate(ctx context.Context, reviewID uint, approve bool) (*review.Review, error) {
	var result *review.Review
	var avgRating float64
	var count int
	changed := false

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		rev, err := uc.reviewRepo.FindByID(txCtx, reviewID)
		if err != nil {
			return err
		}

		// 审核状态没变则不动评分
		changed = rev.IsApproved != approve
		if changed {
			// 锁定顺序与创建路径一致:先商品后评价
			if _, err := uc.productRepo.LockByID(txCtx, rev.ProductID); err != nil {
				return err
			}
		}

		if approve {
			rev.Approve()
		} else {
			rev.Reject()
		}

		if err := uc.reviewRepo.Update(txCtx, rev); err != nil {
			return err
		}

		if changed {
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

	if uc.publisher != nil && changed {
		event := ReviewEvent{
			ReviewID:  result.ID,
			ProductID: result.ProductID,
			UserID:    result.UserID,
			Rating:    result.Rating,
			Approved:  result.IsApproved,
			AvgRating: avgRating,
			Count:     count,
		}
		if err := uc.publisher.Publish(ctx, EventReviewModerated, event); err != nil {
			log.Printf("发布评价审核事件失败: review_id=%d, err=%v", result.ID, err)
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewModerated, "error").Inc()
		} else {
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewModerated, "ok").Inc()
		}
	}

	return result, nil
}

// Respond 商家回复评价(管理员)
// 回复不影响聚合资格,不触发评分重算
func (uc *ModerateReviewUseCase) Respond(ctx context.Context, reviewID uint, response string) (*review.Review, error) {
	var result *review.Review
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		rev, err := uc.reviewRepo.FindByID(txCtx, reviewID)
		if err != nil {
			return err
		}

		rev.Respond(response)

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

// ListPending 查询待审核评价(管理员,旧评价在前)
func (uc *ModerateReviewUseCase) ListPending(ctx context.Context) ([]*review.Review, error) {
	return uc.reviewRepo.ListPendingApproval(ctx)
}
