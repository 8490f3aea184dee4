package review

import (
	"context"
	"log"

	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// CreateReviewUseCase 创建评价用例
//
// 这是评分聚合侧最核心的用例,完整流程(单事务):
//  1. SELECT FOR UPDATE锁定商品行(同一商品的并发评价在此串行化)
//  2. 写入评价((product_id,user_id)唯一索引拦截重复评价)
//  3. 全量重读有效评价集,重算均分/评价数并写回商品行
//  4. COMMIT后发布review.created事件
//
// 锁定顺序约定:先锁商品行,再写评价表,所有评价写入路径保持
// 一致的加锁顺序,避免死锁。
type CreateReviewUseCase struct {
	reviewRepo  review.Repository
	productRepo product.Repository
	orderRepo   order.Repository
	txManager   TxManager
	publisher   EventPublisher
}

// NewCreateReviewUseCase 创建评价用例
func NewCreateReviewUseCase(
	reviewRepo review.Repository,
	productRepo product.Repository,
	orderRepo order.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *CreateReviewUseCase {
	return &CreateReviewUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		txManager:   txManager,
		publisher:   publisher,
	}
}

// CreateReviewRequest 创建评价请求
type CreateReviewRequest struct {
	ProductID uint
	UserID    uint // 从JWT提取
	Rating    int  // 1~5
	Title     string
	Comment   string
}

// Execute 执行创建评价
func (uc *CreateReviewUseCase) Execute(ctx context.Context, req CreateReviewRequest) (*review.Review, error) {
	// 1. 商品必须存在(事务外先查一次,快速失败)
	if _, err := uc.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	// 2. 已购买标记:存在含该商品的已送达订单
	verified, err := uc.orderRepo.HasDeliveredProduct(ctx, req.UserID, req.ProductID)
	if err != nil {
		return nil, err
	}

	// 3. 构造评价实体(评分/内容校验在工厂方法内)
	rev, err := review.NewReview(req.ProductID, req.UserID, req.Rating, req.Title, req.Comment, verified)
	if err != nil {
		return nil, err
	}

	var avgRating float64
	var count int
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 4. 锁定商品行:同一商品的评分重算在此串行化
		if _, err := uc.productRepo.LockByID(txCtx, req.ProductID); err != nil {
			return err
		}

		// 5. 写入评价(重复评价由唯一索引兜底)
		if err := uc.reviewRepo.Create(txCtx, rev); err != nil {
			return err
		}

		// 6. 重算评分并写回商品行
		avgRating, count, err = recomputeRating(txCtx, uc.productRepo, uc.reviewRepo, req.ProductID)
		return err
	})

	if err != nil {
		return nil, err
	}

	metrics.ReviewsCreatedTotal.Inc()

	if uc.publisher != nil {
		event := ReviewEvent{
			ReviewID:  rev.ID,
			ProductID: rev.ProductID,
			UserID:    rev.UserID,
			Rating:    rev.Rating,
			Approved:  rev.IsApproved,
			AvgRating: avgRating,
			Count:     count,
		}
		if err := uc.publisher.Publish(ctx, EventReviewCreated, event); err != nil {
			log.Printf("发布评价创建事件失败: review_id=%d, err=%v", rev.ID, err)
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewCreated, "error").Inc()
		} else {
			metrics.MessagesPublishedTotal.WithLabelValues(EventReviewCreated, "ok").Inc()
		}
	}

	return rev, nil
}
