package review

import (
	"context"
	"time"

	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
	"github.com/xiebiao/cocomart/pkg/metrics"
)

// recomputeRating 重算商品评分并落库
//
// 并发安全的关键约定:
//  1. 只能在TxManager.Transaction内调用,且调用前必须已通过
//     productRepo.LockByID锁定该商品行——同一商品的并发评价写入
//     在行锁上串行化,不同商品互不竞争
//  2. 全量重读有效评价集(审核通过)后计算,而非增量调整,
//     保证任何写入路径(创建/修改/删除/审核)之后派生值都与评价表一致
//
// 返回重算后的均分和评价数,供调用方组装事件载荷。
func recomputeRating(
	txCtx context.Context,
	productRepo product.Repository,
	reviewRepo review.Repository,
	productID uint,
) (float64, int, error) {
	start := time.Now()

	reviews, err := reviewRepo.ListApprovedByProduct(txCtx, productID)
	if err != nil {
		return 0, 0, err
	}

	rating, count := review.Aggregate(reviews)

	if err := productRepo.UpdateRating(txCtx, productID, rating, count); err != nil {
		return 0, 0, err
	}

	metrics.RatingRecomputeDuration.Observe(time.Since(start).Seconds())
	return rating, count, nil
}
