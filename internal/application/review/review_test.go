package review

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
)

type reviewFixture struct {
	reviewRepo  *fakeReviewRepo
	productRepo *fakeProductRepo
	orderRepo   *fakeOrderRepo
	publisher   *fakePublisher

	create   *CreateReviewUseCase
	update   *UpdateReviewUseCase
	del      *DeleteReviewUseCase
	moderate *ModerateReviewUseCase
	helpful  *MarkHelpfulUseCase
	rating   *RatingQueryUseCase
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	f := &reviewFixture{
		reviewRepo:  newFakeReviewRepo(),
		productRepo: newFakeProductRepo(testProduct(1)),
		orderRepo:   newFakeOrderRepo(),
		publisher:   &fakePublisher{},
	}
	tx := &fakeTxManager{}

	f.create = NewCreateReviewUseCase(f.reviewRepo, f.productRepo, f.orderRepo, tx, f.publisher)
	f.update = NewUpdateReviewUseCase(f.reviewRepo, f.productRepo, tx, f.publisher)
	f.del = NewDeleteReviewUseCase(f.reviewRepo, f.productRepo, tx, f.publisher)
	f.moderate = NewModerateReviewUseCase(f.reviewRepo, f.productRepo, tx, f.publisher)
	f.helpful = NewMarkHelpfulUseCase(f.reviewRepo, tx)
	f.rating = NewRatingQueryUseCase(f.reviewRepo, f.productRepo)
	return f
}

func (f *reviewFixture) createReview(t *testing.T, userID uint, rating int) *review.Review {
	t.Helper()
	rev, err := f.create.Execute(context.Background(), CreateReviewRequest{
		ProductID: 1, UserID: userID, Rating: rating, Comment: validComment,
	})
	require.NoError(t, err)
	return rev
}

func (f *reviewFixture) productRating(t *testing.T) (float64, int) {
	t.Helper()
	p, err := f.productRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	return p.Rating, p.ReviewCount
}

// TestCreateReview 测试创建评价与评分联动
func TestCreateReview(t *testing.T) {
	t.Run("创建后商品评分同步更新", func(t *testing.T) {
		f := newReviewFixture(t)

		f.createReview(t, 1, 5)
		rating, count := f.productRating(t)
		assert.Equal(t, 5.0, rating)
		assert.Equal(t, 1, count)

		f.createReview(t, 2, 4)
		rating, count = f.productRating(t)
		assert.Equal(t, 4.5, rating)
		assert.Equal(t, 2, count)

		assert.Equal(t, 2, f.publisher.eventCount(EventReviewCreated))
	})

	t.Run("已购买标记", func(t *testing.T) {
		f := newReviewFixture(t)
		f.orderRepo.markDelivered(1, 1)

		rev := f.createReview(t, 1, 5)
		assert.True(t, rev.IsVerifiedPurchase)

		rev2 := f.createReview(t, 2, 4)
		assert.False(t, rev2.IsVerifiedPurchase, "无已送达订单的用户不应有已购买标记")
	})

	t.Run("重复评价被拒", func(t *testing.T) {
		f := newReviewFixture(t)
		f.createReview(t, 1, 5)

		_, err := f.create.Execute(context.Background(), CreateReviewRequest{
			ProductID: 1, UserID: 1, Rating: 3, Comment: validComment,
		})
		assert.ErrorIs(t, err, review.ErrDuplicateReview)

		// 失败的写入不应影响评分
		rating, count := f.productRating(t)
		assert.Equal(t, 5.0, rating)
		assert.Equal(t, 1, count)
	})

	t.Run("商品不存在", func(t *testing.T) {
		f := newReviewFixture(t)
		_, err := f.create.Execute(context.Background(), CreateReviewRequest{
			ProductID: 404, UserID: 1, Rating: 5, Comment: validComment,
		})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("评分越界", func(t *testing.T) {
		f := newReviewFixture(t)
		_, err := f.create.Execute(context.Background(), CreateReviewRequest{
			ProductID: 1, UserID: 1, Rating: 6, Comment: validComment,
		})
		assert.ErrorIs(t, err, review.ErrInvalidRating)
	})
}

// TestCreateReview_ConcurrentConvergence 并发写入后评分收敛
// N个用户并发评价同一商品,全部完成后商品的均分/评价数
// 必须与评价表完全一致(全量重算保证收敛,与写入顺序无关)
func TestCreateReview_ConcurrentConvergence(t *testing.T) {
	f := newReviewFixture(t)

	const users = 20
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.create.Execute(context.Background(), CreateReviewRequest{
				ProductID: 1,
				UserID:    uint(i + 1),
				Rating:    i%5 + 1, // 1~5均匀分布
				Comment:   fmt.Sprintf("第%d位用户的评价:%s", i+1, validComment),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	reviews, err := f.reviewRepo.ListApprovedByProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, reviews, users)

	wantRating, wantCount := review.Aggregate(reviews)
	rating, count := f.productRating(t)
	assert.Equal(t, wantRating, rating, "商品均分必须与评价表一致")
	assert.Equal(t, wantCount, count)
	assert.Equal(t, 3.0, rating, "1~5均匀分布的均分是3.0")
}

// TestUpdateReview 测试修改评价
func TestUpdateReview(t *testing.T) {
	newRating := func(r int) *int { return &r }
	newStr := func(s string) *string { return &s }

	t.Run("评分变化触发重算", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 5)
		f.createReview(t, 2, 5)

		_, err := f.update.Execute(context.Background(), UpdateReviewRequest{
			ReviewID: rev.ID, ActorID: 1, Rating: newRating(1),
		})
		require.NoError(t, err)

		rating, count := f.productRating(t)
		assert.Equal(t, 3.0, rating)
		assert.Equal(t, 2, count)
		assert.Equal(t, 1, f.publisher.eventCount(EventReviewUpdated))
	})

	t.Run("只改内容不触发重算事件", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 5)

		updated, err := f.update.Execute(context.Background(), UpdateReviewRequest{
			ReviewID: rev.ID, ActorID: 1,
			Comment: newStr("补充:存放一周后依然新鲜,很满意。"),
		})
		require.NoError(t, err)
		assert.Contains(t, updated.Comment, "补充")
		assert.Equal(t, 0, f.publisher.eventCount(EventReviewUpdated))
	})

	t.Run("非作者修改被拒", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 5)

		_, err := f.update.Execute(context.Background(), UpdateReviewRequest{
			ReviewID: rev.ID, ActorID: 2, Rating: newRating(1),
		})
		assert.ErrorIs(t, err, review.ErrReviewPermissionDenied)

		rating, _ := f.productRating(t)
		assert.Equal(t, 5.0, rating, "被拒的修改不应影响评分")
	})

	t.Run("管理员可以修改", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 5)

		_, err := f.update.Execute(context.Background(), UpdateReviewRequest{
			ReviewID: rev.ID, ActorID: 99, IsAdmin: true, Rating: newRating(4),
		})
		assert.NoError(t, err)

		rating, _ := f.productRating(t)
		assert.Equal(t, 4.0, rating)
	})
}

// TestDeleteReview 测试删除评价与评分联动
func TestDeleteReview(t *testing.T) {
	t.Run("删除后评分重算", func(t *testing.T) {
		f := newReviewFixture(t)
		rev1 := f.createReview(t, 1, 5)
		f.createReview(t, 2, 3)

		require.NoError(t, f.del.Execute(context.Background(), rev1.ID, 1, false))

		rating, count := f.productRating(t)
		assert.Equal(t, 3.0, rating)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, f.publisher.eventCount(EventReviewDeleted))
	})

	t.Run("删到空集评分归零", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 5)

		require.NoError(t, f.del.Execute(context.Background(), rev.ID, 1, false))

		rating, count := f.productRating(t)
		assert.Equal(t, 0.0, rating)
		assert.Equal(t, 0, count)
	})

	t.Run("非作者删除被拒", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 5)

		err := f.del.Execute(context.Background(), rev.ID, 2, false)
		assert.ErrorIs(t, err, review.ErrReviewPermissionDenied)
	})
}

// TestModerateReview 测试审核与聚合资格联动
func TestModerateReview(t *testing.T) {
	t.Run("驳回后评价退出聚合", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 1)
		f.createReview(t, 2, 5)

		rejected, err := f.moderate.Reject(context.Background(), rev.ID)
		require.NoError(t, err)
		assert.False(t, rejected.IsApproved)

		// 1星被驳回后只剩5星
		rating, count := f.productRating(t)
		assert.Equal(t, 5.0, rating)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, f.publisher.eventCount(EventReviewModerated))
	})

	t.Run("重新通过后评价回到聚合", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 1)
		f.createReview(t, 2, 5)

		_, err := f.moderate.Reject(context.Background(), rev.ID)
		require.NoError(t, err)
		_, err = f.moderate.Approve(context.Background(), rev.ID)
		require.NoError(t, err)

		rating, count := f.productRating(t)
		assert.Equal(t, 3.0, rating)
		assert.Equal(t, 2, count)
	})

	t.Run("审核状态未变化不重算不发事件", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 5) // 新评价默认已通过

		_, err := f.moderate.Approve(context.Background(), rev.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, f.publisher.eventCount(EventReviewModerated))
	})

	t.Run("驳回后进入待审核队列", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 2)

		_, err := f.moderate.Reject(context.Background(), rev.ID)
		require.NoError(t, err)

		pending, err := f.moderate.ListPending(context.Background())
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, rev.ID, pending[0].ID)
	})

	t.Run("商家回复", func(t *testing.T) {
		f := newReviewFixture(t)
		rev := f.createReview(t, 1, 2)

		responded, err := f.moderate.Respond(context.Background(), rev.ID, "抱歉给您带来不好的体验,已安排补发。")
		require.NoError(t, err)
		assert.Contains(t, responded.AdminResponse, "补发")
		assert.NotNil(t, responded.RespondedAt)
	})
}

// TestMarkHelpful 测试点赞
func TestMarkHelpful(t *testing.T) {
	f := newReviewFixture(t)
	rev := f.createReview(t, 1, 5)

	for i := 1; i <= 3; i++ {
		updated, err := f.helpful.Execute(context.Background(), rev.ID)
		require.NoError(t, err)
		assert.Equal(t, i, updated.HelpfulCount)
	}

	_, err := f.helpful.Execute(context.Background(), 404)
	assert.ErrorIs(t, err, review.ErrReviewNotFound)
}

// TestRatingQuery 测试评分概览查询
func TestRatingQuery(t *testing.T) {
	f := newReviewFixture(t)
	f.createReview(t, 1, 5)
	f.createReview(t, 2, 5)
	rev3 := f.createReview(t, 3, 1)

	t.Run("均分与分布", func(t *testing.T) {
		summary, err := f.rating.Execute(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, uint(1), summary.ProductID)
		assert.InDelta(t, 3.7, summary.Average, 1e-9) // (5+5+1)/3=3.666→3.7
		assert.Equal(t, 3, summary.Count)
		assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 0, 5: 2}, summary.Distribution)
	})

	t.Run("驳回的评价不计入", func(t *testing.T) {
		_, err := f.moderate.Reject(context.Background(), rev3.ID)
		require.NoError(t, err)

		summary, err := f.rating.Execute(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 5.0, summary.Average)
		assert.Equal(t, 2, summary.Count)
		assert.Equal(t, 0, summary.Distribution[1])
	})

	t.Run("商品不存在", func(t *testing.T) {
		_, err := f.rating.Execute(context.Background(), 404)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})
}
