package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func reviewsWithRatings(ratings ...int) []*Review {
	reviews := make([]*Review, len(ratings))
	for i, r := range ratings {
		reviews[i] = &Review{Rating: r}
	}
	return reviews
}

// TestAggregate 测试均分聚合
func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		ratings    []int
		wantRating float64
		wantCount  int
	}{
		{"空集返回零值", nil, 0, 0},
		{"单条评价", []int{4}, 4.0, 1},
		{"整除", []int{5, 3}, 4.0, 2},
		{"保留1位小数", []int{5, 4}, 4.5, 2},
		{"四舍五入进位", []int{5, 4, 4}, 4.3, 3}, // 4.333→4.3
		{"四舍五入舍去", []int{5, 5, 4}, 4.7, 3}, // 4.666→4.7
		{"全5星", []int{5, 5, 5, 5}, 5.0, 4},
		{"全1星", []int{1, 1}, 1.0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rating, count := Aggregate(reviewsWithRatings(tt.ratings...))
			assert.InDelta(t, tt.wantRating, rating, 1e-9)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

// TestDistribution 测试评分分布直方图
func TestDistribution(t *testing.T) {
	t.Run("空集所有键计数为0", func(t *testing.T) {
		dist := Distribution(nil)
		assert.Len(t, dist, 5, "1~5星的键必须恒存在")
		for star := 1; star <= 5; star++ {
			assert.Equal(t, 0, dist[star])
		}
	})

	t.Run("正常分布", func(t *testing.T) {
		dist := Distribution(reviewsWithRatings(5, 5, 4, 1))
		assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 1, 5: 2}, dist)
	})
}

// TestNewReview 测试评价工厂方法的校验规则
func TestNewReview(t *testing.T) {
	validComment := "椰子很新鲜，汁水充足，值得回购。"

	t.Run("正常创建", func(t *testing.T) {
		rev, err := NewReview(1, 2, 5, "好评", validComment, true)
		assert.NoError(t, err)
		assert.True(t, rev.IsApproved, "新评价默认审核通过")
		assert.True(t, rev.IsVerifiedPurchase)
		assert.Equal(t, 0, rev.HelpfulCount)
	})

	t.Run("评分越界", func(t *testing.T) {
		for _, rating := range []int{0, -1, 6, 100} {
			_, err := NewReview(1, 2, rating, "", validComment, false)
			assert.ErrorIs(t, err, ErrInvalidRating, "rating=%d", rating)
		}
	})

	t.Run("内容过短", func(t *testing.T) {
		_, err := NewReview(1, 2, 5, "", "太短了", false)
		assert.ErrorIs(t, err, ErrInvalidComment)
	})

	t.Run("内容过长", func(t *testing.T) {
		long := make([]byte, MaxCommentLen+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err := NewReview(1, 2, 5, "", string(long), false)
		assert.ErrorIs(t, err, ErrInvalidComment)
	})
}

// TestReview_CanMutate 测试修改/删除权限规则
func TestReview_CanMutate(t *testing.T) {
	rev := &Review{UserID: 7}

	assert.True(t, rev.CanMutate(7, false), "作者可以操作")
	assert.True(t, rev.CanMutate(99, true), "管理员可以操作")
	assert.False(t, rev.CanMutate(99, false), "其他用户不可操作")
}

// TestReview_Moderation 测试审核状态切换
func TestReview_Moderation(t *testing.T) {
	rev := &Review{IsApproved: true}

	rev.Reject()
	assert.False(t, rev.IsApproved)

	rev.Approve()
	assert.True(t, rev.IsApproved)
}
