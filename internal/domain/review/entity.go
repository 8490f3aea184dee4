package review

import (
	"time"
)

// Review 商品评价实体
//
// 设计说明：
// 1. 每个(商品,用户)组合最多一条评价，由数据库唯一索引兜底
// 2. IsApproved是进入商品评分聚合的资格门槛：
//    只有审核通过的评价参与均分/评价数/分布统计
// 3. 评分是1~5的整数；商品侧的0.5粒度均分由聚合计算产生
type Review struct {
	ID        uint
	ProductID uint
	UserID    uint

	Rating  int // 1~5
	Title   string
	Comment string

	IsVerifiedPurchase bool // 作者存在含该商品的已送达订单
	IsApproved         bool

	HelpfulCount int

	AdminResponse string
	RespondedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// 评价内容长度约束
const (
	MinCommentLen = 10
	MaxCommentLen = 2000
	MaxTitleLen   = 200
)

// NewReview 创建新评价（工厂方法）
// 新评价默认审核通过（自动审核策略，后台可驳回）
func NewReview(productID, userID uint, rating int, title, comment string, verifiedPurchase bool) (*Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	if err := ValidateContent(title, comment); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Review{
		ProductID:          productID,
		UserID:             userID,
		Rating:             rating,
		Title:              title,
		Comment:            comment,
		IsVerifiedPurchase: verifiedPurchase,
		IsApproved:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// ValidateRating 校验评分取值
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// ValidateContent 校验标题与内容长度
func ValidateContent(title, comment string) error {
	if len(comment) < MinCommentLen || len(comment) > MaxCommentLen {
		return ErrInvalidComment
	}
	if len(title) > MaxTitleLen {
		return ErrInvalidTitle
	}
	return nil
}

// CanMutate 判断actor是否有权修改/删除本评价
// 规则：评价作者或管理员
func (r *Review) CanMutate(actorID uint, isAdmin bool) bool {
	return isAdmin || r.UserID == actorID
}

// Approve 审核通过
func (r *Review) Approve() {
	r.IsApproved = true
	r.UpdatedAt = time.Now()
}

// Reject 审核驳回（不再参与商品评分聚合）
func (r *Review) Reject() {
	r.IsApproved = false
	r.UpdatedAt = time.Now()
}

// MarkHelpful 点赞（"有帮助"计数+1）
func (r *Review) MarkHelpful() {
	r.HelpfulCount++
	r.UpdatedAt = time.Now()
}

// Respond 商家回复
func (r *Review) Respond(response string) {
	now := time.Now()
	r.AdminResponse = response
	r.RespondedAt = &now
	r.UpdatedAt = now
}
