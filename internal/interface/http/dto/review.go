package dto

import (
	"github.com/xiebiao/cocomart/internal/domain/review"
)

// CreateReviewRequest 创建评价请求
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5" example:"5"`
	Title   string `json:"title" binding:"omitempty,max=200" example:"椰青很新鲜"`
	Comment string `json:"comment" binding:"required,min=10,max=2000" example:"汁水很多，甜度正好，包装也结实。"`
}

// UpdateReviewRequest 修改评价请求
// 指针字段缺省表示不修改
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,gte=1,lte=5"`
	Title   *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,min=10,max=2000"`
}

// RespondReviewRequest 商家回复请求（管理员）
type RespondReviewRequest struct {
	Response string `json:"response" binding:"required,min=1,max=1000"`
}

// ReviewResponse 评价响应
type ReviewResponse struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"product_id"`
	UserID    uint   `json:"user_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Comment   string `json:"comment"`

	IsVerifiedPurchase bool `json:"is_verified_purchase"`
	IsApproved         bool `json:"is_approved"`
	HelpfulCount       int  `json:"helpful_count"`

	AdminResponse string `json:"admin_response,omitempty"`
	RespondedAt   string `json:"responded_at,omitempty"`

	CreatedAt string `json:"created_at"`
}

// ToReviewResponse 领域实体 → 响应DTO
func ToReviewResponse(r *review.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:                 r.ID,
		ProductID:          r.ProductID,
		UserID:             r.UserID,
		Rating:             r.Rating,
		Title:              r.Title,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		IsApproved:         r.IsApproved,
		HelpfulCount:       r.HelpfulCount,
		AdminResponse:      r.AdminResponse,
		RespondedAt:        formatTimePtr(r.RespondedAt),
		CreatedAt:          r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ToReviewResponses 批量转换
func ToReviewResponses(reviews []*review.Review) []*ReviewResponse {
	out := make([]*ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = ToReviewResponse(r)
	}
	return out
}

// RatingSummaryResponse 评分概览响应
type RatingSummaryResponse struct {
	ProductID    uint        `json:"product_id"`
	Average      float64     `json:"average"` // 0~5，1位小数
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"` // 键固定为1~5
}
