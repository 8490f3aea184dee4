package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/cocomart/internal/application/review"
	"github.com/xiebiao/cocomart/internal/interface/http/dto"
	"github.com/xiebiao/cocomart/internal/interface/http/middleware"
	"github.com/xiebiao/cocomart/pkg/response"
)

// ReviewHandler 评价HTTP处理器
type ReviewHandler struct {
	createUseCase      *appreview.CreateReviewUseCase
	updateUseCase      *appreview.UpdateReviewUseCase
	deleteUseCase      *appreview.DeleteReviewUseCase
	moderateUseCase    *appreview.ModerateReviewUseCase
	markHelpfulUseCase *appreview.MarkHelpfulUseCase
	listUseCase        *appreview.ListReviewsUseCase
	ratingUseCase      *appreview.RatingQueryUseCase
}

// NewReviewHandler 创建评价处理器
func NewReviewHandler(
	createUseCase *appreview.CreateReviewUseCase,
	updateUseCase *appreview.UpdateReviewUseCase,
	deleteUseCase *appreview.DeleteReviewUseCase,
	moderateUseCase *appreview.ModerateReviewUseCase,
	markHelpfulUseCase *appreview.MarkHelpfulUseCase,
	listUseCase *appreview.ListReviewsUseCase,
	ratingUseCase *appreview.RatingQueryUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		createUseCase:      createUseCase,
		updateUseCase:      updateUseCase,
		deleteUseCase:      deleteUseCase,
		moderateUseCase:    moderateUseCase,
		markHelpfulUseCase: markHelpfulUseCase,
		listUseCase:        listUseCase,
		ratingUseCase:      ratingUseCase,
	}
}

// CreateReview 创建评价
// @Summary      创建评价
// @Description  对商品发表评价（需要登录）。每个用户对每个商品最多一条；提交后同一事务内重算商品评分
// @Tags         评价模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.CreateReviewRequest true "评价内容"
// @Success      200 {object} response.Response{data=dto.ReviewResponse} "评价成功"
// @Failure      200 {object} response.Response "重复评价/商品不存在/参数错误"
// @Router       /products/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	rev, err := h.createUseCase.Execute(c.Request.Context(), appreview.CreateReviewRequest{
		ProductID: productID,
		UserID:    middleware.MustGetUserID(c),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponse(rev))
}

// ListProductReviews 商品评价列表
// @Summary      商品评价列表
// @Description  查询商品的评价（公开接口只返回审核通过的评价，管理员可见全部）
// @Tags         评价模块
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=[]dto.ReviewResponse} "查询成功"
// @Failure      200 {object} response.Response "商品不存在"
// @Router       /products/{id}/reviews [get]
func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.listUseCase.ListByProduct(c.Request.Context(), productID, middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponses(reviews))
}

// GetProductRating 商品评分概览
// @Summary      商品评分概览
// @Description  查询商品的平均评分（1位小数）、有效评价数和1~5星分布，口径与商品详情上的评分一致
// @Tags         评价模块
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.RatingSummaryResponse} "查询成功"
// @Failure      200 {object} response.Response "商品不存在"
// @Router       /products/{id}/rating [get]
func (h *ReviewHandler) GetProductRating(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.ratingUseCase.Execute(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, &dto.RatingSummaryResponse{
		ProductID:    summary.ProductID,
		Average:      summary.Average,
		Count:        summary.Count,
		Distribution: summary.Distribution,
	})
}

// ListMyReviews 我的评价列表
// @Summary      我的评价
// @Description  查询当前用户发表的评价（新评价在前）
// @Tags         评价模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.ReviewResponse} "查询成功"
// @Router       /reviews/mine [get]
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	reviews, err := h.listUseCase.ListByUser(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponses(reviews))
}

// UpdateReview 修改评价
// @Summary      修改评价
// @Description  修改评价（作者或管理员）。评分变化时同一事务内重算商品评分
// @Tags         评价模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评价ID"
// @Param        request body dto.UpdateReviewRequest true "修改字段"
// @Success      200 {object} response.Response{data=dto.ReviewResponse} "修改成功"
// @Failure      200 {object} response.Response "评价不存在/无权限"
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	rev, err := h.updateUseCase.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		ReviewID: reviewID,
		ActorID:  middleware.MustGetUserID(c),
		IsAdmin:  middleware.IsAdmin(c),
		Rating:   req.Rating,
		Title:    req.Title,
		Comment:  req.Comment,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponse(rev))
}

// DeleteReview 删除评价
// @Summary      删除评价
// @Description  删除评价（作者或管理员）。删除后同一事务内重算商品评分
// @Tags         评价模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评价ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      200 {object} response.Response "评价不存在/无权限"
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.deleteUseCase.Execute(c.Request.Context(), reviewID, middleware.MustGetUserID(c), middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, nil)
}

// MarkHelpful 评价点赞
// @Summary      评价点赞
// @Description  给评价投"有帮助"一票
// @Tags         评价模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评价ID"
// @Success      200 {object} response.Response{data=dto.ReviewResponse} "点赞成功"
// @Router       /reviews/{id}/helpful [post]
func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rev, err := h.markHelpfulUseCase.Execute(c.Request.Context(), reviewID)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponse(rev))
}

// ApproveReview 审核通过
// @Summary      审核通过评价
// @Description  管理员审核通过评价，评价重新参与商品评分聚合
// @Tags         评价模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评价ID"
// @Success      200 {object} response.Response{data=dto.ReviewResponse} "审核成功"
// @Router       /admin/reviews/{id}/approve [post]
func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rev, err := h.moderateUseCase.Approve(c.Request.Context(), reviewID)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponse(rev))
}

// RejectReview 审核驳回
// @Summary      驳回评价
// @Description  管理员驳回评价，评价保留但不再参与商品评分聚合
// @Tags         评价模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评价ID"
// @Success      200 {object} response.Response{data=dto.ReviewResponse} "驳回成功"
// @Router       /admin/reviews/{id}/reject [post]
func (h *ReviewHandler) RejectReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rev, err := h.moderateUseCase.Reject(c.Request.Context(), reviewID)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponse(rev))
}

// RespondReview 商家回复
// @Summary      商家回复评价
// @Description  管理员回复评价（回复不影响评分聚合）
// @Tags         评价模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评价ID"
// @Param        request body dto.RespondReviewRequest true "回复内容"
// @Success      200 {object} response.Response{data=dto.ReviewResponse} "回复成功"
// @Router       /admin/reviews/{id}/respond [post]
func (h *ReviewHandler) RespondReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RespondReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	rev, err := h.moderateUseCase.Respond(c.Request.Context(), reviewID, req.Response)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponse(rev))
}

// ListPendingReviews 待审核评价
// @Summary      待审核评价
// @Description  管理员查询待审核评价队列（旧评价在前）
// @Tags         评价模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.ReviewResponse} "查询成功"
// @Router       /admin/reviews/pending [get]
func (h *ReviewHandler) ListPendingReviews(c *gin.Context) {
	reviews, err := h.moderateUseCase.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToReviewResponses(reviews))
}
