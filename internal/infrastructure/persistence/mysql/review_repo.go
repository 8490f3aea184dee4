package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/cocomart/internal/domain/review"
	apperrors "github.com/xiebiao/cocomart/pkg/errors"
)

// reviewRepository 评价仓储实现(MySQL)
// 设计说明:
// 1. (product_id, user_id)复合唯一索引冲突转换为ErrDuplicateReview
// 2. 评分重算读ListApprovedByProduct,调用前必须已锁定商品行
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建评价
func (r *reviewRepository) Create(ctx context.Context, rev *review.Review) error {
	model := toReviewModel(rev)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		// 同一用户重复评价同一商品
		if isDuplicateError(err) {
			return review.ErrDuplicateReview
		}
		return apperrors.Wrap(err, "创建评价失败")
	}

	// 回填自增ID
	rev.ID = model.ID
	rev.CreatedAt = model.CreatedAt
	rev.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找评价
func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	db := r.getDB(ctx)
	err := db.First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.Wrap(err, "查询评价失败")
	}

	return toReviewEntity(&model), nil
}

// Update 更新评价
func (r *reviewRepository) Update(ctx context.Context, rev *review.Review) error {
	db := r.getDB(ctx)
	result := db.Model(&ReviewModel{}).Where("id = ?", rev.ID).Updates(map[string]interface{}{
		"rating":         rev.Rating,
		"title":          rev.Title,
		"comment":        rev.Comment,
		"is_approved":    rev.IsApproved,
		"helpful_count":  rev.HelpfulCount,
		"admin_response": rev.AdminResponse,
		"responded_at":   rev.RespondedAt,
		"updated_at":     rev.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评价失败")
	}

	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}

	return nil
}

// Delete 删除评价(物理删除)
// 删除后商品评分需要重算,由应用层在同一事务内处理
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.Delete(&ReviewModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评价失败")
	}

	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}

	return nil
}

// ListApprovedByProduct 查询商品的有效评价集(审核通过,新评价在前)
func (r *reviewRepository) ListApprovedByProduct(ctx context.Context, productID uint) ([]*review.Review, error) {
	db := r.getDB(ctx)
	query := db.Where("product_id = ? AND is_approved = ?", productID, true).
		Order("created_at DESC")
	return r.listQuery(query)
}

// ListByProduct 查询商品的全部评价(含未审核,后台用)
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uint) ([]*review.Review, error) {
	db := r.getDB(ctx)
	query := db.Where("product_id = ?", productID).Order("created_at DESC")
	return r.listQuery(query)
}

// ListByUser 查询用户发表的评价(新评价在前)
func (r *reviewRepository) ListByUser(ctx context.Context, userID uint) ([]*review.Review, error) {
	db := r.getDB(ctx)
	query := db.Where("user_id = ?", userID).Order("created_at DESC")
	return r.listQuery(query)
}

// ListPendingApproval 查询待审核评价(旧评价在前,先提交先处理)
func (r *reviewRepository) ListPendingApproval(ctx context.Context) ([]*review.Review, error) {
	db := r.getDB(ctx)
	query := db.Where("is_approved = ?", false).Order("created_at ASC")
	return r.listQuery(query)
}

// listQuery 执行评价列表查询并转换为领域实体
func (r *reviewRepository) listQuery(query *gorm.DB) ([]*review.Review, error) {
	var models []ReviewModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询评价列表失败")
	}

	reviews := make([]*review.Review, len(models))
	for i := range models {
		reviews[i] = toReviewEntity(&models[i])
	}

	return reviews, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toReviewModel 领域实体 → GORM模型
func toReviewModel(rev *review.Review) *ReviewModel {
	return &ReviewModel{
		ID:                 rev.ID,
		ProductID:          rev.ProductID,
		UserID:             rev.UserID,
		Rating:             rev.Rating,
		Title:              rev.Title,
		Comment:            rev.Comment,
		IsVerifiedPurchase: rev.IsVerifiedPurchase,
		IsApproved:         rev.IsApproved,
		HelpfulCount:       rev.HelpfulCount,
		AdminResponse:      rev.AdminResponse,
		RespondedAt:        rev.RespondedAt,
		CreatedAt:          rev.CreatedAt,
		UpdatedAt:          rev.UpdatedAt,
	}
}

// toReviewEntity GORM模型 → 领域实体
func toReviewEntity(model *ReviewModel) *review.Review {
	return &review.Review{
		ID:                 model.ID,
		ProductID:          model.ProductID,
		UserID:             model.UserID,
		Rating:             model.Rating,
		Title:              model.Title,
		Comment:            model.Comment,
		IsVerifiedPurchase: model.IsVerifiedPurchase,
		IsApproved:         model.IsApproved,
		HelpfulCount:       model.HelpfulCount,
		AdminResponse:      model.AdminResponse,
		RespondedAt:        model.RespondedAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *reviewRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
