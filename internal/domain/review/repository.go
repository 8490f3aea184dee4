package review

import (
	"context"
)

// Repository 评价仓储接口
type Repository interface {
	// Create 创建评价
	// (product_id, user_id)唯一索引冲突时返回ErrDuplicateReview
	Create(ctx context.Context, r *Review) error

	// FindByID 根据ID查找评价
	FindByID(ctx context.Context, id uint) (*Review, error)

	// Update 更新评价（评分、标题、内容、审核状态、点赞数、商家回复）
	Update(ctx context.Context, r *Review) error

	// Delete 删除评价（物理删除）
	Delete(ctx context.Context, id uint) error

	// ListApprovedByProduct 查询商品的有效评价集（审核通过，新评价在前）
	// 评分重算读的就是这个集合；重算时必须先锁定商品行（见product.Repository.LockByID）
	ListApprovedByProduct(ctx context.Context, productID uint) ([]*Review, error)

	// ListByProduct 查询商品的全部评价（含未审核，后台用）
	ListByProduct(ctx context.Context, productID uint) ([]*Review, error)

	// ListByUser 查询用户发表的评价（新评价在前）
	ListByUser(ctx context.Context, userID uint) ([]*Review, error)

	// ListPendingApproval 查询待审核评价（旧评价在前，先提交先处理）
	ListPendingApproval(ctx context.Context) ([]*Review, error)
}
