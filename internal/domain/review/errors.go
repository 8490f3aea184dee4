package review

import "errors"

var (
	// ErrReviewNotFound 评价不存在
	ErrReviewNotFound = errors.New("评价不存在")

	// ErrDuplicateReview 重复评价
	// 场景：同一用户对同一商品提交第二条评价（唯一索引兜底）
	ErrDuplicateReview = errors.New("您已评价过该商品")

	// ErrInvalidRating 评分取值异常（必须是1~5的整数）
	ErrInvalidRating = errors.New("评分必须在1到5之间")

	// ErrInvalidComment 评价内容长度异常
	ErrInvalidComment = errors.New("评价内容长度须在10~2000字符之间")

	// ErrInvalidTitle 评价标题过长
	ErrInvalidTitle = errors.New("评价标题过长")

	// ErrReviewPermissionDenied 无权限操作评价
	// 场景：非作者且非管理员尝试修改/删除
	ErrReviewPermissionDenied = errors.New("无权限操作该评价")
)
