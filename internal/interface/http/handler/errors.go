package handler

import (
	"errors"

	"github.com/xiebiao/cocomart/internal/domain/order"
	"github.com/xiebiao/cocomart/internal/domain/product"
	"github.com/xiebiao/cocomart/internal/domain/review"
	apperrors "github.com/xiebiao/cocomart/pkg/errors"
)

// mapDomainErr 把domain层的哨兵错误转换为带业务错误码的AppError
// 设计说明：domain层不感知错误码体系，映射集中在HTTP边界做一次，
// 不在映射表里的错误原样透传（response.Error会兜底为系统内部错误）
func mapDomainErr(err error) error {
	switch {
	// 订单
	case errors.Is(err, order.ErrOrderNotFound):
		return apperrors.ErrOrderNotFound
	case errors.Is(err, order.ErrInvalidStatusTransition):
		return apperrors.ErrInvalidTransition
	case errors.Is(err, order.ErrOrderNotCancellable):
		return apperrors.ErrOrderNotCancelable
	case errors.Is(err, order.ErrOrderPermissionDenied):
		return apperrors.ErrForbidden
	case errors.Is(err, order.ErrEmptyOrderItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidUnitPrice),
		errors.Is(err, order.ErrMissingShippingAddress),
		errors.Is(err, order.ErrInvalidRevenueRange):
		return apperrors.New(apperrors.ErrCodeInvalidParams, err.Error())

	// 商品
	case errors.Is(err, product.ErrProductNotFound):
		return apperrors.ErrProductNotFound
	case errors.Is(err, product.ErrSKUDuplicate):
		return apperrors.ErrSKUDuplicate
	case errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, product.ErrProductInactive):
		return apperrors.New(apperrors.ErrCodeBusinessError, err.Error())
	case errors.Is(err, product.ErrInvalidCategory),
		errors.Is(err, product.ErrInvalidPrice):
		return apperrors.New(apperrors.ErrCodeInvalidParams, err.Error())

	// 评价
	case errors.Is(err, review.ErrReviewNotFound):
		return apperrors.ErrReviewNotFound
	case errors.Is(err, review.ErrDuplicateReview):
		return apperrors.ErrDuplicateReview
	case errors.Is(err, review.ErrReviewPermissionDenied):
		return apperrors.ErrForbidden
	case errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrInvalidComment),
		errors.Is(err, review.ErrInvalidTitle):
		return apperrors.New(apperrors.ErrCodeInvalidParams, err.Error())
	}

	return err
}
