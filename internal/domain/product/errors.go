package product

import "errors"

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("商品不存在")

	// ErrSKUDuplicate SKU重复
	ErrSKUDuplicate = errors.New("SKU已存在")

	// ErrInvalidCategory 品类不合法
	ErrInvalidCategory = errors.New("商品品类不合法")

	// ErrInvalidPrice 价格异常
	ErrInvalidPrice = errors.New("商品价格异常")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("商品库存不足")

	// ErrProductInactive 商品已下架
	ErrProductInactive = errors.New("商品已下架")
)
