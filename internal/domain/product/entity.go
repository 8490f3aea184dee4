package product

import (
	"time"
)

// Product 商品聚合根
//
// 设计说明：
// 1. 价格存分（int64），与订单侧保持一致
// 2. Rating/ReviewCount是派生字段：永远等于该商品当前有效评价
//    （审核通过）的均值和数量，只能由评分聚合流程写入，
//    其他任何代码路径不得直接修改
type Product struct {
	ID             uint
	Name           string
	Description    string
	Category       Category
	Price          int64  // 价格（分）
	CompareAtPrice *int64 // 划线价（分），可空
	Stock          int
	SKU            string
	Unit           string // piece | kg | liter | bundle | box
	Image          string
	IsActive       bool
	IsFeatured     bool

	// 派生字段（由评价聚合维护）
	Rating      float64 // 0~5，保留1位小数
	ReviewCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category 商品品类
// 椰子制品专营店的固定品类集合
type Category string

const (
	CategoryCoconut Category = "coconut" // 鲜椰/椰青
	CategoryOil     Category = "oil"     // 椰子油
	CategoryCoir    Category = "coir"    // 椰棕纤维
	CategoryShell   Category = "shell"   // 椰壳制品
	CategoryCopra   Category = "copra"   // 椰干
	CategoryOther   Category = "other"
)

// IsValid 检查品类是否合法
func (c Category) IsValid() bool {
	switch c {
	case CategoryCoconut, CategoryOil, CategoryCoir, CategoryShell, CategoryCopra, CategoryOther:
		return true
	default:
		return false
	}
}

// NewProduct 创建新商品（工厂方法）
// 新商品评分为0、评价数为0，默认上架
func NewProduct(name, description string, category Category, price int64, stock int, sku, unit string) *Product {
	now := time.Now()
	return &Product{
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		Stock:       stock,
		SKU:         sku,
		Unit:        unit,
		IsActive:    true,
		Rating:      0,
		ReviewCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyRating 写入聚合后的评分
// 仅供评分聚合流程调用
func (p *Product) ApplyRating(rating float64, reviewCount int) {
	p.Rating = rating
	p.ReviewCount = reviewCount
	p.UpdatedAt = time.Now()
}

// Deactivate 下架商品
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}
