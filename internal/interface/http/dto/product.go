package dto

import (
	"fmt"

	"github.com/xiebiao/cocomart/internal/domain/product"
)

// PublishProductRequest 发布商品请求（管理员）
type PublishProductRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=200" example:"海南椰青 9个装"`
	Description    string `json:"description" binding:"max=5000"`
	Category       string `json:"category" binding:"required,oneof=coconut oil coir shell copra other" example:"coconut"`
	Price          int64  `json:"price" binding:"required,gt=0" example:"5990"` // 单位：分
	CompareAtPrice *int64 `json:"compare_at_price,omitempty"`
	Stock          int    `json:"stock" binding:"gte=0" example:"100"`
	SKU            string `json:"sku" binding:"required,max=50" example:"COCO-GREEN-9"`
	Unit           string `json:"unit" binding:"omitempty,oneof=piece kg liter bundle box" example:"box"`
	Image          string `json:"image" binding:"omitempty,max=500"`
	IsFeatured     bool   `json:"is_featured"`
}

// UpdateProductRequest 更新商品请求（管理员）
// 指针字段缺省表示不修改
type UpdateProductRequest struct {
	Name           *string `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Description    *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	Category       *string `json:"category,omitempty" binding:"omitempty,oneof=coconut oil coir shell copra other"`
	Price          *int64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	CompareAtPrice *int64  `json:"compare_at_price,omitempty"`
	Stock          *int    `json:"stock,omitempty" binding:"omitempty,gte=0"`
	Unit           *string `json:"unit,omitempty" binding:"omitempty,oneof=piece kg liter bundle box"`
	Image          *string `json:"image,omitempty" binding:"omitempty,max=500"`
	IsActive       *bool   `json:"is_active,omitempty"`
	IsFeatured     *bool   `json:"is_featured,omitempty"`
}

// ListProductsQuery 商品列表查询参数
type ListProductsQuery struct {
	Page     int    `form:"page,default=1" binding:"omitempty,gte=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,gte=1,lte=100"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100"`
	Category string `form:"category" binding:"omitempty,oneof=coconut oil coir shell copra other"`
}

// ProductResponse 商品响应
type ProductResponse struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Price          int64   `json:"price"`      // 分
	PriceYuan      string  `json:"price_yuan"` // 元（展示用）
	CompareAtPrice *int64  `json:"compare_at_price,omitempty"`
	Stock          int     `json:"stock"`
	SKU            string  `json:"sku"`
	Unit           string  `json:"unit"`
	Image          string  `json:"image"`
	IsActive       bool    `json:"is_active"`
	IsFeatured     bool    `json:"is_featured"`
	Rating         float64 `json:"rating"`       // 0~5，1位小数
	ReviewCount    int     `json:"review_count"` // 有效评价数
	CreatedAt      string  `json:"created_at"`
}

// ToProductResponse 领域实体 → 响应DTO
func ToProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       string(p.Category),
		Price:          p.Price,
		PriceYuan:      FormatYuan(p.Price),
		CompareAtPrice: p.CompareAtPrice,
		Stock:          p.Stock,
		SKU:            p.SKU,
		Unit:           p.Unit,
		Image:          p.Image,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		Rating:         p.Rating,
		ReviewCount:    p.ReviewCount,
		CreatedAt:      p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ToProductResponses 批量转换
func ToProductResponses(products []*product.Product) []*ProductResponse {
	out := make([]*ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}

// FormatYuan 格式化价格（分→元）
func FormatYuan(fen int64) string {
	return fmt.Sprintf("%.2f", float64(fen)/100.0)
}
