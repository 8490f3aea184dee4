package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appproduct "github.com/xiebiao/cocomart/internal/application/product"
	"github.com/xiebiao/cocomart/internal/interface/http/dto"
	"github.com/xiebiao/cocomart/internal/interface/http/middleware"
	"github.com/xiebiao/cocomart/pkg/response"
)

// ProductHandler 商品HTTP处理器
type ProductHandler struct {
	publishUseCase *appproduct.PublishProductUseCase
	updateUseCase  *appproduct.UpdateProductUseCase
	listUseCase    *appproduct.ListProductsUseCase
	getUseCase     *appproduct.GetProductUseCase
}

// NewProductHandler 创建商品处理器
func NewProductHandler(
	publishUseCase *appproduct.PublishProductUseCase,
	updateUseCase *appproduct.UpdateProductUseCase,
	listUseCase *appproduct.ListProductsUseCase,
	getUseCase *appproduct.GetProductUseCase,
) *ProductHandler {
	return &ProductHandler{
		publishUseCase: publishUseCase,
		updateUseCase:  updateUseCase,
		listUseCase:    listUseCase,
		getUseCase:     getUseCase,
	}
}

// PublishProduct 发布商品
// @Summary      发布商品
// @Description  管理员发布新商品，SKU不可重复
// @Tags         商品模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse} "发布成功"
// @Failure      200 {object} response.Response "SKU已存在/参数错误"
// @Router       /admin/products [post]
func (h *ProductHandler) PublishProduct(c *gin.Context) {
	var req dto.PublishProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = "piece"
	}

	p, err := h.publishUseCase.Execute(c.Request.Context(), appproduct.PublishProductRequest{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Stock:          req.Stock,
		SKU:            req.SKU,
		Unit:           unit,
		Image:          req.Image,
		IsFeatured:     req.IsFeatured,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToProductResponse(p))
}

// UpdateProduct 更新商品
// @Summary      更新商品
// @Description  管理员更新商品信息（评分字段由评价聚合维护，不可直接修改）
// @Tags         商品模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdateProductRequest true "更新字段"
// @Success      200 {object} response.Response{data=dto.ProductResponse} "更新成功"
// @Failure      200 {object} response.Response "商品不存在"
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	p, err := h.updateUseCase.Execute(c.Request.Context(), appproduct.UpdateProductRequest{
		ProductID:      productID,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Stock:          req.Stock,
		Unit:           req.Unit,
		Image:          req.Image,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToProductResponse(p))
}

// ListProducts 商品列表
// @Summary      商品列表
// @Description  分页查询商品，支持关键词搜索和品类过滤；公开接口只返回上架商品
// @Tags         商品模块
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页大小" default(20)
// @Param        keyword query string false "搜索关键词（名称/描述）"
// @Param        category query string false "品类" Enums(coconut, oil, coir, shell, copra, other)
// @Success      200 {object} response.Response{data=response.PageData} "查询成功"
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query dto.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 管理员可以看到未上架商品
	onlyOn := !middleware.IsAdmin(c)

	products, total, err := h.listUseCase.Execute(c.Request.Context(), appproduct.ListProductsRequest{
		Page:     query.Page,
		PageSize: query.PageSize,
		Keyword:  query.Keyword,
		Category: query.Category,
		OnlyOn:   onlyOn,
	})
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.SuccessWithPage(c, dto.ToProductResponses(products), total, query.Page, query.PageSize)
}

// GetProduct 商品详情
// @Summary      商品详情
// @Description  查询商品详情，携带实时维护的平均评分和有效评价数
// @Tags         商品模块
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ProductResponse} "查询成功"
// @Failure      200 {object} response.Response "商品不存在"
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.getUseCase.Execute(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, mapDomainErr(err))
		return
	}

	response.Success(c, dto.ToProductResponse(p))
}

// parseIDParam 解析路径中的数字ID参数
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "无效的"+name+"参数")
		return 0, false
	}
	return uint(id), true
}
