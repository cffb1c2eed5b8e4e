package catalog

import (
	"fmt"
	"strconv"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/storage"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler 处理商品目录相关的HTTP请求
type CatalogHandler struct {
	catalogService *service.CatalogService
	storage        storage.Storage
}

func NewCatalogHandler(catalogService *service.CatalogService, storage storage.Storage) *CatalogHandler {
	return &CatalogHandler{catalogService, storage}
}

// ListProducts 返回分页商品列表，支持按分类筛选
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	category := c.Query("category")

	products, err := h.catalogService.ListProducts(page, pageSize, category)
	if err != nil {
		util.Logger.Error("获取商品列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取商品列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"products": products,
		"page":     page,
	}, "")
}

// GetProduct 返回单个商品详情
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品ID", err))
		return
	}

	product, err := h.catalogService.GetProduct(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"product": product,
	}, "")
}

type productRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required,min=1"`
	Category    string `json:"category" binding:"required"`
	Stock       int    `json:"stock" binding:"min=0"`
	Model3DURL  string `json:"model_3d_url"`
}

// CreateProduct 创建商品（管理员）
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品数据", err))
		return
	}

	product := &model.Product{
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Stock:       req.Stock,
		Model3DURL:  req.Model3DURL,
	}

	if err := h.catalogService.CreateProduct(product); err != nil {
		util.Logger.Error("创建商品失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"product": product,
	}, "商品创建成功")
}

// UpdateProduct 更新商品（管理员）
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品ID", err))
		return
	}

	product, err := h.catalogService.GetProduct(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品数据", err))
		return
	}

	product.Title = req.Title
	product.Description = req.Description
	product.PriceCents = req.PriceCents
	product.Category = req.Category
	product.Stock = req.Stock
	product.Model3DURL = req.Model3DURL

	if err := h.catalogService.UpdateProduct(product); err != nil {
		util.Logger.Error("更新商品失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"product": product,
	}, "商品更新成功")
}

// DeleteProduct 删除商品（管理员）
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品ID", err))
		return
	}

	if err := h.catalogService.DeleteProduct(id); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "商品删除成功")
}

// UploadProductImage 上传商品图片并追加到图片列表末尾（管理员）
func (h *CatalogHandler) UploadProductImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的商品ID", err))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		util.Logger.Error("获取上传文件失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("products/%d/%s", id, filename)

	imageURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传商品图片失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传商品图片失败", err))
		return
	}

	image, err := h.catalogService.AddProductImage(id, imageURL)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"image": image,
	}, "图片上传成功")
}

// DeleteProductImage 删除商品图片（管理员）
func (h *CatalogHandler) DeleteProductImage(c *gin.Context) {
	imageID, err := strconv.Atoi(c.Param("image_id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的图片ID", err))
		return
	}

	if err := h.catalogService.DeleteProductImage(imageID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "图片删除成功")
}
