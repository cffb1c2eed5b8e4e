package faq

import (
	"strconv"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/service"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FaqHandler 处理FAQ相关的HTTP请求
type FaqHandler struct {
	faqService *service.FaqService
}

func NewFaqHandler(faqService *service.FaqService) *FaqHandler {
	return &FaqHandler{faqService}
}

// ListEntries 返回可见的FAQ条目，按位置排序（公开）
func (h *FaqHandler) ListEntries(c *gin.Context) {
	entries, err := h.faqService.ListEntries(false)
	if err != nil {
		util.Logger.Error("获取FAQ列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取FAQ列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"entries": entries,
	}, "")
}

// ListAllEntries 返回全部FAQ条目，含隐藏项（管理员）
func (h *FaqHandler) ListAllEntries(c *gin.Context) {
	entries, err := h.faqService.ListEntries(true)
	if err != nil {
		util.Logger.Error("获取FAQ列表失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取FAQ列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"entries": entries,
	}, "")
}

type faqRequest struct {
	Title   string            `json:"title" binding:"required"`
	Visible bool              `json:"visible"`
	Blocks  []*model.FaqBlock `json:"blocks"`
}

// CreateEntry 创建FAQ条目，追加到列表末尾（管理员）
func (h *FaqHandler) CreateEntry(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	entry := &model.FaqEntry{
		Title:   req.Title,
		Visible: req.Visible,
		Blocks:  req.Blocks,
	}

	if err := h.faqService.CreateEntry(entry); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"entry": entry,
	}, "FAQ条目创建成功")
}

// UpdateEntry 更新FAQ条目（管理员）
func (h *FaqHandler) UpdateEntry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的条目ID", err))
		return
	}

	entry, err := h.faqService.GetEntry(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	entry.Title = req.Title
	entry.Visible = req.Visible
	entry.Blocks = req.Blocks

	if err := h.faqService.UpdateEntry(entry); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"entry": entry,
	}, "FAQ条目更新成功")
}

// DeleteEntry 删除FAQ条目并压缩位置（管理员）
func (h *FaqHandler) DeleteEntry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的条目ID", err))
		return
	}

	if err := h.faqService.DeleteEntry(id); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "FAQ条目删除成功")
}

// MoveEntry 上移或下移FAQ条目，越界时不做任何改变（管理员）
func (h *FaqHandler) MoveEntry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的条目ID", err))
		return
	}

	var req struct {
		Direction string `json:"direction" binding:"required,oneof=up down"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的移动方向", err))
		return
	}

	if err := h.faqService.MoveEntry(id, req.Direction == "up"); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "FAQ条目已移动")
}
