package service

import (
	"fmt"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/repository/interfaces"
)

// FaqService 处理FAQ内容业务逻辑
type FaqService struct {
	faqRepo interfaces.FaqRepository
}

// NewFaqService 创建一个新的 FaqService 实例
func NewFaqService(faqRepo interfaces.FaqRepository) *FaqService {
	return &FaqService{faqRepo: faqRepo}
}

// validateBlocks 校验内容块：类型必须合法且携带对应字段
func validateBlocks(blocks []*model.FaqBlock) error {
	if len(blocks) == 0 {
		return errors.New(errors.ErrValidation, "at least one block is required")
	}
	for i, block := range blocks {
		switch block.Type {
		case model.FaqBlockText:
			if block.Text == "" {
				return errors.New(errors.ErrValidation, fmt.Sprintf("block %d: text is required", i))
			}
		case model.FaqBlockImage:
			if block.ImageURL == "" {
				return errors.New(errors.ErrValidation, fmt.Sprintf("block %d: image_url is required", i))
			}
		case model.FaqBlockLink:
			if block.LinkURL == "" {
				return errors.New(errors.ErrValidation, fmt.Sprintf("block %d: link_url is required", i))
			}
		default:
			return errors.New(errors.ErrValidation, fmt.Sprintf("block %d: unknown type %q", i, block.Type))
		}
	}
	return nil
}

// CreateEntry 创建FAQ条目
func (s *FaqService) CreateEntry(entry *model.FaqEntry) error {
	if entry.Title == "" {
		return errors.New(errors.ErrValidation, "title is required")
	}
	if err := validateBlocks(entry.Blocks); err != nil {
		return err
	}
	return s.faqRepo.Create(entry)
}

// UpdateEntry 更新FAQ条目
func (s *FaqService) UpdateEntry(entry *model.FaqEntry) error {
	existing, err := s.GetEntry(entry.ID)
	if err != nil {
		return err
	}
	if entry.Title == "" {
		entry.Title = existing.Title
	}
	if err := validateBlocks(entry.Blocks); err != nil {
		return err
	}
	return s.faqRepo.Update(entry)
}

// DeleteEntry 删除FAQ条目
func (s *FaqService) DeleteEntry(id int) error {
	return s.faqRepo.Delete(id)
}

// GetEntry 返回单个FAQ条目
func (s *FaqService) GetEntry(id int) (*model.FaqEntry, error) {
	entry, err := s.faqRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "faq entry not found")
	}
	return entry, nil
}

// ListEntries 返回FAQ条目列表。公开接口只返回可见条目，
// 管理接口返回全部。
func (s *FaqService) ListEntries(includeHidden bool) ([]*model.FaqEntry, error) {
	return s.faqRepo.FindAll(!includeHidden)
}

// MoveEntry 上移或下移FAQ条目（与相邻条目交换位置）
func (s *FaqService) MoveEntry(id int, up bool) error {
	if _, err := s.GetEntry(id); err != nil {
		return err
	}
	return s.faqRepo.SwapPositions(id, up)
}
