package service

import (
	"testing"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFaqRepository 是 FaqRepository 接口的模拟实现
type MockFaqRepository struct {
	mock.Mock
}

func (m *MockFaqRepository) Create(entry *model.FaqEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockFaqRepository) Update(entry *model.FaqEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockFaqRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockFaqRepository) FindByID(id int) (*model.FaqEntry, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FaqEntry), args.Error(1)
}

func (m *MockFaqRepository) FindAll(visibleOnly bool) ([]*model.FaqEntry, error) {
	args := m.Called(visibleOnly)
	return args.Get(0).([]*model.FaqEntry), args.Error(1)
}

func (m *MockFaqRepository) SwapPositions(id int, up bool) error {
	args := m.Called(id, up)
	return args.Error(0)
}

// TestFaqCreateEntry 测试内容块校验
func TestFaqCreateEntry(t *testing.T) {
	mockRepo := new(MockFaqRepository)
	service := NewFaqService(mockRepo)

	mockRepo.On("Create", mock.AnythingOfType("*model.FaqEntry")).Return(nil)

	// 合法条目
	err := service.CreateEntry(&model.FaqEntry{
		Title: "Hoe werkt verzending?",
		Blocks: []*model.FaqBlock{
			{Type: model.FaqBlockText, Text: "Wij verzenden binnen 2 werkdagen."},
			{Type: model.FaqBlockImage, ImageURL: "/uploads/faq/shipping.png"},
			{Type: model.FaqBlockLink, LinkURL: "https://example.com/track", Label: "Track & Trace"},
		},
	})
	assert.NoError(t, err)

	// 缺少标题
	err = service.CreateEntry(&model.FaqEntry{
		Blocks: []*model.FaqBlock{{Type: model.FaqBlockText, Text: "tekst"}},
	})
	assert.Error(t, err)
	assert.Equal(t, errors.ErrValidation, err.(*errors.AppError).Code)

	// 空内容块列表
	err = service.CreateEntry(&model.FaqEntry{Title: "Leeg"})
	assert.Error(t, err)

	// 文本块缺少文本
	err = service.CreateEntry(&model.FaqEntry{
		Title:  "Kapot",
		Blocks: []*model.FaqBlock{{Type: model.FaqBlockText}},
	})
	assert.Error(t, err)

	// 未知块类型
	err = service.CreateEntry(&model.FaqEntry{
		Title:  "Kapot",
		Blocks: []*model.FaqBlock{{Type: "video"}},
	})
	assert.Error(t, err)
}

// TestFaqListEntries 测试可见性过滤
func TestFaqListEntries(t *testing.T) {
	mockRepo := new(MockFaqRepository)
	service := NewFaqService(mockRepo)

	visible := []*model.FaqEntry{{ID: 1, Visible: true}}
	all := []*model.FaqEntry{{ID: 1, Visible: true}, {ID: 2, Visible: false}}

	mockRepo.On("FindAll", true).Return(visible, nil)
	mockRepo.On("FindAll", false).Return(all, nil)

	// 公开列表只含可见条目
	entries, err := service.ListEntries(false)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	// 管理列表含隐藏条目
	entries, err = service.ListEntries(true)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}

// TestFaqMoveEntry 测试移动不存在的条目
func TestFaqMoveEntry(t *testing.T) {
	mockRepo := new(MockFaqRepository)
	service := NewFaqService(mockRepo)

	mockRepo.On("FindByID", 1).Return(&model.FaqEntry{ID: 1}, nil)
	mockRepo.On("FindByID", 99).Return(nil, nil)
	mockRepo.On("SwapPositions", 1, true).Return(nil)

	err := service.MoveEntry(1, true)
	assert.NoError(t, err)

	err = service.MoveEntry(99, true)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrResourceNotFound, err.(*errors.AppError).Code)
}
