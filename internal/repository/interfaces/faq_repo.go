package interfaces

import "github.com/Delerious28/Andrew-webshop2-sub000/internal/model"

// FaqRepository 接口定义了FAQ内容仓库应该实现的方法。
// Position 保持连续，SwapPositions 与相邻条目交换顺序值。
type FaqRepository interface {
	Create(entry *model.FaqEntry) error
	Update(entry *model.FaqEntry) error
	Delete(id int) error
	FindByID(id int) (*model.FaqEntry, error)
	FindAll(visibleOnly bool) ([]*model.FaqEntry, error)
	SwapPositions(id int, up bool) error
}
