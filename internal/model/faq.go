package model

import "time"

// FAQ 内容块类型
const (
	FaqBlockText  = "text"
	FaqBlockImage = "image"
	FaqBlockLink  = "link"
)

// FaqBlock FAQ 条目中的一个内容块，按类型携带不同字段
type FaqBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	LinkURL  string `json:"link_url,omitempty"`
	Label    string `json:"label,omitempty"`
}

// FaqEntry FAQ 条目。Blocks 以 JSON 数组形式存储，
// Position 是连续整数，相邻条目交换 Position 实现排序。
type FaqEntry struct {
	ID        int         `json:"id"`
	Title     string      `json:"title"`
	Position  int         `json:"position"`
	Visible   bool        `json:"visible"`
	Blocks    []*FaqBlock `json:"blocks"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
