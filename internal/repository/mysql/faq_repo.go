package mysql

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// faqRepository 实现了 FaqRepository 接口。
// 内容块序列化为 JSON 存在 blocks 列中。
type faqRepository struct {
	db *sql.DB
}

// NewFaqRepository 创建一个新的 faqRepository 实例
func NewFaqRepository(db *sql.DB) *faqRepository {
	return &faqRepository{db}
}

// Create 创建FAQ条目，位置排到末尾
func (r *faqRepository) Create(entry *model.FaqEntry) error {
	blocks, err := json.Marshal(entry.Blocks)
	if err != nil {
		return fmt.Errorf("序列化内容块失败: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxPos sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(position) FROM faq_entries`).Scan(&maxPos); err != nil {
		return err
	}
	entry.Position = int(maxPos.Int64) + 1

	result, err := tx.Exec(`INSERT INTO faq_entries (title, position, visible, blocks) VALUES (?, ?, ?, ?)`,
		entry.Title, entry.Position, entry.Visible, blocks)
	if err != nil {
		util.Logger.Error("创建FAQ条目失败", zap.Error(err))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = int(id)

	if err := tx.Commit(); err != nil {
		return err
	}
	util.Logger.Info("FAQ条目创建成功", zap.Int("faq_id", entry.ID))
	return nil
}

// Update 更新FAQ条目（标题、可见性、内容块；位置由交换接口维护）
func (r *faqRepository) Update(entry *model.FaqEntry) error {
	blocks, err := json.Marshal(entry.Blocks)
	if err != nil {
		return fmt.Errorf("序列化内容块失败: %w", err)
	}
	_, err = r.db.Exec(`
		UPDATE faq_entries SET title = ?, visible = ?, blocks = ?, updated_at = NOW()
		WHERE id = ?`,
		entry.Title, entry.Visible, blocks, entry.ID)
	return err
}

// Delete 删除FAQ条目并压缩后续位置，保持位置连续
func (r *faqRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRow(`SELECT position FROM faq_entries WHERE id = ?`, id).Scan(&position); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	if _, err := tx.Exec(`DELETE FROM faq_entries WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE faq_entries SET position = position - 1 WHERE position > ?`, position); err != nil {
		return err
	}
	return tx.Commit()
}

func scanFaqEntry(row interface{ Scan(...interface{}) error }) (*model.FaqEntry, error) {
	var entry model.FaqEntry
	var blocks []byte
	err := row.Scan(&entry.ID, &entry.Title, &entry.Position, &entry.Visible, &blocks,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocks, &entry.Blocks); err != nil {
		return nil, fmt.Errorf("解析内容块失败: %w", err)
	}
	return &entry, nil
}

// FindByID 通过ID查找FAQ条目，未找到时返回 (nil, nil)
func (r *faqRepository) FindByID(id int) (*model.FaqEntry, error) {
	entry, err := scanFaqEntry(r.db.QueryRow(`
		SELECT id, title, position, visible, blocks, created_at, updated_at
		FROM faq_entries WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// FindAll 按位置返回FAQ条目，visibleOnly 时只返回可见条目
func (r *faqRepository) FindAll(visibleOnly bool) ([]*model.FaqEntry, error) {
	query := `SELECT id, title, position, visible, blocks, created_at, updated_at FROM faq_entries`
	if visibleOnly {
		query += ` WHERE visible = true`
	}
	query += ` ORDER BY position`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.FaqEntry
	for rows.Next() {
		entry, err := scanFaqEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SwapPositions 与相邻条目交换位置值实现排序。
// up 为 true 时与前一个条目交换，否则与后一个交换；
// 已在边界时不做任何事。
func (r *faqRepository) SwapPositions(id int, up bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var position int
	if err := tx.QueryRow(`SELECT position FROM faq_entries WHERE id = ? FOR UPDATE`, id).Scan(&position); err != nil {
		return err
	}

	var neighborID, neighborPos int
	var query string
	if up {
		query = `SELECT id, position FROM faq_entries WHERE position < ? ORDER BY position DESC LIMIT 1 FOR UPDATE`
	} else {
		query = `SELECT id, position FROM faq_entries WHERE position > ? ORDER BY position LIMIT 1 FOR UPDATE`
	}
	err = tx.QueryRow(query, position).Scan(&neighborID, &neighborPos)
	if err == sql.ErrNoRows {
		// 已经在第一个或最后一个位置
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE faq_entries SET position = ? WHERE id = ?`, neighborPos, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE faq_entries SET position = ? WHERE id = ?`, position, neighborID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	util.Logger.Info("FAQ条目位置已交换",
		zap.Int("faq_id", id),
		zap.Int("neighbor_id", neighborID))
	return nil
}
