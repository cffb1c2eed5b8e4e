package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/internal/model"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
)

// productRepository 实现了 ProductRepository 接口
type productRepository struct {
	db *sql.DB
}

// NewProductRepository 创建一个新的 productRepository 实例
func NewProductRepository(db *sql.DB) *productRepository {
	return &productRepository{db}
}

// Create 创建一个新商品
func (r *productRepository) Create(product *model.Product) error {
	query := `INSERT INTO products (title, description, price_cents, category, stock, hero_image_url, model3d_url)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query,
		product.Title, product.Description, product.PriceCents, product.Category,
		product.Stock, product.HeroImageURL, product.Model3DURL)
	if err != nil {
		util.Logger.Error("创建商品失败", zap.Error(err), zap.String("title", product.Title))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("获取新商品ID失败: %w", err)
	}
	product.ID = int(id)
	util.Logger.Info("商品创建成功", zap.Int("product_id", product.ID))
	return nil
}

// FindByID 通过ID查找商品（含图集），未找到时返回 (nil, nil)
func (r *productRepository) FindByID(id int) (*model.Product, error) {
	query := `SELECT id, title, description, price_cents, category, stock, hero_image_url, model3d_url, created_at, updated_at
              FROM products WHERE id = ?`
	var product model.Product
	err := r.db.QueryRow(query, id).Scan(
		&product.ID, &product.Title, &product.Description, &product.PriceCents,
		&product.Category, &product.Stock, &product.HeroImageURL, &product.Model3DURL,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	images, err := r.ListImages(product.ID)
	if err != nil {
		return nil, err
	}
	product.Images = images
	return &product, nil
}

// FindAll 返回分页的商品列表，category 为空时不过滤
func (r *productRepository) FindAll(page, pageSize int, category string) ([]*model.Product, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, title, description, price_cents, category, stock, hero_image_url, model3d_url, created_at, updated_at
              FROM products`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		var product model.Product
		err := rows.Scan(
			&product.ID, &product.Title, &product.Description, &product.PriceCents,
			&product.Category, &product.Stock, &product.HeroImageURL, &product.Model3DURL,
			&product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, &product)
	}
	return products, rows.Err()
}

// Update 更新商品信息
func (r *productRepository) Update(product *model.Product) error {
	_, err := r.db.Exec(`
		UPDATE products
		SET title = ?, description = ?, price_cents = ?, category = ?, stock = ?, hero_image_url = ?, model3d_url = ?, updated_at = ?
		WHERE id = ?`,
		product.Title, product.Description, product.PriceCents, product.Category,
		product.Stock, product.HeroImageURL, product.Model3DURL, time.Now(), product.ID)
	if err != nil {
		util.Logger.Error("更新商品失败", zap.Error(err), zap.Int("product_id", product.ID))
	}
	return err
}

// Delete 删除商品及其图集
func (r *productRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_images WHERE product_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM products WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	util.Logger.Info("商品删除成功", zap.Int("product_id", id))
	return nil
}

// Count 返回商品总数
func (r *productRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AddImage 向商品图集追加一张图片，位置排到末尾
func (r *productRepository) AddImage(image *model.ProductImage) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxPos sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(position) FROM product_images WHERE product_id = ?`,
		image.ProductID).Scan(&maxPos); err != nil {
		return err
	}
	image.Position = int(maxPos.Int64) + 1

	result, err := tx.Exec(`INSERT INTO product_images (product_id, image_url, position) VALUES (?, ?, ?)`,
		image.ProductID, image.ImageURL, image.Position)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	image.ID = int(id)
	return tx.Commit()
}

// ListImages 返回商品图集，按位置排序
func (r *productRepository) ListImages(productID int) ([]*model.ProductImage, error) {
	rows, err := r.db.Query(`
		SELECT id, product_id, image_url, position, created_at
		FROM product_images WHERE product_id = ? ORDER BY position`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*model.ProductImage
	for rows.Next() {
		var image model.ProductImage
		if err := rows.Scan(&image.ID, &image.ProductID, &image.ImageURL, &image.Position, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, &image)
	}
	return images, rows.Err()
}

// DeleteImage 删除一张图集图片
func (r *productRepository) DeleteImage(id int) error {
	_, err := r.db.Exec(`DELETE FROM product_images WHERE id = ?`, id)
	return err
}
