package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"pharma-scanner/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now()
	// 导入旧备份时 CreatedAt 已填好，保留原值
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepo) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update 读-改-写，只覆盖设置过的字段，并刷新 UpdatedAt。
func (r *ProductRepo) Update(ctx context.Context, id uint, upd domain.ProductUpdate) error {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if upd.Barcode != nil {
		p.Barcode = *upd.Barcode
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.ExpiryDate != nil {
		p.ExpiryDate = upd.ExpiryDate
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	if upd.Favorite != nil {
		p.Favorite = *upd.Favorite
	}
	if upd.Photo != nil {
		p.Photo = *upd.Photo
	}
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(&p).Error
}

// ToggleFavorite 读当前值、取反、落库。
// 注意：两次并发切换可能读到同一个旧值（lost update）；
// 单用户单标签页的使用方式下不做行锁。
func (r *ProductRepo) ToggleFavorite(ctx context.Context, id uint) (bool, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, domain.ErrNotFound
	}
	next := !p.Favorite
	if err := r.Update(ctx, id, domain.ProductUpdate{Favorite: &next}); err != nil {
		return false, err
	}
	return next, nil
}

// Delete 幂等：id 不存在也返回 nil，与底层存储语义一致。
func (r *ProductRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Product{}, id).Error
}

// GetByBarcode 线性扫描该用户的全部商品，返回首个匹配。
// O(n)，n 是单个用户的商品数（几十到几百），不值得加索引查询。
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string, userID uint) (*domain.Product, error) {
	products, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Barcode == barcode {
			return &products[i], nil
		}
	}
	return nil, nil
}

// DeleteByUser 游标式批删该用户的全部商品（配合清空数据的事务使用）。
func (r *ProductRepo) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Product{}).Error
}
