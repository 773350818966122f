package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharma-scanner/internal/domain"
)

type SettingsRepo struct{ db *gorm.DB }

func NewSettingsRepo(db *gorm.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get 缺失时返回缺省值而不是报错（不落库，首次显式保存才写入）。
func (r *SettingsRepo) Get(ctx context.Context, userID uint) (*domain.Settings, error) {
	var s domain.Settings
	err := r.db.WithContext(ctx).First(&s, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Put 整条替换：主键冲突时覆盖全部字段，不做合并。
func (r *SettingsRepo) Put(ctx context.Context, s *domain.Settings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(s).Error
}

func (r *SettingsRepo) Delete(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Settings{}, "user_id = ?", userID).Error
}
