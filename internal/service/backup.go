package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/repo"
)

// BackupService 负责全量导出/导入/清空。
// 导入和清空各自跑在一个横跨 products 和 settings 两张表的事务里：
// 要么全部提交，要么全不提交（中途崩溃或配额错误不会留半截数据）。
type BackupService struct {
	db       *gorm.DB
	users    domain.UserRepository
	products domain.ProductRepository
	settings domain.SettingsRepository
	stats    StatsInvalidator // 可为 nil
}

func NewBackupService(db *gorm.DB, users domain.UserRepository, products domain.ProductRepository, settings domain.SettingsRepository, stats StatsInvalidator) *BackupService {
	return &BackupService{db: db, users: users, products: products, settings: settings, stats: stats}
}

// Export 汇出当前状态的快照，只读不写。
func (s *BackupService) Export(ctx context.Context, userID uint) (*domain.ExportEnvelope, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	products, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.ExportEnvelope{
		Version:    domain.ExportVersion,
		ExportDate: time.Now(),
		User: domain.ExportUser{
			Username:  u.Username,
			Email:     u.Email,
			Photo:     u.Photo,
			CreatedAt: u.CreatedAt,
		},
		Products: products,
		Settings: settings,
	}, nil
}

// Import 校验信封后整体导入。
// 每件商品丢弃原 id（重新分配）、userId 改绑到导入者、
// createdAt 有则保留没有则取当前时间、updatedAt 一律刷新。
// settings 整条替换，不合并。
func (s *BackupService) Import(ctx context.Context, userID uint, env *domain.ExportEnvelope) (*domain.ImportResult, error) {
	if env == nil || (env.Products == nil && env.Settings == nil) {
		return nil, domain.ErrInvalidImportFormat
	}

	result := &domain.ImportResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repo.NewProductRepo(tx)
		for _, p := range env.Products {
			p.ID = 0
			p.UserID = userID
			// CreatedAt 为零值时由 Create 补当前时间；UpdatedAt 总是刷新
			p.UpdatedAt = time.Time{}
			if err := products.Create(ctx, &p); err != nil {
				return err
			}
			result.ProductsImported++
		}
		if env.Settings != nil {
			st := *env.Settings
			st.UserID = userID
			if err := repo.NewSettingsRepo(tx).Put(ctx, &st); err != nil {
				return err
			}
			result.SettingsImported = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.InvalidateUser(ctx, userID)
	}
	return result, nil
}

// Clear 在一个事务里删掉该用户的全部商品和设置行。
// 存储层没有级联删除，两个记录集都要显式清。
func (s *BackupService) Clear(ctx context.Context, userID uint) error {
	return s.purge(ctx, userID, false)
}

// ClearAndDeleteUser 封禁用：数据和账号在同一个事务里一起删，
// 不会留下没数据但还能登录的半截账号。
func (s *BackupService) ClearAndDeleteUser(ctx context.Context, userID uint) error {
	return s.purge(ctx, userID, true)
}

func (s *BackupService) purge(ctx context.Context, userID uint, dropAccount bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.NewProductRepo(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := repo.NewSettingsRepo(tx).Delete(ctx, userID); err != nil {
			return err
		}
		if dropAccount {
			return repo.NewUserRepo(tx).Delete(ctx, userID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.stats != nil {
		s.stats.InvalidateUser(ctx, userID)
	}
	return nil
}
