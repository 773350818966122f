package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Product{}, &domain.Settings{}))
	return db
}

func newBackupFixture(t *testing.T) (*BackupService, *gorm.DB, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	users := repo.NewUserRepo(db)
	u := &domain.User{Username: "alice", Email: "a@b.fr", PasswordHash: "abc", Photo: "data:image/png;base64,xx"}
	require.NoError(t, users.Create(context.Background(), u))
	svc := NewBackupService(db, users, repo.NewProductRepo(db), repo.NewSettingsRepo(db), nil)
	return svc, db, u
}

func TestBackup_ExportImportRoundtrip(t *testing.T) {
	svc, db, u := newBackupFixture(t)
	ctx := context.Background()
	products := repo.NewProductRepo(db)
	settings := repo.NewSettingsRepo(db)

	expiry := time.Now().Add(20 * 24 * time.Hour).Truncate(time.Second)
	require.NoError(t, products.Create(ctx, &domain.Product{
		UserID: u.ID, Name: "Doliprane", Barcode: "340093", Price: 2.5,
		Category: domain.CategoryPainkiller, Quantity: 3, Favorite: true, ExpiryDate: &expiry,
	}))
	require.NoError(t, products.Create(ctx, &domain.Product{
		UserID: u.ID, Name: "Vitamine C", Category: domain.CategoryVitamin, Quantity: 1,
	}))
	require.NoError(t, settings.Put(ctx, &domain.Settings{UserID: u.ID, Language: "en", Theme: "dark", Notifications: true}))

	env, err := svc.Export(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExportVersion, env.Version)
	assert.Equal(t, "alice", env.User.Username)
	assert.Len(t, env.Products, 2)
	require.NotNil(t, env.Settings)
	assert.Equal(t, "dark", env.Settings.Theme)

	// 序列化一轮，模拟文件落盘再读回
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	var restored domain.ExportEnvelope
	require.NoError(t, json.Unmarshal(raw, &restored))

	// 导入到另一个账号
	bob := &domain.User{Username: "bob", Email: "b@b.fr", PasswordHash: "abc"}
	require.NoError(t, repo.NewUserRepo(db).Create(ctx, bob))

	res, err := svc.Import(ctx, bob.ID, &restored)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ProductsImported)
	assert.True(t, res.SettingsImported)

	got, err := products.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	origIDs := map[uint]bool{env.Products[0].ID: true, env.Products[1].ID: true}
	for _, p := range got {
		assert.Equal(t, bob.ID, p.UserID)
		assert.False(t, origIDs[p.ID], "导入商品应拿到新 id")
	}
	byName := map[string]domain.Product{}
	for _, p := range got {
		byName[p.Name] = p
	}
	dol := byName["Doliprane"]
	assert.Equal(t, "340093", dol.Barcode)
	assert.Equal(t, 2.5, dol.Price)
	assert.Equal(t, 3, dol.Quantity)
	assert.True(t, dol.Favorite)
	require.NotNil(t, dol.ExpiryDate)
	assert.True(t, dol.ExpiryDate.Equal(expiry))
	// createdAt 还原自导出文件
	assert.True(t, dol.CreatedAt.Equal(env.Products[0].CreatedAt) || dol.CreatedAt.Equal(env.Products[1].CreatedAt))

	bobSettings, err := settings.Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "en", bobSettings.Language)
	assert.True(t, bobSettings.Notifications)
}

func TestBackup_ImportEmptyProductsWithSettings(t *testing.T) {
	svc, db, u := newBackupFixture(t)
	ctx := context.Background()

	env := &domain.ExportEnvelope{
		Version:  domain.ExportVersion,
		Products: []domain.Product{}, // 合法：空数组导入 0 件
		Settings: &domain.Settings{Language: "en", Theme: "light"},
	}
	res, err := svc.Import(ctx, u.ID, env)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ProductsImported)
	assert.True(t, res.SettingsImported)

	s, err := repo.NewSettingsRepo(db).Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "en", s.Language)
}

func TestBackup_ImportRejectsEmptyEnvelope(t *testing.T) {
	svc, _, u := newBackupFixture(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, u.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidImportFormat)

	// products 缺失（nil）且 settings 缺失：不是有效备份
	_, err = svc.Import(ctx, u.ID, &domain.ExportEnvelope{Version: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidImportFormat)
}

func TestBackup_Clear(t *testing.T) {
	svc, db, u := newBackupFixture(t)
	ctx := context.Background()
	products := repo.NewProductRepo(db)
	settings := repo.NewSettingsRepo(db)

	require.NoError(t, products.Create(ctx, &domain.Product{UserID: u.ID, Name: "p1", Category: domain.CategoryOther, Quantity: 1}))
	require.NoError(t, settings.Put(ctx, &domain.Settings{UserID: u.ID, Language: "en", Theme: "dark"}))

	require.NoError(t, svc.Clear(ctx, u.ID))

	ps, err := products.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ps)

	s, err := settings.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "fr", s.Language) // 回到缺省值

	// 再清一次也不报错
	require.NoError(t, svc.Clear(ctx, u.ID))
}

func TestBackup_ClearAndDeleteUser(t *testing.T) {
	svc, db, u := newBackupFixture(t)
	ctx := context.Background()
	users := repo.NewUserRepo(db)
	products := repo.NewProductRepo(db)
	settings := repo.NewSettingsRepo(db)

	require.NoError(t, products.Create(ctx, &domain.Product{UserID: u.ID, Name: "p1", Category: domain.CategoryOther, Quantity: 1}))
	require.NoError(t, settings.Put(ctx, &domain.Settings{UserID: u.ID, Language: "en", Theme: "dark"}))

	require.NoError(t, svc.ClearAndDeleteUser(ctx, u.ID))

	// 数据和账号一起消失
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ps, err := products.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ps)

	var count int64
	require.NoError(t, db.Model(&domain.Settings{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Zero(t, count)
}
