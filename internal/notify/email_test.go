package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/repo"
)

type sentMail struct{ to, subject, body string }

type fakeMailer struct{ sent []sentMail }

func (f *fakeMailer) Send(to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

func newNotifierFixture(t *testing.T) (*ExpiryNotifier, *fakeMailer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Product{}, &domain.Settings{}))
	m := &fakeMailer{}
	n := NewExpiryNotifier(repo.NewUserRepo(db), repo.NewProductRepo(db), repo.NewSettingsRepo(db), m, zap.NewNop())
	return n, m, db
}

func TestExpiryNotifier_RunOnce(t *testing.T) {
	n, m, db := newNotifierFixture(t)
	ctx := context.Background()
	users := repo.NewUserRepo(db)
	products := repo.NewProductRepo(db)
	settings := repo.NewSettingsRepo(db)

	// alice 开了通知且有临期商品
	alice := &domain.User{Username: "alice", Email: "a@b.fr", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, settings.Put(ctx, &domain.Settings{UserID: alice.ID, Language: "fr", Theme: "auto", Notifications: true}))
	soon := time.Now().Add(5 * 24 * time.Hour)
	far := time.Now().Add(90 * 24 * time.Hour)
	require.NoError(t, products.Create(ctx, &domain.Product{UserID: alice.ID, Name: "Doliprane", Category: domain.CategoryPainkiller, Quantity: 1, ExpiryDate: &soon}))
	require.NoError(t, products.Create(ctx, &domain.Product{UserID: alice.ID, Name: "Vitamine C", Category: domain.CategoryVitamin, Quantity: 1, ExpiryDate: &far}))

	// bob 有临期商品但没开通知
	bob := &domain.User{Username: "bob", Email: "b@b.fr", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, bob))
	require.NoError(t, products.Create(ctx, &domain.Product{UserID: bob.ID, Name: "Aspirine", Category: domain.CategoryPainkiller, Quantity: 1, ExpiryDate: &soon}))

	n.RunOnce(ctx)

	require.Len(t, m.sent, 1)
	assert.Equal(t, "a@b.fr", m.sent[0].to)
	assert.Contains(t, m.sent[0].body, "Doliprane")
	assert.NotContains(t, m.sent[0].body, "Vitamine C") // 90 天后的不算临期
}

func TestExpiryNotifier_NoExpiringNoMail(t *testing.T) {
	n, m, db := newNotifierFixture(t)
	ctx := context.Background()
	users := repo.NewUserRepo(db)
	settings := repo.NewSettingsRepo(db)

	u := &domain.User{Username: "alice", Email: "a@b.fr", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, settings.Put(ctx, &domain.Settings{UserID: u.ID, Language: "fr", Theme: "auto", Notifications: true}))

	n.RunOnce(ctx)
	assert.Empty(t, m.sent)
}

func TestBuildDigest_Languages(t *testing.T) {
	subjectFr, bodyFr := buildDigest("alice", nil, "fr")
	assert.Contains(t, subjectFr, "produit")
	assert.Contains(t, bodyFr, "Bonjour alice")

	subjectEn, bodyEn := buildDigest("alice", nil, "en")
	assert.Contains(t, subjectEn, "expiring soon")
	assert.Contains(t, bodyEn, "Hello alice")
}
