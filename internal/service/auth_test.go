package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharma-scanner/internal/core/auth"
	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/repo"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "pharma-scanner", TTL: time.Hour}
	return NewAuthService(repo.NewUserRepo(db), repo.NewSettingsRepo(db), jwter)
}

func validSignup() SignupInput {
	return SignupInput{Username: "alice", Email: "Alice@B.fr", Password: "secret1", PasswordConfirm: "secret1"}
}

func TestAuth_SignupNormalizesAndSeedsSettings(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	u, tok, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Equal(t, "a@b.fr", u.Email) // 邮箱归一化为小写
	assert.NotZero(t, u.ID)
	assert.Len(t, u.PasswordHash, 64) // sha256 十六进制

	// 注册时写入缺省设置
	s, err := svc.settings.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "fr", s.Language)
}

func TestAuth_SignupValidation(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*SignupInput)
	}{
		{"short username", func(in *SignupInput) { in.Username = "ab" }},
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }},
		{"short password", func(in *SignupInput) { in.Password = "abc"; in.PasswordConfirm = "abc" }},
		{"mismatched confirm", func(in *SignupInput) { in.PasswordConfirm = "other123" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSignup()
			tc.mutate(&in)
			_, _, err := svc.Signup(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuth_SignupDuplicateEmail(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	in := validSignup()
	in.Username = "alice2"
	_, _, err = svc.Signup(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuth_Login(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	created, _, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	// 登录邮箱同样归一化
	u, tok, err := svc.Login(ctx, "  ALICE@b.fr ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.NotEmpty(t, tok)

	_, _, err = svc.Login(ctx, "a@b.fr", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@b.fr", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_UpdateProfile(t *testing.T) {
	svc := newAuthFixture(t)
	ctx := context.Background()

	created, _, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	name := "alice-renamed"
	photo := "data:image/png;base64,yy"
	u, err := svc.UpdateProfile(ctx, created.ID, domain.UserUpdate{Username: &name, Photo: &photo})
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", u.Username)
	assert.Equal(t, photo, u.Photo)
	assert.Equal(t, "a@b.fr", u.Email)

	short := "ab"
	_, err = svc.UpdateProfile(ctx, created.ID, domain.UserUpdate{Username: &short})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
