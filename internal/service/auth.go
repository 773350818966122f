package service

import (
	"context"
	"fmt"
	"strings"

	"pharma-scanner/internal/core/auth"
	"pharma-scanner/internal/domain"
	"pharma-scanner/pkg/utils"
)

// AuthService 负责注册/登录/资料更新的领域规则。
// 口令摘要在这一层之上完成（utils.HashPassword），仓储只存不透明串。
type AuthService struct {
	users    domain.UserRepository
	settings domain.SettingsRepository
	jwter    *auth.JWTer
}

func NewAuthService(users domain.UserRepository, settings domain.SettingsRepository, jwter *auth.JWTer) *AuthService {
	return &AuthService{users: users, settings: settings, jwter: jwter}
}

type SignupInput struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// Signup 校验输入、建账号、写入缺省设置，返回用户和 JWT。
// 唯一索引冲突原样上抛 ErrDuplicateEmail / ErrDuplicateUsername。
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	switch {
	case !utils.ValidUsername(username):
		return nil, "", fmt.Errorf("%w: username too short", ErrInvalidInput)
	case !utils.ValidEmail(email):
		return nil, "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	case !utils.ValidPassword(in.Password):
		return nil, "", fmt.Errorf("%w: password too short", ErrInvalidInput)
	case in.Password != in.PasswordConfirm:
		return nil, "", fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}

	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: utils.HashPassword(in.Password),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	// 注册即写入缺省设置行
	if err := s.settings.Put(ctx, domain.DefaultSettings(u.ID)); err != nil {
		return nil, "", err
	}

	tok, err := s.jwter.Issue(u.ID, "user")
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Login 按归一化后的邮箱找用户并比对摘要。
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.ValidEmail(email) || password == "" {
		return nil, "", fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.jwter.Issue(u.ID, "user")
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// UpdateProfile 只动 upd 里列出的字段。
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, upd domain.UserUpdate) (*domain.User, error) {
	if upd.Username != nil {
		trimmed := strings.TrimSpace(*upd.Username)
		if !utils.ValidUsername(trimmed) {
			return nil, fmt.Errorf("%w: username too short", ErrInvalidInput)
		}
		upd.Username = &trimmed
	}
	if err := s.users.Update(ctx, userID, upd); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
