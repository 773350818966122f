package service

import (
	"context"
	"fmt"

	"pharma-scanner/internal/domain"
)

// SettingsService 校验取值后整条落库。
type SettingsService struct {
	settings domain.SettingsRepository
}

func NewSettingsService(settings domain.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context, userID uint) (*domain.Settings, error) {
	return s.settings.Get(ctx, userID)
}

type SettingsInput struct {
	Language      string `json:"language" binding:"required"`
	Theme         string `json:"theme" binding:"required"`
	Notifications bool   `json:"notifications"`
}

// Put 整条替换；language/theme 必须是已知取值。
func (s *SettingsService) Put(ctx context.Context, userID uint, in SettingsInput) (*domain.Settings, error) {
	if !domain.ValidLanguage(in.Language) {
		return nil, fmt.Errorf("%w: unknown language %q", ErrInvalidInput, in.Language)
	}
	if !domain.ValidTheme(in.Theme) {
		return nil, fmt.Errorf("%w: unknown theme %q", ErrInvalidInput, in.Theme)
	}
	st := &domain.Settings{
		UserID:        userID,
		Language:      in.Language,
		Theme:         in.Theme,
		Notifications: in.Notifications,
	}
	if err := s.settings.Put(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
