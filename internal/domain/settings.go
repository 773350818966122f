package domain

import "context"

// Settings 每个用户至多一条（主键即用户 ID）。
type Settings struct {
	UserID        uint   `gorm:"primaryKey" json:"userId"`
	Language      string `gorm:"type:varchar(8);default:fr" json:"language"` // fr | en
	Theme         string `gorm:"type:varchar(8);default:auto" json:"theme"`  // light | dark | auto
	Notifications bool   `json:"notifications"`
}

// DefaultSettings 是读不到记录时返回的缺省值（不落库）。
func DefaultSettings(userID uint) *Settings {
	return &Settings{UserID: userID, Language: "fr", Theme: "auto", Notifications: false}
}

func ValidLanguage(l string) bool { return l == "fr" || l == "en" }

func ValidTheme(t string) bool { return t == "light" || t == "dark" || t == "auto" }

type SettingsRepository interface {
	// Get 永不因"记录缺失"报错：缺失时返回缺省值。
	Get(ctx context.Context, userID uint) (*Settings, error)
	// Put 整条替换（upsert），不做字段合并。
	Put(ctx context.Context, s *Settings) error
	Delete(ctx context.Context, userID uint) error
}
