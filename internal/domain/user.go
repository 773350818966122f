package domain

import (
	"context"
	"time"
)

// User 表示一个账号。
//
// ID 由存储层自增分配；Email 和 Username 各自带唯一索引。
// PasswordHash 是上游口令摘要函数产出的十六进制串，本层只当不透明字符串保存。
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"` // 已小写归一化
	PasswordHash string    `gorm:"type:varchar(64);not null" json:"-"`
	Photo        string    `gorm:"type:text" json:"photo,omitempty"` // data-URI，可为空
	CreatedAt    time.Time `json:"createdAt"`
}

// UserUpdate 列出一次资料更新允许改动的字段；nil 表示不改。
type UserUpdate struct {
	Username *string
	Photo    *string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// GetByID / GetByEmail 查不到时返回 (nil, nil)，不报错。
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Update 读-改-写；目标不存在返回 ErrNotFound。
	Update(ctx context.Context, id uint, upd UserUpdate) error
	List(ctx context.Context, offset, limit int, q string) ([]User, int64, error)
	Delete(ctx context.Context, id uint) error
}
