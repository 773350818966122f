package domain

import (
	"context"
	"time"
)

// Product 表示用户库存里的一件药品。
//
// UserID 是归属用户（外键不做存储层约束，由仓储/服务层校验）。
// Barcode 不唯一：同一条码允许多条记录。
// 不变量：UpdatedAt ≥ CreatedAt，任何修改都要刷新 UpdatedAt。
type Product struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"userId"`
	Barcode     string     `gorm:"type:varchar(64);index" json:"barcode,omitempty"`
	Name        string     `gorm:"type:varchar(191);not null" json:"name"`
	Price       float64    `gorm:"not null" json:"price"` // 非负
	Category    string     `gorm:"type:varchar(32);index" json:"category"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	Quantity    int        `gorm:"default:1" json:"quantity"` // 非负，缺省 1
	Favorite    bool       `gorm:"index" json:"favorite"`
	Photo       string     `gorm:"type:text" json:"photo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// 固定的分类标签集合（与导出文件格式一致）。
const (
	CategoryPainkiller     = "painkiller"
	CategoryAntibiotic     = "antibiotic"
	CategoryAntiviral      = "antiviral"
	CategoryAntihistamine  = "antihistamine"
	CategoryVitamin        = "vitamin"
	CategoryDigestive      = "digestive"
	CategoryCardiovascular = "cardiovascular"
	CategoryDermatology    = "dermatology"
	CategoryFirstAid       = "first_aid"
	CategoryOphthalmology  = "ophthalmology"
	CategoryDental         = "dental"
	CategoryOther          = "other"
)

var Categories = []string{
	CategoryPainkiller, CategoryAntibiotic, CategoryAntiviral,
	CategoryAntihistamine, CategoryVitamin, CategoryDigestive,
	CategoryCardiovascular, CategoryDermatology, CategoryFirstAid,
	CategoryOphthalmology, CategoryDental, CategoryOther,
}

func ValidCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// ProductUpdate 列出一次更新允许改动的字段；nil 表示不动。
// 用显式字段而不是整条记录覆盖，避免误写无关属性。
type ProductUpdate struct {
	Barcode     *string
	Name        *string
	Price       *float64
	Category    *string
	Description *string
	ExpiryDate  *time.Time
	Quantity    *int
	Favorite    *bool
	Photo       *string
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	// GetByID 查不到时返回 (nil, nil)。
	GetByID(ctx context.Context, id uint) (*Product, error)
	ListByUser(ctx context.Context, userID uint) ([]Product, error)
	// Update 读-改-写并刷新 UpdatedAt；目标不存在返回 ErrNotFound。
	Update(ctx context.Context, id uint, upd ProductUpdate) error
	// ToggleFavorite 读当前值、取反、落库，返回新值。
	// 两个并发调用可能互相覆盖（lost update），单用户单标签页场景下接受。
	ToggleFavorite(ctx context.Context, id uint) (bool, error)
	// Delete 幂等：删除不存在的 id 静默成功。
	Delete(ctx context.Context, id uint) error
	// GetByBarcode 在用户自己的记录里线性扫描，返回首个匹配或 (nil, nil)。
	GetByBarcode(ctx context.Context, barcode string, userID uint) (*Product, error)
}
