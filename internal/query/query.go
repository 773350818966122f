// Package query 提供对已取回的商品切片做纯内存过滤、排序、分组和统计的函数。
// 这里不碰存储层，输入输出都是普通切片。
package query

import (
	"math"
	"sort"
	"strings"
	"time"

	"pharma-scanner/internal/domain"
)

// FilterBySearch 对名称、描述、条码做大小写不敏感的子串匹配。
// 空关键词原样返回输入。
func FilterBySearch(products []domain.Product, term string) []domain.Product {
	if term == "" {
		return products
	}
	t := strings.ToLower(term)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), t) ||
			strings.Contains(strings.ToLower(p.Description), t) ||
			strings.Contains(strings.ToLower(p.Barcode), t) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategory 只留下指定分类；空串或 "all" 原样返回。
func FilterByCategory(products []domain.Product, category string) []domain.Product {
	if category == "" || category == "all" {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// SortItems 按给定键稳定排序，返回新切片。
// 未知键原样返回输入（不报错）。
func SortItems(products []domain.Product, key string) []domain.Product {
	var less func(a, b domain.Product) bool
	switch key {
	case "name-asc":
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "name-desc":
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Name) > strings.ToLower(b.Name) }
	case "price-asc":
		less = func(a, b domain.Product) bool { return a.Price < b.Price }
	case "price-desc":
		less = func(a, b domain.Product) bool { return a.Price > b.Price }
	case "date-asc":
		less = func(a, b domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "date-desc":
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return products
	}
	sorted := append([]domain.Product(nil), products...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// GroupByCategory 按分类切分，组内保持原有相对顺序。
// 各组并起来恰好还原输入集合。
func GroupByCategory(products []domain.Product) map[string][]domain.Product {
	groups := make(map[string][]domain.Product)
	for _, p := range products {
		groups[p.Category] = append(groups[p.Category], p)
	}
	return groups
}

// DaysUntilExpiry 计算距过期还有几天：ceil((expiry - now) / 24h)。
// 没有过期日期视作无限远，返回 (0, false)。
func DaysUntilExpiry(expiry *time.Time, now time.Time) (int, bool) {
	if expiry == nil {
		return 0, false
	}
	diff := expiry.Sub(now)
	return int(math.Ceil(diff.Hours() / 24)), true
}

// IsExpired 判断是否已过期（天数 < 0）。无过期日期视为未过期。
func IsExpired(expiry *time.Time, now time.Time) bool {
	d, ok := DaysUntilExpiry(expiry, now)
	return ok && d < 0
}

// IsExpiringSoon 判断是否在 [0, 30) 天内到期。
func IsExpiringSoon(expiry *time.Time, now time.Time) bool {
	d, ok := DaysUntilExpiry(expiry, now)
	return ok && d >= 0 && d < 30
}

const (
	expiringWindowDays = 30
	lowStockThreshold  = 5
	recentCount        = 5
)

// Dashboard 是仪表盘一次性需要的全部聚合结果。
type Dashboard struct {
	Total        int               `json:"total"`
	AveragePrice float64           `json:"average"`
	TotalValue   float64           `json:"totalValue"`
	Favorites    int               `json:"favorites"`
	ByCategory   map[string]int    `json:"byCategory"`
	Recent       []domain.Product  `json:"recent"`
	ExpiringSoon []ExpiringProduct `json:"expiringSoon"`
	LowStock     []domain.Product  `json:"lowStock"`
}

// ExpiringProduct 附带剩余天数，省得前端重算。
type ExpiringProduct struct {
	domain.Product
	DaysLeft int `json:"daysLeft"`
}

// Summarize 对一个用户的全部商品做聚合统计。
// 空输入得到零值仪表盘（均价为 0，不除零）。
func Summarize(products []domain.Product, now time.Time) *Dashboard {
	d := &Dashboard{
		ByCategory:   make(map[string]int),
		Recent:       []domain.Product{},
		ExpiringSoon: []ExpiringProduct{},
		LowStock:     []domain.Product{},
	}
	d.Total = len(products)
	for _, p := range products {
		d.TotalValue += p.Price
		if p.Favorite {
			d.Favorites++
		}
		d.ByCategory[p.Category]++
		if p.Quantity < lowStockThreshold {
			d.LowStock = append(d.LowStock, p)
		}
		if days, ok := DaysUntilExpiry(p.ExpiryDate, now); ok && days >= 0 && days < expiringWindowDays {
			d.ExpiringSoon = append(d.ExpiringSoon, ExpiringProduct{Product: p, DaysLeft: days})
		}
	}
	if d.Total > 0 {
		d.AveragePrice = d.TotalValue / float64(d.Total)
	}

	recent := SortItems(products, "date-desc")
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	d.Recent = append(d.Recent, recent...)

	sort.SliceStable(d.ExpiringSoon, func(i, j int) bool {
		return d.ExpiringSoon[i].ExpiryDate.Before(*d.ExpiringSoon[j].ExpiryDate)
	})
	return d
}
