package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/query"
)

// StatsInvalidator 商品变更后让该用户的仪表盘缓存失效。
type StatsInvalidator interface {
	InvalidateUser(ctx context.Context, userID uint)
}

// ProductService 在裸 CRUD 之上套领域规则：归属校验、取值校验、
// 条码扫描流程（本地命中优先，未命中再查外部商品库）。
type ProductService struct {
	products domain.ProductRepository
	lookup   domain.MetadataLookup // 可为 nil（未配置外部商品库）
	stats    StatsInvalidator      // 可为 nil（未启用缓存）
}

func NewProductService(products domain.ProductRepository, lookup domain.MetadataLookup, stats StatsInvalidator) *ProductService {
	return &ProductService{products: products, lookup: lookup, stats: stats}
}

type CreateProductInput struct {
	Barcode     string     `json:"barcode"`
	Name        string     `json:"name" binding:"required"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	Quantity    *int       `json:"quantity"`
	Photo       string     `json:"photo"`
}

func (s *ProductService) Create(ctx context.Context, userID uint, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	category := in.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	quantity := 1
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must be non-negative", ErrInvalidInput)
		}
		quantity = *in.Quantity
	}

	p := &domain.Product{
		UserID:      userID,
		Barcode:     strings.TrimSpace(in.Barcode),
		Name:        name,
		Price:       in.Price,
		Category:    category,
		Description: in.Description,
		ExpiryDate:  in.ExpiryDate,
		Quantity:    quantity,
		Photo:       in.Photo,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return p, nil
}

// List 取用户全部商品后在内存里过滤/排序（数据量是单用户规模）。
func (s *ProductService) List(ctx context.Context, userID uint, search, category, sortKey string) ([]domain.Product, error) {
	products, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	products = query.FilterBySearch(products, search)
	products = query.FilterByCategory(products, category)
	if sortKey == "" {
		sortKey = "date-desc"
	}
	return query.SortItems(products, sortKey), nil
}

// Get 归属不对当作不存在，返回 (nil, nil)。
func (s *ProductService) Get(ctx context.Context, userID, id uint) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, nil
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, userID, id uint, upd domain.ProductUpdate) (*domain.Product, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if upd.Price != nil && *upd.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	if upd.Quantity != nil && *upd.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be non-negative", ErrInvalidInput)
	}
	if upd.Category != nil && !domain.ValidCategory(*upd.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *upd.Category)
	}
	if err := s.products.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) ToggleFavorite(ctx context.Context, userID, id uint) (bool, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, domain.ErrNotFound
	}
	next, err := s.products.ToggleFavorite(ctx, id)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, userID)
	return next, nil
}

// Delete 幂等；别人的记录既不删也不报错（对调用者等同"不存在"）。
func (s *ProductService) Delete(ctx context.Context, userID, id uint) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return nil
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *ProductService) GetByBarcode(ctx context.Context, userID uint, barcode string) (*domain.Product, error) {
	return s.products.GetByBarcode(ctx, barcode, userID)
}

// ScanResult 一次扫码的结果：命中的本地商品，或外部商品库的猜测。
type ScanResult struct {
	Product  *domain.Product         `json:"product,omitempty"`
	Metadata *domain.ProductMetadata `json:"metadata,omitempty"`
	Known    bool                    `json:"known"`
}

// Scan 处理一个已解码的条码（解码本身在服务外部，见 domain.Decoder）。
// 本地有记录直接返回；没有且配置了外部商品库，就带回猜测给前端预填。
// 外部查询失败不视为扫码失败，降级为"未知条码"。
func (s *ProductService) Scan(ctx context.Context, userID uint, barcode string) (*ScanResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode required", ErrInvalidInput)
	}
	p, err := s.products.GetByBarcode(ctx, barcode, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return &ScanResult{Product: p, Known: true}, nil
	}
	res := &ScanResult{Known: false}
	if s.lookup != nil {
		if meta, err := s.lookup.Lookup(ctx, barcode); err == nil && meta != nil {
			res.Metadata = meta
		}
	}
	return res, nil
}

func (s *ProductService) invalidate(ctx context.Context, userID uint) {
	if s.stats != nil {
		s.stats.InvalidateUser(ctx, userID)
	}
}
