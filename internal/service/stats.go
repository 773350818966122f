package service

import (
	"context"
	"fmt"
	"time"

	"pharma-scanner/internal/core/cache"
	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/query"
)

const statsTTL = time.Minute

// StatsService 把仓储结果交给 query 层聚合，并按用户缓存仪表盘。
// 不直接碰网关。
type StatsService struct {
	products domain.ProductRepository
	cache    *cache.Cache // 可为 nil：每次现算
}

func NewStatsService(products domain.ProductRepository, c *cache.Cache) *StatsService {
	return &StatsService{products: products, cache: c}
}

func statsKey(userID uint) string { return fmt.Sprintf("stats:%d", userID) }

func (s *StatsService) Dashboard(ctx context.Context, userID uint) (*query.Dashboard, error) {
	load := func(ctx context.Context) (*query.Dashboard, error) {
		products, err := s.products.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return query.Summarize(products, time.Now()), nil
	}
	if s.cache == nil {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, statsKey(userID), statsTTL, load)
}

func (s *StatsService) InvalidateUser(ctx context.Context, userID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, statsKey(userID))
	}
}
