package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uia-atlas/atlas-portal/pkg/filters"
)

const DefaultCacheTTL = 5 * time.Minute

// Service serves dashboard aggregates from a Store through a cache.
type Service struct {
	store  Store
	cache  *Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, cache *Cache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NewCache(0)
	}
	return &Service{store: store, cache: cache, logger: logger, now: time.Now}
}

// Invalidate drops cached aggregates. It runs whenever the set of approved
// projects changes.
func (s *Service) Invalidate() {
	s.cache.Clear()
	s.logger.Debug("Dashboard cache invalidated")
}

func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

func (s *Service) KPIs(ctx context.Context, f filters.Set) (*KPIs, error) {
	return cached(s.cache, "kpis|"+filters.Key(f), func() (*KPIs, error) {
		return s.store.KPIs(ctx, f)
	})
}

func (s *Service) MapMarkers(ctx context.Context, f filters.Set) ([]MapMarker, error) {
	return cached(s.cache, "markers|"+filters.Key(f), func() ([]MapMarker, error) {
		return s.store.MapMarkers(ctx, f)
	})
}

// SDGDistribution ignores the sdg constraint of f.
func (s *Service) SDGDistribution(ctx context.Context, f filters.Set) ([]SDGCount, error) {
	f = filters.Reset(f, filters.FieldSDG)
	return cached(s.cache, "sdg|"+filters.Key(f), func() ([]SDGCount, error) {
		return s.store.SDGDistribution(ctx, f)
	})
}

// RegionalDistribution ignores the region constraint of f.
func (s *Service) RegionalDistribution(ctx context.Context, f filters.Set) ([]RegionCount, error) {
	f = filters.Reset(f, filters.FieldRegion)
	return cached(s.cache, "region|"+filters.Key(f), func() ([]RegionCount, error) {
		return s.store.RegionalDistribution(ctx, f)
	})
}

// TypologyDistribution ignores the city constraint of f.
func (s *Service) TypologyDistribution(ctx context.Context, f filters.Set) ([]TypologyCount, error) {
	f = filters.Reset(f, filters.FieldCity)
	return cached(s.cache, "typology|"+filters.Key(f), func() ([]TypologyCount, error) {
		return s.store.TypologyDistribution(ctx, f)
	})
}

func (s *Service) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	return cached(s.cache, "filter-options", func() (*FilterOptions, error) {
		return s.store.FilterOptions(ctx)
	})
}

// Summary computes the KPIs and all three breakdowns concurrently. It fails
// as a whole if any part fails.
func (s *Service) Summary(ctx context.Context, f filters.Set) (*Summary, error) {
	summary := &Summary{ComputedAt: s.now()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		k, err := s.KPIs(gctx, f)
		if err != nil {
			return fmt.Errorf("kpis: %w", err)
		}
		summary.KPIs = k
		return nil
	})
	g.Go(func() error {
		d, err := s.SDGDistribution(gctx, f)
		if err != nil {
			return fmt.Errorf("sdg distribution: %w", err)
		}
		summary.SDGDistribution = d
		return nil
	})
	g.Go(func() error {
		d, err := s.RegionalDistribution(gctx, f)
		if err != nil {
			return fmt.Errorf("regional distribution: %w", err)
		}
		summary.RegionalDistribution = d
		return nil
	})
	g.Go(func() error {
		d, err := s.TypologyDistribution(gctx, f)
		if err != nil {
			return fmt.Errorf("typology distribution: %w", err)
		}
		summary.TypologyDistribution = d
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute dashboard summary", zap.Error(err))
		return nil, err
	}
	return summary, nil
}
