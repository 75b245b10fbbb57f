package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/logger"
)

// Cache sizing for variety resolutions
const (
	resolveCacheSize = 256
	resolveCacheTTL  = 10 * time.Minute
)

// Service defines the interface for catalog lookups
type Service interface {
	// ResolveProduct finds a product by name, case-insensitively
	ResolveProduct(ctx context.Context, name string) (*domain.Product, error)

	// ResolveVariety finds the variety a free-form name refers to.
	// Matching is case-insensitive: an exact match wins, otherwise a
	// single unambiguous substring match is accepted.
	ResolveVariety(ctx context.Context, name string) (domain.Variety, error)

	// Products returns the full product catalog
	Products(ctx context.Context) []domain.Product

	// Reload re-reads the catalog file and clears the resolution cache
	Reload(ctx context.Context) error
}

type service struct {
	loader Loader
	path   string
	fold   cases.Caser
	cache  *resolveCache

	mu        sync.RWMutex
	products  []domain.Product
	varieties []domain.Variety
}

// NewService creates a catalog service backed by the JSON file at path.
// The catalog is loaded eagerly so a broken file fails startup.
func NewService(loader Loader, path string) (Service, error) {
	s := &service{
		loader: loader,
		path:   path,
		fold:   cases.Fold(),
		cache:  newResolveCache(resolveCacheSize, resolveCacheTTL),
	}
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) Reload(ctx context.Context) error {
	log := logger.FromContext(ctx)

	config, err := s.loader.Load(s.path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	products, varieties := config.toDomain()

	s.mu.Lock()
	s.products = products
	s.varieties = varieties
	s.mu.Unlock()
	s.cache.Clear()

	log.Info("Catalog loaded",
		"path", s.path,
		"products", len(products),
		"varieties", len(varieties))
	return nil
}

func (s *service) ResolveProduct(_ context.Context, name string) (*domain.Product, error) {
	folded := s.fold.String(strings.TrimSpace(name))

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.products {
		if s.fold.String(s.products[i].Name) == folded {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrProductNotFound, name)
}

func (s *service) ResolveVariety(_ context.Context, name string) (domain.Variety, error) {
	folded := s.fold.String(strings.TrimSpace(name))
	if folded == "" {
		return domain.Variety{}, fmt.Errorf("%w: empty variety name", domain.ErrVarietyNotFound)
	}

	if v, ok := s.cache.Get(folded); ok {
		return v, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var partial []domain.Variety
	for _, v := range s.varieties {
		candidate := s.fold.String(v.Name)
		if candidate == folded {
			s.cache.Set(folded, v)
			return v, nil
		}
		if strings.Contains(candidate, folded) || strings.Contains(folded, candidate) {
			partial = append(partial, v)
		}
	}

	switch len(partial) {
	case 0:
		return domain.Variety{}, fmt.Errorf("%w: %q", domain.ErrVarietyNotFound, name)
	case 1:
		s.cache.Set(folded, partial[0])
		return partial[0], nil
	default:
		names := make([]string, len(partial))
		for i, v := range partial {
			names[i] = v.Name
		}
		return domain.Variety{}, fmt.Errorf("%w: %q is ambiguous between %s",
			domain.ErrVarietyNotFound, name, strings.Join(names, ", "))
	}
}

func (s *service) Products(_ context.Context) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}
