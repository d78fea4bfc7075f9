package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"laundry-api/internal/core/cache"
	"laundry-api/internal/domain"
)

const activeListKey = "services:active"

// Catalog implements the service offering operations. Each call does at most
// one read-modify-write against a single row.
type Catalog struct {
	repo    domain.ServiceRepository
	cache   *cache.Cache // optional
	listTTL time.Duration
	log     *zap.Logger
}

type CatalogOption func(*Catalog)

// WithListCache caches the active listing in Redis for ttl. Every write
// invalidates it.
func WithListCache(c *cache.Cache, ttl time.Duration) CatalogOption {
	return func(s *Catalog) {
		s.cache = c
		s.listTTL = ttl
	}
}

func NewCatalog(repo domain.ServiceRepository, log *zap.Logger, opts ...CatalogOption) *Catalog {
	s := &Catalog{repo: repo, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Catalog) Create(ctx context.Context, in domain.NewService) (*domain.Service, error) {
	svc := &domain.Service{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Duration:    in.Duration,
		Active:      true,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	s.invalidate(ctx)
	return s.Get(ctx, svc.ID)
}

// ListActive returns only active services, by id ascending.
func (s *Catalog) ListActive(ctx context.Context) ([]domain.Service, error) {
	var (
		list []domain.Service
		err  error
	)
	if s.cache != nil {
		list, err = cache.GetOrLoadJSON(s.cache, ctx, activeListKey, s.listTTL, s.repo.ListActive)
	} else {
		list, err = s.repo.ListActive(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	if list == nil {
		list = []domain.Service{}
	}
	return list, nil
}

// Get returns the service whatever its active flag.
func (s *Catalog) Get(ctx context.Context, id uint) (*domain.Service, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find service %d: %w", id, err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	return svc, nil
}

func (s *Catalog) Update(ctx context.Context, id uint, p domain.ServicePatch) (*domain.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(svc)
	if err := s.repo.Save(ctx, svc); err != nil {
		return nil, fmt.Errorf("update service %d: %w", id, err)
	}
	s.invalidate(ctx)
	// the store may round price (decimal(10,2)); answer with what it kept
	return s.Get(ctx, id)
}

// Deactivate clears the active flag. Deactivating an inactive service
// succeeds.
func (s *Catalog) Deactivate(ctx context.Context, id uint) error {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	svc.Active = false
	if err := s.repo.Save(ctx, svc); err != nil {
		return fmt.Errorf("deactivate service %d: %w", id, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Catalog) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// on failure the cache bypasses the key until a later invalidation works
	if err := s.cache.Invalidate(ctx, activeListKey); err != nil {
		s.log.Warn("listing cache invalidation failed, bypassing cache", zap.Error(err))
	}
}
