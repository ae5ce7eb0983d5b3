package service

import (
	"context"
	"time"

	"foodfacts/internal/domain"
	apperrors "foodfacts/internal/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Provider interface {
	GetProduct(ctx context.Context, id string) (*domain.FormattedProduct, error)
}

type Repository interface {
	FindByCode(ctx context.Context, code string) (*domain.CachedProduct, error)
	Upsert(ctx context.Context, code string, product *domain.FormattedProduct, fetchedAt time.Time) error
}

// CachingProvider serves fresh cached records and otherwise delegates to the
// upstream provider, storing what it returns. Upstream errors are returned
// unchanged and are never cached.
//
// Concurrent misses for the same code share one upstream lookup. The lookup
// runs detached from any single caller's cancellation and is bounded by
// lookupTimeout; each caller still stops waiting when its own ctx is done.
type CachingProvider struct {
	upstream      Provider
	repo          Repository
	ttl           time.Duration
	lookupTimeout time.Duration
	logger        *zap.Logger
	group         singleflight.Group
	now           func() time.Time
}

func NewCachingProvider(upstream Provider, repo Repository, ttl, lookupTimeout time.Duration, logger *zap.Logger) *CachingProvider {
	return &CachingProvider{
		upstream:      upstream,
		repo:          repo,
		ttl:           ttl,
		lookupTimeout: lookupTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

func (p *CachingProvider) GetProduct(ctx context.Context, id string) (*domain.FormattedProduct, error) {
	cached, err := p.repo.FindByCode(ctx, id)
	switch {
	case err == nil && cached.IsFresh(p.now(), p.ttl):
		p.logger.Debug("product cache hit", zap.String("code", id))
		return cached.Product, nil
	case err == nil:
		p.logger.Debug("product cache stale", zap.String("code", id), zap.Time("fetchedAt", cached.FetchedAt))
	default:
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			p.logger.Warn("product cache read failed", zap.String("code", id), zap.Error(err))
		}
	}

	ch := p.group.DoChan(id, func() (interface{}, error) {
		return p.lookup(context.WithoutCancel(ctx), id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			p.logger.Debug("product lookup shared", zap.String("code", id))
		}
		return res.Val.(*domain.FormattedProduct), nil
	}
}

func (p *CachingProvider) lookup(ctx context.Context, id string) (*domain.FormattedProduct, error) {
	if p.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.lookupTimeout)
		defer cancel()
	}

	product, err := p.upstream.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.repo.Upsert(ctx, id, product, p.now()); err != nil {
		p.logger.Warn("product cache write failed", zap.String("code", id), zap.Error(err))
	}
	return product, nil
}
