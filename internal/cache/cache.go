package cache

import (
	"context"
	"time"

	"warungpos/backend/internal/domain"
)

// SuggestionCache stores AI product suggestions keyed by request hash.
type SuggestionCache interface {
	Get(ctx context.Context, key string) (*domain.ProductSuggestion, bool, error)
	Set(ctx context.Context, key string, value *domain.ProductSuggestion, ttl time.Duration) error
}

type NoopSuggestionCache struct{}

func (NoopSuggestionCache) Get(_ context.Context, _ string) (*domain.ProductSuggestion, bool, error) {
	return nil, false, nil
}

func (NoopSuggestionCache) Set(_ context.Context, _ string, _ *domain.ProductSuggestion, _ time.Duration) error {
	return nil
}
