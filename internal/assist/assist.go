// Package assist asks a language model for product copy and a price hint.
// It never fails loudly: a missing key or a bad answer yields no suggestion.
package assist

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"warungpos/backend/internal/cache"
	"warungpos/backend/internal/domain"
)

const otherCategory = "Other"

// Generator produces a raw suggestion for a product name.
type Generator interface {
	Generate(ctx context.Context, productName string, instruction string) (*domain.ProductSuggestion, error)
}

type Assistant struct {
	gen      Generator
	cache    cache.SuggestionCache
	cacheTTL time.Duration
	log      *zap.Logger
}

// New returns an assistant. A nil generator disables suggestions.
func New(gen Generator, cacheStore cache.SuggestionCache, cacheTTL time.Duration, log *zap.Logger) *Assistant {
	if cacheStore == nil {
		cacheStore = cache.NoopSuggestionCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{
		gen:      gen,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		log:      log.Named("assist"),
	}
}

func (a *Assistant) Enabled() bool {
	return a != nil && a.gen != nil
}

// Describe returns a suggestion for productName, or false when none is
// available. An empty instruction uses the default prompt.
func (a *Assistant) Describe(ctx context.Context, productName string, instruction string) (*domain.ProductSuggestion, bool) {
	productName = strings.TrimSpace(productName)
	if !a.Enabled() || productName == "" {
		return nil, false
	}
	if strings.TrimSpace(instruction) == "" {
		instruction = domain.DefaultAIDescriptionPrompt
	}

	key := buildCacheKey(productName, instruction)
	if cached, ok, err := a.cache.Get(ctx, key); err == nil && ok {
		return cached, true
	} else if err != nil {
		a.log.Warn("suggestion cache read failed", zap.Error(err))
	}

	suggestion, err := a.gen.Generate(ctx, productName, instruction)
	if err != nil {
		a.log.Warn("suggestion generation failed", zap.String("product", productName), zap.Error(err))
		return nil, false
	}
	if suggestion == nil || strings.TrimSpace(suggestion.Description) == "" {
		return nil, false
	}

	normalized := normalize(*suggestion)
	if err := a.cache.Set(ctx, key, &normalized, a.cacheTTL); err != nil {
		a.log.Warn("suggestion cache write failed", zap.Error(err))
	}
	return &normalized, true
}

func normalize(s domain.ProductSuggestion) domain.ProductSuggestion {
	s.Description = strings.TrimSpace(s.Description)
	if !slices.Contains(domain.Categories, s.Category) {
		s.Category = otherCategory
	}
	// A negative price is not a hint; zero means no suggestion.
	if s.SuggestedPrice.IsNegative() {
		s.SuggestedPrice = decimal.Zero
	}
	s.SuggestedPrice = domain.RoundMoney(s.SuggestedPrice)
	return s
}

func buildCacheKey(productName string, instruction string) string {
	raw := strings.ToLower(productName) + "|" + strings.TrimSpace(instruction)
	hash := sha1.Sum([]byte(raw))
	return "pos:assist:" + hex.EncodeToString(hash[:])
}
