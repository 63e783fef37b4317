package offer

import (
	"context"
	"time"

	"kantinku/backend/internal/cache"
	"kantinku/backend/internal/domain"
)

// Engine builds location menu boards (items annotated with their resolved
// discount) and caches them, since the board is the hottest read path and
// changes only on admin mutation.
type Engine struct {
	cache    cache.MenuBoardCache
	cacheTTL time.Duration
}

func NewEngine(cacheStore cache.MenuBoardCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopMenuBoardCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &Engine{
		cache:    cacheStore,
		cacheTTL: cacheTTL,
	}
}

func boardCacheKey(location string) string {
	return "kantinku:menu-board:" + location
}

// BuildBoard prices every item against the location's offers. A cached
// board is returned when present; cache errors fall through to a rebuild.
func (e *Engine) BuildBoard(ctx context.Context, location string, items []domain.MenuItem, offers []domain.Offer) domain.MenuBoard {
	key := boardCacheKey(location)
	if cached, ok, err := e.cache.Get(ctx, key); err == nil && ok {
		return *cached
	}

	priced := make([]domain.PricedMenuItem, 0, len(items))
	for _, item := range items {
		priced = append(priced, domain.PricedMenuItem{
			MenuItem:  item,
			Discount:  Resolve(item, offers),
			Available: item.Stock > 0,
		})
	}

	board := domain.MenuBoard{
		Location:    location,
		Items:       priced,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_ = e.cache.Set(ctx, key, &board, e.cacheTTL)
	return board
}

// Invalidate drops the cached board for a location after a menu or offer
// mutation. Best effort.
func (e *Engine) Invalidate(ctx context.Context, location string) {
	_ = e.cache.Delete(ctx, boardCacheKey(location))
}
