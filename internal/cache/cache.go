package cache

import (
	"context"
	"time"

	"kantinku/backend/internal/domain"
)

type MenuBoardCache interface {
	Get(ctx context.Context, key string) (*domain.MenuBoard, bool, error)
	Set(ctx context.Context, key string, value *domain.MenuBoard, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type NoopMenuBoardCache struct{}

func (NoopMenuBoardCache) Get(_ context.Context, _ string) (*domain.MenuBoard, bool, error) {
	return nil, false, nil
}

func (NoopMenuBoardCache) Set(_ context.Context, _ string, _ *domain.MenuBoard, _ time.Duration) error {
	return nil
}

func (NoopMenuBoardCache) Delete(_ context.Context, _ string) error {
	return nil
}
