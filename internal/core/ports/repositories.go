package ports

import (
	"context"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// LayoutRepository persists computed layouts.
type LayoutRepository interface {
	Save(ctx context.Context, layout *domain.Layout) error
	// GetByID returns domain.ErrLayoutNotFound when no layout has the ID.
	GetByID(ctx context.Context, id string) (*domain.Layout, error)
	List(ctx context.Context, offset, limit int) ([]domain.LayoutSummary, int, error)
	Delete(ctx context.Context, id string) error
}
