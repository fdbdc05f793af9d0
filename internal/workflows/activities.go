package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/railmap/internal/adapters/geojson"
	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/core/geometry"
	"github.com/samirrijal/railmap/internal/core/usecases"
)

// LayoutActivities holds the activity implementations for the layout
// workflow. Registered as a struct, so each method name is its activity name.
type LayoutActivities struct {
	Layouts *usecases.LayoutService
}

// BuildLayout parses the feature collection and runs the geometry pipeline.
// Bad input and bad geometry fail the same way on every attempt, so they are
// returned as non-retryable.
func (a *LayoutActivities) BuildLayout(ctx context.Context, input LayoutWorkflowInput) (*domain.Layout, error) {
	src, err := geojson.Parse(input.Features)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("parse features: %v", err), "InvalidFeatures", err)
	}
	layout, err := a.Layouts.Build(ctx, src, input.Request)
	switch {
	case err == nil:
		return layout, nil
	case errors.Is(err, usecases.ErrInvalidRequest):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidRequest", err)
	case geometry.IsGeometryError(err):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "UnprocessableGeometry", err)
	default:
		return nil, err
	}
}

// SaveLayout persists the layout and warms the cache.
func (a *LayoutActivities) SaveLayout(ctx context.Context, layout *domain.Layout) error {
	return a.Layouts.Persist(ctx, layout)
}

// PublishLayout announces the stored layout.
func (a *LayoutActivities) PublishLayout(ctx context.Context, layout *domain.Layout) error {
	return a.Layouts.Announce(ctx, layout)
}

// DeleteLayout removes a saved layout (saga compensation). A layout that is
// already gone counts as deleted.
func (a *LayoutActivities) DeleteLayout(ctx context.Context, id string) error {
	err := a.Layouts.Delete(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrLayoutNotFound) {
		return fmt.Errorf("delete layout %s: %w", id, err)
	}
	slog.InfoContext(ctx, "layout deleted (saga compensation)", "layout_id", id)
	return nil
}
