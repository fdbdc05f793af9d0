package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/railmap/internal/core/domain"
)

// Activity names.
const (
	ActivityBuild   = "BuildLayout"
	ActivitySave    = "SaveLayout"
	ActivityPublish = "PublishLayout"
	ActivityDelete  = "DeleteLayout"
)

// LayoutWorkflowInput is the input for the layout workflow. Features is the
// raw GeoJSON feature collection the layout is computed from.
type LayoutWorkflowInput struct {
	Request  domain.LayoutRequest
	Features []byte
}

// LayoutWorkflow builds a layout, saves it and announces it. If the
// announcement fails the saved layout is deleted again (saga compensation).
// It returns the stored layout ID.
func LayoutWorkflow(ctx workflow.Context, input LayoutWorkflowInput) (string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting layout workflow", "name", input.Request.Name, "routes", len(input.Request.Routes))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Build
	var layout domain.Layout
	if err := workflow.ExecuteActivity(ctx, ActivityBuild, input).Get(ctx, &layout); err != nil {
		return "", err
	}

	// Step 2: Save
	if err := workflow.ExecuteActivity(ctx, ActivitySave, &layout).Get(ctx, nil); err != nil {
		return "", err
	}

	// Step 3: Publish
	if err := workflow.ExecuteActivity(ctx, ActivityPublish, &layout).Get(ctx, nil); err != nil {
		logger.Warn("publish failed, compensating", "layout_id", layout.ID, "error", err)
		_ = workflow.ExecuteActivity(ctx, ActivityDelete, layout.ID).Get(ctx, nil)
		return "", err
	}

	logger.Info("Layout stored", "layout_id", layout.ID, "markers", len(layout.Markers))
	return layout.ID, nil
}
