package workflows_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/railmap/internal/core/domain"
	"github.com/samirrijal/railmap/internal/core/geometry"
	"github.com/samirrijal/railmap/internal/core/usecases"
	"github.com/samirrijal/railmap/internal/pkg/board"
	"github.com/samirrijal/railmap/internal/workflows"
)

type memRepo struct {
	layouts map[string]*domain.Layout
	saveErr error
}

func (m *memRepo) Save(ctx context.Context, l *domain.Layout) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.layouts[l.ID] = l
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*domain.Layout, error) {
	if l, ok := m.layouts[id]; ok {
		return l, nil
	}
	return nil, domain.ErrLayoutNotFound
}

func (m *memRepo) List(ctx context.Context, offset, limit int) ([]domain.LayoutSummary, int, error) {
	return nil, len(m.layouts), nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.layouts[id]; !ok {
		return domain.ErrLayoutNotFound
	}
	delete(m.layouts, id)
	return nil
}

type failingPublisher struct{ err error }

func (p failingPublisher) PublishLayoutComputed(ctx context.Context, ev *domain.LayoutEvent) error {
	return p.err
}

func (p failingPublisher) PublishLayoutDeleted(ctx context.Context, ev *domain.LayoutEvent) error {
	return p.err
}

func newActivities(repo *memRepo, pub failingPublisher) *workflows.LayoutActivities {
	svc := usecases.NewLayoutService(repo, nil, pub, usecases.LayoutOptions{
		Tolerances:      geometry.DefaultTolerances(),
		MarkerSpacing:   75,
		MarkerRefPrefix: "D",
		MarkerRefStart:  100,
		Board:           board.A3(),
	}).WithClock(time.Now, func() string { return "layout-1" })
	return &workflows.LayoutActivities{Layouts: svc}
}

func network(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "adapters", "geojson", "testdata", "network.geojson"))
	require.NoError(t, err)
	return data
}

func TestBuildLayout(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()
	acts := newActivities(&memRepo{layouts: map[string]*domain.Layout{}}, failingPublisher{})
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.BuildLayout, workflows.LayoutWorkflowInput{
		Request:  domain.LayoutRequest{Name: "sydney", Routes: []domain.RouteSpec{{Ref: "L2", Towards: "Circular Quay"}}},
		Features: network(t),
	})
	require.NoError(t, err)
	var layout domain.Layout
	require.NoError(t, val.Get(&layout))
	assert.Equal(t, "layout-1", layout.ID)
	assert.NotEmpty(t, layout.Markers)
}

func TestBuildLayout_NonRetryable(t *testing.T) {
	tests := []struct {
		name     string
		input    workflows.LayoutWorkflowInput
		wantType string
	}{
		{
			name:     "invalid features",
			input:    workflows.LayoutWorkflowInput{Request: domain.LayoutRequest{Routes: []domain.RouteSpec{{Ref: "L2"}}}, Features: []byte(`{"type":"Feature"}`)},
			wantType: "InvalidFeatures",
		},
		{
			name:     "no routes",
			input:    workflows.LayoutWorkflowInput{Features: []byte(`{"type":"FeatureCollection","features":[]}`)},
			wantType: "InvalidRequest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s testsuite.WorkflowTestSuite
			env := s.NewTestActivityEnvironment()
			acts := newActivities(&memRepo{layouts: map[string]*domain.Layout{}}, failingPublisher{})
			env.RegisterActivity(acts)

			_, err := env.ExecuteActivity(acts.BuildLayout, tt.input)
			require.Error(t, err)
			var appErr *temporal.ApplicationError
			require.True(t, errors.As(err, &appErr))
			assert.True(t, appErr.NonRetryable())
			assert.Equal(t, tt.wantType, appErr.Type())
		})
	}
}

func TestSaveAndDeleteLayout(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()
	repo := &memRepo{layouts: map[string]*domain.Layout{}}
	acts := newActivities(repo, failingPublisher{})
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.SaveLayout, &domain.Layout{ID: "layout-1"})
	require.NoError(t, err)
	assert.Contains(t, repo.layouts, "layout-1")

	_, err = env.ExecuteActivity(acts.DeleteLayout, "layout-1")
	require.NoError(t, err)
	assert.Empty(t, repo.layouts)

	// Compensation may run twice; a missing layout is not an error.
	_, err = env.ExecuteActivity(acts.DeleteLayout, "layout-1")
	require.NoError(t, err)
}

func TestPublishLayout_ReportsFailure(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()
	acts := newActivities(&memRepo{layouts: map[string]*domain.Layout{}}, failingPublisher{err: errors.New("nats down")})
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.PublishLayout, &domain.Layout{ID: "layout-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats down")
}
