package natsadapter

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/railmap/internal/core/domain"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		ev   domain.LayoutEvent
		want string
	}{
		{domain.LayoutEvent{Type: "computed", LayoutID: "abc"}, "railmap.layout.computed.abc"},
		{domain.LayoutEvent{Type: "deleted", LayoutID: "abc"}, "railmap.layout.deleted.abc"},
	}
	for _, tt := range tests {
		if got := Subject(&tt.ev); got != tt.want {
			t.Errorf("Subject(%s) = %s, want %s", tt.ev.Type, got, tt.want)
		}
	}
}

func TestHandleLayoutEvent(t *testing.T) {
	var got *domain.LayoutEvent
	handler := func(ctx context.Context, ev *domain.LayoutEvent) error {
		got = ev
		return nil
	}

	err := handleLayoutEvent(context.Background(), []byte(`{"type":"deleted","layout_id":"abc","markers":0,"stations":0}`), handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.LayoutID != "abc" || got.Type != "deleted" {
		t.Errorf("unexpected event %+v", got)
	}

	if err := handleLayoutEvent(context.Background(), []byte("not json"), handler); err == nil {
		t.Error("expected a decode error")
	}

	boom := errors.New("boom")
	err = handleLayoutEvent(context.Background(), []byte(`{"type":"computed"}`), func(context.Context, *domain.LayoutEvent) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected handler error, got %v", err)
	}
}
