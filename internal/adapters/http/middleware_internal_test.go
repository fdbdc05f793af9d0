package http

import "testing"

func TestEtagMatches(t *testing.T) {
	const etag = `W/"abc"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`W/"abc"`, true},
		{`"abc"`, true},
		{`"x", W/"abc"`, true},
		{`"x", "y"`, false},
		{"*", true},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, etag); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestEventSubject(t *testing.T) {
	tests := []struct {
		event, layout, want string
		wantErr             bool
	}{
		{"", "", "railmap.layout.>", false},
		{"", "abc", "railmap.layout.*.abc", false},
		{"computed", "", "railmap.layout.computed.*", false},
		{"deleted", "abc", "railmap.layout.deleted.abc", false},
		{"moved", "", "", true},
	}
	for _, tt := range tests {
		got, err := eventSubject(tt.event, tt.layout)
		if (err != nil) != tt.wantErr {
			t.Errorf("eventSubject(%q, %q) error = %v", tt.event, tt.layout, err)
			continue
		}
		if got != tt.want {
			t.Errorf("eventSubject(%q, %q) = %s, want %s", tt.event, tt.layout, got, tt.want)
		}
	}
}

func TestCacheControlFor(t *testing.T) {
	tests := map[string]string{
		"/v1/health":              "public, max-age=10",
		"/metrics":                "no-cache",
		"/v1/layouts":             "no-cache",
		"/v1/layouts/abc/markers": "public, max-age=3600",
		"/graphql":                "",
	}
	for path, want := range tests {
		if got := cacheControlFor(path); got != want {
			t.Errorf("cacheControlFor(%s) = %q, want %q", path, got, want)
		}
	}
}
