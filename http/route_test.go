package http

import (
	"testing"

	"github.com/freekieb7/wrangler/test"
)

func TestMatchPath(t *testing.T) {
	get := []string{MethodGet}

	tests := []struct {
		name    string
		pattern string
		method  string
		path    string
		want    bool
	}{
		{"literal", "/basic", MethodGet, "/basic", true},
		{"parameter", "/items/<id>", MethodGet, "/items/42", true},
		{"method not allowed", "/items/<id>", MethodPost, "/items/42", false},
		{"fewer segments", "/items/<id>", MethodGet, "/items", false},
		{"more segments", "/items/<id>", MethodGet, "/items/42/edit", false},
		{"trailing slash on path", "/a", MethodGet, "/a/", false},
		{"trailing slash on pattern", "/a/", MethodGet, "/a", false},
		{"case sensitive", "/items/<id>", MethodGet, "/Items/42", false},
		{"empty parameter value", "/items/<id>", MethodGet, "/items/", true},
		{"root", "/", MethodGet, "/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchPath(tt.pattern, tt.method, get, tt.path)
			if got != tt.want {
				t.Errorf("MatchPath(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestMatchPathSegmentCountIsNecessary(t *testing.T) {
	patterns := []string{"/", "/<a>", "/<a>/<b>", "/x/<b>/<c>", "/<a>/<b>/<c>/<d>"}
	paths := []string{"/", "/x", "/x/y", "/x/y/z", "/x/y/z/w", "/x/y/z/w/v"}
	methods := []string{MethodGet}

	for _, pattern := range patterns {
		route := NewRoute(pattern, methods, nil)
		for _, path := range paths {
			pathSegments := len(compilePattern(path))
			if pathSegments != route.SegmentCount() && MatchPath(pattern, MethodGet, methods, path) {
				t.Errorf("%q matched %q with a different segment count", pattern, path)
			}
		}
	}
}

func TestExtractParams(t *testing.T) {
	params := ExtractParams("/items/<id>/<sub>", "/items/a%20b/c+d")

	test.AssertEqual(t, map[string]string{"id": "a%20b", "sub": "c+d"}, params)
}

func TestExtractParamsNoPlaceholders(t *testing.T) {
	params := ExtractParams("/items/new", "/items/new")

	test.AssertEqual(t, map[string]string{}, params)
}

func TestNewRouteDefaultsToGet(t *testing.T) {
	route := NewRoute("/x", nil, nil)

	test.AssertEqual(t, []string{MethodGet}, route.Methods)
	test.AssertTrue(t, route.Matches(MethodGet, "/x"), "GET should be allowed by default")
	test.AssertTrue(t, !route.Matches(MethodPost, "/x"), "POST should not be allowed by default")
}

func TestParamSegmentNeedsBothBrackets(t *testing.T) {
	route := NewRoute("/<id", nil, nil)

	test.AssertTrue(t, route.Matches(MethodGet, "/<id"), "half-bracketed segment is a literal")
	test.AssertTrue(t, !route.Matches(MethodGet, "/42"), "half-bracketed segment is not a placeholder")
}
