package http

import (
	"slices"
	"strings"
)

type Route struct {
	Pattern string
	Methods []string
	Handler Handler

	segments []segment
}

type segment struct {
	value   string
	isParam bool
}

var NotFoundHandler Handler = func(req *Request) Result {
	return Text("Not Found").WithStatus(StatusNotFound)
}

func NewRoute(pattern string, methods []string, handler Handler) Route {
	if len(methods) == 0 {
		methods = []string{MethodGet}
	}

	return Route{
		Pattern:  pattern,
		Methods:  methods,
		Handler:  handler,
		segments: compilePattern(pattern),
	}
}

func compilePattern(pattern string) []segment {
	parts := strings.Split(pattern, "/")
	segments := make([]segment, len(parts))
	for i, part := range parts {
		if name, ok := paramName(part); ok {
			segments[i] = segment{value: name, isParam: true}
		} else {
			segments[i] = segment{value: part}
		}
	}
	return segments
}

func paramName(part string) (string, bool) {
	if len(part) < 2 || part[0] != '<' || part[len(part)-1] != '>' {
		return "", false
	}
	return part[1 : len(part)-1], true
}

// SegmentCount is the number of '/' separated parts of the pattern,
// including the empty one before a leading slash.
func (route *Route) SegmentCount() int {
	return len(route.segments)
}

func (route *Route) Matches(method, path string) bool {
	if !slices.Contains(route.Methods, method) {
		return false
	}
	return matchSegments(route.segments, path)
}

// Params captures the placeholder values of path verbatim. The caller
// must have checked that the route matches.
func (route *Route) Params(path string) map[string]string {
	return extractSegments(route.segments, path)
}

// MatchPath reports whether path fits pattern and method is allowed.
func MatchPath(pattern, method string, methods []string, path string) bool {
	if !slices.Contains(methods, method) {
		return false
	}
	return matchSegments(compilePattern(pattern), path)
}

// ExtractParams returns the placeholder values of pattern found in path.
func ExtractParams(pattern, path string) map[string]string {
	return extractSegments(compilePattern(pattern), path)
}

func matchSegments(segments []segment, path string) bool {
	if strings.Count(path, "/")+1 != len(segments) {
		return false
	}

	for i, part := range strings.Split(path, "/") {
		if !segments[i].isParam && segments[i].value != part {
			return false
		}
	}
	return true
}

func extractSegments(segments []segment, path string) map[string]string {
	params := make(map[string]string)

	parts := strings.Split(path, "/")
	if len(parts) != len(segments) {
		return params
	}

	for i, part := range parts {
		if segments[i].isParam {
			params[segments[i].value] = part
		}
	}
	return params
}
