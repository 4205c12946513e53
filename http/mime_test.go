package http

import "testing"

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		found bool
	}{
		{"index.html", "text/html", true},
		{"STYLE.CSS", "text/css", true},
		{"app.js", "text/javascript", true},
		{"data.json", "application/json", true},
		{"logo.png", "image/png", true},
		{"photo.JPG", "image/jpeg", true},
		{"photo.jpeg", "image/jpeg", true},
		{"icon.svg", "image/svg+xml", true},
		{"export.csv", "text/csv", true},
		{"archive.tar.gz", "", false},
		{"README", "", false},
		{"dir.d/file", "", false},
	}

	for _, tt := range tests {
		got, found := ContentTypeFor(tt.name)
		if got != tt.want || found != tt.found {
			t.Errorf("ContentTypeFor(%q) = %q, %v; want %q, %v", tt.name, got, found, tt.want, tt.found)
		}
	}
}

func TestStatusText(t *testing.T) {
	tests := map[int]string{
		200: "OK",
		201: "Created",
		204: "No Content",
		301: "Moved Permanently",
		302: "Found",
		304: "Not Modified",
		400: "Bad Request",
		401: "Unauthorized",
		403: "Forbidden",
		404: "Not Found",
		405: "Method Not Allowed",
		409: "Conflict",
		410: "Gone",
		418: "I'm a teapot",
		500: "Internal Server Error",
		501: "Not Implemented",
		299: "Unknown",
		999: "Unknown",
	}

	for code, want := range tests {
		if got := StatusText(code); got != want {
			t.Errorf("StatusText(%d) = %q, want %q", code, got, want)
		}
	}
}
