package http

import (
	"path"
	"strings"
)

var contentTypes = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "text/javascript",
	"json": "application/json",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"svg":  "image/svg+xml",
	"csv":  "text/csv",
}

// ContentTypeFor infers a content type from the file suffix.
func ContentTypeFor(name string) (string, bool) {
	ext := path.Ext(name)
	if ext == "" {
		return "", false
	}

	ct, ok := contentTypes[strings.ToLower(ext[1:])]
	return ct, ok
}
