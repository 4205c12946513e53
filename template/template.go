// Package template renders {{ name }} placeholders from a parameter map.
// There is no expression language: a tag is a key, and unknown keys render
// as nothing.
package template

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/freekieb7/wrangler/filesystem"
	"github.com/pkg/errors"
)

var (
	openTag  = []byte("{{")
	closeTag = []byte("}}")

	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"'", "&apos;",
		">", "&gt;",
		"<", "&lt;",
	)
)

type Renderer struct {
	FS     filesystem.Filesystem
	Logger *slog.Logger
}

func NewRenderer(fs filesystem.Filesystem) *Renderer {
	return &Renderer{FS: fs, Logger: slog.Default()}
}

// Render loads the template and returns a stream producing it chunk by
// chunk, substituting lazily.
func (renderer *Renderer) Render(name string, params map[string]string) (*Stream, error) {
	data, err := renderer.FS.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "loading template %s", name)
	}

	return &Stream{
		name:    name,
		data:    data,
		params:  params,
		logger:  renderer.Logger,
		started: time.Now(),
	}, nil
}

// Stream satisfies http.ChunkProducer.
type Stream struct {
	name    string
	data    []byte
	caret   int
	params  map[string]string
	logger  *slog.Logger
	started time.Time

	value    []byte
	hasValue bool
}

func (stream *Stream) Next() ([]byte, error) {
	for {
		if stream.hasValue {
			value := stream.value
			stream.value, stream.hasValue = nil, false
			if len(value) > 0 {
				return value, nil
			}
			continue
		}

		if stream.caret >= len(stream.data) {
			if stream.logger != nil {
				stream.logger.Debug("rendered template", "template", stream.name, "elapsed_ms", time.Since(stream.started).Milliseconds())
			}
			return nil, io.EOF
		}

		rest := stream.data[stream.caret:]
		start := bytes.Index(rest, openTag)
		end := -1
		if start >= 0 {
			if n := bytes.Index(rest[start+len(openTag):], closeTag); n >= 0 {
				end = start + len(openTag) + n
			}
		}

		// no complete tag left
		if start < 0 || end < 0 {
			stream.caret = len(stream.data)
			return rest, nil
		}

		key := string(bytes.TrimSpace(rest[start+len(openTag) : end]))
		stream.value = []byte(htmlEscaper.Replace(stream.params[key]))
		stream.hasValue = true
		stream.caret += end + len(closeTag)

		if start > 0 {
			return rest[:start], nil
		}
	}
}
