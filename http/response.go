package http

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/freekieb7/wrangler/filesystem"
	"github.com/pkg/errors"
)

type BodyKind uint8

const (
	BodyBytes BodyKind = iota
	BodyFile
	BodyChunks
)

// Body is one of: an in-memory byte slice, a file on a Filesystem or a
// lazy ChunkProducer.
type Body struct {
	Kind   BodyKind
	Data   []byte
	File   string
	FS     filesystem.Filesystem
	Chunks ChunkProducer
}

func BytesBody(data []byte) Body {
	return Body{Kind: BodyBytes, Data: data}
}

func TextBody(text string) Body {
	return Body{Kind: BodyBytes, Data: []byte(text)}
}

func FileBody(fs filesystem.Filesystem, name string) Body {
	return Body{Kind: BodyFile, FS: fs, File: name}
}

func StreamBody(producer ChunkProducer) Body {
	return Body{Kind: BodyChunks, Chunks: producer}
}

// Len reports the body length when it is known without producing it.
func (body Body) Len() (int, bool) {
	if body.Kind == BodyBytes {
		return len(body.Data), true
	}
	return 0, false
}

type Header struct {
	Name  string
	Value string
}

// Headers keeps response headers in insertion order.
type Headers []Header

func (headers Headers) Get(name string) (string, bool) {
	for _, header := range headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value, true
		}
	}
	return "", false
}

func (headers *Headers) Set(name, value string) {
	for i := range *headers {
		if strings.EqualFold((*headers)[i].Name, name) {
			(*headers)[i].Value = value
			return
		}
	}
	*headers = append(*headers, Header{Name: name, Value: value})
}

// Add appends a header even when one with the same name exists.
func (headers *Headers) Add(name, value string) {
	*headers = append(*headers, Header{Name: name, Value: value})
}

func (headers *Headers) Del(name string) {
	kept := (*headers)[:0]
	for _, header := range *headers {
		if !strings.EqualFold(header.Name, name) {
			kept = append(kept, header)
		}
	}
	*headers = kept
}

type Response struct {
	Status  int
	Headers Headers
	Body    Body
}

func NewResponse(status int, body Body) *Response {
	return &Response{Status: status, Body: body}
}

// NewFileResponse serves name from fs. A missing file, or a directory,
// gives an empty 404.
func NewFileResponse(fs filesystem.Filesystem, name string) *Response {
	info, err := fs.Stat(name)
	if err != nil || info.IsDir() {
		return NewResponse(StatusNotFound, BytesBody(nil))
	}

	res := NewResponse(StatusOK, FileBody(fs, name))
	if contentType, ok := ContentTypeFor(name); ok {
		res.Headers.Set("Content-Type", contentType)
	}
	res.Headers.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	return res
}

// WriteTo encodes the status line, headers and body onto w, flushing
// after every body chunk. It returns the number of body bytes written.
func (res *Response) WriteTo(w *bufio.Writer) (int64, error) {
	// res.Headers stays untouched; a known length is written inline
	contentLength := -1
	if n, ok := res.Body.Len(); ok {
		if _, found := res.Headers.Get("Content-Length"); !found {
			contentLength = n
		}
	}

	line := make([]byte, 0, 64)
	line = append(line, protocolHttp11...)
	line = appendInt(line, res.Status)
	line = append(line, ' ')
	line = append(line, StatusText(res.Status)...)
	line = append(line, crlf...)
	if _, err := w.Write(line); err != nil {
		return 0, err
	}

	for _, header := range res.Headers {
		w.WriteString(header.Name)
		w.Write(headerSep)
		w.WriteString(header.Value)
		if _, err := w.Write(crlf); err != nil {
			return 0, err
		}
	}

	if contentLength >= 0 {
		line = append(line[:0], "Content-Length"...)
		line = append(line, headerSep...)
		line = appendInt(line, contentLength)
		line = append(line, crlf...)
		if _, err := w.Write(line); err != nil {
			return 0, err
		}
	}

	if _, err := w.Write(crlf); err != nil {
		return 0, err
	}

	switch res.Body.Kind {
	case BodyFile:
		return res.writeFile(w)
	case BodyChunks:
		return res.writeChunks(w)
	default:
		n, err := w.Write(res.Body.Data)
		if err != nil {
			return int64(n), err
		}
		return int64(n), w.Flush()
	}
}

func (res *Response) writeFile(w *bufio.Writer) (int64, error) {
	if res.Body.FS == nil {
		return 0, errors.New("http: file body without filesystem")
	}

	file, err := res.Body.FS.Open(res.Body.File)
	if err != nil {
		return 0, errors.Wrapf(err, "opening %s", res.Body.File)
	}
	defer file.Close()

	var written int64
	chunk := make([]byte, FileChunkSize)
	for {
		n, readErr := file.Read(chunk)
		if n > 0 {
			if _, err := w.Write(chunk[:n]); err != nil {
				return written, err
			}
			if err := w.Flush(); err != nil {
				return written, err
			}
			written += int64(n)
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, errors.Wrapf(readErr, "reading %s", res.Body.File)
		}
	}

	return written, w.Flush()
}

func (res *Response) writeChunks(w *bufio.Writer) (int64, error) {
	producer := res.Body.Chunks
	if producer == nil {
		return 0, w.Flush()
	}
	defer closeProducer(producer)

	var written int64
	for {
		chunk, err := producer.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, errors.Wrap(err, "producing body")
		}

		if _, err := w.Write(chunk); err != nil {
			return written, err
		}
		if err := w.Flush(); err != nil {
			return written, err
		}
		written += int64(len(chunk))
	}

	return written, w.Flush()
}
