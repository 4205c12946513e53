package http

import "github.com/pkg/errors"

const (
	DefaultReadBufferSize  = 1024 // 1kB
	DefaultWriteBufferSize = 1024 // 1kB

	// FileChunkSize is the size of each chunk read from a file body before
	// the writer is drained.
	FileChunkSize = 1024

	// MaxConns is the number of connection contexts allocated up front.
	// Must be a power of 2.
	MaxConns = 16

	MaxLineSize = 4096
	MaxHeaders  = 64
	MaxBodySize = 64 * 1024
)

const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
)

const (
	headerContentLength      = "content-length"
	headerContentType        = "content-type"
	headerContentDisposition = "content-disposition"

	contentTypeMultipart  = "multipart/form-data"
	contentTypeJSON       = "application/json"
	contentTypeURLEncoded = "application/x-www-form-urlencoded"
	defaultContentType    = "text/html"
)

var (
	protocolHttp11 = []byte("HTTP/1.1 ")
	headerSep      = []byte(": ")
	crlf           = []byte("\r\n")
)

var (
	ErrMalformedRequestLine = errors.New("http: malformed request line")
	ErrMalformedHeader      = errors.New("http: malformed header line")
	ErrMalformedMultipart   = errors.New("http: malformed multipart body")
	ErrInvalidContentLength = errors.New("http: invalid content-length")
	ErrInvalidUTF8          = errors.New("http: body is not valid utf-8")
	ErrInvalidEscape        = errors.New("http: invalid percent escape")
	ErrLineTooLong          = errors.New("http: line too long")
	ErrTooManyHeaders       = errors.New("http: too many headers")
	ErrBodyTooLarge         = errors.New("http: body too large")
	ErrEmptyResult          = errors.New("http: handler returned no result")
	ErrHandlerPanic         = errors.New("http: handler panicked")
)
