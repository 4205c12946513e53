package http

import (
	"strconv"

	"github.com/freekieb7/wrangler/filesystem"
)

type resultKind uint8

const (
	resultNone resultKind = iota
	resultStream
	resultText
	resultTuple
	resultResponse
)

// Result is what a handler returns. Build one with Text, Bytes, Stream,
// Tuple or Respond; Normalize turns any of them into a Response.
type Result struct {
	kind        resultKind
	body        Body
	status      int
	contentType string
	response    *Response
}

func Text(text string) Result {
	return Result{kind: resultText, body: TextBody(text)}
}

func Bytes(data []byte) Result {
	return Result{kind: resultText, body: BytesBody(data)}
}

func Stream(producer ChunkProducer) Result {
	return Result{kind: resultStream, body: StreamBody(producer)}
}

// Tuple is a body with an optional status (default 200) and content type
// (default text/html), set with WithStatus and WithContentType.
func Tuple(body Body) Result {
	return Result{kind: resultTuple, body: body}
}

func Respond(res *Response) Result {
	return Result{kind: resultResponse, response: res}
}

func Redirect(url string, status int) Result {
	res := NewResponse(status, BytesBody(nil))
	res.Headers.Set("Location", url)
	return Respond(res)
}

func ServeFile(fs filesystem.Filesystem, name string) Result {
	return Respond(NewFileResponse(fs, name))
}

func (result Result) WithStatus(status int) Result {
	if result.kind == resultResponse {
		if result.response != nil {
			result.response.Status = status
		}
		return result
	}

	result.kind = resultTuple
	result.status = status
	return result
}

func (result Result) WithContentType(contentType string) Result {
	if result.kind == resultResponse {
		if result.response != nil {
			result.response.Headers.Set("Content-Type", contentType)
		}
		return result
	}

	result.kind = resultTuple
	result.contentType = contentType
	return result
}

func Normalize(result Result) (*Response, error) {
	switch result.kind {
	case resultStream, resultText, resultTuple:
		status := result.status
		if status == 0 {
			status = StatusOK
		}
		contentType := result.contentType
		if contentType == "" {
			contentType = defaultContentType
		}

		res := NewResponse(status, result.body)
		res.Headers.Set("Content-Type", contentType)
		if n, ok := result.body.Len(); ok {
			res.Headers.Set("Content-Length", strconv.Itoa(n))
		}
		return res, nil
	case resultResponse:
		if result.response == nil {
			return nil, ErrEmptyResult
		}
		return result.response, nil
	default:
		return nil, ErrEmptyResult
	}
}
