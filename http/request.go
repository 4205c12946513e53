package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type Request struct {
	Method      string
	Target      string
	Path        string
	QueryString string
	Protocol    string

	// Header names are lower-cased.
	Headers map[string]string

	Query map[string]string
	// Form holds multipart/form-data or x-www-form-urlencoded fields.
	Form map[string]string
	// Data holds a decoded application/json body.
	Data any
	// Params holds the path placeholders of the matched route.
	Params map[string]string

	ctx context.Context
}

// ReadRequest decodes one request from reader.
func ReadRequest(reader *bufio.Reader) (*Request, error) {
	var req Request
	if err := req.Parse(reader); err != nil {
		return nil, err
	}
	return &req, nil
}

func (req *Request) Parse(reader *bufio.Reader) error {
	if err := req.readRequestLine(reader); err != nil {
		return err
	}
	if err := req.readHeaders(reader); err != nil {
		return err
	}
	return req.readBody(reader)
}

func (req *Request) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx
}

func (req *Request) Header(name string) (string, bool) {
	value, found := req.Headers[strings.ToLower(name)]
	return value, found
}

func (req *Request) readRequestLine(reader *bufio.Reader) error {
	line, err := readLine(reader)
	if err != nil {
		return err
	}
	if !utf8.ValidString(line) {
		return errors.Wrap(ErrInvalidUTF8, "request line")
	}

	parts := strings.Fields(line)
	if len(parts) != 3 {
		return errors.Wrapf(ErrMalformedRequestLine, "%q", strings.TrimSpace(line))
	}

	req.Method, req.Target, req.Protocol = parts[0], parts[1], parts[2]
	req.Path, req.QueryString, _ = strings.Cut(req.Target, "?")
	req.Form = make(map[string]string)
	req.Params = make(map[string]string)

	req.Query = make(map[string]string)
	if req.QueryString != "" {
		query, err := ParseQuery(req.QueryString)
		if err != nil {
			return errors.Wrap(err, "parsing query string")
		}
		req.Query = query
	}

	return nil
}

func (req *Request) readHeaders(reader *bufio.Reader) error {
	headers, err := readHeaderBlock(reader)
	if err != nil {
		return err
	}
	req.Headers = headers
	return nil
}

// readBody only looks at the body when both content-length and
// content-type are present.
func (req *Request) readBody(reader *bufio.Reader) error {
	contentLength, hasLength := req.Headers[headerContentLength]
	contentType, hasType := req.Headers[headerContentType]
	if !hasLength || !hasType {
		return nil
	}

	switch {
	case strings.HasPrefix(contentType, contentTypeMultipart):
		form, err := readMultipart(reader, contentType)
		if err != nil {
			return errors.Wrap(err, "parsing multipart body")
		}
		req.Form = form
	case strings.HasPrefix(contentType, contentTypeJSON):
		body, err := readText(reader, contentLength)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(body), &req.Data); err != nil {
			return errors.Wrap(err, "parsing json body")
		}
	case strings.HasPrefix(contentType, contentTypeURLEncoded):
		body, err := readText(reader, contentLength)
		if err != nil {
			return err
		}
		form, err := ParseQuery(body)
		if err != nil {
			return errors.Wrap(err, "parsing form body")
		}
		req.Form = form
	}

	return nil
}

// readText reads exactly content-length bytes and checks they are utf-8.
func readText(reader *bufio.Reader, contentLength string) (string, error) {
	n, err := atoi(strings.TrimSpace(contentLength))
	if err != nil {
		return "", errors.Wrapf(ErrInvalidContentLength, "%q", contentLength)
	}
	if n > MaxBodySize {
		return "", errors.Wrapf(ErrBodyTooLarge, "%d bytes", n)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(reader, body); err != nil {
		return "", errors.Wrap(err, "reading body")
	}
	if !utf8.Valid(body) {
		return "", ErrInvalidUTF8
	}

	return string(body), nil
}

// readLine returns one line including its terminator. A stream that ends
// before the terminator is an error.
func readLine(reader *bufio.Reader) (string, error) {
	var line []byte
	for {
		chunk, err := reader.ReadSlice('\n')
		if len(line)+len(chunk) > MaxLineSize {
			return "", ErrLineTooLong
		}
		line = append(line, chunk...)

		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(line) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}
		return string(line), nil
	}
}

// readHeaderBlock reads "name: value" lines up to an empty line. It is
// shared by the request head and the multipart field heads.
func readHeaderBlock(reader *bufio.Reader) (map[string]string, error) {
	headers := make(map[string]string)
	for count := 0; ; count++ {
		line, err := readLine(reader)
		if err != nil {
			return nil, errors.Wrap(err, "reading header")
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return headers, nil
		}
		if count == MaxHeaders {
			return nil, ErrTooManyHeaders
		}
		if !utf8.ValidString(line) {
			return nil, errors.Wrap(ErrInvalidUTF8, "header")
		}

		name, value, found := strings.Cut(strings.TrimSpace(line), ": ")
		if !found {
			return nil, errors.Wrapf(ErrMalformedHeader, "%q", line)
		}
		headers[strings.ToLower(name)] = value
	}
}

func readMultipart(reader *bufio.Reader, contentType string) (map[string]string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return nil, errors.Wrapf(ErrMalformedMultipart, "no boundary in %q", contentType)
	}
	delimiter := "--" + params["boundary"]
	closing := delimiter + "--"

	// the first line is the opening boundary
	if _, err := readLine(reader); err != nil {
		return nil, err
	}

	form := make(map[string]string)
	for {
		fieldHeaders, err := readHeaderBlock(reader)
		if err != nil {
			return nil, err
		}
		if len(fieldHeaders) == 0 {
			return form, nil
		}

		name, err := fieldName(fieldHeaders)
		if err != nil {
			return nil, err
		}

		// lines are joined without their separators
		var value strings.Builder
		for {
			line, err := readLine(reader)
			if err != nil {
				return nil, err
			}
			if !utf8.ValidString(line) {
				return nil, errors.Wrapf(ErrInvalidUTF8, "field %q", name)
			}

			line = strings.TrimSpace(line)
			if line == delimiter {
				form[name] = value.String()
				break
			}
			if line == closing {
				form[name] = value.String()
				return form, nil
			}

			if value.Len()+len(line) > MaxBodySize {
				return nil, errors.Wrapf(ErrBodyTooLarge, "field %q", name)
			}
			value.WriteString(line)
		}
	}
}

func fieldName(fieldHeaders map[string]string) (string, error) {
	disposition, found := fieldHeaders[headerContentDisposition]
	if !found {
		return "", errors.Wrap(ErrMalformedMultipart, "field without content-disposition")
	}

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["name"] == "" {
		return "", errors.Wrapf(ErrMalformedMultipart, "no name in %q", disposition)
	}
	return params["name"], nil
}
