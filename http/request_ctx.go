package http

import (
	"bufio"
	"net"

	"github.com/google/uuid"
)

// ConnState is the position of a connection in its single request.
type ConnState uint8

const (
	StateAwaitRequestLine ConnState = iota
	StateAwaitHeaders
	StateAwaitBody
	StateRouted
	StateResponding
	StateClosed
)

func (state ConnState) String() string {
	switch state {
	case StateAwaitRequestLine:
		return "await-request-line"
	case StateAwaitHeaders:
		return "await-headers"
	case StateAwaitBody:
		return "await-body"
	case StateRouted:
		return "routed"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type RequestCtx struct {
	ID         uuid.UUID
	Conn       net.Conn
	ConnReader *bufio.Reader
	ConnWriter *bufio.Writer
	State      ConnState

	Request  *Request
	Response *Response
}

func (reqCtx *RequestCtx) Reset(conn net.Conn) {
	reqCtx.ID = uuid.New()
	reqCtx.Conn = conn
	reqCtx.ConnReader.Reset(conn)
	reqCtx.ConnWriter.Reset(conn)
	reqCtx.State = StateAwaitRequestLine
	reqCtx.Request = nil
	reqCtx.Response = nil
}

// Close closes the connection once; later calls are no-ops.
func (reqCtx *RequestCtx) Close() error {
	reqCtx.State = StateClosed
	if reqCtx.Conn == nil {
		return nil
	}

	err := reqCtx.Conn.Close()
	reqCtx.Conn = nil
	return err
}

func (reqCtx *RequestCtx) release() {
	reqCtx.ConnReader.Reset(nil)
	reqCtx.ConnWriter.Reset(nil)
	reqCtx.Request = nil
	reqCtx.Response = nil
}
