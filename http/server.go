package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var ErrServerClosed = errors.New("http: server closed")

type Server struct {
	Name   string
	Router Router
	Logger *slog.Logger
	Tracer trace.Tracer
	Meter  metric.Meter

	// ReadTimeout bounds the time to receive a request. Zero means a
	// stalled client holds its connection forever.
	ReadTimeout time.Duration

	pool        *ConnPool
	slots       chan struct{}
	metrics     serverMetrics
	metricsOnce sync.Once

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
	conns    sync.WaitGroup
}

func NewServer(name string) *Server {
	return &Server{
		Name:   name,
		Router: NewRouter(),
		Logger: otelslog.NewLogger(name),
		Tracer: otel.Tracer(name),
		Meter:  otel.Meter(name),

		pool:  NewConnPool(),
		slots: make(chan struct{}, MaxConns),
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := listen(ctx, addr)
	if err != nil {
		return err
	}

	return s.Serve(listener)
}

// ListenAndServeTLS wraps the listener in TLS before any byte reaches the
// request decoder.
func (s *Server) ListenAndServeTLS(ctx context.Context, addr string, config *tls.Config) error {
	listener, err := listen(ctx, addr)
	if err != nil {
		return err
	}

	return s.Serve(tls.NewListener(listener, config))
}

func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.Logger.Info("starting web server", "name", s.Name, "addr", listener.Addr().String())

	for {
		// wait for a free context so surplus clients queue in the backlog
		s.slots <- struct{}{}

		conn, err := listener.Accept()
		if err != nil {
			<-s.slots
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			s.Logger.Warn("failed to accept connection", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			defer func() { <-s.slots }()
			s.ServeConn(conn)
		}()
	}
}

// Shutdown stops accepting and waits for open connections to finish or
// ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closed.Store(true)

	s.mu.Lock()
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeConn handles exactly one request on conn and closes it.
func (s *Server) ServeConn(conn net.Conn) {
	s.metricsOnce.Do(s.initMetrics)

	reqCtx, err := s.pool.Acquire()
	if err != nil {
		s.Logger.Warn("dropping connection", "remote", conn.RemoteAddr().String(), "error", err)
		conn.Close()
		return
	}
	defer s.pool.Release(reqCtx)

	reqCtx.Reset(conn)
	defer reqCtx.Close()

	if err := s.serveRecovered(reqCtx); err != nil {
		s.logAbort(reqCtx, err)
	}
}

// serveRecovered turns a panic anywhere in the exchange, including a
// producer panicking while the body is written, into ErrHandlerPanic.
func (s *Server) serveRecovered(reqCtx *RequestCtx) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.Wrapf(ErrHandlerPanic, "%v", recovered)
		}
	}()

	return s.serve(reqCtx)
}

func (s *Server) serve(reqCtx *RequestCtx) error {
	start := time.Now()
	if s.ReadTimeout > 0 {
		reqCtx.Conn.SetReadDeadline(start.Add(s.ReadTimeout))
	}

	req := &Request{}
	if err := req.readRequestLine(reqCtx.ConnReader); err != nil {
		return err
	}

	reqCtx.State = StateAwaitHeaders
	if err := req.readHeaders(reqCtx.ConnReader); err != nil {
		return err
	}

	reqCtx.State = StateAwaitBody
	if err := req.readBody(reqCtx.ConnReader); err != nil {
		return err
	}
	reqCtx.Request = req

	reqCtx.State = StateRouted
	handler, route := s.Router.Resolve(req)

	spanName := req.Method
	if route != nil {
		spanName = req.Method + " " + route.Pattern
	}
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), propagation.MapCarrier(req.Headers))
	ctx, span := s.Tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("wrangler.conn.id", reqCtx.ID.String()),
		),
	)
	defer span.End()
	req.ctx = ctx

	res, err := callHandler(handler, req)
	if err != nil {
		span.RecordError(err)
		return err
	}
	reqCtx.Response = res

	reqCtx.State = StateResponding
	written, err := res.WriteTo(reqCtx.ConnWriter)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "writing response")
	}

	if err := reqCtx.Close(); err != nil {
		s.Logger.DebugContext(ctx, "closing connection", "conn", reqCtx.ID.String(), "error", err)
	}

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
	s.metrics.record(ctx, req.Method, res.Status, elapsed)

	s.Logger.InfoContext(ctx, fmt.Sprintf("> %s %s (%d %s) [%dms]", req.Method, req.Path, res.Status, StatusText(res.Status), elapsed.Milliseconds()),
		"conn", reqCtx.ID.String(),
		"method", req.Method,
		"path", req.Path,
		"status", res.Status,
		"elapsed_ms", elapsed.Milliseconds(),
		"size", bytefmt.ByteSize(uint64(written)),
	)

	return nil
}

// callHandler runs handler and normalizes its result. A panic is reported
// as an error so the connection is aborted like a protocol error.
func callHandler(handler Handler, req *Request) (res *Response, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			res = nil
			err = errors.Wrapf(ErrHandlerPanic, "%v", recovered)
		}
	}()

	return Normalize(handler(req))
}

func (s *Server) logAbort(reqCtx *RequestCtx, err error) {
	attrs := []any{
		"conn", reqCtx.ID.String(),
		"state", reqCtx.State.String(),
		"error", err,
	}

	switch {
	case reqCtx.State == StateAwaitRequestLine && errors.Is(err, io.EOF):
		s.Logger.Debug("connection closed before request", attrs...)
	case errors.Is(err, ErrHandlerPanic), errors.Is(err, ErrEmptyResult):
		s.Logger.Error("handler fault, aborting connection", attrs...)
	default:
		s.Logger.Warn("aborting connection", attrs...)
	}
}
