package http

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	nethttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/freekieb7/wrangler/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(logs io.Writer) *Server {
	srv := NewServer("test")
	if logs == nil {
		logs = io.Discard
	}
	srv.Logger = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return srv
}

// roundTrip sends raw over a loopback connection, half-closes it and
// returns everything the server wrote before closing its side.
func roundTrip(t *testing.T, srv *Server, raw string) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		srv.ServeConn(conn)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// the server may hang up before reading everything
	conn.Write([]byte(raw))
	conn.(*net.TCPConn).CloseWrite()

	out, _ := io.ReadAll(conn)
	<-done

	return string(out)
}

func TestServeConnRoutesWithParams(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.GET("/items/<id>", func(req *Request) Result {
		return Text("item " + req.Params["id"] + " " + req.Query["x"])
	})

	out := roundTrip(t, srv, "GET /items/42?x=1 HTTP/1.1\r\nHost: localhost\r\n\r\n")

	test.AssertEqual(t, "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: 9\r\n\r\nitem 42 1", out)
}

func TestServeConnIsReadableByNetHTTP(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.GET("/are/you/a/teapot", func(req *Request) Result {
		return Text("Yes").WithStatus(StatusTeapot).WithContentType("text/plain")
	})

	out := roundTrip(t, srv, "GET /are/you/a/teapot HTTP/1.1\r\n\r\n")

	resp, err := nethttp.ReadResponse(bufio.NewReader(strings.NewReader(out)), nil)
	if err != nil {
		t.Fatalf("net/http could not read the response: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	test.AssertEqual(t, 418, resp.StatusCode)
	test.AssertEqual(t, "text/plain", resp.Header.Get("Content-Type"))
	test.AssertEqual(t, int64(3), resp.ContentLength)
	test.AssertEqual(t, "Yes", string(body))
}

func TestServeConnNotFound(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.GET("/basic", named("basic"))

	out := roundTrip(t, srv, "GET /missing HTTP/1.1\r\n\r\n")

	test.AssertEqual(t, "HTTP/1.1 404 Not Found\r\nContent-Type: text/html\r\nContent-Length: 9\r\n\r\nNot Found", out)
}

func TestServeConnCatchall(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.Catchall(func(req *Request) Result {
		return Text("nothing at " + req.Path).WithStatus(StatusNotFound)
	})

	out := roundTrip(t, srv, "GET /missing HTTP/1.1\r\n\r\n")

	test.AssertTrue(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n"), out)
	test.AssertTrue(t, strings.HasSuffix(out, "\r\n\r\nnothing at /missing"), out)
}

func TestServeConnMethodMismatch(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.POST("/submit", named("submit"))

	out := roundTrip(t, srv, "GET /submit HTTP/1.1\r\n\r\n")

	test.AssertTrue(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n"), out)
}

func TestServeConnPostJSON(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.POST("/echo", func(req *Request) Result {
		data, ok := req.Data.(map[string]any)
		if !ok {
			return Text("not an object").WithStatus(StatusBadRequest)
		}
		if data["a"] != float64(1) {
			return Text("wrong value").WithStatus(StatusBadRequest)
		}
		return Text("ok")
	})

	body := `{"a":1}`
	out := roundTrip(t, srv, "POST /echo HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: 7\r\n\r\n"+body)

	test.AssertTrue(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"), out)
}

func TestServeConnStream(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.GET("/stream", func(req *Request) Result {
		return Stream(Chunks([]byte("a"), []byte("b"), []byte("c")))
	})

	out := roundTrip(t, srv, "GET /stream HTTP/1.1\r\n\r\n")

	test.AssertEqual(t, "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\nabc", out)
}

func TestServeConnAbortsWithoutResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed request line", "GARBAGE\r\n\r\n"},
		{"malformed header", "GET / HTTP/1.1\r\nBadHeader\r\n\r\n"},
		{"truncated head", "GET / HTTP/1.1\r\nHost: x"},
		{"empty connection", ""},
		{"invalid json", "POST / HTTP/1.1\r\nContent-Type: application/json\r\nContent-Length: 2\r\n\r\n{x"},
		{"handler panic", "GET /panic HTTP/1.1\r\n\r\n"},
		{"empty result", "GET /empty HTTP/1.1\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil)
			srv.Router.GET("/panic", func(req *Request) Result {
				panic("boom")
			})
			srv.Router.GET("/empty", func(req *Request) Result {
				return Result{}
			})
			srv.Router.POST("/", named("unreachable"))

			test.AssertEqual(t, "", roundTrip(t, srv, tt.raw))
		})
	}
}

func TestServeConnHandlerFaultIsLogged(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(&logs)
	srv.Router.GET("/panic", func(req *Request) Result {
		panic("boom")
	})

	roundTrip(t, srv, "GET /panic HTTP/1.1\r\n\r\n")

	test.AssertTrue(t, strings.Contains(logs.String(), "handler fault"), logs.String())
	test.AssertTrue(t, strings.Contains(logs.String(), "state=routed"), logs.String())
}

func TestServeConnLogsRequest(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(&logs)
	srv.Router.GET("/items/<id>", named("item"))

	roundTrip(t, srv, "GET /items/42 HTTP/1.1\r\n\r\n")

	line := logs.String()
	for _, want := range []string{"> GET /items/42 (200 OK)", "method=GET", "path=/items/42", "status=200", "elapsed_ms="} {
		test.AssertTrue(t, strings.Contains(line, want), "missing "+want+" in "+line)
	}
}

func TestServeConnReadTimeout(t *testing.T) {
	srv := newTestServer(nil)
	srv.ReadTimeout = 50 * time.Millisecond

	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.ServeConn(serverConn)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stalled client was not dropped")
	}
}

func TestServeConnProducerPanic(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(&logs)
	srv.Router.GET("/stream", func(req *Request) Result {
		return Stream(ProducerFunc(func() ([]byte, error) {
			panic("boom")
		}))
	})

	test.AssertEqual(t, "", roundTrip(t, srv, "GET /stream HTTP/1.1\r\n\r\n"))
	test.AssertTrue(t, strings.Contains(logs.String(), "handler fault"), logs.String())
	test.AssertTrue(t, strings.Contains(logs.String(), "state=responding"), logs.String())

	// the server keeps serving after the fault
	srv.Router.GET("/ok", named("ok"))
	out := roundTrip(t, srv, "GET /ok HTTP/1.1\r\n\r\n")
	test.AssertTrue(t, strings.HasSuffix(out, "\r\n\r\nok"), out)
}

func TestServeQueuesWhenPoolIsBusy(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.GET("/", named("root"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go srv.Serve(listener)
	defer srv.Shutdown(context.Background())

	idle := make([]net.Conn, 0, MaxConns)
	for i := 0; i < MaxConns; i++ {
		conn, err := net.Dial("tcp", listener.Addr().String())
		if err != nil {
			t.Fatal(err)
		}
		idle = append(idle, conn)
	}
	defer func() {
		for _, conn := range idle {
			conn.Close()
		}
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := conn.Write([]byte("GET / HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatal(err)
	}
	conn.(*net.TCPConn).CloseWrite()

	// one idle client leaving frees a context for the queued one
	idle[0].Close()

	out, err := io.ReadAll(conn)
	test.AssertNoError(t, err)
	test.AssertTrue(t, strings.HasPrefix(string(out), "HTTP/1.1 200 OK\r\n"), string(out))
	test.AssertTrue(t, strings.HasSuffix(string(out), "\r\n\r\nroot"), string(out))
}

// ServeConn called directly, outside Serve, still refuses when no context
// is free.
func TestServeConnPoolExhausted(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.GET("/", named("root"))

	for i := 0; i < MaxConns; i++ {
		if _, err := srv.pool.Acquire(); err != nil {
			t.Fatal(err)
		}
	}

	test.AssertEqual(t, "", roundTrip(t, srv, "GET / HTTP/1.1\r\n\r\n"))
}

func TestServeAndShutdown(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router.GET("/", named("root"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(listener)
	}()

	resp, err := nethttp.Get("http://" + listener.Addr().String() + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	test.AssertEqual(t, "root", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	test.AssertNoError(t, srv.Shutdown(ctx))
	test.AssertErrorIs(t, <-served, ErrServerClosed)
}

func BenchmarkServeConn(b *testing.B) {
	srv := NewServer("bench")
	srv.Logger = discardLogger()
	srv.Router.GET("/", func(req *Request) Result {
		return Text("OK")
	})

	reqStr := []byte("GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")

	for b.Loop() {
		serverConn, clientConn := net.Pipe()
		go srv.ServeConn(serverConn)

		if _, err := clientConn.Write(reqStr); err != nil {
			b.Fatalf("write error: %v", err)
		}
		resp, err := nethttp.ReadResponse(bufio.NewReader(clientConn), nil)
		if err != nil {
			b.Fatalf("read error: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		clientConn.Close()
	}
}
