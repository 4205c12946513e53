package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"

	"github.com/freekieb7/wrangler/filesystem"
	"github.com/freekieb7/wrangler/http"
	"github.com/freekieb7/wrangler/session"
	"github.com/freekieb7/wrangler/session/storage"
	"github.com/freekieb7/wrangler/telemetry"
	"github.com/freekieb7/wrangler/template"
	"github.com/freekieb7/wrangler/validation"
	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const name = "github.com/freekieb7/wrangler/example"

var (
	tracer  = otel.Tracer(name)
	meter   = otel.Meter(name)
	rollCnt metric.Int64Counter
)

func init() {
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		os.Setenv("OTEL_SERVICE_NAME", "wrangler-example")
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	}

	var err error
	rollCnt, err = meter.Int64Counter("dice.rolls",
		metric.WithDescription("The number of rolls by roll value"),
		metric.WithUnit("{roll}"))
	if err != nil {
		panic(err)
	}
}

type options struct {
	addr    string
	root    string
	tlsCert string
	tlsKey  string
	debug   bool
}

func parseFlags(args []string) options {
	opts := options{addr: "0.0.0.0:8080", root: "."}

	flagSet := getopt.New()
	flagSet.SetParameters("")
	flagSet.StringVarLong(&opts.addr, "addr", 'a', "address to listen on")
	flagSet.StringVarLong(&opts.root, "root", 'r', "directory holding templates and static files")
	flagSet.StringVarLong(&opts.tlsCert, "tls-cert", 0, "PEM certificate, enables TLS together with --tls-key")
	flagSet.StringVarLong(&opts.tlsKey, "tls-key", 0, "PEM private key")
	flagSet.BoolVarLong(&opts.debug, "debug", 'd', "log debug records")
	flagSet.Parse(args)

	return opts
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	opts := parseFlags(os.Args)

	shutdownTelemetry, err := telemetry.Setup(ctx)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	var console io.Writer
	if isatty.IsTerminal(os.Stdout.Fd()) {
		console = os.Stdout
	}
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := telemetry.NewLogger(name, console, level)

	fs := filesystem.NewLocalFileSystem(opts.root)
	renderer := template.NewRenderer(fs)
	renderer.Logger = logger

	server := http.NewServer("wrangler")
	server.Logger = logger
	server.Router.Middleware = append(server.Router.Middleware, http.HeaderMiddleware("Server", "wrangler"))
	registerRoutes(&server.Router, fs, renderer, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if opts.tlsCert != "" && opts.tlsKey != "" {
			cert, err := tls.LoadX509KeyPair(opts.tlsCert, opts.tlsKey)
			if err != nil {
				serverErrCh <- err
				return
			}
			serverErrCh <- server.ListenAndServeTLS(ctx, opts.addr, &tls.Config{Certificates: []tls.Certificate{cert}})
			return
		}
		serverErrCh <- server.ListenAndServe(ctx, opts.addr)
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
		stop()
	}

	return server.Shutdown(context.Background())
}

func registerRoutes(router *http.Router, fs filesystem.Filesystem, renderer *template.Renderer, logger *slog.Logger) {
	// basic response with status code and content type
	router.Any([]string{http.MethodGet, http.MethodPost}, "/basic", func(req *http.Request) http.Result {
		return http.Tuple(http.TextBody("Gosh, a request")).WithStatus(http.StatusOK).WithContentType("text/html")
	})

	router.Any([]string{http.MethodGet, http.MethodPost}, "/status-code", func(req *http.Request) http.Result {
		return http.Tuple(http.TextBody("Here, have a status code")).WithStatus(http.StatusOK)
	})

	// url parameter and template render
	router.GET("/hello/<name>", func(req *http.Request) http.Result {
		stream, err := renderer.Render("example.html", map[string]string{"name": req.Params["name"]})
		if err != nil {
			logger.Warn("rendering template", "error", err)
			return http.Text("template missing").WithStatus(http.StatusInternalServerError)
		}
		return http.Stream(stream)
	})

	// response with custom status code
	router.GET("/are/you/a/teapot", func(req *http.Request) http.Result {
		return http.Text("Yes").WithStatus(http.StatusTeapot)
	})

	// custom response object
	router.GET("/response", func(req *http.Request) http.Result {
		res := http.NewResponse(http.StatusFound, http.TextBody("test body"))
		res.Headers.Set("Content-Type", "text/html")
		res.Headers.Set("Cache-Control", "max-age=3600")
		return http.Respond(res)
	})

	router.GET("/random", func(req *http.Request) http.Result {
		violations := validation.ValidateFields(req.Query, map[string][]string{
			"min": {"integer", "min:0"},
			"max": {"integer", "max:1000000"},
		})
		if !violations.IsEmpty() {
			body, _ := json.Marshal(violations)
			return http.Bytes(body).WithStatus(http.StatusBadRequest).WithContentType("application/json")
		}

		low, _ := strconv.Atoi(req.Query["min"])
		high, err := strconv.Atoi(req.Query["max"])
		if err != nil {
			high = 100
		}
		if high < low {
			return http.Text("max must not be below min").WithStatus(http.StatusBadRequest)
		}
		return http.Text(strconv.Itoa(low + rand.Intn(high-low+1)))
	})

	router.GET("/roll", func(req *http.Request) http.Result {
		spanCtx, span := tracer.Start(req.Context(), "roll")
		defer span.End()

		roll := 1 + rand.Intn(6)
		logger.InfoContext(spanCtx, "Anonymous player is rolling the dice", "result", roll)

		rollValueAttr := attribute.Int("roll.value", roll)
		span.SetAttributes(rollValueAttr)
		rollCnt.Add(spanCtx, 1, metric.WithAttributes(rollValueAttr))

		return http.Text(strconv.Itoa(roll) + "\n").WithContentType("text/plain")
	})

	// echo submitted form or json fields back
	router.POST("/echo", func(req *http.Request) http.Result {
		payload := any(req.Form)
		if req.Data != nil {
			payload = req.Data
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return http.Text(err.Error()).WithStatus(http.StatusBadRequest)
		}
		return http.Bytes(body).WithContentType("application/json")
	})

	// lazily produced body, no content-length
	router.GET("/count/<n>", func(req *http.Request) http.Result {
		n, err := strconv.Atoi(req.Params["n"])
		if err != nil || n < 0 {
			return http.Text("not a count").WithStatus(http.StatusBadRequest)
		}

		var lines iter.Seq[[]byte] = func(yield func([]byte) bool) {
			for i := 1; i <= n; i++ {
				if !yield([]byte(fmt.Sprintf("%d\n", i))) {
					return
				}
			}
		}
		return http.Stream(http.FromSeq(lines)).WithContentType("text/plain")
	})

	// visit counter kept in a server side session
	sessions := session.NewManager(storage.NewMemorySessionStore())
	router.GET("/visits", func(req *http.Request) http.Result {
		sess, err := sessions.Start(req)
		if err != nil {
			logger.Warn("starting session", "error", err)
			return http.Text("no session").WithStatus(http.StatusInternalServerError)
		}

		visits := sess.Get("visits", 0).(int) + 1
		sess.Set("visits", visits)

		res := http.NewResponse(http.StatusOK, http.TextBody(fmt.Sprintf("visit number %d\n", visits)))
		res.Headers.Set("Content-Type", "text/plain")
		if err := sessions.Commit(res, sess); err != nil {
			logger.Warn("saving session", "error", err)
		}
		return http.Respond(res)
	})

	router.GET("/logout", func(req *http.Request) http.Result {
		res := http.NewResponse(http.StatusOK, http.TextBody("bye\n"))
		if sess, err := sessions.Start(req); err == nil && !sess.IsNew() {
			if err := sessions.Destroy(res, sess); err != nil {
				logger.Warn("destroying session", "error", err)
			}
		}
		return http.Respond(res)
	})

	router.GET("/old", func(req *http.Request) http.Result {
		return http.Redirect("/basic", http.StatusMovedPermanently)
	})

	// static files, otherwise not found
	router.Catchall(func(req *http.Request) http.Result {
		if isFile, _ := fs.IsFile(req.Path); isFile {
			return http.ServeFile(fs, req.Path)
		}
		return http.Text("Not found").WithStatus(http.StatusNotFound)
	})
}
