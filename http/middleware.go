package http

import (
	"fmt"
	"log/slog"
)

type Middleware func(next Handler) Handler

// RecoverMiddleware answers with a 500 instead of letting a panicking
// handler abort the connection.
func RecoverMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *Request) (result Result) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("handler panicked", "path", req.Path, "panic", fmt.Sprint(recovered))

					result = Text("something went wrong").WithStatus(StatusInternalServerError)
				}
			}()

			return next(req)
		}
	}
}

// HeaderMiddleware sets a header on every response produced by next.
func HeaderMiddleware(name, value string) Middleware {
	return func(next Handler) Handler {
		return func(req *Request) Result {
			result := next(req)
			res, err := Normalize(result)
			if err != nil {
				return result
			}

			res.Headers.Set(name, value)
			return Respond(res)
		}
	}
}
