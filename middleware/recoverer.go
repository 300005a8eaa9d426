package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a JSON 500 that carries the request ID
// and logs the stack trace. If the handler already started its response, the
// panic is only logged.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &headerTracker{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := GetRequestIDFromContext(r.Context())
				logger.Error("panic recovered",
					zap.String("request_id", requestID),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(rec)),
					zap.Bool("response_started", tw.wroteHeader),
					zap.ByteString("stack", debug.Stack()))

				if tw.wroteHeader {
					return
				}
				_ = utils.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred", map[string]interface{}{
					"request_id": requestID,
				})
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// headerTracker records whether the response status line has been sent
type headerTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerTracker) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerTracker) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *headerTracker) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
