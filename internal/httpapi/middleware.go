package httpapi

import (
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logzap "github.com/unkn0wn-root/scopecache/log/zap"
)

// LoggingContext attaches a request-scoped logger to the context. The cache
// logs through the same logger when it is configured with logzap.ZapLogger.
func LoggingContext(base *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			if id := chimw.GetReqID(r.Context()); id != "" {
				l = l.With(zap.String("request_id", id))
			}
			if r.RemoteAddr != "" {
				l = l.With(zap.String("remote_ip", r.RemoteAddr))
			}
			next.ServeHTTP(w, r.WithContext(logzap.WithLogger(r.Context(), l)))
		})
	}
}

// Recoverer turns a panic into a logged 500.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				loggerFrom(r).Error("panic recovered",
					zap.Any("error", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_server_error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize caps request bodies at n bytes.
func MaxBodySize(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loggerFrom(r *http.Request) *zap.Logger {
	if l := logzap.FromContext(r.Context()); l != nil {
		return l
	}
	return zap.NewNop()
}
