package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel applies to requests without an override.
var defaultLogLevel = parseLevel(os.Getenv("LLMSETTINGS_HTTP_LOG_LEVEL"))

// SetDefaultLogLevel sets the request log level used when a request carries
// no override. Accepts off, error, info or debug.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestLogger logs request start (debug) and end. Error responses are
// logged from LevelError, every response from LevelInfo.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := requestLogLevel(r)
		if lvl == LevelOff {
			next.ServeHTTP(w, r)
			return
		}
		rid := middleware.GetReqID(r.Context())
		if lvl >= LevelDebug {
			logLine(rid, "request start", r.Method, r.URL.Path, 0, 0)
		}
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		if lvl >= LevelInfo || sr.status >= http.StatusBadRequest {
			logLine(rid, "request end", r.Method, r.URL.Path, sr.status, time.Since(start))
		}
	})
}

func logLine(rid, msg, method, path string, status int, dur time.Duration) {
	if zlog == nil {
		log.Printf("%s method=%s path=%s status=%d dur=%s request_id=%s", msg, method, path, status, dur, rid)
		return
	}
	z := zlog.Info().Str("method", method).Str("path", path)
	if status != 0 {
		z = z.Int("status", status).Dur("dur", dur)
	}
	if rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg(msg)
}
