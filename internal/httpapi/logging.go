package httpapi

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer. Nop until SetLogger is called.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

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

// global default, read once
var defaultLogLevel = func() LogLevel {
	if v, ok := os.LookupEnv("LLMCHAT_REQUEST_LOG"); ok {
		return parseLevel(v)
	}
	return LevelInfo
}()

// SetRequestLogLevel changes the default per-request log level.
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
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

// logEvent returns an event tagged with the request id, or a disabled event when the
// request's level is below min.
func logEvent(r *http.Request, lvl, min LogLevel) *zerolog.Event {
	if lvl < min {
		return nil
	}
	var ev *zerolog.Event
	switch min {
	case LevelDebug:
		ev = zlog.Debug()
	case LevelError:
		ev = zlog.Error()
	default:
		ev = zlog.Info()
	}
	ev = ev.Str("path", r.URL.Path)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	return ev
}
