package http

import (
	"net/http"
	"time"

	"timed-quiz-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Service     *app.QuizService
	Log         logrus.FieldLogger
	CORSOrigins []string
}

// NewRouter wires health, websocket and REST endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", NewWSHandler(cfg.Service, cfg.Log).ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestLogger(requestLogFormatter{log: cfg.Log}))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Mount("/api/sessions", NewRESTHandler(cfg.Service, cfg.Log).Routes())
	})
	return r
}

// requestLogFormatter routes chi request logs through logrus.
type requestLogFormatter struct {
	log logrus.FieldLogger
}

func (f requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{log: f.log.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": middleware.GetReqID(r.Context()),
		"remote":     r.RemoteAddr,
	})}
}

type requestLogEntry struct {
	log logrus.FieldLogger
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.log.WithFields(logrus.Fields{
		"status":  status,
		"bytes":   bytes,
		"elapsed": elapsed.String(),
	}).Info("request handled")
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	e.log.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("request panicked")
}
