package http

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"expenselog/internal/core"
	applog "expenselog/internal/log"
	"expenselog/internal/middleware/security"
	"expenselog/internal/middleware/trace"
	"expenselog/internal/session"
	appweb "expenselog/web"
)

// Server serves the single-window UI over one session.
type Server struct {
	http.Server
	templates *template.Template
	session   *session.Session
	backdrop  []byte
}

// Options carries the optional parts of a Server.
type Options struct {
	// Backdrop is the PNG served at /backdrop. Nil disables it.
	Backdrop []byte
	Logger   *applog.Logger
}

var templateFuncs = template.FuncMap{
	"amount": core.FormatAmount,
	"total":  core.FormatTotal,
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, sess *session.Session, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		templates: t,
		session:   sess,
		backdrop:  opts.Backdrop,
	}

	// Static assets (served from embedded FS)
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		static.ServeHTTP(w, r)
	}))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /expenses", s.handleAdd)
	mux.HandleFunc("POST /view", s.handleView)
	mux.HandleFunc("GET /visualize", s.handleVisualize)
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("POST /save", s.handleSave)
	mux.HandleFunc("POST /reload", s.handleReload)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	mux.HandleFunc("GET /backdrop", s.handleBackdrop)
	mux.HandleFunc("GET /healthz", handleHealth)

	s.Handler = chain(mux,
		trace.Middleware,
		applog.Middleware(logger, trace.RequestID),
		applog.AccessLog,
		security.Headers(security.DefaultHeadersConfig()),
		security.SameOrigin,
	)
	return s, nil
}

// chain wraps h so that the first middleware runs first.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
