// Package server serves a generated output directory over HTTP for local
// preview.
package server

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
)

// indexDocuments are tried, in order, for directory requests.
var indexDocuments = []string{"index.html", "index.htm"}

// Options configures a Server.
type Options struct {
	// Port to listen on; 0 picks a free port.
	Port int
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	// Status, when set, drives the build error and pending pages.
	Status *BuildStatus
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves the output directory.
type Server struct {
	root   string
	opts   Options
	srv    *http.Server
	ln     net.Listener
	logger *slog.Logger
}

// New returns a Server for root. Call Start to begin listening.
func New(root string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{root: filepath.Clean(root), opts: opts, logger: logger}
}

// Handler returns the HTTP handler, wrapped in logging and recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics)
	}
	mux.Handle("/", noCache(http.HandlerFunc(s.serveSite)))
	return chain(s.logger, mux)
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to bind preview server").
			WithContext("port", s.opts.Port).
			Fatal().
			Build()
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Preview server stopped", logfields.Error(err))
		}
	}()
	s.logger.Info("Preview server listening", logfields.Addr(s.Addr()), logfields.Dir(s.root))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "preview server shutdown").Build()
	}
	return nil
}

func (s *Server) serveSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.opts.Status != nil {
		if good, buildErr := s.opts.Status.Status(); !good {
			if buildErr != nil {
				s.renderBuildErrorPage(w, buildErr)
				return
			}
			if r.URL.Path == "/" {
				s.renderBuildPendingPage(w)
				return
			}
		}
	}

	upath := path.Clean("/" + r.URL.Path)
	full := filepath.Join(s.root, filepath.FromSlash(upath))
	fi, err := os.Stat(full)
	if err == nil && fi.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		full, fi, err = s.resolveIndex(full)
	}
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(full)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = f.Close() }()
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// resolveIndex finds the default document of dir. A folder index written in
// "file" style (<folder>.html next to the folder) is used as a fallback.
func (s *Server) resolveIndex(dir string) (string, os.FileInfo, error) {
	candidates := make([]string, 0, len(indexDocuments)+1)
	for _, name := range indexDocuments {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	if dir != s.root {
		candidates = append(candidates, dir+".html")
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && fi.Mode().IsRegular() {
			return c, fi, nil
		}
	}
	return "", nil, os.ErrNotExist
}

func (s *Server) renderBuildErrorPage(w http.ResponseWriter, buildErr error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = fmt.Fprintf(w, `<!doctype html><html><head><meta charset="utf-8"><title>Build Failed</title></head>`+
		`<body><h1>Build Failed</h1><p>The site failed to generate. Fix the error below and save to regenerate.</p>`+
		`<pre>%s</pre></body></html>`, html.EscapeString(buildErr.Error()))
}

func (s *Server) renderBuildPendingPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = fmt.Fprint(w, `<!doctype html><html><head><meta charset="utf-8"><title>Site rendering</title></head>`+
		`<body><h1>Site is being generated</h1><p>Reload once the first pass completes.</p></body></html>`)
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
