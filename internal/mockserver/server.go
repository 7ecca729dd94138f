// Package mockserver is a stand-in inference server speaking the v2 health
// and repository surface the harness client expects. Tests mount it with
// httptest; `nbharness mock serve` runs it as a real process so the readiness
// runner can be exercised end to end without a GPU stack.
package mockserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options configures the mock server. ReadyAfter delays readiness so the
// poll loop has something to wait for.
type Options struct {
	ReadyAfter time.Duration
	Logger     zerolog.Logger
}

// Server implements http.Handler.
type Server struct {
	opts    Options
	router  chi.Router
	started time.Time

	mu     sync.Mutex
	loaded map[string]bool
}

// New returns a mock server handler. The readiness clock starts now.
func New(opts Options) *Server {
	s := &Server{
		opts:    opts,
		started: time.Now(),
		loaded:  make(map[string]bool),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))
	r.Get("/v2/health/live", s.handleLive)
	r.Get("/v2/health/ready", s.handleReady)
	r.Post("/v2/repository/models/{model}/load", s.handleLoad)
	r.Post("/v2/repository/models/{model}/unload", s.handleUnload)
	r.Get("/v2/repository/index", s.handleIndex)
	r.Handle("/metrics", promhttp.Handler())
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) ready() bool {
	return time.Since(s.started) >= s.opts.ReadyAfter
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready() {
		readinessChecksTotal.WithLabelValues("unready").Inc()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	readinessChecksTotal.WithLabelValues("ready").Inc()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")
	s.mu.Lock()
	if !s.loaded[name] {
		s.loaded[name] = true
		loadedModels.Inc()
	}
	s.mu.Unlock()
	repositoryActionsTotal.WithLabelValues("load").Inc()
	s.opts.Logger.Info().Str("model", name).Msg("model loaded")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUnload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")
	s.mu.Lock()
	if s.loaded[name] {
		delete(s.loaded, name)
		loadedModels.Dec()
	}
	s.mu.Unlock()
	repositoryActionsTotal.WithLabelValues("unload").Inc()
	s.opts.Logger.Info().Str("model", name).Msg("model unloaded")
	w.WriteHeader(http.StatusOK)
}

type indexEntry struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	entries := make([]indexEntry, 0, len(s.loaded))
	for name := range s.loaded {
		entries = append(entries, indexEntry{Name: name, State: "READY"})
	}
	s.mu.Unlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

// LoadedModels returns the names currently marked loaded, sorted.
func (s *Server) LoadedModels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.loaded))
	for name := range s.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve runs the mock server at addr until ctx is canceled.
func Serve(ctx context.Context, addr string, opts Options) error {
	srv := &http.Server{Addr: addr, Handler: New(opts)}
	errCh := make(chan error, 1)
	go func() {
		opts.Logger.Info().Str("addr", addr).Dur("ready_after", opts.ReadyAfter).Msg("mock server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
