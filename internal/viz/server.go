package viz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlgraph/internal/engine"
	"github.com/leapstack-labs/sqlgraph/internal/graph"
	"github.com/leapstack-labs/sqlgraph/internal/style"
)

// debounce window for filesystem events
const rebuildDebounce = 100 * time.Millisecond

// Config holds viz server configuration.
type Config struct {
	Engine       *engine.Engine
	Rules        []style.Rule
	RootArtifact string
	Mode         graph.Mode
	GraphType    string
	Port         int
	Watch        bool
	Logger       *slog.Logger
}

// Server serves the rendered graph document and optionally watches the SQL
// directory, re-deriving the graph and pushing a reload to connected
// browsers on every change.
type Server struct {
	engine    *engine.Engine
	resolver  *style.Resolver
	rules     []style.Rule
	root      string
	mode      graph.Mode
	graphType string
	port      int
	watch     bool
	logger    *slog.Logger

	mu          sync.RWMutex
	currentHTML []byte

	clientsMu sync.Mutex
	clients   map[chan struct{}]struct{}
}

// NewServer creates a viz server. The style rules are compiled up front so
// invalid patterns fail before the server starts.
func NewServer(cfg Config) (*Server, error) {
	resolver, err := style.NewResolver(cfg.Rules)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Server{
		engine:    cfg.Engine,
		resolver:  resolver,
		rules:     cfg.Rules,
		root:      cfg.RootArtifact,
		mode:      cfg.Mode,
		graphType: cfg.GraphType,
		port:      cfg.Port,
		watch:     cfg.Watch,
		logger:    logger,
		clients:   make(map[chan struct{}]struct{}),
	}, nil
}

// Serve renders the initial page and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.rebuild(false); err != nil {
		return fmt.Errorf("initial render failed: %w", err)
	}

	r := chi.NewMux()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/events", s.handleSSE)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("viz server running", "url", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// rebuild re-derives the graph (when rediscover is set) and renders the
// page into currentHTML.
func (s *Server) rebuild(rediscover bool) error {
	if rediscover || s.engine.Graph() == nil {
		if _, err := s.engine.Discover(); err != nil {
			return err
		}
	}

	g, err := s.engine.Graph().Select(s.root, s.mode)
	if err != nil {
		return err
	}

	elementsJSON, err := json.Marshal(Elements(g, s.resolver, s.root))
	if err != nil {
		return fmt.Errorf("failed to marshal elements: %w", err)
	}
	stylesheetJSON, err := json.Marshal(Stylesheet(s.rules, s.mode))
	if err != nil {
		return fmt.Errorf("failed to marshal stylesheet: %w", err)
	}

	tmpl, err := template.New("viz").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	title := "sqlgraph"
	if s.root != "" {
		title = fmt.Sprintf("sqlgraph - %s (%s)", s.root, s.mode)
	}

	data := templateData{
		Title:          title,
		ElementsJSON:   template.JS(elementsJSON),   //nolint:gosec // G203: marshaled from typed structs
		StylesheetJSON: template.JS(stylesheetJSON), //nolint:gosec // G203: marshaled from typed structs
		Layout:         LayoutName(s.graphType, s.root),
		LiveReload:     s.watch,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	s.mu.Lock()
	s.currentHTML = buf.Bytes()
	s.mu.Unlock()
	return nil
}

// handleIndex serves the current HTML.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	html := s.currentHTML
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(html)
}

// handleSSE streams reload events to the browser.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan struct{}, 1)
	s.clientsMu.Lock()
	s.clients[ch] = struct{}{}
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, ch)
		s.clientsMu.Unlock()
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			fmt.Fprint(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// notifyClients pushes a reload event to every connected browser.
func (s *Server) notifyClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// watchFiles watches the SQL directory and rebuilds on .sql changes.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.engine.SQLDir()); err != nil {
		return fmt.Errorf("failed to watch sql dir: %w", err)
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".sql" {
				// New directories must also be watched.
				if event.Op&fsnotify.Create != 0 {
					if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
						_ = watchDirRecursive(watcher, event.Name)
					}
				}
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(rebuildDebounce, func() {
				s.logger.Debug("change detected", "file", filepath.Base(event.Name))
				if err := s.rebuild(true); err != nil {
					// Keep serving the last good page while the user fixes
					// the offending file.
					s.logger.Error("rebuild failed", "error", err)
					return
				}
				s.notifyClients()
			})

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", werr)
		}
	}
}

// watchDirRecursive adds a directory tree to the watcher, skipping hidden
// directories.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
