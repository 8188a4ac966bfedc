package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vberrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/middleware"
	"github.com/vango-dev/vbind/pkg/render"
	"github.com/vango-dev/vbind/pkg/scope"
	"github.com/vango-dev/vbind/pkg/snapshot"
	"github.com/vango-dev/vbind/pkg/vdom"
)

// maxBody limits request bodies.
const maxBody = 1 << 20

// Config configures a Server.
type Config struct {
	// Addr is the listen address used by ListenAndServe.
	Addr string

	// Title is the page title of GET /.
	Title string

	// Logger receives request and push diagnostics.
	// Default: slog.Default()
	Logger *slog.Logger

	// Gatherer enables GET /metrics when non-nil.
	Gatherer prometheus.Gatherer

	// Registerer receives HTTP request metrics when non-nil.
	Registerer prometheus.Registerer
}

// Server serves a mounted component tree.
type Server struct {
	config Config
	logger *slog.Logger

	mu       sync.Mutex
	engine   *scope.Engine
	root     *scope.Component
	doc      *vdom.Node
	renderer *render.Renderer

	hub    *LiveHub
	router chi.Router
}

// New creates a server for root, mounted in doc by engine.
func New(engine *scope.Engine, root *scope.Component, doc *vdom.Node, config Config) *Server {
	s := &Server{
		config:   config,
		logger:   config.Logger,
		engine:   engine,
		root:     root,
		doc:      doc,
		renderer: render.NewRenderer(render.RendererConfig{}),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.config.Title == "" {
		s.config.Title = "vbind"
	}
	s.hub = NewLiveHub(s.greet, s.handleLive)
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the live socket hub.
func (s *Server) Hub() *LiveHub {
	return s.hub
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.OpenTelemetry())
	if s.config.Registerer != nil {
		r.Use(middleware.Prometheus(middleware.WithRegistry(s.config.Registerer)))
	}

	r.Get("/", s.handlePage)
	r.Get("/fragment", s.handleFragment)
	r.Get("/data", s.handleGetData)
	r.Post("/data", s.handleSetData)
	r.Post("/events/{type}", s.handleEvent)
	r.Get("/snapshot", s.handleGetSnapshot)
	r.Post("/snapshot", s.handleRestoreSnapshot)
	r.Handle("/live", s.hub)
	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// logRequests logs every request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// Update runs fn against the root under the server lock, drains deferred
// work, and pushes the new markup to live clients.
func (s *Server) Update(fn func(root *scope.Component) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.root)
	s.engine.Drain()
	s.pushLocked()
	return err
}

// HTML returns the rendered root markup.
func (s *Server) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.htmlLocked()
}

func (s *Server) htmlLocked() string {
	out, err := s.renderer.RenderToString(s.doc)
	if err != nil {
		s.logger.Warn("render failed", "error", err)
	}
	return out
}

func (s *Server) pushLocked() {
	if s.hub.ClientCount() == 0 {
		return
	}
	s.hub.Broadcast(LiveMessage{Type: LiveTypeHTML, HTML: s.htmlLocked()})
}

func (s *Server) greet() []LiveMessage {
	return []LiveMessage{{Type: LiveTypeHTML, HTML: s.HTML()}}
}

func (s *Server) handleLive(id string, msg LiveMessage) {
	var err error
	switch msg.Type {
	case LiveTypeEvent:
		err = s.Update(func(root *scope.Component) error {
			root.Broadcast(msg.Event, msg.Args...)
			return nil
		})
	case LiveTypeSet:
		err = s.Update(func(root *scope.Component) error {
			return root.SetData(msg.Path, msg.Value)
		})
	default:
		err = fmt.Errorf("unsupported message type %q", msg.Type)
	}
	if err != nil {
		s.logger.Debug("live message failed", "client", id, "type", msg.Type, "error", err)
		s.hub.send(id, LiveMessage{Type: LiveTypeError, Error: err.Error()})
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n<div id=\"vbind-root\">%s</div>\n%s</body>\n</html>\n",
		html.EscapeString(s.config.Title), s.HTML(), LiveClientScript)
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, s.HTML())
}

type dataBody struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing path"))
		return
	}
	s.mu.Lock()
	v := s.root.Data(path)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, dataBody{Path: path, Value: v})
}

func (s *Server) handleSetData(w http.ResponseWriter, r *http.Request) {
	var body dataBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err := s.Update(func(root *scope.Component) error {
		return root.SetData(body.Path, body.Value)
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	var args []any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	s.Update(func(root *scope.Component) error {
		root.Broadcast(typ, args...)
		return nil
	})
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := snapshot.Encode(s.root)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.Write(data)
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var res snapshot.Result
	err = s.Update(func(root *scope.Component) error {
		var err error
		res, err = snapshot.Restore(root, snap)
		return err
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListenAndServe serves on config.Addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", s.config.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: err.Error()}
	var ve *vberrors.Error
	if errors.As(err, &ve) {
		body.Code = ve.Code
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
