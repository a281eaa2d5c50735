package inspect

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
)

// maxBodySize limits PUT /state and POST /dispatch bodies.
const maxBodySize = 1 << 20

// Server serves one store.
type Server[T any] struct {
	store  *store.Store[T]
	opts   options
	logger *slog.Logger
	router chi.Router

	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// New creates an inspector for s.
func New[T any](s *store.Store[T], opts ...Option) *Server[T] {
	o := options{
		logger:       slog.Default(),
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	srv := &Server[T]{
		store:  s,
		opts:   o,
		logger: o.logger.With("component", "inspect", "store", s.Name()),
		conns:  make(map[*websocket.Conn]struct{}),
	}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     srv.checkOrigin,
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server[T]) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/state", s.handleGetState)
	r.Put("/state", s.handlePutState)
	r.Post("/dispatch", s.handleDispatch)
	r.Get("/watch", s.handleWatch)
	if s.opts.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the inspector's HTTP handler.
func (s *Server[T]) Handler() http.Handler {
	return s.router
}

// Watchers returns the number of open /watch connections.
func (s *Server[T]) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close closes every open /watch connection and refuses new ones.
// http.Server.Shutdown does not close hijacked connections, so call Close
// after it.
func (s *Server[T]) Close() {
	s.mu.Lock()
	s.closed = true
	conns := s.conns
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	for conn := range conns {
		conn.Close()
	}
}

func (s *Server[T]) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Get())
}

func (s *Server[T]) handlePutState(w http.ResponseWriter, r *http.Request) {
	var next T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.store.Set(next)
	s.logger.Debug("state replaced", "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server[T]) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if s.opts.dispatch == nil {
		writeError(w, http.StatusNotImplemented, errors.New("S001").
			WithDetail("This inspector was started without a dispatcher."))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.opts.dispatch(json.RawMessage(body)); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// checkOrigin allows configured origins, or same-origin requests when none
// are configured.
func (s *Server[T]) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.opts.allowOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return r.Host != "" && u.Host == r.Host
	}
	for _, allowed := range s.opts.allowOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server[T]) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server[T]) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// DispatchJSON adapts a reducer store for WithDispatch. The request body is
// decoded into an A and dispatched.
func DispatchJSON[T, A any](s *store.ReducerStore[T, A]) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var action A
		if err := json.Unmarshal(raw, &action); err != nil {
			return err
		}
		s.Dispatch(action)
		return nil
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: err.Error()}
	if se, ok := err.(*errors.StoreError); ok {
		body.Error = se.Message
		body.Code = se.Code
		body.Detail = se.Detail
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
