// Package api exposes the board over a local JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tgienger/kanban/internal/identity"
	"github.com/tgienger/kanban/internal/logging"
	"github.com/tgienger/kanban/internal/store"
)

// TokenValidator checks session tokens issued by the identity provider.
type TokenValidator interface {
	Validate(token string) (*identity.Claims, error)
}

// Options configures a Server.
type Options struct {
	Store *store.Store
	// Tokens validates bearer tokens. Required when RequireAuth is set.
	Tokens      TokenValidator
	RequireAuth bool
	Logger      *logrus.Logger
}

// Server handles API requests against one store.
type Server struct {
	store       *store.Store
	tokens      TokenValidator
	requireAuth bool
	log         *logrus.Logger

	// mu serializes mutations so each request reads back its own error.
	mu sync.Mutex
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	s := &Server{
		store:       opts.Store,
		tokens:      opts.Tokens,
		requireAuth: opts.RequireAuth,
		log:         opts.Logger,
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/api/health", s.health).Methods(http.MethodGet)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/login", s.login).Methods(http.MethodPost)
	auth.HandleFunc("/register", s.register).Methods(http.MethodPost)
	auth.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	auth.HandleFunc("/me", s.me).Methods(http.MethodGet)

	board := r.PathPrefix("/api").Subrouter()
	if s.requireAuth {
		board.Use(s.requireToken, s.matchSession)
	}
	board.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	board.HandleFunc("/tasks", s.createTask).Methods(http.MethodPost)
	board.HandleFunc("/tasks/{id}", s.getTask).Methods(http.MethodGet)
	board.HandleFunc("/tasks/{id}", s.updateTask).Methods(http.MethodPatch)
	board.HandleFunc("/tasks/{id}", s.deleteTask).Methods(http.MethodDelete)
	board.HandleFunc("/tasks/{id}/move", s.moveTask).Methods(http.MethodPost)
	board.HandleFunc("/tasks/{id}/toggle", s.toggleTask).Methods(http.MethodPost)
	board.HandleFunc("/tasks/{id}/subtasks", s.subtasks).Methods(http.MethodGet)
	board.HandleFunc("/tasks/{id}/tags", s.tagsForTask).Methods(http.MethodGet)
	board.HandleFunc("/tree", s.tree).Methods(http.MethodGet)
	board.HandleFunc("/tags", s.listTags).Methods(http.MethodGet)
	board.HandleFunc("/tags", s.createTag).Methods(http.MethodPost)
	board.HandleFunc("/tags/{id}", s.updateTag).Methods(http.MethodPatch)
	board.HandleFunc("/tags/{id}", s.deleteTag).Methods(http.MethodDelete)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Event ID: API_LISTENING, Description: serving on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Infof("Event ID: API_SHUTDOWN, Description: stopping %s", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// mutate runs fn with the store's error cleared and returns the error it
// recorded, if any.
func (s *Server) mutate(fn func()) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ClearError()
	fn()
	return s.store.Err()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithField("duration", time.Since(start)).Debugf("Event ID: API_REQUEST, Description: %s %s", r.Method, r.URL.Path)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// storeFailure maps a recorded store error to a response. Save failures
// are the server's fault; everything else is a bad request.
func storeFailure(w http.ResponseWriter, msg string) {
	status := http.StatusBadRequest
	if strings.HasPrefix(msg, "Failed to") {
		status = http.StatusInternalServerError
	}
	writeError(w, status, msg)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
