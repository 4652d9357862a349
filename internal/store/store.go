// Package store holds the board state: tasks, tags and the signed-in user.
//
// Every mutation runs under one lock and rewrites the whole state to a slot
// record before returning. Failures never escape as Go errors; they are
// recorded in the store's error field (see Err) and logged.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tgienger/kanban/internal/logging"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/slot"
)

// DefaultKey is the slot record holding the board state.
const DefaultKey = "task-manager-storage"

// IdentityProvider authenticates users on behalf of the store.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (models.Session, error)
	Register(ctx context.Context, username, email, password string) (models.Session, error)
}

// Options configures Open.
type Options struct {
	Slot slot.Slot
	// Key defaults to DefaultKey.
	Key string
	// Identity handles Login and Register. Without one both fail.
	Identity IdentityProvider
	Logger   *logrus.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
}

// state is the persisted blob.
type state struct {
	Tasks       []models.Task `json:"tasks"`
	Tags        []models.Tag  `json:"tags"`
	CurrentUser *models.User  `json:"currentUser"`
}

// Store is the in-process task and tag store.
type Store struct {
	mu       sync.RWMutex
	slot     slot.Slot
	key      string
	identity IdentityProvider
	log      *logrus.Logger
	now      func() time.Time
	newID    func() string

	tasks   []models.Task
	tags    []models.Tag
	user    *models.User
	token   string
	pending int // saves and identity calls in flight
	err     string
}

// Open loads the state saved under the configured key. A missing record
// yields an empty store.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Slot == nil {
		return nil, errors.New("store: slot is required")
	}
	s := &Store{
		slot:     opts.Slot,
		key:      opts.Key,
		identity: opts.Identity,
		log:      opts.Logger,
		now:      opts.Clock,
		newID:    opts.NewID,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	data, err := s.slot.Load(ctx, s.key)
	if errors.Is(err, slot.ErrNotFound) {
		s.log.Debugf("Event ID: STORE_EMPTY, Description: no record under %q", s.key)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.key, err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("loading %s: parsing: %w", s.key, err)
	}
	s.tasks = st.Tasks
	s.tags = st.Tags
	s.user = st.CurrentUser
	for i := range s.tasks {
		if s.tasks[i].TagIDs == nil {
			s.tasks[i].TagIDs = []string{}
		}
	}

	s.log.WithFields(logrus.Fields{
		"tasks": len(s.tasks),
		"tags":  len(s.tags),
	}).Debugf("Event ID: STORE_LOADED, Description: loaded %q", s.key)
	return s, nil
}

// save writes the whole state. Callers hold s.mu.
func (s *Store) save(ctx context.Context) error {
	st := state{Tasks: s.tasks, Tags: s.tags, CurrentUser: s.user}
	if st.Tasks == nil {
		st.Tasks = []models.Task{}
	}
	if st.Tags == nil {
		st.Tags = []models.Tag{}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	return s.slot.Save(ctx, s.key, data)
}

// commit persists the state after a mutation, recording a failure under
// the given message. Callers hold s.mu; only AddTask and AddTag undo their
// change when it fails.
func (s *Store) commit(ctx context.Context, failure string) bool {
	s.pending++
	err := s.save(ctx)
	s.pending--
	if err != nil {
		s.fail(failure, err)
		return false
	}
	return true
}

// fail records an operational failure. Callers hold s.mu.
func (s *Store) fail(failure string, err error) {
	s.err = fmt.Sprintf("%s: %v", failure, err)
	s.log.WithError(err).Errorf("Event ID: STORE_OPERATION_FAILED, Description: %s", failure)
}

// invalid records a validation failure. Callers hold s.mu.
func (s *Store) invalid(msg string) {
	s.err = msg
	s.log.Warnf("Event ID: VALIDATION_FAILED, Description: %s", msg)
}

// Logger returns the logger the store reports through.
func (s *Store) Logger() *logrus.Logger {
	return s.log
}

// IsLoading reports whether a save or identity call is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Err returns the last recorded failure, or "" if none.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ClearError resets the recorded failure.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}
