// Package session keeps in-memory form sessions.
//
// Each session owns one form.State. Edits go through form.Reduce and the
// result replaces the old state in one step under the store lock, so a
// reader never sees a half-applied edit. Nothing is persisted: a session
// lives until it is deleted, evicted for size, or idles past its TTL.
package session

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"capex/internal/form"
	applog "capex/internal/log"
)

// historyLimit caps how many prior states Undo can walk back through.
const historyLimit = 32

var (
	ErrNotFound      = errors.New("session not found")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Recorder receives session activity. *metrics.Metrics satisfies it.
type Recorder interface {
	FieldEvent(field form.FieldID, result string)
	Reset(fields []form.FieldID)
	InvalidAmount()
	Repair()
	ActiveSessions(n int)
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID        string     `json:"id"`
	State     form.State `json:"state"`
	Version   int        `json:"version"`
	CanUndo   bool       `json:"can_undo"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type entry struct {
	id        string
	state     form.State
	history   []form.State
	version   int
	createdAt time.Time
	updatedAt time.Time
	expiresAt time.Time
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		ID:        e.id,
		State:     e.state,
		Version:   e.version,
		CanUndo:   len(e.history) > 0,
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}

// Config holds store limits.
type Config struct {
	MaxSessions int
	IdleTTL     time.Duration
}

// Store is an LRU of sessions with an idle TTL.
type Store struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List

	logger   *applog.Logger
	events   *applog.StructuredLogger
	recorder Recorder
	now      func() time.Time
}

// NewStore creates a store. A nil recorder disables metrics.
func NewStore(cfg Config, logger *applog.Logger, recorder Recorder) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = applog.Discard()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	logger = logger.WithComponent(applog.ComponentSession)
	return &Store{
		maxSize:  cfg.MaxSessions,
		ttl:      cfg.IdleTTL,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
		logger:   logger,
		events:   applog.NewStructuredLogger(logger),
		recorder: recorder,
		now:      time.Now,
	}
}

// Create starts an empty form session.
func (s *Store) Create(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := &entry{
		id:        uuid.NewString(),
		createdAt: now,
		updatedAt: now,
		expiresAt: now.Add(s.ttl),
	}
	s.items[e.id] = s.lru.PushFront(e)

	for s.lru.Len() > s.maxSize {
		oldest := s.lru.Back()
		evicted := oldest.Value.(*entry)
		s.removeElement(oldest)
		s.logger.InfoContext(ctx, "Session evicted for capacity",
			applog.FieldSessionID, evicted.id,
			applog.FieldOperation, applog.OpEvict)
	}
	s.recorder.ActiveSessions(len(s.items))

	s.logger.DebugContext(ctx, "Session created", applog.FieldSessionID, e.id)
	return e.snapshot()
}

// Get returns the session and refreshes its idle timer.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return e.snapshot(), nil
}

// Apply runs one field edit against the session.
//
// A state that fails form.Check is logged and repaired before the edit is
// applied. Rejected edits leave the session untouched and are returned as
// errors wrapping the form package sentinels.
func (s *Store) Apply(ctx context.Context, id string, ev form.Event) (Snapshot, form.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, form.Outcome{Field: ev.Field}, err
	}

	current := s.repair(ctx, e)
	next, out, err := form.Reduce(current, ev)
	if err != nil {
		s.recorder.FieldEvent(ev.Field, ResultRejected)
		s.logger.DebugContext(ctx, "Form edit rejected",
			applog.FieldSessionID, id,
			applog.FieldFormField, string(ev.Field),
			applog.FieldError, err.Error())
		return e.snapshot(), out, err
	}

	if out.Changed {
		e.history = append(e.history, current)
		if len(e.history) > historyLimit {
			e.history = e.history[len(e.history)-historyLimit:]
		}
		e.state = next
		e.version++
		e.updatedAt = s.now()
		s.recorder.FieldEvent(ev.Field, ResultChanged)
	} else {
		s.recorder.FieldEvent(ev.Field, ResultUnchanged)
	}
	s.recorder.Reset(out.Reset)
	if out.AmountError != "" && out.Changed {
		s.recorder.InvalidAmount()
	}

	s.events.LogFieldChange(ctx, id, e.version, string(ev.Field), out.Changed, fieldNames(out.Reset), out.AmountError)
	return e.snapshot(), out, nil
}

// Undo restores the state held before the last applied change.
func (s *Store) Undo(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	if len(e.history) == 0 {
		return e.snapshot(), ErrNothingToUndo
	}
	last := len(e.history) - 1
	e.state = e.history[last]
	e.history = e.history[:last]
	e.version++
	e.updatedAt = s.now()

	s.logger.DebugContext(ctx, "Form edit undone",
		applog.FieldSessionID, id,
		applog.FieldVersion, e.version,
		applog.FieldOperation, applog.OpUndo)
	return e.snapshot(), nil
}

// Delete drops a session. Deleting an unknown id reports ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	s.removeElement(elem)
	s.recorder.ActiveSessions(len(s.items))
	s.logger.DebugContext(ctx, "Session deleted", applog.FieldSessionID, id, applog.FieldOperation, applog.OpDelete)
	return nil
}

// CleanExpired removes idle sessions and returns how many went.
func (s *Store) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var toRemove []*list.Element
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.removeElement(elem)
	}
	s.recorder.ActiveSessions(len(s.items))
	return len(toRemove)
}

// Size returns the number of sessions held, expired or not.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.CleanExpired(); n > 0 {
				s.logger.Debug("Session cleanup completed", "sessions_removed", n, "sessions_active", s.Size())
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// lookup finds a live session, drops it if it has expired, and refreshes
// its position and idle deadline. Callers hold s.mu.
func (s *Store) lookup(id string) (*entry, error) {
	elem, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	e := elem.Value.(*entry)
	now := s.now()
	if now.After(e.expiresAt) {
		s.removeElement(elem)
		s.recorder.ActiveSessions(len(s.items))
		return nil, ErrNotFound
	}
	e.expiresAt = now.Add(s.ttl)
	s.lru.MoveToFront(elem)
	return e, nil
}

// repair fixes a state that broke the cascade invariant. It should never
// trigger; when it does it is logged as a bug, not reported to the caller.
func (s *Store) repair(ctx context.Context, e *entry) form.State {
	err := form.Check(e.state)
	if err == nil {
		return e.state
	}
	fixed, cleared := form.Repair(e.state)
	s.events.LogError(ctx, "Inconsistent cascade state repaired", err, applog.OpRepair,
		applog.NewFields().
			WithSession(e.id, e.version).
			WithFieldChange("", true, fieldNames(cleared), ""))
	s.recorder.Repair()
	e.state = fixed
	return fixed
}

func (s *Store) removeElement(elem *list.Element) {
	delete(s.items, elem.Value.(*entry).id)
	s.lru.Remove(elem)
}

func fieldNames(fs []form.FieldID) []string {
	if len(fs) == 0 {
		return nil
	}
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
