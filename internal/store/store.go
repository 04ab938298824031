// Package store holds the in-memory task collection for a session and
// persists it after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/taskday/internal/bucket"
	"github.com/idilsaglam/taskday/internal/model"
)

var (
	// ErrNotFound is returned when no task matches an id or reference.
	ErrNotFound = errors.New("task not found")

	// ErrAmbiguous is returned when an id prefix matches several tasks.
	ErrAmbiguous = errors.New("ambiguous task reference")

	// ErrNoFreeID is returned when the id generator keeps producing
	// empty or taken ids.
	ErrNoFreeID = errors.New("could not generate a unique task id")
)

const (
	// MinPrefix is the shortest id prefix Resolve accepts.
	MinPrefix = 4

	maxIDAttempts = 10
)

// Persister receives the full collection after each mutation.
type Persister interface {
	Save(ctx context.Context, tasks []model.Task)
}

// Loader supplies the initial collection.
type Loader interface {
	Load(ctx context.Context) []model.Task
}

// Store is the ordered task collection. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	tasks   []model.Task
	persist Persister
	newID   func() string
}

// New creates a store holding tasks. p may be nil for a memory-only store.
func New(tasks []model.Task, p Persister) *Store {
	return &Store{
		tasks:   append([]model.Task(nil), tasks...),
		persist: p,
		newID:   uuid.NewString,
	}
}

// Open creates a store from the collection returned by l, persisting to p.
func Open(ctx context.Context, l Loader, p Persister) *Store {
	return New(l.Load(ctx), p)
}

// SetIDGenerator replaces the id generator. Used by tests.
func (s *Store) SetIDGenerator(gen func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newID = gen
}

// save must be called with s.mu held.
func (s *Store) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	s.persist.Save(ctx, append([]model.Task(nil), s.tasks...))
}

func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// freeID must be called with s.mu held.
func (s *Store) freeID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		if id := s.newID(); id != "" && s.index(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrNoFreeID, maxIDAttempts)
}

// Add appends a new incomplete task with a fresh id.
func (s *Store) Add(ctx context.Context, data model.TaskData) (model.Task, error) {
	data = data.Normalize()
	if err := data.Validate(); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freeID()
	if err != nil {
		return model.Task{}, err
	}
	t := model.Task{ID: id}.Apply(data)
	s.tasks = append(s.tasks, t)
	s.save(ctx)
	return t, nil
}

// Update replaces the editable fields of the task with id.
func (s *Store) Update(ctx context.Context, id string, data model.TaskData) (model.Task, error) {
	data = data.Normalize()
	if err := data.Validate(); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tasks[i] = s.tasks[i].Apply(data)
	s.save(ctx)
	return s.tasks[i], nil
}

// ToggleComplete flips the completed flag of the task with id.
func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.save(ctx)
	return s.tasks[i], nil
}

// Remove deletes the task with id.
func (s *Store) Remove(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.save(ctx)
	return removed, nil
}

// Restore puts a previously removed task back at position at (clamped).
// The task keeps its id; restoring an id that is already present fails.
func (s *Store) Restore(ctx context.Context, at int, t model.Task) error {
	if !t.Valid() {
		return errors.New("restore: invalid task")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(t.ID) >= 0 {
		return fmt.Errorf("restore: task %s already present", t.ID)
	}
	if at < 0 {
		at = 0
	}
	if at > len(s.tasks) {
		at = len(s.tasks)
	}
	s.tasks = append(s.tasks, model.Task{})
	copy(s.tasks[at+1:], s.tasks[at:])
	s.tasks[at] = t
	s.save(ctx)
	return nil
}

// Get returns the task with id.
func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// Position returns the insertion index of id, or -1.
func (s *Store) Position(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index(id)
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Buckets classifies the current collection relative to now.
func (s *Store) Buckets(now time.Time) bucket.Buckets {
	return bucket.Classify(s.All(), now)
}

// Resolve finds a task by full id, by a unique id prefix of at least
// MinPrefix characters, or by its 1-based position in the bucketed
// display order at now.
func (s *Store) Resolve(ref string, now time.Time) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if t, ok := s.Get(ref); ok {
		return t, nil
	}

	// An all-digit ref can also be an id prefix, so out-of-range
	// indexes fall through to prefix matching.
	if n, err := strconv.Atoi(ref); err == nil {
		ordered := s.Buckets(now).Ordered()
		if n >= 1 && n <= len(ordered) {
			return ordered[n-1], nil
		}
		if len(ref) < MinPrefix {
			return model.Task{}, fmt.Errorf("%w: index %d out of range (have %d)", ErrNotFound, n, len(ordered))
		}
	}

	if len(ref) < MinPrefix {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	var matches []model.Task
	for _, t := range s.All() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguous, ref, len(matches))
	}
}
