// Package persist loads and saves the task collection to a durable slot.
//
// Neither Load nor Save returns an error: storage problems are logged and
// the in-memory collection stays authoritative for the session.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/idilsaglam/taskday/internal/logger"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/store/slot"
)

// DefaultKey is the slot key holding the task collection.
const DefaultKey = "tasks"

// Options configure an Adapter.
type Options struct {
	// Key names the slot. Empty means DefaultKey.
	Key string

	// SkipEmpty keeps an empty collection from being written, so a
	// previously saved non-empty collection survives until the next
	// non-empty save.
	SkipEmpty bool

	// Location interprets stored due dates that carry no zone.
	// Defaults to time.Local.
	Location *time.Location

	// Logger defaults to the package logger.
	Logger *slog.Logger
}

// Adapter binds a task collection to one slot key.
type Adapter struct {
	slot      slot.Slot
	key       string
	skipEmpty bool
	loc       *time.Location
	log       *slog.Logger
}

// New creates an Adapter over s.
func New(s slot.Slot, opts Options) *Adapter {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Adapter{
		slot:      s,
		key:       key,
		skipEmpty: opts.SkipEmpty,
		loc:       loc,
		log:       log.With("component", "persist", "key", key),
	}
}

// Key returns the slot key.
func (a *Adapter) Key() string { return a.key }

// wireTask mirrors model.Task with the due date left as text so that
// several date layouts can be accepted on load.
type wireTask struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
}

// zonelessLayouts are the browser date and datetime-local formats.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses a serialized due date. Values without a zone are
// read as wall-clock time in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable due date %q", s)
}

// Load reads the slot. A missing, unreadable or malformed slot yields an
// empty collection. Entries that break task invariants are dropped.
func (a *Adapter) Load(ctx context.Context) []model.Task {
	b, err := a.slot.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, slot.ErrNotFound) {
			a.log.Error("failed to load tasks", "err", err)
		}
		return []model.Task{}
	}

	var raw []wireTask
	if err := json.Unmarshal(b, &raw); err != nil {
		a.log.Error("failed to parse stored tasks", "err", err)
		return []model.Task{}
	}

	tasks := make([]model.Task, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, w := range raw {
		due, err := ParseDueDate(w.DueDate, a.loc)
		if err != nil {
			a.log.Warn("dropping stored task", "index", i, "id", w.ID, "err", err)
			continue
		}
		t := model.Task{
			ID:          w.ID,
			Summary:     w.Summary,
			Description: w.Description,
			DueDate:     due,
			Completed:   w.Completed,
		}
		if !t.Valid() {
			a.log.Warn("dropping stored task", "index", i, "id", w.ID, "err", "missing required field")
			continue
		}
		if seen[t.ID] {
			a.log.Warn("dropping stored task", "index", i, "id", w.ID, "err", "duplicate id")
			continue
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	a.log.Debug("loaded tasks", "count", len(tasks))
	return tasks
}

// Save writes tasks to the slot. Failures are logged, never returned.
func (a *Adapter) Save(ctx context.Context, tasks []model.Task) {
	if len(tasks) == 0 && a.skipEmpty {
		a.log.Debug("skipping save of empty collection")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		a.log.Error("failed to encode tasks", "err", err)
		return
	}
	if err := a.slot.Set(ctx, a.key, b); err != nil {
		a.log.Error("failed to save tasks", "err", err)
		return
	}
	a.log.Debug("saved tasks", "count", len(tasks))
}
