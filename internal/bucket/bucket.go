// Package bucket partitions tasks into the Overdue, Today, Upcoming and
// Completed sections shown to the user.
package bucket

import (
	"sort"
	"time"

	"github.com/idilsaglam/taskday/internal/model"
)

// Buckets is the classified view of a task collection.
type Buckets struct {
	Overdue   []model.Task `json:"overdue"`
	Today     []model.Task `json:"today"`
	Upcoming  []model.Task `json:"upcoming"`
	Completed []model.Task `json:"completed"`
}

// Section is one named bucket, in display order.
type Section struct {
	Title string
	Tasks []model.Task
}

// Classify splits tasks into buckets relative to now's calendar day.
//
// Completed tasks land in Completed regardless of date, newest due first.
// Incomplete tasks due before the start of today are Overdue, those due
// on today's date are Today (input order kept), later ones are Upcoming.
// Overdue and Upcoming are sorted by due date ascending. The input slice
// is not modified.
func Classify(tasks []model.Task, now time.Time) Buckets {
	start := StartOfDay(now)
	end := start.AddDate(0, 0, 1)

	b := Buckets{
		Overdue:   []model.Task{},
		Today:     []model.Task{},
		Upcoming:  []model.Task{},
		Completed: []model.Task{},
	}
	for _, t := range tasks {
		if t.Completed {
			b.Completed = append(b.Completed, t)
			continue
		}
		due := t.DueDate.In(now.Location())
		switch {
		case due.Before(start):
			b.Overdue = append(b.Overdue, t)
		case due.Before(end):
			b.Today = append(b.Today, t)
		default:
			b.Upcoming = append(b.Upcoming, t)
		}
	}

	sort.SliceStable(b.Overdue, func(i, j int) bool {
		return b.Overdue[i].DueDate.Before(b.Overdue[j].DueDate)
	})
	sort.SliceStable(b.Upcoming, func(i, j int) bool {
		return b.Upcoming[i].DueDate.Before(b.Upcoming[j].DueDate)
	})
	sort.SliceStable(b.Completed, func(i, j int) bool {
		return b.Completed[i].DueDate.After(b.Completed[j].DueDate)
	})
	return b
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether an incomplete task is due before today.
func IsOverdue(t model.Task, now time.Time) bool {
	return !t.Completed && t.DueDate.In(now.Location()).Before(StartOfDay(now))
}

// Len returns the total number of tasks across all buckets.
func (b Buckets) Len() int {
	return len(b.Overdue) + len(b.Today) + len(b.Upcoming) + len(b.Completed)
}

// Pending returns the number of incomplete tasks.
func (b Buckets) Pending() int {
	return len(b.Overdue) + len(b.Today) + len(b.Upcoming)
}

// Sections returns the buckets in display order. Empty buckets are kept so
// callers can decide whether to render them.
func (b Buckets) Sections() []Section {
	return []Section{
		{Title: "Overdue", Tasks: b.Overdue},
		{Title: "Today", Tasks: b.Today},
		{Title: "Upcoming", Tasks: b.Upcoming},
		{Title: "Completed", Tasks: b.Completed},
	}
}

// Ordered flattens the buckets in display order.
func (b Buckets) Ordered() []model.Task {
	out := make([]model.Task, 0, b.Len())
	for _, s := range b.Sections() {
		out = append(out, s.Tasks...)
	}
	return out
}
