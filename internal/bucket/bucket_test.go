package bucket

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/idilsaglam/taskday/internal/model"
)

var now = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func task(id string, due time.Time, done bool) model.Task {
	return model.Task{ID: id, Summary: id, Description: id, DueDate: due, Completed: done}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestClassifyScenarios(t *testing.T) {
	tasks := []model.Task{
		task("yesterday", now.AddDate(0, 0, -1), false),
		task("today", now.Add(2*time.Hour), false),
		task("tomorrow", now.AddDate(0, 0, 1), false),
		task("done-yesterday", now.AddDate(0, 0, -1), true),
		task("done-tomorrow", now.AddDate(0, 0, 1), true),
	}

	b := Classify(tasks, now)

	if got := ids(b.Overdue); !reflect.DeepEqual(got, []string{"yesterday"}) {
		t.Errorf("Overdue = %v", got)
	}
	if got := ids(b.Today); !reflect.DeepEqual(got, []string{"today"}) {
		t.Errorf("Today = %v", got)
	}
	if got := ids(b.Upcoming); !reflect.DeepEqual(got, []string{"tomorrow"}) {
		t.Errorf("Upcoming = %v", got)
	}
	if got := ids(b.Completed); !reflect.DeepEqual(got, []string{"done-tomorrow", "done-yesterday"}) {
		t.Errorf("Completed = %v", got)
	}
}

func TestClassifyDayBoundaries(t *testing.T) {
	start := StartOfDay(now)
	tasks := []model.Task{
		task("midnight", start, false),
		task("last-second-yesterday", start.Add(-time.Nanosecond), false),
		task("last-second-today", start.Add(24*time.Hour-time.Nanosecond), false),
		task("next-midnight", start.Add(24*time.Hour), false),
	}

	b := Classify(tasks, now)

	if got := ids(b.Overdue); !reflect.DeepEqual(got, []string{"last-second-yesterday"}) {
		t.Errorf("Overdue = %v", got)
	}
	if got := ids(b.Today); !reflect.DeepEqual(got, []string{"midnight", "last-second-today"}) {
		t.Errorf("Today = %v", got)
	}
	if got := ids(b.Upcoming); !reflect.DeepEqual(got, []string{"next-midnight"}) {
		t.Errorf("Upcoming = %v", got)
	}
}

func TestClassifyOrdering(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 9, 0, 0, 0, time.UTC) }
	tasks := []model.Task{
		task("jan5", d(2024, 1, 5), false),
		task("jan1", d(2024, 1, 1), false),
		task("apr2", d(2024, 4, 2), false),
		task("mar20", d(2024, 3, 20), false),
		task("today-b", now.Add(time.Hour), false),
		task("today-a", now.Add(-time.Hour), false),
		task("c-old", d(2023, 5, 1), true),
		task("c-new", d(2024, 6, 1), true),
	}

	b := Classify(tasks, now)

	if got := ids(b.Overdue); !reflect.DeepEqual(got, []string{"jan1", "jan5"}) {
		t.Errorf("Overdue = %v, want jan1 before jan5", got)
	}
	if got := ids(b.Today); !reflect.DeepEqual(got, []string{"today-b", "today-a"}) {
		t.Errorf("Today = %v, want insertion order", got)
	}
	if got := ids(b.Upcoming); !reflect.DeepEqual(got, []string{"mar20", "apr2"}) {
		t.Errorf("Upcoming = %v", got)
	}
	if got := ids(b.Completed); !reflect.DeepEqual(got, []string{"c-new", "c-old"}) {
		t.Errorf("Completed = %v", got)
	}
}

func TestClassifyPartitionIsExhaustiveAndDisjoint(t *testing.T) {
	var tasks []model.Task
	for i := -20; i <= 20; i++ {
		due := now.Add(time.Duration(i) * 7 * time.Hour)
		tasks = append(tasks, task(fmt.Sprintf("t%d", i), due, i%3 == 0))
	}

	b := Classify(tasks, now)

	if b.Len() != len(tasks) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(tasks))
	}
	seen := make(map[string]int)
	for _, s := range b.Sections() {
		for _, tk := range s.Tasks {
			seen[tk.ID]++
		}
	}
	for _, tk := range tasks {
		if seen[tk.ID] != 1 {
			t.Errorf("task %s appears %d times", tk.ID, seen[tk.ID])
		}
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	tasks := []model.Task{
		task("b", now.AddDate(0, 0, 3), false),
		task("a", now.AddDate(0, 0, -3), false),
		task("c", now, true),
	}
	before := append([]model.Task(nil), tasks...)

	first := Classify(tasks, now)
	second := Classify(tasks, now)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Classify not deterministic:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(tasks, before) {
		t.Error("Classify modified its input")
	}
}

func TestClassifyUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	localNow := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	// 2024-03-09 23:00 UTC is 2024-03-10 09:00 in UTC+10.
	tk := task("late-utc", time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC), false)

	b := Classify([]model.Task{tk}, localNow)
	if len(b.Today) != 1 {
		t.Errorf("expected task in Today, got %+v", b)
	}
}

func TestIsOverdue(t *testing.T) {
	if !IsOverdue(task("x", now.AddDate(0, 0, -1), false), now) {
		t.Error("yesterday should be overdue")
	}
	if IsOverdue(task("x", now.AddDate(0, 0, -1), true), now) {
		t.Error("completed task is never overdue")
	}
	if IsOverdue(task("x", StartOfDay(now), false), now) {
		t.Error("today is not overdue")
	}
}
