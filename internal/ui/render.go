package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/idilsaglam/taskday/internal/bucket"
	"github.com/idilsaglam/taskday/internal/model"
)

// DateLayout is how due dates are shown to the user.
const DateLayout = "Jan 2, 2006"

// ShortIDLen is how many id characters listings show.
const ShortIDLen = 8

// ListOptions tune bucket rendering.
type ListOptions struct {
	// Descriptions shows each task's description under its summary.
	Descriptions bool
}

// ShortID abbreviates a task id for display.
func ShortID(id string) string {
	if len(id) > ShortIDLen {
		return id[:ShortIDLen]
	}
	return id
}

// DueLabel returns "Overdue: <date>" or "Due: <date>".
func DueLabel(t model.Task, now time.Time) string {
	date := t.DueDate.In(now.Location()).Format(DateLayout)
	if bucket.IsOverdue(t, now) {
		return "Overdue: " + date
	}
	return "Due: " + date
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

// TaskLine renders one task row; idx is its 1-based display position.
func TaskLine(idx int, t model.Task, now time.Time) string {
	box := MutedStyle.Render(current.BoxUnchecked)
	summary := truncate(t.Summary, 60)
	due := MutedStyle.Render(DueLabel(t, now))
	if t.Completed {
		box = SuccessStyle.Render(current.BoxChecked)
		summary = DoneStyle.Render(summary)
	} else if bucket.IsOverdue(t, now) {
		due = OverdueStyle.Render(DueLabel(t, now))
	}
	return fmt.Sprintf("%s %s %s  %s  %s",
		MutedStyle.Render(fmt.Sprintf("%2d.", idx)), box, summary, due, MutedStyle.Render(ShortID(t.ID)))
}

// Header renders the title line with counts and a progress bar.
func Header(b bucket.Buckets) []string {
	done, pending := len(b.Completed), b.Pending()
	title := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		TitleStyle.Render("Tasks"),
		SuccessStyle.Render(current.SymDone), done,
		PendingStyle.Render(current.SymPending), pending,
		AccentStyle.Render("Total"), b.Len(),
	)
	return []string{title, MutedStyle.Render(ProgressBar(done, b.Len(), 28))}
}

// BucketLines renders every non-empty section. Positions are numbered in
// display order so they can be used as task references.
func BucketLines(b bucket.Buckets, now time.Time, opt ListOptions) []string {
	if b.Len() == 0 {
		return []string{
			MutedStyle.Render("No tasks yet!"),
			MutedStyle.Render(`Add one with: taskday add "Plan team meeting" --due tomorrow --suggest`),
		}
	}

	var lines []string
	idx := 1
	for _, s := range b.Sections() {
		if len(s.Tasks) == 0 {
			continue
		}
		if s.Title == "Completed" && b.Pending() > 0 {
			lines = append(lines, MutedStyle.Render(strings.Repeat(current.Separator, 40)))
		}
		lines = append(lines, AccentStyle.Render(s.Title))
		for _, t := range s.Tasks {
			lines = append(lines, TaskLine(idx, t, now))
			if opt.Descriptions {
				lines = append(lines, "      "+MutedStyle.Render(truncate(t.Description, 72)))
			}
			idx++
		}
		lines = append(lines, "")
	}
	return lines[:len(lines)-1]
}

// RenderList writes the full bucketed panel.
func RenderList(w io.Writer, b bucket.Buckets, now time.Time, opt ListOptions) {
	lines := Header(b)
	lines = append(lines, "")
	lines = append(lines, BucketLines(b, now, opt)...)
	fmt.Fprintln(w, Panel(lines))
}

// RenderTask writes a single task in detail.
func RenderTask(w io.Writer, t model.Task, now time.Time) {
	status := PendingStyle.Render("pending")
	if t.Completed {
		status = SuccessStyle.Render("completed")
	}
	lines := []string{
		TitleStyle.Render(t.Summary),
		MutedStyle.Render(t.ID),
		"",
		t.Description,
		"",
		DueLabel(t, now) + "  " + status,
	}
	fmt.Fprintln(w, Panel(lines))
}
