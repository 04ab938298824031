package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskday/internal/bucket"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/ui"
)

// headerItem is a section title row. It is never selectable.
type headerItem struct {
	title string
	count int
}

func (h headerItem) FilterValue() string { return "" }

// taskItem adapts a task to bubbles/list.Item.
type taskItem struct {
	task model.Task
	pos  int // 1-based display position
}

func (i taskItem) FilterValue() string { return i.task.Summary }

// buildItems flattens the sections into list rows.
func buildItems(b bucket.Buckets) []list.Item {
	var items []list.Item
	pos := 1
	for _, s := range b.Sections() {
		if len(s.Tasks) == 0 {
			continue
		}
		items = append(items, headerItem{title: s.Title, count: len(s.Tasks)})
		for _, t := range s.Tasks {
			items = append(items, taskItem{task: t, pos: pos})
			pos++
		}
	}
	return items
}

// delegate renders one row per item.
type delegate struct {
	now func() time.Time
}

func (d delegate) Height() int                         { return 1 }
func (d delegate) Spacing() int                        { return 0 }
func (d delegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch it := item.(type) {
	case headerItem:
		fmt.Fprintf(w, "%s %s", ui.AccentStyle.Render(it.title), ui.MutedStyle.Render(fmt.Sprintf("(%d)", it.count)))
	case taskItem:
		prefix := "  "
		if index == m.Index() {
			prefix = ui.SelectedStyle.Render(">") + " "
		}
		fmt.Fprint(w, prefix+ui.TaskLine(it.pos, it.task, d.now()))
	}
}
