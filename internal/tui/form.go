package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/taskday/internal/due"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/ui"
)

const (
	fieldSummary = iota
	fieldDescription
	fieldDue
	fieldCount
)

const dueInputLayout = "2006-01-02"

// form is the add/edit dialog.
type form struct {
	editID string // empty when adding

	summary     textinput.Model
	description textarea.Model
	dueInput    textinput.Model
	focus       int

	// initialDue is kept when the due text is left untouched, so overdue
	// tasks can be edited without moving their date.
	initialDue     time.Time
	initialDueText string

	err string
}

func newForm(t *model.Task, now time.Time) form {
	f := form{
		summary:     textinput.New(),
		description: textarea.New(),
		dueInput:    textinput.New(),
	}
	f.summary.Prompt = "Summary: "
	f.summary.Placeholder = "e.g. Plan team meeting"
	f.summary.CharLimit = 200

	f.description.Placeholder = "Details (ctrl+s to suggest)"
	f.description.ShowLineNumbers = false
	f.description.SetHeight(4)
	f.description.SetWidth(60)

	f.dueInput.Prompt = "Due: "
	f.dueInput.Placeholder = "YYYY-MM-DD, today, tomorrow, +3d"
	f.dueInput.CharLimit = 40

	if t != nil {
		f.editID = t.ID
		f.summary.SetValue(t.Summary)
		f.summary.CursorEnd()
		f.description.SetValue(t.Description)
		f.initialDue = t.DueDate
		f.initialDueText = t.DueDate.In(now.Location()).Format(dueInputLayout)
		f.dueInput.SetValue(f.initialDueText)
	} else {
		f.dueInput.SetValue("today")
	}
	f.setFocus(fieldSummary)
	return f
}

func (f *form) setFocus(i int) {
	f.focus = (i + fieldCount) % fieldCount
	f.summary.Blur()
	f.description.Blur()
	f.dueInput.Blur()
	switch f.focus {
	case fieldSummary:
		f.summary.Focus()
	case fieldDescription:
		f.description.Focus()
	case fieldDue:
		f.dueInput.Focus()
	}
}

// update forwards msg to the focused field.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldSummary:
		f.summary, cmd = f.summary.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldDue:
		f.dueInput, cmd = f.dueInput.Update(msg)
	}
	return cmd
}

// data validates the fields and returns the task data.
func (f *form) data(now time.Time) (model.TaskData, error) {
	d := model.TaskData{
		Summary:     f.summary.Value(),
		Description: f.description.Value(),
	}
	text := strings.TrimSpace(f.dueInput.Value())
	if f.editID != "" && text == f.initialDueText {
		d.DueDate = f.initialDue
	} else if text == "" {
		return d, model.ErrDueDateRequired
	} else {
		t, err := due.Parse(text, now)
		if err != nil {
			return d, err
		}
		d.DueDate = t
	}
	d = d.Normalize()
	return d, d.Validate()
}

func (f *form) view(suggesting bool, spin string) string {
	title := "Add task"
	if f.editID != "" {
		title = "Edit task"
	}
	if f.err != "" {
		title += "  " + ui.ErrorStyle.Render(f.err)
	}
	desc := f.description.View()
	status := ui.HelpStyle.Render("tab next field • enter save • ctrl+s suggest description • esc cancel")
	if suggesting {
		status = spin + " " + ui.MutedStyle.Render("Suggesting a description...")
	}
	return strings.Join([]string{
		ui.TitleStyle.Render(title),
		f.summary.View(),
		desc,
		f.dueInput.View(),
		status,
	}, "\n")
}
