// Package tui is the interactive terminal interface: tasks grouped into
// sections, an add/edit form with description suggestions, and delete
// with single-level undo.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/taskday/internal/logger"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/store"
	"github.com/idilsaglam/taskday/internal/suggest"
	"github.com/idilsaglam/taskday/internal/ui"
)

const (
	noticeTTL           = 4 * time.Second
	suggestFailedNotice = "AI Suggestion Failed: Could not generate a description. Please try again."
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

// Options configure the terminal UI.
type Options struct {
	Store     *store.Store
	Suggester suggest.Suggester
	Now       func() time.Time
}

// suggestionMsg carries a finished suggestion back to the form that
// asked for it.
type suggestionMsg struct {
	gen  int
	text string
	err  error
}

type clearNoticeMsg struct{ id int }

type undoEntry struct {
	task model.Task
	pos  int
}

// Model is the bubbletea model.
type Model struct {
	ctx       context.Context
	store     *store.Store
	suggester suggest.Suggester
	now       func() time.Time
	keys      keyMap

	list list.Model
	mode mode

	form       form
	formGen    int
	suggesting bool
	spin       spinner.Model

	confirmID string
	undo      *undoEntry

	notice    string
	noticeErr bool
	noticeID  int

	width, height int
}

// New builds the model over opt.Store.
func New(ctx context.Context, opt Options) Model {
	if opt.Now == nil {
		opt.Now = time.Now
	}
	keys := defaultKeys()

	l := list.New(nil, delegate{now: opt.Now}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.Styles.HelpStyle = ui.HelpStyle
	l.Styles.PaginationStyle = ui.HelpStyle
	l.KeyMap.Quit.SetEnabled(false)
	// d and u belong to delete and undo
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown", "f"), key.WithHelp("→/l/pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup", "b"), key.WithHelp("←/h/pgup", "prev page"))
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp

	m := Model{
		ctx:       ctx,
		store:     opt.Store,
		suggester: opt.Suggester,
		now:       opt.Now,
		keys:      keys,
		list:      l,
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.AccentStyle)),
		width:     80,
		height:    24,
	}
	m.resize()
	m.refresh("")
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opt Options) error {
	p := tea.NewProgram(New(ctx, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) resize() {
	formLines := 0
	if m.mode == modeForm {
		formLines = 11
	}
	m.list.SetSize(m.width-4, max(m.height-8-formLines, 3))
}

// refresh rebuilds the rows from the store and selects selectID when
// it is still listed.
func (m *Model) refresh(selectID string) {
	items := buildItems(m.store.Buckets(m.now()))
	m.list.SetItems(items)

	idx := m.list.Index()
	if selectID != "" {
		for i, it := range items {
			if ti, ok := it.(taskItem); ok && ti.task.ID == selectID {
				idx = i
				break
			}
		}
	}
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx < 0 {
		idx = 0
	}
	m.list.Select(idx)
	m.skipHeader(1)
}

// skipHeader moves the cursor off a section title in direction dir.
func (m *Model) skipHeader(dir int) {
	items := m.list.Items()
	if len(items) == 0 {
		return
	}
	idx := m.list.Index()
	for tries := 0; tries < 2; tries++ {
		for i := idx; i >= 0 && i < len(items); i += dir {
			if _, ok := items[i].(taskItem); ok {
				m.list.Select(i)
				return
			}
		}
		dir = -dir
	}
}

func (m Model) selected() (model.Task, bool) {
	if it, ok := m.list.SelectedItem().(taskItem); ok {
		return it.task, true
	}
	return model.Task{}, false
}

func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.noticeID++
	m.notice = text
	m.noticeErr = isErr
	id := m.noticeID
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{id: id} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case suggestionMsg:
		return m.applySuggestion(msg)
	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	case spinner.TickMsg:
		if !m.suggesting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}
	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(k, m.keys.Toggle):
			t, ok := m.selected()
			if !ok {
				return m, nil
			}
			t, err := m.store.ToggleComplete(m.ctx, t.ID)
			if err != nil {
				cmd := m.setNotice(err.Error(), true)
				return m, cmd
			}
			m.refresh(t.ID)
			return m, nil

		case key.Matches(k, m.keys.Add):
			return m.openForm(nil)

		case key.Matches(k, m.keys.Edit):
			if t, ok := m.selected(); ok {
				return m.openForm(&t)
			}
			return m, nil

		case key.Matches(k, m.keys.Delete):
			if t, ok := m.selected(); ok {
				m.mode = modeConfirm
				m.confirmID = t.ID
			}
			return m, nil

		case key.Matches(k, m.keys.Undo):
			if m.undo == nil {
				return m, nil
			}
			u := m.undo
			if err := m.store.Restore(m.ctx, u.pos, u.task); err != nil {
				cmd := m.setNotice(err.Error(), true)
				return m, cmd
			}
			m.undo = nil
			m.refresh(u.task.ID)
			cmd := m.setNotice(fmt.Sprintf("restored %q", u.task.Summary), false)
			return m, cmd
		}
	}

	prev := m.list.Index()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	dir := 1
	if m.list.Index() < prev {
		dir = -1
	}
	m.skipHeader(dir)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	id := m.confirmID
	m.mode = modeList
	m.confirmID = ""
	if !key.Matches(k, m.keys.Confirm) {
		return m, nil
	}

	pos := m.store.Position(id)
	t, err := m.store.Remove(m.ctx, id)
	if err != nil {
		cmd := m.setNotice(err.Error(), true)
		return m, cmd
	}
	m.undo = &undoEntry{task: t, pos: pos}
	m.refresh("")
	cmd := m.setNotice(fmt.Sprintf("deleted %q (u to undo)", t.Summary), false)
	return m, cmd
}

func (m Model) openForm(t *model.Task) (tea.Model, tea.Cmd) {
	m.formGen++
	m.form = newForm(t, m.now())
	m.mode = modeForm
	m.suggesting = false
	return m, textinput.Blink
}

func (m *Model) closeForm() {
	m.formGen++
	m.mode = modeList
	m.suggesting = false
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		cmd := m.form.update(msg)
		return m, cmd
	}
	switch {
	case key.Matches(k, m.keys.Cancel):
		m.closeForm()
		return m, nil

	case key.Matches(k, m.keys.Suggest):
		if m.suggesting {
			return m, nil
		}
		summary := strings.TrimSpace(m.form.summary.Value())
		if summary == "" {
			m.form.err = "Summary needed"
			return m, nil
		}
		m.form.err = ""
		m.suggesting = true
		return m, tea.Batch(m.spin.Tick, m.suggestCmd(m.formGen, summary))

	case key.Matches(k, m.keys.Next):
		m.form.setFocus(m.form.focus + 1)
		return m, nil

	case key.Matches(k, m.keys.Prev):
		m.form.setFocus(m.form.focus - 1)
		return m, nil

	case key.Matches(k, m.keys.Save) && m.form.focus != fieldDescription:
		return m.saveForm()
	}
	cmd := m.form.update(msg)
	return m, cmd
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	data, err := m.form.data(m.now())
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}

	var (
		t    model.Task
		verb string
	)
	if m.form.editID == "" {
		t, err = m.store.Add(m.ctx, data)
		verb = "added"
	} else {
		t, err = m.store.Update(m.ctx, m.form.editID, data)
		verb = "updated"
	}
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}
	m.closeForm()
	m.refresh(t.ID)
	cmd := m.setNotice(fmt.Sprintf("%s %q", verb, t.Summary), false)
	return m, cmd
}

// suggestCmd asks the suggester off the update loop.
func (m Model) suggestCmd(gen int, summary string) tea.Cmd {
	ctx, sg := m.ctx, m.suggester
	return func() tea.Msg {
		resp, err := suggest.Do(ctx, sg, suggest.Request{TaskSummary: summary})
		if err != nil {
			logger.Warn("suggestion failed", "err", err)
		}
		return suggestionMsg{gen: gen, text: resp.SuggestedDescription, err: err}
	}
}

func (m Model) applySuggestion(msg suggestionMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.formGen || m.mode != modeForm {
		return m, nil
	}
	m.suggesting = false
	if msg.err != nil {
		cmd := m.setNotice(suggestFailedNotice, true)
		return m, cmd
	}
	m.form.description.SetValue(msg.text)
	cmd := m.setNotice("description suggested", false)
	return m, cmd
}

func (m Model) View() string {
	lines := ui.Header(m.store.Buckets(m.now()))
	lines = append(lines, "")

	m.resize()

	if m.store.Len() == 0 {
		lines = append(lines,
			ui.MutedStyle.Render("No tasks yet!"),
			ui.MutedStyle.Render("Press a to add your first task."),
		)
	} else {
		lines = append(lines, m.list.View())
	}

	switch m.mode {
	case modeForm:
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		lines = append(lines, box.Render(m.form.view(m.suggesting, m.spin.View())))
	case modeConfirm:
		if t, ok := m.store.Get(m.confirmID); ok {
			lines = append(lines, ui.ErrorStyle.Render(fmt.Sprintf("Delete %q? This cannot be undone.", t.Summary))+
				ui.MutedStyle.Render("  y confirm • any other key cancels"))
		}
	}

	if m.notice != "" {
		style := ui.SuccessStyle
		if m.noticeErr {
			style = ui.ErrorStyle
		}
		lines = append(lines, style.Render(m.notice))
	}
	return ui.Panel(lines)
}
