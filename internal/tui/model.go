package tui

import (
	"context"
	"time"

	"daily-btc/internal/domain"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Source yields the report to display. Implementations may read a cache or
// aggregate from the store.
type Source interface {
	Report(ctx context.Context) (*domain.DashboardReport, error)
}

type tab int

const (
	tabOverview tab = iota
	tabNews
)

var tabNames = []string{"Overview", "News"}

type reportMsg struct {
	report *domain.DashboardReport
	err    error
}

type tickMsg time.Time

type keyMap struct {
	Next    key.Binding
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Refresh, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Next:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "switch view")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// Model is the terminal dashboard served to each SSH session.
type Model struct {
	source   Source
	interval time.Duration
	username string

	report  *domain.DashboardReport
	err     error
	tab     tab
	width   int
	height  int
	view    viewport.Model
	help    help.Model
	keys    keyMap
	loading bool
}

func NewModel(source Source, username string, interval time.Duration) *Model {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	m := &Model{
		source:   source,
		interval: interval,
		username: username,
		view:     viewport.New(80, 20),
		help:     help.New(),
		keys:     defaultKeys,
		loading:  true,
	}
	m.SetSize(80, 24)
	return m
}

// SetSize adapts the viewport to a terminal of w x h cells.
func (m *Model) SetSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.width, m.height = w, h
	m.help.Width = w
	m.view.Width = w
	m.view.Height = max(h-chromeHeight, 3)
	m.refreshContent()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = (m.tab + 1) % tab(len(tabNames))
			m.refreshContent()
			m.view.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.fetch()
		}
	case reportMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil && msg.report != nil {
			m.report = msg.report
		}
		m.refreshContent()
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	return renderFrame(m)
}

func (m *Model) fetch() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		report, err := source.Report(ctx)
		return reportMsg{report: report, err: err}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) refreshContent() {
	switch m.tab {
	case tabNews:
		m.view.SetContent(renderNews(m.report, m.width))
	default:
		m.view.SetContent(renderOverview(m.report, m.width))
	}
}
