package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/tasks"
)

// HistorySource supplies submission history for the dashboard.
type HistorySource interface {
	Recent(limit int) ([]*models.Submission, error)
}

// Model represents the dashboard state.
type Model struct {
	engine  *tasks.RelayEngine
	history HistorySource

	width          int
	height         int
	submissionList list.Model
	insights       *tasks.Insights
	err            error
	help           help.Model
	keys           keyMap
}

type historyLoadedMsg struct {
	submissions []*models.Submission
	insights    *tasks.Insights
	err         error
}

// NewModel creates a dashboard model with the provided dependencies.
func NewModel(engine *tasks.RelayEngine, history HistorySource) *Model {
	delegate := list.NewDefaultDelegate()
	submissionList := list.New([]list.Item{}, delegate, 0, 0)
	submissionList.Title = "Recent Submissions"
	submissionList.SetShowHelp(false)

	return &Model{
		engine:         engine,
		history:        history,
		submissionList: submissionList,
		help:           help.New(),
		keys:           newKeyMap(),
	}
}

// Init loads the initial submission history.
func (m *Model) Init() tea.Cmd {
	return m.loadHistory()
}

// loadHistory fetches recent submissions and insights off the update loop.
func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		submissions, err := m.history.Recent(50)
		if err != nil {
			return historyLoadedMsg{err: err}
		}

		insights, err := m.engine.Insights()
		if err != nil {
			return historyLoadedMsg{err: err}
		}

		return historyLoadedMsg{submissions: submissions, insights: insights}
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.submissionList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			return m, m.loadHistory()
		}

	case historyLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.insights = msg.insights

		items := make([]list.Item, 0, len(msg.submissions))
		for _, submission := range msg.submissions {
			items = append(items, submissionItem{submission: submission})
		}
		m.submissionList.SetItems(items)
		return m, nil
	}

	var cmd tea.Cmd
	m.submissionList, cmd = m.submissionList.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("juke dashboard"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(m.submissionList.View())
	b.WriteString("\n")

	if m.insights != nil {
		b.WriteString(m.renderInsights())
		b.WriteString("\n")
	}

	b.WriteString(styles.help.Render(m.help.View(m.keys)))

	return b.String()
}

// renderInsights formats the totals and top-requested footer.
func (m *Model) renderInsights() string {
	var b strings.Builder

	b.WriteString(styles.ok.Render(fmt.Sprintf("%d queued", m.insights.Queued)))
	b.WriteString(fmt.Sprintf(" • %d rejected • %d failed • %d total",
		m.insights.Rejected, m.insights.Failed, m.insights.Total))

	if len(m.insights.TopTracks) > 0 {
		top := m.insights.TopTracks[0]
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(fmt.Sprintf("most requested: %s - %s (%d)", top.Artist, top.Title, top.Count)))
	}

	return b.String()
}
