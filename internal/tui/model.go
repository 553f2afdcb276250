// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/typespeed/internal/metrics"
	"github.com/verte-zerg/typespeed/internal/stats"
	"github.com/verte-zerg/typespeed/internal/trial"
)

// Trial is the controller surface the UI drives.
type Trial interface {
	Ingest(raw string) trial.Snapshot
	Restart(words int) trial.Snapshot
	Snapshot() trial.Snapshot
}

type snapshotMsg trial.Snapshot

// Model implements the Bubble Tea typing UI.
type Model struct {
	trial   Trial
	updates <-chan trial.Snapshot
	logger  *zap.SugaredLogger

	input textinput.Model
	snap  trial.Snapshot

	width        int
	height       int
	showMistakes bool
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5252"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	doneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a typing TUI model. updates carries snapshots pushed by
// the controller, clock ticks included; it may be nil.
func NewModel(t Trial, updates <-chan trial.Snapshot, logger *zap.SugaredLogger) *Model {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	in := textinput.New()
	in.Placeholder = "Start typing here..."
	in.Prompt = "> "
	in.Focus()
	return &Model{
		trial:   t,
		updates: updates,
		logger:  logger,
		input:   in,
		snap:    t.Snapshot(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForSnapshot(m.updates))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.contentWidth() - lipgloss.Width(m.input.Prompt) - 1
		return m, nil
	case snapshotMsg:
		m.apply(trial.Snapshot(msg))
		return m, waitForSnapshot(m.updates)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.restart(0)
			return m, nil
		case tea.KeyCtrlN:
			m.restart(trial.NewTestWords)
			return m, nil
		case tea.KeyTab:
			if m.snap.Finished() {
				m.showMistakes = !m.showMistakes
			}
			return m, nil
		}
		if m.snap.Finished() {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != m.snap.Typed {
			m.apply(m.trial.Ingest(value))
		}
		return m, cmd
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// apply keeps the newest snapshot; deliveries older than the current view are
// dropped.
func (m *Model) apply(s trial.Snapshot) {
	if s.Seq < m.snap.Seq {
		return
	}
	wasFinished := m.snap.Finished()
	m.snap = s
	if s.Finished() {
		if m.input.Value() != s.Typed {
			m.input.SetValue(s.Typed)
		}
		m.input.Blur()
		if !wasFinished && s.Result != nil {
			m.logger.Debugw("trial finished in ui", "id", s.Result.ID)
		}
	}
}

func (m *Model) restart(words int) {
	m.showMistakes = false
	m.input.Reset()
	m.input.Focus()
	m.apply(m.trial.Restart(words))
}

func waitForSnapshot(ch <-chan trial.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.snap.Target) == 0 {
		return ""
	}
	styled := buildStyledRunes(m.snap.Target, metrics.Tokens(m.snap.Typed), m.snap.CurrentWordIndex, m.snap.Finished())
	width := m.contentWidth()
	sections := []string{
		wrapStyledRunes(styled, width),
		"",
		m.input.View(),
		"",
		m.renderStatus(),
	}
	if m.snap.Finished() {
		sections = append(sections, "", m.renderResult())
		if m.showMistakes {
			sections = append(sections, "", m.renderMistakes())
		}
	}
	sections = append(sections, "", m.renderHistory(), "", m.renderFooter())
	content := lipgloss.NewStyle().Width(width).Render(strings.Join(sections, "\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	width := int(float64(m.width) * 0.70)
	if width < 1 {
		width = 1
	}
	return width
}

func (m *Model) renderStatus() string {
	segments := []string{
		labelStyle.Render("WPM: ") + valueStyle.Render(fmt.Sprintf("%d", m.snap.Metrics.WPM)),
		labelStyle.Render("Accuracy: ") + valueStyle.Render(fmt.Sprintf("%d%%", m.snap.Metrics.Accuracy)),
		labelStyle.Render("Time Left: ") + valueStyle.Render(fmt.Sprintf("%ds", m.snap.Remaining)),
		labelStyle.Render("Words: ") + valueStyle.Render(fmt.Sprintf("%d", len(m.snap.Target))),
	}
	return strings.Join(segments, "   ")
}

func (m *Model) renderResult() string {
	line := doneStyle.Render("Test complete!")
	if m.snap.Result != nil {
		line += fmt.Sprintf("  %d WPM · %d%% in %ds", m.snap.Result.WPM, m.snap.Result.Accuracy, m.snap.Result.ElapsedSeconds)
	}
	hint := "Review Mistakes"
	if m.showMistakes {
		hint = "Hide Mistakes"
	}
	return line + "\n" + footerStyle.Render("tab "+hint)
}

func (m *Model) renderMistakes() string {
	if len(m.snap.Mistakes) == 0 {
		return doneStyle.Render("No mistakes!")
	}
	lines := []string{
		incorrectStyle.Render("Mistake Summary"),
		fmt.Sprintf("Total Errors: %d", len(m.snap.Mistakes)),
		"Mistyped Words:",
	}
	for _, mistake := range m.snap.Mistakes {
		lines = append(lines, fmt.Sprintf("  %s → %s", incorrectStyle.Render(mistake.Typed), valueStyle.Render(mistake.Expected)))
	}
	lines = append(lines, "Suggested Corrections:")
	for _, mistake := range m.snap.Mistakes {
		lines = append(lines, "  "+valueStyle.Render(mistake.Expected))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHistory() string {
	var b strings.Builder
	width := 0
	if m.width > 0 {
		width = stats.SeriesWidthFor(m.contentWidth())
	}
	if err := stats.RenderSeries(&b, m.snap.History, 1, width); err != nil {
		m.logger.Warnw("failed to render history", "error", err)
		return ""
	}
	return footerStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderFooter() string {
	return footerStyle.Render("ctrl+r restart  ctrl+n new test  ctrl+c quit")
}
