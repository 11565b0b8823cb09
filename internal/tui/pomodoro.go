// Package tui is the terminal view of the planner: the pomodoro timer next to
// the cached task list.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/study-planner/internal/classify"
	"github.com/BuzzLyutic/study-planner/internal/model"
	"github.com/BuzzLyutic/study-planner/internal/pomodoro"
	"github.com/BuzzLyutic/study-planner/internal/service"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	clockStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder())
	workStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	breakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	noticeStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var filters = []model.Filter{model.FilterAll, model.FilterPending, model.FilterCompleted, model.FilterOverdue}

type tickMsg time.Time

// Model drives a PomodoroService from a one-second tea.Tick.
type Model struct {
	ctx      context.Context
	pomo     *service.PomodoroService
	tasks    []model.Task
	filter   int
	now      func() time.Time
	loc      *time.Location
	interval time.Duration
	notice   string
}

// New builds the view. Deadlines are judged in loc, which should be the
// configured TIMEZONE; nil means the machine's local zone.
func New(ctx context.Context, pomo *service.PomodoroService, tasks []model.Task, loc *time.Location) *Model {
	if loc == nil {
		loc = time.Local
	}
	return &Model{
		ctx:      ctx,
		pomo:     pomo,
		tasks:    tasks,
		now:      time.Now,
		loc:      loc,
		interval: time.Second,
	}
}

// Run blocks until the user quits.
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s", " ":
			m.pomo.Start(m.ctx)
			m.notice = ""
		case "p":
			m.pomo.Pause(m.ctx)
		case "r":
			m.pomo.Reset(m.ctx)
			m.notice = ""
		case "f", "tab":
			m.filter = (m.filter + 1) % len(filters)
		}
		return m, nil
	case tickMsg:
		ev := m.pomo.Tick(m.ctx)
		if ev.Kind == pomodoro.EventPhaseComplete {
			m.notice = completionNotice(ev.Finished)
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	state := m.pomo.State()

	b.WriteString(titleStyle.Render("Study Planner"))
	b.WriteString("\n\n")

	phase := workStyle.Render("Focus")
	if state.Phase == pomodoro.PhaseBreak {
		phase = breakStyle.Render("Break")
	}
	fmt.Fprintf(&b, "%s  %s  sessions: %d\n", phase, state.Status, state.SessionsCompleted)
	b.WriteString(clockStyle.Render(pomodoro.Clock(state.RemainingSeconds)))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	now := m.now().In(m.loc)
	filter := filters[m.filter]
	visible := classify.SortByDeadline(classify.Classify(m.tasks, filter, now), now.Location())
	stats := classify.Aggregate(m.tasks)

	fmt.Fprintf(&b, "\nTasks [%s]  %d/%d done, productivity %d%%\n", filter, stats.Completed, stats.Total, stats.ProductivityScore)
	if len(visible) == 0 {
		b.WriteString(helpStyle.Render("  nothing here"))
		b.WriteString("\n")
	}
	for _, t := range visible {
		b.WriteString("  ")
		b.WriteString(renderTask(t, now))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("s start  p pause  r reset  f filter  q quit"))
	return b.String()
}

func renderTask(t model.Task, now time.Time) string {
	due := t.DueDate
	if t.HasDueTime() {
		due += " " + *t.DueTime
	}
	line := fmt.Sprintf("%-6s %s (due %s)", t.Priority, t.Title, due)
	switch {
	case t.Status == model.StatusCompleted:
		return doneStyle.Render(line)
	case classify.IsOverdue(t, now):
		return overdueStyle.Render(line + " overdue")
	}
	return line
}

func completionNotice(finished pomodoro.Phase) string {
	if finished == pomodoro.PhaseWork {
		return "Work session complete! Time for a break."
	}
	return "Break over. Ready to focus?"
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
