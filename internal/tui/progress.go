package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianshen/repodoc/internal/pipeline"
)

// ProgressEventMsg wraps a pipeline.ProgressEvent as a Bubble Tea message.
type ProgressEventMsg pipeline.ProgressEvent

// eventsClosedMsg reports that the run stopped emitting progress.
type eventsClosedMsg struct{}

// RunDoneMsg carries the outcome of the run.
type RunDoneMsg struct {
	Result *pipeline.AnalysisResult
	Err    error
}

// RunFunc executes one analysis, reporting progress to obs.
type RunFunc func(ctx context.Context, obs pipeline.Observer) (*pipeline.AnalysisResult, error)

// ProgressModel is the Bubble Tea model that renders a run's progress bar.
type ProgressModel struct {
	events  <-chan pipeline.ProgressEvent
	done    <-chan RunDoneMsg
	cancel  context.CancelFunc
	bar     progress.Model
	spinner spinner.Model
	current pipeline.ProgressEvent
	stages  []string
	result  *pipeline.AnalysisResult
	err     error
	width   int
	quit    bool
	failed  bool
}

var _ tea.Model = (*ProgressModel)(nil)

// NewProgressModel creates a ProgressModel reading events until the channel
// closes and then waiting for the outcome on done. cancel may be nil.
func NewProgressModel(events <-chan pipeline.ProgressEvent, done <-chan RunDoneMsg, cancel context.CancelFunc) *ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &ProgressModel{
		events:  events,
		done:    done,
		cancel:  cancel,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		spinner: sp,
		current: pipeline.ProgressEvent{Stage: pipeline.StageIdle, Label: "Starting"},
		width:   80,
	}
}

// Init implements tea.Model.
func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(ch <-chan pipeline.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return ProgressEventMsg(evt)
	}
}

func waitForDone(ch <-chan RunDoneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Update implements tea.Model.
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			if m.cancel != nil {
				m.cancel()
			}
			m.err = context.Canceled
			m.quit = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 10
		if barWidth > 80 {
			barWidth = 80
		}
		if barWidth < 10 {
			barWidth = 10
		}
		m.bar.Width = barWidth
		return m, nil

	case ProgressEventMsg:
		if msg.Stage == pipeline.StageFailed {
			m.failed = true
			return m, waitForEvent(m.events)
		}
		if m.current.Stage != pipeline.StageIdle && m.current.Label != "" {
			m.stages = append(m.stages, m.current.Label)
		}
		m.current = pipeline.ProgressEvent(msg)
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, waitForDone(m.done)

	case RunDoneMsg:
		m.result = msg.Result
		m.err = msg.Err
		m.quit = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(RenderBanner())
	b.WriteString("\n\n")

	for _, label := range m.stages {
		b.WriteString(successStyle.Render("✓ "))
		b.WriteString(mutedStyle.Render(label))
		b.WriteString("\n")
	}

	switch {
	case m.failed || (m.quit && m.err != nil):
		b.WriteString(errorStyle.Render("✗ " + m.current.Label))
	case m.quit:
		b.WriteString(successStyle.Render("✓ " + m.current.Label))
	default:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.current.Label))
	}
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(float64(m.current.Percent) / 100))
	b.WriteString("\n")
	return b.String()
}

// Result returns the run outcome once the model has quit.
func (m *ProgressModel) Result() (*pipeline.AnalysisResult, error) {
	return m.result, m.err
}

// RunWithProgress executes run while rendering a progress bar on the
// terminal, and returns its outcome.
func RunWithProgress(ctx context.Context, run RunFunc, opts ...tea.ProgramOption) (*pipeline.AnalysisResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obs := pipeline.NewChannelObserver()
	done := make(chan RunDoneMsg, 1)
	go func() {
		result, err := run(ctx, obs)
		obs.Close()
		done <- RunDoneMsg{Result: result, Err: err}
	}()

	m := NewProgressModel(obs.Events(), done, cancel)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return nil, fmt.Errorf("running progress view: %w", err)
	}
	return m.Result()
}
