// Package generating shows a spinner while an interview test is generated.
package generating

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intertest/internal/testgen"
	"github.com/abhisek/intertest/internal/ui/theme"
)

// GenerateFunc produces the test. It must honor ctx cancellation.
type GenerateFunc func(ctx context.Context) (*testgen.Test, error)

// ErrCanceled is returned when the user interrupts generation.
var ErrCanceled = errors.New("generation canceled")

// resultMsg is sent when generation finishes.
type resultMsg struct {
	Test *testgen.Test
	Err  error
}

// Model is the Bubble Tea model for the generation screen.
type Model struct {
	spinner spinner.Model
	label   string
	run     GenerateFunc
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time

	test *testgen.Test
	err  error
	done bool
}

// New creates a generating screen. label is shown next to the spinner.
func New(ctx context.Context, label string, run GenerateFunc) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(theme.Spinner),
		),
		label:   label,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}
}

// Init starts the spinner and the generation.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.generate())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.test, m.err, m.done = msg.Test, msg.Err, true
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancel()
			m.err, m.done = ErrCanceled, true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the spinner line. It is empty once generation is done so
// the caller can print the result cleanly.
func (m *Model) View() tea.View {
	return tea.NewView(m.line())
}

func (m *Model) line() string {
	if m.done {
		return ""
	}
	elapsed := time.Since(m.started).Truncate(time.Second)
	return fmt.Sprintf("%s %s %s\n",
		m.spinner.View(),
		theme.Body.Render(m.label),
		theme.Hint.Render(fmt.Sprintf("(%s, esc to cancel)", elapsed)))
}

// Result returns the generated test or the error that ended generation.
func (m *Model) Result() (*testgen.Test, error) {
	if !m.done {
		return nil, errors.New("generation still in progress")
	}
	return m.test, m.err
}

func (m *Model) generate() tea.Cmd {
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		t, err := run(ctx)
		return resultMsg{Test: t, Err: err}
	}
}

// Run shows the spinner on out while run executes and returns its result.
func Run(ctx context.Context, out io.Writer, label string, run GenerateFunc) (*testgen.Test, error) {
	m := New(ctx, label, run)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run spinner: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return fm.Result()
}
