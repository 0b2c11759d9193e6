package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/camdaq/pcoclient/internal/state"
	"github.com/camdaq/pcoclient/pco"
)

const defaultUITick = 500 * time.Millisecond

// Options configures the watch screen.
type Options struct {
	Context     context.Context
	Store       *state.Store
	ServiceName string
	Endpoint    string // flask endpoint shown in the header
	PollTick    time.Duration
	StayOpen    bool // keep the screen up after the run reaches a terminal state
}

// Model is the root state of the watch screen.
type Model struct {
	ctx         context.Context
	store       *state.Store
	serviceName string
	endpoint    string
	pollTick    time.Duration
	stayOpen    bool

	width  int
	height int
	ready  bool

	snapshot    state.Snapshot
	lastUpdated time.Time
	sawRunning  bool

	spin        spinner.Model
	receivedBar progress.Model
	writtenBar  progress.Model

	styles Styles
}

// New creates the watch model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultUITick
	}

	styles := DefaultTheme().Styles()
	spin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(styles.AccentText),
	)

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		serviceName: opts.ServiceName,
		endpoint:    opts.Endpoint,
		pollTick:    pollTick,
		stayOpen:    opts.StayOpen,
		spin:        spin,
		receivedBar: progress.New(progress.WithDefaultGradient()),
		writtenBar:  progress.New(progress.WithDefaultGradient()),
		styles:      styles,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.spin.Tick,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		barWidth := msg.Width - 30
		if barWidth < 10 {
			barWidth = 10
		}
		if barWidth > 60 {
			barWidth = 60
		}
		m.receivedBar.Width = barWidth
		m.writtenBar.Width = barWidth
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		if m.snapshot.Status.Running() {
			m.sawRunning = true
		} else if m.runEnded() {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// runEnded reports whether a run we watched go live has reached a terminal
// state, which closes the screen unless StayOpen is set. Transitional
// stop/kill states keep the screen up until the writer settles.
func (m Model) runEnded() bool {
	if m.stayOpen || !m.sawRunning {
		return false
	}
	switch m.snapshot.Status {
	case pco.StatusStopping, pco.StatusKilling:
		return false
	}
	return true
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the watch screen and blocks until the user quits, the watched
// run ends, or the context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if _, err := p.Run(); err != nil {
		if m.ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
