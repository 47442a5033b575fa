package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vidsum/vidsum/pkg/vidsum/logging"
	"github.com/vidsum/vidsum/pkg/vidsum/scan"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateScanning AppState = iota
	StateResults
)

// Options configures the TUI application.
type Options struct {
	// Scan is the fully assembled scan job: roots, workers, and open
	// catalog, cache, and report handles.
	Scan scan.Options
}

// Model is the main Bubble Tea model for the vidsum TUI.
type Model struct {
	state       AppState
	scanModel   ScanModel
	resultModel ResultModel
	options     Options

	// Scanning state
	ctx          context.Context
	cancel       context.CancelFunc
	scanDone     bool
	scanErr      error
	progressChan chan scan.Progress

	// Log viewer overlay state
	logs *LogViewerState

	// Window dimensions
	width  int
	height int
}

// NewModel creates a new TUI model with the given options.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateScanning,
		scanModel:    NewScanModel(opts.Scan.Roots, scanMode(opts.Scan)),
		options:      opts,
		ctx:          ctx,
		cancel:       cancel,
		width:        80,
		height:       24,
		progressChan: make(chan scan.Progress, 100),
		logs:         NewLogViewerState(logging.GetBuffer()),
	}
}

// scanMode names the scan flavor for display.
func scanMode(opts scan.Options) string {
	switch {
	case opts.Full:
		return "full"
	case opts.Verify:
		return "verify"
	default:
		return "scan"
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.scanModel.Init(),
		m.startScan(),
		m.listenForProgress(),
		m.scheduleRefresh(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshMsg:
		if m.state == StateScanning && !m.scanDone {
			return m, m.scheduleRefresh()
		}
		return m, nil

	case ProgressMsg:
		m.scanModel.SetProgress(scan.Progress(msg))
		return m, m.listenForProgress()

	case ScanCompleteMsg:
		return m.finishScan(msg), nil

	case spinner.TickMsg:
		if m.state != StateScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.scanModel.spinner, cmd = m.scanModel.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resize propagates a terminal size change to every sub-view.
func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	m.scanModel.width, m.scanModel.height = msg.Width, msg.Height
	m.resultModel.SetDimensions(msg.Width, msg.Height)
	return m
}

// finishScan records the scan outcome. A successful scan switches to
// the results view; on error the scanning view stays up to show the
// failure.
func (m Model) finishScan(msg ScanCompleteMsg) Model {
	m.scanDone = true
	m.scanErr = msg.Err
	m.scanModel.SetDone(msg.Err)

	if msg.Err == nil {
		m.state = StateResults
		m.resultModel = NewResultModel(msg.Report)
		m.resultModel.SetDimensions(m.width, m.height)
	}
	return m
}

// handleKey routes keyboard input. The log viewer captures keys while
// open; otherwise keys go to whichever view is active.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}
	if m.logs.Open {
		return m.handleLogKey(key)
	}

	switch key {
	case "q", "esc":
		if m.state == StateScanning {
			m.cancel()
		}
		return m, tea.Quit
	case "l":
		m.logs.Toggle()
	default:
		if m.state == StateResults {
			m.resultModel.HandleKey(key)
		}
	}
	return m, nil
}

// handleLogKey handles keyboard input while the log viewer is open.
func (m Model) handleLogKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "l":
		m.logs.Toggle()
	case "1", "2", "3", "4":
		// Keys 1-4 map onto the level constants in order.
		m.logs.SetFilterLevel(logging.Level(key[0] - '1'))
	case "up", "k":
		m.logs.ScrollUp()
	case "down", "j":
		m.logs.ScrollDown(m.logVisibleRows())
	}
	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	if m.logs.Open {
		return m.renderLogOverlay()
	}

	switch m.state {
	case StateScanning:
		return m.scanModel.View()
	case StateResults:
		return m.resultModel.View()
	}
	return ""
}

// renderLogOverlay renders the full-screen log viewer.
func (m Model) renderLogOverlay() string {
	content := renderLogViewer(m.logs.Buffer.Entries(), m.logs.FilterLevel,
		m.logs.ScrollOffset, max(m.width-4, 40), m.height-4)

	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// logVisibleRows is the number of log lines the overlay can show.
func (m Model) logVisibleRows() int {
	return max(m.height-6, 1)
}

// refreshMsg drives the elapsed clock and pulse bar while a scan runs.
type refreshMsg struct{}

// scheduleRefresh returns a command that fires the next UI refresh.
func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// startScan runs the scan job in the background. Progress flows through
// progressChan; the final report or error comes back as the command's
// message.
func (m Model) startScan() tea.Cmd {
	ch := m.progressChan
	opts := m.options.Scan
	ctx := m.ctx

	return func() tea.Msg {
		defer close(ch)

		opts.OnProgress = func(p scan.Progress) {
			select {
			case ch <- p:
			default: // drop updates when the UI is behind
			}
		}

		scanner, err := scan.New(opts)
		if err != nil {
			return ScanCompleteMsg{Err: err}
		}

		rep, err := scanner.Run(ctx)
		if err != nil {
			return ScanCompleteMsg{Err: err}
		}
		return ScanCompleteMsg{Report: rep}
	}
}

// listenForProgress waits for the next progress update. A closed
// channel yields nil, which ends the listen loop.
func (m Model) listenForProgress() tea.Cmd {
	ch := m.progressChan
	return func() tea.Msg {
		if p, ok := <-ch; ok {
			return ProgressMsg(p)
		}
		return nil
	}
}

// Run starts the TUI application and blocks until it exits. A scan that
// failed outright is returned as an error so the command exits nonzero.
func Run(opts Options) error {
	model := NewModel(opts)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.scanErr != nil {
		return m.scanErr
	}
	return nil
}
