package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/reptrack/internal/backend"
	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/shell"
	"github.com/verte-zerg/reptrack/internal/theme"
)

const wideLayoutWidth = 90

// Options configures the program model.
type Options struct {
	Shell   *shell.Shell
	Themes  *theme.Store
	Styles  *Styles
	FeedURL string
	// Open hands the feed URL to the system viewer.
	Open   func(url string) error
	Logger shell.Logger
}

// Model implements the Bubble Tea interface for the startup and main views.
type Model struct {
	shell   *shell.Shell
	themes  *theme.Store
	styles  *Styles
	logger  shell.Logger
	open    func(string) error
	feedURL string
	qr      string

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	width  int
	height int

	understood bool
	pending    bool
	frames     <-chan backend.Frame
	listening  uint64
}

type (
	startDoneMsg struct{ err error }
	stopDoneMsg  struct{ err error }
	resetDoneMsg struct{ err error }
	openDoneMsg  struct{ err error }
	frameMsg     struct {
		gen   uint64
		frame backend.Frame
	}
	streamClosedMsg struct{ gen uint64 }
)

// NewModel constructs the program model.
func NewModel(opts Options) *Model {
	styles := opts.Styles
	if styles == nil {
		styles = NewStyles()
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger{}
	}
	m := &Model{
		shell:    opts.Shell,
		themes:   opts.Themes,
		styles:   styles,
		logger:   logger,
		open:     opts.Open,
		feedURL:  opts.FeedURL,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport: viewport.New(0, 0),
	}
	qr, err := renderQRCode(opts.FeedURL)
	if err != nil {
		logger.Printf("failed to encode feed QR code: %v", err)
	}
	m.qr = qr
	m.keys.sync(m.shell.View(), false)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.keys.sync(m.shell.View(), m.pending)
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case startDoneMsg:
		m.pending = false
		return m, m.listen()
	case stopDoneMsg, resetDoneMsg:
		m.pending = false
		return m, nil
	case openDoneMsg:
		if msg.err != nil {
			m.logger.Printf("failed to open feed: %v", msg.err)
		}
		return m, nil
	case frameMsg:
		_ = m.shell.Deliver(msg.gen, msg.frame)
		if msg.gen != m.listening || m.frames == nil {
			return m, nil
		}
		return m, waitForFrame(m.frames, msg.gen)
	case streamClosedMsg:
		m.shell.StreamEnded(msg.gen)
		if msg.gen == m.listening {
			m.frames = nil
		}
		return m, nil
	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.shell.Close()
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Dismiss) {
		m.shell.DismissAlert()
		return m, nil
	}
	if m.keys.alert {
		return m, nil
	}
	if key.Matches(msg, m.keys.Theme) {
		m.cycleTheme()
		return m, nil
	}
	if m.keys.phase == model.PhaseStartup {
		return m.handleStartupKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Start):
		return m, m.run(func(ctx context.Context) tea.Msg { return startDoneMsg{err: m.shell.Start(ctx)} })
	case key.Matches(msg, m.keys.Stop):
		return m, m.run(func(ctx context.Context) tea.Msg { return stopDoneMsg{err: m.shell.Stop(ctx)} })
	case key.Matches(msg, m.keys.Reset):
		return m, m.run(func(ctx context.Context) tea.Msg { return resetDoneMsg{err: m.shell.Reset(ctx)} })
	case key.Matches(msg, m.keys.Open):
		return m, openFeed(m.open, m.feedURL)
	}
	return m, nil
}

func (m *Model) handleStartupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.understood = !m.understood
		m.refreshStartup()
		return m, nil
	case key.Matches(msg, m.keys.Go):
		if m.shell.Acknowledge(m.understood) {
			m.keys.sync(m.shell.View(), m.pending)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// run marks a command pending and executes it off the update loop.
func (m *Model) run(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	m.pending = true
	m.keys.sync(m.shell.View(), m.pending)
	return tea.Batch(func() tea.Msg {
		return fn(context.Background())
	}, m.spinner.Tick)
}

// listen starts draining a newly opened subscription.
func (m *Model) listen() tea.Cmd {
	frames, gen := m.shell.Frames()
	if frames == nil || gen == m.listening {
		return nil
	}
	m.frames = frames
	m.listening = gen
	return waitForFrame(frames, gen)
}

// waitForFrame blocks until the next frame of subscription gen.
func waitForFrame(frames <-chan backend.Frame, gen uint64) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-frames
		if !ok {
			return streamClosedMsg{gen: gen}
		}
		return frameMsg{gen: gen, frame: frame}
	}
}

func openFeed(open func(string) error, url string) tea.Cmd {
	if open == nil || url == "" {
		return nil
	}
	return func() tea.Msg {
		return openDoneMsg{err: open(url)}
	}
}

func (m *Model) cycleTheme() {
	if m.themes == nil {
		return
	}
	if _, err := m.themes.Cycle(context.Background()); err != nil {
		m.logger.Printf("%v", err)
	}
	m.refreshStartup()
}

func (m *Model) resizeViewport() {
	helpHeight := 1
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-helpHeight, 1)
	m.refreshStartup()
}

func (m *Model) refreshStartup() {
	if m.width == 0 {
		return
	}
	m.viewport.SetContent(renderStartup(m.styles, m.width, m.understood))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	v := m.shell.View()
	m.keys.sync(v, m.pending)
	m.help.Styles = m.styles.Help
	m.help.Width = m.width
	footer := m.help.View(m.keys)

	var body string
	if v.Phase == model.PhaseStartup {
		body = m.viewport.View()
	} else {
		body = m.renderMain(v)
	}
	if v.Alert != "" {
		body = lipgloss.Place(m.width, max(m.height-1, 1), lipgloss.Center, lipgloss.Center,
			m.styles.Alert.Render("⚠️ "+v.Alert+"\n\n[enter] OK"))
	}
	return m.styles.App.Render(fitLines(body, m.width, max(m.height-1, 1)) + "\n" + footer)
}

func (m *Model) renderMain(v shell.View) string {
	header := m.styles.Header.Render(mainTitle)
	if m.pending {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, " ", m.spinner.View())
	}

	leftWidth, rightWidth := m.width, m.width
	wide := m.width >= wideLayoutWidth
	if wide {
		leftWidth = m.width * 55 / 100
		rightWidth = m.width - leftWidth - 1
	}
	camera := renderCameraFrame(m.styles, v.Running, m.feedURL, m.qr, leftWidth)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderCards(v.Stats, rightWidth),
		"",
		renderControls(m.styles, v.Running, m.keys, rightWidth),
	)

	var content string
	if wide {
		content = lipgloss.JoinHorizontal(lipgloss.Top, camera, " ", right)
	} else {
		content = lipgloss.JoinVertical(lipgloss.Left, camera, right)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", content)
}

func (m *Model) renderCards(stats model.Stats, width int) string {
	cards := []struct{ title, value, variant string }{
		{"FORM STATUS", strings.ToUpper(string(stats.FormState)), stats.FormState.Variant()},
		{"TOTAL REPS", strconv.Itoa(stats.TotalReps), "default"},
		{"STAGE", strings.ToUpper(string(stats.Stage)), "default"},
	}
	cardWidth := width / len(cards)
	horizontal := cardWidth >= 16
	if !horizontal {
		cardWidth = width
	}
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, renderStatCard(m.styles, c.title, c.value, c.variant, cardWidth))
	}
	if horizontal {
		return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// fitLines truncates or pads s to exactly height lines of at most width columns.
func fitLines(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	clip := lipgloss.NewStyle().MaxWidth(width)
	for i, line := range lines {
		lines[i] = clip.Render(line)
	}
	return strings.Join(lines, "\n")
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}
