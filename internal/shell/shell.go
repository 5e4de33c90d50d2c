// Package shell implements the application lifecycle: startup, camera runs
// and the live stats subscription.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verte-zerg/reptrack/internal/backend"
	"github.com/verte-zerg/reptrack/internal/model"
)

// StartFailedAlert is shown when the camera pipeline could not be started.
const StartFailedAlert = "Failed to start camera. Make sure the backend is running!"

// StreamFailedAlert is shown when the camera started but live stats could not be opened.
const StreamFailedAlert = "Camera started but live stats are unavailable. Tracking was stopped."

var (
	// ErrNotReady is returned for commands issued before acknowledgement.
	ErrNotReady = errors.New("startup not acknowledged")
	// ErrBusy is returned while another command is awaiting its response.
	ErrBusy = errors.New("another command is in progress")
	// ErrClosed is returned after teardown.
	ErrClosed = errors.New("shell closed")
)

// State is the lifecycle state.
type State int

const (
	StateStartup State = iota
	StateMainIdle
	StateMainRunning
)

func (s State) String() string {
	switch s {
	case StateStartup:
		return "startup"
	case StateMainIdle:
		return "idle"
	case StateMainRunning:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Backend is the remote tracking service.
type Backend interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Reset(ctx context.Context) (model.Stats, error)
	Subscribe(ctx context.Context) (backend.Stream, error)
}

// Logger receives diagnostics that are not shown to the user.
type Logger interface {
	Printf(format string, args ...any)
}

// View is a copy of the shell state for rendering.
type View struct {
	Phase      model.Phase
	State      State
	Running    bool
	Stats      model.Stats
	Alert      string
	Subscribed bool
	Busy       bool
}

// Shell owns the view phase, the run flag, the current snapshot and the
// subscription. A subscription is open exactly while running is true.
type Shell struct {
	backend Backend
	logger  Logger

	mu         sync.Mutex
	phase      model.Phase
	running    bool
	stats      model.Stats
	stream     backend.Stream
	generation uint64
	alert      string
	busy       bool
	closed     bool
}

// New returns a shell in the startup phase with the default snapshot.
func New(b Backend, logger Logger) *Shell {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Shell{
		backend: b,
		logger:  logger,
		phase:   model.PhaseStartup,
		stats:   model.DefaultStats(),
	}
}

// Acknowledge moves from startup to the main view when understood is true.
// It reports whether the transition happened.
func (s *Shell) Acknowledge(understood bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !understood || s.phase != model.PhaseStartup {
		return false
	}
	s.phase = model.PhaseMain
	return true
}

// Start starts the backend pipeline and opens the live subscription.
func (s *Shell) Start(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		return nil
	}

	if err := s.backend.Start(ctx); err != nil {
		s.logger.Printf("failed to start camera: %v", err)
		s.setAlert(StartFailedAlert)
		return fmt.Errorf("start camera: %w", err)
	}
	stream, err := s.backend.Subscribe(ctx)
	if err != nil {
		s.logger.Printf("failed to open live stats: %v", err)
		if serr := s.backend.Stop(ctx); serr != nil {
			s.logger.Printf("failed to stop camera after stream failure: %v", serr)
		}
		s.setAlert(StreamFailedAlert)
		return fmt.Errorf("open live stats: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if cerr := stream.Close(); cerr != nil {
			s.logger.Printf("failed to close live stats: %v", cerr)
		}
		return nil
	}
	s.running = true
	s.stream = stream
	s.generation++
	return nil
}

// Stop stops the backend pipeline. The run flag is cleared and the
// subscription closed whatever the backend answers; failures are only logged.
func (s *Shell) Stop(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil
	}

	err := s.backend.Stop(ctx)
	if err != nil {
		s.logger.Printf("failed to stop camera: %v", err)
	}
	s.mu.Lock()
	s.running = false
	s.closeStreamLocked()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("stop camera: %w", err)
	}
	return nil
}

// Reset replaces the snapshot with the backend's reset value. On failure the
// current snapshot is kept. The run flag and phase are never touched.
func (s *Shell) Reset(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.finish()

	stats, err := s.backend.Reset(ctx)
	if err != nil {
		s.logger.Printf("failed to reset stats: %v", err)
		return fmt.Errorf("reset stats: %w", err)
	}
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}

// Frames returns the open subscription's frames and its generation. The
// channel is nil when no subscription is open.
func (s *Shell) Frames() (<-chan backend.Frame, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil, s.generation
	}
	return s.stream.Frames(), s.generation
}

// Deliver applies one frame from the subscription of generation gen. Frames
// from a closed subscription are dropped. A valid payload replaces the
// snapshot; transport errors and malformed payloads are logged and returned.
func (s *Shell) Deliver(gen uint64, frame backend.Frame) error {
	s.mu.Lock()
	current := s.stream != nil && gen == s.generation
	s.mu.Unlock()
	if !current {
		return nil
	}
	if frame.Err != nil {
		s.logger.Printf("live stats error: %v", frame.Err)
		return frame.Err
	}
	stats, err := model.ParseStats(frame.Data)
	if err != nil {
		s.logger.Printf("malformed live stats %q: %v", truncate(frame.Data, 120), err)
		return err
	}
	s.mu.Lock()
	if s.stream != nil && gen == s.generation {
		s.stats = stats
	}
	s.mu.Unlock()
	return nil
}

// StreamEnded records that the subscription of generation gen stopped
// delivering. The handle stays owned until Stop or Close; there is no
// reconnection.
func (s *Shell) StreamEnded(gen uint64) {
	s.mu.Lock()
	current := s.stream != nil && gen == s.generation
	s.mu.Unlock()
	if current {
		s.logger.Printf("live stats channel closed by backend")
	}
}

// Alert returns the pending user-visible alert, if any.
func (s *Shell) Alert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

// DismissAlert clears the pending alert.
func (s *Shell) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = ""
}

// View returns a snapshot of the shell state.
func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Phase:      s.phase,
		State:      s.stateLocked(),
		Running:    s.running,
		Stats:      s.stats,
		Alert:      s.alert,
		Subscribed: s.stream != nil,
		Busy:       s.busy,
	}
}

// Close tears the shell down, closing any open subscription. Safe to repeat.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.running = false
	s.closeStreamLocked()
}

func (s *Shell) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.phase != model.PhaseMain {
		return ErrNotReady
	}
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Shell) finish() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Shell) setAlert(msg string) {
	s.mu.Lock()
	s.alert = msg
	s.mu.Unlock()
}

func (s *Shell) stateLocked() State {
	switch {
	case s.phase == model.PhaseStartup:
		return StateStartup
	case s.running:
		return StateMainRunning
	default:
		return StateMainIdle
	}
}

func (s *Shell) closeStreamLocked() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Close(); err != nil {
		s.logger.Printf("failed to close live stats: %v", err)
	}
	s.stream = nil
	s.generation++
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}
