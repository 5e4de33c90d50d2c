// Package fakebackend serves an in-process stand-in for the tracking service.
package fakebackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/verte-zerg/reptrack/internal/model"
)

// Endpoint names a command route whose outcome can be scripted.
type Endpoint string

const (
	EndpointStart Endpoint = "start"
	EndpointStop  Endpoint = "stop"
	EndpointReset Endpoint = "reset"
)

// Failure selects how a scripted endpoint fails.
type Failure int

const (
	// FailNone lets the endpoint succeed.
	FailNone Failure = iota
	// FailStatus answers with HTTP 500.
	FailStatus
	// FailBody answers HTTP 200 with {"status": "error"}, as the camera route does.
	FailBody
)

// Options tunes the simulated pipeline.
type Options struct {
	// Interval pushes the current snapshot to subscribers while running. Zero disables.
	Interval time.Duration
	// Simulate advances reps and stage on every push.
	Simulate bool
}

// Server is a scriptable backend double.
type Server struct {
	opts     Options
	router   *mux.Router
	upgrader websocket.Upgrader

	mu          sync.Mutex
	running     bool
	stats       model.Stats
	failures    map[Endpoint]Failure
	subscribers map[*subscriber]struct{}
	subscribed  chan struct{}
	calls       map[string]int
	sessionIDs  []string
	frame       []byte
	tick        int
}

type subscriber struct {
	out  chan model.Stats
	raw  chan string
	done chan struct{}
}

// New builds a Server with the default snapshot.
func New(opts Options) *Server {
	s := &Server{
		opts:        opts,
		router:      mux.NewRouter(),
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		stats:       model.DefaultStats(),
		failures:    map[Endpoint]Failure{},
		subscribers: map[*subscriber]struct{}{},
		subscribed:  make(chan struct{}, 16),
		calls:       map[string]int{},
		frame:       placeholderFrame(),
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(s.recordSession)
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/camera/start", s.handleStart).Methods(http.MethodPost)
	s.router.HandleFunc("/camera/stop", s.handleStop).Methods(http.MethodPost)
	s.router.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	s.router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/video_feed", s.handleVideoFeed).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/stats", s.handleSocket)
}

// SetFailure scripts the outcome of an endpoint.
func (s *Server) SetFailure(endpoint Endpoint, failure Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = failure
}

// SetStats replaces the snapshot returned by /stats and /reset.
func (s *Server) SetStats(stats model.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
}

// Running reports whether the simulated camera is on.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Calls returns how often a path was requested.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// SessionIDs returns the session header of every request, in order.
func (s *Server) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sessionIDs...)
}

// Subscribers returns the number of open stats sockets.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// WaitForSubscriber blocks until a socket registers or the timeout elapses.
func (s *Server) WaitForSubscriber(timeout time.Duration) bool {
	select {
	case <-s.subscribed:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Push sends stats to every open socket and makes it the current snapshot.
func (s *Server) Push(stats model.Stats) {
	s.mu.Lock()
	s.stats = stats
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub.out <- stats:
		case <-sub.done:
		}
	}
}

// PushRaw sends an arbitrary text frame to every open socket.
func (s *Server) PushRaw(payload string) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub.raw <- payload:
		case <-sub.done:
		}
	}
}

// Run pushes snapshots on the configured interval until stop is closed.
func (s *Server) Run(stop <-chan struct{}) {
	if s.opts.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			running := s.running
			if running && s.opts.Simulate {
				s.advance()
			}
			current := s.stats
			s.mu.Unlock()
			if running {
				s.Push(current)
			}
		}
	}
}

// advance moves the simulated athlete through one tick.
func (s *Server) advance() {
	s.tick++
	if s.tick%5 != 0 {
		return
	}
	if s.stats.Stage == model.StageUp {
		s.stats.Stage = model.StageDown
		return
	}
	s.stats.Stage = model.StageUp
	s.stats.TotalReps++
	if s.stats.TotalReps%4 == 0 {
		s.stats.FormState = model.FormWrong
	} else {
		s.stats.FormState = model.FormCorrect
	}
}

func (s *Server) recordSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.sessionIDs = append(s.sessionIDs, r.Header.Get("X-Session-ID"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failure(endpoint Endpoint) Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[endpoint]
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "AI Push-Up Tracker API", "status": "running"})
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	switch s.failure(EndpointStart) {
	case FailStatus:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "camera pipeline crashed"})
		return
	case FailBody:
		writeJSON(w, http.StatusOK, map[string]any{"status": "error", "message": "Could not access camera. Check permissions."})
		return
	}
	s.mu.Lock()
	already := s.running
	s.running = true
	s.mu.Unlock()
	if already {
		writeJSON(w, http.StatusOK, map[string]any{"status": "already_running", "message": "Camera is already running"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "started", "message": "Camera started successfully"})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	if s.failure(EndpointStop) != FailNone {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "stop failed"})
		return
	}
	s.mu.Lock()
	was := s.running
	s.running = false
	s.mu.Unlock()
	if !was {
		writeJSON(w, http.StatusOK, map[string]any{"status": "not_running", "message": "Camera is not running"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "stopped", "message": "Camera stopped successfully"})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if s.failure(EndpointReset) != FailNone {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "reset failed"})
		return
	}
	s.mu.Lock()
	s.stats = model.DefaultStats()
	s.tick = 0
	stats := s.stats
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset", "message": "Stats reset successfully", "stats": stats})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

// handleVideoFeed streams the placeholder frame as multipart JPEG while running.
func (s *Server) handleVideoFeed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	flusher, _ := w.(http.Flusher)
	interval := s.opts.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for s.Running() {
		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
			return
		}
		if _, err := w.Write(s.frame); err != nil {
			return
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sub := &subscriber{
		out:  make(chan model.Stats),
		raw:  make(chan string),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	s.mu.Unlock()
	select {
	case s.subscribed <- struct{}{}:
	default:
	}

	defer func() {
		s.mu.Lock()
		delete(s.subscribers, sub)
		s.mu.Unlock()
		close(sub.done)
		_ = conn.Close()
	}()

	// The client never writes; reading only surfaces its close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case stats := <-sub.out:
			if err := conn.WriteJSON(stats); err != nil {
				return
			}
		case payload := <-sub.raw:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func placeholderFrame() []byte {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.SetGray(32, 24, color.Gray{Y: 0xFF})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil
	}
	return buf.Bytes()
}
