package backend_test

import (
	"context"
	"testing"
	"time"

	"github.com/verte-zerg/reptrack/internal/backend"
	"github.com/verte-zerg/reptrack/internal/model"
)

func nextFrame(t *testing.T, frames <-chan backend.Frame) (backend.Frame, bool) {
	t.Helper()
	select {
	case f, ok := <-frames:
		return f, ok
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame")
		return backend.Frame{}, false
	}
}

func TestSubscribeDeliversInOrder(t *testing.T) {
	fake, client := newFixture(t)
	stream, err := client.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	t.Cleanup(func() { _ = stream.Close() })
	if !fake.WaitForSubscriber(2 * time.Second) {
		t.Fatalf("subscriber never registered")
	}

	for i := 1; i <= 3; i++ {
		fake.Push(model.Stats{TotalReps: i, FormState: model.FormCorrect, Stage: model.StageUp})
	}
	for i := 1; i <= 3; i++ {
		f, ok := nextFrame(t, stream.Frames())
		if !ok {
			t.Fatalf("stream closed early")
		}
		if f.Err != nil {
			t.Fatalf("unexpected frame error: %v", f.Err)
		}
		stats, err := model.ParseStats(f.Data)
		if err != nil {
			t.Fatalf("parse frame: %v", err)
		}
		if stats.TotalReps != i {
			t.Fatalf("expected reps %d, got %d", i, stats.TotalReps)
		}
	}
}

func TestSubscribePassesRawPayload(t *testing.T) {
	fake, client := newFixture(t)
	stream, err := client.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	t.Cleanup(func() { _ = stream.Close() })
	if !fake.WaitForSubscriber(2 * time.Second) {
		t.Fatalf("subscriber never registered")
	}
	fake.PushRaw("not json")
	f, ok := nextFrame(t, stream.Frames())
	if !ok || string(f.Data) != "not json" {
		t.Fatalf("expected raw payload, got %q ok=%v", f.Data, ok)
	}
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	fake, client := newFixture(t)
	stream, err := client.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if !fake.WaitForSubscriber(2 * time.Second) {
		t.Fatalf("subscriber never registered")
	}
	_ = stream.Close()
	_ = stream.Close()

	for {
		f, ok := nextFrame(t, stream.Frames())
		if !ok {
			break
		}
		if f.Err != nil {
			t.Fatalf("expected no error frame after local close, got %v", f.Err)
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for fake.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("server still has %d subscribers", fake.Subscribers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubscribeFailsWithoutServer(t *testing.T) {
	client, err := backend.NewClient(backend.Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Subscribe(context.Background()); err == nil {
		t.Fatalf("expected dial error")
	}
}
