package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/application/services"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

func newEventStreamServer(t *testing.T, messages [][]byte, dialedAs chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("clientId")
		if clientID == "" {
			t.Error("Expected a clientId query parameter")
		}
		if dialedAs != nil {
			select {
			case dialedAs <- clientID:
			default:
			}
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error("Failed to upgrade connection:", err)
			return
		}
		defer func() { _ = conn.Close() }()
		for _, message := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
		// Keep the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func newListenerForServer(server *httptest.Server, clientID string) *comfyEventListener {
	wsUrl := "ws" + strings.TrimPrefix(server.URL, "http")
	return NewComfyEventListener(NewZerologWrapper(), &config.ComfyConfig{WsUrl: wsUrl}, clientID).(*comfyEventListener)
}

func TestWaitForCompletionMatchesPrompt(t *testing.T) {
	dialedAs := make(chan string, 1)
	server := newEventStreamServer(t, [][]byte{
		[]byte(`{"type": "status", "data": {}}`),
		[]byte(`{"type": "executing", "data": {"node": "40", "prompt_id": "abc-123"}}`),
		[]byte(`{"type": "executing", "data": {"node": null, "prompt_id": "other-prompt"}}`),
		[]byte(`{"type": "executing", "data": {"node": null, "prompt_id": "abc-123"}}`),
	}, dialedAs)
	defer server.Close()

	listener := newListenerForServer(server, "client-9f2")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := listener.WaitForCompletion(ctx, "abc-123"); err != nil {
		t.Fatal("Failed to wait for completion:", err)
	}
	if got := <-dialedAs; got != "client-9f2" {
		t.Fatalf("Expected the stream to connect as the configured client id, got %q", got)
	}
}

func TestWaitForCompletionContextDeadline(t *testing.T) {
	server := newEventStreamServer(t, nil, nil)
	defer server.Close()

	listener := newListenerForServer(server, "client-9f2")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := listener.WaitForCompletion(ctx, "abc-123")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("Expected deadline exceeded, got:", err)
	}
}

type recordingBackend struct {
	mu         sync.Mutex
	submitAsID string
	outputs    map[string][]domain.OutputFile
}

func (b *recordingBackend) SubmitPrompt(ctx context.Context, graph domain.ExecutionGraph, clientID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitAsID = clientID
	return "prompt-e2e", nil
}

func (b *recordingBackend) GetHistory(ctx context.Context, promptID string) (*outbound.HistoryEntry, error) {
	return &outbound.HistoryEntry{Found: true, Completed: true, Outputs: b.outputs}, nil
}

func (b *recordingBackend) FetchOutput(ctx context.Context, file domain.OutputFile) ([]byte, error) {
	return nil, nil
}

func (b *recordingBackend) Ping(ctx context.Context) error {
	return nil
}

type goDispatcher struct{}

func (goDispatcher) Submit(task func()) error {
	go task()
	return nil
}

// The tracker and the event listener must present the same client id to the
// backend. The backend only delivers per-prompt events to the session that
// submitted the prompt, so a listener under a different id never hears about
// completion and the job idles until its deadline.
func TestSubmissionAndStreamShareClientID(t *testing.T) {
	dialedAs := make(chan string, 1)
	server := newEventStreamServer(t, [][]byte{
		[]byte(`{"type": "executing", "data": {"node": null, "prompt_id": "prompt-e2e"}}`),
	}, dialedAs)
	defer server.Close()

	clientID := uuid.NewString()
	comfyConfig := &config.ComfyConfig{
		WsUrl:           "ws" + strings.TrimPrefix(server.URL, "http"),
		PollInterval:    2 * time.Millisecond,
		RequestTimeout:  time.Second,
		JobTimeout:      5 * time.Second,
		MaxPollFailures: 3,
	}

	watcher := NewComfyEventListener(NewZerologWrapper(), comfyConfig, clientID)
	backend := &recordingBackend{outputs: map[string][]domain.OutputFile{
		"94": {{Filename: "video_00001.mp4", Kind: "output"}},
	}}
	registry := services.NewJobRegistry()
	tracker := services.NewJobTracker(NewZerologWrapper(), goDispatcher{}, backend,
		watcher, nil, registry, comfyConfig, clientID)

	job, err := tracker.Track(context.Background(), domain.ExecutionGraph{}, domain.GenerationParams{}, "default")
	if err != nil {
		t.Fatal("Failed to track job:", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var terminal domain.Job
	for {
		if snapshot, ok := registry.Get(job.ID); ok && snapshot.State.Terminal() {
			terminal = snapshot
			break
		}
		if time.Now().After(deadline) {
			snapshot, _ := registry.Get(job.ID)
			t.Fatalf("Job never reached a terminal state, stuck at %s", snapshot.State)
		}
		time.Sleep(2 * time.Millisecond)
	}

	if terminal.State != domain.JobCompleted {
		t.Fatalf("Expected completed, got %s with error %q", terminal.State, terminal.Error)
	}

	backend.mu.Lock()
	submitAsID := backend.submitAsID
	backend.mu.Unlock()
	if submitAsID != clientID {
		t.Fatalf("Prompt submitted as %q, expected %q", submitAsID, clientID)
	}
	if got := <-dialedAs; got != clientID {
		t.Fatalf("Stream connected as %q, expected %q", got, clientID)
	}
}

func TestWaitForCompletionDialFailure(t *testing.T) {
	listener := NewComfyEventListener(NewZerologWrapper(), &config.ComfyConfig{
		WsUrl: "ws://127.0.0.1:1",
	}, "client-9f2").(*comfyEventListener)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := listener.WaitForCompletion(ctx, "abc-123"); err == nil {
		t.Fatal("Expected an error when the stream endpoint is unreachable")
	}
}
