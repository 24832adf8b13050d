package adapters

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
)

type executingEvent struct {
	Type string `json:"type"`
	Data struct {
		Node     *string `json:"node"`
		PromptID string  `json:"prompt_id"`
	} `json:"data"`
}

type comfyEventListener struct {
	logger   outbound.LoggerPort
	wsUrl    string
	clientID string
}

// NewComfyEventListener subscribes to the backend's websocket event stream.
// The backend reports node-by-node execution; a nil node for the watched
// prompt id means the whole execution finished. clientID must be the same
// id prompts are submitted under: the backend routes per-prompt events to
// the session whose clientId matches the submission.
func NewComfyEventListener(logger outbound.LoggerPort, comfyConfig *config.ComfyConfig, clientID string) outbound.ExecutionWatcherPort {
	return &comfyEventListener{
		logger:   logger,
		wsUrl:    comfyConfig.WsUrl,
		clientID: clientID,
	}
}

func (l *comfyEventListener) WaitForCompletion(ctx context.Context, promptID string) error {
	endpoint := l.wsUrl + "?clientId=" + url.QueryEscape(l.clientID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		l.logger.Error(err, "Failed to connect to the backend event stream")
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
			_ = conn.Close()
		}
	}()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error(err, "Failed to read from the backend event stream")
			return err
		}

		// Binary frames carry preview images; only text frames carry
		// execution events.
		if messageType != websocket.TextMessage {
			continue
		}

		var event executingEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		if event.Type == "executing" && event.Data.Node == nil && event.Data.PromptID == promptID {
			return nil
		}
	}
}
