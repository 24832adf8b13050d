package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

type submitPromptPayload struct {
	Prompt   domain.ExecutionGraph `json:"prompt"`
	ClientID string                `json:"client_id"`
}

type submitPromptResponse struct {
	PromptID string `json:"prompt_id"`
}

type historyFileEntry struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

type historyExecution struct {
	Outputs map[string]map[string]json.RawMessage `json:"outputs"`
	Status  *struct {
		Completed bool          `json:"completed"`
		Messages  []interface{} `json:"messages"`
	} `json:"status"`
}

// outputFileKeys are the per-node output collections the backend is known
// to emit; anything under one of these keys is a retrievable file list.
var outputFileKeys = []string{"videos", "gifs", "images", "filenames"}

type comfyClient struct {
	logger  outbound.LoggerPort
	fetcher ContentFetcher
	apiUrl  string
	client  *http.Client
}

// NewComfyClient talks to the render backend's queue API: prompt
// submission, execution history and output retrieval.
func NewComfyClient(logger outbound.LoggerPort, fetcher ContentFetcher, comfyConfig *config.ComfyConfig) outbound.RenderBackendPort {
	return &comfyClient{
		logger:  logger,
		fetcher: fetcher,
		apiUrl:  comfyConfig.ApiUrl,
		client:  &http.Client{Timeout: comfyConfig.RequestTimeout},
	}
}

func (c *comfyClient) SubmitPrompt(ctx context.Context, graph domain.ExecutionGraph, clientID string) (string, error) {
	payload, err := json.Marshal(submitPromptPayload{Prompt: graph, ClientID: clientID})
	if err != nil {
		c.logger.Error(err, "Failed to marshal the prompt payload")
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiUrl+"/prompt", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Error(err, "Failed to reach the render backend")
		return "", err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Error(err, "Failed to close the response body")
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		return "", &domain.SubmissionRejectedError{
			StatusCode: res.StatusCode,
			Message:    string(body),
		}
	}

	var parsed submitPromptResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error(err, "Failed to unmarshal the submission response")
		return "", err
	}
	if parsed.PromptID == "" {
		return "", &domain.SubmissionRejectedError{
			StatusCode: res.StatusCode,
			Message:    "no prompt_id in submission response",
		}
	}

	return parsed.PromptID, nil
}

func (c *comfyClient) GetHistory(ctx context.Context, promptID string) (*outbound.HistoryEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiUrl+"/history/"+promptID, nil)
	if err != nil {
		return nil, err
	}

	raw, err := c.fetcher.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var history map[string]historyExecution
	if err := json.Unmarshal(raw, &history); err != nil {
		c.logger.Error(err, "Failed to unmarshal the history response")
		return nil, err
	}

	execution, found := history[promptID]
	if !found {
		return &outbound.HistoryEntry{}, nil
	}

	entry := &outbound.HistoryEntry{Found: true}

	// An outputs record means the execution ran to the end, whether or not
	// any of the collections below carries files we can serve.
	if len(execution.Outputs) > 0 {
		entry.Completed = true
	}
	if execution.Status != nil && execution.Status.Completed {
		entry.Completed = true
	}

	for nodeID, nodeOutputs := range execution.Outputs {
		for _, key := range outputFileKeys {
			rawFiles, ok := nodeOutputs[key]
			if !ok {
				continue
			}
			var files []historyFileEntry
			if err := json.Unmarshal(rawFiles, &files); err != nil {
				continue
			}
			for _, file := range files {
				if entry.Outputs == nil {
					entry.Outputs = make(map[string][]domain.OutputFile)
				}
				entry.Outputs[nodeID] = append(entry.Outputs[nodeID], domain.OutputFile{
					Filename:  file.Filename,
					Subfolder: file.Subfolder,
					Kind:      file.Type,
				})
			}
		}
	}

	if execution.Status != nil && !execution.Status.Completed && !entry.Completed {
		entry.Failed = true
		for _, message := range execution.Status.Messages {
			entry.Messages = append(entry.Messages, fmt.Sprint(message))
		}
	}

	return entry, nil
}

func (c *comfyClient) FetchOutput(ctx context.Context, file domain.OutputFile) ([]byte, error) {
	values := url.Values{}
	values.Set("filename", file.Filename)
	values.Set("subfolder", file.Subfolder)
	values.Set("type", file.Kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiUrl+"/view?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return c.fetcher.FetchContent(req)
}

func (c *comfyClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiUrl+"/system_stats", nil)
	if err != nil {
		return err
	}
	_, err = c.fetcher.FetchContent(req)
	return err
}
