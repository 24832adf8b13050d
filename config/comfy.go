package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type ComfyConfig struct {
	ApiUrl          string
	WsUrl           string
	InputDir        string
	PollInterval    time.Duration
	RequestTimeout  time.Duration
	JobTimeout      time.Duration
	MaxPollFailures int
}

func GetComfyConfig() (*ComfyConfig, error) {
	apiUrl := os.Getenv("COMFYUI_URL")
	if apiUrl == "" {
		apiUrl = "http://127.0.0.1:8188"
	}

	inputDir := os.Getenv("COMFYUI_INPUT_DIR")
	if inputDir == "" {
		inputDir = "/workspace/ComfyUI/input"
	}

	pollSeconds, err := intFromEnv("COMFYUI_POLL_INTERVAL_SECONDS", 2)
	if err != nil {
		return nil, err
	}

	requestSeconds, err := intFromEnv("COMFYUI_REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	jobMinutes, err := intFromEnv("COMFYUI_JOB_TIMEOUT_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	maxPollFailures, err := intFromEnv("COMFYUI_MAX_POLL_FAILURES", 5)
	if err != nil {
		return nil, err
	}

	return &ComfyConfig{
		ApiUrl:          apiUrl,
		WsUrl:           os.Getenv("COMFYUI_WS_URL"),
		InputDir:        inputDir,
		PollInterval:    time.Duration(pollSeconds) * time.Second,
		RequestTimeout:  time.Duration(requestSeconds) * time.Second,
		JobTimeout:      time.Duration(jobMinutes) * time.Minute,
		MaxPollFailures: maxPollFailures,
	}, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
