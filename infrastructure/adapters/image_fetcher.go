package adapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zullum/comfyui-wan/application/ports/outbound"
	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

type imageFetcher struct {
	logger   outbound.LoggerPort
	fetcher  ContentFetcher
	inputDir string
}

// NewImageFetcher resolves request images into the backend's input
// directory, either by downloading a remote URL or by decoding an inline
// data URI.
func NewImageFetcher(logger outbound.LoggerPort, fetcher ContentFetcher, comfyConfig *config.ComfyConfig) outbound.ImageSourcePort {
	return &imageFetcher{
		logger:   logger,
		fetcher:  fetcher,
		inputDir: comfyConfig.InputDir,
	}
}

func (f *imageFetcher) Resolve(ctx context.Context, image string, token string) (string, error) {
	switch {
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return f.download(ctx, image, token)
	case strings.HasPrefix(image, "data:image/"):
		return f.decode(image, token)
	default:
		return "", &domain.ValidationError{Message: "image must be a URL or base64 encoded data"}
	}
}

func (f *imageFetcher) download(ctx context.Context, imageUrl string, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageUrl, nil)
	if err != nil {
		return "", err
	}

	data, err := f.fetcher.FetchContent(req)
	if err != nil {
		f.logger.Error(err, "Failed to download image from URL")
		return "", &domain.ValidationError{Message: "failed to download image from URL"}
	}

	return f.store(fmt.Sprintf("input_%s.jpg", token), data)
}

func (f *imageFetcher) decode(image string, token string) (string, error) {
	parts := strings.SplitN(image, ",", 2)
	if len(parts) != 2 {
		return "", &domain.ValidationError{Message: "malformed base64 image payload"}
	}

	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		f.logger.Error(err, "Failed to decode base64 image")
		return "", &domain.ValidationError{Message: "malformed base64 image payload"}
	}

	return f.store(fmt.Sprintf("input_%s.png", token), data)
}

func (f *imageFetcher) store(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(f.inputDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(f.inputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		f.logger.ErrorWithFields(err, "Failed to store input image", map[string]interface{}{
			"path": path,
		})
		return "", err
	}

	return filename, nil
}
