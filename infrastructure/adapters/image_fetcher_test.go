package adapters

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zullum/comfyui-wan/config"
	"github.com/zullum/comfyui-wan/domain"
)

func newImageFetcherForDir(inputDir string) *imageFetcher {
	logger := NewZerologWrapper()
	comfyConfig := &config.ComfyConfig{
		InputDir:       inputDir,
		RequestTimeout: 5 * time.Second,
	}
	return NewImageFetcher(logger, NewContentFetcher(logger, comfyConfig.RequestTimeout), comfyConfig).(*imageFetcher)
}

func TestResolveDownloadsURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg bytes"))
	}))
	defer server.Close()

	inputDir := t.TempDir()
	fetcher := newImageFetcherForDir(inputDir)

	filename, err := fetcher.Resolve(context.Background(), server.URL+"/photo.jpg", "tok1")
	if err != nil {
		t.Fatal("Failed to resolve image URL:", err)
	}
	if filename != "input_tok1.jpg" {
		t.Fatalf("Unexpected filename %q", filename)
	}

	data, err := os.ReadFile(filepath.Join(inputDir, filename))
	if err != nil {
		t.Fatal("Failed to read stored image:", err)
	}
	if string(data) != "jpeg bytes" {
		t.Fatalf("Unexpected stored content: %q", data)
	}
}

func TestResolveDecodesDataURI(t *testing.T) {
	inputDir := t.TempDir()
	fetcher := newImageFetcherForDir(inputDir)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))

	filename, err := fetcher.Resolve(context.Background(), payload, "tok2")
	if err != nil {
		t.Fatal("Failed to resolve data URI:", err)
	}
	if filename != "input_tok2.png" {
		t.Fatalf("Unexpected filename %q", filename)
	}

	data, err := os.ReadFile(filepath.Join(inputDir, filename))
	if err != nil {
		t.Fatal("Failed to read stored image:", err)
	}
	if string(data) != "png bytes" {
		t.Fatalf("Unexpected stored content: %q", data)
	}
}

func TestResolveRejectsUnknownScheme(t *testing.T) {
	fetcher := newImageFetcherForDir(t.TempDir())

	_, err := fetcher.Resolve(context.Background(), "ftp://example.com/photo.jpg", "tok3")

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatal("Expected ValidationError, got:", err)
	}
}

func TestResolveRejectsMalformedBase64(t *testing.T) {
	fetcher := newImageFetcherForDir(t.TempDir())

	_, err := fetcher.Resolve(context.Background(), "data:image/png;base64,%%%not-base64%%%", "tok4")

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatal("Expected ValidationError, got:", err)
	}
}

func TestResolveDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := newImageFetcherForDir(t.TempDir())

	_, err := fetcher.Resolve(context.Background(), server.URL+"/missing.jpg", "tok5")

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatal("Expected ValidationError for a failed download, got:", err)
	}
}
