package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tunepulse/tunepulse-api/internal/config"
)

// ImageHost uploads blobs to the configured image-hosting endpoint with a
// multipart POST. The host overwrites blobs when a key is reused.
type ImageHost struct {
	uploadURL string
	apiKey    string
	client    *http.Client
}

// NewImageHost builds the client from config.
func NewImageHost(cfg config.StorageConfig) *ImageHost {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ImageHost{
		uploadURL: cfg.UploadURL,
		apiKey:    cfg.APIKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload streams the blob as multipart form data and returns the public URL.
func (h *ImageHost) Upload(ctx context.Context, input *UploadInput) (*UploadResult, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		if err := writer.WriteField("folder", input.Folder); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("public_id", input.Key); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("overwrite", "true"); err != nil {
			pw.CloseWithError(err)
			return
		}
		part, err := writer.CreateFormFile("file", input.Key)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, input.Data); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.uploadURL, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("image host returned %d: %s", resp.StatusCode, body)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &UploadResult{Key: input.Key, URL: parsed.URL}, nil
}
