// Package integrations holds the HTTP clients for the services the store
// depends on but does not run: the image host and the mail-delivery API.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

var ErrNotConfigured = errors.New("integration not configured")

// ImageHost uploads images and returns their public URL.
type ImageHost struct {
	url    string
	key    string
	client *http.Client
}

func NewImageHost(url, key string) *ImageHost {
	return &ImageHost{url: url, key: key, client: &http.Client{Timeout: 30 * time.Second}}
}

type imageHostResponse struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
	Success bool `json:"success"`
}

// Upload posts the image as the multipart field "image" with the API key as
// form value "key".
func (h *ImageHost) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	if h.url == "" || h.key == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("key", h.key); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: image host returned %d: %s", filename, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out imageHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode image host response: %w", err)
	}
	if out.Data.URL == "" {
		return "", fmt.Errorf("upload %s: image host returned no url", filename)
	}
	return out.Data.URL, nil
}
