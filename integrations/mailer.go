package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// Mailer delivers mail through a JSON HTTP API authenticated with a bearer key.
type Mailer struct {
	url    string
	key    string
	from   string
	client *http.Client
}

func NewMailer(url, key, from string) *Mailer {
	return &Mailer{url: url, key: key, from: from, client: &http.Client{Timeout: 15 * time.Second}}
}

func (m *Mailer) Send(ctx context.Context, e Email) error {
	if m.url == "" || m.key == "" {
		return ErrNotConfigured
	}
	if e.From == "" {
		e.From = m.from
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.key)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send mail: api returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
