// Package push delivers notifications through the Expo push service.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caerus-app/caerus-backend/internal/observability"
)

// DefaultURL is Expo's push endpoint.
const DefaultURL = "https://exp.host/--/api/v2/push/send"

const tokenPrefix = "ExponentPushToken["

var (
	// ErrInvalidToken is returned for tokens that are not Expo push tokens.
	ErrInvalidToken = errors.New("invalid expo push token")

	// ErrRejected is returned when Expo accepts the request but reports an
	// error ticket for the message.
	ErrRejected = errors.New("expo rejected message")
)

// ValidToken reports whether token looks like an Expo push token.
func ValidToken(token string) bool {
	return strings.HasPrefix(token, tokenPrefix)
}

// Message is one Expo push message.
type Message struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Sound string         `json:"sound,omitempty"`
	Badge *int           `json:"badge,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// ExpoClient posts messages to Expo.
type ExpoClient struct {
	URL  string
	HTTP *http.Client
}

// NewExpoClient returns a client for url (DefaultURL when empty).
func NewExpoClient(url string, timeout time.Duration) *ExpoClient {
	if url == "" {
		url = DefaultURL
	}
	return &ExpoClient{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

type ticket struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

// Send delivers m. The sound defaults to "default".
func (c *ExpoClient) Send(ctx context.Context, m Message) (err error) {
	if !ValidToken(m.To) {
		return ErrInvalidToken
	}
	if m.Sound == "" {
		m.Sound = "default"
	}
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() { observability.ObserveOutbound("expo", start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("expo push: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo push: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var t ticket
	if err := json.Unmarshal(raw, &t); err == nil && t.Data.Status == "error" {
		return fmt.Errorf("%w: %s", ErrRejected, t.Data.Message)
	}
	return nil
}
