package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jarvis/internal/domain"
)

// Client talks to the assistant relay over its single request/response
// contract. Failures are surfaced to the caller as-is; the orchestrator
// shows them in the transcript and does not retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type askRequest struct {
	Message string           `json:"message"`
	History []domain.Message `json:"history"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// Ask sends one turn. History is already capped by the caller. A 2xx
// response without a reply maps to the fixed fallback string; any non-2xx
// becomes a RelayError carrying the body text.
func (c *Client) Ask(ctx context.Context, message string, history []domain.Message) (string, error) {
	if history == nil {
		history = []domain.Message{}
	}
	bodyBytes, err := json.Marshal(askRequest{Message: message, History: history})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/assistant", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return "", &domain.RelayError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}

	var result askResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Reply == "" {
		return domain.FallbackReply, nil
	}
	return result.Reply, nil
}
