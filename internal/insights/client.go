// Package insights generates narrative commentary on variance reports via
// an OpenAI-compatible API.
package insights

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ADanMan/datarails-open/internal/model"
)

// Request modes supported by OpenAI-compatible endpoints.
const (
	ModeChatCompletions = "chat-completions"
	ModeResponses       = "responses"
)

const (
	requestTimeout = 30 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrNoAPIKey indicates no API key was configured.
	ErrNoAPIKey = errors.New("insights: an API key is required to request AI insights")
	// ErrUnauthorized indicates the API key was rejected upstream.
	ErrUnauthorized = errors.New("insights: unauthorized (API key rejected)")
	// ErrRateLimited indicates the upstream rate limit was hit.
	ErrRateLimited = errors.New("insights: rate limited")
)

// DefaultPrompt is used when the caller does not supply one.
const DefaultPrompt = "You are an FP&A analyst. Review the variance report data, " +
	"highlight major drivers and noteworthy patterns, and suggest follow-up " +
	"questions for the finance team."

const systemText = "You provide concise but detailed narrative insights about " +
	"financial performance based on tabular data."

// Config holds explicit client configuration; nothing is read from process
// globals here.
type Config struct {
	APIKey  string
	APIBase string
	Model   string
	Mode    string
}

// Client talks to one OpenAI-compatible endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient validates the config and returns a client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	switch cfg.Mode {
	case ModeChatCompletions, ModeResponses:
	default:
		return nil, fmt.Errorf("insights: API mode must be %q or %q, got %q",
			ModeChatCompletions, ModeResponses, cfg.Mode)
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}, nil
}

// SetHTTPClient swaps the underlying HTTP client. Used by tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// Generate sends the variance rows to the configured endpoint and returns
// the narrative text. The rows travel as CSV inside the user prompt.
func (c *Client) Generate(ctx context.Context, rows []model.VarianceRow, prompt string) (string, error) {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	userText := prompt + "\n\nVariance data (CSV):\n" + FormatRows(rows)

	switch c.cfg.Mode {
	case ModeResponses:
		return c.generateResponses(ctx, userText)
	default:
		return c.generateChat(ctx, userText)
	}
}

func (c *Client) generateChat(ctx context.Context, userText string) (string, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemText},
			{Role: "user", Content: userText},
		},
	}

	body, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("insights: parsing chat response: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("insights: upstream returned no completion text")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) generateResponses(ctx context.Context, userText string) (string, error) {
	payload := responsesRequest{
		Model: c.cfg.Model,
		Input: []responsesInput{
			{Role: "system", Content: []responsesContent{{Type: "text", Text: systemText}}},
			{Role: "user", Content: []responsesContent{{Type: "text", Text: userText}}},
		},
	}

	body, err := c.post(ctx, "/responses", payload)
	if err != nil {
		return "", err
	}

	var resp responsesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("insights: parsing responses output: %w", err)
	}

	if text := strings.TrimSpace(resp.OutputText); text != "" {
		return text, nil
	}
	var b strings.Builder
	for _, out := range resp.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" || content.Type == "text" {
				b.WriteString(content.Text)
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("insights: upstream returned no output text")
	}
	return text, nil
}

// post performs an authenticated JSON POST and returns the response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("insights: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("insights: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insights: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("insights: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("insights: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// FormatRows serializes variance rows as CSV for inclusion in a prompt.
// VariancePct renders empty when undefined.
func FormatRows(rows []model.VarianceRow) string {
	if len(rows) == 0 {
		return "No financial data was provided."
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"period", "department", "account", "actual", "budget", "variance", "variance_pct"})
	for _, r := range rows {
		pct := ""
		if r.VariancePct != nil {
			pct = strconv.FormatFloat(*r.VariancePct, 'g', -1, 64)
		}
		_ = w.Write([]string{
			r.Period,
			r.Department,
			r.Account,
			strconv.FormatFloat(r.Actual, 'g', -1, 64),
			strconv.FormatFloat(r.Budget, 'g', -1, 64),
			strconv.FormatFloat(r.Variance, 'g', -1, 64),
			pct,
		})
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
