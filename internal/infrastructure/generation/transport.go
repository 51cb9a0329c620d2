package generation

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

	"github.com/ekomarov/drafter/internal/core/domain"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out, operation)
}

func (c *Client) getJSON(ctx context.Context, path string, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	return c.do(req, out, operation)
}

func (c *Client) do(req *http.Request, out any, operation string) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransportError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func wrapTransportError(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.WrapError(domain.ErrNetworkFailed, operation, err)
}

// statusError maps an error response onto the domain taxonomy. The
// service reports the human-readable reason in a JSON "detail" field;
// when present it becomes the error message, otherwise the raw body or
// status line stands in.
func statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := extractDetail(body)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = resp.Status
	}

	if resp.StatusCode >= 500 {
		return domain.WrapError(domain.ErrNetworkFailed, operation, fmt.Errorf("%s: %s", resp.Status, msg))
	}
	return domain.WrapError(domain.ErrGenerationFailed, operation, errors.New(msg))
}

// extractDetail pulls the human-readable message out of an error
// payload. The collaborator returns detail either as a plain string or,
// for validation errors, as a list of objects with a msg field.
func extractDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch detail := payload.Detail.(type) {
	case string:
		return strings.TrimSpace(detail)
	case []any:
		var parts []string
		for _, item := range detail {
			switch v := item.(type) {
			case string:
				if s := strings.TrimSpace(v); s != "" {
					parts = append(parts, s)
				}
			case map[string]any:
				if msg, ok := v["msg"].(string); ok && strings.TrimSpace(msg) != "" {
					parts = append(parts, strings.TrimSpace(msg))
				}
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}
