package generation

import (
	"context"
	"strings"
	"time"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/infrastructure/resilience"
)

// Client talks to the external content-generation service. One Client is
// shared by the section generator and the style-hint provider; each call
// goes through the resilience executor under its own breaker.
type Client struct {
	baseURL string
	http    httpDoer
	exec    *resilience.Executor
}

func New(baseURL string, timeout time.Duration, policy resilience.Policy) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(timeout),
		exec:    resilience.NewExecutor(policy),
	}
}

// GenerateSection requests a body for one section. Transport errors and
// 5xx responses surface as network failures; the service declining the
// request (4xx with a detail message) surfaces as a generation failure.
func (c *Client) GenerateSection(ctx context.Context, req domain.GenerationRequest) (string, error) {
	const op = "generate section"

	var response struct {
		Content string `json:"content"`
	}
	err := c.exec.Do(ctx, op, func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/generate", req, &response, op)
	}, resilience.CollaboratorClassifier)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Content), nil
}
