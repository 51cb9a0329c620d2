package generation

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/infrastructure/resilience"
)

// StyleClient fetches per-level formatting hints for TOC export from the
// same collaborator service.
type StyleClient struct {
	client *Client
}

func NewStyleClient(client *Client) *StyleClient {
	return &StyleClient{client: client}
}

func (s *StyleClient) Styles(ctx context.Context, template string) ([]domain.StyleHint, error) {
	const op = "fetch styles"

	var response struct {
		Styles []domain.StyleHint `json:"styles"`
	}
	path := fmt.Sprintf("/v1/styles/%s", url.PathEscape(template))
	err := s.client.exec.Do(ctx, op, func(ctx context.Context) error {
		return s.client.getJSON(ctx, path, &response, op)
	}, resilience.CollaboratorClassifier)
	if err != nil {
		return nil, err
	}
	return response.Styles, nil
}
