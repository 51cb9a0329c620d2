package httpadapter

import (
	"net/http"

	"github.com/ekomarov/drafter/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrOutlineNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrNetworkFailed):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
