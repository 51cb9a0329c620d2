package httpadapter

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yaml
var openAPISpec []byte

// openAPIValidator checks incoming requests against the embedded API
// contract. JSON bodies are validated fully; multipart and other
// content types only get route and parameter checks.
type openAPIValidator struct {
	router routers.Router
}

func newOpenAPIValidator() *openAPIValidator {
	ctx := context.Background()

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		slog.Error("openapi spec load failed, request validation disabled", "error", err)
		return &openAPIValidator{}
	}
	if err := doc.Validate(ctx); err != nil {
		slog.Error("openapi spec invalid, request validation disabled", "error", err)
		return &openAPIValidator{}
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		slog.Error("openapi router build failed, request validation disabled", "error", err)
		return &openAPIValidator{}
	}
	return &openAPIValidator{router: router}
}

func (v *openAPIValidator) middleware(next http.Handler) http.Handler {
	if v.router == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			// Unknown routes fall through to the mux for its own 404.
			if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				ExcludeRequestBody: mediaType != "application/json",
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			var reqErr *openapi3filter.RequestError
			if errors.As(err, &reqErr) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": reqErr.Error()})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request does not match API contract"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
