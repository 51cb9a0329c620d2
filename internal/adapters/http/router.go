package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/cors"

	"github.com/ekomarov/drafter/internal/config"
	"github.com/ekomarov/drafter/internal/core/domain"
	"github.com/ekomarov/drafter/internal/core/ports"
	"github.com/ekomarov/drafter/internal/observability/metrics"
)

const metricsService = "api"

type Router struct {
	cfg      config.Config
	outlines ports.OutlineService
	content  ports.ContentService
	batch    ports.BatchService
	render   ports.RenderService
	assets   ports.AssetIngestor
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	outlines ports.OutlineService,
	content ports.ContentService,
	batch ports.BatchService,
	render ports.RenderService,
	assets ports.AssetIngestor,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		outlines: outlines,
		content:  content,
		batch:    batch,
		render:   render,
		assets:   assets,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/outlines", rt.createOutline)
	mux.HandleFunc("GET /v1/outlines", rt.listOutlines)
	mux.HandleFunc("POST /v1/outlines/import", rt.importOutline)
	mux.HandleFunc("GET /v1/outlines/{outline_id}", rt.getOutline)
	mux.HandleFunc("DELETE /v1/outlines/{outline_id}", rt.deleteOutline)
	mux.HandleFunc("POST /v1/outlines/{outline_id}/nodes", rt.addNode)
	mux.HandleFunc("POST /v1/outlines/{outline_id}/generate", rt.enqueueOutline)
	mux.HandleFunc("GET /v1/outlines/{outline_id}/render", rt.renderOutline)
	mux.HandleFunc("GET /v1/outlines/{outline_id}/toc.xlsx", rt.exportTOC)

	mux.HandleFunc("PATCH /v1/nodes/{node_id}", rt.renameNode)
	mux.HandleFunc("DELETE /v1/nodes/{node_id}", rt.deleteNode)
	mux.HandleFunc("POST /v1/nodes/{node_id}/move", rt.moveNode)
	mux.HandleFunc("GET /v1/nodes/{node_id}/content", rt.getContent)
	mux.HandleFunc("PUT /v1/nodes/{node_id}/content", rt.putContent)
	mux.HandleFunc("DELETE /v1/nodes/{node_id}/content", rt.resetContent)
	mux.HandleFunc("POST /v1/nodes/{node_id}/generate", rt.generateNode)

	mux.HandleFunc("GET /v1/styles/{template}", rt.getStyles)

	mux.HandleFunc("GET /v1/assets", rt.listAssets)
	mux.HandleFunc("POST /v1/assets", rt.uploadAssets)

	var handler http.Handler = mux
	handler = newOpenAPIValidator().middleware(handler)
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, 50*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	// CORS sits outside the traffic gates so preflight requests do not
	// spend rate tokens or in-flight slots.
	handler = cors.New(cors.Options{
		AllowedOrigins: splitOrigins(rt.cfg.CORSAllowedOrigins),
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
	}).Handler(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createOutlineRequest struct {
	Name string `json:"name"`
}

func (r createOutlineRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

func (rt *Router) createOutline(w http.ResponseWriter, r *http.Request) {
	var req createOutlineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	outline, err := rt.outlines.CreateOutline(r.Context(), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	rt.recordMutation("outline_create")
	writeJSON(w, http.StatusCreated, outline)
}

func (rt *Router) listOutlines(w http.ResponseWriter, r *http.Request) {
	outlines, err := rt.outlines.ListOutlines(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if outlines == nil {
		outlines = []domain.Outline{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"outlines": outlines})
}

func (rt *Router) getOutline(w http.ResponseWriter, r *http.Request) {
	detail, err := rt.outlines.GetDetail(r.Context(), r.PathValue("outline_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (rt *Router) deleteOutline(w http.ResponseWriter, r *http.Request) {
	if err := rt.outlines.DeleteOutline(r.Context(), r.PathValue("outline_id")); err != nil {
		respondError(w, err)
		return
	}
	rt.recordMutation("outline_delete")
	w.WriteHeader(http.StatusNoContent)
}

type addNodeRequest struct {
	ParentID string `json:"parent_id"`
	Title    string `json:"title"`
}

func (r addNodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
	)
}

func (rt *Router) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	node, err := rt.outlines.AddNode(r.Context(), r.PathValue("outline_id"), req.ParentID, req.Title)
	if err != nil {
		respondError(w, err)
		return
	}
	rt.recordMutation("node_add")
	writeJSON(w, http.StatusCreated, node)
}

type renameNodeRequest struct {
	Title string `json:"title"`
}

func (r renameNodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
	)
}

func (rt *Router) renameNode(w http.ResponseWriter, r *http.Request) {
	var req renameNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	node, err := rt.outlines.RenameNode(r.Context(), r.PathValue("node_id"), req.Title)
	if err != nil {
		respondError(w, err)
		return
	}
	rt.recordMutation("node_rename")
	writeJSON(w, http.StatusOK, node)
}

func (rt *Router) deleteNode(w http.ResponseWriter, r *http.Request) {
	removed, err := rt.outlines.DeleteNode(r.Context(), r.PathValue("node_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	rt.recordMutation("node_delete")
	writeJSON(w, http.StatusOK, map[string]any{"removed_ids": removed})
}

type moveNodeRequest struct {
	ParentID string `json:"parent_id"`
	Position int    `json:"position"`
}

func (r moveNodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Position, validation.Min(0)),
	)
}

func (rt *Router) moveNode(w http.ResponseWriter, r *http.Request) {
	var req moveNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	node, err := rt.outlines.MoveNode(r.Context(), r.PathValue("node_id"), req.ParentID, req.Position)
	if err != nil {
		respondError(w, err)
		return
	}
	rt.recordMutation("node_move")
	writeJSON(w, http.StatusOK, node)
}

func (rt *Router) importOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(rt.cfg.MaxUploadBytes))

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(header.Filename, ".md")
	}

	detail, err := rt.outlines.ImportMarkdown(r.Context(), name, file)
	if err != nil {
		respondError(w, err)
		return
	}
	rt.recordMutation("outline_import")
	writeJSON(w, http.StatusCreated, detail)
}

func (rt *Router) getContent(w http.ResponseWriter, r *http.Request) {
	entry, err := rt.content.GetContent(r.Context(), r.PathValue("node_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type putContentRequest struct {
	Body   string `json:"body"`
	Status string `json:"status"`
}

func (r putContentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(
			string(domain.StatusDraft), string(domain.StatusGenerated), string(domain.StatusFinal),
		)),
	)
}

func (rt *Router) putContent(w http.ResponseWriter, r *http.Request) {
	var req putContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// A manual edit without an explicit status lands as a draft.
	if req.Status == "" {
		req.Status = string(domain.StatusDraft)
	}

	entry, err := rt.content.PutContent(r.Context(), r.PathValue("node_id"), req.Body, domain.ContentStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (rt *Router) resetContent(w http.ResponseWriter, r *http.Request) {
	if err := rt.content.ResetContent(r.Context(), r.PathValue("node_id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateNodeRequest struct {
	Requirements string   `json:"requirements"`
	AssetIDs     []string `json:"asset_ids"`
}

func (rt *Router) generateNode(w http.ResponseWriter, r *http.Request) {
	var req generateNodeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	start := time.Now()
	entry, err := rt.content.GenerateNode(r.Context(), r.PathValue("node_id"), req.Requirements, req.AssetIDs)
	if rt.metrics != nil {
		rt.metrics.RecordSectionGeneration(metricsService, time.Since(start), err)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (rt *Router) enqueueOutline(w http.ResponseWriter, r *http.Request) {
	outlineID := r.PathValue("outline_id")
	if err := rt.batch.EnqueueOutline(r.Context(), outlineID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"outline_id": outlineID,
		"status":     "queued",
	})
}

func (rt *Router) renderOutline(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.render.Render(r.Context(), r.PathValue("outline_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) exportTOC(w http.ResponseWriter, r *http.Request) {
	data, err := rt.render.ExportTOC(r.Context(), r.PathValue("outline_id"))
	if rt.metrics != nil {
		rt.metrics.RecordTOCExport(metricsService, err)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "toc.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) getStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := rt.render.Styles(r.Context(), r.PathValue("template"))
	if err != nil {
		respondError(w, err)
		return
	}
	if styles == nil {
		styles = []domain.StyleHint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"styles": styles})
}

func (rt *Router) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := rt.assets.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (rt *Router) uploadAssets(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(rt.cfg.MaxUploadBytes))
	if err := r.ParseMultipartForm(int64(rt.cfg.MaxUploadBytes)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request"})
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable multipart file"})
			return
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(f); err != nil {
			f.Close()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable multipart file"})
			return
		}
		f.Close()
		files = append(files, domain.UploadFile{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     buf.Bytes(),
		})
	}

	report, err := rt.assets.Upload(r.Context(), files, r.FormValue("category"))
	if err != nil {
		respondError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUploadedFiles(metricsService, len(report.Accepted), len(report.Skipped))
	}
	writeJSON(w, http.StatusCreated, report)
}

func (rt *Router) recordMutation(kind string) {
	if rt.metrics != nil {
		rt.metrics.RecordOutlineMutation(metricsService, kind)
	}
}

// decodeBody parses a JSON request body into dst and runs its ozzo
// validation when present. It writes the 400 response itself and
// returns false when the request should not proceed.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	if v, ok := dst.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
