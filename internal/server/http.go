package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/personal-ledger/ledger-backend/internal/domain"
	"github.com/personal-ledger/ledger-backend/internal/export"
	"github.com/personal-ledger/ledger-backend/internal/ingest"
	"github.com/personal-ledger/ledger-backend/internal/repository"
)

// defaultListLimit is applied when a listing request omits the limit
// parameter entirely.
const defaultListLimit = 50

// NewHTTPHandler binds the category service, the bulk importer and the XLSX
// exporter to a JSON-over-HTTP API.
func NewHTTPHandler(svc *CategoriesService, importer *ingest.Service, exporter *export.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &httpHandler{svc: svc, importer: importer, exporter: exporter, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/ready", h.ready)

	mux.HandleFunc("POST /v1/categories", h.create)
	mux.HandleFunc("GET /v1/categories", h.list)
	mux.HandleFunc("GET /v1/categories/{id}", h.get)
	mux.HandleFunc("PUT /v1/categories/{id}", h.update)
	mux.HandleFunc("DELETE /v1/categories/{id}", h.delete)
	mux.HandleFunc("POST /v1/categories/{id}/activate", h.activate)
	mux.HandleFunc("POST /v1/categories/{id}/deactivate", h.deactivate)
	mux.HandleFunc("GET /v1/categories/by-code/{code}", h.getByCode)
	mux.HandleFunc("DELETE /v1/categories/by-code/{code}", h.deleteByCode)
	mux.HandleFunc("GET /v1/categories/by-slug/{slug}", h.getBySlug)
	mux.HandleFunc("POST /v1/categories/batch", h.createBatch)
	mux.HandleFunc("POST /v1/categories/batch/delete", h.deleteBatch)
	mux.HandleFunc("POST /v1/categories/prune-inactive", h.pruneInactive)
	mux.HandleFunc("POST /v1/categories/import", h.importCategories)
	mux.HandleFunc("GET /v1/categories/export", h.exportCategories)

	return h.logRequests(mux)
}

type httpHandler struct {
	svc      *CategoriesService
	importer *ingest.Service
	exporter *export.Service
	logger   *slog.Logger
}

func (h *httpHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds())
	})
}

func (h *httpHandler) respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *httpHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, map[string]any{
		"status":  "error",
		"code":    statusCode,
		"message": message,
	})
}

// respondServiceError translates a status error from the service into its
// HTTP shape, keeping the service's message verbatim.
func (h *httpHandler) respondServiceError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	h.respondError(w, httpStatusFromCode(st.Code()), st.Message())
}

func httpStatusFromCode(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *httpHandler) ready(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *httpHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CategoryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	resp, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *httpHandler) createBatch(w http.ResponseWriter, r *http.Request) {
	var req CategoriesCreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	resp, err := h.svc.CreateBatch(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *httpHandler) get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Get(r.Context(), &CategoryGetRequest{Id: r.PathValue("id")})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) getByCode(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetByCode(r.Context(), &CategoryGetByCodeRequest{Code: r.PathValue("code")})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetBySlug(r.Context(), &CategoryGetBySlugRequest{UrlSlug: r.PathValue("slug")})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) list(w http.ResponseWriter, r *http.Request) {
	req, err := listRequestFromQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.List(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func listRequestFromQuery(q url.Values) (*CategoriesListRequest, error) {
	req := &CategoriesListRequest{
		SortBy: q.Get("sort_by"),
		Limit:  defaultListLimit,
	}

	if raw := q.Get("category_type"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, errors.New("category_type must be an integer")
		}
		req.CategoryType = int32(n)
	}
	if raw := q.Get("is_active"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("is_active must be true or false")
		}
		req.IsActive = &b
	}
	if raw := q.Get("sort_desc"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("sort_desc must be true or false")
		}
		req.SortDesc = b
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("offset must be an integer")
		}
		req.Offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("limit must be an integer")
		}
		req.Limit = n
	}
	return req, nil
}

func (h *httpHandler) update(w http.ResponseWriter, r *http.Request) {
	var req CategoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	// The path is authoritative for the target ID.
	req.Id = r.PathValue("id")
	resp, err := h.svc.Update(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) activate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Activate(r.Context(), &CategoryActivateRequest{Id: r.PathValue("id")})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Deactivate(r.Context(), &CategoryDeactivateRequest{Id: r.PathValue("id")})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Delete(r.Context(), &CategoryDeleteRequest{Id: r.PathValue("id")})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) deleteByCode(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.DeleteByCode(r.Context(), &CategoryDeleteByCodeRequest{Code: r.PathValue("code")})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) deleteBatch(w http.ResponseWriter, r *http.Request) {
	var req CategoriesDeleteBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	resp, err := h.svc.DeleteBatch(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) pruneInactive(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.PruneInactive(r.Context(), &CategoriesPruneInactiveRequest{})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

type categoriesImportResponse struct {
	Imported int `json:"imported"`
}

// importCategories feeds the request body through the bulk importer. The
// document either lands completely or not at all.
func (h *httpHandler) importCategories(w http.ResponseWriter, r *http.Request) {
	count, err := h.importer.ImportJSON(r.Context(), r.Body)
	if err != nil {
		var storageErr *repository.StorageError
		switch {
		case errors.Is(err, repository.ErrConflict):
			h.respondError(w, http.StatusConflict, err.Error())
		case errors.As(err, &storageErr):
			h.respondError(w, http.StatusInternalServerError, "Failed to import categories")
		default:
			h.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.respondJSON(w, http.StatusOK, categoriesImportResponse{Imported: count})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *httpHandler) exportCategories(w http.ResponseWriter, r *http.Request) {
	filter, err := exportFilterFromQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	workbook, err := h.exporter.ExportCategoriesXLSX(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to export categories", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to export categories")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="categories.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		h.logger.Error("failed to write export response", "error", err)
	}
}

func exportFilterFromQuery(q url.Values) (export.Filter, error) {
	var filter export.Filter
	if raw := q.Get("category_type"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return filter, errors.New("category_type must be an integer")
		}
		categoryType, err := domain.CategoryTypeFromWire(int32(n))
		if err != nil {
			return filter, err
		}
		filter.CategoryType = &categoryType
	}
	if raw := q.Get("active_only"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("active_only must be true or false")
		}
		filter.ActiveOnly = b
	}
	return filter, nil
}
