package sales

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aquapoint/aquapoint/internal/auth"
	"github.com/aquapoint/aquapoint/internal/platform/httpx"
)

// Handler manages sale endpoints, mounted under /sales.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   auth.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth)
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}

	sale, err := h.service.CreateSale(r.Context(), req)
	if err != nil {
		h.logger.Warn("sale rejected", slog.String("invoice_id", req.InvoiceID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := listFiltersFromQuery(r)
	sales, total, err := h.service.ListSales(r.Context(), filters)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales": sales,
		"total": total,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}

	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}

	var req UpdateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}

	sale, err := h.service.UpdateSale(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("sale update rejected", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}

	if err := h.service.DeleteSale(r.Context(), id); err != nil {
		h.logger.Warn("sale deletion rejected", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"message": "sale deleted"})
}

func listFiltersFromQuery(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{Status: SaleStatus(q.Get("status"))}
	if v, err := strconv.ParseInt(q.Get("customerId"), 10, 64); err == nil {
		filters.CustomerID = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filters.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filters.Offset = v
	}
	if v, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		filters.DateFrom = &v
	}
	if v, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		filters.DateTo = &v
	}
	return filters
}
