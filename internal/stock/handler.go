package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aquapoint/aquapoint/internal/auth"
	"github.com/aquapoint/aquapoint/internal/platform/httpx"
	"github.com/aquapoint/aquapoint/internal/shared"
)

// Handler manages stock endpoints, mounted under /items.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   auth.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth)
		r.Put("/{id}/stock", h.adjust)
		r.Get("/{id}/history", h.history)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(auth.RoleAdministrator))
		r.Put("/bulk/stock", h.bulkAdjust)
	})
}

type adjustRequest struct {
	Quantity  int       `json:"quantity"`
	Direction Direction `json:"direction"`
	Reason    string    `json:"reason"`
}

type bulkAdjustRequest struct {
	Updates []AdjustmentInput `json:"updates"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}

	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}

	result, err := h.service.Adjust(r.Context(), AdjustmentInput{
		ItemID:    id,
		Quantity:  req.Quantity,
		Direction: req.Direction,
		Reason:    req.Reason,
		ActorID:   shared.ActorID(r.Context()),
	})
	if err != nil {
		h.logger.Warn("stock adjustment rejected", slog.Int64("item_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":      "stock adjusted",
		"currentStock": result.NewStock,
	})
}

func (h *Handler) bulkAdjust(w http.ResponseWriter, r *http.Request) {
	var req bulkAdjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}

	actorID := shared.ActorID(r.Context())
	for i := range req.Updates {
		req.Updates[i].ActorID = actorID
	}

	results, err := h.service.BulkAdjust(r.Context(), req.Updates)
	if err != nil {
		h.logger.Warn("bulk adjustment rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "stock updated",
		"results": results,
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid item id")
		return
	}

	entries, err := h.service.History(r.Context(), id)
	if err != nil {
		h.logger.Error("list stock history", slog.Int64("item_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, entries)
}
