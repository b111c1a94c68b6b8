// Package rest exposes the inventory dashboard core over HTTP: the
// snapshot read model, the refresh command and the admin-gated mutations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/gateway"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/validation"
	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// RoleAuthorizer reads the caller's role from the request context, where
// the role-injector middleware placed it.
type RoleAuthorizer struct{}

// IsAdmin reports whether the request carries the admin role.
func (RoleAuthorizer) IsAdmin(ctx context.Context) bool {
	return web.IsAdmin(ctx)
}

type Handler struct {
	coordinator *service.Coordinator
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewHandler creates a new instance of the inventory handler.
func NewHandler(coordinator *service.Coordinator, logger *slog.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		validate:    validator.New(),
		logger:      logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(web.RoleInjector)

		r.Get("/", h.Snapshot)
		r.Post("/refresh", h.Refresh)
		r.Post("/validate", h.ValidateField)

		r.Route("/products/{id}", func(r chi.Router) {
			r.Put("/", h.EditProduct)
			r.Delete("/", h.DeleteProduct)
			r.Post("/visibility", h.ToggleVisibility)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Snapshot returns the current read model: state, products and stats.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	snap := h.coordinator.Snapshot()
	mLogger.DebugContext(r.Context(), "Snapshot served", "state", snap.State, "count", len(snap.Products))
	web.RespondJSON(w, mLogger, http.StatusOK, snap)
}

// Refresh runs a fetch against the upstream and returns the resulting
// snapshot. A failed fetch leaves the coordinator in the Failed state and
// maps to 502; a refresh already in flight maps to 409.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to refresh inventory")

	if err := h.coordinator.Refresh(r.Context()); err != nil {
		if errors.Is(err, inverrors.ErrRefreshInFlight) {
			web.RespondError(w, mLogger, http.StatusConflict, "Refresh already in progress")
			return
		}
		var fetchErr *gateway.FetchError
		if errors.As(err, &fetchErr) {
			mLogger.WarnContext(r.Context(), "Upstream fetch failed", "error", err)
			web.RespondJSON(w, mLogger, http.StatusBadGateway, h.coordinator.Snapshot())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error refreshing inventory", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to refresh inventory")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.coordinator.Snapshot())
}

// EditProduct handles an operator edit of a single product.
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	var update service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	update.ID = id

	if err := h.validate.Struct(update); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to edit product", "ID", id)
	updated, err := h.coordinator.EditProduct(r.Context(), update)
	if err != nil {
		h.respondCommandError(w, r, mLogger, err, id)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteProduct removes a product by its ID.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.coordinator.DeleteProduct(r.Context(), id); err != nil {
		h.respondCommandError(w, r, mLogger, err, id)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleVisibility flips a product between active and disabled.
func (h *Handler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to toggle product visibility", "ID", id)
	toggled, err := h.coordinator.ToggleVisibility(r.Context(), id)
	if err != nil {
		h.respondCommandError(w, r, mLogger, err, id)
		return
	}
	mLogger.InfoContext(r.Context(), "Product visibility toggled", "ID", id, "Status", toggled.Status)
	web.RespondJSON(w, mLogger, http.StatusOK, toggled)
}

// fieldCheckDto is the body of the live edit-form validation endpoint.
type fieldCheckDto struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// ValidateField evaluates a single edit-form field and returns the inline
// message the form should display, empty when the value is acceptable.
func (h *Handler) ValidateField(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	var check fieldCheckDto
	if err := json.NewDecoder(r.Body).Decode(&check); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(check); err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "field is required")
		return
	}

	message := validation.ValidateField(check.Field, check.Value)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{
		"field": check.Field,
		"error": message,
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondCommandError maps coordinator command failures to HTTP statuses.
func (h *Handler) respondCommandError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, id int64) {
	switch {
	case errors.Is(err, inverrors.ErrUnauthorized):
		mLogger.WarnContext(r.Context(), "Mutation rejected: admin role required", "ID", id)
		web.RespondError(w, mLogger, http.StatusForbidden, "Admin role required")
	case errors.Is(err, inverrors.ErrNotReady):
		mLogger.WarnContext(r.Context(), "Mutation rejected: inventory not loaded", "ID", id)
		web.RespondError(w, mLogger, http.StatusConflict, "Inventory is not loaded")
	case errors.Is(err, inverrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	default:
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			errorResponse := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				errorResponse[fe.Field] = fe.Message
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error executing inventory command", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Internal server error")
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, found := web.GetRequestID(r.Context())
	if !found {
		reqID = "unknown"
	}
	return h.logger.With("request_id", reqID)
}
