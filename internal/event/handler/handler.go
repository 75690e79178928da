// Package handler exposes the audit timeline over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"usertrail/internal/event"
	"usertrail/pkg/datetime"
	dErrors "usertrail/pkg/domain-errors"
	"usertrail/pkg/platform/httputil"
)

// Service defines the read interface for entity timelines.
type Service interface {
	GetEntityEvents(ctx context.Context, entityID int64) ([]event.Record, error)
}

// Handler wires the events endpoint to the audit query service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an events handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the events endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events", h.HandleGetEvents)
}

// EventResponse is one timeline entry on the wire. Data is null for DELETED
// events; Datetime is UTC with millisecond precision.
type EventResponse struct {
	EntityID int64   `json:"entityId"`
	Datetime string  `json:"datetime"`
	Type     string  `json:"type"`
	Data     *string `json:"data"`
}

// FromRecord maps a stored audit record onto its wire representation.
func FromRecord(r event.Record) EventResponse {
	return EventResponse{
		EntityID: r.EntityID,
		Datetime: datetime.FormatMillis(r.EventTimestamp),
		Type:     r.EventType,
		Data:     r.Data,
	}
}

// HandleGetEvents handles GET /events?entityId=<int>.
func (h *Handler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.URL.Query().Get("entityId")
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "entityId query parameter is required"))
		return
	}
	entityID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "entityId must be an integer"))
		return
	}

	records, err := h.service.GetEntityEvents(ctx, entityID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load entity events",
			"entity_id", entityID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	responses := make([]EventResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, FromRecord(record))
	}
	httputil.WriteJSON(w, http.StatusOK, responses)
}
