package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
	pubsvc "github.com/FritzlyBrenord/mykeProduction-sub000/internal/service/publication"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/timezone"
)

type publicationService interface {
	Create(ctx context.Context, input pubsvc.CreateInput) (domain.Publication, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Publication, error)
	List(ctx context.Context, input pubsvc.ListInput) (pubsvc.ListResult, error)
	ChangeStatus(ctx context.Context, input pubsvc.ChangeStatusInput) (domain.Publication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) ([]domain.AuditRecord, error)
	PublishDue(ctx context.Context) (pubsvc.PublishResult, error)
}

// PublicationHandler serves the publication endpoints.
type PublicationHandler struct {
	svc            publicationService
	log            *slog.Logger
	publishTimeout time.Duration
}

// NewPublicationHandler creates a PublicationHandler. publishTimeout bounds a
// single publish-due sweep.
func NewPublicationHandler(svc publicationService, logger *slog.Logger, publishTimeout time.Duration) *PublicationHandler {
	return &PublicationHandler{
		svc:            svc,
		log:            logger.With("handler", "publication"),
		publishTimeout: publishTimeout,
	}
}

// ---------------------------------------------------------------------------
// Request / response types
// ---------------------------------------------------------------------------

type createRequest struct {
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

type changeStatusRequest struct {
	Status            string  `json:"status"`
	ScheduledAt       *string `json:"scheduled_at"`
	ScheduledLocal    string  `json:"scheduled_local"`
	ScheduledTimezone string  `json:"scheduled_timezone"`
}

type publicationResponse struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Kind              string     `json:"kind"`
	Status            string     `json:"status"`
	ScheduledAt       *time.Time `json:"scheduled_at"`
	ScheduledTimezone string     `json:"scheduled_timezone"`
	ScheduledLocal    string     `json:"scheduled_local,omitempty"`
	ScheduledDisplay  string     `json:"scheduled_display,omitempty"`
	PublishedAt       *time.Time `json:"published_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type listResponse struct {
	Items  []publicationResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type publishedID struct {
	ID uuid.UUID `json:"id"`
}

type publishDueResponse struct {
	Count     int           `json:"count"`
	Published []publishedID `json:"published"`
}

type auditResponse struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes"`
	CreatedAt time.Time      `json:"created_at"`
}

type timezonesResponse struct {
	Default   string   `json:"default"`
	Timezones []string `json:"timezones"`
}

func toPublicationResponse(p domain.Publication) publicationResponse {
	resp := publicationResponse{
		ID:                p.ID,
		Title:             p.Title,
		Kind:              p.Kind,
		Status:            string(p.Status),
		ScheduledAt:       p.ScheduledAt,
		ScheduledTimezone: p.ScheduledTimezone,
		PublishedAt:       p.PublishedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.ScheduledAt != nil {
		// The zone was validated when the record was scheduled.
		resp.ScheduledLocal, _ = timezone.LocalInputValue(*p.ScheduledAt, p.ScheduledTimezone)
		resp.ScheduledDisplay, _ = timezone.FormatInZone(*p.ScheduledAt, p.ScheduledTimezone, true)
	}
	return resp
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// PublishDue handles POST /publications/publish-due.
// The sweep is detached from the caller: a client that hangs up after the
// request reached us does not roll back a transition that is about to commit.
func (h *PublicationHandler) PublishDue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.publishTimeout)
	defer cancel()

	result, err := h.svc.PublishDue(ctx)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := publishDueResponse{Count: len(result.IDs), Published: make([]publishedID, 0, len(result.IDs))}
	for _, id := range result.IDs {
		resp.Published = append(resp.Published, publishedID{ID: id})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /publications.
func (h *PublicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Create(r.Context(), pubsvc.CreateInput{Title: req.Title, Kind: req.Kind})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPublicationResponse(p))
}

// Get handles GET /publications/{id}.
func (h *PublicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicationResponse(p))
}

// List handles GET /publications.
func (h *PublicationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var fieldErrs []domain.FieldError
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "limit", Message: "must be an integer"})
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "offset", Message: "must be an integer"})
	}
	if len(fieldErrs) > 0 {
		h.handleError(w, r, domain.NewValidationErrors(fieldErrs))
		return
	}

	result, err := h.svc.List(r.Context(), pubsvc.ListInput{Status: q.Get("status"), Limit: limit, Offset: offset})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := listResponse{
		Items:  make([]publicationResponse, 0, len(result.Items)),
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	}
	for _, p := range result.Items {
		resp.Items = append(resp.Items, toPublicationResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ChangeStatus handles PATCH /publications/{id}/status.
func (h *PublicationHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := pubsvc.ChangeStatusInput{
		ID:                id,
		Status:            req.Status,
		ScheduledLocal:    req.ScheduledLocal,
		ScheduledTimezone: req.ScheduledTimezone,
	}
	if req.ScheduledAt != nil && strings.TrimSpace(*req.ScheduledAt) != "" {
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.ScheduledAt))
		if err != nil {
			h.handleError(w, r, domain.NewFieldError(domain.ErrInvalidDateTime, "scheduled_at", "must be RFC 3339"))
			return
		}
		input.ScheduledAt = &at
	}

	p, err := h.svc.ChangeStatus(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicationResponse(p))
}

// Delete handles DELETE /publications/{id}.
func (h *PublicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /publications/{id}/history.
func (h *PublicationHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	records, err := h.svc.History(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := make([]auditResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, auditResponse{
			ID:        rec.ID,
			Action:    string(rec.Action),
			Changes:   rec.Changes,
			CreatedAt: rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Timezones handles GET /timezones.
func (h *PublicationHandler) Timezones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, timezonesResponse{
		Default:   domain.DefaultTimezone,
		Timezones: timezone.Supported(),
	})
}

func (h *PublicationHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	handleError(h.log, w, r, err)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  domain.ErrValidation.Error(),
			Fields: []fieldResponse{{Field: "id", Message: "must be a UUID"}},
		})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	return n, nil
}
