// Package httpapi exposes a running session over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/logging"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// Session is the part of the coordinator the ingress talks to.
type Session interface {
	Deliver(ctx context.Context, ev domain.Event) error
	Snapshot() domain.Snapshot
}

// WebhookQueue stores aggregator webhooks for discovery to find.
type WebhookQueue interface {
	SaveWebhook(ctx context.Context, webhook domain.Webhook) (domain.Webhook, error)
}

type Handler struct {
	session  Session
	webhooks WebhookQueue
	logger   *logging.Logger
}

func NewHandler(session Session, webhooks WebhookQueue, logger *logging.Logger) *Handler {
	return &Handler{session: session, webhooks: webhooks, logger: logger.WithComponent("http")}
}

// Router mounts the session routes behind the standard middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Post("/events", h.PostEvent)
	r.Get("/snapshot", h.GetSnapshot)
	if h.webhooks != nil {
		r.Post("/webhooks", h.PostWebhook)
	}
	return r
}

// PostEvent accepts one externally deliverable event.
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.Event
	if err := decodeBody(r, &ev); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ev.Type = domain.EventType(strings.ToUpper(strings.TrimSpace(string(ev.Type))))

	err := h.session.Deliver(r.Context(), ev)
	switch {
	case err == nil:
		JSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "event": ev.String()})
	case errors.Is(err, domain.ErrSessionClosed):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		Error(w, http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, h.session.Snapshot())
}

type webhookRequest struct {
	AccountID   string `json:"account_id"`
	ItemID      string `json:"item_id"`
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
}

// PostWebhook queues an aggregator webhook. Both account_id and the
// aggregator's item_id name the linked account.
func (h *Handler) PostWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		Error(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	account := req.AccountID
	if account == "" {
		account = req.ItemID
	}
	if strings.TrimSpace(account) == "" {
		Error(w, http.StatusBadRequest, "account_id or item_id is required")
		return
	}

	saved, err := h.webhooks.SaveWebhook(r.Context(), domain.Webhook{
		AccountID: domain.AccountID(account),
		Type:      strings.ToUpper(req.WebhookType),
		Code:      strings.ToUpper(req.WebhookCode),
		Payload:   string(raw),
	})
	if err != nil {
		h.logger.Error("store webhook failed", "account", account, "error", err)
		Error(w, http.StatusInternalServerError, "store webhook")
		return
	}

	JSON(w, http.StatusAccepted, map[string]any{
		"id":                saved.ID,
		"account_id":        saved.AccountID,
		"historical_update": saved.HistoricalUpdate(),
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return errors.New("invalid json: " + err.Error())
	}
	return nil
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
