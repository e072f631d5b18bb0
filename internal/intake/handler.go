package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/nomination-intake/internal/nomination"
	"github.com/wolfman30/nomination-intake/internal/observability/metrics"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

const maxBodyBytes = 1 << 20

// User-facing messages.
const (
	msgInvalidBody    = "Invalid request body"
	msgMissingFields  = "Missing required fields"
	msgNotConfigured  = "Server configuration error"
	msgSendFailed     = "Failed to send nomination. Please try again later."
	msgMethodNotAllow = "Method not allowed"
)

// Handler serves /nominate.
type Handler struct {
	service *Service
	metrics *metrics.IntakeMetrics
	logger  *logging.Logger
}

// NewHandler creates a nomination handler.
func NewHandler(service *Service, m *metrics.IntakeMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, metrics: m, logger: logger}
}

// SubmitResponse is the POST /nominate body.
type SubmitResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	RecordStore string `json:"recordStore,omitempty"`
	Insights    string `json:"insights,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Nominate accepts POST submissions and serves diagnostics on GET.
func (h *Handler) Nominate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.diagnose(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, SubmitResponse{Error: msgMethodNotAllow})
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil || raw == nil {
		h.logger.Warn("failed to decode nomination", "error", err)
		h.metrics.ObserveNomination("invalid")
		writeJSON(w, http.StatusBadRequest, SubmitResponse{Error: msgInvalidBody})
		return
	}

	sub, err := nomination.Parse(raw)
	if err != nil {
		var verr *nomination.ValidationError
		if errors.As(err, &verr) {
			h.logger.Info("nomination rejected", "fields", verr.Fields)
		}
		h.metrics.ObserveNomination("invalid")
		writeJSON(w, http.StatusBadRequest, SubmitResponse{Error: msgMissingFields})
		return
	}

	out, err := h.service.Submit(r.Context(), sub)
	switch {
	case errors.Is(err, ErrNotifierNotConfigured):
		h.metrics.ObserveNomination("misconfigured")
		writeJSON(w, http.StatusInternalServerError, SubmitResponse{Error: msgNotConfigured})
		return
	case err != nil:
		h.metrics.ObserveNomination("failed")
		writeJSON(w, http.StatusInternalServerError, SubmitResponse{Error: msgSendFailed})
		return
	}

	h.metrics.ObserveNomination("ok")
	writeJSON(w, http.StatusOK, SubmitResponse{
		Success:     true,
		RecordStore: string(out.RecordStore),
		Insights:    string(out.Insights),
		Email:       string(out.Email),
	})
}

func (h *Handler) diagnose(w http.ResponseWriter, r *http.Request) {
	writeTest := r.URL.Query().Get("write") != "false"
	writeJSON(w, http.StatusOK, h.service.Diagnose(r.Context(), writeTest))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
