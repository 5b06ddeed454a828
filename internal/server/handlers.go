package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/soundctl/rewind/internal/models"
	"github.com/soundctl/rewind/internal/tasks"
)

// ActivityRecorder defines the activity-log writes the intake handler needs.
// Implemented by repositories.ActivityRepository.
type ActivityRecorder interface {
	RecordPlay(userID, trackID string, durationMS int64) (*models.Activity, error)
	RecordLike(userID, trackID string) (*models.Activity, error)
	RecordRepost(userID, trackID string) (*models.Activity, error)
	RecordShare(userID, trackID string) (*models.Activity, error)
}

// activityRequest is the intake payload for a single listening event.
type activityRequest struct {
	UserID         string `json:"userId"`
	TrackID        string `json:"trackId"`
	Type           string `json:"type"`
	PlayDurationMS int64  `json:"playDurationMs"`
}

// activityResponse echoes the recorded event back to the client.
type activityResponse struct {
	ID             string `json:"id"`
	Sequence       int    `json:"sequence"`
	UserID         string `json:"userId"`
	TrackID        string `json:"trackId"`
	Type           string `json:"type"`
	PlayDurationMS int64  `json:"playDurationMs,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ActivityHandler appends first-party listening events to the activity log.
// The log is append-only; there are no update or delete routes.
type ActivityHandler struct {
	recorder ActivityRecorder
}

// NewActivityHandler creates an ActivityHandler backed by the given recorder.
func NewActivityHandler(recorder ActivityRecorder) *ActivityHandler {
	return &ActivityHandler{recorder: recorder}
}

// Routes returns the HTTP routes this handler serves.
func (h *ActivityHandler) Routes() []string {
	return []string{"/activities"}
}

// ServeHTTP handles POST /activities.
func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	var activity *models.Activity
	var err error
	switch models.ActivityType(req.Type) {
	case models.ActivityPlay:
		activity, err = h.recorder.RecordPlay(req.UserID, req.TrackID, req.PlayDurationMS)
	case models.ActivityLike:
		activity, err = h.recorder.RecordLike(req.UserID, req.TrackID)
	case models.ActivityRepost:
		activity, err = h.recorder.RecordRepost(req.UserID, req.TrackID)
	case models.ActivityShare:
		activity, err = h.recorder.RecordShare(req.UserID, req.TrackID)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown activity type %q", req.Type)})
		return
	}

	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, activityResponse{
		ID:             activity.ID(),
		Sequence:       activity.Sequence(),
		UserID:         activity.UserID(),
		TrackID:        activity.TrackID(),
		Type:           string(activity.Type()),
		PlayDurationMS: activity.PlayDurationMS(),
		CreatedAt:      activity.CreatedAt().Format(time.RFC3339),
	})
}

// ReportHandler computes the year-in-review report on demand.
type ReportHandler struct {
	engine tasks.ReportEngine
}

// NewReportHandler creates a ReportHandler backed by the given engine.
func NewReportHandler(engine tasks.ReportEngine) *ReportHandler {
	return &ReportHandler{engine: engine}
}

// Routes returns the HTTP routes this handler serves.
func (h *ReportHandler) Routes() []string {
	return []string{"/report"}
}

// ServeHTTP handles GET /report. An optional year query parameter selects the
// report window; the current year is the default.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid year %q", raw)})
			return
		}
		year = parsed
	}

	report, err := h.engine.Build(r.Context(), year, nil)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HealthHandler answers liveness checks.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/healthz"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs each request's method, path, status, and duration.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}
