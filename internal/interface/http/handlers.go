package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ailearn-hub/learning-progress-hub/internal/application/command"
	"github.com/ailearn-hub/learning-progress-hub/internal/application/query"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
	"github.com/ailearn-hub/learning-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot handles GET / - basic service info.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "learning-progress-hub",
		"version": "v1",
		"status":  "running",
		"uptime":  s.Uptime().String(),
	})
}

// handleHealth handles GET /health - full health check of all dependencies.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// handleReady handles GET /ready - readiness probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil && !s.deps.HealthChecker.Check(r.Context()).Healthy {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Service dependencies are unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles GET /live - liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS RECORDING HANDLERS (WRITE SIDE)
// ══════════════════════════════════════════════════════════════════════════════

// recordContentRequest is the body of POST .../progress/content.
type recordContentRequest struct {
	Date      string `json:"date"`
	ItemIndex int    `json:"item_index"`
}

// handleRecordContent handles POST /api/v1/sessions/{id}/progress/content.
func (s *Server) handleRecordContent(w http.ResponseWriter, r *http.Request) {
	var req recordContentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordContentHandler.Handle(r.Context(), command.RecordContentLearnedCommand{
		SessionID: r.PathValue("id"),
		Date:      req.Date,
		ItemIndex: req.ItemIndex,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"first_time": result.FirstTime,
		"stats":      result.Snapshot,
	})
}

// recordTermRequest is the body of POST .../progress/terms.
type recordTermRequest struct {
	Date         string `json:"date"`
	ContentIndex int    `json:"content_index"`
	Term         string `json:"term"`
}

// handleRecordTerm handles POST /api/v1/sessions/{id}/progress/terms.
func (s *Server) handleRecordTerm(w http.ResponseWriter, r *http.Request) {
	var req recordTermRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordTermHandler.Handle(r.Context(), command.RecordTermLearnedCommand{
		SessionID:    r.PathValue("id"),
		Date:         req.Date,
		ContentIndex: req.ContentIndex,
		Term:         req.Term,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"first_time": result.FirstTime,
		"stats":      result.Snapshot,
	})
}

// recordQuizRequest is the body of POST .../progress/quiz.
type recordQuizRequest struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// handleRecordQuiz handles POST /api/v1/sessions/{id}/progress/quiz.
func (s *Server) handleRecordQuiz(w http.ResponseWriter, r *http.Request) {
	var req recordQuizRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordQuizHandler.Handle(r.Context(), command.RecordQuizResultCommand{
		SessionID: r.PathValue("id"),
		Correct:   req.Correct,
		Total:     req.Total,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":             result.Date.String(),
		"sequence":         result.Sequence,
		"score":            result.Score,
		"stats":            result.Snapshot,
		"new_achievements": result.NewAchievements,
	})
}

// handleSetStats handles PUT /api/v1/sessions/{id}/stats.
// The body is a full stats snapshot, stored verbatim.
func (s *Server) handleSetStats(w http.ResponseWriter, r *http.Request) {
	var snapshot progress.StatsSnapshot
	if !s.decodeBody(w, r, &snapshot) {
		return
	}

	stored, err := s.deps.SetStatsHandler.Handle(r.Context(), command.SetStatsCommand{
		SessionID: r.PathValue("id"),
		Snapshot:  &snapshot,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS VIEW HANDLERS (READ SIDE)
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProgress handles GET /api/v1/sessions/{id}/progress.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetAllProgressHandler.Handle(r.Context(), query.GetAllProgressQuery{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetStats handles GET /api/v1/sessions/{id}/stats.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetStatsHandler.Handle(r.Context(), query.GetStatsQuery{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetPeriodStats handles GET /api/v1/sessions/{id}/stats/period?start=...&end=...
func (s *Server) handleGetPeriodStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetPeriodStatsHandler.Handle(r.Context(), query.GetPeriodStatsQuery{
		SessionID: r.PathValue("id"),
		StartDate: getQueryParam(r, "start", ""),
		EndDate:   getQueryParam(r, "end", ""),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetAchievements handles GET /api/v1/sessions/{id}/achievements.
// Reading achievements evaluates pending unlocks and persists them, so the
// response always reflects the session's current progress.
func (s *Server) handleGetAchievements(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.CheckAchievementsHandler.Handle(r.Context(), command.CheckAchievementsCommand{
		SessionID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements":     result.Achievements,
		"new_achievements": result.NewAchievements,
	})
}

// handleGetEvents handles GET /api/v1/sessions/{id}/events?limit=N - the
// audit view over the durable event journal, newest first.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	sessionID, err := shared.NewSessionID(r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	limit, err := strconv.Atoi(getQueryParam(r, "limit", "50"))
	if err != nil || limit <= 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
		return
	}

	events, err := s.deps.EventReader.Recent(r.Context(), sessionID.String(), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID.String(),
		"events":     events,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes the JSON request body into dst. On failure it writes a
// 400 response and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON: "+err.Error())
		return false
	}
	return true
}

// writeDomainError maps a domain error to an HTTP status code.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err), errors.Is(err, shared.ErrInvalidRange):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsMalformedData(err):
		writeJSONError(w, http.StatusBadRequest, "malformed_data", err.Error())
	default:
		s.logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
