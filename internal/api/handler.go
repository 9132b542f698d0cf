// Package api serves results and progress over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/verte-zerg/tempotype/internal/logger"
	"github.com/verte-zerg/tempotype/internal/model"
	"github.com/verte-zerg/tempotype/internal/progress"
	"github.com/verte-zerg/tempotype/internal/session"
)

// Store is the persistence the handlers need.
type Store interface {
	InsertResult(ctx context.Context, userID string, result model.SessionResult) (int64, error)
	ListRecords(ctx context.Context, userID string, since *time.Time) ([]model.AnalyticsRecord, error)
	ListResults(ctx context.Context, userID string, limit int) ([]model.StoredResult, error)
	InsertCompletedText(ctx context.Context, userID, textID string) error
	CountCompletedTexts(ctx context.Context, userID string) (int, error)
}

// Handler serves the JSON endpoints.
type Handler struct {
	store Store
	texts session.TextSource
	loc   *time.Location
	now   func() time.Time
}

// NewHandler builds a Handler. Progress buckets use the server's local time.
func NewHandler(store Store, texts session.TextSource) *Handler {
	return &Handler{store: store, texts: texts, loc: time.Local, now: time.Now}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProgressResponse is a chart-ready series.
type ProgressResponse struct {
	Granularity string           `json:"granularity"`
	Points      []progress.Point `json:"points"`
}

// SummaryResponse holds the headline cards.
type SummaryResponse struct {
	progress.Summary
	TextsCompleted int `json:"textsCompleted"`
}

// ResultRequest is a finished session posted by a client.
type ResultRequest struct {
	WPM             *int     `json:"wpm"`
	Accuracy        *int     `json:"accuracy"`
	ErrorCount      *int     `json:"errorCount"`
	DurationSeconds int      `json:"durationSeconds"`
	TextsCompleted  int      `json:"textsCompleted"`
	CompletedTexts  []string `json:"completedTexts"`
	Difficulty      string   `json:"difficulty"`
	Language        string   `json:"language"`
	Mode            string   `json:"mode"`
}

// CreatedResponse carries the id of a new row.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// RegisterRoutes mounts the endpoints under /api.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users/{userID}/progress", h.GetProgress).Methods("GET")
	api.HandleFunc("/users/{userID}/summary", h.GetSummary).Methods("GET")
	api.HandleFunc("/users/{userID}/results", h.ListResults).Methods("GET")
	api.HandleFunc("/users/{userID}/results", h.CreateResult).Methods("POST")
	api.HandleFunc("/users/{userID}/texts/{textID}/complete", h.CompleteText).Methods("POST")
	api.HandleFunc("/texts", h.GetText).Methods("GET")
}

// GetProgress returns the user's averaged series for one granularity.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	g := progress.Weekly
	if raw := r.URL.Query().Get("granularity"); raw != "" {
		parsed, err := progress.ParseGranularity(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		g = parsed
	}
	since, err := sinceParam(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	records, err := h.store.ListRecords(r.Context(), userID, since)
	if err != nil {
		logger.Error("failed to list records", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load progress"})
		return
	}
	writeJSON(w, http.StatusOK, ProgressResponse{
		Granularity: g.String(),
		Points:      progress.AggregateIn(records, g, h.loc),
	})
}

// GetSummary returns the headline cards and the completed text count.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	records, err := h.store.ListRecords(r.Context(), userID, nil)
	if err != nil {
		logger.Error("failed to list records", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load summary"})
		return
	}
	completed, err := h.store.CountCompletedTexts(r.Context(), userID)
	if err != nil {
		logger.Error("failed to count completed texts", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load summary"})
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Summary: progress.Summarize(records), TextsCompleted: completed})
}

// ListResults returns recent results, newest first.
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	limit := intQueryParam(r.URL.Query(), "limit", 20)
	results, err := h.store.ListResults(r.Context(), userID, limit)
	if err != nil {
		logger.Error("failed to list results", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load results"})
		return
	}
	if results == nil {
		results = []model.StoredResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// CreateResult stores a finished session posted by a client.
func (h *Handler) CreateResult(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	var req ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	result, err := req.toResult(h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := h.store.InsertResult(r.Context(), userID, result)
	if err != nil {
		logger.Error("failed to save result", "user", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save result"})
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// CompleteText records that the user finished a reference text outside a
// timed session.
func (h *Handler) CompleteText(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, textID := vars["userID"], strings.TrimSpace(vars["textID"])
	if textID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "text id is required"})
		return
	}
	if err := h.store.InsertCompletedText(r.Context(), userID, textID); err != nil {
		logger.Error("failed to record completed text", "user", userID, "text", textID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to record completed text"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetText returns one reference text, falling back when the combination is
// missing.
func (h *Handler) GetText(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	difficulty := model.DifficultyEasy
	if raw := q.Get("difficulty"); raw != "" {
		parsed, err := model.ParseDifficulty(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		difficulty = parsed
	}
	language := model.DefaultLanguage
	if raw := q.Get("language"); raw != "" {
		parsed, err := model.ParseLanguage(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		language = parsed
	}

	text := model.FallbackText
	if h.texts != nil {
		next, err := h.texts.Next(r.Context(), difficulty, language)
		if err != nil {
			logger.Warn("text source failed", "difficulty", difficulty, "language", language, "error", err)
		} else if next.Body != "" {
			text = next
		}
	}
	writeJSON(w, http.StatusOK, text)
}

func (req ResultRequest) toResult(now time.Time) (model.SessionResult, error) {
	if req.WPM == nil || req.Accuracy == nil || req.ErrorCount == nil {
		return model.SessionResult{}, fmt.Errorf("%w: wpm, accuracy and errorCount are required", model.ErrInvalidSettings)
	}
	if *req.WPM < 0 || *req.ErrorCount < 0 || *req.Accuracy < 0 || *req.Accuracy > 100 {
		return model.SessionResult{}, fmt.Errorf("%w: values out of range", model.ErrInvalidSettings)
	}
	settings := model.Settings{DurationSeconds: req.DurationSeconds}
	if req.Difficulty != "" {
		d, err := model.ParseDifficulty(req.Difficulty)
		if err != nil {
			return model.SessionResult{}, err
		}
		settings.Difficulty = d
	}
	if req.Language != "" {
		l, err := model.ParseLanguage(req.Language)
		if err != nil {
			return model.SessionResult{}, err
		}
		settings.Language = l
	}
	if req.Mode != "" {
		mode, err := model.ParseMode(req.Mode)
		if err != nil {
			return model.SessionResult{}, err
		}
		settings.Mode = mode
	}
	return model.SessionResult{
		WordsPerMinute:  *req.WPM,
		AccuracyPercent: *req.Accuracy,
		ErrorCount:      *req.ErrorCount,
		Timestamp:       now,
		DurationSeconds: req.DurationSeconds,
		TextsCompleted:  req.TextsCompleted,
		CompletedTexts:  req.CompletedTexts,
		Score:           session.Score(*req.WPM, *req.Accuracy, settings.Difficulty),
		Settings:        settings,
	}, nil
}

func sinceParam(q url.Values) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get("since"))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid since %q: use YYYY-MM-DD or RFC 3339", raw)
	}
	return &t, nil
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}

// writeError maps domain errors to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidSettings), errors.Is(err, model.ErrUnknownGranularity):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrNoText):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}
