package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	red "portfolio-assistant/internal/infra/redis"
)

const maxChatBody = 8 << 10

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// chatHandler serves one conversational turn. A per-session lock rejects
// concurrent turns instead of queueing them against a stale state snapshot.
func (s *Server) chatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req chatRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		req.SessionID = strings.TrimSpace(req.SessionID)
		if req.SessionID == "" || strings.TrimSpace(req.Text) == "" {
			http.Error(w, "session_id and text are required", http.StatusBadRequest)
			return
		}

		ok, err := s.limiter.Allow(ctx, red.SessionRateKey(req.SessionID, "chat"), s.chatLimit, s.chatWindow)
		if err != nil {
			s.log.Error().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		token, err := s.locker.TryLock(ctx, red.SessionLockKey(req.SessionID), s.lockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrSessionBusy) {
				http.Error(w, "A previous message is still being processed", http.StatusConflict)
				return
			}
			s.log.Error().Err(err).Msg("session lock unavailable")
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}
		defer func() {
			if err := s.locker.Unlock(ctx, red.SessionLockKey(req.SessionID), token); err != nil {
				s.log.Warn().Err(err).Str("session_id", req.SessionID).Msg("unlock failed")
			}
		}()

		reply, err := s.assistant.HandleMessage(ctx, req.SessionID, req.Text)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.log.Error().Err(err).Str("session_id", req.SessionID).Msg("turn failed")
			http.Error(w, "Failed to process message", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
	}
}

func (s *Server) historyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		if sessionID == "" {
			http.Error(w, "session_id is required", http.StatusBadRequest)
			return
		}

		turns, err := s.assistant.History(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to load history", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Data []model.Turn `json:"data"`
		}{Data: turns})
	}
}

type eventRequest struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
}

func (s *Server) eventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Path == "" {
			http.Error(w, "path is required", http.StatusBadRequest)
			return
		}

		if s.pool != nil {
			// Page events are fire-and-forget; never block the page load on
			// the database.
			err := s.pool.Submit(func(ctx context.Context) error {
				return s.analyticsUC.RecordEvent(ctx, req.SessionID, req.Path, req.Referrer)
			})
			if err != nil {
				s.log.Warn().Err(err).Msg("event dropped")
			}
			w.WriteHeader(http.StatusAccepted)
			return
		}

		if err := s.analyticsUC.RecordEvent(r.Context(), req.SessionID, req.Path, req.Referrer); err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to record event", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if !s.passwordMatches(req.Password) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		token, err := s.auth.Mint(w)
		if err != nil {
			s.log.Error().Err(err).Msg("mint admin token")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Token string `json:"token"`
		}{Token: token})
	}
}

func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// statsHandler serves the dashboard aggregate: page views, top paths,
// chat volume and delivered contact requests.
func (s *Server) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, _ := strconv.Atoi(r.URL.Query().Get("window_days"))
		if days <= 0 {
			days = 30
		}

		stats, err := s.analyticsUC.Stats(r.Context(), time.Duration(days)*24*time.Hour)
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) notificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}

		logs, err := s.notifUC.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
			return
		}

		type item struct {
			ID        string                    `json:"id"`
			SessionID string                    `json:"session_id"`
			Payload   model.NotificationPayload `json:"payload"`
			Status    model.NotificationStatus  `json:"status"`
			Attempts  int                       `json:"attempts"`
			LastError string                    `json:"last_error,omitempty"`
			CreatedAt time.Time                 `json:"created_at"`
		}
		out := make([]item, 0, len(logs))
		for _, l := range logs {
			out = append(out, item{
				ID:        l.ID,
				SessionID: l.SessionID,
				Payload:   l.Payload,
				Status:    l.Status,
				Attempts:  l.Attempts,
				LastError: l.LastError,
				CreatedAt: l.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, struct {
			Data []item `json:"data"`
		}{Data: out})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
