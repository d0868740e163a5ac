package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liamcoop/learningplan/access"
	"github.com/liamcoop/learningplan/internal/logger"
)

// Incentives handler
func (s *Server) handleIncentives(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.EligibleIncentives(r.Context(), s.token(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, IncentivesResponse{
		UserID:     view.UserID,
		Incentives: view.Incentives,
	})
}

// Learning plan handler
func (s *Server) handleLearningPlan(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.LearningPlan(r.Context(), s.token(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, LearningPlanResponse{
		UserID:    view.UserID,
		PlanItems: view.PlanItems,
	})
}

// Colleagues handler
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Colleagues(r.Context(), s.token(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{
			UserID:    u.UserID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	respondJSON(w, http.StatusOK, response)
}

// Liveness probe that touches the store
func (s *Server) handleWorking(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "it's working")
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Error:  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		CatalogCached: s.svc.CatalogCached(r.Context()),
	})
}

func (s *Server) token(r *http.Request) string {
	return r.Header.Get(s.tokenHeader)
}

// respondServiceError maps access errors onto status codes and messages
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, access.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "Invalid token.")
	case errors.Is(err, access.ErrUserNotFound):
		respondError(w, http.StatusUnauthorized, "User associated with this token doesn't exist.")
	case errors.Is(err, access.ErrPlanNotFound):
		respondError(w, http.StatusNotFound, "Learning plan not found for this user.")
	case errors.Is(err, access.ErrNoActiveUsers):
		respondError(w, http.StatusNotFound, "No active users found for this company.")
	default:
		logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "An error occurred while processing the request: "+err.Error())
	}
}

// requestLogger logs each request and feeds the logger counters and
// request metrics
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			s.metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		}

		switch {
		case status >= 500:
			logger.ErrorHttp5xx()
		case status >= 400:
			logger.WarnHttp4xx(status)
		}
		if s.slowRequest > 0 && elapsed > s.slowRequest {
			logger.WarnSlowRequest()
			logger.Warn("slow request", "route", route, "duration_ms", elapsed.Milliseconds())
		}

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", elapsed.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
