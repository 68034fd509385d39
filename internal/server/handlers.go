package server

import (
	"encoding/json"
	"net/http"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "payment-reminder",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleRunReminders triggers the reminder job outside its schedule
func (s *Server) handleRunReminders(w http.ResponseWriter, r *http.Request) {
	if s.reminderJob == nil {
		s.writeError(w, http.StatusServiceUnavailable, "reminder job not configured")
		return
	}

	s.log.Info().Msg("Manual reminder run requested")
	outcome := s.reminderJob.RunOnce()

	s.writeJSON(w, http.StatusOK, map[string]string{
		"outcome": string(outcome),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
