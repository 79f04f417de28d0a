package api

import (
	"embed"
	"net/http"

	"github.com/mark3labs/progressr/internal/logger"
	"github.com/mark3labs/progressr/internal/supervisor"
)

//go:embed web/index.html
var web embed.FS

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	page, err := web.ReadFile("web/index.html")
	if err != nil {
		logger.Error("Dashboard asset missing: %v", err)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !s.hasController(w) {
		return
	}
	writeControl(w, supervisor.AlreadyRunning)(s.controller.Start())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !s.hasController(w) {
		return
	}
	writeControl(w, supervisor.AlreadyStopped)(s.controller.Stop())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if !s.hasController(w) {
		return
	}
	writeControl(w, "")(s.controller.Restart(r.Context()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.hasController(w) {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: s.controller.Status()})
}

func (s *Server) hasController(w http.ResponseWriter) bool {
	if s.controller == nil {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable", Message: "Notifier control is not configured"})
		return false
	}
	return true
}

// writeControl answers a control call; the noop result is reported as 400.
func writeControl(w http.ResponseWriter, noop string) func(string, error) {
	return func(result string, err error) {
		switch {
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: err.Error()})
		case noop != "" && result == noop:
			writeJSON(w, http.StatusBadRequest, statusResponse{Status: result})
		default:
			writeJSON(w, http.StatusOK, statusResponse{Status: result})
		}
	}
}
