package api

import (
	"fmt"
	"net/http"

	"github.com/mark3labs/progressr/internal/progress"
)

type nameRequest struct {
	Name string `json:"name"`
}

type noteRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summarize(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	name, err := s.service.CreateTask(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, fmt.Sprintf("Task '%s' created", name))
}

func (s *Server) handleRenameTask(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	name, err := s.service.RenameTask(r.Context(), param(r, "task"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Task renamed to '%s'", name))
}

func (s *Server) handleActivateTask(w http.ResponseWriter, r *http.Request) {
	task := progress.Normalize(param(r, "task"))
	active, err := s.service.ToggleTaskActive(r.Context(), task)
	if err != nil {
		writeError(w, r, err)
		return
	}
	state := "inactive"
	if active {
		state = "active"
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Task '%s' is now %s", task, state))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	task := progress.Normalize(param(r, "task"))
	if err := s.service.DeleteTask(r.Context(), task); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Task '%s' deleted", task))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	name, err := s.service.CreateCategory(r.Context(), param(r, "task"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, fmt.Sprintf("Category '%s' added", name))
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	name, err := s.service.RenameCategory(r.Context(), param(r, "task"), param(r, "category"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Category renamed to '%s'", name))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCategory(r.Context(), param(r, "task"), param(r, "category")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted")
}

func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := s.service.SetNote(r.Context(), param(r, "task"), param(r, "category"), req.Note); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note saved")
}

func (s *Server) handleClearNote(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearNote(r.Context(), param(r, "task"), param(r, "category")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note deleted")
}

func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	name, err := s.service.CreateSubtask(r.Context(), param(r, "task"), param(r, "category"), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, fmt.Sprintf("Subtask '%s' added", name))
}

func (s *Server) handleToggleSubtask(w http.ResponseWriter, r *http.Request) {
	if _, err := s.service.ToggleSubtask(r.Context(), param(r, "task"), param(r, "category"), param(r, "subtask")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Subtask status toggled")
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteSubtask(r.Context(), param(r, "task"), param(r, "category"), param(r, "subtask")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Subtask deleted")
}
