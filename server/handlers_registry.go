package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// handleCreateAdmin adds an admin id to the allow-list
func (s *Server) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		AdminID string `json:"adminId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AdminID == "" {
		writeError(w, http.StatusBadRequest, "adminId is required")
		return
	}

	if err := s.store.CreateAdmin(ctx, req.AdminID); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, "admin already exists")
			return
		}
		s.log.WithError(err).Error("failed to create admin")
		writeError(w, http.StatusInternalServerError, "failed to create admin")
		return
	}

	writeMessage(w, "admin created successfully")
}

// handleGetAdmins returns every admin id
func (s *Server) handleGetAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := s.store.ListAdmins(r.Context())
	if err != nil {
		s.log.WithError(err).Error("failed to list admins")
		writeError(w, http.StatusInternalServerError, "failed to get admins")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"admins": admins})
}

// handleDeleteAdmin removes an admin id; missing ids are treated as deleted
func (s *Server) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	adminID := mux.Vars(r)["adminId"]

	if err := s.store.DeleteAdmin(r.Context(), adminID); err != nil {
		s.log.WithError(err).Error("failed to delete admin")
		writeError(w, http.StatusInternalServerError, "failed to delete admin")
		return
	}

	writeMessage(w, "admin deleted successfully")
}

// handleCreateStudio adds a studio name to the allow-list
func (s *Server) handleCreateStudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		StudioName string `json:"studioName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudioName == "" {
		writeError(w, http.StatusBadRequest, "studioName is required")
		return
	}

	if err := s.store.CreateStudio(ctx, req.StudioName); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, "studio already exists")
			return
		}
		s.log.WithError(err).Error("failed to create studio")
		writeError(w, http.StatusInternalServerError, "failed to create studio")
		return
	}

	writeMessage(w, "studio created successfully")
}

// handleGetStudios returns every studio name
func (s *Server) handleGetStudios(w http.ResponseWriter, r *http.Request) {
	studios, err := s.store.ListStudios(r.Context())
	if err != nil {
		s.log.WithError(err).Error("failed to list studios")
		writeError(w, http.StatusInternalServerError, "failed to get studios")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"studios": studios})
}

// handleDeleteStudio removes a studio name; missing names are treated as deleted
func (s *Server) handleDeleteStudio(w http.ResponseWriter, r *http.Request) {
	studioName := mux.Vars(r)["studioName"]

	if err := s.store.DeleteStudio(r.Context(), studioName); err != nil {
		s.log.WithError(err).Error("failed to delete studio")
		writeError(w, http.StatusInternalServerError, "failed to delete studio")
		return
	}

	writeMessage(w, "studio deleted successfully")
}
