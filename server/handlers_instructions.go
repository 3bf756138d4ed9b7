package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// searchResult is the trimmed projection returned by /search; only the
// first file URL is exposed.
type searchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"fileUrl"`
}

// handleUpload accepts a multipart instruction submission: studioName,
// title, description, and one or more files
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(s.config.Server.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	files := make([]UploadFile, 0)
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			f, err := header.Open()
			if err != nil {
				s.log.WithError(err).Error("failed to open uploaded file")
				writeError(w, http.StatusInternalServerError, "failed to upload instruction")
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				s.log.WithError(err).Error("failed to read uploaded file")
				writeError(w, http.StatusInternalServerError, "failed to upload instruction")
				return
			}

			contentType := header.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			files = append(files, UploadFile{
				Name:        header.Filename,
				ContentType: contentType,
				Data:        data,
			})
		}
	}

	_, err := s.uploader.SubmitInstruction(ctx,
		r.FormValue("studioName"),
		r.FormValue("title"),
		r.FormValue("description"),
		files,
	)
	if err != nil {
		if IsValidation(err) {
			writeError(w, http.StatusBadRequest, "not all fields are filled")
			return
		}
		s.log.WithError(err).Error("failed to upload instruction")
		writeError(w, http.StatusInternalServerError, "failed to upload instruction")
		return
	}

	writeMessage(w, "instruction uploaded successfully")
}

// handleDeleteInstruction deletes one instruction by studio and title
func (s *Server) handleDeleteInstruction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		StudioName      string `json:"studioName"`
		InstructionName string `json:"instructionName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudioName == "" || req.InstructionName == "" {
		writeError(w, http.StatusBadRequest, "studio and instruction names are required")
		return
	}

	// Studio names are lowercased on delete; upload stores them verbatim.
	if err := s.store.DeleteInstruction(ctx, strings.ToLower(req.StudioName), req.InstructionName); err != nil {
		s.log.WithError(err).Error("failed to delete instruction")
		writeError(w, http.StatusInternalServerError, "failed to delete instruction")
		return
	}

	if err := s.cache.InvalidateInstructions(ctx); err != nil {
		s.log.WithError(err).Warn("failed to invalidate instruction cache")
	}

	writeMessage(w, "instruction deleted")
}

// handleAllInstructions returns every instruction across all studios
func (s *Server) handleAllInstructions(w http.ResponseWriter, r *http.Request) {
	instructions, err := s.listInstructions(r.Context())
	if err != nil {
		s.log.WithError(err).Error("failed to list instructions")
		writeError(w, http.StatusInternalServerError, "failed to get instructions")
		return
	}

	writeJSON(w, http.StatusOK, instructions)
}

// handleSearch returns instructions whose title contains the query,
// case-insensitively
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "a search phrase is required")
		return
	}
	query = strings.ToLower(query)

	instructions, err := s.listInstructions(r.Context())
	if err != nil {
		s.log.WithError(err).Error("failed to search instructions")
		writeError(w, http.StatusInternalServerError, "failed to search instructions")
		return
	}

	results := make([]searchResult, 0)
	for _, instruction := range instructions {
		if !strings.Contains(strings.ToLower(instruction.Title), query) {
			continue
		}
		result := searchResult{
			Title:       instruction.Title,
			Description: instruction.Description,
		}
		if len(instruction.FileURLs) > 0 {
			result.FileURL = instruction.FileURLs[0]
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusOK, results)
}

// listInstructions serves the full instruction scan, preferring the cache
func (s *Server) listInstructions(ctx context.Context) ([]*Instruction, error) {
	if instructions, err := s.cache.GetInstructions(ctx); err == nil {
		return instructions, nil
	}

	instructions, err := s.store.ListInstructions(ctx)
	if err != nil {
		return nil, err
	}
	for _, instruction := range instructions {
		if instruction.FileURLs == nil {
			instruction.FileURLs = []string{}
		}
	}

	if err := s.cache.SetInstructions(ctx, instructions); err != nil {
		s.log.WithError(err).Warn("failed to cache instructions")
	}

	return instructions, nil
}
