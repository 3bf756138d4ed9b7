package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// studioEventResponse is the per-studio listing shape; the studio is implied
// by the request, so only the event id (its name) and fields are returned.
type studioEventResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// handleCreateEvent creates or replaces an event for a studio
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		StudioName  string `json:"studioName"`
		Name        string `json:"name"`
		Time        string `json:"time"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudioName == "" || req.Name == "" || req.Time == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "not all fields are filled")
		return
	}

	event := &Event{
		StudioName:  req.StudioName,
		Name:        req.Name,
		Time:        req.Time,
		Description: req.Description,
	}
	if err := s.store.SetEvent(ctx, event); err != nil {
		s.log.WithError(err).Error("failed to create event")
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeMessage(w, "event created successfully")
}

// handleStudioEvents lists one studio's events, ascending by time
func (s *Server) handleStudioEvents(w http.ResponseWriter, r *http.Request) {
	studioName := r.URL.Query().Get("studioName")
	if studioName == "" {
		writeError(w, http.StatusBadRequest, "studioName is required")
		return
	}

	events, err := s.store.ListEvents(r.Context(), studioName)
	if err != nil {
		s.log.WithError(err).Error("failed to list events")
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	sortEventsByTime(events)

	response := make([]studioEventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, studioEventResponse{
			ID:          event.Name,
			Name:        event.Name,
			Time:        event.Time,
			Description: event.Description,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// handleAllEvents lists every studio's events, ascending by time, each
// tagged with its studio
func (s *Server) handleAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListAllEvents(r.Context())
	if err != nil {
		s.log.WithError(err).Error("failed to list all events")
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	sortEventsByTime(events)

	if events == nil {
		events = []*Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleDeleteEvent deletes one event by studio and name
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		StudioName string `json:"studioName"`
		EventName  string `json:"eventName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.DeleteEvent(ctx, req.StudioName, req.EventName); err != nil {
		s.log.WithError(err).Error("failed to delete event")
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	writeMessage(w, "event deleted")
}

// eventTimeLayouts are tried in order when sorting listings. Event times
// are stored as the caller sent them.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseEventTime(value string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", value)
}

// sortEventsByTime orders events ascending by parsed time. Events with
// unparseable times sort after parseable ones; ties keep scan order.
func sortEventsByTime(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, errI := parseEventTime(events[i].Time)
		tj, errJ := parseEventTime(events[j].Time)
		if errI != nil || errJ != nil {
			return errI == nil && errJ != nil
		}
		return ti.Before(tj)
	})
}
