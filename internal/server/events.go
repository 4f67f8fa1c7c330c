package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/theirongolddev/tripbudget/internal/model"
)

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventTripCreated  = "trip_created"
	EventTripSelected = "trip_selected"
	EventTripCleared  = "trip_cleared"
)

// Event is emitted whenever the trip store changes.
type Event struct {
	ID        int64                 `json:"id"`
	Type      string                `json:"type"`
	Timestamp time.Time             `json:"timestamp"`
	Trip      *model.TripPlan       `json:"trip,omitempty"`
	Stats     *model.DashboardStats `json:"stats,omitempty"`
}

func (s *Server) emit(typ string, trip *model.TripPlan) {
	stats := s.trips.Stats()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	s.appendEventLocked(Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: time.Now(),
		Trip:      trip,
		Stats:     &stats,
	})
}

func (s *Server) publishEvent(ev Event) {
	s.mu.Lock()
	s.appendEventLocked(ev)
	s.mu.Unlock()
}

// appendEventLocked buffers ev and fans it out. Callers hold s.mu.
func (s *Server) appendEventLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current stats immediately.
	stats := s.trips.Stats()
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Stats:     &stats,
	}
	if cur, ok := s.trips.Current(); ok {
		current.Trip = &cur
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Server) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Server) subscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
