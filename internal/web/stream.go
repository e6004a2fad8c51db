package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// heartbeatInterval comment ping keeping proxies from closing idle streams.
var heartbeatInterval = 20 * time.Second

func prepareStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return flusher, true
}

func writeEvent(w http.ResponseWriter, id uint64, event string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if id > 0 {
		fmt.Fprintf(w, "id: %d\n", id)
	}
	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", payload)

	return nil
}

// handleChangeStream replays journaled changes after Last-Event-ID, then follows the live feed.
func (s *Server) handleChangeStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Changes == nil && s.deps.Journal == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "change feed not available")
		return
	}
	flusher, ok := prepareStream(w)
	if !ok {
		return
	}

	// subscribe before replay so nothing recorded in between is lost
	var live chan domain.ChangeEventRecord
	if s.deps.Changes != nil {
		live = s.deps.Changes.Subscribe()
		defer s.deps.Changes.Unsubscribe(live)
	}

	lastIndex := parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	send := func(record domain.ChangeEventRecord) error {
		if record.Index <= lastIndex {
			return nil
		}
		if err := writeEvent(w, record.Index, "change", record.Event); err != nil {
			return err
		}
		flusher.Flush()
		lastIndex = record.Index
		return nil
	}

	if s.deps.Journal != nil {
		records, err := s.deps.Journal.EventsAfter(lastIndex)
		if err != nil {
			http.Error(w, "failed to load changes", http.StatusInternalServerError)
			s.l.Error("change stream initial load", zap.Error(err))
			return
		}
		for _, record := range records {
			if err := send(record); err != nil {
				s.l.Warn("change stream replay", zap.Error(err))
				return
			}
		}
	}

	// lets the client leave its loading state when there is no history
	if lastIndex == 0 {
		fmt.Fprintf(w, "event: no_data\n")
		fmt.Fprintf(w, "data: {}\n\n")
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case record, ok := <-live:
			if !ok {
				return
			}
			if err := send(record); err != nil {
				s.l.Warn("change stream send", zap.Error(err))
			}
		}
	}
}

// handleRefreshStream pushes a tick each time a data stream refreshed.
func (s *Server) handleRefreshStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ticks == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "refresh ticks not available")
		return
	}
	flusher, ok := prepareStream(w)
	if !ok {
		return
	}

	ticks := s.deps.Ticks.Subscribe()
	defer s.deps.Ticks.Unsubscribe(ticks)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			if err := writeEvent(w, 0, "tick", tick); err != nil {
				s.l.Warn("refresh stream send", zap.Error(err))
				continue
			}
			flusher.Flush()
		}
	}
}

// parseLastEventID extracts an SSE event ID from either the Last-Event-ID header or a query parameter.
// The header is preferred; the query parameter allows manual reconnects to resume from a known index.
func parseLastEventID(headerVal, queryVal string) uint64 {
	idStr := strings.TrimSpace(headerVal)
	if idStr == "" {
		idStr = strings.TrimSpace(queryVal)
	}
	if idStr == "" {
		return 0
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
