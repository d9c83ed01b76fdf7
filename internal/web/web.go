// Package web exposes the engine over HTTP: a JSON API for the event
// source and deletion-intent collaborators, and an ICS feed for calendar
// subscribers.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"flowcal/internal/config"
	"flowcal/internal/ics"
	appLog "flowcal/internal/log"
	"flowcal/internal/model"
	"flowcal/internal/series"
	"flowcal/internal/store"
	"flowcal/internal/temporal"
)

// Server wires config, the series engine and the collection store behind an
// http.ServeMux.
type Server struct {
	cfg    *config.Config
	engine *series.Engine
	events *store.Memory
	mux    *http.ServeMux
}

// NewServer constructs a Server over the given engine and store.
func NewServer(cfg *config.Config, engine *series.Engine, events *store.Memory) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		events: events,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleUpsertEvent)
	s.mux.HandleFunc("POST /api/events/delete", s.handleDeleteEvents)
	s.mux.HandleFunc("GET /feed.ics", s.handleFeed)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="flowcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventDTO is the JSON view of an event. localStart/localEnd are rendered
// in the policy zone for form prefill; edits still arrive as absolute
// instants.
type eventDTO struct {
	ID         string            `json:"id"`
	SeriesID   string            `json:"seriesId,omitempty"`
	Title      string            `json:"title"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	LocalStart string            `json:"localStart"`
	LocalEnd   string            `json:"localEnd"`
	Recurrence *model.Recurrence `json:"recurrence,omitempty"`
	Attrs      map[string]any    `json:"attrs,omitempty"`
}

type eventsResponse struct {
	Events   []eventDTO `json:"events"`
	Count    int        `json:"count"`
	Timezone string     `json:"timezone"`
}

func (s *Server) toDTO(ev model.Event) eventDTO {
	loc := s.location()
	return eventDTO{
		ID:         ev.ID,
		SeriesID:   ev.SeriesID,
		Title:      ev.Title,
		Start:      ev.Start,
		End:        ev.End,
		LocalStart: temporal.LocalFormat(ev.Start.In(loc)),
		LocalEnd:   temporal.LocalFormat(ev.End.In(loc)),
		Recurrence: ev.Recurrence,
		Attrs:      ev.Attrs,
	}
}

func (s *Server) location() *time.Location {
	if s.engine != nil && s.engine.Location != nil {
		return s.engine.Location
	}
	return time.UTC
}

func (s *Server) eventsResponseBody() eventsResponse {
	snapshot := s.events.Snapshot()
	dtos := make([]eventDTO, 0, len(snapshot))
	for _, ev := range snapshot {
		dtos = append(dtos, s.toDTO(ev))
	}
	return eventsResponse{
		Events:   dtos,
		Count:    len(dtos),
		Timezone: s.location().String(),
	}
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.eventsResponseBody())
}

// upsertRequest is the event-source collaborator payload: a candidate base
// event (or occurrence edit) plus the edit scope.
type upsertRequest struct {
	Event model.Event     `json:"event"`
	Mode  series.EditMode `json:"mode"`
}

func (s *Server) handleUpsertEvent(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Event.ID == "" {
		// Fresh base events may arrive without an id; assign one before
		// the engine needs it for series linkage.
		req.Event.ID = model.NewID()
	}
	if req.Mode == "" {
		req.Mode = series.ModeSeries
	}

	err := s.events.Update(func(current []model.Event) ([]model.Event, error) {
		return s.engine.Reconcile(current, req.Event, req.Mode)
	})
	if err != nil {
		appLog.Error("api events: reconcile failed", err, "id", req.Event.ID, "mode", string(req.Mode))
		switch {
		case errors.Is(err, series.ErrInvalidRange):
			writeError(w, http.StatusBadRequest, "event end precedes start")
		case errors.Is(err, series.ErrMissingBaseID):
			writeError(w, http.StatusBadRequest, "event id is required")
		default:
			writeError(w, http.StatusInternalServerError, "failed to apply edit")
		}
		return
	}

	writeJSON(w, http.StatusOK, s.eventsResponseBody())
}

func (s *Server) handleDeleteEvents(w http.ResponseWriter, r *http.Request) {
	var intent series.DeleteIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	_ = s.events.Update(func(current []model.Event) ([]model.Event, error) {
		return s.engine.ResolveDeletion(current, intent), nil
	})

	writeJSON(w, http.StatusOK, s.eventsResponseBody())
}

func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	payload := ics.Export(s.events.Snapshot(), s.location())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
