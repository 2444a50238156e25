// Package api provides the read-only HTTP API for observing a running game:
// standings, relationships, quests, and recent events.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/talgya/citystates/internal/civ"
	"github.com/talgya/citystates/internal/diplomacy"
	"github.com/talgya/citystates/internal/engine"
	"github.com/talgya/citystates/internal/persistence"
)

// Server serves the game state over HTTP.
type Server struct {
	Sim  *engine.Simulation
	DB   *persistence.DB
	Port int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/civs", s.handleCivs)
	mux.HandleFunc("/api/v1/civ/", s.handleCivDetail)
	mux.HandleFunc("/api/v1/relationships", s.handleRelationships)
	mux.HandleFunc("/api/v1/quests", s.handleQuests)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	majors, cityStates := 0, 0
	for _, c := range s.Sim.Reg.All() {
		if !c.Alive() {
			continue
		}
		if c.CityState {
			cityStates++
		} else {
			majors++
		}
	}

	writeJSON(w, map[string]any{
		"turn":        s.Sim.Turn,
		"speed":       s.Sim.Speed.Name,
		"majors":      majors,
		"city_states": cityStates,
		"map":         s.Sim.Map.String(),
	})
}

func (s *Server) handleCivs(w http.ResponseWriter, r *http.Request) {
	type civSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		CityState   bool   `json:"city_state"`
		Type        string `json:"type,omitempty"`
		Personality string `json:"personality,omitempty"`
		Ally        string `json:"ally,omitempty"`
		Gold        int    `json:"gold"`
		Defeated    bool   `json:"defeated"`
	}

	out := make([]civSummary, 0, s.Sim.Reg.Count())
	for _, c := range s.Sim.Reg.All() {
		entry := civSummary{
			ID:        string(c.ID),
			Name:      c.Name,
			CityState: c.CityState,
			Gold:      c.Gold,
			Defeated:  c.Defeated,
		}
		if c.CityState {
			entry.Type = c.Type.String()
			entry.Personality = c.Personality.String()
			entry.Ally = string(c.AllyID)
		}
		out = append(out, entry)
	}
	writeJSON(w, out)
}

func (s *Server) handleCivDetail(w http.ResponseWriter, r *http.Request) {
	id := civ.ID(strings.TrimPrefix(r.URL.Path, "/api/v1/civ/"))
	c := s.Sim.Reg.Get(id)
	if c == nil {
		http.Error(w, "unknown civ", http.StatusNotFound)
		return
	}

	type relEntry struct {
		To        string  `json:"to"`
		Influence float64 `json:"influence"`
		Status    string  `json:"status"`
		Wary      bool    `json:"wary,omitempty"`
	}
	var rels []relEntry
	for _, rel := range s.Sim.Led.RelsFrom(id) {
		rels = append(rels, relEntry{
			To:        string(rel.To),
			Influence: rel.Influence,
			Status:    rel.Status.String(),
			Wary:      rel.Wary,
		})
	}

	detail := map[string]any{
		"civ":           c,
		"relationships": rels,
	}
	if mgr, ok := s.Sim.Quests[id]; ok {
		detail["quests"] = mgr.Assigned
		detail["war_trackers"] = mgr.WarTrackers
	}
	writeJSON(w, detail)
}

func (s *Server) handleRelationships(w http.ResponseWriter, r *http.Request) {
	type relEntry struct {
		From      string  `json:"from"`
		To        string  `json:"to"`
		Influence float64 `json:"influence"`
		Status    string  `json:"status"`
	}

	var out []relEntry
	for _, rel := range s.Sim.Led.All() {
		// Influence lives on the city-state side; the mirror rows carry
		// only war/peace status and add noise here.
		if rel.Status == diplomacy.Peace && rel.Influence == 0 {
			continue
		}
		out = append(out, relEntry{
			From:      string(rel.From),
			To:        string(rel.To),
			Influence: rel.Influence,
			Status:    rel.Status.String(),
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleQuests(w http.ResponseWriter, r *http.Request) {
	type questEntry struct {
		CityState string `json:"city_state"`
		Quest     string `json:"quest"`
		Assignee  string `json:"assignee"`
		Remaining int    `json:"remaining_turns"`
		Data1     string `json:"data1,omitempty"`
	}

	var out []questEntry
	for _, cs := range s.Sim.Reg.CityStates() {
		mgr, ok := s.Sim.Quests[cs.ID]
		if !ok {
			continue
		}
		for _, q := range mgr.Assigned {
			out = append(out, questEntry{
				CityState: string(cs.ID),
				Quest:     q.Name.String(),
				Assignee:  string(q.Assignee),
				Remaining: q.RemainingTurns(s.Sim.Speed, s.Sim.Turn),
				Data1:     q.Data1,
			})
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	if s.DB != nil {
		events, err := s.DB.RecentEvents(limit)
		if err == nil {
			writeJSON(w, events)
			return
		}
		slog.Warn("recent events query failed, serving in-memory", "error", err)
	}

	events := s.Sim.Events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}
