package api

import (
	"encoding/json"
	"net/http"
)

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "ok",
		"matchId": h.engine.MatchID(),
	})
}

// handleGetMatch returns the current state without draining events.
func (h *routerHandlers) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.View())
}

// handleGetSummary serves the end-of-match report; 404 while the
// match is still running.
func (h *routerHandlers) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	sum, ok := h.engine.Summary()
	if !ok {
		http.Error(w, "match still running", http.StatusNotFound)
		return
	}
	writeJSON(w, sum)
}

// handleGetLayout returns the static maze, both structured and as the
// ASCII rendering for quick eyeballing.
func (h *routerHandlers) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l := h.engine.Layout()
	writeJSON(w, map[string]interface{}{
		"name":       l.Name,
		"width":      l.Width,
		"height":     l.Height,
		"sectorSize": l.SectorSize,
		"sectors":    len(l.Sectors),
		"gates":      l.Gates,
		"ascii":      l.String(),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
	}
}
