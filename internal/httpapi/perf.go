package httpapi

import "net/http"

func (s *Server) handlePerfLatency(w http.ResponseWriter, r *http.Request) {
	if s.perf == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"generated_at": "",
			"window_size":  0,
			"stages":       []any{},
		})
		return
	}
	snap := s.perf.Snapshot()
	if r.URL.Query().Get("reset") == "true" {
		s.perf.Reset()
	}
	respondJSON(w, http.StatusOK, snap)
}
