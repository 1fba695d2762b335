package httpapi

import "net/http"

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"generation":    s.gateway.Names(),
		"ocr":           s.ocrEngines.Names(),
		"transcription": s.transcriber,
		"defaults": map[string]string{
			"generation": s.cfg.MockProvider,
			"model":      s.cfg.MockModel,
			"ocr":        s.ocrEngines.DefaultName(),
		},
	})
}
