package httpapi

import (
	"net/http"
	"strings"

	"pkt.systems/intelhub/internal/logx"
	"pkt.systems/intelhub/schema"
)

// handlePing is the liveness proxy for browser-side probes. The browser
// cannot fetch the tab targets directly without tripping CORS, so it asks
// the hub to do it. Target failure is always carried in the response body
// with a 200; only a missing url parameter is a client error.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	log := logx.Ctx(r.Context())
	w.Header().Set("Cache-Control", "no-cache")

	target := r.URL.Query().Get("url")
	if strings.TrimSpace(target) == "" {
		log.Warn("http ping rejected", "err", schema.ErrMissingURL)
		writeJSON(w, http.StatusBadRequest, schema.ProbeResult{OK: false, Error: schema.ErrMissingURL.Error()})
		return
	}

	result, err := s.prober.Probe(r.Context(), target)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; nothing useful to write.
			return
		}
		result = schema.ProbeResult{OK: false, Error: "fetch failed"}
	}
	writeJSON(w, http.StatusOK, result)
	log.Debug("http ping ok", "url", target, "up", result.OK, "http_status", result.Status, "probe_error", result.Error)
}
