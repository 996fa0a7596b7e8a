package httpapi

import (
	"net/http"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// readyz verifies storage connectivity for backends that support it.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if rc, ok := s.store.(readyChecker); ok {
		if err := rc.Ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
