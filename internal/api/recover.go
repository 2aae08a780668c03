package api

import (
	"fmt"
	"net/http"

	domainerrors "github.com/nexogroup/nexo-server/internal/errors"
	"github.com/nexogroup/nexo-server/internal/http/response"
)

// recoverer turns a handler panic into a logged INTERNAL envelope.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel passed to panic as-is
				panic(rec)
			}
			response.HandleError(w, fmt.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec), s.logger)
		}()

		next.ServeHTTP(w, r)
	})
}

// notFound answers routes the router does not know.
func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusNotFound, domainerrors.CodeNotFound, "route not found", s.logger)
}
