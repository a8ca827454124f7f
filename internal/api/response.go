// Package api provides HTTP response utilities for DrillLine.
package api

import (
	"log/slog"
	"net/http"

	"github.com/CallForge/DrillLine/internal/ivr"
)

// twimlContentType is the content type of every call-flow response.
const twimlContentType = "application/xml"

// writeTwiML writes a voice-markup document with status 200. When markup
// generation failed, the caller hears the fixed apology document instead of
// a protocol error: the provider expects a well-formed response on every
// callback regardless of outcome.
func (s *Server) writeTwiML(w http.ResponseWriter, doc string, err error) {
	if err != nil {
		slog.Error("Server.writeTwiML: markup generation failed", "error", err)
		s.alertFailure("voice markup generation failed", err, nil)
		doc = ivr.FailureDocument
	}

	w.Header().Set("Content-Type", twimlContentType)
	w.WriteHeader(http.StatusOK)
	if _, writeErr := w.Write([]byte(doc)); writeErr != nil {
		slog.Error("Server.writeTwiML: failed to write response", "error", writeErr)
	}
}
