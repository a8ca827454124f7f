// Package api provides HTTP handlers for the DrillLine webhook endpoints.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/CallForge/DrillLine/internal/ivr"
	"github.com/CallForge/DrillLine/internal/models"
)

// callInfo extracts the provider-assigned call identifiers from the form
// body. A malformed or absent body yields empty values, never an error: the
// identifiers are for log correlation only.
func callInfo(r *http.Request) models.CallInfo {
	return models.CallInfo{
		SID:  r.FormValue("CallSid"),
		From: r.FormValue("From"),
		To:   r.FormValue("To"),
	}
}

// requirePost rejects non-POST requests. The provider always POSTs to the
// call-flow endpoints; anything else is a misconfigured client, not a caller.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("method not allowed on call-flow endpoint", "method", r.Method, "path", r.URL.Path)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// healthHandler is the liveness probe. ServeMux routes every unregistered
// path here, so only exact "/" answers OK.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "OK")
}

func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.version)
}

// voiceHandler is the call entry point: it greets the caller and gathers the
// main menu digit.
func (s *Server) voiceHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	call := callInfo(r)
	slog.Debug("Server.voiceHandler: call started", "sid", call.SID)
	s.events.Log(models.EventCallStart, call, nil)

	doc, err := ivr.Greeting()
	s.writeTwiML(w, doc, err)
}

// menuHandler routes the main menu digit to a flow's gate prompt. Any
// unrecognized selection loops back to call entry.
func (s *Server) menuHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	call := callInfo(r)
	digits := r.FormValue("Digits")
	s.events.Log(models.EventMenu, call, map[string]any{"digits": digits})

	flow, ok := models.FlowFromMenuDigit(digits)
	if !ok {
		slog.Debug("Server.menuHandler: invalid selection, returning to entry", "sid", call.SID, "digits", digits)
		doc, err := ivr.MenuInvalid()
		s.writeTwiML(w, doc, err)
		return
	}

	def, ok := s.flows.Lookup(flow)
	if !ok {
		// Registry always carries the built-in flows; treat a miss like an
		// invalid selection rather than erroring at the caller.
		slog.Warn("Server.menuHandler: flow missing from registry", "flow", flow)
		doc, err := ivr.MenuInvalid()
		s.writeTwiML(w, doc, err)
		return
	}

	slog.Debug("Server.menuHandler: routed", "sid", call.SID, "flow", def.Name)
	doc, err := ivr.MenuAck(def)
	s.writeTwiML(w, doc, err)
}

// gatePromptHandler returns the handler for a flow's gate prompt.
func (s *Server) gatePromptHandler(def ivr.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		call := callInfo(r)
		s.events.Log(models.GatePromptEvent(def.Name), call, nil)

		doc, err := ivr.GatePrompt(def)
		s.writeTwiML(w, doc, err)
	}
}

// gateEvalHandler returns the handler for a flow's gate evaluator. The gate
// passes only on an exact match of the flow's confirmation digit; every
// other input loops back to the same flow's prompt.
func (s *Server) gateEvalHandler(def ivr.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		call := callInfo(r)
		digits := r.FormValue("Digits")
		pass := digits == def.GateDigit
		s.events.Log(models.GateEvent(def.Name), call, map[string]any{"digits": digits, "pass": pass})

		if !pass {
			slog.Debug("Server.gateEvalHandler: gate failed", "sid", call.SID, "flow", def.Name, "digits", digits)
			doc, err := ivr.GateFail(def)
			s.writeTwiML(w, doc, err)
			return
		}

		slog.Debug("Server.gateEvalHandler: gate passed", "sid", call.SID, "flow", def.Name)
		doc, err := ivr.GatePass(def)
		s.writeTwiML(w, doc, err)
	}
}

// difficultyHandler offers the difficulty menu for the flow carried on the
// mode query parameter, defaulting silently to the MCD flow.
func (s *Server) difficultyHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	call := callInfo(r)
	def := s.flows.Resolve(r.URL.Query().Get("mode"))
	s.events.Log(models.EventDifficultyPrompt, call, map[string]any{"mode": string(def.Name)})

	doc, err := ivr.DifficultyPrompt(def)
	s.writeTwiML(w, doc, err)
}

// scenarioHandler renders the scenario brief for the selected flow and
// difficulty and ends the session. An out-of-range difficulty digit is the
// one terminal path with no loop-back.
func (s *Server) scenarioHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	call := callInfo(r)
	def := s.flows.Resolve(r.URL.Query().Get("mode"))
	digits := r.FormValue("Digits")

	difficulty, ok := models.DifficultyFromDigit(digits)
	fields := map[string]any{"mode": string(def.Name), "digits": digits}
	if ok {
		fields["difficulty"] = string(difficulty)
	} else {
		fields["difficulty"] = nil
	}
	s.events.Log(models.EventScenarioSelect, call, fields)

	if !ok {
		slog.Debug("Server.scenarioHandler: invalid difficulty, ending call", "sid", call.SID, "digits", digits)
		doc, err := ivr.ScenarioInvalid()
		s.writeTwiML(w, doc, err)
		return
	}

	slog.Debug("Server.scenarioHandler: scenario selected", "sid", call.SID, "flow", def.Name, "difficulty", difficulty)
	doc, err := ivr.ScenarioBrief(def, difficulty)
	s.writeTwiML(w, doc, err)
}
