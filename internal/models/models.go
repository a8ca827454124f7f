// Package models defines the core data structures for DrillLine.
//
// It includes the flow and difficulty enumerations, transition records, and
// alert types, which are shared across modules.
package models

import (
	"errors"
	"strings"
)

// Flow identifies one of the named training drills a caller can enter.
type Flow string

const (
	// FlowM1 is the M1 drill flow.
	FlowM1 Flow = "m1"
	// FlowMCD is the MCD drill flow.
	FlowMCD Flow = "mcd"
)

// DefaultFlow is used when a callback arrives without a mode parameter.
const DefaultFlow = FlowMCD

// Difficulty is the caller-selected intensity of a training scenario.
type Difficulty string

const (
	DifficultyStandard Difficulty = "Standard"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyEdge     Difficulty = "Edge"
)

// Error variables for better error handling and testability
var (
	ErrUnknownFlow     = errors.New("unknown flow")
	ErrEmptyGateDigit  = errors.New("gate digit cannot be empty")
	ErrGateDigitLength = errors.New("gate digit must be a single character")
	ErrEmptySpokenName = errors.New("flow spoken name cannot be empty")
	ErrMissingBuiltins = errors.New("flow config must define both m1 and mcd")
)

// IsValidFlow checks if the given flow name is supported.
func IsValidFlow(f Flow) bool {
	switch f {
	case FlowM1, FlowMCD:
		return true
	default:
		return false
	}
}

// FlowFromMode resolves a mode query parameter to a flow, falling back to
// DefaultFlow when the parameter is missing or unrecognized. The fallback is
// silent: provider retries may arrive with a stripped query string and must
// still produce a playable response.
func FlowFromMode(mode string) Flow {
	f := Flow(mode)
	if IsValidFlow(f) {
		return f
	}
	return DefaultFlow
}

// FlowFromMenuDigit maps a menu DTMF entry to a flow. Anything other than an
// exact "1" or "2" (empty, multi-digit, non-numeric) is an invalid selection.
func FlowFromMenuDigit(digits string) (Flow, bool) {
	switch digits {
	case "1":
		return FlowM1, true
	case "2":
		return FlowMCD, true
	default:
		return "", false
	}
}

// DifficultyFromDigit maps a difficulty DTMF entry to a difficulty. Anything
// other than an exact "1", "2", or "3" is invalid.
func DifficultyFromDigit(digits string) (Difficulty, bool) {
	switch digits {
	case "1":
		return DifficultyStandard, true
	case "2":
		return DifficultyModerate, true
	case "3":
		return DifficultyEdge, true
	default:
		return "", false
	}
}

// Event name constants for transition records.
const (
	EventCallStart        = "CALL_START"
	EventMenu             = "MENU"
	EventDifficultyPrompt = "DIFFICULTY_PROMPT"
	EventScenarioSelect   = "SCENARIO_SELECT"
)

// GatePromptEvent returns the transition event name for a flow's gate prompt,
// e.g. "MCD_GATE_PROMPT".
func GatePromptEvent(f Flow) string {
	return strings.ToUpper(string(f)) + "_GATE_PROMPT"
}

// GateEvent returns the transition event name for a flow's gate evaluation,
// e.g. "M1_GATE".
func GateEvent(f Flow) string {
	return strings.ToUpper(string(f)) + "_GATE"
}

// CallInfo carries the provider-assigned identifiers present on every inbound
// webhook. The SID is used for log correlation only, never for state lookup.
type CallInfo struct {
	SID  string `json:"sid"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Transition is one audit record of a call-flow state transition. Fields holds
// the step-specific values (digits pressed, pass/fail, selected mode).
type Transition struct {
	Event  string
	Call   CallInfo
	Fields map[string]any
	Time   int64
}
