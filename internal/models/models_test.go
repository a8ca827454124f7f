package models

import "testing"

func TestFlowFromMenuDigit(t *testing.T) {
	cases := []struct {
		digits string
		flow   Flow
		ok     bool
	}{
		{"1", FlowM1, true},
		{"2", FlowMCD, true},
		{"", "", false},
		{"3", "", false},
		{"9", "", false},
		{"12", "", false},
		{"one", "", false},
		{"*", "", false},
	}
	for _, c := range cases {
		flow, ok := FlowFromMenuDigit(c.digits)
		if ok != c.ok || flow != c.flow {
			t.Errorf("FlowFromMenuDigit(%q) = (%q, %v), want (%q, %v)", c.digits, flow, ok, c.flow, c.ok)
		}
	}
}

func TestDifficultyFromDigit(t *testing.T) {
	cases := []struct {
		digits     string
		difficulty Difficulty
		ok         bool
	}{
		{"1", DifficultyStandard, true},
		{"2", DifficultyModerate, true},
		{"3", DifficultyEdge, true},
		{"", "", false},
		{"4", "", false},
		{"0", "", false},
		{"11", "", false},
		{"x", "", false},
	}
	for _, c := range cases {
		d, ok := DifficultyFromDigit(c.digits)
		if ok != c.ok || d != c.difficulty {
			t.Errorf("DifficultyFromDigit(%q) = (%q, %v), want (%q, %v)", c.digits, d, ok, c.difficulty, c.ok)
		}
	}
}

func TestFlowFromMode_DefaultsToMCD(t *testing.T) {
	if got := FlowFromMode(""); got != FlowMCD {
		t.Errorf("expected missing mode to default to mcd, got %q", got)
	}
	if got := FlowFromMode("bogus"); got != FlowMCD {
		t.Errorf("expected unknown mode to default to mcd, got %q", got)
	}
	if got := FlowFromMode("m1"); got != FlowM1 {
		t.Errorf("expected m1 mode to resolve to m1, got %q", got)
	}
}

func TestGateEventNames(t *testing.T) {
	if got := GateEvent(FlowM1); got != "M1_GATE" {
		t.Errorf("expected M1_GATE, got %q", got)
	}
	if got := GatePromptEvent(FlowMCD); got != "MCD_GATE_PROMPT" {
		t.Errorf("expected MCD_GATE_PROMPT, got %q", got)
	}
}
