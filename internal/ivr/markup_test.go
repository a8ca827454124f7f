package ivr

import (
	"strings"
	"testing"

	"github.com/CallForge/DrillLine/internal/models"
)

func mustContain(t *testing.T, doc string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func defFor(t *testing.T, f models.Flow) Definition {
	t.Helper()
	def, ok := NewRegistry().Lookup(f)
	if !ok {
		t.Fatalf("built-in flow %q missing from registry", f)
	}
	return def
}

func TestGreeting(t *testing.T) {
	doc, err := Greeting()
	if err != nil {
		t.Fatalf("Greeting failed: %v", err)
	}
	mustContain(t, doc,
		"<Gather",
		`numDigits="1"`,
		`timeout="6"`,
		`action="/menu"`,
		`method="POST"`,
		"press 1",
		"press 2",
		"We did not receive any input",
		`<Redirect method="POST">/voice</Redirect>`,
	)
}

func TestGatePrompt(t *testing.T) {
	def := defFor(t, models.FlowMCD)
	doc, err := GatePrompt(def)
	if err != nil {
		t.Fatalf("GatePrompt failed: %v", err)
	}
	mustContain(t, doc,
		`action="/mcd/gate"`,
		`timeout="8"`,
		`numDigits="1"`,
		def.GatePhrase,
		"press 9",
		`<Redirect method="POST">/voice</Redirect>`,
	)
}

func TestGatePass_CarriesModeForward(t *testing.T) {
	doc, err := GatePass(defFor(t, models.FlowM1))
	if err != nil {
		t.Fatalf("GatePass failed: %v", err)
	}
	mustContain(t, doc, "/difficulty?mode=m1", "Confirmation received")
}

func TestGateFail_LoopsToSamePrompt(t *testing.T) {
	doc, err := GateFail(defFor(t, models.FlowM1))
	if err != nil {
		t.Fatalf("GateFail failed: %v", err)
	}
	mustContain(t, doc, `<Redirect method="POST">/m1</Redirect>`, "Confirmation failed")
	if strings.Contains(doc, "/mcd") {
		t.Errorf("m1 gate failure must not reference the mcd flow:\n%s", doc)
	}
}

func TestDifficultyPrompt(t *testing.T) {
	doc, err := DifficultyPrompt(defFor(t, models.FlowMCD))
	if err != nil {
		t.Fatalf("DifficultyPrompt failed: %v", err)
	}
	mustContain(t, doc,
		"/scenario?mode=mcd",
		"Press 1 for Standard",
		"Press 2 for Moderate",
		"Press 3 for Edge",
		`<Redirect method="POST">/voice</Redirect>`,
	)
}

func TestScenarioBrief(t *testing.T) {
	doc, err := ScenarioBrief(defFor(t, models.FlowMCD), models.DifficultyModerate)
	if err != nil {
		t.Fatalf("ScenarioBrief failed: %v", err)
	}
	mustContain(t, doc,
		"MCD scenario loaded",
		"Difficulty: Moderate",
		"training exercise",
		"<Pause",
		"<Hangup",
	)
	if strings.Contains(doc, "<Redirect") {
		t.Errorf("scenario brief must be terminal, found redirect:\n%s", doc)
	}
}

func TestScenarioInvalid_IsTerminal(t *testing.T) {
	doc, err := ScenarioInvalid()
	if err != nil {
		t.Fatalf("ScenarioInvalid failed: %v", err)
	}
	mustContain(t, doc, "Invalid difficulty selection", "<Hangup")
	if strings.Contains(doc, "<Redirect") || strings.Contains(doc, "<Gather") {
		t.Errorf("invalid scenario selection must hang up with no loop-back:\n%s", doc)
	}
}

func TestFailureDocument(t *testing.T) {
	mustContain(t, FailureDocument, "<Response>", "<Say", "<Hangup/>", "application error")
}
