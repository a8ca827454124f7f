package ivr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CallForge/DrillLine/internal/models"
)

func TestNewRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	m1, ok := r.Lookup(models.FlowM1)
	if !ok {
		t.Fatal("m1 flow missing from default registry")
	}
	if m1.GateDigit != "8" {
		t.Errorf("expected m1 gate digit 8, got %q", m1.GateDigit)
	}
	if m1.PromptPath() != "/m1" || m1.GatePath() != "/m1/gate" {
		t.Errorf("unexpected m1 paths: %q, %q", m1.PromptPath(), m1.GatePath())
	}

	mcd, ok := r.Lookup(models.FlowMCD)
	if !ok {
		t.Fatal("mcd flow missing from default registry")
	}
	if mcd.GateDigit != "9" {
		t.Errorf("expected mcd gate digit 9, got %q", mcd.GateDigit)
	}
	if mcd.SpokenName != "MCD" {
		t.Errorf("expected mcd spoken name MCD, got %q", mcd.SpokenName)
	}
}

func TestRegistryResolve_DefaultsToMCD(t *testing.T) {
	r := NewRegistry()
	if def := r.Resolve(""); def.Name != models.FlowMCD {
		t.Errorf("expected missing mode to resolve to mcd, got %q", def.Name)
	}
	if def := r.Resolve("nope"); def.Name != models.FlowMCD {
		t.Errorf("expected unknown mode to resolve to mcd, got %q", def.Name)
	}
	if def := r.Resolve("m1"); def.Name != models.FlowM1 {
		t.Errorf("expected m1 mode to resolve to m1, got %q", def.Name)
	}
}

func writeFlowConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flows.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write flow config: %v", err)
	}
	return path
}

func TestNewRegistryFromFile_OverridesBuiltin(t *testing.T) {
	path := writeFlowConfig(t, `
flows:
  - name: mcd
    spoken_name: MCD
    gate_digit: "7"
    gate_phrase: ready for code delta
`)
	r, err := NewRegistryFromFile(path)
	if err != nil {
		t.Fatalf("NewRegistryFromFile failed: %v", err)
	}

	mcd, _ := r.Lookup(models.FlowMCD)
	if mcd.GateDigit != "7" {
		t.Errorf("expected overridden gate digit 7, got %q", mcd.GateDigit)
	}
	// Untouched flows keep their built-in definition.
	m1, ok := r.Lookup(models.FlowM1)
	if !ok || m1.GateDigit != "8" {
		t.Errorf("expected built-in m1 definition to survive, got %+v (ok=%v)", m1, ok)
	}
}

func TestNewRegistryFromFile_RejectsBadGateDigit(t *testing.T) {
	path := writeFlowConfig(t, `
flows:
  - name: m1
    spoken_name: M1
    gate_digit: "88"
    gate_phrase: ready
`)
	_, err := NewRegistryFromFile(path)
	if !errors.Is(err, models.ErrGateDigitLength) {
		t.Fatalf("expected ErrGateDigitLength, got %v", err)
	}
}

func TestNewRegistryFromFile_RejectsUnknownFlow(t *testing.T) {
	path := writeFlowConfig(t, `
flows:
  - name: m2
    spoken_name: M2
    gate_digit: "5"
    gate_phrase: ready
`)
	_, err := NewRegistryFromFile(path)
	if !errors.Is(err, models.ErrUnknownFlow) {
		t.Fatalf("expected ErrUnknownFlow, got %v", err)
	}
}

func TestNewRegistryFromFile_MissingFile(t *testing.T) {
	if _, err := NewRegistryFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing flow config file")
	}
}
