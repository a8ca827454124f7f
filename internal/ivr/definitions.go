// Package ivr implements the DrillLine call flow: the flow definitions a
// caller can select and the voice-markup documents returned at each step.
//
// The flow is a stateless webhook protocol. Every document either gathers one
// DTMF digit and names the callback URL that will evaluate it, or redirects
// to an earlier step. All context a step needs travels on the callback URL
// itself; nothing is held between requests.
package ivr

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/CallForge/DrillLine/internal/models"
	"gopkg.in/yaml.v3"
)

// Definition describes one selectable drill flow.
type Definition struct {
	// Name is the flow identifier carried through callback URLs.
	Name models.Flow `yaml:"name"`
	// SpokenName is how the flow is pronounced in voice prompts.
	SpokenName string `yaml:"spoken_name"`
	// GateDigit is the single confirmation digit the gate requires.
	GateDigit string `yaml:"gate_digit"`
	// GatePhrase is the phrase the caller is asked to speak at the gate.
	// Only the digit is validated; the phrase is instructional until speech
	// recognition is commissioned.
	GatePhrase string `yaml:"gate_phrase"`
}

// PromptPath returns the webhook path of the flow's gate prompt, e.g. "/mcd".
func (d Definition) PromptPath() string {
	return "/" + string(d.Name)
}

// GatePath returns the webhook path of the flow's gate evaluator, e.g. "/mcd/gate".
func (d Definition) GatePath() string {
	return d.PromptPath() + "/gate"
}

// Validate checks the definition is usable as a gate.
func (d Definition) Validate() error {
	if !models.IsValidFlow(d.Name) {
		return fmt.Errorf("%w: %q", models.ErrUnknownFlow, d.Name)
	}
	if d.SpokenName == "" {
		return models.ErrEmptySpokenName
	}
	if d.GateDigit == "" {
		return models.ErrEmptyGateDigit
	}
	if len(d.GateDigit) != 1 {
		return models.ErrGateDigitLength
	}
	return nil
}

// defaultDefinitions are the built-in drill flows.
func defaultDefinitions() map[models.Flow]Definition {
	return map[models.Flow]Definition{
		models.FlowM1: {
			Name:       models.FlowM1,
			SpokenName: "M1",
			GateDigit:  "8",
			GatePhrase: "ready for mission one",
		},
		models.FlowMCD: {
			Name:       models.FlowMCD,
			SpokenName: "MCD",
			GateDigit:  "9",
			GatePhrase: "ready for code delta",
		},
	}
}

// Registry resolves flow names to their definitions. It is built once at
// startup and read-only afterwards, so handlers may share it freely.
type Registry struct {
	defs map[models.Flow]Definition
}

// NewRegistry returns a registry holding the built-in flow definitions.
func NewRegistry() *Registry {
	return &Registry{defs: defaultDefinitions()}
}

// NewRegistryFromFile loads flow definitions from a YAML file, overlaying the
// built-ins. The file must keep both built-in flows defined and each gate
// digit a single character.
func NewRegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow config: %w", err)
	}
	var cfg struct {
		Flows []Definition `yaml:"flows"`
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flow config: %w", err)
	}

	defs := defaultDefinitions()
	for _, d := range cfg.Flows {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("flow config entry %q invalid: %w", d.Name, err)
		}
		defs[d.Name] = d
	}
	for _, f := range []models.Flow{models.FlowM1, models.FlowMCD} {
		if _, ok := defs[f]; !ok {
			return nil, models.ErrMissingBuiltins
		}
	}

	slog.Debug("Registry loaded flow definitions from file", "path", path, "flows", len(defs))
	return &Registry{defs: defs}, nil
}

// Lookup returns the definition for a flow.
func (r *Registry) Lookup(f models.Flow) (Definition, bool) {
	d, ok := r.defs[f]
	return d, ok
}

// Resolve returns the definition for a mode parameter, applying the default
// flow when the mode is missing or unrecognized.
func (r *Registry) Resolve(mode string) Definition {
	return r.defs[models.FlowFromMode(mode)]
}

// All returns every registered definition.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}
