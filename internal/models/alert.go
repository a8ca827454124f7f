// Package models defines alert structures shared between the server and the
// notification fan-out.
package models

// AlertKind classifies an operational alert.
type AlertKind string

const (
	// AlertKindError reports a server-side failure.
	AlertKindError AlertKind = "error"
	// AlertKindOps reports an operational event (startup, shutdown).
	AlertKindOps AlertKind = "ops"
)

// Alert is an operational notification destined for the configured channels.
// Details carries arbitrary structured context and is rendered per-channel.
type Alert struct {
	Kind    AlertKind      `json:"kind"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DeliveryOutcome is the per-channel result of one alert fan-out. The fan-out
// never returns an error to its caller; failures surface only here and in the
// local log.
type DeliveryOutcome struct {
	Channel string
	Err     error
}

// Failed reports whether the channel delivery failed.
func (o DeliveryOutcome) Failed() bool {
	return o.Err != nil
}
