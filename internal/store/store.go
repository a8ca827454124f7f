// Package store provides storage backends for the DrillLine event journal.
//
// The journal is an append-only audit of call-flow transition records. It
// holds no call state: the call flow stays fully stateless and runs the same
// whether or not a journal is configured.
package store

import "strings"

// Opts holds configuration options for journal backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for journal backends.
type Option func(*Opts)

// WithDSN sets the database DSN.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL-style DSNs and "sqlite"
// for anything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
