package config

import (
	"encoding/json"
)

// Config is the read-only run configuration, parsed once.
// JSON keys are snake_case; unknown keys fail the parse.
type Config struct {
	Input  string `json:"input" validate:"required"`
	Output string `json:"output" validate:"required"`
	// Status: print the [run]/[ok] summary lines on stderr. nil means default (true).
	Status  *bool   `json:"status,omitempty"`
	Logging Logging `json:"logging"`
	Metrics Metrics `json:"metrics"`

	// Component names as registered in pkg/registry; empty means default.
	Components Components `json:"components"`

	// Per-component options, handed to the factories verbatim.
	Options Options `json:"options"`
}

// Logging selects level, encoding and sink. Empty Dir logs to stderr.
type Logging struct {
	Level    string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format   string `json:"format" validate:"omitempty,oneof=json console"`
	Dir      string `json:"dir"`
	MaxBytes int64  `json:"max_bytes" validate:"gte=0"`
}

// Metrics: when Textfile is set the counters are written there in Prometheus text format after the run.
type Metrics struct {
	Textfile string `json:"textfile"`
}

// Components names the implementation of each stage.
type Components struct {
	Reader     string `json:"reader"`
	Splitter   string `json:"splitter"`
	Phone      string `json:"phone"`
	Normalizer string `json:"normalizer"`
	Assembler  string `json:"assembler"`
	Writer     string `json:"writer"`
}

// Options holds the raw JSON options of each stage.
type Options struct {
	Reader     json.RawMessage `json:"reader"`
	Splitter   json.RawMessage `json:"splitter"`
	Phone      json.RawMessage `json:"phone"`
	Normalizer json.RawMessage `json:"normalizer"`
	Assembler  json.RawMessage `json:"assembler"`
	Writer     json.RawMessage `json:"writer"`
}

// StatusEnabled resolves Status against its default.
func (c Config) StatusEnabled() bool {
	return c.Status == nil || *c.Status
}
