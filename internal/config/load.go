package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"phonebook/internal/diag"
)

// DefaultPath is the optional config file looked up in the working directory.
const DefaultPath = "config.json"

// Defaults returns the built-in configuration: fixed file names, warn-level JSON logs on stderr.
func Defaults() Config {
	return Config{
		Input:  "phonebook_raw.csv",
		Output: "phonebook.csv",
		Logging: Logging{
			Level:  "warn",
			Format: "json",
		},
		Components: Components{
			Reader:     "fs",
			Splitter:   "csv",
			Phone:      "ru",
			Normalizer: "positional",
			Assembler:  "csv",
			Writer:     "fs",
		},
	}
}

// LoadJSON parses a Config from raw when given, otherwise from the file at path.
// Unknown keys and trailing data are rejected. Errors match diag.ErrConfig, except a
// missing file, which matches os.ErrNotExist so callers can treat the file as optional.
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, err
			}
			return cfg, errors.Wrapf(diag.ErrConfig, "%v", err)
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.Wrap(diag.ErrConfig, "no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(diag.ErrConfig, "%s: %v", sourceName(path, raw), err)
	}
	if dec.More() {
		return Config{}, errors.Wrapf(diag.ErrConfig, "%s: trailing data after config object", sourceName(path, raw))
	}
	return cfg, nil
}

func sourceName(path string, raw []byte) string {
	if len(raw) > 0 || path == "" {
		return "<inline>"
	}
	return path
}

// Merge overlays over onto base. Non-empty scalars and raw options replace; nothing is merged deeply.
func Merge(base, over Config) Config {
	out := base
	if s := strings.TrimSpace(over.Input); s != "" {
		out.Input = s
	}
	if s := strings.TrimSpace(over.Output); s != "" {
		out.Output = s
	}
	if over.Status != nil {
		v := *over.Status
		out.Status = &v
	}

	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(over.Logging.Format); s != "" {
		out.Logging.Format = strings.ToLower(s)
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}
	if over.Logging.MaxBytes != 0 {
		out.Logging.MaxBytes = over.Logging.MaxBytes
	}
	if s := strings.TrimSpace(over.Metrics.Textfile); s != "" {
		out.Metrics.Textfile = s
	}

	// component names: empty does not override
	mergeName(&out.Components.Reader, over.Components.Reader)
	mergeName(&out.Components.Splitter, over.Components.Splitter)
	mergeName(&out.Components.Phone, over.Components.Phone)
	mergeName(&out.Components.Normalizer, over.Components.Normalizer)
	mergeName(&out.Components.Assembler, over.Components.Assembler)
	mergeName(&out.Components.Writer, over.Components.Writer)

	// options: replaced whole
	mergeRaw(&out.Options.Reader, over.Options.Reader)
	mergeRaw(&out.Options.Splitter, over.Options.Splitter)
	mergeRaw(&out.Options.Phone, over.Options.Phone)
	mergeRaw(&out.Options.Normalizer, over.Options.Normalizer)
	mergeRaw(&out.Options.Assembler, over.Options.Assembler)
	mergeRaw(&out.Options.Writer, over.Options.Writer)
	return out
}

func mergeName(dst *string, over string) {
	if s := strings.TrimSpace(over); s != "" {
		*dst = s
	}
}

func mergeRaw(dst *json.RawMessage, over json.RawMessage) {
	if len(over) > 0 {
		*dst = cloneRaw(over)
	}
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
