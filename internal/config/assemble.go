package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"phonebook/internal/diag"
	"phonebook/internal/pipeline"
	"phonebook/pkg/registry"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the static bounds of cfg. Errors match diag.ErrConfig.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return errors.Wrap(diag.ErrConfig, describe(ve))
		}
		return errors.Wrapf(diag.ErrConfig, "%v", err)
	}
	if samePath(cfg.Input, cfg.Output) {
		return errors.Wrapf(diag.ErrConfig, "output %q must differ from input", cfg.Output)
	}

	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return errors.Wrapf(diag.ErrConfig, "reader %q not registered", name)
	}
	if name := effName(cfg.Components.Splitter, d.Splitter); registry.Splitter[name] == nil {
		return errors.Wrapf(diag.ErrConfig, "splitter %q not registered", name)
	}
	if name := effName(cfg.Components.Phone, d.Phone); registry.PhoneFormatter[name] == nil {
		return errors.Wrapf(diag.ErrConfig, "phone %q not registered", name)
	}
	if name := effName(cfg.Components.Normalizer, d.Normalizer); registry.Normalizer[name] == nil {
		return errors.Wrapf(diag.ErrConfig, "normalizer %q not registered", name)
	}
	if name := effName(cfg.Components.Assembler, d.Assembler); registry.Assembler[name] == nil {
		return errors.Wrapf(diag.ErrConfig, "assembler %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return errors.Wrapf(diag.ErrConfig, "writer %q not registered", name)
	}
	return nil
}

// describe renders validator failures as "field rule" pairs, root struct name dropped.
func describe(ve validator.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 && i+1 < len(field) {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value())))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func samePath(a, b string) bool {
	ca, cb := filepath.Clean(strings.TrimSpace(a)), filepath.Clean(strings.TrimSpace(b))
	if ca == cb {
		return true
	}
	aa, errA := filepath.Abs(ca)
	ab, errB := filepath.Abs(cb)
	return errA == nil && errB == nil && aa == ab
}

// Assemble validates cfg and builds the pipeline components and settings.
// Options are decoded strictly by the factories; a bad option is a config error.
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	d := Defaults().Components
	fail := func(stage string, err error) (pipeline.Components, pipeline.Settings, error) {
		return pipeline.Components{}, pipeline.Settings{}, errors.Wrapf(diag.ErrConfig, "options.%s: %v", stage, err)
	}

	r, err := registry.Reader[effName(cfg.Components.Reader, d.Reader)](cfg.Options.Reader)
	if err != nil {
		return fail("reader", err)
	}
	s, err := registry.Splitter[effName(cfg.Components.Splitter, d.Splitter)](cfg.Options.Splitter)
	if err != nil {
		return fail("splitter", err)
	}
	ph, err := registry.PhoneFormatter[effName(cfg.Components.Phone, d.Phone)](cfg.Options.Phone)
	if err != nil {
		return fail("phone", err)
	}
	n, err := registry.Normalizer[effName(cfg.Components.Normalizer, d.Normalizer)](cfg.Options.Normalizer, ph)
	if err != nil {
		return fail("normalizer", err)
	}
	asm, err := registry.Assembler[effName(cfg.Components.Assembler, d.Assembler)](cfg.Options.Assembler)
	if err != nil {
		return fail("assembler", err)
	}
	w, err := registry.Writer[effName(cfg.Components.Writer, d.Writer)](cfg.Options.Writer)
	if err != nil {
		return fail("writer", err)
	}

	comp := pipeline.Components{
		Reader:     r,
		Splitter:   s,
		Normalizer: n,
		Phone:      ph,
		Assembler:  asm,
		Writer:     w,
	}
	set := pipeline.Settings{
		Input:  strings.TrimSpace(cfg.Input),
		Output: strings.TrimSpace(cfg.Output),
	}
	return comp, set, nil
}

func effName(got, def string) string {
	if s := strings.TrimSpace(got); s != "" {
		return s
	}
	return def
}
