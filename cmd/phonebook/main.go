package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	cfgpkg "phonebook/internal/config"
	"phonebook/internal/diag"
	"phonebook/internal/pipeline"
	"phonebook/pkg/contract"
)

var (
	pipelineRun           = pipeline.Run
	stderr      io.Writer = os.Stderr
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

// phonebook reads phonebook_raw.csv from the working directory and writes phonebook.csv next to it.
// There are no flags; an optional ./config.json overrides paths, logging and component options.
func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()
	corrID := uuid.NewString()
	// bootstrap logger until the config is known
	logger := diag.NewLogger(corrID, diag.LogOptions{Level: "warn"})
	defer func() { logger.Sync() }()

	cfg := cfgpkg.Defaults()
	over, err := cfgpkg.LoadJSON(cfgpkg.DefaultPath, nil)
	switch {
	case err == nil:
		cfg = cfgpkg.Merge(cfg, over)
	case errors.Is(err, os.ErrNotExist):
	default:
		return configFail(logger, err, start)
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		return configFail(logger, err, start)
	}

	logger.Sync()
	logger = diag.NewLogger(corrID, diag.LogOptions{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Dir:      cfg.Logging.Dir,
		MaxBytes: cfg.Logging.MaxBytes,
	})

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		return configFail(logger, err, start)
	}

	term := diag.NewTerminal(stderr, cfg.StatusEnabled())
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(set.Input, set.Output)

	logger.DebugStart("config", "effective", map[string]string{
		"input":      set.Input,
		"output":     set.Output,
		"reader":     cfg.Components.Reader,
		"splitter":   cfg.Components.Splitter,
		"phone":      cfg.Components.Phone,
		"normalizer": cfg.Components.Normalizer,
		"assembler":  cfg.Components.Assembler,
		"writer":     cfg.Components.Writer,
		"status":     strconv.FormatBool(cfg.StatusEnabled()),
	})

	t := logger.Start("pipeline", "run")
	res, err := pipelineRun(context.Background(), comp, set, logger)
	if err != nil {
		code := diag.Classify(err)
		logger.Error("pipeline", string(code), "first error", &start)
		logger.Debugf("first error: %+v", err)
		diag.IncOp("pipeline", "error", "error")
		if code != diag.CodeUnknown {
			diag.IncError("pipeline", string(code))
		}
		report(err, set)
		term.RunFinish(false, 0, 0, 0, time.Since(start))
		exportMetrics(logger, cfg.Metrics.Textfile)
		return exitFailed
	}
	t.Finish("run", int64(res.Contacts))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	term.RunFinish(true, res.Rows, res.Contacts, res.Merged, time.Since(start))
	exportMetrics(logger, cfg.Metrics.Textfile)
	return exitOK
}

// report prints the user-facing diagnostic for a failed run.
func report(err error, set pipeline.Settings) {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
	case errors.Is(err, contract.ErrNotFound):
		path, cause := set.Input, error(err)
		var pe *contract.PathError
		if errors.As(err, &pe) {
			path = pe.Path
			if pe.Err != nil {
				cause = pe.Err
			}
		}
		fprintf(stderr, "Ошибка: файл '%s' не найден. %v\n", path, cause)
	case errors.Is(err, contract.ErrWrite):
		fprintf(stderr, "Ошибка при записи файла: %v\n", err)
	case errors.Is(err, contract.ErrRead):
		fprintf(stderr, "Ошибка при чтении файла: %v\n", err)
	default:
		fprintf(stderr, "Ошибка: %v\n", err)
	}
}

func configFail(logger *diag.Logger, err error, start time.Time) int {
	fprintf(stderr, "Ошибка конфигурации: %v\n", err)
	logger.Error("config", string(diag.CodeConfig), "invalid config", &start)
	diag.IncError("config", string(diag.CodeConfig))
	return exitConfig
}

func exportMetrics(logger *diag.Logger, path string) {
	if path == "" {
		return
	}
	if err := diag.WriteTextfile(path); err != nil {
		logger.Warn("metrics", "textfile export failed", map[string]string{"path": path, "err": err.Error()})
	}
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }
