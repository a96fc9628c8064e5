package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonebook/internal/diag"
	"phonebook/internal/pipeline"
	"phonebook/pkg/contract"
)

const header = "lastname,firstname,surname,organization,position,phone,email"

// inTempDir switches to a fresh working directory and captures stderr.
func inTempDir(t *testing.T) (string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	var buf bytes.Buffer
	old := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = old })
	return dir, &buf
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRunSuccess(t *testing.T) {
	dir, errOut := inTempDir(t)
	writeFile(t, filepath.Join(dir, "phonebook_raw.csv"), header+"\n"+
		"Смирнов,Иван,,,,8(999)123-45-67,\n"+
		"Смирнов,Иван,,,,,ivan@example.ru\n"+
		"Абрамов Олег,,,,,,\n")

	require.Equal(t, exitOK, run())

	b, err := os.ReadFile(filepath.Join(dir, "phonebook.csv"))
	require.NoError(t, err)
	assert.Equal(t, header+"\n"+
		"Абрамов,Олег,,,,,\n"+
		"Смирнов,Иван,,,,+7(999)123-45-67,ivan@example.ru\n", string(b))

	out := errOut.String()
	assert.Contains(t, out, "[run] phonebook_raw.csv -> phonebook.csv")
	assert.Contains(t, out, "[ok] phonebook.csv | rows 3 | contacts 2 | merged 1 |")
}

// TestRunMissingInput: exit 1, diagnostic names the path, an existing output is left as is.
func TestRunMissingInput(t *testing.T) {
	dir, errOut := inTempDir(t)
	out := filepath.Join(dir, "phonebook.csv")
	writeFile(t, out, "previous\n")

	assert.Equal(t, exitFailed, run())
	assert.Contains(t, errOut.String(), "Ошибка: файл 'phonebook_raw.csv' не найден.")
	assert.Contains(t, errOut.String(), "[fail] phonebook.csv")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(b))
}

func TestRunMissingInputNoOutput(t *testing.T) {
	dir, _ := inTempDir(t)
	assert.Equal(t, exitFailed, run())
	_, err := os.Stat(filepath.Join(dir, "phonebook.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunReadError(t *testing.T) {
	dir, errOut := inTempDir(t)
	writeFile(t, filepath.Join(dir, "phonebook_raw.csv"), header+"\n\xff\xfe\n")
	assert.Equal(t, exitFailed, run())
	assert.Contains(t, errOut.String(), "Ошибка при чтении файла:")
	_, err := os.Stat(filepath.Join(dir, "phonebook.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunWriteError(t *testing.T) {
	dir, errOut := inTempDir(t)
	writeFile(t, filepath.Join(dir, "phonebook_raw.csv"), header+"\n")
	// the output path is a directory
	require.NoError(t, os.Mkdir(filepath.Join(dir, "phonebook.csv"), 0o755))
	assert.Equal(t, exitFailed, run())
	assert.Contains(t, errOut.String(), "Ошибка при записи файла:")
}

func TestRunConfigFile(t *testing.T) {
	dir, errOut := inTempDir(t)
	writeFile(t, filepath.Join(dir, "data", "raw.csv"), header+"\r\nПетров,Пётр,,,,+7 495 913 04 78,\r\n")
	writeFile(t, filepath.Join(dir, "config.json"), `{
		"input": "data/raw.csv",
		"output": "out/clean.csv",
		"status": false,
		"logging": {"level": "debug", "dir": "logs"},
		"metrics": {"textfile": "metrics/phonebook.prom"},
		"options": {"writer": {"atomic": false}}
	}`)

	require.Equal(t, exitOK, run())

	b, err := os.ReadFile(filepath.Join(dir, "out", "clean.csv"))
	require.NoError(t, err)
	assert.Equal(t, header+"\r\nПетров,Пётр,,,,+7(495)913-04-78,\r\n", string(b))
	assert.Empty(t, errOut.String())

	logs, err := os.ReadFile(filepath.Join(dir, "logs", "phonebook-current.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logs), `"msg":"effective"`)

	prom, err := os.ReadFile(filepath.Join(dir, "metrics", "phonebook.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "phonebook_op_total")
}

func TestRunConfigErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":     `{"input":`,
		"unknown key":   `{"inputs":["a.csv"]}`,
		"same paths":    `{"input":"a.csv","output":"./a.csv"}`,
		"bad level":     `{"logging":{"level":"loud"}}`,
		"bad component": `{"components":{"writer":"s3"}}`,
		"bad options":   `{"options":{"splitter":{"comma":";;"}}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir, errOut := inTempDir(t)
			writeFile(t, filepath.Join(dir, "config.json"), body)
			called := false
			orig := pipelineRun
			pipelineRun = func(context.Context, pipeline.Components, pipeline.Settings, *diag.Logger) (pipeline.Result, error) {
				called = true
				return pipeline.Result{}, nil
			}
			defer func() { pipelineRun = orig }()

			assert.Equal(t, exitConfig, run())
			assert.False(t, called)
			assert.True(t, strings.HasPrefix(errOut.String(), "Ошибка конфигурации:"), errOut.String())
		})
	}
}

func TestRunPipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", contract.NewPathError(contract.ErrNotFound, "x.csv", fs.ErrNotExist), "Ошибка: файл 'x.csv' не найден. file does not exist"},
		{"read", contract.NewPathError(contract.ErrRead, "x.csv", fs.ErrPermission), "Ошибка при чтении файла:"},
		{"write", contract.NewPathError(contract.ErrWrite, "y.csv", fs.ErrPermission), "Ошибка при записи файла:"},
		{"other", contract.ErrInvariantViolation, "Ошибка: invariant"},
		{"cancel", context.Canceled, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut := inTempDir(t)
			orig := pipelineRun
			pipelineRun = func(context.Context, pipeline.Components, pipeline.Settings, *diag.Logger) (pipeline.Result, error) {
				return pipeline.Result{}, tt.err
			}
			defer func() { pipelineRun = orig }()

			assert.Equal(t, exitFailed, run())
			if tt.want == "" {
				assert.NotContains(t, errOut.String(), "Ошибка")
				return
			}
			assert.Contains(t, errOut.String(), tt.want)
		})
	}
}
