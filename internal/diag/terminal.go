package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Terminal prints human status lines (not logs) to the given writer, usually stderr.
// Safe for concurrent use; after the first write failure it turns into a no-op.
type Terminal struct {
	w       io.Writer
	enabled bool

	input    string
	output   string
	runStart time.Time

	mu sync.Mutex
}

// Process-wide terminal, set by cmd and read by the pipeline.
var (
	termMu sync.RWMutex
	term   *Terminal
)

// SetTerminal sets the process terminal (nil clears it).
func SetTerminal(t *Terminal) { termMu.Lock(); term = t; termMu.Unlock() }

// GetTerminal returns the process terminal (may be nil).
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term }

// NewTerminal builds a terminal; enabled=false makes every call a no-op.
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{w: w, enabled: enabled}
}

// RunStart records the input/output pair.
func (t *Terminal) RunStart(input, output string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.input = shortenBase(input, 48)
	t.output = shortenBase(output, 48)
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] %s -> %s", safe(t.input), safe(t.output)))
}

// Stage reports a finished stage with a count.
func (t *Terminal) Stage(name string, count int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.println(fmt.Sprintf("[%s] %d", name, count))
}

// RunFinish prints the closing summary.
func (t *Terminal) RunFinish(ok bool, rows, contacts, merged int, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	if !ok {
		t.println(fmt.Sprintf("[fail] %s | %s", safe(t.output), formatDur(dur)))
		return
	}
	t.println(fmt.Sprintf("[ok] %s | rows %d | contacts %d | merged %d | %s",
		safe(t.output), rows, contacts, merged, formatDur(dur)))
}

func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		t.enabled = false
	}
}

// shortenBase keeps the base name, truncated by runes with a trailing ellipsis.
func shortenBase(s string, max int) string {
	if max <= 0 {
		return ""
	}
	base := filepath.Base(strings.TrimSpace(s))
	if base == "" {
		return ""
	}
	rs := []rune(base)
	if len(rs) <= max {
		return base
	}
	cut := max - 1
	if cut < 1 {
		cut = 1
	}
	return string(rs[:cut]) + "…"
}

func safe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms <= 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	s := float64(d.Milliseconds()) / 1000.0
	return fmt.Sprintf("%.1fs", s)
}
