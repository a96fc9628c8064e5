package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phonebook/pkg/contract"
	acsv "phonebook/plugins/assembler/csv"
	npos "phonebook/plugins/normalizer/positional"
	"phonebook/plugins/phone/ruphone"
	fsreader "phonebook/plugins/reader/filesystem"
	scsv "phonebook/plugins/splitter/csv"
)

type discardWriter struct{}

var _ contract.Writer = discardWriter{}

func (discardWriter) Write(_ context.Context, _ string, r io.Reader) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

// synthBook builds n rows where every third row repeats an earlier person.
func synthBook(n int) string {
	var sb strings.Builder
	sb.WriteString(rawHeader + "\n")
	for i := 0; i < n; i++ {
		p := i
		if i%3 == 2 {
			p = i - 1
		}
		fmt.Fprintf(&sb, "Фамилия%05d Имя%d,,,Орг%d,,8 (9%02d) %03d-%02d-%02d,u%d@example.ru\n",
			p, p, i%17, p%100, p%1000, p%100, (p/7)%100, i)
	}
	return sb.String()
}

// BenchmarkRun measures a full run from a file on disk with output discarded.
func BenchmarkRun(b *testing.B) {
	for _, n := range []int{100, 10_000} {
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			in := filepath.Join(b.TempDir(), "phonebook_raw.csv")
			data := synthBook(n)
			if err := os.WriteFile(in, []byte(data), 0o644); err != nil {
				b.Fatal(err)
			}
			sp, _ := scsv.New(nil)
			asm, _ := acsv.New(nil)
			ph := ruphone.New(nil)
			comp := Components{
				Reader:     fsreader.New(nil),
				Splitter:   sp,
				Normalizer: npos.New(nil, ph),
				Assembler:  asm,
				Writer:     discardWriter{},
			}
			s := Settings{Input: in, Output: "phonebook.csv"}

			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Run(context.Background(), comp, s, nil); err != nil {
					b.Fatalf("run: %v", err)
				}
			}
		})
	}
}
