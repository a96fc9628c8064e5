package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// BenchmarkWrite measures atomic and in-place writes for a few output sizes.
func BenchmarkWrite(b *testing.B) {
	for _, sz := range []int{4 * 1024, 1024 * 1024} {
		for _, atomic := range []bool{true, false} {
			b.Run(fmt.Sprintf("size=%d/atomic=%t", sz, atomic), func(b *testing.B) {
				data := bytes.Repeat([]byte("Иванов,Иван,,,,+7(999)123-45-67,\n"), sz/48+1)
				dest := filepath.Join(b.TempDir(), "phonebook.csv")
				w, err := New(&Options{Atomic: &atomic})
				if err != nil {
					b.Fatalf("new: %v", err)
				}
				ctx := context.Background()
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if err := w.Write(ctx, dest, bytes.NewReader(data)); err != nil {
						b.Fatalf("write: %v", err)
					}
				}
			})
		}
	}
}
