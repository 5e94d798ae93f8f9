package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/swissmarley/secure-snap/internal/storage"
	"github.com/swissmarley/secure-snap/internal/storage/memory"
)

// BenchmarkMemoryStoreInsert benchmarks durable-record inserts into
// the in-memory backend.
func BenchmarkMemoryStoreInsert(b *testing.B) {
	for _, size := range PayloadSizes {
		b.Run(fmt.Sprintf("payload_%d", size), func(b *testing.B) {
			ctx := context.Background()
			store := memory.New()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := store.Insert(ctx, newMessage(b, size)); err != nil {
					b.Fatalf("insert: %v", err)
				}
			}
		})
	}
}

// BenchmarkBadgerStoreInsert benchmarks durable-record inserts into
// the Badger backend with sync writes disabled.
func BenchmarkBadgerStoreInsert(b *testing.B) {
	for _, size := range PayloadSizes {
		b.Run(fmt.Sprintf("payload_%d", size), func(b *testing.B) {
			ctx := context.Background()

			cfg := storage.DefaultBadgerConfig(b.TempDir())
			cfg.SyncWrites = false
			store, err := storage.NewBadgerStore(cfg, benchLogger())
			if err != nil {
				b.Fatalf("open store: %v", err)
			}
			defer store.Close()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := store.Insert(ctx, newMessage(b, size)); err != nil {
					b.Fatalf("insert: %v", err)
				}
			}
		})
	}
}

// BenchmarkBadgerStoreGet benchmarks record fetches from the Badger
// backend.
func BenchmarkBadgerStoreGet(b *testing.B) {
	ctx := context.Background()

	cfg := storage.DefaultBadgerConfig(b.TempDir())
	cfg.SyncWrites = false
	store, err := storage.NewBadgerStore(cfg, benchLogger())
	if err != nil {
		b.Fatalf("open store: %v", err)
	}
	defer store.Close()

	const preload = 1000
	ids := make([]string, preload)
	for i := 0; i < preload; i++ {
		msg := newMessage(b, 256)
		if err := store.Insert(ctx, msg); err != nil {
			b.Fatalf("insert: %v", err)
		}
		ids[i] = msg.ID
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := store.Get(ctx, ids[i%preload]); err != nil {
			b.Fatalf("get: %v", err)
		}
	}
}
