package benchmark

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/swissmarley/secure-snap/internal/core/domain"
	"github.com/swissmarley/secure-snap/internal/core/service"
)

// MessageCounts defines the preload sizes for benchmarking.
var MessageCounts = []int{1000, 5000, 10000}

// PayloadSizes defines ciphertext sizes in bytes.
var PayloadSizes = []int{256, 4096, 65536}

func benchLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// randomBlobs returns a ciphertext of the given size plus salt and iv.
func randomBlobs(size int) (ciphertext, salt, iv []byte) {
	ciphertext = make([]byte, size)
	salt = make([]byte, 16)
	iv = make([]byte, 12)
	rand.Read(ciphertext)
	rand.Read(salt)
	rand.Read(iv)
	return
}

// createRequest builds a create request with a payload of size bytes.
func createRequest(size int) *service.CreateMessageRequest {
	ciphertext, salt, iv := randomBlobs(size)
	return &service.CreateMessageRequest{
		Ciphertext:    ciphertext,
		Salt:          salt,
		IV:            iv,
		ExpirySeconds: 3600,
	}
}

// prefill creates count messages through the service and returns
// their IDs.
func prefill(b *testing.B, ctx context.Context, svc *service.MessageService, count int) []string {
	b.Helper()

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		resp, err := svc.Create(ctx, createRequest(256))
		if err != nil {
			b.Fatalf("prefill create: %v", err)
		}
		ids = append(ids, resp.ID)
	}
	return ids
}

// newMessage builds a valid domain message for store-level benchmarks.
func newMessage(b *testing.B, size int) *domain.Message {
	b.Helper()

	ciphertext, salt, iv := randomBlobs(size)
	msg, err := domain.NewMessage(ciphertext, salt, iv, 3600)
	if err != nil {
		b.Fatalf("new message: %v", err)
	}
	return msg
}

// reportMemory reports current heap usage as a benchmark metric.
func reportMemory(b *testing.B, name string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.HeapAlloc)/(1<<20), name+"_heap_mb")
}
