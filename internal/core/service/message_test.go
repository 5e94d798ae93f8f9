package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/swissmarley/secure-snap/internal/core/domain"
)

// mockMessageRepo implements MessageRepository for testing.
type mockMessageRepo struct {
	messages map[string]*domain.Message
	mu       sync.RWMutex

	insertErr error
	getErr    error
	deleteErr error
	scanErr   error
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{
		messages: make(map[string]*domain.Message),
	}
}

func (r *mockMessageRepo) Insert(_ context.Context, msg *domain.Message) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[msg.ID]; ok {
		return domain.ErrMessageConflict
	}
	r.messages[msg.ID] = msg.Clone()
	return nil
}

func (r *mockMessageRepo) Get(_ context.Context, id string) (*domain.Message, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if msg, ok := r.messages[id]; ok {
		return msg.Clone(), nil
	}
	return nil, domain.ErrMessageNotFound
}

func (r *mockMessageRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return domain.ErrMessageNotFound
	}
	delete(r.messages, id)
	return nil
}

func (r *mockMessageRepo) ScanExpired(_ context.Context, now time.Time, fn func(id string) bool) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, msg := range r.messages {
		if msg.IsExpired(now) {
			if !fn(id) {
				return nil
			}
		}
	}
	return nil
}

func (r *mockMessageRepo) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.messages[id]
	return ok
}

// mockMarkerCache implements MarkerCache for testing.
type mockMarkerCache struct {
	markers map[string]time.Duration
	mu      sync.Mutex

	setErr  error
	takeErr error
}

func newMockMarkerCache() *mockMarkerCache {
	return &mockMarkerCache{
		markers: make(map[string]time.Duration),
	}
}

func (c *mockMarkerCache) Set(_ context.Context, id string, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers[id] = ttl
	return nil
}

func (c *mockMarkerCache) Take(_ context.Context, id string) (bool, error) {
	if c.takeErr != nil {
		return false, c.takeErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.markers[id]; ok {
		delete(c.markers, id)
		return true, nil
	}
	return false, nil
}

func (c *mockMarkerCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.markers, id)
	return nil
}

func (c *mockMarkerCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.markers[id]
	return ok
}

func mustID(t *testing.T) string {
	t.Helper()
	id, err := domain.GenerateMessageID()
	if err != nil {
		t.Fatalf("GenerateMessageID failed: %v", err)
	}
	return id
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService() (*MessageService, *mockMessageRepo, *mockMarkerCache) {
	repo := newMockMessageRepo()
	cache := newMockMarkerCache()
	svc := NewMessageService(repo, cache, testLogger())
	return svc, repo, cache
}

func validCreateRequest() *CreateMessageRequest {
	return &CreateMessageRequest{
		Ciphertext:    []byte("opaque-ciphertext"),
		Salt:          bytes.Repeat([]byte{0x01}, 16),
		IV:            bytes.Repeat([]byte{0x02}, 12),
		ExpirySeconds: 3600,
	}
}

// ============================================================================
// Create Tests
// ============================================================================

func TestCreateMessage(t *testing.T) {
	svc, repo, cache := newTestService()

	resp, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !domain.IsValidMessageID(resp.ID) {
		t.Errorf("Create returned invalid ID %q", resp.ID)
	}
	if resp.ExpiresAt <= time.Now().UnixMilli() {
		t.Errorf("ExpiresAt %d not in the future", resp.ExpiresAt)
	}
	if !repo.has(resp.ID) {
		t.Error("record not persisted")
	}
	if !cache.has(resp.ID) {
		t.Error("marker not set")
	}
}

func TestCreateMessageMarkerTTLMatchesExpiry(t *testing.T) {
	svc, _, cache := newTestService()

	req := validCreateRequest()
	req.ExpirySeconds = 120
	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cache.mu.Lock()
	ttl := cache.markers[resp.ID]
	cache.mu.Unlock()
	if ttl != 120*time.Second {
		t.Errorf("marker TTL = %v, want 2m0s", ttl)
	}
}

func TestCreateMessageValidation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name     string
		mutate   func(*CreateMessageRequest)
		wantCode string
	}{
		{"empty ciphertext", func(r *CreateMessageRequest) { r.Ciphertext = nil }, "SS-MSG-4001"},
		{"empty salt", func(r *CreateMessageRequest) { r.Salt = nil }, "SS-MSG-4001"},
		{"empty iv", func(r *CreateMessageRequest) { r.IV = nil }, "SS-MSG-4001"},
		{"oversized ciphertext", func(r *CreateMessageRequest) {
			r.Ciphertext = make([]byte, domain.MaxCiphertextSize+1)
		}, "SS-MSG-4001"},
		{"zero expiry", func(r *CreateMessageRequest) { r.ExpirySeconds = 0 }, "SS-MSG-4002"},
		{"negative expiry", func(r *CreateMessageRequest) { r.ExpirySeconds = -5 }, "SS-MSG-4002"},
		{"expiry above maximum", func(r *CreateMessageRequest) {
			r.ExpirySeconds = int64(domain.DefaultMaxExpiry/time.Second) + 1
		}, "SS-MSG-4002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)
			_, err := svc.Create(context.Background(), req)
			if !domain.IsDomainError(err, tt.wantCode) {
				t.Errorf("Create error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestCreateMessageUniqueIDs(t *testing.T) {
	svc, _, _ := newTestService()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		resp, err := svc.Create(context.Background(), validCreateRequest())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[resp.ID] {
			t.Fatalf("duplicate ID %q", resp.ID)
		}
		seen[resp.ID] = true
	}
}

func TestCreateMessageInsertFailure(t *testing.T) {
	svc, repo, cache := newTestService()
	repo.insertErr = errors.New("disk full")

	_, err := svc.Create(context.Background(), validCreateRequest())
	if !domain.IsDomainError(err, "SS-SYS-5001") {
		t.Errorf("Create error = %v, want SS-SYS-5001", err)
	}
	if len(cache.markers) != 0 {
		t.Error("marker set despite insert failure")
	}
}

func TestCreateMessageMarkerSetFailure(t *testing.T) {
	svc, repo, cache := newTestService()
	cache.setErr = errors.New("cache unavailable")

	_, err := svc.Create(context.Background(), validCreateRequest())
	if !domain.IsDomainError(err, "SS-SYS-5001") {
		t.Errorf("Create error = %v, want SS-SYS-5001", err)
	}
	// The orphaned record stays; the sweep reclaims it at expiry.
	repo.mu.RLock()
	orphans := len(repo.messages)
	repo.mu.RUnlock()
	if orphans != 1 {
		t.Errorf("record count = %d, want 1 orphan", orphans)
	}
}

// ============================================================================
// Read Tests
// ============================================================================

func TestReadMessageBurnsAfterRead(t *testing.T) {
	svc, repo, cache := newTestService()

	req := validCreateRequest()
	created, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp, err := svc.Read(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(resp.Ciphertext, req.Ciphertext) {
		t.Error("ciphertext mismatch")
	}
	if !bytes.Equal(resp.Salt, req.Salt) {
		t.Error("salt mismatch")
	}
	if !bytes.Equal(resp.IV, req.IV) {
		t.Error("iv mismatch")
	}

	if repo.has(created.ID) {
		t.Error("record survived read")
	}
	if cache.has(created.ID) {
		t.Error("marker survived read")
	}

	if _, err := svc.Read(context.Background(), created.ID); !domain.IsDomainError(err, "SS-MSG-4040") {
		t.Errorf("second Read error = %v, want SS-MSG-4040", err)
	}
}

func TestReadMessageNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	for _, id := range []string{
		"",
		"not-a-valid-id",
		"snap-01arz3ndektsv4rrffq69g5fav", // well-formed but never created
	} {
		if _, err := svc.Read(context.Background(), id); !domain.IsDomainError(err, "SS-MSG-4040") {
			t.Errorf("Read(%q) error = %v, want SS-MSG-4040", id, err)
		}
	}
}

func TestReadMessageConcurrent(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const readers = 64
	var (
		wg        sync.WaitGroup
		successes int64
		mu        sync.Mutex
	)
	start := make(chan struct{})

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := svc.Read(context.Background(), created.ID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 {
		t.Errorf("concurrent reads succeeded %d times, want exactly 1", successes)
	}
}

func TestReadMessageExpired(t *testing.T) {
	svc, repo, cache := newTestService()

	msg, err := domain.NewMessage([]byte("ct"), []byte("salt"), []byte("iv"), 60)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}
	// Record past its expiry whose marker has not self-expired yet.
	msg.CreatedAt = time.Now().Add(-2 * time.Minute).UnixMilli()
	repo.messages[msg.ID] = msg
	cache.markers[msg.ID] = time.Minute

	if _, err := svc.Read(context.Background(), msg.ID); !domain.IsDomainError(err, "SS-MSG-4040") {
		t.Errorf("Read error = %v, want SS-MSG-4040", err)
	}
	if repo.has(msg.ID) {
		t.Error("expired record not reclaimed on read")
	}
}

func TestReadMessageMarkerWithoutRecord(t *testing.T) {
	svc, _, cache := newTestService()

	id := mustID(t)
	cache.markers[id] = time.Minute

	if _, err := svc.Read(context.Background(), id); !domain.IsDomainError(err, "SS-MSG-4040") {
		t.Errorf("Read error = %v, want SS-MSG-4040", err)
	}
	// Divergence self-heals: the stray marker is consumed by the Take.
	if cache.has(id) {
		t.Error("stray marker survived read")
	}
}

func TestReadMessageRecordWithoutMarker(t *testing.T) {
	svc, repo, _ := newTestService()

	msg, err := domain.NewMessage([]byte("ct"), []byte("salt"), []byte("iv"), 60)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}
	repo.messages[msg.ID] = msg

	// Absent marker is authoritative: the record is unreadable.
	if _, err := svc.Read(context.Background(), msg.ID); !domain.IsDomainError(err, "SS-MSG-4040") {
		t.Errorf("Read error = %v, want SS-MSG-4040", err)
	}
	if !repo.has(msg.ID) {
		t.Error("record removed; the sweep owns its reclamation")
	}
}

func TestReadMessageTakeFailure(t *testing.T) {
	svc, _, cache := newTestService()
	cache.takeErr = errors.New("cache unavailable")

	created := mustID(t)
	if _, err := svc.Read(context.Background(), created); !domain.IsDomainError(err, "SS-SYS-5001") {
		t.Errorf("Read error = %v, want SS-SYS-5001", err)
	}
}

func TestReadMessageRecordDeleteFailureStillConsumes(t *testing.T) {
	svc, repo, cache := newTestService()

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	repo.deleteErr = errors.New("disk error")

	// The payload is served; the leftover record is sweep's problem.
	if _, err := svc.Read(context.Background(), created.ID); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if cache.has(created.ID) {
		t.Error("marker survived read")
	}

	repo.deleteErr = nil
	if _, err := svc.Read(context.Background(), created.ID); !domain.IsDomainError(err, "SS-MSG-4040") {
		t.Errorf("second Read error = %v, want SS-MSG-4040", err)
	}
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestDeleteMessage(t *testing.T) {
	svc, repo, cache := newTestService()

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if repo.has(created.ID) {
		t.Error("record survived delete")
	}
	if cache.has(created.ID) {
		t.Error("marker survived delete")
	}
}

func TestDeleteMessageNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	for _, id := range []string{"", "garbage", mustID(t)} {
		if err := svc.Delete(context.Background(), id); !domain.IsDomainError(err, "SS-MSG-4040") {
			t.Errorf("Delete(%q) error = %v, want SS-MSG-4040", id, err)
		}
	}
}

func TestDeleteMessageIdempotent(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !domain.IsDomainError(err, "SS-MSG-4040") {
		t.Errorf("second Delete error = %v, want SS-MSG-4040", err)
	}
}

func TestDeleteMessageMarkerOnly(t *testing.T) {
	svc, _, cache := newTestService()

	// Divergent state: marker without a record still deletes cleanly.
	id := mustID(t)
	cache.markers[id] = time.Minute

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if cache.has(id) {
		t.Error("stray marker survived delete")
	}
}

func TestDeleteMessageRecordOnly(t *testing.T) {
	svc, repo, _ := newTestService()

	msg, err := domain.NewMessage([]byte("ct"), []byte("salt"), []byte("iv"), 60)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}
	repo.messages[msg.ID] = msg

	if err := svc.Delete(context.Background(), msg.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if repo.has(msg.ID) {
		t.Error("orphaned record survived delete")
	}
}

func TestDeleteMessageRecordFailureLeavesUnreadable(t *testing.T) {
	svc, repo, cache := newTestService()

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	repo.deleteErr = errors.New("disk error")

	if err := svc.Delete(context.Background(), created.ID); !domain.IsDomainError(err, "SS-SYS-5001") {
		t.Errorf("Delete error = %v, want SS-SYS-5001", err)
	}
	// The marker went first, so the half-deleted message can never be
	// served.
	if cache.has(created.ID) {
		t.Error("marker survived failed delete")
	}
	repo.deleteErr = nil
	if _, err := svc.Read(context.Background(), created.ID); !domain.IsDomainError(err, "SS-MSG-4040") {
		t.Errorf("Read after failed delete error = %v, want SS-MSG-4040", err)
	}
}

// ============================================================================
// Option Tests
// ============================================================================

func TestWithMaxExpiry(t *testing.T) {
	repo := newMockMessageRepo()
	cache := newMockMarkerCache()
	svc := NewMessageService(repo, cache, testLogger(), WithMaxExpiry(time.Hour))

	req := validCreateRequest()
	req.ExpirySeconds = 7200
	if _, err := svc.Create(context.Background(), req); !domain.IsDomainError(err, "SS-MSG-4002") {
		t.Errorf("Create error = %v, want SS-MSG-4002", err)
	}

	req.ExpirySeconds = 3600
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Errorf("Create at the limit failed: %v", err)
	}
}
