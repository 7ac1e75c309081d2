package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultTTL is how long a persisted cart stays valid.
const DefaultTTL = 10 * time.Minute

// Entry is one persisted cart position. The whole batch shares a single
// timestamp and expires atomically.
type Entry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Storage persists the cart as a best-effort cache. Load returns nil entries
// (no error) when nothing valid is stored; expired or corrupt data is
// discarded and the key removed.
type Storage interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
	Clear(ctx context.Context) error
}

type storedCart struct {
	Items     []Entry `json:"items"`
	Timestamp int64   `json:"timestamp"`
}

func encodeCart(entries []Entry, now time.Time) ([]byte, error) {
	return json.Marshal(storedCart{Items: entries, Timestamp: now.UnixMilli()})
}

// decodeCart interprets a raw blob. Corrupt payloads count as absent rather
// than errors; expired payloads report expired=true so callers drop the key.
func decodeCart(raw []byte, now time.Time, ttl time.Duration) (entries []Entry, expired bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var stored storedCart
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false
	}
	if now.UnixMilli()-stored.Timestamp > ttl.Milliseconds() {
		return nil, true
	}
	return stored.Items, false
}

// MemoryStorage keeps the cart blob in process memory. It backs tests and
// hosts that run without redis.
type MemoryStorage struct {
	mu  sync.Mutex
	raw []byte
	ttl time.Duration
	now func() time.Time
}

// MemoryOption tweaks a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithTTL overrides the expiry window.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *MemoryStorage) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStorage) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryStorage builds an in-memory cart storage.
func NewMemoryStorage(opts ...MemoryOption) *MemoryStorage {
	storage := &MemoryStorage{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(storage)
		}
	}
	return storage
}

// Load returns the stored entries, dropping the blob when expired or corrupt.
func (m *MemoryStorage) Load(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, expired := decodeCart(m.raw, m.now(), m.ttl)
	if expired {
		m.raw = nil
		return nil, nil
	}
	return entries, nil
}

// Save overwrites the blob with a fresh shared timestamp.
func (m *MemoryStorage) Save(_ context.Context, entries []Entry) error {
	raw, err := encodeCart(entries, m.now())
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	return nil
}

// Clear removes the blob entirely.
func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = nil
	return nil
}
