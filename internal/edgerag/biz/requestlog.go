package biz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kart-io/edge-rag/internal/edgerag/store"
	"github.com/kart-io/edge-rag/internal/model"
	"github.com/kart-io/edge-rag/pkg/utils/json"
)

const requestLogPrefix = "request_log:"

// RequestLogger appends processed queries to the shared log store. Keys are
// ULIDs so entries from concurrent edge instances stay unique and sort by
// time.
type RequestLogger struct {
	store store.LogStore

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewRequestLogger creates a RequestLogger.
func NewRequestLogger(s store.LogStore) *RequestLogger {
	return &RequestLogger{
		store:   s,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Log writes one entry. The caller decides whether a failure matters; the
// answer pipeline treats it as best effort.
func (l *RequestLogger) Log(ctx context.Context, entry model.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	key := requestLogPrefix + l.newID(entry.Timestamp)
	if err := l.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write log entry %s: %w", key, err)
	}
	return nil
}

func (l *RequestLogger) newID(at time.Time) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), l.entropy).String()
}
