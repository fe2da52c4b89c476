package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/metrics"
)

// DefaultKeyUsageBuffer is the number of unflushed usage events held in memory.
const DefaultKeyUsageBuffer = 1024

const finalFlushTimeout = 5 * time.Second

// KeyUsageStore persists lastUsedAt stamps.
type KeyUsageStore interface {
	TouchLastUsed(ctx context.Context, ids []string, at time.Time) error
}

type keyUsage struct {
	keyID string
	at    time.Time
}

// KeyUsageWorker stamps API key lastUsedAt off the request path. Usage events
// are buffered and written in batches on a fixed interval; when the buffer is
// full new events are dropped.
type KeyUsageWorker struct {
	store    KeyUsageStore
	interval time.Duration
	events   chan keyUsage
	pending  map[string]time.Time
}

// NewKeyUsageWorker constructs a KeyUsageWorker.
func NewKeyUsageWorker(store KeyUsageStore, interval time.Duration, buffer int) *KeyUsageWorker {
	if buffer <= 0 {
		buffer = DefaultKeyUsageBuffer
	}
	return &KeyUsageWorker{
		store:    store,
		interval: interval,
		events:   make(chan keyUsage, buffer),
		pending:  make(map[string]time.Time),
	}
}

// RecordKeyUsage queues a stamp without blocking.
func (w *KeyUsageWorker) RecordKeyUsage(_ context.Context, keyID string, at time.Time) {
	select {
	case w.events <- keyUsage{keyID: keyID, at: at}:
	default:
		metrics.KeyUsageDroppedTotal.Inc()
		log.Warn().Str("api_key_id", keyID).Msg("Key usage buffer full, dropping stamp")
	}
}

// Start runs the flush loop until ctx is cancelled, then flushes what is left.
func (w *KeyUsageWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting key usage worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case u := <-w.events:
			w.add(u)
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			w.drain()
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			w.flush(flushCtx)
			cancel()
			log.Info().Msg("Key usage worker stopped")
			return
		}
	}
}

func (w *KeyUsageWorker) add(u keyUsage) {
	if prev, ok := w.pending[u.keyID]; !ok || u.at.After(prev) {
		w.pending[u.keyID] = u.at
	}
}

func (w *KeyUsageWorker) drain() {
	for {
		select {
		case u := <-w.events:
			w.add(u)
		default:
			return
		}
	}
}

// flush writes pending stamps grouped by second so one UPDATE covers every
// key used within the same second.
func (w *KeyUsageWorker) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	groups := make(map[time.Time][]string)
	for id, at := range w.pending {
		sec := at.Truncate(time.Second)
		groups[sec] = append(groups[sec], id)
	}

	for at, ids := range groups {
		if err := w.store.TouchLastUsed(ctx, ids, at); err != nil {
			log.Error().Err(err).Int("keys", len(ids)).Msg("Failed to flush key usage")
			continue
		}
		for _, id := range ids {
			if w.pending[id].Truncate(time.Second).Equal(at) {
				delete(w.pending, id)
			}
		}
	}
	log.Debug().Int("remaining", len(w.pending)).Msg("Key usage flushed")
}
