package journal

import (
	"context"
	"fmt"

	"etf-arb-bot/internal/venue"

	"go.uber.org/zap"
)

// Writer tees live events into the store. Append failures are logged, never
// propagated: capture must not disturb trading.
type Writer struct {
	store *Store
	log   *zap.Logger
}

func NewWriter(store *Store, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{store: store, log: log}
}

func (w *Writer) Record(ctx context.Context, ev venue.Event) {
	if w == nil || w.store == nil {
		return
	}
	frameType, payload, err := Encode(ev)
	if err != nil {
		w.log.Warn("journal encode failed", zap.Error(err))
		return
	}
	if err := w.store.Append(ctx, frameType, payload); err != nil {
		w.log.Warn("journal append failed", zap.Error(err))
	}
}

// Replayer feeds a captured log back through the same dispatch path the live
// loop uses.
type Replayer struct {
	store *Store
}

func NewReplayer(store *Store) *Replayer {
	return &Replayer{store: store}
}

func (r *Replayer) Run(ctx context.Context, fn func(venue.Event)) error {
	return r.store.Scan(ctx, func(id uint64, frameType string, payload []byte) error {
		ev, err := Decode(frameType, payload)
		if err != nil {
			return fmt.Errorf("event %d: %w", id, err)
		}
		fn(ev)
		return nil
	})
}
