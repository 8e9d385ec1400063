// Package relay drains the transactional outbox and hands entity lifecycle
// envelopes to a sink: the in-process hub, or a NATS publisher when several
// server instances share the fan-out.
package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

const zeroUUID = "00000000-0000-0000-0000-000000000000"

// Sink receives drained envelopes.
type Sink interface {
	Publish(env event.Envelope)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(env event.Envelope)

func (f SinkFunc) Publish(env event.Envelope) { f(env) }

type Poller struct {
	store    store.OutboxStore
	sink     Sink
	interval time.Duration
	batch    int
	retain   time.Duration
}

func NewPoller(st store.OutboxStore, sink Sink, interval time.Duration, batch int) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Poller{store: st, sink: sink, interval: interval, batch: batch, retain: time.Hour}
}

// Run polls until the context is canceled. Events already dispatched are
// checkpointed so a restart resumes after the last delivered event; rows
// older than the retention window are cleaned up behind the checkpoint.
func (p *Poller) Run(ctx context.Context) error {
	offset, err := p.store.GetOffset(ctx)
	if err != nil {
		return err
	}
	if offset.LastEventTime.IsZero() {
		offset.LastEventTime = time.Unix(0, 0).UTC()
	}
	if offset.LastEventID == "" {
		offset.LastEventID = zeroUUID
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			offset = p.drain(ctx, offset)
		}
	}
}

func (p *Poller) drain(ctx context.Context, offset store.Offset) store.Offset {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	events, err := p.store.ListOutboxEvents(ctx, offset, p.batch)
	if err != nil {
		log.Error().Err(err).Msg("list outbox events failed")
		return offset
	}
	if len(events) == 0 {
		return offset
	}

	for _, item := range events {
		p.sink.Publish(event.Envelope{
			Channel:   item.Channel,
			Payload:   item.Payload,
			CreatedAt: item.CreatedAt,
		})
		offset.LastEventTime = item.CreatedAt
		offset.LastEventID = item.EventID
	}

	if err := p.store.UpdateOffset(ctx, offset); err != nil {
		log.Error().Err(err).Msg("update relay offset failed")
		return offset
	}
	if err := p.store.CleanupOutbox(ctx, offset.LastEventTime.Add(-p.retain)); err != nil {
		log.Error().Err(err).Msg("cleanup outbox failed")
	}
	return offset
}
