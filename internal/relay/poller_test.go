package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/event"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store"
)

type fakeOutbox struct {
	events  []store.OutboxEvent
	offset  store.Offset
	cleaned time.Time
}

func (f *fakeOutbox) ListOutboxEvents(ctx context.Context, after store.Offset, limit int) ([]store.OutboxEvent, error) {
	var out []store.OutboxEvent
	for _, item := range f.events {
		if item.CreatedAt.After(after.LastEventTime) ||
			(item.CreatedAt.Equal(after.LastEventTime) && item.EventID > after.LastEventID) {
			out = append(out, item)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOutbox) GetOffset(ctx context.Context) (store.Offset, error) { return f.offset, nil }

func (f *fakeOutbox) UpdateOffset(ctx context.Context, offset store.Offset) error {
	f.offset = offset
	return nil
}

func (f *fakeOutbox) CleanupOutbox(ctx context.Context, before time.Time) error {
	f.cleaned = before
	return nil
}

func outboxEvent(id string, at time.Time, entity event.Entity, lifecycle event.Lifecycle) store.OutboxEvent {
	return store.OutboxEvent{
		EventID:   id,
		Channel:   event.EntityChannel(entity, lifecycle),
		Payload:   json.RawMessage(`{"id":"rec-1"}`),
		CreatedAt: at,
	}
}

func TestDrainPublishesAndCheckpoints(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	outbox := &fakeOutbox{events: []store.OutboxEvent{
		outboxEvent("11111111-1111-1111-1111-111111111111", base, event.EntityJobs, event.LifecycleCreated),
		outboxEvent("22222222-2222-2222-2222-222222222222", base.Add(time.Second), event.EntityBlogs, event.LifecycleDeleted),
	}}

	var published []event.Envelope
	p := NewPoller(outbox, SinkFunc(func(env event.Envelope) {
		published = append(published, env)
	}), time.Second, 100)

	next := p.drain(context.Background(), store.Offset{
		LastEventTime: time.Unix(0, 0).UTC(),
		LastEventID:   zeroUUID,
	})

	require.Len(t, published, 2)
	assert.Equal(t, event.EntityChannel(event.EntityJobs, event.LifecycleCreated), published[0].Channel)
	assert.Equal(t, event.EntityChannel(event.EntityBlogs, event.LifecycleDeleted), published[1].Channel)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", next.LastEventID)
	assert.Equal(t, base.Add(time.Second), next.LastEventTime)
	assert.Equal(t, next, outbox.offset)
	assert.Equal(t, next.LastEventTime.Add(-time.Hour), outbox.cleaned)
}

func TestDrainResumesAfterCheckpoint(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	outbox := &fakeOutbox{events: []store.OutboxEvent{
		outboxEvent("11111111-1111-1111-1111-111111111111", base, event.EntityJobs, event.LifecycleCreated),
		outboxEvent("22222222-2222-2222-2222-222222222222", base.Add(time.Second), event.EntityJobs, event.LifecycleUpdated),
	}}

	var published []event.Envelope
	p := NewPoller(outbox, SinkFunc(func(env event.Envelope) {
		published = append(published, env)
	}), time.Second, 100)

	p.drain(context.Background(), store.Offset{
		LastEventTime: base,
		LastEventID:   "11111111-1111-1111-1111-111111111111",
	})

	require.Len(t, published, 1)
	assert.Equal(t, event.EntityChannel(event.EntityJobs, event.LifecycleUpdated), published[0].Channel)
}

func TestDrainEmptyOutboxKeepsOffset(t *testing.T) {
	outbox := &fakeOutbox{}
	p := NewPoller(outbox, SinkFunc(func(event.Envelope) {
		t.Fatal("published from an empty outbox")
	}), time.Second, 100)

	offset := store.Offset{LastEventTime: time.Unix(0, 0).UTC(), LastEventID: zeroUUID}
	next := p.drain(context.Background(), offset)
	assert.Equal(t, offset, next)
	assert.True(t, outbox.offset.LastEventTime.IsZero())
}
