package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tally/pkg/core"
)

func TestBroker_NestedPublishIsQueued(t *testing.T) {
	b := newBroker(nil)
	var got []core.EventType

	b.subscribe(func(e core.Event) {
		got = append(got, e.Type)
		if e.Type == core.EventCollectionChanged {
			b.publish(core.Event{Type: core.EventSnapshotTaken})
			got = append(got, "returned")
		}
	})

	b.publish(core.Event{Type: core.EventCollectionChanged}, core.Event{Type: core.EventDirtyChanged})

	assert.Equal(t, []core.EventType{
		core.EventCollectionChanged,
		"returned",
		core.EventDirtyChanged,
		core.EventSnapshotTaken,
	}, got)
}

func TestBroker_CloseStopsDelivery(t *testing.T) {
	b := newBroker(nil)
	ch := b.channel(4)
	calls := 0
	b.subscribe(func(core.Event) { calls++ })
	assert.Equal(t, 2, b.count())

	b.close()
	b.close()
	b.publish(core.Event{Type: core.EventCollectionChanged})

	assert.Equal(t, 0, calls)
	_, ok := <-ch
	assert.False(t, ok)

	late := b.channel(1)
	_, ok = <-late
	assert.False(t, ok, "channels requested after close come back closed")
}
