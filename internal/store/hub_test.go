package store

import (
	"testing"

	"github.com/lediangroup/repair-board/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	h := newHub()
	ch1, cancel1 := h.subscribe()
	ch2, cancel2 := h.subscribe()
	defer cancel1()
	defer cancel2()

	snapshot := []models.Report{{Facility: "本館"}}
	h.broadcast(snapshot)

	assert.Equal(t, snapshot, <-ch1)
	assert.Equal(t, snapshot, <-ch2)
}

func TestHubSlowSubscriberGetsLatestSnapshotOnly(t *testing.T) {
	h := newHub()
	ch, cancel := h.subscribe()
	defer cancel()

	h.broadcast([]models.Report{{Facility: "old"}})
	h.broadcast([]models.Report{{Facility: "mid"}})
	latest := []models.Report{{Facility: "new"}}
	h.broadcast(latest)

	got := <-ch
	assert.Equal(t, latest, got, "undelivered snapshots are replaced, not queued")

	select {
	case extra := <-ch:
		t.Fatalf("unexpected second delivery: %v", extra)
	default:
	}
}

func TestHubCancelIsIdempotentAndStopsDeliveries(t *testing.T) {
	h := newHub()
	ch, cancel := h.subscribe()

	cancel()
	cancel() // must not panic

	_, open := <-ch
	assert.False(t, open, "channel closed on cancel")

	h.broadcast([]models.Report{{Facility: "本館"}})
	assert.Zero(t, h.subscriberCount())
}

func TestHubCancelOneLeavesOthersSubscribed(t *testing.T) {
	h := newHub()
	_, cancel1 := h.subscribe()
	ch2, cancel2 := h.subscribe()
	defer cancel2()

	cancel1()
	require.Equal(t, 1, h.subscriberCount())

	snapshot := []models.Report{{Facility: "本館"}}
	h.broadcast(snapshot)
	assert.Equal(t, snapshot, <-ch2)
}
