package live

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-live-draft/internal/domain"
	"fpl-live-draft/internal/metrics"
)

func view(id string, status domain.Status) domain.View {
	return domain.View{LeagueID: id, Status: status}
}

func TestHub_LatestAndReset(t *testing.T) {
	h := NewHub(metrics.New(), zerolog.Nop())

	_, ok := h.Latest()
	assert.False(t, ok)

	h.Publish(view("1", domain.StatusLoading))
	h.Publish(view("1", domain.StatusLive))
	got, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, domain.StatusLive, got.Status)

	h.Reset()
	_, ok = h.Latest()
	assert.False(t, ok)
}

func TestHub_SubscribePrimesWithLatest(t *testing.T) {
	h := NewHub(nil, zerolog.Nop())
	h.Publish(view("1", domain.StatusLive))

	ch, unsubscribe := h.Subscribe()
	defer unsubscribe()

	got := <-ch
	assert.Equal(t, "1", got.LeagueID)
}

func TestHub_SlowSubscriberSeesNewest(t *testing.T) {
	h := NewHub(nil, zerolog.Nop())
	ch, unsubscribe := h.Subscribe()
	defer unsubscribe()

	h.Publish(view("1", domain.StatusLoading))
	h.Publish(view("1", domain.StatusTransientError))
	h.Publish(view("1", domain.StatusLive))

	got := <-ch
	assert.Equal(t, domain.StatusLive, got.Status)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued view %+v", extra)
	default:
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	h := NewHub(nil, zerolog.Nop())
	ch, unsubscribe := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, h.Subscribers())

	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, func() { h.Publish(view("1", domain.StatusLive)) })
}
