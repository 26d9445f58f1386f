package auth

import (
	"testing"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesCurrentImmediately(t *testing.T) {
	b := NewBroadcaster()
	b.Publish(&domain.Identity{UID: "u1"})

	var got []*domain.Identity
	unsub := b.Subscribe(func(id *domain.Identity) { got = append(got, id) })
	defer unsub()

	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	calls := 0
	unsub := b.Subscribe(func(*domain.Identity) { calls++ })
	assert.Equal(t, 1, calls)

	b.Publish(&domain.Identity{UID: "u1"})
	assert.Equal(t, 2, calls)

	unsub()
	unsub()
	b.Publish(nil)
	assert.Equal(t, 2, calls)
}
