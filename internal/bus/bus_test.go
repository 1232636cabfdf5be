package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribersOfTopic(t *testing.T) {
	b := New()

	var got []any
	b.Subscribe(TopicTopUpResolved, func(p any) { got = append(got, p) })
	b.Subscribe(TopicTopUpResolved, func(p any) { got = append(got, p) })
	b.Subscribe(TopicMenuUpdated, func(p any) { t.Fatal("wrong topic delivered") })

	b.Publish(TopicTopUpResolved, TopUpResolved{TopUpID: "t1", Approved: true})

	require.Len(t, got, 2)
	ev, ok := got[0].(TopUpResolved)
	require.True(t, ok)
	assert.Equal(t, "t1", ev.TopUpID)
	assert.True(t, ev.Approved)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()

	calls := 0
	unsub := b.Subscribe(TopicReservationsUpdated, func(any) { calls++ })

	b.Publish(TopicReservationsUpdated, ReservationsUpdated{})
	unsub()
	b.Publish(TopicReservationsUpdated, ReservationsUpdated{})

	assert.Equal(t, 1, calls)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Publish(TopicProfileUpdated, ProfileUpdated{AccountID: "a1"})
	})
}
