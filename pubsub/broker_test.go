package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuneScotty/drawit-server/game"
)

func TestBroker_BroadcastReachesAllSubscribers(t *testing.T) {
	t.Parallel()
	b := NewBroker()

	ch1, cancel1 := b.Subscribe("s1", "p1")
	defer cancel1()
	ch2, cancel2 := b.Subscribe("s1", "p2")
	defer cancel2()
	other, cancelOther := b.Subscribe("s2", "p1")
	defer cancelOther()

	b.Publish("s1", game.Event{Type: game.EventRosterChanged})

	assert.Equal(t, game.EventRosterChanged, (<-ch1).Type)
	assert.Equal(t, game.EventRosterChanged, (<-ch2).Type)
	assert.Empty(t, other)
}

func TestBroker_TargetedEventOnlyReachesNamedPlayer(t *testing.T) {
	t.Parallel()
	b := NewBroker()

	drawer, cancelD := b.Subscribe("s1", "p1")
	defer cancelD()
	guesser, cancelG := b.Subscribe("s1", "p2")
	defer cancelG()

	b.Publish("s1", game.Event{Type: game.EventWordChoices, To: "p1", Choices: []string{"apple"}})
	b.Publish("s1", game.Event{Type: game.EventRoundStarted})

	first := <-drawer
	assert.Equal(t, game.EventWordChoices, first.Type)

	// the guesser never sees the choices
	got := <-guesser
	assert.Equal(t, game.EventRoundStarted, got.Type)
	assert.Empty(t, guesser)
}

func TestBroker_SlowSubscriberNeverBlocksPublish(t *testing.T) {
	t.Parallel()
	b := NewBroker()

	ch, cancel := b.Subscribe("s1", "p1")
	defer cancel()

	// overflow the buffer; Publish must keep returning
	for range 200 {
		b.Publish("s1", game.Event{Type: game.EventChatMessage})
	}
	assert.Len(t, ch, 64)
}

func TestBroker_CancelClosesChannelOnce(t *testing.T) {
	t.Parallel()
	b := NewBroker()

	ch, cancel := b.Subscribe("s1", "p1")
	require.Equal(t, 1, b.SubscriberCount("s1"))

	cancel()
	cancel() // second call is a no-op

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount("s1"))

	// publishing into a fully cancelled session is harmless
	b.Publish("s1", game.Event{Type: game.EventChatMessage})
}
