package engine

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherAssignsMarketsRoundRobin(t *testing.T) {
	markets := []string{"A", "B", "C", "D", "E"}
	d := NewDispatcher(markets, 2, logrus.New(), Hooks{})

	counts := make(map[int]int)
	for _, m := range markets {
		consumer, ok := d.consumerFor(m)
		require.True(t, ok)
		counts[consumer.id]++
	}
	assert.Len(t, counts, 2)
	for _, c := range counts {
		assert.GreaterOrEqual(t, c, 2)
	}
}

func TestDispatcherRegisteredMarketNameNormalizes(t *testing.T) {
	d := NewDispatcher([]string{"BTCUSD"}, 1, logrus.New(), Hooks{})

	name, ok := d.RegisteredMarketName("  btcusd ")
	assert.True(t, ok)
	assert.Equal(t, "BTCUSD", name)

	_, ok = d.RegisteredMarketName("unknown")
	assert.False(t, ok)
}

func TestDispatcherSendAndQueryRoundTrip(t *testing.T) {
	d := NewDispatcher([]string{"BTCUSD"}, 1, logrus.New(), Hooks{})
	d.Start()
	defer d.Shutdown()

	order, err := NewOrder("1", "BTCUSD", Buy, 100, 5, time.Now())
	require.NoError(t, err)

	outcome, err := d.Send(order)
	require.NoError(t, err)
	assert.Equal(t, Resting, outcome)

	bestBuy, err := d.BestBuy("BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, int64(100), bestBuy)

	cancelled, err := d.Cancel("BTCUSD", "1", Buy, 100)
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestDispatcherUnknownMarketErrors(t *testing.T) {
	d := NewDispatcher([]string{"BTCUSD"}, 1, logrus.New(), Hooks{})
	d.Start()
	defer d.Shutdown()

	order, err := NewOrder("1", "ETHUSD", Buy, 100, 5, time.Now())
	require.NoError(t, err)

	_, err = d.Send(order)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
