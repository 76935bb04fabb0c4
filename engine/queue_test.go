package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOrder(t *testing.T, id string, qty int64) *Order {
	t.Helper()
	o, err := NewOrder(id, "BTCUSD", Buy, 100, qty, time.Now())
	require.NoError(t, err)
	return o
}

func TestOrderQueueFIFO(t *testing.T) {
	var q OrderQueue
	assert.True(t, q.Empty())

	a := mustOrder(t, "a", 1)
	b := mustOrder(t, "b", 1)
	q.PushBack(a)
	q.PushBack(b)

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, a, q.Front())

	popped := q.PopFront()
	assert.Equal(t, a, popped)
	assert.Equal(t, b, q.Front())
	assert.Equal(t, 1, q.Len())
}

func TestOrderQueueRemoveByID(t *testing.T) {
	var q OrderQueue
	a := mustOrder(t, "a", 1)
	b := mustOrder(t, "b", 1)
	c := mustOrder(t, "c", 1)
	q.PushBack(a)
	q.PushBack(b)
	q.PushBack(c)

	removed := q.RemoveByID("b")
	assert.Equal(t, b, removed)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, a, q.Front())

	assert.Nil(t, q.RemoveByID("missing"))
}

func TestOrderQueueSumLeftover(t *testing.T) {
	var q OrderQueue
	a := mustOrder(t, "a", 3)
	b := mustOrder(t, "b", 4)
	a.Execute(1)
	q.PushBack(a)
	q.PushBack(b)

	assert.Equal(t, int64(6), q.SumLeftover())
}
