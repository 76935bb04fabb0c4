package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMPSCQueueFIFOSingleProducer(t *testing.T) {
	q := newMPSCQueue()
	for i := 0; i < 5; i++ {
		q.push(workItem{market: "m", cancelID: string(rune('a' + i))})
	}

	var exit int32
	for i := 0; i < 5; i++ {
		item, ok := q.pop(func() bool { return atomic.LoadInt32(&exit) == 1 })
		assert.True(t, ok)
		assert.Equal(t, string(rune('a'+i)), item.cancelID)
	}
}

func TestMPSCQueueConcurrentProducers(t *testing.T) {
	q := newMPSCQueue()
	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(workItem{market: "m"})
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.len())

	var exit int32
	count := 0
	for {
		item, ok := q.pop(func() bool { return atomic.LoadInt32(&exit) == 1 })
		if !ok {
			break
		}
		assert.Equal(t, "m", item.market)
		count++
		if count == producers*perProducer {
			atomic.StoreInt32(&exit, 1)
			q.wake()
		}
	}
	assert.Equal(t, producers*perProducer, count)
}

func TestMPSCQueueExitsWhenDrainedAndShouldExit(t *testing.T) {
	q := newMPSCQueue()
	var exit int32
	atomic.StoreInt32(&exit, 1)
	q.wake()

	_, ok := q.pop(func() bool { return atomic.LoadInt32(&exit) == 1 })
	assert.False(t, ok)
}
