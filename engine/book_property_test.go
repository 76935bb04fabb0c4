package engine

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// event is one step of a randomized order/cancel stream fed to a book.
type event struct {
	id    string
	side  Side
	price int64
	qty   int64
	op    string // "submit" or "cancel"
}

func randomEvents(rng *rand.Rand, n int) []event {
	events := make([]event, 0, n)
	var resting []event
	for i := 0; i < n; i++ {
		if len(resting) > 0 && rng.Intn(4) == 0 {
			target := resting[rng.Intn(len(resting))]
			events = append(events, event{id: target.id, side: target.side, price: target.price, op: "cancel"})
			continue
		}
		e := event{
			id:    idFor(i),
			side:  Side(rng.Intn(2)),
			price: int64(95 + rng.Intn(11)),
			qty:   int64(1 + rng.Intn(5)),
			op:    "submit",
		}
		events = append(events, e)
		resting = append(resting, e)
	}
	return events
}

func idFor(i int) string {
	return "p-" + strconv.Itoa(i)
}

func TestPropertyNoCrossAndNoEmptyLevelsAfterEveryOp(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	book := newTestBook()
	events := randomEvents(rng, 200)

	for _, e := range events {
		switch e.op {
		case "submit":
			o, err := NewOrder(e.id, book.Market, e.side, e.price, e.qty, time.Now())
			require.NoError(t, err)
			_, err = book.Match(o)
			require.NoError(t, err)
		case "cancel":
			book.Cancel(e.id, e.side, e.price)
		}

		if book.bids.levelCount() > 0 && book.asks.levelCount() > 0 {
			assert.Less(t, book.BestBuy(), book.BestSell(), "no-cross invariant violated")
		}
		for _, lvl := range book.bids.sortedLevels() {
			assert.False(t, lvl.queue.Empty(), "empty price node left in bid tree")
		}
		for _, lvl := range book.asks.sortedLevels() {
			assert.False(t, lvl.queue.Empty(), "empty price node left in ask tree")
		}
	}
}

func TestPropertyExecutedQuantityNeverExceedsOrderQuantity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	book := newTestBook()
	events := randomEvents(rng, 200)
	for _, e := range events {
		if e.op != "submit" {
			continue
		}
		o, err := NewOrder(e.id, book.Market, e.side, e.price, e.qty, time.Now())
		require.NoError(t, err)
		_, err = book.Match(o)
		require.NoError(t, err)
		assert.LessOrEqual(t, o.ExecutedQuantity, o.Quantity)
		assert.GreaterOrEqual(t, o.ExecutedQuantity, int64(0))
	}
}

func TestPropertySerialDeterminismPerMarket(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	events := randomEvents(rng, 150)

	bookA := newTestBook()
	var tradesA []Trade
	subA := bookA.Trades().Subscribe(4096)

	bookB := newTestBook()
	var tradesB []Trade
	subB := bookB.Trades().Subscribe(4096)

	for _, e := range events {
		switch e.op {
		case "submit":
			oa, err := NewOrder(e.id, bookA.Market, e.side, e.price, e.qty, time.Now())
			require.NoError(t, err)
			_, err = bookA.Match(oa)
			require.NoError(t, err)

			ob, err := NewOrder(e.id, bookB.Market, e.side, e.price, e.qty, time.Now())
			require.NoError(t, err)
			_, err = bookB.Match(ob)
			require.NoError(t, err)
		case "cancel":
			bookA.Cancel(e.id, e.side, e.price)
			bookB.Cancel(e.id, e.side, e.price)
		}
	}

	drain(subA.C(), &tradesA)
	drain(subB.C(), &tradesB)

	require.Equal(t, len(tradesA), len(tradesB))
	for i := range tradesA {
		assert.Equal(t, tradesA[i].Price, tradesB[i].Price)
		assert.Equal(t, tradesA[i].Quantity, tradesB[i].Quantity)
		assert.Equal(t, tradesA[i].BuyOrderID, tradesB[i].BuyOrderID)
		assert.Equal(t, tradesA[i].SellOrderID, tradesB[i].SellOrderID)
	}
	assert.Equal(t, bookA.Snapshot(50), bookB.Snapshot(50))
}

func drain(ch <-chan Trade, out *[]Trade) {
	for {
		select {
		case t, ok := <-ch:
			if !ok {
				return
			}
			*out = append(*out, t)
		default:
			return
		}
	}
}
