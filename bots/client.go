package bots

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dsirotkin256/matchcore/engine"
)

// ThrottledClient adapts a single market behind a Dispatcher to the
// EngineClient surface bots expect, rate-limiting submissions to at most
// one per tick on the supplied throttle channel and tracking which order
// IDs this client itself originated (for PnL attribution).
type ThrottledClient struct {
	dispatcher *engine.Dispatcher
	market     string
	tickSize   int64
	throttle   <-chan time.Time

	ids    *idGenerator
	mu     sync.Mutex
	owned  map[string]struct{}
	trades chan engine.Trade
}

func NewThrottledClient(dispatcher *engine.Dispatcher, market string, tickSize int64, throttle <-chan time.Time) *ThrottledClient {
	c := &ThrottledClient{
		dispatcher: dispatcher,
		market:     market,
		tickSize:   tickSize,
		throttle:   throttle,
		ids:        newIDGenerator(),
		owned:      make(map[string]struct{}),
		trades:     make(chan engine.Trade, 256),
	}

	if hub, ok := dispatcher.TradesHub(market); ok {
		sub := hub.Subscribe(256)
		go func() {
			for trade := range sub.C() {
				c.trades <- trade
			}
		}()
	}
	return c
}

func (c *ThrottledClient) SubmitOrder(ctx context.Context, side engine.Side, price, quantity int64) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.throttle:
	}

	id := c.NextID(sidePrefix(side))
	order, err := engine.NewOrder(id, c.market, side, price, quantity, time.Now())
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.owned[id] = struct{}{}
	c.mu.Unlock()

	_, err = c.dispatcher.Send(order)
	return id, err
}

func (c *ThrottledClient) CancelOrder(ctx context.Context, orderID string, side engine.Side, price int64) error {
	_, err := c.dispatcher.Cancel(c.market, orderID, side, price)
	return err
}

func (c *ThrottledClient) Snapshot(ctx context.Context) (engine.BookView, error) {
	levels, err := c.dispatcher.Snapshot(c.market, 1)
	if err != nil {
		return engine.BookView{}, err
	}
	view := engine.BookView{Market: c.market}
	for _, lvl := range levels {
		price := lvl.Price
		if lvl.Side == engine.Buy {
			view.BestBid = &price
		} else {
			view.BestAsk = &price
		}
	}
	return view, nil
}

func (c *ThrottledClient) Trades() <-chan engine.Trade { return c.trades }

func (c *ThrottledClient) Market() string  { return c.market }
func (c *ThrottledClient) TickSize() int64 { return c.tickSize }

func (c *ThrottledClient) NextID(prefix string) string {
	return c.ids.next(prefix)
}

func (c *ThrottledClient) OwnsOrder(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.owned[id]
	return ok
}

func sidePrefix(side engine.Side) string {
	if side == engine.Buy {
		return "bid"
	}
	return "ask"
}

// idGenerator is a process-local, mutex-guarded sequence — every bot
// under a Supervisor shares one client and calls NextID from its own
// goroutine.
type idGenerator struct {
	mu  sync.Mutex
	seq int64
}

func newIDGenerator() *idGenerator { return &idGenerator{} }

func (g *idGenerator) next(prefix string) string {
	g.mu.Lock()
	g.seq++
	n := g.seq
	g.mu.Unlock()
	return prefix + "-" + strconv.FormatInt(n, 10)
}
