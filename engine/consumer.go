package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// statsInterval is how often a consumer posts its queue depth and last
// match latency, mirroring order_router.hpp's 250ms stats log.
const statsInterval = 250 * time.Millisecond

type requestKind int

const (
	reqSubmit requestKind = iota
	reqCancel
	reqQuery
)

type queryKind int

const (
	queryBestBuy queryKind = iota
	queryBestSell
	queryQuote
	querySpread
	querySnapshot
)

type matchResponse struct {
	outcome Outcome
	err     error
}

type queryResponse struct {
	bestBuy  int64
	bestSell int64
	quote    float64
	spread   float64
	snapshot []Level
}

// workItem is the generalized form of the teacher's per-book bookRequest,
// moved up to the consumer so one request can name which of the
// consumer's owned books it targets.
type workItem struct {
	kind   requestKind
	market string

	order *Order

	cancelID    string
	cancelSide  Side
	cancelPrice int64

	query queryKind
	depth int

	respOutcome chan matchResponse
	respCancel  chan bool
	respQuery   chan queryResponse
}

// TradeObserver is notified of every trade across every book a consumer
// owns, used to drive telemetry without consuming the per-book trade hub
// that ingress websocket streams also subscribe to.
type TradeObserver interface {
	OnTrade(market string, price, quantity int64)
}

// QueueDepthObserver is notified of the consumer's queue depth once every
// statsInterval, labelled with the market of the last processed request.
type QueueDepthObserver interface {
	OnQueueDepth(market string, depth int)
}

// MatchLatencyObserver is notified of how long a request took to process.
type MatchLatencyObserver interface {
	OnMatch(market string, latency time.Duration)
}

// Hooks bundles the telemetry callbacks a MarketConsumer reports through.
// Any field may be nil.
type Hooks struct {
	Trade        TradeObserver
	QueueDepth   QueueDepthObserver
	MatchLatency MatchLatencyObserver
}

// MarketConsumer owns a fixed set of OrderBooks and is their only
// mutator: every Submit/Cancel/Query call enqueues a request and blocks
// on a response channel rather than touching a book directly, so the
// single-writer discipline holds regardless of how many goroutines call
// into the consumer concurrently.
type MarketConsumer struct {
	id         int
	books      map[string]*OrderBook
	queue      *mpscQueue
	shouldExit int32
	logger     *logrus.Logger
	hooks      Hooks

	statsMu       sync.Mutex
	lastMarket    string
	lastLatencyNs int64
}

func NewMarketConsumer(id int, logger *logrus.Logger, hooks Hooks) *MarketConsumer {
	return &MarketConsumer{
		id:     id,
		books:  make(map[string]*OrderBook),
		queue:  newMPSCQueue(),
		logger: logger,
		hooks:  hooks,
	}
}

// RegisterMarket creates the book for a market this consumer owns and
// wires its trade hub into telemetry. Only safe to call before Run.
func (c *MarketConsumer) RegisterMarket(market string) *OrderBook {
	book := NewOrderBook(market, c.logger)
	c.books[market] = book
	if c.hooks.Trade != nil {
		sub := book.Trades().Subscribe(64)
		go func() {
			for trade := range sub.C() {
				c.hooks.Trade.OnTrade(trade.Market, trade.Price, trade.Quantity)
			}
		}()
	}
	return book
}

func (c *MarketConsumer) Book(market string) (*OrderBook, bool) {
	b, ok := c.books[market]
	return b, ok
}

func (c *MarketConsumer) exiting() bool {
	return atomic.LoadInt32(&c.shouldExit) == 1
}

// Shutdown tells the consumer to stop once its queue drains. It does not
// wait for Run to return.
func (c *MarketConsumer) Shutdown() {
	atomic.StoreInt32(&c.shouldExit, 1)
	c.queue.wake()
}

// Run drains the consumer's queue until shutdown. It is meant to run in
// its own goroutine, one per consumer, for the life of the process. A
// ticker posts this consumer's queue depth and last match latency every
// statsInterval, the same cadence the original router logged stats at —
// gating every report on wall-clock time rather than on every processed
// item, since a hot consumer can process thousands of items between
// reports that anyone actually needs to see.
func (c *MarketConsumer) Run() {
	ticker := time.NewTicker(statsInterval)
	done := make(chan struct{})
	go c.reportStats(ticker.C, done)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		item, ok := c.queue.pop(c.exiting)
		if !ok {
			return
		}
		c.process(item)
	}
}

func (c *MarketConsumer) reportStats(tick <-chan time.Time, done <-chan struct{}) {
	for {
		select {
		case <-tick:
			c.emitStats()
		case <-done:
			return
		}
	}
}

func (c *MarketConsumer) emitStats() {
	c.statsMu.Lock()
	market, latencyNs := c.lastMarket, c.lastLatencyNs
	c.statsMu.Unlock()
	if market == "" {
		return
	}

	depth := c.queue.len()
	if c.hooks.MatchLatency != nil {
		c.hooks.MatchLatency.OnMatch(market, time.Duration(latencyNs))
	}
	if c.hooks.QueueDepth != nil {
		c.hooks.QueueDepth.OnQueueDepth(market, depth)
	}
	c.logger.WithFields(logrus.Fields{
		"consumer":    c.id,
		"market":      market,
		"queue_depth": depth,
		"latency_ns":  latencyNs,
	}).Debug("consumer stats")
}

func (c *MarketConsumer) process(item workItem) {
	start := time.Now()
	book, ok := c.books[item.market]
	if !ok {
		c.replyUnknownMarket(item)
		return
	}

	switch item.kind {
	case reqSubmit:
		outcome, err := book.Match(item.order)
		item.respOutcome <- matchResponse{outcome: outcome, err: err}
	case reqCancel:
		item.respCancel <- book.Cancel(item.cancelID, item.cancelSide, item.cancelPrice)
	case reqQuery:
		item.respQuery <- c.runQuery(book, item.query, item.depth)
	}

	c.statsMu.Lock()
	c.lastMarket = item.market
	c.lastLatencyNs = int64(time.Since(start))
	c.statsMu.Unlock()
}

func (c *MarketConsumer) replyUnknownMarket(item workItem) {
	err := NotFoundf("unknown market %q", item.market)
	switch item.kind {
	case reqSubmit:
		item.respOutcome <- matchResponse{err: err}
	case reqCancel:
		item.respCancel <- false
	case reqQuery:
		item.respQuery <- queryResponse{}
	}
}

func (c *MarketConsumer) runQuery(book *OrderBook, kind queryKind, depth int) queryResponse {
	switch kind {
	case queryBestBuy:
		return queryResponse{bestBuy: book.BestBuy()}
	case queryBestSell:
		return queryResponse{bestSell: book.BestSell()}
	case queryQuote:
		return queryResponse{quote: book.Quote()}
	case querySpread:
		return queryResponse{spread: book.Spread()}
	case querySnapshot:
		return queryResponse{snapshot: book.Snapshot(depth)}
	default:
		return queryResponse{}
	}
}

// Submit enqueues an order for matching and blocks for the result. If
// the consumer has already been told to shut down, pushing still
// succeeds — the item drains before the loop exits — but a consumer
// that has fully stopped (Run returned) will leave the caller blocked
// forever, so callers must not Submit after confirming shutdown finished.
func (c *MarketConsumer) Submit(order *Order) (Outcome, error) {
	resp := make(chan matchResponse, 1)
	c.queue.push(workItem{kind: reqSubmit, market: order.Market, order: order, respOutcome: resp})
	r := <-resp
	return r.outcome, r.err
}

func (c *MarketConsumer) Cancel(market, id string, side Side, price int64) bool {
	resp := make(chan bool, 1)
	c.queue.push(workItem{kind: reqCancel, market: market, cancelID: id, cancelSide: side, cancelPrice: price, respCancel: resp})
	return <-resp
}

func (c *MarketConsumer) query(market string, kind queryKind, depth int) queryResponse {
	resp := make(chan queryResponse, 1)
	c.queue.push(workItem{kind: reqQuery, market: market, query: kind, depth: depth, respQuery: resp})
	return <-resp
}
