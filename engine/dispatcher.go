package engine

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Dispatcher assigns every market to exactly one of a fixed pool of
// MarketConsumers and routes requests to the consumer that owns the
// target market. The pool size is fixed at construction — markets are
// never rebalanced across consumers at runtime.
type Dispatcher struct {
	consumers []*MarketConsumer
	registry  map[string]*MarketConsumer
	aliases   map[string]string
}

// NewDispatcher builds a consumer pool of the given size (defaulting to
// runtime.NumCPU()) and assigns markets across it round-robin, handing
// out the remainder before the even split — the same order the original
// router used so smaller deployments don't starve the last core.
func NewDispatcher(markets []string, workers int, logger *logrus.Logger, hooks Hooks) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	consumers := make([]*MarketConsumer, workers)
	for i := range consumers {
		consumers[i] = NewMarketConsumer(i, logger, hooks)
	}
	d := &Dispatcher{
		consumers: consumers,
		registry:  make(map[string]*MarketConsumer),
		aliases:   make(map[string]string),
	}
	d.assign(markets)
	return d
}

func normalizeMarket(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// assign hands markets to consumers round-robin, giving each consumer
// its remainder share first and then an even perCore share. This mirrors
// the router's constructor: markets.size() % cores go out first so a
// round count always lands evenly regardless of how many markets there are.
func (d *Dispatcher) assign(markets []string) {
	cores := len(d.consumers)
	if cores == 0 {
		return
	}
	remaining := append([]string(nil), markets...)
	perCore := len(remaining) / cores
	remainder := len(remaining) % cores

	for core := 0; core < cores; core++ {
		consumer := d.consumers[core]
		if remainder > 0 && len(remaining) > 0 {
			market := remaining[len(remaining)-1]
			remaining = remaining[:len(remaining)-1]
			d.register(market, consumer)
			remainder--
		}
		for i := 0; i < perCore && len(remaining) > 0; i++ {
			market := remaining[len(remaining)-1]
			remaining = remaining[:len(remaining)-1]
			d.register(market, consumer)
		}
	}
}

func (d *Dispatcher) register(market string, consumer *MarketConsumer) {
	consumer.RegisterMarket(market)
	d.registry[market] = consumer
	d.aliases[normalizeMarket(market)] = market
}

// RegisteredMarketName resolves a case/whitespace-insensitive alias to
// the canonical market name the dispatcher registered it under.
func (d *Dispatcher) RegisteredMarketName(alias string) (string, bool) {
	name, ok := d.aliases[normalizeMarket(alias)]
	return name, ok
}

// Start launches every consumer's processing loop. Call once, after all
// markets are registered.
func (d *Dispatcher) Start() {
	for _, c := range d.consumers {
		go c.Run()
	}
}

// Shutdown asks every consumer to stop once its queue drains. It does
// not block for the consumers to actually exit.
func (d *Dispatcher) Shutdown() {
	for _, c := range d.consumers {
		c.Shutdown()
	}
}

func (d *Dispatcher) consumerFor(market string) (*MarketConsumer, bool) {
	c, ok := d.registry[market]
	return c, ok
}

func (d *Dispatcher) Send(order *Order) (Outcome, error) {
	consumer, ok := d.consumerFor(order.Market)
	if !ok {
		return 0, NotFoundf("unknown market %q", order.Market)
	}
	return consumer.Submit(order)
}

func (d *Dispatcher) Cancel(market, id string, side Side, price int64) (bool, error) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return false, NotFoundf("unknown market %q", market)
	}
	return consumer.Cancel(market, id, side, price), nil
}

func (d *Dispatcher) BestBuy(market string) (int64, error) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return 0, NotFoundf("unknown market %q", market)
	}
	return consumer.query(market, queryBestBuy, 0).bestBuy, nil
}

func (d *Dispatcher) BestSell(market string) (int64, error) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return 0, NotFoundf("unknown market %q", market)
	}
	return consumer.query(market, queryBestSell, 0).bestSell, nil
}

func (d *Dispatcher) Quote(market string) (float64, error) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return 0, NotFoundf("unknown market %q", market)
	}
	return consumer.query(market, queryQuote, 0).quote, nil
}

func (d *Dispatcher) Spread(market string) (float64, error) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return 0, NotFoundf("unknown market %q", market)
	}
	return consumer.query(market, querySpread, 0).spread, nil
}

func (d *Dispatcher) Snapshot(market string, depth int) ([]Level, error) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return nil, NotFoundf("unknown market %q", market)
	}
	return consumer.query(market, querySnapshot, depth).snapshot, nil
}

// TradesHub returns the trade broadcast hub for a market's book, for
// ingress websocket streaming to subscribe to.
func (d *Dispatcher) TradesHub(market string) (*Hub[Trade], bool) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return nil, false
	}
	book, ok := consumer.Book(market)
	if !ok {
		return nil, false
	}
	return book.Trades(), true
}

// ViewsHub returns the top-of-book broadcast hub for a market's book.
func (d *Dispatcher) ViewsHub(market string) (*Hub[BookView], bool) {
	consumer, ok := d.consumerFor(market)
	if !ok {
		return nil, false
	}
	book, ok := consumer.Book(market)
	if !ok {
		return nil, false
	}
	return book.Views(), true
}
