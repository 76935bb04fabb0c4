package engine

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Trade is one match between an incoming order and a resting order. It
// always prices at the resting order's level — price improvement for
// the aggressor is a property of the matching loop, not something this
// struct has to express.
type Trade struct {
	Market      string
	BuyOrderID  string
	SellOrderID string
	Price       int64
	Quantity    int64
	ExecutedAt  time.Time
}

// BookView is the top-of-book snapshot broadcast after every mutation.
// Unlike BestBuy/BestSell, it never falls back across sides: a nil
// field means that side genuinely has no resting interest.
type BookView struct {
	Market  string
	BestBid *int64
	BestAsk *int64
}

// Level is one row of a depth snapshot.
type Level struct {
	Side               Side
	Price              int64
	CumulativeLeftover int64
	OrderCount         int
}

type orderLocation struct {
	side  Side
	price int64
}

// OrderBook holds one market's resting interest. It has exactly one
// mutator by contract — its owning MarketConsumer's loop — so none of
// its methods take a lock. Reads and writes are serialized upstream.
type OrderBook struct {
	Market    string
	bids      *bookSide
	asks      *bookSide
	locations map[string]orderLocation
	trades    *Hub[Trade]
	views     *Hub[BookView]
	logger    *logrus.Logger
}

func NewOrderBook(market string, logger *logrus.Logger) *OrderBook {
	return &OrderBook{
		Market:    market,
		bids:      newBookSide(true),
		asks:      newBookSide(false),
		locations: make(map[string]orderLocation),
		trades:    NewHub[Trade](),
		views:     NewHub[BookView](),
		logger:    logger,
	}
}

func (b *OrderBook) Trades() *Hub[Trade]   { return b.trades }
func (b *OrderBook) Views() *Hub[BookView] { return b.views }

func (b *OrderBook) sideFor(side Side) *bookSide {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// Match runs the price-time matching loop for an incoming order against
// the opposite side, then rests whatever is left on its own side. Every
// trade prices at the resting order's level: the aggressor gets price
// improvement, never the other way around.
func (b *OrderBook) Match(order *Order) (Outcome, error) {
	if order.Quantity <= 0 {
		return 0, InputInvalidf("order %s: quantity must be positive, got %d", order.ID, order.Quantity)
	}
	if order.Side != Buy && order.Side != Sell {
		return 0, InputInvalidf("order %s: unknown side %v", order.ID, order.Side)
	}
	order.State = Active

	var opposite, own *bookSide
	if order.Side == Buy {
		opposite, own = b.asks, b.bids
	} else {
		opposite, own = b.bids, b.asks
	}

	for order.Leftover() > 0 {
		level := opposite.peek()
		if level == nil {
			break
		}
		if order.Side == Buy && order.Price < level.price {
			break
		}
		if order.Side == Sell && order.Price > level.price {
			break
		}

		for order.Leftover() > 0 && !level.queue.Empty() {
			resting := level.queue.Front()
			tradeQty := order.Leftover()
			if resting.Leftover() < tradeQty {
				tradeQty = resting.Leftover()
			}

			order.Execute(tradeQty)
			resting.Execute(tradeQty)
			b.emitTrade(order, resting, level.price, tradeQty)

			if resting.Leftover() == 0 {
				resting.State = Fulfilled
				level.queue.PopFront()
				delete(b.locations, resting.ID)
			}
		}

		if level.queue.Empty() {
			opposite.removeTop()
		}
	}

	if order.Leftover() > 0 {
		b.insert(order, own)
		b.publishView()
		return Resting, nil
	}
	order.State = Fulfilled
	b.publishView()
	return Filled, nil
}

func (b *OrderBook) insert(order *Order, side *bookSide) {
	level := side.getOrCreate(order.Price)
	level.queue.PushBack(order)
	b.locations[order.ID] = orderLocation{side: order.Side, price: order.Price}
}

func (b *OrderBook) emitTrade(incoming, resting *Order, price, qty int64) {
	buyID, sellID := incoming.ID, resting.ID
	if incoming.Side == Sell {
		buyID, sellID = resting.ID, incoming.ID
	}
	b.trades.Broadcast(Trade{
		Market:      b.Market,
		BuyOrderID:  buyID,
		SellOrderID: sellID,
		Price:       price,
		Quantity:    qty,
		ExecutedAt:  time.Now(),
	})
	b.logger.WithFields(logrus.Fields{
		"order_id": incoming.ID,
		"market":   b.Market,
		"side":     incoming.Side.String(),
		"price":    price,
		"quantity": qty,
	}).Info("order matched")
}

func (b *OrderBook) publishView() {
	view := BookView{Market: b.Market}
	if lvl := b.bids.peek(); lvl != nil {
		view.BestBid = &lvl.price
	}
	if lvl := b.asks.peek(); lvl != nil {
		view.BestAsk = &lvl.price
	}
	b.views.Broadcast(view)
}

// Cancel removes a resting order by ID, provided it still sits at the
// side and price the caller claims. Returns false for anything it can't
// find — an already-filled or already-cancelled order is not an error,
// just a no-op.
func (b *OrderBook) Cancel(id string, side Side, price int64) bool {
	loc, ok := b.locations[id]
	if !ok || loc.side != side || loc.price != price {
		return false
	}
	bs := b.sideFor(side)
	level, ok := bs.levels[price]
	if !ok {
		return false
	}
	order := level.queue.RemoveByID(id)
	if order == nil {
		return false
	}
	order.State = Cancelled
	delete(b.locations, id)
	if level.queue.Empty() {
		bs.removeLevel(level)
	}
	b.publishView()
	return true
}

// BestBuy returns the best bid, falling back to the best ask if the bid
// side is empty, and 0 if both sides are empty. BookView carries the raw
// per-side state without this fallback.
func (b *OrderBook) BestBuy() int64 {
	if lvl := b.bids.peek(); lvl != nil {
		return lvl.price
	}
	if lvl := b.asks.peek(); lvl != nil {
		return lvl.price
	}
	return 0
}

// BestSell returns the best ask, falling back to the best bid if the ask
// side is empty.
func (b *OrderBook) BestSell() int64 {
	if lvl := b.asks.peek(); lvl != nil {
		return lvl.price
	}
	if lvl := b.bids.peek(); lvl != nil {
		return lvl.price
	}
	return 0
}

// Quote is the arithmetic mean of BestBuy and BestSell.
func (b *OrderBook) Quote() float64 {
	return float64(b.BestBuy()+b.BestSell()) / 2
}

// Spread is (best ask - best bid) / best ask, or 0 if either side is
// empty. Unlike BestBuy/BestSell this does not fall back across sides —
// a one-sided book has no spread to report.
func (b *OrderBook) Spread() float64 {
	bid := b.bids.peek()
	ask := b.asks.peek()
	if bid == nil || ask == nil || ask.price == 0 {
		return 0
	}
	return float64(ask.price-bid.price) / float64(ask.price)
}

// Snapshot returns up to depth price levels per side, best price first.
func (b *OrderBook) Snapshot(depth int) []Level {
	if depth <= 0 {
		depth = len(b.bids.heap) + len(b.asks.heap)
	}
	out := make([]Level, 0, depth*2)
	out = append(out, collectLevels(b.bids, depth)...)
	out = append(out, collectLevels(b.asks, depth)...)
	return out
}

func collectLevels(side *bookSide, depth int) []Level {
	ordered := side.sortedLevels()
	if depth < len(ordered) {
		ordered = ordered[:depth]
	}
	out := make([]Level, 0, len(ordered))
	for _, lvl := range ordered {
		out = append(out, Level{
			Side:               sideOf(lvl.isBid),
			Price:              lvl.price,
			CumulativeLeftover: lvl.queue.SumLeftover(),
			OrderCount:         lvl.queue.Len(),
		})
	}
	return out
}

func sideOf(isBid bool) Side {
	if isBid {
		return Buy
	}
	return Sell
}
