package engine

import "time"

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// State tracks an order's lifecycle. Price and quantity never change once
// an order is created — only State and ExecutedQuantity move.
type State int

const (
	Inactive State = iota
	Active
	Fulfilled
	Cancelled
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "INACTIVE"
	case Active:
		return "ACTIVE"
	case Fulfilled:
		return "FULFILLED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// TIF is the time-in-force policy for an order. GTC is the only policy
// this core implements; the field exists so ingress has somewhere to put
// a value without the engine hardcoding the assumption in every signature.
type TIF int

const (
	GTC TIF = iota
)

// Outcome is what happened to an order submitted to a book.
type Outcome int

const (
	Resting Outcome = iota
	Filled
)

// Order is a single resting or incoming instruction against one market.
// Price and Quantity are integer ticks, scaled at the ingress boundary so
// every comparison inside the engine is exact integer arithmetic.
type Order struct {
	ID               string
	Market           string
	Side             Side
	Price            int64
	Quantity         int64
	ExecutedQuantity int64
	State            State
	TIF              TIF
	CreatedAt        time.Time
}

// NewOrder validates and builds an Order. It does not touch a book —
// callers route the result through a Dispatcher or MarketConsumer.
func NewOrder(id, market string, side Side, price, quantity int64, createdAt time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, InputInvalidf("order %s: quantity must be positive, got %d", id, quantity)
	}
	if price <= 0 {
		return nil, InputInvalidf("order %s: price must be positive, got %d", id, price)
	}
	if side != Buy && side != Sell {
		return nil, InputInvalidf("order %s: unknown side %v", id, side)
	}
	if market == "" {
		return nil, InputInvalidf("order %s: market must not be empty", id)
	}
	return &Order{
		ID:        id,
		Market:    market,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		State:     Inactive,
		TIF:       GTC,
		CreatedAt: createdAt,
	}, nil
}

// Leftover is the quantity still unfilled.
func (o *Order) Leftover() int64 {
	return o.Quantity - o.ExecutedQuantity
}

// Execute records a fill of qty against this order. It never lets an
// order execute past its own quantity — that would mean a bug upstream
// in the matching loop, not a recoverable input error.
func (o *Order) Execute(qty int64) {
	if qty <= 0 {
		return
	}
	o.ExecutedQuantity += qty
	if o.ExecutedQuantity > o.Quantity {
		invariantViolation("order %s: executed quantity %d exceeds quantity %d", o.ID, o.ExecutedQuantity, o.Quantity)
	}
}
