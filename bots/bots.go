// Package bots drives simulated trading agents against a single market
// through a Dispatcher, for local load testing and demos.
package bots

import (
	"context"

	"github.com/dsirotkin256/matchcore/engine"
)

// Bot represents a trading agent that can be run under a supervisor.
type Bot interface {
	Start(ctx context.Context, client EngineClient)
}

// EngineClient abstracts the minimal surface bots need from the engine,
// scoped to one market behind a Dispatcher.
type EngineClient interface {
	SubmitOrder(ctx context.Context, side engine.Side, price, quantity int64) (string, error)
	CancelOrder(ctx context.Context, orderID string, side engine.Side, price int64) error
	Snapshot(ctx context.Context) (engine.BookView, error)
	Trades() <-chan engine.Trade
	Market() string
	TickSize() int64
	NextID(prefix string) string
	OwnsOrder(id string) bool
}
