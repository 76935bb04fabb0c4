package bots

import (
	"context"
	"time"

	"github.com/dsirotkin256/matchcore/engine"
)

// SpreadCaptureBot maintains paired bids/asks and re-prices when the spread moves.
type SpreadCaptureBot struct {
	Interval       time.Duration
	Lifetime       time.Duration
	ThresholdTicks int64
	Quantity       int64
}

type pairedOrders struct {
	buyID     string
	buyPrice  int64
	sellID    string
	sellPrice int64
	anchorMid int64
	placedAt  time.Time
}

func NewSpreadCaptureBot() *SpreadCaptureBot {
	return &SpreadCaptureBot{
		Interval:       300 * time.Millisecond,
		Lifetime:       3 * time.Second,
		ThresholdTicks: 3,
		Quantity:       1,
	}
}

func (b *SpreadCaptureBot) Start(ctx context.Context, client EngineClient) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	var pair *pairedOrders
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			view, err := client.Snapshot(ctx)
			if err != nil {
				continue
			}
			pair = b.refreshPair(ctx, client, view, pair)
		}
	}
}

func (b *SpreadCaptureBot) refreshPair(ctx context.Context, client EngineClient, view engine.BookView, pair *pairedOrders) *pairedOrders {
	if view.BestBid == nil || view.BestAsk == nil {
		return b.cancelPair(ctx, client, pair)
	}
	bidPrice := *view.BestBid
	askPrice := *view.BestAsk
	mid := (bidPrice + askPrice) / 2
	threshold := b.ThresholdTicks * client.TickSize()

	if pair != nil {
		if time.Since(pair.placedAt) > b.Lifetime {
			return b.cancelPair(ctx, client, pair)
		}
		if absInt64(mid-pair.anchorMid) >= threshold {
			pair = b.cancelPair(ctx, client, pair)
		}
	}

	if pair != nil {
		return pair
	}

	buyPrice := bidPrice
	if mid-client.TickSize() > 0 {
		buyPrice = mid - client.TickSize()
	}
	sellPrice := askPrice
	if sellPrice <= buyPrice {
		sellPrice = buyPrice + client.TickSize()
	}

	buyID, err := client.SubmitOrder(ctx, engine.Buy, buyPrice, b.Quantity)
	if err != nil {
		return pair
	}
	sellID, err := client.SubmitOrder(ctx, engine.Sell, sellPrice, b.Quantity)
	if err != nil {
		_ = client.CancelOrder(ctx, buyID, engine.Buy, buyPrice)
		return pair
	}

	return &pairedOrders{buyID: buyID, buyPrice: buyPrice, sellID: sellID, sellPrice: sellPrice, anchorMid: mid, placedAt: time.Now()}
}

func (b *SpreadCaptureBot) cancelPair(ctx context.Context, client EngineClient, pair *pairedOrders) *pairedOrders {
	if pair == nil {
		return nil
	}
	_ = client.CancelOrder(ctx, pair.buyID, engine.Buy, pair.buyPrice)
	_ = client.CancelOrder(ctx, pair.sellID, engine.Sell, pair.sellPrice)
	return nil
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
