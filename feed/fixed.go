package feed

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/DomeLiquid/synth/core"
)

// FixedFeed reports a settable price, for tests and local bootstrap.
type FixedFeed struct {
	mu       sync.RWMutex
	price    decimal.Decimal
	decimals int32
}

// NewFixedFeed takes the price in base units of the given decimal precision,
// e.g. NewFixedFeed(decimal.New(2000, 8), 8) for $2000.
func NewFixedFeed(price decimal.Decimal, decimals int32) *FixedFeed {
	return &FixedFeed{price: price, decimals: decimals}
}

// NewUsdFeed takes a plain USD price and reports it at the standard feed
// precision.
func NewUsdFeed(usd decimal.Decimal) *FixedFeed {
	return NewFixedFeed(usd.Shift(core.FeedDecimals), core.FeedDecimals)
}

func (f *FixedFeed) SetPrice(price decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price = price
}

func (f *FixedFeed) SetUsdPrice(usd decimal.Decimal) {
	f.SetPrice(usd.Shift(f.decimals))
}

func (f *FixedFeed) LatestPrice(ctx context.Context) (decimal.Decimal, int32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.price, f.decimals, nil
}
