package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/DomeLiquid/synth/core"
)

// MarketQuote is the market-data API's asset payload, reduced to the fields
// the feed needs.
type MarketQuote struct {
	CoinID       string          `json:"coin_id"`
	Symbol       string          `json:"symbol"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MarketFeed reads the latest USD price of one coin from a market-data HTTP
// API and reports it at the standard 8-decimal feed precision.
type MarketFeed struct {
	rest   *resty.Client
	coinID string
}

func NewMarketFeed(endpoint, coinID string) *MarketFeed {
	return &MarketFeed{
		rest: resty.New().
			SetBaseURL(endpoint).
			SetTimeout(10 * time.Second),
		coinID: coinID,
	}
}

func (f *MarketFeed) LatestPrice(ctx context.Context) (decimal.Decimal, int32, error) {
	var quote MarketQuote
	resp, err := f.rest.R().
		SetContext(ctx).
		SetResult(&quote).
		Get(fmt.Sprintf("/markets/%s", f.coinID))
	if err != nil {
		return decimal.Zero, 0, errors.Wrapf(err, "fetch market quote %s", f.coinID)
	}
	if resp.IsError() {
		return decimal.Zero, 0, errors.Errorf("market api status %d for coin %s", resp.StatusCode(), f.coinID)
	}
	if !quote.CurrentPrice.IsPositive() {
		return decimal.Zero, 0, errors.Wrapf(core.ZeroPrice, "coin %s", f.coinID)
	}

	// current_price is a plain USD figure; lift it to feed base units.
	price := quote.CurrentPrice.Shift(core.FeedDecimals).Floor()
	return price, core.FeedDecimals, nil
}
