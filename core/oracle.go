package core

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	// CollateralType pairs an accepted collateral asset with its price feed
	// and transfer collaborator. Registered once at construction, immutable
	// afterward.
	CollateralType struct {
		AssetID string
		Feed    PriceFeed
		Token   Token
	}

	// PriceOracleAdapter owns the collateral registry and converts raw
	// collateral amounts to 18-decimal USD values and back, using each
	// feed's latest reported price.
	PriceOracleAdapter struct {
		registry map[string]*CollateralType
		order    []string
	}
)

func NewPriceOracleAdapter(assetIds []string, feeds []PriceFeed, tokens []Token) (*PriceOracleAdapter, error) {
	if len(assetIds) != len(feeds) || len(assetIds) != len(tokens) {
		return nil, MismatchedTokensAndPriceFeeds
	}

	registry := make(map[string]*CollateralType, len(assetIds))
	order := make([]string, 0, len(assetIds))
	for i, assetId := range assetIds {
		registry[assetId] = &CollateralType{
			AssetID: assetId,
			Feed:    feeds[i],
			Token:   tokens[i],
		}
		order = append(order, assetId)
	}

	return &PriceOracleAdapter{
		registry: registry,
		order:    order,
	}, nil
}

// Collateral resolves a registered collateral type.
func (o *PriceOracleAdapter) Collateral(assetId string) (*CollateralType, error) {
	collateral, ok := o.registry[assetId]
	if !ok {
		return nil, errors.Wrapf(TokenNotAllowed, "asset %s", assetId)
	}
	return collateral, nil
}

// AssetIDs returns the registered collateral identifiers in registration order.
func (o *PriceOracleAdapter) AssetIDs() []string {
	ids := make([]string, len(o.order))
	copy(ids, o.order)
	return ids
}

// UsdValue converts a raw collateral amount to its 18-decimal USD value at
// the feed's latest price. A zero amount is worth zero without a feed call.
func (o *PriceOracleAdapter) UsdValue(ctx context.Context, assetId string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() {
		if _, err := o.Collateral(assetId); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, nil
	}

	price, err := o.scaledPrice(ctx, assetId)
	if err != nil {
		return decimal.Zero, err
	}
	return mulDivFloor(amount, price, Precision), nil
}

// AmountFromUsd is the inverse of UsdValue: the raw amount of the given
// collateral worth the given USD value, floored. Used to size liquidation
// seizures from a USD-denominated debt figure.
func (o *PriceOracleAdapter) AmountFromUsd(ctx context.Context, assetId string, usdValue decimal.Decimal) (decimal.Decimal, error) {
	price, err := o.scaledPrice(ctx, assetId)
	if err != nil {
		return decimal.Zero, err
	}
	return mulDivFloor(usdValue, Precision, price), nil
}

// scaledPrice fetches the feed's latest price lifted to 18-decimal base units.
func (o *PriceOracleAdapter) scaledPrice(ctx context.Context, assetId string) (decimal.Decimal, error) {
	collateral, err := o.Collateral(assetId)
	if err != nil {
		return decimal.Zero, err
	}

	price, decimals, err := collateral.Feed.LatestPrice(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "latest price of %s", assetId)
	}
	if !price.IsPositive() {
		return decimal.Zero, errors.Wrapf(ZeroPrice, "asset %s", assetId)
	}

	return price.Mul(feedScale(decimals)), nil
}
