package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	// PriceFeed is the external price source for one collateral asset.
	// LatestPrice reports the current price in base units of the feed's own
	// decimal precision, e.g. 2000_00000000 with decimals 8 for $2000.
	// Staleness policy is the feed's own responsibility.
	PriceFeed interface {
		LatestPrice(ctx context.Context) (price decimal.Decimal, decimals int32, err error)
	}

	// Token is a fungible collateral asset collaborator. The boolean results
	// mirror the asset contract's reported success; a false without error is
	// still a failure.
	Token interface {
		TransferFrom(ctx context.Context, from, to string, amount decimal.Decimal) (bool, error)
		Transfer(ctx context.Context, to string, amount decimal.Decimal) (bool, error)
		BalanceOf(ctx context.Context, owner string) (decimal.Decimal, error)
		Approve(ctx context.Context, spender string, amount decimal.Decimal) (bool, error)
	}

	// DebtToken is the synthetic unit's issuance authority.
	DebtToken interface {
		Mint(ctx context.Context, to string, amount decimal.Decimal) (bool, error)
		BurnFrom(ctx context.Context, from string, amount decimal.Decimal) error
		TransferOwnership(ctx context.Context, newOwner string) error
	}
)
