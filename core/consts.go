package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// All amounts, debt and USD values are 18-decimal fixed-point base units
// carried as integer-valued decimals.
var (
	Precision = decimal.New(1, 18)

	// Only LiquidationThreshold/LiquidationPrecision of nominal collateral
	// value counts toward solvency, i.e. positions must be 2x overcollateralized.
	LiquidationThreshold = decimal.NewFromInt(50)
	LiquidationPrecision = decimal.NewFromInt(100)

	// Extra collateral rewarded to the liquidator, per LiquidationPrecision.
	LiquidationBonus = decimal.NewFromInt(10)

	MinHealthFactor = Precision

	// Health factor reported for accounts with no debt.
	MaxHealthFactor = decimal.NewFromUint64(math.MaxUint64).Mul(Precision)
)

// Reported-price precision of the HTTP market feeds.
const FeedDecimals int32 = 8
