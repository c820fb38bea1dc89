package core

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CalcHealthFactor derives the solvency ratio from a total collateral value
// and minted debt, both in 18-decimal base units. An account with no debt
// can never be unsafe and reports MaxHealthFactor.
func CalcHealthFactor(collateralValue, debt decimal.Decimal) decimal.Decimal {
	if debt.IsZero() {
		return MaxHealthFactor
	}
	adjusted := mulDivFloor(collateralValue, LiquidationThreshold, LiquidationPrecision)
	return mulDivFloor(adjusted, Precision, debt)
}

// HealthFactor computes the account's current solvency ratio from ledger
// state at the feeds' latest prices.
func (e *Engine) HealthFactor(ctx context.Context, account string) (decimal.Decimal, error) {
	debt := e.ledger.TotalDebt(account)
	if debt.IsZero() {
		return MaxHealthFactor, nil
	}
	collateralValue, err := e.ledger.TotalCollateralValue(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	return CalcHealthFactor(collateralValue, debt), nil
}

// assertHealthy fails with BreaksHealthFactor when the account's ratio is
// below minimum. Called after every balance change that can reduce the
// account's safety margin, before the operation returns.
func (e *Engine) assertHealthy(ctx context.Context, account string) error {
	healthFactor, err := e.HealthFactor(ctx, account)
	if err != nil {
		return err
	}
	if healthFactor.LessThan(MinHealthFactor) {
		return errors.Wrapf(BreaksHealthFactor, "account %s health factor %s", account, healthFactor)
	}
	return nil
}
