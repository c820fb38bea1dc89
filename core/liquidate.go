package core

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// LiquidateResult reports a completed liquidation: what was repaid, what was
// seized, and the liquidatee's health factor before and after.
type LiquidateResult struct {
	Liquidator string `json:"liquidator"`
	Account    string `json:"account"`
	AssetID    string `json:"assetId"`

	DebtCovered decimal.Decimal `json:"debtCovered"`
	SeizedBase  decimal.Decimal `json:"seizedBase"`
	Bonus       decimal.Decimal `json:"bonus"`
	TotalSeized decimal.Decimal `json:"totalSeized"`

	PreHealthFactor  decimal.Decimal `json:"preHealthFactor"`
	PostHealthFactor decimal.Decimal `json:"postHealthFactor"`
}

// Liquidate lets a third party repay debtToCover of an unsafe account's debt
// in exchange for the equivalent collateral plus a bonus. The liquidatee's
// health factor must strictly improve, and the liquidator must itself end
// the call healthy; otherwise every effect is rolled back.
func (e *Engine) Liquidate(ctx context.Context, liquidator, account, assetId string, debtToCover decimal.Decimal) (*LiquidateResult, error) {
	if !debtToCover.IsPositive() {
		return nil, NeedsMoreThanZero
	}
	collateral, err := e.oracle.Collateral(assetId)
	if err != nil {
		return nil, err
	}

	preHealthFactor, err := e.HealthFactor(ctx, account)
	if err != nil {
		return nil, err
	}
	if preHealthFactor.GreaterThanOrEqual(MinHealthFactor) {
		return nil, errors.Wrapf(HealthFactorOk, "account %s health factor %s", account, preHealthFactor)
	}

	seizedBase, err := e.oracle.AmountFromUsd(ctx, assetId, debtToCover)
	if err != nil {
		return nil, err
	}
	bonus := mulDivFloor(seizedBase, LiquidationBonus, LiquidationPrecision)
	totalSeized := seizedBase.Add(bonus)

	// The liquidator may hold a position of its own; both records roll back
	// together on failure. All ledger mutations and both health checks run
	// before the irreversible collaborator calls.
	snapshot := e.ledger.Snapshot(account, liquidator)

	if err := e.ledger.Debit(account, assetId, totalSeized); err != nil {
		e.ledger.Restore(snapshot)
		return nil, err
	}
	if err := e.ledger.DecreaseDebt(account, debtToCover); err != nil {
		e.ledger.Restore(snapshot)
		return nil, err
	}

	postHealthFactor, err := e.HealthFactor(ctx, account)
	if err != nil {
		e.ledger.Restore(snapshot)
		return nil, err
	}
	if !postHealthFactor.GreaterThan(preHealthFactor) {
		e.ledger.Restore(snapshot)
		return nil, errors.Wrapf(HealthFactorNotImproved, "account %s health factor %s -> %s", account, preHealthFactor, postHealthFactor)
	}

	if err := e.assertHealthy(ctx, liquidator); err != nil {
		e.ledger.Restore(snapshot)
		return nil, err
	}

	// The liquidator's synthetic is destroyed before the seized collateral
	// leaves custody.
	if err := e.dsc.BurnFrom(ctx, liquidator, debtToCover); err != nil {
		e.ledger.Restore(snapshot)
		return nil, errors.Wrapf(err, "burn %s from %s", debtToCover, liquidator)
	}

	ok, err := collateral.Token.Transfer(ctx, liquidator, totalSeized)
	if err != nil {
		e.ledger.Restore(snapshot)
		return nil, errors.Wrapf(TransferFailed, "seize %s of %s for %s: %v", totalSeized, assetId, liquidator, err)
	}
	if !ok {
		e.ledger.Restore(snapshot)
		return nil, errors.Wrapf(TransferFailed, "seize %s of %s for %s", totalSeized, assetId, liquidator)
	}

	e.commit(ctx, account, ActionLiquidate, EventLiquidated, OperationDetail{
		AssetID:      assetId,
		Amount:       debtToCover,
		Counterparty: liquidator,
	})

	e.log.Info().
		Str("liquidator", liquidator).
		Str("account", account).
		Str("asset", assetId).
		Str("debtCovered", debtToCover.String()).
		Str("totalSeized", totalSeized.String()).
		Str("preHealthFactor", preHealthFactor.String()).
		Str("postHealthFactor", postHealthFactor.String()).
		Msg("position liquidated")

	return &LiquidateResult{
		Liquidator:       liquidator,
		Account:          account,
		AssetID:          assetId,
		DebtCovered:      debtToCover,
		SeizedBase:       seizedBase,
		Bonus:            bonus,
		TotalSeized:      totalSeized,
		PreHealthFactor:  preHealthFactor,
		PostHealthFactor: postHealthFactor,
	}, nil
}
