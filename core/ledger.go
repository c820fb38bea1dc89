package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Ledger is the pure bookkeeping layer: per-account collateral balances and
// minted debt. No operation here enforces the health-factor invariant; that
// is the engine's responsibility layered on top.
type Ledger struct {
	clk       clock.Clock
	oracle    *PriceOracleAdapter
	positions map[string]*Position
}

func NewLedger(clk clock.Clock, oracle *PriceOracleAdapter) *Ledger {
	return &Ledger{
		clk:       clk,
		oracle:    oracle,
		positions: make(map[string]*Position),
	}
}

// Position finds or implicitly creates the account's record.
func (l *Ledger) Position(account string) *Position {
	position, ok := l.positions[account]
	if !ok {
		position = NewPosition(l.clk, account)
		l.positions[account] = position
	}
	return position
}

func (l *Ledger) Credit(account, assetId string, amount decimal.Decimal) {
	position := l.Position(account)
	position.Collateral[assetId] = position.CollateralBalance(assetId).Add(amount)
	position.UpdatedAt = l.clk.Now().Unix()
}

func (l *Ledger) Debit(account, assetId string, amount decimal.Decimal) error {
	position := l.Position(account)
	balance := position.CollateralBalance(assetId)
	if balance.LessThan(amount) {
		return errors.Wrapf(InsufficientCollateral, "account %s holds %s of %s, debit %s", account, balance, assetId, amount)
	}
	position.Collateral[assetId] = balance.Sub(amount)
	position.UpdatedAt = l.clk.Now().Unix()
	return nil
}

func (l *Ledger) IncreaseDebt(account string, amount decimal.Decimal) {
	position := l.Position(account)
	position.DebtMinted = position.DebtMinted.Add(amount)
	position.UpdatedAt = l.clk.Now().Unix()
}

func (l *Ledger) DecreaseDebt(account string, amount decimal.Decimal) error {
	position := l.Position(account)
	if position.DebtMinted.LessThan(amount) {
		return errors.Wrapf(InsufficientDebt, "account %s owes %s, decrease %s", account, position.DebtMinted, amount)
	}
	position.DebtMinted = position.DebtMinted.Sub(amount)
	position.UpdatedAt = l.clk.Now().Unix()
	return nil
}

func (l *Ledger) CollateralBalance(account, assetId string) decimal.Decimal {
	position, ok := l.positions[account]
	if !ok {
		return decimal.Zero
	}
	return position.CollateralBalance(assetId)
}

func (l *Ledger) TotalDebt(account string) decimal.Decimal {
	position, ok := l.positions[account]
	if !ok {
		return decimal.Zero
	}
	return position.DebtMinted
}

// TotalCollateralValue sums the USD value of every registered collateral the
// account holds. This is the only ledger operation that calls the oracle.
func (l *Ledger) TotalCollateralValue(ctx context.Context, account string) (decimal.Decimal, error) {
	position, ok := l.positions[account]
	if !ok {
		return decimal.Zero, nil
	}

	total := decimal.Zero
	for _, assetId := range l.oracle.AssetIDs() {
		amount := position.CollateralBalance(assetId)
		if amount.IsZero() {
			continue
		}
		value, err := l.oracle.UsdValue(ctx, assetId, amount)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(value)
	}
	return total, nil
}

// Positions returns clones of every account record, in no particular order.
func (l *Ledger) Positions() []*Position {
	positions := make([]*Position, 0, len(l.positions))
	for _, position := range l.positions {
		positions = append(positions, position.Clone())
	}
	return positions
}

// Snapshot clones the named account records so a failed operation can be
// rolled back. Accounts with no record yet snapshot as nil.
func (l *Ledger) Snapshot(accounts ...string) map[string]*Position {
	snapshot := make(map[string]*Position, len(accounts))
	for _, account := range accounts {
		if position, ok := l.positions[account]; ok {
			snapshot[account] = position.Clone()
		} else {
			snapshot[account] = nil
		}
	}
	return snapshot
}

// Restore puts the snapshotted accounts back exactly as they were.
func (l *Ledger) Restore(snapshot map[string]*Position) {
	for account, position := range snapshot {
		if position == nil {
			delete(l.positions, account)
			continue
		}
		l.positions[account] = position
	}
}
