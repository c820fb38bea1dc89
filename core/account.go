package core

import (
	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
)

// Position is the per-account ledger record: deposited collateral per asset
// and the total minted debt. Created implicitly on first use and never
// destroyed; balances may return to zero but the record persists.
type Position struct {
	Account string `json:"account"`

	Collateral map[string]decimal.Decimal `json:"collateral"`
	DebtMinted decimal.Decimal            `json:"debtMinted"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

func NewPosition(clk clock.Clock, account string) *Position {
	return &Position{
		Account:    account,
		Collateral: make(map[string]decimal.Decimal),
		DebtMinted: decimal.Zero,
		CreatedAt:  clk.Now().Unix(),
		UpdatedAt:  clk.Now().Unix(),
	}
}

func (p *Position) Clone() *Position {
	collateral := make(map[string]decimal.Decimal, len(p.Collateral))
	for assetId, amount := range p.Collateral {
		collateral[assetId] = amount
	}
	return &Position{
		Account:    p.Account,
		Collateral: collateral,
		DebtMinted: p.DebtMinted,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (p *Position) CollateralBalance(assetId string) decimal.Decimal {
	amount, ok := p.Collateral[assetId]
	if !ok {
		return decimal.Zero
	}
	return amount
}

func (p *Position) IsEmpty() bool {
	if !p.DebtMinted.IsZero() {
		return false
	}
	for _, amount := range p.Collateral {
		if !amount.IsZero() {
			return false
		}
	}
	return true
}
