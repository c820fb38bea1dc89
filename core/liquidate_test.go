package core

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLiquidationEnv opens a position for alice at the edge of safety: 1 weth
// at $2000 backing $1000 of debt, health factor exactly 1.
func newLiquidationEnv(t *testing.T) *testEnv {
	env := newTestEnv(t)
	require.NoError(t, env.engine.DepositCollateralAndMintDsc(
		context.Background(), "alice", "weth", e18(1), e18(1000)))
	return env
}

func TestLiquidate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects zero debt to cover", func(t *testing.T) {
		env := newLiquidationEnv(t)
		_, err := env.engine.Liquidate(ctx, "bob", "alice", "weth", decimal.Zero)
		assert.ErrorIs(t, err, NeedsMoreThanZero)
	})

	t.Run("rejects unregistered collateral", func(t *testing.T) {
		env := newLiquidationEnv(t)
		_, err := env.engine.Liquidate(ctx, "bob", "alice", "doge", e18(100))
		assert.ErrorIs(t, err, TokenNotAllowed)
	})

	t.Run("healthy positions cannot be liquidated", func(t *testing.T) {
		env := newLiquidationEnv(t)
		_, err := env.engine.Liquidate(ctx, "bob", "alice", "weth", e18(100))
		assert.ErrorIs(t, err, HealthFactorOk)
	})

	t.Run("seizes collateral plus bonus", func(t *testing.T) {
		env := newLiquidationEnv(t)
		env.wethFeed.setUsdPrice(1800)
		env.dsc.balances["bob"] = e18(500)

		result, err := env.engine.Liquidate(ctx, "bob", "alice", "weth", e18(500))
		require.NoError(t, err)

		// $500 of weth at $1800 each, floored, plus a 10% bonus.
		assert.True(t, decimal.RequireFromString("277777777777777777").Equal(result.SeizedBase), result.SeizedBase.String())
		assert.True(t, decimal.RequireFromString("27777777777777777").Equal(result.Bonus), result.Bonus.String())
		assert.True(t, decimal.RequireFromString("305555555555555554").Equal(result.TotalSeized), result.TotalSeized.String())

		assert.True(t, decimal.New(9, 17).Equal(result.PreHealthFactor), result.PreHealthFactor.String())
		assert.True(t, decimal.RequireFromString("1250000000000000002").Equal(result.PostHealthFactor), result.PostHealthFactor.String())
		assert.True(t, result.PostHealthFactor.GreaterThan(result.PreHealthFactor))

		assert.Equal(t, "bob", result.Liquidator)
		assert.Equal(t, "alice", result.Account)
		assert.Equal(t, "weth", result.AssetID)
		assert.True(t, e18(500).Equal(result.DebtCovered))

		// The ledger reflects the repayment and the seizure, and the
		// liquidator's synthetic holdings were destroyed.
		assert.True(t, e18(500).Equal(env.engine.ledger.TotalDebt("alice")))
		remaining := e18(1).Sub(result.TotalSeized)
		assert.True(t, remaining.Equal(env.engine.CollateralBalance("alice", "weth")))
		assert.True(t, env.dsc.balances["bob"].IsZero())

		events := env.sink.Named(EventLiquidated)
		require.Len(t, events, 1)
		assert.Equal(t, "alice", events[0].Account)
		assert.Equal(t, "bob", events[0].To)
		assert.True(t, e18(500).Equal(events[0].Amount))
	})

	t.Run("requires strict improvement", func(t *testing.T) {
		env := newLiquidationEnv(t)
		env.wethFeed.setUsdPrice(1800)
		env.dsc.balances["bob"] = e18(1)

		// Covering one base unit of debt moves the floored health factor by
		// nothing at all.
		_, err := env.engine.Liquidate(ctx, "bob", "alice", "weth", decimal.New(1, 0))
		assert.ErrorIs(t, err, HealthFactorNotImproved)
		assert.True(t, e18(1000).Equal(env.engine.ledger.TotalDebt("alice")))
		assert.True(t, e18(1).Equal(env.engine.CollateralBalance("alice", "weth")))

		// The reverted liquidation moved nothing: no seizure left custody and
		// the liquidator's synthetic was not destroyed.
		assert.Empty(t, env.wethToken.outbound)
		assert.True(t, e18(1).Equal(env.dsc.balances["bob"]))
	})

	t.Run("seizure beyond holdings rolls back", func(t *testing.T) {
		env := newLiquidationEnv(t)
		env.wethFeed.setUsdPrice(900)
		env.dsc.balances["bob"] = e18(1000)

		// Covering the full debt would seize 1.22 weth; alice holds 1.
		_, err := env.engine.Liquidate(ctx, "bob", "alice", "weth", e18(1000))
		assert.ErrorIs(t, err, InsufficientCollateral)
		assert.True(t, e18(1000).Equal(env.engine.ledger.TotalDebt("alice")))
		assert.True(t, e18(1).Equal(env.engine.CollateralBalance("alice", "weth")))
		assert.Empty(t, env.sink.Named(EventLiquidated))
		assert.Empty(t, env.wethToken.outbound)
		assert.True(t, e18(1000).Equal(env.dsc.balances["bob"]))
	})

	t.Run("seizure transfer failure rolls back", func(t *testing.T) {
		env := newLiquidationEnv(t)
		env.wethFeed.setUsdPrice(1800)
		env.dsc.balances["bob"] = e18(500)
		env.wethToken.failTransfer = true

		_, err := env.engine.Liquidate(ctx, "bob", "alice", "weth", e18(500))
		assert.ErrorIs(t, err, TransferFailed)
		assert.True(t, e18(1000).Equal(env.engine.ledger.TotalDebt("alice")))
		assert.True(t, e18(1).Equal(env.engine.CollateralBalance("alice", "weth")))
	})

	t.Run("liquidator must end the call healthy", func(t *testing.T) {
		env := newLiquidationEnv(t)
		require.NoError(t, env.engine.DepositCollateralAndMintDsc(ctx, "bob", "weth", e18(1), e18(1000)))
		env.wethFeed.setUsdPrice(1800)

		// Both positions are under water; bob cannot rescue alice while his
		// own ratio is broken. Both records roll back together.
		_, err := env.engine.Liquidate(ctx, "bob", "alice", "weth", e18(500))
		assert.ErrorIs(t, err, BreaksHealthFactor)
		assert.True(t, e18(1000).Equal(env.engine.ledger.TotalDebt("alice")))
		assert.True(t, e18(1).Equal(env.engine.CollateralBalance("alice", "weth")))
		assert.True(t, e18(1000).Equal(env.engine.ledger.TotalDebt("bob")))
		assert.Empty(t, env.wethToken.outbound)
		assert.True(t, e18(1000).Equal(env.dsc.balances["bob"]))
	})
}
