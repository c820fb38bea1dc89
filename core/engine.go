package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Engine orchestrates deposit, mint, redeem and burn against the ledger and
// the external collaborators. Every mutating operation follows the same
// protocol: mutate the ledger, assert the health invariants, and only then
// call the external collaborators, rolling the ledger back on any failure.
// Collaborator calls are irreversible, so no assertion may run after one; a
// collaborator's own failure implies it moved nothing. The ledger-before-
// collaborator ordering is also the reentrancy discipline: a collaborator
// calling back into the engine observes committed, self-consistent balances
// rather than a stale pre-mutation view.
type Engine struct {
	clk   clock.Clock
	log   Log
	vault string

	oracle *PriceOracleAdapter
	ledger *Ledger
	dsc    DebtToken

	sink       EventSink
	operations OperationStore
}

type Option func(e *Engine)

func WithClock(clk clock.Clock) Option {
	return func(e *Engine) { e.clk = clk }
}

func WithLog(log Log) Option {
	return func(e *Engine) { e.log = log }
}

// WithVault overrides the custody account collateral is pulled into.
func WithVault(vault string) Option {
	return func(e *Engine) { e.vault = vault }
}

func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithOperationStore(store OperationStore) Option {
	return func(e *Engine) { e.operations = store }
}

// NewEngine registers the collateral set. assetIds, feeds and tokens are
// index-aligned; a length mismatch fails before any registration occurs.
func NewEngine(assetIds []string, feeds []PriceFeed, tokens []Token, dsc DebtToken, opts ...Option) (*Engine, error) {
	oracle, err := NewPriceOracleAdapter(assetIds, feeds, tokens)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clk:    clock.New(),
		log:    NopLog(),
		vault:  "vault",
		oracle: oracle,
		dsc:    dsc,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ledger = NewLedger(e.clk, oracle)
	return e, nil
}

// DepositCollateral pulls amount of the given collateral from the account
// into custody and credits the ledger. Deposit can only improve solvency,
// so no health check runs.
func (e *Engine) DepositCollateral(ctx context.Context, account, assetId string, amount decimal.Decimal) error {
	snapshot := e.ledger.Snapshot(account)
	if err := e.depositCollateral(ctx, account, assetId, amount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}

	e.commit(ctx, account, ActionDeposit, EventCollateralDeposited, OperationDetail{
		AssetID: assetId,
		Amount:  amount,
	})
	return nil
}

// MintDsc issues amount of the synthetic unit against the account's
// collateral. The whole mint reverts if the resulting position is unhealthy.
func (e *Engine) MintDsc(ctx context.Context, account string, amount decimal.Decimal) error {
	snapshot := e.ledger.Snapshot(account)
	if err := e.mintDsc(ctx, account, amount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}

	e.commit(ctx, account, ActionMint, EventDscMinted, OperationDetail{
		Amount: amount,
	})
	return nil
}

// DepositCollateralAndMintDsc is the deposit-then-mint composition as one
// atomic unit: either both legs commit or neither does.
func (e *Engine) DepositCollateralAndMintDsc(ctx context.Context, account, assetId string, collateralAmount, mintAmount decimal.Decimal) error {
	snapshot := e.ledger.Snapshot(account)
	if err := e.depositCollateral(ctx, account, assetId, collateralAmount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}
	if err := e.mintDsc(ctx, account, mintAmount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}

	e.commit(ctx, account, ActionDeposit, EventCollateralDeposited, OperationDetail{
		AssetID: assetId,
		Amount:  collateralAmount,
	})
	e.commit(ctx, account, ActionMint, EventDscMinted, OperationDetail{
		Amount: mintAmount,
	})
	return nil
}

// RedeemCollateral returns amount of the given collateral to the account.
// If debt remains and the reduced collateral breaks the ratio, the whole
// operation fails before any collateral leaves custody.
func (e *Engine) RedeemCollateral(ctx context.Context, account, assetId string, amount decimal.Decimal) error {
	snapshot := e.ledger.Snapshot(account)
	if err := e.redeemCollateral(ctx, account, account, assetId, amount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}

	e.commit(ctx, account, ActionRedeem, EventCollateralRedeemed, OperationDetail{
		AssetID:      assetId,
		Amount:       amount,
		Counterparty: account,
	})
	return nil
}

// RedeemAllCollateral closes out the account's full balance of one
// collateral and returns the redeemed amount.
func (e *Engine) RedeemAllCollateral(ctx context.Context, account, assetId string) (decimal.Decimal, error) {
	amount := e.ledger.CollateralBalance(account, assetId)
	if !amount.IsPositive() {
		return decimal.Zero, errors.Wrapf(NoCollateralFound, "account %s asset %s", account, assetId)
	}
	if err := e.RedeemCollateral(ctx, account, assetId, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// BurnDsc destroys amount of the synthetic unit from the account's holdings
// and reduces its debt. Burn only improves solvency; no health check runs.
func (e *Engine) BurnDsc(ctx context.Context, account string, amount decimal.Decimal) error {
	snapshot := e.ledger.Snapshot(account)
	if err := e.burnDsc(ctx, account, amount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}

	e.commit(ctx, account, ActionBurn, EventDscBurned, OperationDetail{
		Amount: amount,
	})
	return nil
}

// BurnAllDsc repays the account's entire outstanding debt and returns the
// amount burned.
func (e *Engine) BurnAllDsc(ctx context.Context, account string) (decimal.Decimal, error) {
	debt := e.ledger.TotalDebt(account)
	if !debt.IsPositive() {
		return decimal.Zero, errors.Wrapf(NoDebtFound, "account %s", account)
	}
	if err := e.BurnDsc(ctx, account, debt); err != nil {
		return decimal.Zero, err
	}
	return debt, nil
}

// RedeemCollateralForDsc burns dscAmount of debt and then redeems
// collateralAmount of the given collateral, as one atomic unit. Both ledger
// legs and the health assertion complete before either collaborator runs.
func (e *Engine) RedeemCollateralForDsc(ctx context.Context, account, assetId string, collateralAmount, dscAmount decimal.Decimal) error {
	if !collateralAmount.IsPositive() || !dscAmount.IsPositive() {
		return NeedsMoreThanZero
	}
	collateral, err := e.oracle.Collateral(assetId)
	if err != nil {
		return err
	}

	snapshot := e.ledger.Snapshot(account)
	if err := e.ledger.DecreaseDebt(account, dscAmount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}
	if err := e.ledger.Debit(account, assetId, collateralAmount); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}
	if err := e.assertHealthy(ctx, account); err != nil {
		e.ledger.Restore(snapshot)
		return err
	}

	// Repayment is collected before the collateral leaves custody.
	if err := e.dsc.BurnFrom(ctx, account, dscAmount); err != nil {
		e.ledger.Restore(snapshot)
		return errors.Wrapf(err, "burn %s from %s", dscAmount, account)
	}
	ok, err := collateral.Token.Transfer(ctx, account, collateralAmount)
	if err != nil {
		e.ledger.Restore(snapshot)
		return errors.Wrapf(TransferFailed, "transfer %s of %s to %s: %v", collateralAmount, assetId, account, err)
	}
	if !ok {
		e.ledger.Restore(snapshot)
		return errors.Wrapf(TransferFailed, "transfer %s of %s to %s", collateralAmount, assetId, account)
	}

	e.commit(ctx, account, ActionBurn, EventDscBurned, OperationDetail{
		Amount: dscAmount,
	})
	e.commit(ctx, account, ActionRedeem, EventCollateralRedeemed, OperationDetail{
		AssetID:      assetId,
		Amount:       collateralAmount,
		Counterparty: account,
	})
	return nil
}

// ------------ primitives shared with the liquidation engine

func (e *Engine) depositCollateral(ctx context.Context, account, assetId string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NeedsMoreThanZero
	}
	collateral, err := e.oracle.Collateral(assetId)
	if err != nil {
		return err
	}

	e.ledger.Credit(account, assetId, amount)

	ok, err := collateral.Token.TransferFrom(ctx, account, e.vault, amount)
	if err != nil {
		return errors.Wrapf(TransferFailed, "pull %s of %s from %s: %v", amount, assetId, account, err)
	}
	if !ok {
		return errors.Wrapf(TransferFailed, "pull %s of %s from %s", amount, assetId, account)
	}
	return nil
}

func (e *Engine) mintDsc(ctx context.Context, account string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NeedsMoreThanZero
	}

	e.ledger.IncreaseDebt(account, amount)

	// Issued synthetic cannot be recalled; the ratio must hold before the
	// issuer runs.
	if err := e.assertHealthy(ctx, account); err != nil {
		return err
	}

	ok, err := e.dsc.Mint(ctx, account, amount)
	if err != nil {
		return errors.Wrapf(MintFailed, "mint %s to %s: %v", amount, account, err)
	}
	if !ok {
		return errors.Wrapf(MintFailed, "mint %s to %s", amount, account)
	}
	return nil
}

func (e *Engine) redeemCollateral(ctx context.Context, from, to, assetId string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NeedsMoreThanZero
	}
	collateral, err := e.oracle.Collateral(assetId)
	if err != nil {
		return err
	}

	if err := e.ledger.Debit(from, assetId, amount); err != nil {
		return err
	}
	if err := e.assertHealthy(ctx, from); err != nil {
		return err
	}

	ok, err := collateral.Token.Transfer(ctx, to, amount)
	if err != nil {
		return errors.Wrapf(TransferFailed, "transfer %s of %s to %s: %v", amount, assetId, to, err)
	}
	if !ok {
		return errors.Wrapf(TransferFailed, "transfer %s of %s to %s", amount, assetId, to)
	}
	return nil
}

func (e *Engine) burnDsc(ctx context.Context, account string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NeedsMoreThanZero
	}

	if err := e.ledger.DecreaseDebt(account, amount); err != nil {
		return err
	}
	if err := e.dsc.BurnFrom(ctx, account, amount); err != nil {
		return errors.Wrapf(err, "burn %s from %s", amount, account)
	}
	return nil
}

// ------------ read-only query surface

// AccountInformation reports the account's total minted debt and total
// collateral value in USD.
func (e *Engine) AccountInformation(ctx context.Context, account string) (totalDscMinted, collateralValueInUsd decimal.Decimal, err error) {
	collateralValueInUsd, err = e.ledger.TotalCollateralValue(ctx, account)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return e.ledger.TotalDebt(account), collateralValueInUsd, nil
}

func (e *Engine) AccountCollateralValue(ctx context.Context, account string) (decimal.Decimal, error) {
	return e.ledger.TotalCollateralValue(ctx, account)
}

func (e *Engine) CollateralBalance(account, assetId string) decimal.Decimal {
	return e.ledger.CollateralBalance(account, assetId)
}

func (e *Engine) UsdValue(ctx context.Context, assetId string, amount decimal.Decimal) (decimal.Decimal, error) {
	return e.oracle.UsdValue(ctx, assetId, amount)
}

func (e *Engine) AmountFromUsd(ctx context.Context, assetId string, usdValue decimal.Decimal) (decimal.Decimal, error) {
	return e.oracle.AmountFromUsd(ctx, assetId, usdValue)
}

func (e *Engine) CollateralAssetIDs() []string {
	return e.oracle.AssetIDs()
}

// CheckpointPositions writes every ledger position through the store.
func (e *Engine) CheckpointPositions(ctx context.Context, store PositionStore) error {
	for _, position := range e.ledger.Positions() {
		if err := store.UpsertPosition(ctx, position); err != nil {
			return errors.Wrapf(err, "checkpoint position %s", position.Account)
		}
	}
	return nil
}

// commit records a committed operation in the journal and event surface.
// Journal failures are logged, not surfaced: the state change has already
// committed and must not be reported as failed.
func (e *Engine) commit(ctx context.Context, account string, action ActionType, name EventName, detail OperationDetail) {
	operation := NewOperation(e.clk, account, action, detail)

	if e.sink != nil {
		e.sink.Emit(Event{
			Id:        operation.Id,
			Name:      name,
			Account:   account,
			To:        detail.Counterparty,
			AssetID:   detail.AssetID,
			Amount:    detail.Amount,
			CreatedAt: operation.CreatedAt,
		})
	}

	if e.operations != nil {
		if err := e.operations.CreateOperation(ctx, operation); err != nil {
			e.log.Warn().Err(err).
				Str("account", account).
				Str("action", action.String()).
				Msg("operation journal write failed")
		}
	}

	e.log.Debug().
		Str("account", account).
		Str("action", action.String()).
		Str("asset", detail.AssetID).
		Str("amount", detail.Amount.String()).
		Msg("operation committed")
}
