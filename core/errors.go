package core

import "github.com/pkg/errors"

var (
	NeedsMoreThanZero             = errors.New("amount must be more than zero")
	TokenNotAllowed               = errors.New("collateral token not allowed")
	MismatchedTokensAndPriceFeeds = errors.New("collateral tokens and price feeds must be the same length")
	InsufficientCollateral        = errors.New("insufficient collateral balance")
	InsufficientDebt              = errors.New("amount exceeds minted debt")
	TransferFailed                = errors.New("collateral transfer failed")
	MintFailed                    = errors.New("dsc mint failed")
	BreaksHealthFactor            = errors.New("operation breaks health factor")
	HealthFactorOk                = errors.New("health factor ok, account not liquidatable")
	HealthFactorNotImproved       = errors.New("health factor not improved")
	ZeroPrice                     = errors.New("feed price is zero")
	NoDebtFound                   = errors.New("no outstanding debt")
	NoCollateralFound             = errors.New("no collateral deposited")
)
