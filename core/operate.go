package core

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"strconv"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/DomeLiquid/synth/utils"
)

type ActionType uint8

const (
	ActionDeposit ActionType = iota + 1
	ActionMint
	ActionRedeem
	ActionBurn
	ActionLiquidate
)

func (a ActionType) String() string {
	switch a {
	case ActionDeposit:
		return "Deposit"
	case ActionMint:
		return "Mint"
	case ActionRedeem:
		return "Redeem"
	case ActionBurn:
		return "Burn"
	case ActionLiquidate:
		return "Liquidate"
	default:
		return "Unknown"
	}
}

type (
	// OperationStore journals committed operations for external indexing.
	OperationStore interface {
		CreateOperation(ctx context.Context, operation *Operation) error
		ListOperations(ctx context.Context, account string, createdBeforeAt, limit int64) ([]Operation, error)
	}

	// PositionStore lets a host checkpoint ledger positions.
	PositionStore interface {
		UpsertPosition(ctx context.Context, position *Position) error
		GetPosition(ctx context.Context, account string) (*Position, error)
		ListPositions(ctx context.Context) ([]*Position, error)
	}

	Operation struct {
		Id        uuid.UUID       `json:"id"`
		Account   string          `json:"account"`
		Action    ActionType      `json:"action"`
		Detail    OperationDetail `json:"detail"`
		CreatedAt int64           `json:"createdAt"`
	}

	OperationDetail struct {
		AssetID      string          `json:"assetId,omitempty"`
		Amount       decimal.Decimal `json:"amount"`
		Counterparty string          `json:"counterparty,omitempty"`
	}
)

func NewOperation(clk clock.Clock, account string, action ActionType, detail OperationDetail) *Operation {
	createdAt := clk.Now().Unix()
	return &Operation{
		Id: utils.NewDeterministicID(
			account,
			action.String(),
			detail.AssetID,
			detail.Amount.String(),
			detail.Counterparty,
			strconv.FormatInt(createdAt, 10),
		),
		Account:   account,
		Action:    action,
		Detail:    detail,
		CreatedAt: createdAt,
	}
}

func (d OperationDetail) Value() (driver.Value, error) {
	raw, err := json.Marshal(d)
	return string(raw), err
}

func (d *OperationDetail) Scan(value any) error {
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, d)
	case string:
		return json.Unmarshal([]byte(raw), d)
	default:
		return errors.Errorf("unsupported detail column type %T", value)
	}
}
