package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DomeLiquid/synth/core"
)

// Store is the gorm-backed implementation of core.OperationStore and
// core.PositionStore.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&operationRow{}, &positionRow{})
}

type operationRow struct {
	Id        string               `gorm:"column:id;primaryKey"`
	Account   string               `gorm:"column:account;index"`
	Action    uint8                `gorm:"column:action"`
	Detail    core.OperationDetail `gorm:"column:detail;type:text"`
	CreatedAt int64                `gorm:"column:created_at;index"`
}

func (operationRow) TableName() string {
	return "operations"
}

func (s *Store) CreateOperation(ctx context.Context, operation *core.Operation) error {
	row := &operationRow{
		Id:        operation.Id.String(),
		Account:   operation.Account,
		Action:    uint8(operation.Action),
		Detail:    operation.Detail,
		CreatedAt: operation.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Wrap(err, "create operation")
	}
	return nil
}

func (s *Store) ListOperations(ctx context.Context, account string, createdBeforeAt, limit int64) ([]core.Operation, error) {
	tx := s.db.WithContext(ctx).Where("account = ?", account)
	if createdBeforeAt > 0 {
		tx = tx.Where("created_at < ?", createdBeforeAt)
	}
	if limit > 0 {
		tx = tx.Limit(int(limit))
	}

	var rows []operationRow
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list operations")
	}

	operations := make([]core.Operation, 0, len(rows))
	for _, row := range rows {
		operations = append(operations, core.Operation{
			Id:        uuid.FromStringOrNil(row.Id),
			Account:   row.Account,
			Action:    core.ActionType(row.Action),
			Detail:    row.Detail,
			CreatedAt: row.CreatedAt,
		})
	}
	return operations, nil
}

type collateralMap map[string]decimal.Decimal

func (m collateralMap) Value() (driver.Value, error) {
	raw, err := json.Marshal(m)
	return string(raw), err
}

func (m *collateralMap) Scan(value any) error {
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, m)
	case string:
		return json.Unmarshal([]byte(raw), m)
	default:
		return errors.Errorf("unsupported collateral column type %T", value)
	}
}

type positionRow struct {
	Account    string          `gorm:"column:account;primaryKey"`
	Collateral collateralMap   `gorm:"column:collateral;type:text"`
	DebtMinted decimal.Decimal `gorm:"column:debt_minted;type:decimal(64,0)"`
	CreatedAt  int64           `gorm:"column:created_at"`
	UpdatedAt  int64           `gorm:"column:updated_at"`
}

func (positionRow) TableName() string {
	return "positions"
}

func (s *Store) UpsertPosition(ctx context.Context, position *core.Position) error {
	row := &positionRow{
		Account:    position.Account,
		Collateral: position.Collateral,
		DebtMinted: position.DebtMinted,
		CreatedAt:  position.CreatedAt,
		UpdatedAt:  position.UpdatedAt,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}},
			UpdateAll: true,
		}).
		Create(row).Error
	if err != nil {
		return errors.Wrapf(err, "upsert position %s", position.Account)
	}
	return nil
}

func (s *Store) GetPosition(ctx context.Context, account string) (*core.Position, error) {
	var row positionRow
	if err := s.db.WithContext(ctx).First(&row, "account = ?", account).Error; err != nil {
		return nil, err
	}
	return row.position(), nil
}

func (s *Store) ListPositions(ctx context.Context) ([]*core.Position, error) {
	var rows []positionRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list positions")
	}

	positions := make([]*core.Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, row.position())
	}
	return positions, nil
}

func (r *positionRow) position() *core.Position {
	collateral := make(map[string]decimal.Decimal, len(r.Collateral))
	for assetId, amount := range r.Collateral {
		collateral[assetId] = amount
	}
	return &core.Position{
		Account:    r.Account,
		Collateral: collateral,
		DebtMinted: r.DebtMinted,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
