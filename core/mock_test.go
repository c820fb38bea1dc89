package core

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// e18 builds an 18-decimal base-unit amount, e.g. e18(5) for 5 whole units.
func e18(n int64) decimal.Decimal {
	return decimal.New(n, 18)
}

// usdPrice builds an 8-decimal feed price, e.g. usdPrice(2000) for $2000.
func usdPrice(n int64) decimal.Decimal {
	return decimal.New(n, 8)
}

type mockFeed struct {
	price    decimal.Decimal
	decimals int32
	err      error
}

func (f *mockFeed) LatestPrice(ctx context.Context) (decimal.Decimal, int32, error) {
	if f.err != nil {
		return decimal.Zero, 0, f.err
	}
	return f.price, f.decimals, nil
}

func (f *mockFeed) setUsdPrice(usd int64) {
	f.price = decimal.New(usd, f.decimals)
}

type mockToken struct {
	failTransferFrom bool
	failTransfer     bool
	transferFromErr  error
	transferErr      error

	// invoked before TransferFrom reports success, to simulate a collaborator
	// that re-enters the engine mid-call
	onTransferFrom func(ctx context.Context, from, to string, amount decimal.Decimal)

	// amounts that actually moved, recorded on success only
	pulled   []decimal.Decimal
	outbound []decimal.Decimal
}

func (t *mockToken) TransferFrom(ctx context.Context, from, to string, amount decimal.Decimal) (bool, error) {
	if t.onTransferFrom != nil {
		t.onTransferFrom(ctx, from, to, amount)
	}
	if t.transferFromErr != nil {
		return false, t.transferFromErr
	}
	if t.failTransferFrom {
		return false, nil
	}
	t.pulled = append(t.pulled, amount)
	return true, nil
}

func (t *mockToken) Transfer(ctx context.Context, to string, amount decimal.Decimal) (bool, error) {
	if t.transferErr != nil {
		return false, t.transferErr
	}
	if t.failTransfer {
		return false, nil
	}
	t.outbound = append(t.outbound, amount)
	return true, nil
}

func (t *mockToken) BalanceOf(ctx context.Context, owner string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (t *mockToken) Approve(ctx context.Context, spender string, amount decimal.Decimal) (bool, error) {
	return true, nil
}

type mockDsc struct {
	balances map[string]decimal.Decimal
	owner    string
	failMint bool
	mintErr  error
}

func newMockDsc() *mockDsc {
	return &mockDsc{balances: make(map[string]decimal.Decimal)}
}

func (d *mockDsc) Mint(ctx context.Context, to string, amount decimal.Decimal) (bool, error) {
	if d.mintErr != nil {
		return false, d.mintErr
	}
	if d.failMint {
		return false, nil
	}
	d.balances[to] = d.balances[to].Add(amount)
	return true, nil
}

func (d *mockDsc) BurnFrom(ctx context.Context, from string, amount decimal.Decimal) error {
	if d.balances[from].LessThan(amount) {
		return errors.Errorf("burn %s exceeds balance %s of %s", amount, d.balances[from], from)
	}
	d.balances[from] = d.balances[from].Sub(amount)
	return nil
}

func (d *mockDsc) TransferOwnership(ctx context.Context, newOwner string) error {
	d.owner = newOwner
	return nil
}

type memoryOperationStore struct {
	operations []Operation
	createErr  error
}

func (s *memoryOperationStore) CreateOperation(ctx context.Context, operation *Operation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.operations = append(s.operations, *operation)
	return nil
}

func (s *memoryOperationStore) ListOperations(ctx context.Context, account string, createdBeforeAt, limit int64) ([]Operation, error) {
	var matched []Operation
	for _, operation := range s.operations {
		if operation.Account == account {
			matched = append(matched, operation)
		}
	}
	return matched, nil
}

type memoryPositionStore struct {
	positions map[string]*Position
}

func (s *memoryPositionStore) UpsertPosition(ctx context.Context, position *Position) error {
	s.positions[position.Account] = position
	return nil
}

func (s *memoryPositionStore) GetPosition(ctx context.Context, account string) (*Position, error) {
	position, ok := s.positions[account]
	if !ok {
		return nil, errors.New("not found")
	}
	return position, nil
}

func (s *memoryPositionStore) ListPositions(ctx context.Context) ([]*Position, error) {
	positions := make([]*Position, 0, len(s.positions))
	for _, position := range s.positions {
		positions = append(positions, position)
	}
	return positions, nil
}
