package core

import (
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type EventName string

const (
	EventCollateralDeposited EventName = "collateral_deposited"
	EventCollateralRedeemed  EventName = "collateral_redeemed"
	EventDscMinted           EventName = "dsc_minted"
	EventDscBurned           EventName = "dsc_burned"
	EventLiquidated          EventName = "liquidated"
)

// Event is the observable record of a committed state change. Redeems carry
// the recipient in To; liquidations carry the liquidator.
type Event struct {
	Id      uuid.UUID       `json:"id"`
	Name    EventName       `json:"name"`
	Account string          `json:"account"`
	To      string          `json:"to,omitempty"`
	AssetID string          `json:"assetId,omitempty"`
	Amount  decimal.Decimal `json:"amount"`

	CreatedAt int64 `json:"createdAt"`
}

// EventSink receives events after the operation they describe has committed.
// Sinks must not call back into the engine.
type EventSink interface {
	Emit(event Event)
}

// LogSink writes events to the structured log.
type LogSink struct {
	log Log
}

func NewLogSink(log Log) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(event Event) {
	s.log.Info().
		Str("event", string(event.Name)).
		Str("account", event.Account).
		Str("to", event.To).
		Str("asset", event.AssetID).
		Str("amount", event.Amount.String()).
		Msg("engine event")
}

// MemorySink collects events in order, for tests and indexers.
type MemorySink struct {
	Events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(event Event) {
	s.Events = append(s.Events, event)
}

func (s *MemorySink) Named(name EventName) []Event {
	var matched []Event
	for _, event := range s.Events {
		if event.Name == name {
			matched = append(matched, event)
		}
	}
	return matched
}
