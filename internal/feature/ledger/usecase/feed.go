package usecase

import (
	"context"
	"time"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
)

// InstrumentSearcher is the slice of the feed the security resolver needs.
type InstrumentSearcher interface {
	// SearchInstrument looks up one instrument by its feed-assigned id.
	SearchInstrument(ctx context.Context, figi string) (*brokerentity.Instrument, error)
}

// BrokerFeed abstracts the upstream brokerage API. Operations are returned
// in feed order; the orchestrator preserves that order.
type BrokerFeed interface {
	InstrumentSearcher

	// Accounts fetches the broker accounts once per run.
	Accounts(ctx context.Context) ([]brokerentity.BrokerAccount, error)

	// Portfolio fetches the current holdings once per run.
	Portfolio(ctx context.Context) ([]brokerentity.Position, error)

	// Operations fetches all operations for one account in [from, to].
	Operations(ctx context.Context, accountID string, from, to time.Time) ([]brokerentity.Operation, error)

	// DailyCandles fetches the daily OHLCV bars covering one calendar day.
	// The feed is expected to return at most one; callers treat more as a
	// warning and zero as a reason to skip the price write.
	DailyCandles(ctx context.Context, figi string, day time.Time) ([]brokerentity.Candle, error)
}
