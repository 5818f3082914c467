package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Broker account types the feed reports.
const (
	AccountTypeBrokerage = "Tinkoff"    // regular multi-currency brokerage account
	AccountTypeIIS       = "TinkoffIis" // individual investment account, RUB only
)

// BrokerAccount is one account at the broker, identified by the feed.
type BrokerAccount struct {
	ID   string // brokerAccountId
	Type string // brokerAccountType
}

// Instrument is the broker's description of a tradable security, as returned
// by instrument search.
type Instrument struct {
	FIGI     string
	Ticker   string
	ISIN     string
	Name     string
	Kind     InstrumentKind
	Currency string
}

// Position is one portfolio holding. The portfolio snapshot is fetched once
// per run and used as the first resolution source for instrument ids.
type Position struct {
	FIGI     string
	Ticker   string
	ISIN     string
	Name     string
	Kind     InstrumentKind
	Currency string
	Balance  decimal.Decimal
}

// Instrument converts the position to its instrument description.
func (p Position) Instrument() Instrument {
	return Instrument{
		FIGI:     p.FIGI,
		Ticker:   p.Ticker,
		ISIN:     p.ISIN,
		Name:     p.Name,
		Kind:     p.Kind,
		Currency: p.Currency,
	}
}

// Candle is one daily OHLCV bar for an instrument.
type Candle struct {
	FIGI   string
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}
