// Package entity defines the domain models for the broker feed.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the closed set of operation types the broker reports.
// Anything outside this set must fail classification, never default.
type OperationType string

const (
	OpPayIn             OperationType = "PayIn"
	OpServiceCommission OperationType = "ServiceCommission"
	OpBuy               OperationType = "Buy"
	OpBuyCard           OperationType = "BuyCard"
	OpSell              OperationType = "Sell"
	OpBrokerCommission  OperationType = "BrokerCommission"
	OpTaxCoupon         OperationType = "TaxCoupon"
	OpCoupon            OperationType = "Coupon"
	OpDividend          OperationType = "Dividend"
)

// OperationStatus is the broker-reported lifecycle status of an operation.
type OperationStatus string

const (
	StatusDone    OperationStatus = "Done"
	StatusDecline OperationStatus = "Decline"
)

// InstrumentKind is the broker-side instrument classification.
type InstrumentKind string

const (
	KindStock      InstrumentKind = "Stock"
	KindBond       InstrumentKind = "Bond"
	KindMutualFund InstrumentKind = "MutualFund"
	KindIndex      InstrumentKind = "Index"
)

// MoneyAmount is a currency-tagged amount, e.g. an operation commission.
type MoneyAmount struct {
	Currency string
	Value    decimal.Decimal
}

// Operation is one brokerage-reported event. It is produced by the feed and
// immutable once fetched. Optional fields use typed nulls: a zero FIGI means
// no instrument is involved, NullDecimal.Valid reports presence.
type Operation struct {
	ID         string
	Type       OperationType
	Status     OperationStatus
	Date       time.Time // full timestamp with timezone
	Currency   string
	Payment    decimal.Decimal
	Commission *MoneyAmount // nil when the broker reports none
	FIGI       string       // empty for account-level operations
	Instrument InstrumentKind
	Quantity   decimal.NullDecimal
	Price      decimal.NullDecimal
}

// CommissionValue returns the commission amount, or zero when absent.
func (o Operation) CommissionValue() decimal.Decimal {
	if o.Commission == nil {
		return decimal.Zero
	}
	return o.Commission.Value
}
