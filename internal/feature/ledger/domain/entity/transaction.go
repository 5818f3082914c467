package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the ledger transaction type name. The document stores
// types in a lookup table keyed by these names.
type TransactionType string

const (
	TypeDeposit          TransactionType = "Deposit"
	TypeWithdrawal       TransactionType = "Withdrawal"
	TypeBuy              TransactionType = "Buy"
	TypeSell             TransactionType = "Sell"
	TypeInterestIncome   TransactionType = "Interest Inc."
	TypeInvestmentIncome TransactionType = "Investment Inc."
)

// IsIncome reports whether the type records income on a security line rather
// than a trade. Income transactions carry NULL trade fields and match
// duplicates on the income amount only.
func (t TransactionType) IsIncome() bool {
	return t == TypeInterestIncome || t == TypeInvestmentIncome
}

// AccountDraft is the full field set for an account-level ledger write:
// one transaction, a primary line item with Amount, and a category line item
// with the negated amount (unassigned when CategoryName is empty).
type AccountDraft struct {
	AccountID    int64
	AccountName  string
	CategoryName string // hierarchical colon-separated, empty = no category
	Type         TransactionType
	Currency     string
	Date         time.Time
	Note         string
	Amount       decimal.Decimal
}

// SecurityDraft is the full field set for a security-level ledger write:
// an account transaction shape plus one security line item attached to the
// primary line item.
type SecurityDraft struct {
	AccountID    int64
	AccountName  string
	CategoryName string
	Type         TransactionType
	Currency     string
	Date         time.Time
	Note         string

	// TransactionAmount is the primary line item amount. Zero for trades and
	// dividends, the payment for interest-style income.
	TransactionAmount decimal.Decimal
	// IntradaySortIndex orders same-day line items. Security expenses are
	// deprioritized below deposits so accounts do not show phantom overdraft.
	IntradaySortIndex int

	SecurityID int64
	// Trade fields. Null for income types.
	Amount        decimal.NullDecimal // -(price x signed shares) + commission
	Commission    decimal.NullDecimal
	PricePerShare decimal.NullDecimal // normalized by par for bonds
	Shares        decimal.NullDecimal // negative for Sell, positive for Buy
	// Income carries the payment for income types, zero for trades.
	Income decimal.NullDecimal
	// PriceMultiplier reconstructs the quoted price for par-quoted
	// instruments; one otherwise.
	PriceMultiplier decimal.Decimal

	// WantsPricePoint asks the orchestrator to upsert the traded security's
	// daily price point alongside this write.
	WantsPricePoint bool
}

// PricePoint is one daily OHLCV row for a security, day granularity. At most
// one row may exist per (security, day).
type PricePoint struct {
	SecurityID int64
	Day        time.Time // midnight, no time component
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Volume     int64
}
