// Package entity defines the domain models for the ledger document.
package entity

import "github.com/shopspring/decimal"

// SecurityKind is the ledger's instrument classification. The numeric values
// are the codes the document schema stores.
type SecurityKind int

const (
	SecurityStock      SecurityKind = 1
	SecurityBond       SecurityKind = 3
	SecurityMutualFund SecurityKind = 4
	SecurityIndex      SecurityKind = 7
)

// Security is a tradable instrument record in the ledger, keyed by a stable
// symbol (the ISIN). Created lazily on first reference and never mutated
// afterwards: re-resolving the same instrument id must find the same row.
type Security struct {
	ID         int64
	Symbol     string
	Name       string
	Kind       SecurityKind
	CurrencyID int64
	// ParValue is set only for par-value-quoted instruments (bonds). Prices
	// for those are stored as a fraction of par.
	ParValue decimal.NullDecimal
	Note     string
	UniqueID string
}

// ParDivisor returns the par value when set, else one. Quoted prices are
// divided by this before they are stored.
func (s Security) ParDivisor() decimal.Decimal {
	if s.ParValue.Valid {
		return s.ParValue.Decimal
	}
	return decimal.NewFromInt(1)
}
