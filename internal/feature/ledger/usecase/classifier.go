// Package usecase implements the reconciliation logic that maps broker
// operations into ledger writes.
package usecase

import (
	"fmt"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
	"broker_importer/internal/feature/ledger/domain"
)

// Disposition tells the orchestrator how to handle a classified operation.
type Disposition int

const (
	// AsAccountTransaction writes a plain account transaction.
	AsAccountTransaction Disposition = iota
	// AsSecurityTransaction writes a security transaction and needs the
	// referenced instrument resolved first.
	AsSecurityTransaction
	// SkipAlreadyAccounted skips operations whose effect is already netted
	// into another operation (broker commissions inside trades).
	SkipAlreadyAccounted
	// SkipNonTerminal skips declined operations.
	SkipNonTerminal
)

// Intent is the target transaction shape for a handled operation.
type Intent int

const (
	IntentDeposit Intent = iota
	IntentServiceFee
	IntentBuy
	IntentSell
	IntentCoupon
	IntentTaxCoupon
	IntentBrokerFee
	IntentDividend
)

// Classification is the classifier's verdict for one operation.
type Classification struct {
	Intent      Intent
	Disposition Disposition
}

// Skip reports whether the operation must not be written.
func (c Classification) Skip() bool {
	return c.Disposition == SkipAlreadyAccounted || c.Disposition == SkipNonTerminal
}

// Classify maps one broker operation to a transaction intent and a handling
// disposition. It is total over the known type and status enums; anything
// outside them is an error and the caller must abort the run rather than
// drop the operation.
func Classify(op brokerentity.Operation) (Classification, error) {
	switch op.Status {
	case brokerentity.StatusDone:
		// terminal, handled below
	case brokerentity.StatusDecline:
		return Classification{Disposition: SkipNonTerminal}, nil
	default:
		return Classification{}, fmt.Errorf("%w: %q (operation %s)",
			domain.ErrUnknownOperationStatus, op.Status, op.ID)
	}

	switch op.Type {
	case brokerentity.OpBrokerCommission:
		// Already accounted inside the Buy/Sell it belongs to.
		return Classification{Intent: IntentBrokerFee, Disposition: SkipAlreadyAccounted}, nil
	case brokerentity.OpPayIn:
		return Classification{Intent: IntentDeposit, Disposition: AsAccountTransaction}, nil
	case brokerentity.OpServiceCommission:
		return Classification{Intent: IntentServiceFee, Disposition: AsAccountTransaction}, nil
	case brokerentity.OpBuy, brokerentity.OpBuyCard:
		return Classification{Intent: IntentBuy, Disposition: AsSecurityTransaction}, nil
	case brokerentity.OpSell:
		return Classification{Intent: IntentSell, Disposition: AsSecurityTransaction}, nil
	case brokerentity.OpTaxCoupon:
		return Classification{Intent: IntentTaxCoupon, Disposition: AsSecurityTransaction}, nil
	case brokerentity.OpCoupon:
		return Classification{Intent: IntentCoupon, Disposition: AsSecurityTransaction}, nil
	case brokerentity.OpDividend:
		return Classification{Intent: IntentDividend, Disposition: AsSecurityTransaction}, nil
	default:
		return Classification{}, fmt.Errorf("%w: %q (operation %s)",
			domain.ErrUnknownOperationType, op.Type, op.ID)
	}
}
