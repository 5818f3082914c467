// Package domain defines domain-level errors for the ledger feature.
package domain

import "errors"

// Fatal import errors. Any of these aborts the whole run: the open store
// transaction is rolled back and the process exits non-zero after the
// offending record is printed.
var (
	// ErrUnknownOperationType indicates an operation type outside the known
	// closed set. New upstream types must fail here, never default silently.
	ErrUnknownOperationType = errors.New("unknown broker operation type")

	// ErrUnknownOperationStatus indicates an operation status that is neither
	// terminal-completed nor declined.
	ErrUnknownOperationStatus = errors.New("unsupported broker operation status")

	// ErrUnresolvableSecurity indicates the instrument id could not be
	// resolved to a security with a stable symbol, locally or upstream.
	ErrUnresolvableSecurity = errors.New("security not resolvable")

	// ErrUnknownInstrumentKind indicates an instrument kind outside the fixed
	// kind mapping table.
	ErrUnknownInstrumentKind = errors.New("unknown instrument kind")

	// ErrMalformedOperation indicates an operation whose auxiliary fields do
	// not fit its type, e.g. a trade without quantity or unit price.
	ErrMalformedOperation = errors.New("operation fields do not match its type")

	// ErrDuplicateAmbiguity indicates a store query matched more than one row
	// where at most one may exist. This is local data corruption, not a
	// recoverable condition.
	ErrDuplicateAmbiguity = errors.New("more rows matched than the single expected")

	// ErrSignConvention indicates share quantities whose sign contradicts the
	// transaction type (Sell must decrease the holding, Buy must increase
	// it). Writing such rows would corrupt downstream calculations.
	ErrSignConvention = errors.New("share sign does not match transaction type")

	// ErrAccountNotFound indicates the configured target account does not
	// exist in the ledger document. Accounts are never created by the import.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCurrencyNotFound indicates a currency code with no row in the
	// document's currency table.
	ErrCurrencyNotFound = errors.New("currency not found")

	// ErrSecurityNotFound indicates no security row exists for a symbol.
	// Callers use it to decide between lookup and lazy creation.
	ErrSecurityNotFound = errors.New("security not found")
)
