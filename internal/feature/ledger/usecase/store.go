package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"broker_importer/internal/feature/ledger/domain/entity"
)

// LedgerStore abstracts the persisted ledger document. Following Go
// convention the interface is defined by the consumer (usecase), not the
// adapter. All writes land in one open run transaction; FinalizeRun commits
// it exactly once, Abort discards everything staged.
type LedgerStore interface {
	// Begin opens the run transaction. Every later call operates inside it.
	Begin() error

	// AccountByName returns the id of the account with the given hierarchical
	// full name, or domain.ErrAccountNotFound.
	AccountByName(ctx context.Context, fullName string) (int64, error)

	// CurrencyByCode returns the local id for an ISO currency code, or
	// domain.ErrCurrencyNotFound.
	CurrencyByCode(ctx context.Context, code string) (int64, error)

	// SecurityBySymbol returns the security with the given stable symbol, or
	// domain.ErrSecurityNotFound.
	SecurityBySymbol(ctx context.Context, symbol string) (*entity.Security, error)

	// CreateSecurity inserts a new security row and returns its id.
	CreateSecurity(ctx context.Context, sec entity.Security) (int64, error)

	// UpsertPricePoint inserts or updates the single OHLCV row for
	// (security, day). More than one existing row is
	// domain.ErrDuplicateAmbiguity.
	UpsertPricePoint(ctx context.Context, pp entity.PricePoint) error

	// HasAccountDuplicate reports whether an account transaction with the
	// same account, calendar day and amount already exists. The match is
	// knowingly ambiguous for same-day-same-amount distinct transactions.
	// More than one match is domain.ErrDuplicateAmbiguity.
	HasAccountDuplicate(ctx context.Context, accountID int64, date time.Time, amount decimal.Decimal) (bool, error)

	// HasSecurityDuplicate reports whether a security transaction equivalent
	// to the draft already exists. Trades match on all trade fields; income
	// types require the trade fields to be NULL and match on income only.
	HasSecurityDuplicate(ctx context.Context, d entity.SecurityDraft) (bool, error)

	// WriteAccountTransaction writes the transaction with its primary and
	// category line items as one group and returns the transaction id.
	WriteAccountTransaction(ctx context.Context, d entity.AccountDraft) (int64, error)

	// WriteSecurityTransaction writes the transaction, both line items and
	// the linked security line item as one group and returns the transaction
	// id. A share sign contradicting the type is domain.ErrSignConvention.
	WriteSecurityTransaction(ctx context.Context, d entity.SecurityDraft) (int64, error)

	// FinalizeRun refreshes the per-table key counters in the key catalog and
	// commits the run transaction. Call exactly once, only on success.
	FinalizeRun(ctx context.Context) error

	// Abort rolls back the run transaction, discarding all staged writes.
	Abort() error
}
