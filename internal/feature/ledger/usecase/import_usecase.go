package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
	"broker_importer/internal/feature/ledger/domain/entity"
)

// AccountNaming maps broker account types onto ledger account full names.
// The brokerage account holds one sub-account per currency, so the
// operation currency is appended to its name; the IIS account name is used
// as configured.
type AccountNaming struct {
	Brokerage string
	IIS       string
}

// Resolve returns the ledger account name for one operation.
func (n AccountNaming) Resolve(accountType, currency string) (string, error) {
	switch accountType {
	case brokerentity.AccountTypeBrokerage:
		return n.Brokerage + " " + currency, nil
	case brokerentity.AccountTypeIIS:
		return n.IIS, nil
	default:
		return "", fmt.Errorf("unknown broker account type %q", accountType)
	}
}

// Report accumulates the outcome of one import run.
type Report struct {
	Seen        int
	Imported    int
	Duplicates  int
	Skipped     int
	PricePoints int
	Warnings    []string
}

func (r *Report) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	slog.Warn(msg)
}

// ImportUsecase reconciles broker history into the ledger document. It is
// strictly sequential: one account at a time, operations in feed order, no
// retries. Any error aborts the whole run and rolls back everything staged;
// re-running from the start is safe because every written transaction is
// found by the duplicate checks.
type ImportUsecase struct {
	feed   BrokerFeed
	store  LedgerStore
	names  AccountNaming
	dryRun bool
}

// NewImportUsecase creates a new ImportUsecase. With dryRun set, writes are
// staged as usual but the run transaction is rolled back instead of
// committed.
func NewImportUsecase(feed BrokerFeed, store LedgerStore, names AccountNaming, dryRun bool) *ImportUsecase {
	return &ImportUsecase{feed: feed, store: store, names: names, dryRun: dryRun}
}

// ImportRange imports all operations in [from, to] for every broker account.
// This is the single abort point: on any error the open store transaction is
// rolled back and the error is returned with the offending record attached.
func (iu *ImportUsecase) ImportRange(ctx context.Context, from, to time.Time) (*Report, error) {
	report := &Report{}

	if err := iu.store.Begin(); err != nil {
		return report, fmt.Errorf("open run transaction: %w", err)
	}

	if err := iu.run(ctx, from, to, report); err != nil {
		if abortErr := iu.store.Abort(); abortErr != nil {
			slog.Error("rollback after failed run", "error", abortErr)
		}
		return report, err
	}

	if iu.dryRun {
		slog.Info("dry run, discarding staged writes",
			"imported", report.Imported, "duplicates", report.Duplicates)
		if err := iu.store.Abort(); err != nil {
			return report, fmt.Errorf("discard dry run: %w", err)
		}
		return report, nil
	}

	if err := iu.store.FinalizeRun(ctx); err != nil {
		if abortErr := iu.store.Abort(); abortErr != nil {
			slog.Error("rollback after failed commit", "error", abortErr)
		}
		return report, fmt.Errorf("finalize run: %w", err)
	}
	return report, nil
}

func (iu *ImportUsecase) run(ctx context.Context, from, to time.Time, report *Report) error {
	accounts, err := iu.feed.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("fetch broker accounts: %w", err)
	}
	positions, err := iu.feed.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("fetch portfolio: %w", err)
	}
	resolver := NewSecurityResolver(iu.feed, iu.store, positions)

	for _, acc := range accounts {
		slog.Info("fetching operations", "account", acc.ID, "type", acc.Type,
			"from", from, "to", to)
		ops, err := iu.feed.Operations(ctx, acc.ID, from, to)
		if err != nil {
			return fmt.Errorf("fetch operations for account %s: %w", acc.ID, err)
		}

		for _, op := range ops {
			report.Seen++
			if err := iu.importOne(ctx, acc, op, resolver, report); err != nil {
				return fmt.Errorf("operation %+v: %w", op, err)
			}
		}
	}
	return nil
}

// importOne runs one operation through classify, resolve, build, duplicate
// check and write. Duplicates are warnings, everything else that goes wrong
// is an error for the caller to abort on.
func (iu *ImportUsecase) importOne(ctx context.Context, acc brokerentity.BrokerAccount, op brokerentity.Operation, resolver *SecurityResolver, report *Report) error {
	cls, err := Classify(op)
	if err != nil {
		return err
	}
	if cls.Skip() {
		report.Skipped++
		slog.Debug("skipping operation", "id", op.ID, "type", op.Type, "status", op.Status)
		return nil
	}

	accountName, err := iu.names.Resolve(acc.Type, op.Currency)
	if err != nil {
		return err
	}
	accountID, err := iu.store.AccountByName(ctx, accountName)
	if err != nil {
		return fmt.Errorf("target account %q: %w", accountName, err)
	}

	switch cls.Disposition {
	case AsAccountTransaction:
		return iu.importAccountOp(ctx, op, cls, accountID, accountName, report)
	case AsSecurityTransaction:
		return iu.importSecurityOp(ctx, op, cls, accountID, accountName, resolver, report)
	default:
		return fmt.Errorf("unhandled disposition %d for operation %s", cls.Disposition, op.ID)
	}
}

func (iu *ImportUsecase) importAccountOp(ctx context.Context, op brokerentity.Operation, cls Classification, accountID int64, accountName string, report *Report) error {
	draft, err := BuildAccountDraft(op, cls, accountID, accountName)
	if err != nil {
		return err
	}

	dup, err := iu.store.HasAccountDuplicate(ctx, accountID, draft.Date, draft.Amount)
	if err != nil {
		return err
	}
	if dup {
		report.Duplicates++
		report.warnf("possible duplicate for broker operation %s dated %s, amount %s, note %q; skipping",
			op.ID, draft.Date.Format(time.RFC3339), draft.Amount, draft.Note)
		return nil
	}

	id, err := iu.store.WriteAccountTransaction(ctx, draft)
	if err != nil {
		return err
	}
	report.Imported++
	slog.Info("imported account transaction", "id", id, "type", draft.Type,
		"account", accountName, "amount", draft.Amount)
	return nil
}

func (iu *ImportUsecase) importSecurityOp(ctx context.Context, op brokerentity.Operation, cls Classification, accountID int64, accountName string, resolver *SecurityResolver, report *Report) error {
	sec, err := resolver.Resolve(ctx, op.FIGI, op.Date)
	if err != nil {
		return err
	}

	draft, err := BuildSecurityDraft(op, cls, sec, accountID, accountName)
	if err != nil {
		return err
	}

	// Trades refresh the security's day price even when the transaction
	// itself turns out to be a duplicate, so revisiting a window keeps the
	// price history current.
	if draft.WantsPricePoint {
		if err := iu.upsertDayPrice(ctx, op, sec, report); err != nil {
			return err
		}
	}

	dup, err := iu.store.HasSecurityDuplicate(ctx, draft)
	if err != nil {
		return err
	}
	if dup {
		report.Duplicates++
		report.warnf("possible duplicate for broker operation %s dated %s, note %q; skipping",
			op.ID, draft.Date.Format(time.RFC3339), draft.Note)
		return nil
	}

	id, err := iu.store.WriteSecurityTransaction(ctx, draft)
	if err != nil {
		return err
	}
	report.Imported++
	slog.Info("imported security transaction", "id", id, "type", draft.Type,
		"account", accountName, "security", sec.Symbol)
	return nil
}

func (iu *ImportUsecase) upsertDayPrice(ctx context.Context, op brokerentity.Operation, sec entity.Security, report *Report) error {
	day := DayOf(op.Date)
	candles, err := iu.feed.DailyCandles(ctx, op.FIGI, day)
	if err != nil {
		return fmt.Errorf("fetch candle for %s on %s: %w", op.FIGI, day.Format("2006-01-02"), err)
	}
	switch {
	case len(candles) == 0:
		report.warnf("no daily candle for %s on %s; price point not updated",
			op.FIGI, day.Format("2006-01-02"))
		return nil
	case len(candles) > 1:
		report.warnf("more than 1 candle (%d) returned for %s on %s; using the first",
			len(candles), op.FIGI, day.Format("2006-01-02"))
	}

	if err := iu.store.UpsertPricePoint(ctx, BuildPricePoint(sec, candles[0])); err != nil {
		return err
	}
	report.PricePoints++
	return nil
}
