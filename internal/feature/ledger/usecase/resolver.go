package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
	"broker_importer/internal/feature/ledger/domain"
	"broker_importer/internal/feature/ledger/domain/entity"
)

// DefaultBondParValue is assumed for bonds because the feed does not expose
// the original par value.
var DefaultBondParValue = decimal.NewFromInt(1000)

// kindTable is the fixed mapping from feed instrument kinds to ledger
// security kinds. Kinds outside the table fail closed.
var kindTable = map[brokerentity.InstrumentKind]entity.SecurityKind{
	brokerentity.KindStock:      entity.SecurityStock,
	brokerentity.KindBond:       entity.SecurityBond,
	brokerentity.KindMutualFund: entity.SecurityMutualFund,
	brokerentity.KindIndex:      entity.SecurityIndex,
}

// SecurityResolver translates feed instrument ids into ledger securities,
// creating the security row lazily on first reference. The portfolio
// snapshot is populated once at run start and read-only afterwards; the
// resolution cache guarantees a single security row per instrument id
// within the run, the symbol lookup guarantees it across runs.
type SecurityResolver struct {
	feed      InstrumentSearcher
	store     LedgerStore
	positions map[string]brokerentity.Position
	resolved  map[string]entity.Security
}

// NewSecurityResolver creates a resolver over a run-scoped portfolio
// snapshot.
func NewSecurityResolver(feed InstrumentSearcher, store LedgerStore, positions []brokerentity.Position) *SecurityResolver {
	byFIGI := make(map[string]brokerentity.Position, len(positions))
	for _, p := range positions {
		byFIGI[p.FIGI] = p
	}
	return &SecurityResolver{
		feed:      feed,
		store:     store,
		positions: byFIGI,
		resolved:  make(map[string]entity.Security),
	}
}

// Resolve finds or creates the ledger security for a feed instrument id.
// Resolving the same id twice, within or across runs, yields the same row.
// The date is recorded on newly created securities so their deterministic
// unique id matches the operation that introduced them.
func (r *SecurityResolver) Resolve(ctx context.Context, figi string, date time.Time) (entity.Security, error) {
	if sec, ok := r.resolved[figi]; ok {
		return sec, nil
	}

	inst, err := r.instrument(ctx, figi)
	if err != nil {
		return entity.Security{}, err
	}
	if inst.ISIN == "" {
		return entity.Security{}, fmt.Errorf("%w: no symbol for instrument id %s",
			domain.ErrUnresolvableSecurity, figi)
	}

	sec, err := r.store.SecurityBySymbol(ctx, inst.ISIN)
	switch {
	case err == nil:
		r.resolved[figi] = *sec
		return *sec, nil
	case errors.Is(err, domain.ErrSecurityNotFound):
		// first reference, create below
	default:
		return entity.Security{}, err
	}

	created, err := r.create(ctx, *inst, date)
	if err != nil {
		return entity.Security{}, err
	}
	r.resolved[figi] = created
	return created, nil
}

// instrument finds the feed-side description, preferring the portfolio
// snapshot over a network search.
func (r *SecurityResolver) instrument(ctx context.Context, figi string) (*brokerentity.Instrument, error) {
	if pos, ok := r.positions[figi]; ok {
		inst := pos.Instrument()
		return &inst, nil
	}
	slog.Debug("instrument not in portfolio, searching upstream", "figi", figi)
	inst, err := r.feed.SearchInstrument(ctx, figi)
	if err != nil {
		return nil, fmt.Errorf("%w: search for %s: %v", domain.ErrUnresolvableSecurity, figi, err)
	}
	return inst, nil
}

func (r *SecurityResolver) create(ctx context.Context, inst brokerentity.Instrument, date time.Time) (entity.Security, error) {
	kind, ok := kindTable[inst.Kind]
	if !ok {
		return entity.Security{}, fmt.Errorf("%w: %q (instrument %s)",
			domain.ErrUnknownInstrumentKind, inst.Kind, inst.FIGI)
	}

	currencyID, err := r.store.CurrencyByCode(ctx, inst.Currency)
	if err != nil {
		return entity.Security{}, fmt.Errorf("security %s: %w", inst.ISIN, err)
	}

	sec := entity.Security{
		Symbol:     inst.ISIN,
		Name:       fmt.Sprintf("%s (%s)", inst.Name, inst.Ticker),
		Kind:       kind,
		CurrencyID: currencyID,
		Note: fmt.Sprintf("%s: ticker %s, ISIN %s, FIGI %s",
			inst.Name, inst.Ticker, inst.ISIN, inst.FIGI),
		UniqueID: securityUniqueID(date, inst.ISIN),
	}
	if kind == entity.SecurityBond {
		// The feed does not report the bond's par value; assume the common
		// 1000-unit face.
		sec.ParValue = decimal.NewNullDecimal(DefaultBondParValue)
	}

	id, err := r.store.CreateSecurity(ctx, sec)
	if err != nil {
		return entity.Security{}, err
	}
	sec.ID = id
	slog.Debug("created security", "symbol", sec.Symbol, "name", sec.Name, "id", id)
	return sec, nil
}

// securityUniqueID derives a stable name-based id from the introduction date
// and the symbol, so re-creating the same security is detectable.
func securityUniqueID(date time.Time, symbol string) string {
	name := "security_" + date.Format(time.RFC3339) + symbol
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}
