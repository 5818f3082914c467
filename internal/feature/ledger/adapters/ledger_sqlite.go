// Package adapters implements the ledger store over the document's SQLite
// schema via gorm.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"broker_importer/internal/feature/ledger/domain"
	"broker_importer/internal/feature/ledger/domain/entity"
	"broker_importer/internal/feature/ledger/usecase"
)

// catalogTables maps each table the import writes to its record-type name in
// the key catalog.
var catalogTables = map[string]string{
	"accounts":            "Account",
	"transactions":        "Transaction",
	"line_items":          "LineItem",
	"securities":          "Security",
	"security_line_items": "SecurityLineItem",
	"security_prices":     "SecurityPrice",
}

type ledgerSQLite struct {
	db *gorm.DB
	tx *gorm.DB // open run transaction, nil outside a run
}

var _ usecase.LedgerStore = (*ledgerSQLite)(nil)

// NewLedgerStore creates the store over an opened document connection.
func NewLedgerStore(db *gorm.DB) *ledgerSQLite {
	return &ledgerSQLite{db: db}
}

// handle returns the open run transaction, or the bare connection for reads
// outside a run.
func (s *ledgerSQLite) handle() *gorm.DB {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *ledgerSQLite) Begin() error {
	if s.tx != nil {
		return errors.New("run transaction already open")
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	s.tx = tx
	return nil
}

func (s *ledgerSQLite) Abort() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	return err
}

// FinalizeRun refreshes the key catalog from the current table maxima and
// commits the run transaction.
func (s *ledgerSQLite) FinalizeRun(ctx context.Context) error {
	if s.tx == nil {
		return errors.New("no open run transaction")
	}
	for table, record := range catalogTables {
		stmt := fmt.Sprintf(
			"UPDATE key_catalog SET max_key = COALESCE((SELECT MAX(id)+1 FROM %s), 0) WHERE name = ?",
			table)
		if err := s.tx.WithContext(ctx).Exec(stmt, record).Error; err != nil {
			return fmt.Errorf("refresh key catalog for %s: %w", record, err)
		}
	}
	err := s.tx.Commit().Error
	s.tx = nil
	return err
}

func (s *ledgerSQLite) AccountByName(ctx context.Context, fullName string) (int64, error) {
	var m AccountModel
	err := s.handle().WithContext(ctx).Where("full_name = ?", fullName).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %q", domain.ErrAccountNotFound, fullName)
	}
	if err != nil {
		return 0, err
	}
	return int64(m.ID), nil
}

func (s *ledgerSQLite) CurrencyByCode(ctx context.Context, code string) (int64, error) {
	var m CurrencyModel
	err := s.handle().WithContext(ctx).Where("code = ?", code).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %q", domain.ErrCurrencyNotFound, code)
	}
	if err != nil {
		return 0, err
	}
	return int64(m.ID), nil
}

func (s *ledgerSQLite) SecurityBySymbol(ctx context.Context, symbol string) (*entity.Security, error) {
	var m SecurityModel
	err := s.handle().WithContext(ctx).Where("symbol = ?", symbol).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", domain.ErrSecurityNotFound, symbol)
	}
	if err != nil {
		return nil, err
	}
	sec := toSecurityEntity(m)
	return &sec, nil
}

func (s *ledgerSQLite) CreateSecurity(ctx context.Context, sec entity.Security) (int64, error) {
	m := SecurityModel{
		Symbol:     sec.Symbol,
		Name:       sec.Name,
		Kind:       int(sec.Kind),
		CurrencyID: uint(sec.CurrencyID),
		ParValue:   sec.ParValue,
		Note:       sec.Note,
		UniqueID:   sec.UniqueID,
	}
	if err := s.handle().WithContext(ctx).Create(&m).Error; err != nil {
		return 0, fmt.Errorf("create security %q: %w", sec.Symbol, err)
	}
	return int64(m.ID), nil
}

func toSecurityEntity(m SecurityModel) entity.Security {
	return entity.Security{
		ID:         int64(m.ID),
		Symbol:     m.Symbol,
		Name:       m.Name,
		Kind:       entity.SecurityKind(m.Kind),
		CurrencyID: int64(m.CurrencyID),
		ParValue:   m.ParValue,
		Note:       m.Note,
		UniqueID:   m.UniqueID,
	}
}

// UpsertPricePoint keeps exactly one OHLCV row per (security, day): insert
// when absent, update in place when present, fail when the document already
// holds more than one.
func (s *ledgerSQLite) UpsertPricePoint(ctx context.Context, pp entity.PricePoint) error {
	start, end := dayWindow(pp.Day)

	var rows []SecurityPriceModel
	err := s.handle().WithContext(ctx).
		Where("security_id = ? AND day >= ? AND day < ?", pp.SecurityID, start, end).
		Find(&rows).Error
	if err != nil {
		return err
	}

	switch len(rows) {
	case 0:
		m := SecurityPriceModel{
			SecurityID: uint(pp.SecurityID),
			Day:        pp.Day,
			Open:       pp.Open,
			High:       pp.High,
			Low:        pp.Low,
			Close:      pp.Close,
			Volume:     pp.Volume,
		}
		return s.handle().WithContext(ctx).Create(&m).Error
	case 1:
		res := s.handle().WithContext(ctx).Model(&SecurityPriceModel{}).
			Where("id = ?", rows[0].ID).
			Updates(map[string]any{
				"open":   pp.Open,
				"high":   pp.High,
				"low":    pp.Low,
				"close":  pp.Close,
				"volume": pp.Volume,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: price update touched %d rows for security %d on %s",
				domain.ErrDuplicateAmbiguity, res.RowsAffected, pp.SecurityID, pp.Day.Format("2006-01-02"))
		}
		return nil
	default:
		return fmt.Errorf("%w: %d price rows for security %d on %s",
			domain.ErrDuplicateAmbiguity, len(rows), pp.SecurityID, pp.Day.Format("2006-01-02"))
	}
}

// HasAccountDuplicate matches on account, calendar day and exact amount.
// Same-day same-amount distinct transactions collide; the tie-break is
// unspecified upstream, so the limitation is kept rather than guessed at.
func (s *ledgerSQLite) HasAccountDuplicate(ctx context.Context, accountID int64, date time.Time, amount decimal.Decimal) (bool, error) {
	start, end := dayWindow(date)

	var count int64
	err := s.handle().WithContext(ctx).
		Table("line_items").
		Joins("JOIN transactions ON transactions.id = line_items.transaction_id").
		Where("line_items.account_id = ?", accountID).
		Where("transactions.date >= ? AND transactions.date < ?", start, end).
		Where("line_items.amount = ?", amount).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return s.duplicateVerdict(count, "account transaction")
}

// HasSecurityDuplicate matches trades on every trade field and income rows
// on income alone, with the trade fields required NULL.
func (s *ledgerSQLite) HasSecurityDuplicate(ctx context.Context, d entity.SecurityDraft) (bool, error) {
	start, end := dayWindow(d.Date)

	q := s.handle().WithContext(ctx).
		Table("security_line_items").
		Joins("JOIN line_items ON line_items.id = security_line_items.line_item_id").
		Joins("JOIN transactions ON transactions.id = line_items.transaction_id").
		Where("security_line_items.security_id = ?", d.SecurityID).
		Where("line_items.account_id = ?", d.AccountID).
		Where("transactions.date >= ? AND transactions.date < ?", start, end)

	if d.Type.IsIncome() {
		q = q.Where("security_line_items.amount IS NULL").
			Where("security_line_items.commission IS NULL").
			Where("security_line_items.price_per_share IS NULL").
			Where("security_line_items.shares IS NULL").
			Where("security_line_items.income = ?", d.Income.Decimal)
	} else {
		q = q.Where("security_line_items.amount = ?", d.Amount.Decimal).
			Where("security_line_items.commission = ?", d.Commission.Decimal).
			Where("security_line_items.income = ?", decimal.Zero).
			Where("security_line_items.price_per_share = ?", d.PricePerShare.Decimal).
			Where("security_line_items.shares = ?", d.Shares.Decimal)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return s.duplicateVerdict(count, "security transaction")
}

func (s *ledgerSQLite) duplicateVerdict(count int64, what string) (bool, error) {
	switch count {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d matching %s rows", domain.ErrDuplicateAmbiguity, count, what)
	}
}

// WriteAccountTransaction writes the transaction with its primary line item
// and the negated category line item as one group.
func (s *ledgerSQLite) WriteAccountTransaction(ctx context.Context, d entity.AccountDraft) (int64, error) {
	txnID, err := s.createTransaction(ctx, d.Type, d.Currency, d.Date, d.Note)
	if err != nil {
		return 0, err
	}

	if _, err := s.createLinePair(ctx, txnID, linePair{
		accountID:    uint(d.AccountID),
		categoryName: d.CategoryName,
		amount:       d.Amount,
		sortIndex:    0,
	}); err != nil {
		return 0, err
	}
	return int64(txnID), nil
}

// WriteSecurityTransaction writes the transaction, both line items and the
// linked security line item as one group, back-patching the primary line
// item with the security line reference.
func (s *ledgerSQLite) WriteSecurityTransaction(ctx context.Context, d entity.SecurityDraft) (int64, error) {
	if err := checkShareSign(d); err != nil {
		return 0, err
	}

	txnID, err := s.createTransaction(ctx, d.Type, d.Currency, d.Date, d.Note)
	if err != nil {
		return 0, err
	}

	pair, err := s.createLinePair(ctx, txnID, linePair{
		accountID:    uint(d.AccountID),
		categoryName: d.CategoryName,
		amount:       d.TransactionAmount,
		sortIndex:    d.IntradaySortIndex,
	})
	if err != nil {
		return 0, err
	}

	sli := SecurityLineItemModel{
		LineItemID:       pair.primary.ID,
		SecurityID:       uint(d.SecurityID),
		PriceMultiplier:  d.PriceMultiplier,
		DistributionType: 1,
	}
	if d.Type.IsIncome() {
		sli.Income = d.Income
		sli.IncomeCategoryLineItemID = &pair.category.UniqueID
	} else {
		sli.Amount = d.Amount
		sli.Commission = d.Commission
		sli.Income = decimal.NewNullDecimal(decimal.Zero)
		sli.PricePerShare = d.PricePerShare
		sli.Shares = d.Shares
		if d.Type == entity.TypeSell {
			method := costBasisFIFO
			sli.CostBasisMethod = &method
		}
	}
	if err := s.handle().WithContext(ctx).Create(&sli).Error; err != nil {
		return 0, fmt.Errorf("create security line item: %w", err)
	}

	err = s.handle().WithContext(ctx).Model(&LineItemModel{}).
		Where("id = ?", pair.primary.ID).
		Update("security_line_item_id", sli.ID).Error
	if err != nil {
		return 0, fmt.Errorf("link security line item: %w", err)
	}
	return int64(txnID), nil
}

// checkShareSign rejects trades whose share delta contradicts the
// transaction type before anything is written. Accepting them would corrupt
// holdings math downstream.
func checkShareSign(d entity.SecurityDraft) error {
	if d.Type.IsIncome() {
		return nil
	}
	if !d.Shares.Valid {
		return fmt.Errorf("%w: %s without a share quantity", domain.ErrMalformedOperation, d.Type)
	}
	switch {
	case d.Type == entity.TypeSell && d.Shares.Decimal.Sign() >= 0:
		return fmt.Errorf("%w: %s with shares %s", domain.ErrSignConvention, d.Type, d.Shares.Decimal)
	case d.Type == entity.TypeBuy && d.Shares.Decimal.Sign() <= 0:
		return fmt.Errorf("%w: %s with shares %s", domain.ErrSignConvention, d.Type, d.Shares.Decimal)
	}
	return nil
}

func (s *ledgerSQLite) createTransaction(ctx context.Context, typ entity.TransactionType, currency string, date time.Time, note string) (uint, error) {
	currencyID, err := s.CurrencyByCode(ctx, currency)
	if err != nil {
		return 0, err
	}

	var tt TransactionTypeModel
	err = s.handle().WithContext(ctx).Where("name = ?", string(typ)).First(&tt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("transaction type %q missing from document", typ)
	}
	if err != nil {
		return 0, err
	}

	m := TransactionModel{
		TypeID:     tt.ID,
		CurrencyID: uint(currencyID),
		Date:       date,
		Note:       note,
		UniqueID:   transactionUniqueID(date, note),
	}
	if err := s.handle().WithContext(ctx).Create(&m).Error; err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return m.ID, nil
}

type linePair struct {
	accountID    uint
	categoryName string
	amount       decimal.Decimal
	sortIndex    int
}

type createdLines struct {
	primary  LineItemModel
	category LineItemModel
}

// createLinePair writes the primary line item and the category line item
// whose amount is the negation of the primary side. The category account is
// NULL when no category applies (deposits, trades).
func (s *ledgerSQLite) createLinePair(ctx context.Context, txnID uint, p linePair) (*createdLines, error) {
	one := decimal.NewFromInt(1)
	cleared := true

	primary := LineItemModel{
		TransactionID:     txnID,
		AccountID:         &p.accountID,
		Cleared:           &cleared,
		IntradaySortIndex: p.sortIndex,
		ExchangeRate:      one,
		Amount:            p.amount,
		UniqueID:          uuid.NewString(),
	}
	if err := s.handle().WithContext(ctx).Create(&primary).Error; err != nil {
		return nil, fmt.Errorf("create primary line item: %w", err)
	}

	var categoryID *uint
	if p.categoryName != "" {
		id, err := s.ensureCategory(ctx, p.categoryName)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}
	category := LineItemModel{
		TransactionID: txnID,
		AccountID:     categoryID,
		ExchangeRate:  one,
		Amount:        p.amount.Neg(),
		UniqueID:      uuid.NewString(),
	}
	if err := s.handle().WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category line item: %w", err)
	}
	return &createdLines{primary: primary, category: category}, nil
}

// ensureCategory finds a category account by full name, creating the
// subcategory under its parent on first use. Categories are the only
// accounts the import may create.
func (s *ledgerSQLite) ensureCategory(ctx context.Context, fullName string) (uint, error) {
	var existing AccountModel
	err := s.handle().WithContext(ctx).Where("full_name = ?", fullName).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	m := AccountModel{
		Class:    accountClassCategory,
		FullName: fullName,
		Name:     fullName,
		UniqueID: uuid.NewString(),
	}
	if parent, sub, ok := strings.Cut(fullName, ":"); ok {
		var parentRow AccountModel
		err := s.handle().WithContext(ctx).Where("full_name = ?", parent).First(&parentRow).Error
		if err == nil {
			m.ParentID = &parentRow.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		m.Name = sub
	}
	if err := s.handle().WithContext(ctx).Create(&m).Error; err != nil {
		return 0, fmt.Errorf("create category %q: %w", fullName, err)
	}
	return m.ID, nil
}

// transactionUniqueID derives a stable name-based id so the same event
// always produces the same row identity.
func transactionUniqueID(date time.Time, note string) string {
	name := "transaction_" + date.Format(time.RFC3339) + note
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}

// dayWindow returns the [start, end) bounds of the timestamp's calendar day
// in its own location.
func dayWindow(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
