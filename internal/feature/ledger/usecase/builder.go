package usecase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
	"broker_importer/internal/feature/ledger/domain"
	"broker_importer/internal/feature/ledger/domain/entity"
)

// Category accounts the import books against. Missing subcategories are
// created by the store on first use.
const (
	CategoryServiceFees = "Bank:Service Fees"
	CategoryTaxes       = "Taxes"
	CategoryInterest    = "Investments:Interest"
	CategoryDividends   = "Investments:Dividends"
)

// securityLineSortIndex deprioritizes security expense lines below same-day
// deposits so accounts do not show phantom overdraft during the day.
const securityLineSortIndex = 2

// BuildAccountDraft assembles the write for an account-level operation
// (deposit or service fee). Amounts are passed through as decimals, no
// rounding.
func BuildAccountDraft(op brokerentity.Operation, cls Classification, accountID int64, accountName string) (entity.AccountDraft, error) {
	d := entity.AccountDraft{
		AccountID:   accountID,
		AccountName: accountName,
		Currency:    op.Currency,
		Date:        op.Date,
		Amount:      op.Payment,
	}

	switch cls.Intent {
	case IntentDeposit:
		d.Type = entity.TypeDeposit
		d.Note = fmt.Sprintf("Broker account deposit (%s %s)", op.Payment, op.Currency)
	case IntentServiceFee:
		d.Type = entity.TypeWithdrawal
		d.CategoryName = CategoryServiceFees
		d.Note = string(op.Type)
	default:
		return entity.AccountDraft{}, fmt.Errorf("%w: %s is not an account-level operation",
			domain.ErrMalformedOperation, op.Type)
	}
	return d, nil
}

// BuildSecurityDraft assembles the write for a security-bearing operation.
// For trades the share sign is derived from the intent (negative for Sell)
// and bond prices are normalized by the security's par value; for income
// intents the trade fields stay null and the payment is routed as income.
func BuildSecurityDraft(op brokerentity.Operation, cls Classification, sec entity.Security, accountID int64, accountName string) (entity.SecurityDraft, error) {
	d := entity.SecurityDraft{
		AccountID:         accountID,
		AccountName:       accountName,
		Currency:          op.Currency,
		Date:              op.Date,
		IntradaySortIndex: securityLineSortIndex,
		SecurityID:        sec.ID,
		PriceMultiplier:   decimal.NewFromInt(1),
	}

	switch cls.Intent {
	case IntentBuy, IntentSell:
		return buildTrade(op, cls, sec, d)
	case IntentTaxCoupon:
		d.Type = entity.TypeInterestIncome
		d.CategoryName = CategoryTaxes
		d.TransactionAmount = op.Payment
		d.Income = decimal.NewNullDecimal(op.Payment)
		d.Note = fmt.Sprintf("%s on revenue for %s %s", op.Type, op.Instrument, sec.Name)
	case IntentCoupon:
		d.Type = entity.TypeInterestIncome
		d.CategoryName = CategoryInterest
		d.TransactionAmount = op.Payment
		d.Income = decimal.NewNullDecimal(op.Payment)
		d.Note = fmt.Sprintf("%s on %s %s", op.Type, op.Instrument, sec.Name)
	case IntentDividend:
		d.Type = entity.TypeInvestmentIncome
		d.CategoryName = CategoryDividends
		// The account-side amount of a dividend is zero; the payment rides on
		// the income field of the security line.
		d.TransactionAmount = decimal.Zero
		d.Income = decimal.NewNullDecimal(op.Payment)
		d.Note = fmt.Sprintf("Profit on %s %s", op.Instrument, sec.Name)
	default:
		return entity.SecurityDraft{}, fmt.Errorf("%w: %s is not a security-level operation",
			domain.ErrMalformedOperation, op.Type)
	}
	return d, nil
}

func buildTrade(op brokerentity.Operation, cls Classification, sec entity.Security, d entity.SecurityDraft) (entity.SecurityDraft, error) {
	if !op.Quantity.Valid || !op.Price.Valid {
		return entity.SecurityDraft{}, fmt.Errorf("%w: %s operation %s without quantity or unit price",
			domain.ErrMalformedOperation, op.Type, op.ID)
	}
	if !op.Quantity.Decimal.IsPositive() {
		return entity.SecurityDraft{}, fmt.Errorf("%w: %s operation %s reports quantity %s",
			domain.ErrSignConvention, op.Type, op.ID, op.Quantity.Decimal)
	}

	shares := op.Quantity.Decimal
	if cls.Intent == IntentSell {
		d.Type = entity.TypeSell
		shares = shares.Neg()
	} else {
		d.Type = entity.TypeBuy
	}

	commission := op.CommissionValue()
	price := op.Price.Decimal
	// The security line carries trade cost plus commission; the account-side
	// line item amount is zero for trades.
	amount := price.Mul(shares).Neg().Add(commission)

	// The feed quotes bond prices in market units while the ledger stores a
	// fraction of par; the multiplier lets consumers reconstruct the quote.
	pricePerShare := price
	if sec.ParValue.Valid {
		pricePerShare = price.Div(sec.ParValue.Decimal)
		d.PriceMultiplier = sec.ParValue.Decimal
	}

	d.TransactionAmount = decimal.Zero
	d.Amount = decimal.NewNullDecimal(amount)
	d.Commission = decimal.NewNullDecimal(commission)
	d.PricePerShare = decimal.NewNullDecimal(pricePerShare)
	d.Shares = decimal.NewNullDecimal(shares)
	d.Income = decimal.NewNullDecimal(decimal.Zero)
	d.Note = fmt.Sprintf("%s %s of %s %s @ %s", d.Type, op.Quantity.Decimal, op.Instrument, sec.Name, price)
	d.WantsPricePoint = true
	return d, nil
}

// BuildPricePoint converts a daily feed candle into the ledger price row for
// the traded security, normalizing OHLC by par for par-quoted instruments.
func BuildPricePoint(sec entity.Security, c brokerentity.Candle) entity.PricePoint {
	par := sec.ParDivisor()
	return entity.PricePoint{
		SecurityID: sec.ID,
		Day:        DayOf(c.Time),
		Open:       c.Open.Div(par),
		High:       c.High.Div(par),
		Low:        c.Low.Div(par),
		Close:      c.Close.Div(par),
		Volume:     c.Volume,
	}
}

// DayOf truncates a timestamp to its calendar day, keeping the location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
