package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
	"broker_importer/internal/feature/ledger/domain"
	"broker_importer/internal/feature/ledger/domain/entity"
)

var testDate = time.Date(2020, 6, 20, 15, 4, 5, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func stockSecurity() entity.Security {
	return entity.Security{ID: 7, Symbol: "US0378331005", Name: "Apple (AAPL)", Kind: entity.SecurityStock}
}

func bondSecurity() entity.Security {
	return entity.Security{
		ID:       9,
		Symbol:   "RU000A0JX0J2",
		Name:     "OFZ 26220 (SU26220RMFS2)",
		Kind:     entity.SecurityBond,
		ParValue: decimal.NewNullDecimal(dec("1000")),
	}
}

func TestBuildAccountDraft(t *testing.T) {
	t.Parallel()

	t.Run("deposit keeps the payment and gets no category", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{
			Type:     brokerentity.OpPayIn,
			Status:   brokerentity.StatusDone,
			Date:     testDate,
			Currency: "RUB",
			Payment:  dec("1500.50"),
		}
		d, err := BuildAccountDraft(op, Classification{Intent: IntentDeposit}, 3, "Broker RUB")
		require.NoError(t, err)

		assert.Equal(t, entity.TypeDeposit, d.Type)
		assert.Equal(t, int64(3), d.AccountID)
		assert.Empty(t, d.CategoryName)
		assert.True(t, d.Amount.Equal(dec("1500.50")), "amount should be the raw payment")
		assert.Equal(t, "Broker account deposit (1500.5 RUB)", d.Note)
	})

	t.Run("service fee becomes a categorized withdrawal", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{
			Type:     brokerentity.OpServiceCommission,
			Status:   brokerentity.StatusDone,
			Date:     testDate,
			Currency: "RUB",
			Payment:  dec("-99"),
		}
		d, err := BuildAccountDraft(op, Classification{Intent: IntentServiceFee}, 3, "Broker RUB")
		require.NoError(t, err)

		assert.Equal(t, entity.TypeWithdrawal, d.Type)
		assert.Equal(t, CategoryServiceFees, d.CategoryName)
		assert.True(t, d.Amount.Equal(dec("-99")), "fees stay negative as reported")
	})

	t.Run("security intents are rejected", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{Type: brokerentity.OpBuy, Status: brokerentity.StatusDone}
		_, err := BuildAccountDraft(op, Classification{Intent: IntentBuy}, 3, "Broker RUB")
		assert.ErrorIs(t, err, domain.ErrMalformedOperation)
	})
}

func TestBuildSecurityDraft_Trades(t *testing.T) {
	t.Parallel()

	t.Run("stock buy", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{
			ID:         "b-1",
			Type:       brokerentity.OpBuy,
			Status:     brokerentity.StatusDone,
			Date:       testDate,
			Currency:   "USD",
			Payment:    dec("-1160.25"),
			Commission: &brokerentity.MoneyAmount{Currency: "USD", Value: dec("-2.9")},
			Instrument: brokerentity.KindStock,
			Quantity:   decimal.NewNullDecimal(dec("5")),
			Price:      decimal.NewNullDecimal(dec("231.47")),
		}
		d, err := BuildSecurityDraft(op, Classification{Intent: IntentBuy}, stockSecurity(), 3, "Broker USD")
		require.NoError(t, err)

		assert.Equal(t, entity.TypeBuy, d.Type)
		assert.True(t, d.TransactionAmount.IsZero(), "trade primary line amount is zero")
		assert.Equal(t, securityLineSortIndex, d.IntradaySortIndex)
		assert.True(t, d.Shares.Decimal.Equal(dec("5")))
		assert.True(t, d.PricePerShare.Decimal.Equal(dec("231.47")))
		assert.True(t, d.PriceMultiplier.Equal(decimal.NewFromInt(1)))
		// -(231.47 * 5) + (-2.9)
		assert.True(t, d.Amount.Decimal.Equal(dec("-1160.25")),
			"amount should be -(price x shares) + commission, got %s", d.Amount.Decimal)
		assert.True(t, d.Income.Valid)
		assert.True(t, d.Income.Decimal.IsZero(), "trades carry zero income, not null")
		assert.True(t, d.WantsPricePoint)
		assert.Equal(t, "Buy 5 of Stock Apple (AAPL) @ 231.47", d.Note)
	})

	t.Run("sell flips the share sign", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{
			ID:         "s-1",
			Type:       brokerentity.OpSell,
			Status:     brokerentity.StatusDone,
			Date:       testDate,
			Currency:   "USD",
			Commission: &brokerentity.MoneyAmount{Currency: "USD", Value: dec("-1.5")},
			Instrument: brokerentity.KindStock,
			Quantity:   decimal.NewNullDecimal(dec("5")),
			Price:      decimal.NewNullDecimal(dec("240")),
		}
		d, err := BuildSecurityDraft(op, Classification{Intent: IntentSell}, stockSecurity(), 3, "Broker USD")
		require.NoError(t, err)

		assert.Equal(t, entity.TypeSell, d.Type)
		assert.True(t, d.Shares.Decimal.Equal(dec("-5")), "sell shares must be negative, got %s", d.Shares.Decimal)
		// -(240 * -5) + (-1.5) = 1198.5
		assert.True(t, d.Amount.Decimal.Equal(dec("1198.5")), "got %s", d.Amount.Decimal)
	})

	t.Run("bond prices are normalized by par", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{
			ID:         "b-2",
			Type:       brokerentity.OpBuy,
			Status:     brokerentity.StatusDone,
			Date:       testDate,
			Currency:   "RUB",
			Instrument: brokerentity.KindBond,
			Quantity:   decimal.NewNullDecimal(dec("3")),
			Price:      decimal.NewNullDecimal(dec("1015.7")),
		}
		d, err := BuildSecurityDraft(op, Classification{Intent: IntentBuy}, bondSecurity(), 3, "Broker RUB")
		require.NoError(t, err)

		assert.True(t, d.PricePerShare.Decimal.Equal(dec("1.0157")),
			"price should be a fraction of par, got %s", d.PricePerShare.Decimal)
		assert.True(t, d.PriceMultiplier.Equal(dec("1000")))
		// The cost math uses the quoted price, not the par fraction.
		assert.True(t, d.Amount.Decimal.Equal(dec("-3047.1")), "got %s", d.Amount.Decimal)
	})

	t.Run("missing commission counts as zero", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{
			Type:       brokerentity.OpBuy,
			Status:     brokerentity.StatusDone,
			Date:       testDate,
			Currency:   "USD",
			Instrument: brokerentity.KindStock,
			Quantity:   decimal.NewNullDecimal(dec("2")),
			Price:      decimal.NewNullDecimal(dec("10")),
		}
		d, err := BuildSecurityDraft(op, Classification{Intent: IntentBuy}, stockSecurity(), 3, "Broker USD")
		require.NoError(t, err)

		assert.True(t, d.Commission.Decimal.IsZero())
		assert.True(t, d.Amount.Decimal.Equal(dec("-20")), "got %s", d.Amount.Decimal)
	})

	t.Run("trade without quantity or price is malformed", func(t *testing.T) {
		t.Parallel()

		op := brokerentity.Operation{
			Type:       brokerentity.OpBuy,
			Status:     brokerentity.StatusDone,
			Date:       testDate,
			Instrument: brokerentity.KindStock,
		}
		_, err := BuildSecurityDraft(op, Classification{Intent: IntentBuy}, stockSecurity(), 3, "Broker USD")
		assert.ErrorIs(t, err, domain.ErrMalformedOperation)
	})

	t.Run("non-positive reported quantity violates the sign convention", func(t *testing.T) {
		t.Parallel()

		for _, q := range []string{"0", "-5"} {
			op := brokerentity.Operation{
				Type:       brokerentity.OpSell,
				Status:     brokerentity.StatusDone,
				Date:       testDate,
				Instrument: brokerentity.KindStock,
				Quantity:   decimal.NewNullDecimal(dec(q)),
				Price:      decimal.NewNullDecimal(dec("10")),
			}
			_, err := BuildSecurityDraft(op, Classification{Intent: IntentSell}, stockSecurity(), 3, "Broker USD")
			if !errors.Is(err, domain.ErrSignConvention) {
				t.Errorf("quantity %s: expected sign convention error, got %v", q, err)
			}
		}
	})
}

func TestBuildSecurityDraft_ShareSignByIntent(t *testing.T) {
	t.Parallel()

	// Whatever the intent, the builder's output must satisfy the store's
	// convention: positive shares for Buy, negative for Sell.
	cases := []struct {
		intent   Intent
		opType   brokerentity.OperationType
		wantSign int
	}{
		{IntentBuy, brokerentity.OpBuy, 1},
		{IntentBuy, brokerentity.OpBuyCard, 1},
		{IntentSell, brokerentity.OpSell, -1},
	}
	for _, c := range cases {
		for _, q := range []string{"1", "58", "0.001"} {
			op := brokerentity.Operation{
				Type:       c.opType,
				Status:     brokerentity.StatusDone,
				Date:       testDate,
				Currency:   "USD",
				Instrument: brokerentity.KindStock,
				Quantity:   decimal.NewNullDecimal(dec(q)),
				Price:      decimal.NewNullDecimal(dec("10")),
			}
			d, err := BuildSecurityDraft(op, Classification{Intent: c.intent}, stockSecurity(), 3, "Broker USD")
			require.NoError(t, err)
			assert.Equal(t, c.wantSign, d.Shares.Decimal.Sign(),
				"%s of %s shares has the wrong sign", c.opType, q)
		}
	}
}

func TestBuildSecurityDraft_Income(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		intent       Intent
		opType       brokerentity.OperationType
		payment      string
		wantType     entity.TransactionType
		wantCategory string
		wantTxAmount string
	}{
		{
			name:         "coupon is interest income against the interest category",
			intent:       IntentCoupon,
			opType:       brokerentity.OpCoupon,
			payment:      "34.9",
			wantType:     entity.TypeInterestIncome,
			wantCategory: CategoryInterest,
			wantTxAmount: "34.9",
		},
		{
			name:         "coupon tax is negative interest income against taxes",
			intent:       IntentTaxCoupon,
			opType:       brokerentity.OpTaxCoupon,
			payment:      "-4.53",
			wantType:     entity.TypeInterestIncome,
			wantCategory: CategoryTaxes,
			wantTxAmount: "-4.53",
		},
		{
			name:         "dividend rides on the income field with a zero primary amount",
			intent:       IntentDividend,
			opType:       brokerentity.OpDividend,
			payment:      "120",
			wantType:     entity.TypeInvestmentIncome,
			wantCategory: CategoryDividends,
			wantTxAmount: "0",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			op := brokerentity.Operation{
				Type:       tt.opType,
				Status:     brokerentity.StatusDone,
				Date:       testDate,
				Currency:   "RUB",
				Payment:    dec(tt.payment),
				Instrument: brokerentity.KindBond,
			}
			d, err := BuildSecurityDraft(op, Classification{Intent: tt.intent}, bondSecurity(), 3, "Broker RUB")
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, d.Type)
			assert.Equal(t, tt.wantCategory, d.CategoryName)
			assert.True(t, d.TransactionAmount.Equal(dec(tt.wantTxAmount)),
				"primary amount mismatch: got %s", d.TransactionAmount)
			assert.True(t, d.Income.Valid)
			assert.True(t, d.Income.Decimal.Equal(dec(tt.payment)))
			assert.False(t, d.Amount.Valid, "income rows keep the trade fields null")
			assert.False(t, d.Shares.Valid)
			assert.False(t, d.PricePerShare.Valid)
			assert.False(t, d.Commission.Valid)
			assert.False(t, d.WantsPricePoint, "income must not touch price history")
		})
	}
}

func TestBuildPricePoint(t *testing.T) {
	t.Parallel()

	candle := brokerentity.Candle{
		FIGI:   "BBG000000001",
		Time:   time.Date(2020, 6, 20, 7, 0, 0, 0, time.UTC),
		Open:   dec("1010"),
		High:   dec("1020"),
		Low:    dec("1000"),
		Close:  dec("1015"),
		Volume: 420,
	}

	t.Run("stock passes through unscaled", func(t *testing.T) {
		t.Parallel()

		pp := BuildPricePoint(stockSecurity(), candle)
		assert.Equal(t, int64(7), pp.SecurityID)
		assert.Equal(t, time.Date(2020, 6, 20, 0, 0, 0, 0, time.UTC), pp.Day)
		assert.True(t, pp.Open.Equal(dec("1010")))
		assert.True(t, pp.Close.Equal(dec("1015")))
		assert.Equal(t, int64(420), pp.Volume)
	})

	t.Run("bond OHLC is divided by par", func(t *testing.T) {
		t.Parallel()

		pp := BuildPricePoint(bondSecurity(), candle)
		assert.True(t, pp.Open.Equal(dec("1.01")), "got %s", pp.Open)
		assert.True(t, pp.High.Equal(dec("1.02")), "got %s", pp.High)
		assert.True(t, pp.Low.Equal(dec("1")), "got %s", pp.Low)
		assert.True(t, pp.Close.Equal(dec("1.015")), "got %s", pp.Close)
	})
}

func TestDayOf(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	got := DayOf(time.Date(2020, 6, 20, 23, 59, 59, 0, loc))
	assert.Equal(t, time.Date(2020, 6, 20, 0, 0, 0, 0, loc), got, "location must be preserved")
}
