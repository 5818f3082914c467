package tinkoff

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	brokerentity "broker_importer/internal/feature/broker/domain/entity"
	"broker_importer/internal/feature/ledger/usecase"
	"broker_importer/internal/platform/externalapi/tinkoff/dto"
	"broker_importer/internal/shared/ratelimiter"
)

// TinkoffFeed is the BrokerFeed implementation over the Tinkoff Investments
// OpenAPI REST endpoints. Every request passes through the rate limiter.
type TinkoffFeed struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// TinkoffFeed must satisfy the usecase-side interface.
var _ usecase.BrokerFeed = (*TinkoffFeed)(nil)

// NewTinkoffFeed creates a feed client with the given configuration, HTTP
// client and request throttle.
func NewTinkoffFeed(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *TinkoffFeed {
	return &TinkoffFeed{cfg: cfg, client: client, limiter: limiter}
}

// get performs one authenticated GET and decodes the JSON payload into out.
func (t *TinkoffFeed) get(ctx context.Context, path string, q url.Values, out any) error {
	t.limiter.WaitIfNeeded()

	u := t.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.Token)

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("tinkoff http %d for %s", res.StatusCode, path)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Accounts fetches the broker accounts.
func (t *TinkoffFeed) Accounts(ctx context.Context) ([]brokerentity.BrokerAccount, error) {
	var body dto.AccountsResponse
	if err := t.get(ctx, "/user/accounts", nil, &body); err != nil {
		return nil, err
	}
	accounts := make([]brokerentity.BrokerAccount, 0, len(body.Payload.Accounts))
	for _, a := range body.Payload.Accounts {
		accounts = append(accounts, brokerentity.BrokerAccount{
			ID:   a.BrokerAccountID,
			Type: a.BrokerAccountType,
		})
	}
	return accounts, nil
}

// Portfolio fetches the current holdings.
func (t *TinkoffFeed) Portfolio(ctx context.Context) ([]brokerentity.Position, error) {
	var body dto.PortfolioResponse
	if err := t.get(ctx, "/portfolio", nil, &body); err != nil {
		return nil, err
	}
	positions := make([]brokerentity.Position, 0, len(body.Payload.Positions))
	for _, p := range body.Payload.Positions {
		pos := brokerentity.Position{
			FIGI:    p.FIGI,
			Ticker:  p.Ticker,
			ISIN:    p.ISIN,
			Name:    p.Name,
			Kind:    brokerentity.InstrumentKind(p.InstrumentType),
			Balance: decimal.NewFromFloat(p.Balance),
		}
		// The position itself carries no currency; it rides on the average
		// position price.
		if p.AveragePositionPrice != nil {
			pos.Currency = p.AveragePositionPrice.Currency
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// Operations fetches all operations for one account in [from, to], in feed
// order.
func (t *TinkoffFeed) Operations(ctx context.Context, accountID string, from, to time.Time) ([]brokerentity.Operation, error) {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	q.Set("brokerAccountId", accountID)

	var body dto.OperationsResponse
	if err := t.get(ctx, "/operations", q, &body); err != nil {
		return nil, err
	}

	ops := make([]brokerentity.Operation, 0, len(body.Payload.Operations))
	for _, v := range body.Payload.Operations {
		op, err := toOperation(v)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// SearchInstrument looks up one instrument by FIGI.
func (t *TinkoffFeed) SearchInstrument(ctx context.Context, figi string) (*brokerentity.Instrument, error) {
	q := url.Values{}
	q.Set("figi", figi)

	var body dto.SearchByFIGIResponse
	if err := t.get(ctx, "/market/search/by-figi", q, &body); err != nil {
		return nil, err
	}
	p := body.Payload
	return &brokerentity.Instrument{
		FIGI:     p.FIGI,
		Ticker:   p.Ticker,
		ISIN:     p.ISIN,
		Name:     p.Name,
		Kind:     brokerentity.InstrumentKind(p.Type),
		Currency: p.Currency,
	}, nil
}

// DailyCandles fetches the daily bars covering one calendar day.
func (t *TinkoffFeed) DailyCandles(ctx context.Context, figi string, day time.Time) ([]brokerentity.Candle, error) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())

	q := url.Values{}
	q.Set("figi", figi)
	q.Set("from", start.Format(time.RFC3339))
	q.Set("to", start.AddDate(0, 0, 1).Format(time.RFC3339))
	q.Set("interval", "day")

	var body dto.CandlesResponse
	if err := t.get(ctx, "/market/candles", q, &body); err != nil {
		return nil, err
	}

	candles := make([]brokerentity.Candle, 0, len(body.Payload.Candles))
	for _, v := range body.Payload.Candles {
		tm, err := time.Parse(time.RFC3339, v.Time)
		if err != nil {
			return nil, fmt.Errorf("parse candle time %q: %w", v.Time, err)
		}
		candles = append(candles, brokerentity.Candle{
			FIGI:   v.FIGI,
			Time:   tm,
			Open:   decimal.NewFromFloat(v.Open),
			High:   decimal.NewFromFloat(v.High),
			Low:    decimal.NewFromFloat(v.Low),
			Close:  decimal.NewFromFloat(v.Close),
			Volume: v.Volume,
		})
	}
	return candles, nil
}

// toOperation converts a wire operation into the domain entity, validating
// the currency code and timestamp and turning absent optionals into typed
// nulls.
func toOperation(v dto.Operation) (brokerentity.Operation, error) {
	date, err := time.Parse(time.RFC3339, v.Date)
	if err != nil {
		return brokerentity.Operation{}, fmt.Errorf("operation %s: parse date %q: %w", v.ID, v.Date, err)
	}
	if money.GetCurrency(v.Currency) == nil {
		return brokerentity.Operation{}, fmt.Errorf("operation %s: unknown currency code %q", v.ID, v.Currency)
	}

	op := brokerentity.Operation{
		ID:         v.ID,
		Type:       brokerentity.OperationType(v.OperationType),
		Status:     brokerentity.OperationStatus(v.Status),
		Date:       date,
		Currency:   v.Currency,
		Payment:    decimal.NewFromFloat(v.Payment),
		FIGI:       v.FIGI,
		Instrument: brokerentity.InstrumentKind(v.InstrumentType),
	}
	if v.Commission != nil {
		if money.GetCurrency(v.Commission.Currency) == nil {
			return brokerentity.Operation{}, fmt.Errorf("operation %s: unknown commission currency %q",
				v.ID, v.Commission.Currency)
		}
		op.Commission = &brokerentity.MoneyAmount{
			Currency: v.Commission.Currency,
			Value:    decimal.NewFromFloat(v.Commission.Value),
		}
	}
	if v.Quantity != nil {
		op.Quantity = decimal.NewNullDecimal(decimal.NewFromFloat(*v.Quantity))
	}
	if v.Price != nil {
		op.Price = decimal.NewNullDecimal(decimal.NewFromFloat(*v.Price))
	}
	return op, nil
}
