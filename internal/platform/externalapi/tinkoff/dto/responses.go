// Package dto defines data transfer objects for the Tinkoff OpenAPI
// responses.
package dto

// MoneyAmount is a currency-tagged value, as the API reports commissions and
// position prices.
type MoneyAmount struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// AccountsResponse represents the /user/accounts payload.
type AccountsResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Accounts []struct {
			BrokerAccountType string `json:"brokerAccountType"`
			BrokerAccountID   string `json:"brokerAccountId"`
		} `json:"accounts"`
	} `json:"payload"`
}

// PortfolioResponse represents the /portfolio payload.
type PortfolioResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Positions []Position `json:"positions"`
	} `json:"payload"`
}

// Position is one portfolio holding.
type Position struct {
	FIGI                 string       `json:"figi"`
	Ticker               string       `json:"ticker"`
	ISIN                 string       `json:"isin"`
	InstrumentType       string       `json:"instrumentType"`
	Name                 string       `json:"name"`
	Balance              float64      `json:"balance"`
	Lots                 int          `json:"lots"`
	AveragePositionPrice *MoneyAmount `json:"averagePositionPrice,omitempty"`
	ExpectedYield        *MoneyAmount `json:"expectedYield,omitempty"`
}

// OperationsResponse represents the /operations payload.
type OperationsResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Operations []Operation `json:"operations"`
	} `json:"payload"`
}

// Operation is one brokerage event. Optional numeric fields are pointers so
// absence survives decoding as a typed null.
type Operation struct {
	ID             string       `json:"id"`
	Status         string       `json:"status"`
	OperationType  string       `json:"operationType"`
	Date           string       `json:"date"` // ISO-8601 with timezone
	Currency       string       `json:"currency"`
	Payment        float64      `json:"payment"`
	Commission     *MoneyAmount `json:"commission,omitempty"`
	FIGI           string       `json:"figi,omitempty"`
	InstrumentType string       `json:"instrumentType,omitempty"`
	Quantity       *float64     `json:"quantity,omitempty"`
	Price          *float64     `json:"price,omitempty"`
	IsMarginCall   bool         `json:"isMarginCall"`
}

// SearchByFIGIResponse represents the /market/search/by-figi payload.
type SearchByFIGIResponse struct {
	TrackingID string     `json:"trackingId"`
	Status     string     `json:"status"`
	Payload    Instrument `json:"payload"`
}

// Instrument is one search result.
type Instrument struct {
	FIGI              string  `json:"figi"`
	Ticker            string  `json:"ticker"`
	ISIN              string  `json:"isin"`
	MinPriceIncrement float64 `json:"minPriceIncrement"`
	Lot               int     `json:"lot"`
	Currency          string  `json:"currency"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
}

// CandlesResponse represents the /market/candles payload.
type CandlesResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		FIGI     string   `json:"figi"`
		Interval string   `json:"interval"`
		Candles  []Candle `json:"candles"`
	} `json:"payload"`
}

// Candle is one OHLCV bar.
type Candle struct {
	FIGI     string  `json:"figi"`
	Interval string  `json:"interval"`
	Open     float64 `json:"o"`
	Close    float64 `json:"c"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Volume   int64   `json:"v"`
	Time     string  `json:"time"`
}
