// Package cli wires the importer's command line surface.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"broker_importer/internal/feature/ledger/usecase"
	"broker_importer/internal/platform/externalapi/tinkoff"
	"broker_importer/internal/shared/ratelimiter"
)

// Config holds the importer configuration loaded from environment variables.
type Config struct {
	Document string                // path to the ledger document database
	Names    usecase.AccountNaming // ledger account names per broker account type
	Location *time.Location        // timezone for day boundaries
}

// LoadConfig reads the importer configuration from the environment.
// LEDGER_BROKERAGE_ACCOUNT and LEDGER_IIS_ACCOUNT are required;
// LEDGER_DOCUMENT and LEDGER_TIMEZONE are optional.
func LoadConfig() (Config, error) {
	brokerage := os.Getenv("LEDGER_BROKERAGE_ACCOUNT")
	if brokerage == "" {
		return Config{}, fmt.Errorf("LEDGER_BROKERAGE_ACCOUNT is not set")
	}
	iis := os.Getenv("LEDGER_IIS_ACCOUNT")
	if iis == "" {
		return Config{}, fmt.Errorf("LEDGER_IIS_ACCOUNT is not set")
	}

	loc, err := loadLocation()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Document: os.Getenv("LEDGER_DOCUMENT"),
		Names:    usecase.AccountNaming{Brokerage: brokerage, IIS: iis},
		Location: loc,
	}, nil
}

// loadLocation reads LEDGER_TIMEZONE, defaulting to the local zone. Split
// out from LoadConfig because inspecting feed collections needs only the
// timezone, not the ledger account mapping.
func loadLocation() (*time.Location, error) {
	tz := os.Getenv("LEDGER_TIMEZONE")
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load LEDGER_TIMEZONE %q: %w", tz, err)
	}
	return loc, nil
}

// feedRequestsPerMinute matches the upstream per-token quota.
const feedRequestsPerMinute = 120

// newFeed builds the Tinkoff client shared by the print and import commands.
func newFeed() (*tinkoff.TinkoffFeed, error) {
	cfg := tinkoff.LoadConfig()
	if cfg.Token == "" {
		return nil, fmt.Errorf("TINKOFF_API_TOKEN is not set")
	}
	client := &http.Client{Timeout: cfg.Timeout}
	limiter := ratelimiter.NewRateLimiter(feedRequestsPerMinute, time.Minute)
	return tinkoff.NewTinkoffFeed(cfg, client, limiter), nil
}
