// Package tinkoff provides a client for the Tinkoff Investments OpenAPI
// REST feed.
package tinkoff

import (
	"os"
	"time"
)

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "https://api-invest.tinkoff.ru/openapi"

// Config holds configuration for the feed client.
type Config struct {
	Token   string        // OpenAPI bearer token
	BaseURL string        // REST base URL
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads the feed configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("TINKOFF_API_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		Token:   os.Getenv("TINKOFF_API_TOKEN"),
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
