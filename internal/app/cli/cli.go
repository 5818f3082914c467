package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/subcommands"
)

// Register adds every importer command to the commander.
func Register(c *subcommands.Commander) {
	c.Register(&printCmd{}, "inspection")
	c.Register(&importCmd{}, "ledger")
}

// setupLogging installs the process-wide text logger.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// dateFlag parses a -start/-end value as either a calendar day or a full
// RFC 3339 timestamp, in the configured location.
func dateFlag(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// period returns the import window, defaulting to the last 90 days
// through now.
func period(start, end string, loc *time.Location) (from, to time.Time, err error) {
	to = time.Now().In(loc)
	if end != "" {
		to, err = dateFlag(end, loc)
		if err != nil {
			return from, to, err
		}
	}
	from = to.AddDate(0, 0, -90)
	if start != "" {
		from, err = dateFlag(start, loc)
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}
