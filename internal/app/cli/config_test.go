package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	t.Run("defaults to the local zone without ledger configuration", func(t *testing.T) {
		t.Setenv("LEDGER_TIMEZONE", "")
		t.Setenv("LEDGER_BROKERAGE_ACCOUNT", "")
		t.Setenv("LEDGER_IIS_ACCOUNT", "")

		loc, err := loadLocation()
		require.NoError(t, err, "the timezone must load without account names set")
		assert.Equal(t, time.Local, loc)
	})

	t.Run("honors LEDGER_TIMEZONE", func(t *testing.T) {
		t.Setenv("LEDGER_TIMEZONE", "Europe/Moscow")

		loc, err := loadLocation()
		require.NoError(t, err)
		assert.Equal(t, "Europe/Moscow", loc.String())
	})

	t.Run("rejects an unknown zone", func(t *testing.T) {
		t.Setenv("LEDGER_TIMEZONE", "Nowhere/Atlantis")

		_, err := loadLocation()
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("requires both account names", func(t *testing.T) {
		t.Setenv("LEDGER_BROKERAGE_ACCOUNT", "")
		t.Setenv("LEDGER_IIS_ACCOUNT", "")

		_, err := LoadConfig()
		assert.Error(t, err)

		t.Setenv("LEDGER_BROKERAGE_ACCOUNT", "Tinkoff Broker")
		_, err = LoadConfig()
		assert.Error(t, err, "the IIS account name is still missing")
	})

	t.Run("loads names and document path", func(t *testing.T) {
		t.Setenv("LEDGER_BROKERAGE_ACCOUNT", "Tinkoff Broker")
		t.Setenv("LEDGER_IIS_ACCOUNT", "Tinkoff IIS")
		t.Setenv("LEDGER_DOCUMENT", "/tmp/ledger.db")
		t.Setenv("LEDGER_TIMEZONE", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "Tinkoff Broker", cfg.Names.Brokerage)
		assert.Equal(t, "Tinkoff IIS", cfg.Names.IIS)
		assert.Equal(t, "/tmp/ledger.db", cfg.Document)
	})
}
