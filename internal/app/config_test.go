package app

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/truck-orders/internal/domain/discount"
)

// isolateConfig runs the test in an empty directory with no TRUCK_ variables,
// so local config.yaml files and the shell environment cannot leak in.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix+"_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig([]string{"-storage=memory"})
	require.NoError(t, err)

	assert.Equal(t, "Model X", cfg.Model)
	assert.Equal(t, 6, cfg.Quantity)
	assert.Equal(t, "100000", cfg.BasePrice)
	assert.Equal(t, string(discount.StrategyFleet), cfg.Discount)
	assert.Equal(t, 5, cfg.FleetThreshold)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, DefaultJournalPath, cfg.JournalPath)
	assert.Equal(t, DefaultModel, cfg.Model)
}

func TestLoadConfig_Flags(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig([]string{
		"-model=Hauler 9000",
		"-quantity=3",
		"-base-price=75000.50",
		"-discount=holiday",
		"-holiday-rate=0.07",
		"-holiday-from=2025-12-20",
		"-holiday-until=2025-12-31",
		"-storage=journal",
		"-journal-path=/tmp/orders.jsonl.gz",
	})
	require.NoError(t, err)

	o, err := cfg.Order()
	require.NoError(t, err)
	assert.Equal(t, "Hauler 9000", o.Model)
	assert.Equal(t, 3, o.Quantity)
	assert.True(t, decimal.RequireFromString("75000.50").Equal(o.BasePrice))

	opts, err := cfg.DiscountOptions()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.07").Equal(opts.HolidayRate))
	require.NotNil(t, opts.HolidayFrom)
	require.NotNil(t, opts.HolidayUntil)
	assert.Equal(t, time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), *opts.HolidayFrom)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 999999999, time.UTC), *opts.HolidayUntil)
	assert.Equal(t, StorageJournal, cfg.Storage)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad base price", args: []string{"-base-price=lots"}},
		{name: "bad fleet rate", args: []string{"-fleet-rate=ten"}},
		{name: "fleet rate above one", args: []string{"-fleet-rate=1.5"}},
		{name: "negative holiday rate", args: []string{"-discount=holiday", "-holiday-rate=-0.05"}},
		{name: "bad holiday date", args: []string{"-holiday-from=20/12/2025"}},
		{name: "unknown strategy", args: []string{"-discount=clearance"}},
		{name: "unknown storage", args: []string{"-storage=postgres"}},
		{name: "journal without path", args: []string{"-storage=journal", "-journal-path="}},
	}

	isolateConfig(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args)
			require.Error(t, err)
		})
	}
}

func TestConfig_OrderRulesLeftToValidator(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig([]string{"-quantity=0", "-base-price=-1", "-model="})
	require.NoError(t, err)

	o, err := cfg.Order()
	require.NoError(t, err)
	assert.Equal(t, "", o.Model)
	assert.Equal(t, 0, o.Quantity)
	assert.True(t, o.BasePrice.IsNegative())
}

func TestLoadConfig_ExplicitEmptyValuesKept(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig([]string{"-model=", "-journal-path="})
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Model)
	assert.Equal(t, "", cfg.JournalPath)

	o, err := Process(context.Background(), cfg)
	require.ErrorIs(t, err, ErrRejected)
	assert.True(t, o.Total.IsZero())
}

func TestLoadConfig_EnvOverridesDefault(t *testing.T) {
	isolateConfig(t)
	t.Setenv("TRUCK_MODEL", "Hauler 9000")
	t.Setenv("TRUCK_JOURNAL_PATH", "")

	cfg, err := LoadConfig([]string{"-storage=memory"})
	require.NoError(t, err)
	assert.Equal(t, "Hauler 9000", cfg.Model)
	assert.Equal(t, "", cfg.JournalPath)

	cfg, err = LoadConfig([]string{"-model=Roadster"})
	require.NoError(t, err)
	assert.Equal(t, "Roadster", cfg.Model, "flags win over env")
}

func TestLoadConfig_FileValues(t *testing.T) {
	isolateConfig(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("model: Dump Truck\nquantity: 2\n"), 0o644))

	cfg, err := LoadConfig([]string{"-storage=memory"})
	require.NoError(t, err)
	assert.Equal(t, "Dump Truck", cfg.Model)
	assert.Equal(t, 2, cfg.Quantity)
}
