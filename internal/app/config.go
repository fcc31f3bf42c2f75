package app

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/truck-orders/internal/domain/discount"
	"github.com/xenking/truck-orders/internal/domain/order"
)

// Storage backends.
const (
	StorageMemory  = "memory"
	StorageJournal = "journal"
)

const envPrefix = "TRUCK"

// Defaults for fields where an explicit empty value must survive loading.
// aconfig treats an empty flag as unset and would apply a default tag.
const (
	DefaultModel       = "Model X"
	DefaultJournalPath = "orders.jsonl.gz"
)

// Config holds the complete application configuration, loadable from
// environment variables (TRUCK_ prefix), flags, or YAML config files.
type Config struct {
	Model     string `usage:"Truck model name (default \"Model X\")" flag:"model" env:"MODEL"`
	Quantity  int    `default:"6" usage:"Number of trucks ordered" flag:"quantity" env:"QUANTITY"`
	BasePrice string `default:"100000" usage:"Unit price as a decimal number" flag:"base-price" env:"BASE_PRICE"`

	Discount       string `default:"fleet" usage:"Discount strategy: fleet, holiday or none" flag:"discount" env:"DISCOUNT"`
	FleetThreshold int    `default:"5" usage:"Largest order size without a fleet discount" flag:"fleet-threshold" env:"FLEET_THRESHOLD"`
	FleetRate      string `default:"0.10" usage:"Fleet discount rate" flag:"fleet-rate" env:"FLEET_RATE"`
	HolidayRate    string `default:"0.05" usage:"Holiday discount rate" flag:"holiday-rate" env:"HOLIDAY_RATE"`
	HolidayFrom    string `default:"" usage:"First day of the holiday window (YYYY-MM-DD), empty for open" flag:"holiday-from" env:"HOLIDAY_FROM"`
	HolidayUntil   string `default:"" usage:"Last day of the holiday window (YYYY-MM-DD), empty for open" flag:"holiday-until" env:"HOLIDAY_UNTIL"`

	Storage     string `default:"memory" usage:"Order storage: memory or journal" flag:"storage" env:"STORAGE"`
	JournalPath string `usage:"Journal file used by the journal storage (default \"orders.jsonl.gz\")" flag:"journal-path" env:"JOURNAL_PATH"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and the given command-line arguments, then validates it.
func LoadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: envPrefix,
		Files:     []string{"config.yaml", "/etc/truck/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
		Args: args,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	flags := loader.Flags()
	cfg.Model = explicitOrDefault(flags, cfg.Model, "model", "MODEL", DefaultModel)
	cfg.JournalPath = explicitOrDefault(flags, cfg.JournalPath, "journal-path", "JOURNAL_PATH", DefaultJournalPath)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// explicitOrDefault returns the flag or environment value when one was given,
// even if empty, then the loaded value, then def.
func explicitOrDefault(flags *flag.FlagSet, loaded, flagName, envName, def string) string {
	var (
		fromFlag string
		set      bool
	)
	flags.Visit(func(f *flag.Flag) {
		if f.Name == flagName {
			fromFlag, set = f.Value.String(), true
		}
	})
	if set {
		return fromFlag
	}
	if v, ok := os.LookupEnv(envPrefix + "_" + envName); ok {
		return v
	}
	if loaded != "" {
		return loaded
	}
	return def
}

// Validate checks that every value can be turned into its domain form.
// Order field rules (blank model, non-positive quantity or price) are left to
// the order validator so that such orders are rejected, not refused at load.
func (c *Config) Validate() error {
	if _, err := c.Order(); err != nil {
		return err
	}
	opts, err := c.DiscountOptions()
	if err != nil {
		return err
	}
	if _, err := discount.New(discount.Strategy(c.Discount), opts); err != nil {
		return err
	}
	switch c.Storage {
	case StorageMemory:
	case StorageJournal:
		if strings.TrimSpace(c.JournalPath) == "" {
			return errors.New("journal path is required for journal storage")
		}
	default:
		return errors.Errorf("unknown storage %q", c.Storage)
	}
	return nil
}

// Order builds the order described by the configuration.
func (c *Config) Order() (*order.Order, error) {
	price, err := decimal.NewFromString(c.BasePrice)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base price %q", c.BasePrice)
	}
	return &order.Order{
		Model:     c.Model,
		Quantity:  c.Quantity,
		BasePrice: price,
	}, nil
}

// DiscountOptions converts the discount settings into strategy options.
func (c *Config) DiscountOptions() (discount.Options, error) {
	opts := discount.DefaultOptions()
	opts.FleetThreshold = c.FleetThreshold

	var err error
	if opts.FleetRate, err = decimal.NewFromString(c.FleetRate); err != nil {
		return opts, errors.Wrapf(err, "parse fleet rate %q", c.FleetRate)
	}
	if opts.HolidayRate, err = decimal.NewFromString(c.HolidayRate); err != nil {
		return opts, errors.Wrapf(err, "parse holiday rate %q", c.HolidayRate)
	}
	if opts.HolidayFrom, err = parseDay(c.HolidayFrom, false); err != nil {
		return opts, errors.Wrap(err, "holiday from")
	}
	if opts.HolidayUntil, err = parseDay(c.HolidayUntil, true); err != nil {
		return opts, errors.Wrap(err, "holiday until")
	}
	return opts, nil
}

// parseDay parses a YYYY-MM-DD date in UTC. With endOfDay the last instant of
// that day is returned so the whole day falls inside the window.
func parseDay(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return nil, errors.Wrapf(err, "parse date %q", s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
