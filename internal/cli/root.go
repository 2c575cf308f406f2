package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/halalcities/halalcities/internal/config"
	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/logging"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagCountry    string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagTimezone   string
	FlagMethod     string
	FlagSchool     string
	FlagHighLat    string
	FlagJSON       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagLogLevel   string
)

// loadedConfig holds the config loaded during PersistentPreRunE.
var loadedConfig *config.Config

// nowFunc is replaced in tests to pin the clock.
var nowFunc = time.Now

// NewRootCmd creates the root command for the halalcities CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "halalcities",
		Short:   "Islamic prayer times, Qibla and Ramadan schedules",
		Long:    "Compute prayer times, the Qibla direction and Ramadan fasting schedules for any place on Earth.\nEverything is calculated locally; the Al Adhan API is only used by 'verify' and to look up unknown cities.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if FlagJSON {
				display.SetEnabled(false)
			}
			if err := logging.Setup(logging.Options{
				Level:   FlagLogLevel,
				Output:  cmd.ErrOrStderr(),
				NoColor: !display.Enabled(),
			}); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "City name, looked up in the city directory")
	pf.StringVar(&FlagCountry, "country", "", "Country of --city")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Latitude in degrees (north positive)")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Longitude in degrees (east positive)")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone, e.g. Europe/London")
	pf.StringVar(&FlagMethod, "method", "", "Calculation method: ISNA, MWL, Egypt, Makkah, Karachi or Tehran")
	pf.StringVar(&FlagSchool, "school", "", "Asr school: shafi or hanafi")
	pf.StringVar(&FlagHighLat, "high-latitude", "", "High latitude rule: none, middle-of-night, one-seventh or angle-based")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/halalcities/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagLogLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newQiblaCmd())
	rootCmd.AddCommand(newRamadanCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newCitiesCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newBroadcastCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("halalcities %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > config file > defaults.
// Flag values go through Config.Set, so they are validated exactly like
// `config set`.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	overrides := []struct {
		flag, key string
		value     func() string
	}{
		{"city", "city", func() string { return FlagCity }},
		{"country", "country", func() string { return FlagCountry }},
		{"latitude", "latitude", func() string { return strconv.FormatFloat(FlagLatitude, 'f', -1, 64) }},
		{"longitude", "longitude", func() string { return strconv.FormatFloat(FlagLongitude, 'f', -1, 64) }},
		{"timezone", "timezone", func() string { return FlagTimezone }},
		{"method", "method", func() string { return FlagMethod }},
		{"school", "school", func() string { return FlagSchool }},
		{"high-latitude", "high_latitude", func() string { return FlagHighLat }},
		{"cache-dir", "cache_dir", func() string { return FlagCacheDir }},
		{"time-format", "time_format", func() string { return FlagTimeFormat }},
	}
	for _, o := range overrides {
		if !flagWasSet(flags, root, o.flag) {
			continue
		}
		if err := cfg.Set(o.key, o.value()); err != nil {
			return nil, fmt.Errorf("--%s: %w", o.flag, err)
		}
	}

	// An explicit city on the command line beats configured coordinates.
	if flagWasSet(flags, root, "city") && !flagWasSet(flags, root, "latitude") && !flagWasSet(flags, root, "longitude") {
		cfg.Latitude, cfg.Longitude = 0, 0
	}

	defaults := config.Defaults()
	if cfg.Method == "" {
		cfg.Method = defaults.Method
	}
	if cfg.School == "" {
		cfg.School = defaults.School
	}
	if cfg.HighLatitude == "" {
		cfg.HighLatitude = defaults.HighLatitude
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}

	return &cfg, nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
