package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/config"
	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/prayer"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  halalcities config set city Cairo\n  halalcities config set country Egypt\n  halalcities config set method MWL\n  halalcities config set high_latitude one-seventh\n  halalcities config set time_format 12h\n  halalcities config set prayers Fajr,Dhuhr,Asr,Maghrib,Isha",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		switch {
		case val == "":
			shown = display.Muted("(not set)")
		case key == "method":
			shown = formatMethodValue(val)
		}
		fmt.Fprintf(w, "  %-16s %s\n", key, shown)
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	stored, _ := cfg.Get(key)
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, stored)
	return nil
}

// runConfigGet prints a single value, empty when unset.
func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	val, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method's full name to its tag.
func formatMethodValue(val string) string {
	m, err := prayer.ParseMethod(val)
	if err != nil {
		return val
	}
	return fmt.Sprintf("%s (%s)", m, m.Params().Name)
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the supported calculation methods with their twilight angles.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := display.NewTable([]string{"Tag", "Name", "Fajr", "Isha", "Al Adhan"})
			tbl.AlignRight(2)
			tbl.AlignRight(3)
			tbl.AlignRight(4)
			for i, m := range prayer.Methods() {
				p := m.Params()
				tbl.AddRow([]string{p.Tag, p.Name, angleLabel(p.FajrAngle), ishaLabel(p), strconv.Itoa(p.AlAdhanID)})
				if m == prayer.DefaultMethod {
					tbl.SetHighlightRow(i)
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			fmt.Fprint(w, tbl.Render())
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Use --method <tag> to select a method. The default is %s.\n", prayer.DefaultMethod)
			return nil
		},
	}
}

func angleLabel(deg float64) string {
	return strconv.FormatFloat(deg, 'f', -1, 64) + "°"
}

func ishaLabel(p prayer.MethodParams) string {
	if p.IshaDelay == 0 {
		return angleLabel(p.IshaAngle)
	}
	label := fmt.Sprintf("%g min", p.IshaDelay)
	if p.IshaDelayRamadan != 0 {
		label += fmt.Sprintf(" (%g in Ramadan)", p.IshaDelayRamadan)
	}
	return label
}
