package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nThe output is a single line, suitable for status bars.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	// Priority: --prayers flag > config > defaults.
	if cmd.Flags().Changed("prayers") && flagPrayers != "" {
		s.names = splitNames(flagPrayers)
	}

	next, ok, err := s.next()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		// Nothing can be computed, e.g. deep in polar night with a
		// narrow prayer list. Status bars get a placeholder, not an error.
		fmt.Fprint(out, prayer.Unavailable)
		return nil
	}

	fmt.Fprint(out, prayer.Render(next, s.now, flagFormat, s.layout))
	return nil
}

func splitNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
