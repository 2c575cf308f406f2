package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/prayer"
)

const dateLayout = "2006-01-02"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Show a table of prayer times starting today. Defaults to 7 days.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 30)
		},
	}
}

// runList is the handler for the list, week and month subcommands.
func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > 366 {
			return fmt.Errorf("invalid number of days: %q (must be an integer from 1 to 366)", args[0])
		}
		days = n
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	schedule, err := s.schedule(days, s.names)
	if err != nil {
		return err
	}

	if FlagJSON {
		return writeListJSON(cmd.OutOrStdout(), s, schedule)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("Prayer Times, %d Days", days))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.loc.Label())
	fmt.Fprintf(w, "  %s\n", display.Muted(s.describe()))
	fmt.Fprintln(w)

	headers := append([]string{"Date"}, s.names...)
	fmt.Fprint(w, scheduleTable(headers, schedule, s.layout).Render())
	fmt.Fprintln(w)
	return nil
}

// scheduledDay is one date of a multi-day schedule.
type scheduledDay struct {
	Date    time.Time
	Prayers []prayer.Prayer
	Ramadan bool
}

// schedule computes names for days consecutive dates starting today.
func (s *session) schedule(days int, names []string) ([]scheduledDay, error) {
	start := s.today()
	out := make([]scheduledDay, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		prayers, err := s.times(date).Select(names)
		if err != nil {
			return nil, err
		}
		out = append(out, scheduledDay{Date: date, Prayers: prayers, Ramadan: s.calendar.Contains(date)})
	}
	return out, nil
}

// scheduleTable renders days with the first row, today, highlighted and
// unavailable times dimmed.
func scheduleTable(headers []string, days []scheduledDay, layout string) *display.Table {
	tbl := display.NewTable(headers)
	tbl.SetMuted(prayer.Unavailable)
	for _, d := range days {
		label := d.Date.Format("Mon 02 Jan")
		if d.Ramadan {
			label += " *"
		}
		row := []string{label}
		for _, p := range d.Prayers {
			row = append(row, prayer.FormatClock(p.Time, layout))
		}
		tbl.AddRow(row)
	}
	if len(days) > 0 {
		tbl.SetHighlightRow(0)
	}
	return tbl
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location todayJSONLocation `json:"location"`
	Method   string            `json:"method"`
	Days     []listJSONDay     `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Ramadan bool              `json:"ramadan,omitempty"`
	Timings map[string]string `json:"timings"`
}

func writeListJSON(w io.Writer, s *session, days []scheduledDay) error {
	out := listJSONOutput{
		Location: s.locationJSON(),
		Method:   s.method.String(),
		Days:     make([]listJSONDay, 0, len(days)),
	}
	for _, d := range days {
		timings := make(map[string]string, len(d.Prayers))
		for _, p := range d.Prayers {
			timings[strings.ToLower(p.Name)] = prayer.FormatClock(p.Time, s.layout)
		}
		out.Days = append(out.Days, listJSONDay{
			Date:    d.Date.Format(dateLayout),
			Ramadan: d.Ramadan,
			Timings: timings,
		})
	}
	return writeJSON(w, out)
}

func (s *session) locationJSON() todayJSONLocation {
	return todayJSONLocation{
		City:      s.loc.City,
		Country:   s.loc.Country,
		Timezone:  s.loc.Timezone.String(),
		Latitude:  s.loc.Coord.Latitude,
		Longitude: s.loc.Coord.Longitude,
		Source:    string(s.loc.Source),
	}
}
