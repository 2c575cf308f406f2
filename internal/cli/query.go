package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: " + strings.Join(prayer.DefaultPrayerNames, ", "),
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, err := queryPrayerName(args[0])
	if err != nil {
		return err
	}
	days, err := parseDays(flagQueryDays)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	schedule, err := s.schedule(days, []string{name})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if days == 1 {
		p := schedule[0].Prayers[0]
		timeStr := prayer.FormatClock(p.Time, s.layout)
		if FlagJSON {
			return writeJSON(w, queryJSONSingle{
				Prayer: strings.ToLower(name),
				Time:   timeStr,
				Date:   schedule[0].Date.Format(dateLayout),
			})
		}
		fmt.Fprintf(w, "%s %s\n", name, timeStr)
		return nil
	}

	if FlagJSON {
		out := queryJSONMulti{
			Location: s.locationJSON(),
			Prayer:   strings.ToLower(name),
			Days:     make([]queryJSONDay, 0, len(schedule)),
		}
		for _, d := range schedule {
			out.Days = append(out.Days, queryJSONDay{
				Date: d.Date.Format(dateLayout),
				Time: prayer.FormatClock(d.Prayers[0].Time, s.layout),
			})
		}
		return writeJSON(w, out)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("%s Times, %d Days", name, days))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.loc.Label())
	fmt.Fprintln(w)
	fmt.Fprint(w, scheduleTable([]string{"Date", name}, schedule, s.layout).Render())
	fmt.Fprintln(w)
	return nil
}

// queryPrayerName normalizes arg to one of the six computed prayers.
func queryPrayerName(arg string) (string, error) {
	for _, name := range prayer.DefaultPrayerNames {
		if strings.EqualFold(name, arg) {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown prayer %q; valid names: %s", arg, strings.Join(prayer.DefaultPrayerNames, ", "))
}

// parseDays accepts a positive count, "week" or "month". Empty means one day.
func parseDays(v string) (int, error) {
	switch v {
	case "":
		return 1, nil
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 366 {
		return 0, fmt.Errorf("invalid --days value %q: must be a positive integer, 'week', or 'month'", v)
	}
	return n, nil
}

type queryJSONSingle struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Date   string `json:"date"`
}

type queryJSONMulti struct {
	Location todayJSONLocation `json:"location"`
	Prayer   string            `json:"prayer"`
	Days     []queryJSONDay    `json:"days"`
}

type queryJSONDay struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
