package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/ramadan"
)

func newRamadanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ramadan [year]",
		Short: "Show the suhoor and iftar schedule for Ramadan",
		Long:  "Show the daily suhoor (Fajr) and iftar (Maghrib) times and fast lengths for Ramadan.\nDefaults to the current year. Ramadan dates come from the built-in calendar or the ramadan_calendar config file.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRamadan,
	}
}

func runRamadan(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	year := s.now.Year()
	if len(args) > 0 {
		year, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
	}

	days, err := s.ramadanDays(cmd, year)
	if err != nil {
		return err
	}

	if FlagJSON {
		return writeRamadanJSON(cmd.OutOrStdout(), s, year, days)
	}
	writeRamadanTable(cmd.OutOrStdout(), s, year, days)
	return nil
}

// ramadanDays returns the cached schedule or computes and caches it.
func (s *session) ramadanDays(cmd *cobra.Command, year int) ([]ramadan.Day, error) {
	r, err := s.calendar.Range(year)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	q := s.cacheQuery()
	if s.cache != nil {
		if days := s.cache.LoadRamadan(ctx, year, r, q); days != nil {
			return days, nil
		}
	}

	days, err := ramadan.ForYear(s.calendar, s.loc.Coord, year, s.method, s.opts)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		// Best-effort; a failed write only costs a recomputation.
		_ = s.cache.SaveRamadan(ctx, year, r, q, days)
	}
	return days, nil
}

func fastLabel(d ramadan.Day) string {
	if !d.Available() {
		return prayer.Unavailable
	}
	return prayer.FormatRemaining(d.Duration)
}

func writeRamadanTable(w io.Writer, s *session, year int, days []ramadan.Day) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("Ramadan %d", year))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.loc.Label())
	fmt.Fprintf(w, "  %s\n", display.Muted(s.describe()))
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Day", "Date", "Suhoor", "Iftar", "Fast"})
	tbl.SetMuted(prayer.Unavailable)
	tbl.AlignRight(0)
	tbl.AlignRight(4)
	today := s.now.Format(dateLayout)
	for i, d := range days {
		tbl.AddRow([]string{
			strconv.Itoa(d.Index),
			d.Date.Format("Mon 02 Jan"),
			prayer.FormatClock(d.Suhoor, s.layout),
			prayer.FormatClock(d.Iftar, s.layout),
			fastLabel(d),
		})
		if d.Date.Format(dateLayout) == today {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	sum := ramadan.Summarize(days)
	if sum.Days == 0 {
		fmt.Fprintf(w, "  %s\n\n", display.Yellow("The fast cannot be timed here: Fajr or Maghrib never occurs."))
		return
	}
	shortest, longest := extremes(days)
	fmt.Fprintf(w, "  Shortest fast  %s on the %s day\n", prayer.FormatRemaining(sum.Shortest), display.Ordinal(shortest))
	fmt.Fprintf(w, "  Longest fast   %s on the %s day\n", prayer.FormatRemaining(sum.Longest), display.Ordinal(longest))
	fmt.Fprintf(w, "  Average fast   %s\n", prayer.FormatRemaining(sum.Average))
	if sum.Days < len(days) {
		fmt.Fprintf(w, "  %s\n", display.Yellow(fmt.Sprintf("%d of %d days cannot be timed.", len(days)-sum.Days, len(days))))
	}
	fmt.Fprintln(w)
}

// extremes returns the day numbers of the first shortest and first longest fast.
func extremes(days []ramadan.Day) (shortest, longest int) {
	var lo, hi ramadan.Day
	for _, d := range days {
		if !d.Available() {
			continue
		}
		if shortest == 0 || d.Duration < lo.Duration {
			lo, shortest = d, d.Index
		}
		if longest == 0 || d.Duration > hi.Duration {
			hi, longest = d, d.Index
		}
	}
	return shortest, longest
}

type ramadanJSON struct {
	Year     int               `json:"year"`
	Location todayJSONLocation `json:"location"`
	Method   string            `json:"method"`
	Days     []ramadanJSONDay  `json:"days"`
	Summary  ramadanJSONSum    `json:"summary"`
}

type ramadanJSONDay struct {
	Day         int    `json:"day"`
	Date        string `json:"date"`
	Suhoor      string `json:"suhoor"`
	Iftar       string `json:"iftar"`
	FastMinutes int    `json:"fast_minutes"`
}

type ramadanJSONSum struct {
	Days            int `json:"days"`
	ShortestMinutes int `json:"shortest_minutes"`
	LongestMinutes  int `json:"longest_minutes"`
	AverageMinutes  int `json:"average_minutes"`
}

func writeRamadanJSON(w io.Writer, s *session, year int, days []ramadan.Day) error {
	sum := ramadan.Summarize(days)
	out := ramadanJSON{
		Year:     year,
		Location: s.locationJSON(),
		Method:   s.method.String(),
		Days:     make([]ramadanJSONDay, 0, len(days)),
		Summary: ramadanJSONSum{
			Days:            sum.Days,
			ShortestMinutes: int(sum.Shortest.Minutes()),
			LongestMinutes:  int(sum.Longest.Minutes()),
			AverageMinutes:  int(sum.Average.Minutes()),
		},
	}
	for _, d := range days {
		out.Days = append(out.Days, ramadanJSONDay{
			Day:         d.Index,
			Date:        d.Date.Format(dateLayout),
			Suhoor:      prayer.FormatClock(d.Suhoor, s.layout),
			Iftar:       prayer.FormatClock(d.Iftar, s.layout),
			FastMinutes: d.DurationMinutes(),
		})
	}
	return writeJSON(w, out)
}
