package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/api"
	"github.com/halalcities/halalcities/internal/cache"
	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/prayer"
)

var (
	flagVerifyDays int
	flagTolerance  int
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare computed times with the Al Adhan API",
		Long:  "Fetch reference times from the Al Adhan API for the same place, method and school,\nand report the difference for every prayer. Exits with an error when any\ndifference exceeds the tolerance.",
		Args:  cobra.NoArgs,
		RunE:  runVerify,
	}

	cmd.Flags().IntVar(&flagVerifyDays, "days", 1, "Number of days to compare, starting today")
	cmd.Flags().IntVar(&flagTolerance, "tolerance", 2, "Allowed difference in minutes")

	return cmd
}

// referenceDay is one day of Al Adhan times.
type referenceDay struct {
	Date    time.Time
	Timings api.Timings
	Hijri   api.HijriDate
	Zone    *time.Location
}

type verifyRow struct {
	Date        string `json:"date"`
	Prayer      string `json:"prayer"`
	Computed    string `json:"computed"`
	Reference   string `json:"reference"`
	DiffMinutes *int   `json:"diff_minutes"`
	Exceeds     bool   `json:"exceeds,omitempty"`
}

type verifyJSON struct {
	Location         todayJSONLocation `json:"location"`
	Method           string            `json:"method"`
	AlAdhanMethod    int               `json:"aladhan_method"`
	ToleranceMinutes int               `json:"tolerance_minutes"`
	Rows             []verifyRow       `json:"rows"`
	Mismatches       int               `json:"mismatches"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	if flagVerifyDays < 1 || flagVerifyDays > 62 {
		return fmt.Errorf("invalid --days %d: must be from 1 to 62", flagVerifyDays)
	}
	if flagTolerance < 0 {
		return fmt.Errorf("invalid --tolerance %d: must not be negative", flagTolerance)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	refs, err := s.reference(cmd.Context(), flagVerifyDays)
	if err != nil {
		return fmt.Errorf("failed to fetch reference times: %w", err)
	}

	rows, mismatches, err := s.compare(refs, flagTolerance)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if FlagJSON {
		if err := writeJSON(w, verifyJSON{
			Location:         s.locationJSON(),
			Method:           s.method.String(),
			AlAdhanMethod:    s.method.Params().AlAdhanID,
			ToleranceMinutes: flagTolerance,
			Rows:             rows,
			Mismatches:       mismatches,
		}); err != nil {
			return err
		}
	} else {
		writeVerifyTable(w, s, refs, rows, mismatches)
	}

	if mismatches > 0 {
		return fmt.Errorf("%d of %d times differ from Al Adhan by more than %d minutes", mismatches, len(rows), flagTolerance)
	}
	return nil
}

// alAdhanQuery keys cached Al Adhan responses.
func (s *session) alAdhanQuery() cache.Query {
	return cache.Query{
		Latitude:  s.loc.Coord.Latitude,
		Longitude: s.loc.Coord.Longitude,
		Method:    s.method.Params().AlAdhanID,
		School:    int(s.opts.School),
	}
}

// hijri returns the Hijri date of date when a cached Al Adhan response has
// it, or "". It never touches the network.
func (s *session) hijri(ctx context.Context, date time.Time) string {
	if s.cache == nil {
		return ""
	}
	entry := s.cache.LoadTimings(ctx, date, s.alAdhanQuery())
	if entry == nil {
		return ""
	}
	return entry.Hijri.Format()
}

// reference loads Al Adhan times for days dates starting today. A single
// day uses the timings endpoint; longer ranges fetch whole months.
func (s *session) reference(ctx context.Context, days int) ([]referenceDay, error) {
	client := newAPIClient()
	q := s.alAdhanQuery()
	today := s.today()

	if days == 1 {
		entry := s.loadTimings(ctx, today, q)
		if entry == nil {
			resp, err := client.FetchByCoordinates(ctx, today, q.Latitude, q.Longitude, q.Method, q.School)
			if err != nil {
				return nil, err
			}
			if s.cache != nil {
				if err := s.cache.SaveTimings(ctx, today, q, resp); err != nil {
					log.Warn().Err(err).Msg("failed to cache Al Adhan times")
				}
			}
			entry = &cache.TimingsEntry{Timings: resp.Data.Timings, Hijri: resp.Data.Date.Hijri, Meta: resp.Data.Meta}
		}
		return []referenceDay{{Date: today, Timings: entry.Timings, Hijri: entry.Hijri, Zone: s.zoneOf(entry.Meta)}}, nil
	}

	type yearMonth struct {
		year  int
		month time.Month
	}
	months := make(map[yearMonth][]api.Data)
	refs := make([]referenceDay, 0, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		ym := yearMonth{date.Year(), date.Month()}

		data, ok := months[ym]
		if !ok {
			var err error
			data, err = s.loadMonth(ctx, client, ym.year, ym.month, q)
			if err != nil {
				return nil, fmt.Errorf("%d-%02d: %w", ym.year, ym.month, err)
			}
			months[ym] = data
		}

		idx := date.Day() - 1
		if idx >= len(data) {
			return nil, fmt.Errorf("day %d out of range for %d-%02d (got %d days)", date.Day(), ym.year, ym.month, len(data))
		}
		d := data[idx]
		refs = append(refs, referenceDay{Date: date, Timings: d.Timings, Hijri: d.Date.Hijri, Zone: s.zoneOf(d.Meta)})
	}
	return refs, nil
}

func (s *session) loadTimings(ctx context.Context, date time.Time, q cache.Query) *cache.TimingsEntry {
	if s.cache == nil {
		return nil
	}
	return s.cache.LoadTimings(ctx, date, q)
}

func (s *session) loadMonth(ctx context.Context, client *api.Client, year int, month time.Month, q cache.Query) ([]api.Data, error) {
	if s.cache != nil {
		if entry := s.cache.LoadCalendar(ctx, year, month, q); entry != nil {
			return entry.Days, nil
		}
	}
	resp, err := client.FetchCalendarByCoordinates(ctx, year, month, q.Latitude, q.Longitude, q.Method, q.School)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveCalendar(ctx, year, month, q, resp); err != nil {
			log.Warn().Err(err).Msg("failed to cache Al Adhan calendar")
		}
	}
	return resp.Data, nil
}

// zoneOf returns the zone Al Adhan reported its clock times in.
func (s *session) zoneOf(meta api.Meta) *time.Location {
	if tz, err := meta.Location(); err == nil {
		return tz
	}
	return s.loc.Timezone
}

// compare lines up computed and reference times as instants, so a reference
// given in a different zone still compares correctly.
func (s *session) compare(refs []referenceDay, tolerance int) ([]verifyRow, int, error) {
	var rows []verifyRow
	mismatches := 0
	for _, ref := range refs {
		computed := s.times(ref.Date).Prayers()
		reference, err := prayer.ParseTimings(ref.Timings, ref.Date, ref.Zone, prayer.DefaultPrayerNames)
		if err != nil {
			return nil, 0, err
		}

		for i, p := range computed {
			row := verifyRow{
				Date:      ref.Date.Format(dateLayout),
				Prayer:    p.Name,
				Computed:  prayer.FormatClock(p.Time, s.layout),
				Reference: prayer.FormatClock(reference[i].Time.In(s.loc.Timezone), s.layout),
			}
			if p.Available() {
				diff := int(math.Round(p.Time.Sub(reference[i].Time).Minutes()))
				row.DiffMinutes = &diff
				row.Exceeds = abs(diff) > tolerance
			}
			if row.Exceeds {
				mismatches++
			}
			rows = append(rows, row)
		}
	}
	return rows, mismatches, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func diffLabel(row verifyRow) string {
	if row.DiffMinutes == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+dm", *row.DiffMinutes)
}

func writeVerifyTable(w io.Writer, s *session, refs []referenceDay, rows []verifyRow, mismatches int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Verification against Al Adhan"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.loc.Label())
	fmt.Fprintf(w, "  %s\n", display.Muted(fmt.Sprintf("%s (Al Adhan method %d)", s.describe(), s.method.Params().AlAdhanID)))
	if h := refs[0].Hijri.Format(); h != "" {
		fmt.Fprintf(w, "  %s\n", h)
	}
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Date", "Prayer", "Computed", "Al Adhan", "Diff"})
	tbl.SetMuted(prayer.Unavailable)
	tbl.AlignRight(4)
	for _, row := range rows {
		diff := diffLabel(row)
		if row.Exceeds {
			diff += " !"
		}
		tbl.AddRow([]string{row.Date, row.Prayer, row.Computed, row.Reference, diff})
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	if mismatches == 0 {
		fmt.Fprintf(w, "  %s\n\n", display.Green(fmt.Sprintf("All %d times within %d minutes.", len(rows), flagTolerance)))
		return
	}
	fmt.Fprintf(w, "  %s\n\n", display.Red(fmt.Sprintf("%d times outside the tolerance.", mismatches)))
}
