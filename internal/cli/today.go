package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/display"
	"github.com/halalcities/halalcities/internal/prayer"
)

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	today := s.today()
	prayers, err := s.selected(today)
	if err != nil {
		return err
	}

	current := prayer.CurrentPrayer(prayers, s.now)
	next, hasNext, err := s.next()
	if err != nil {
		return err
	}
	view := todayView{
		session: s,
		prayers: prayers,
		current: current,
		hijri:   s.hijri(cmd.Context(), today),
	}
	if hasNext {
		view.upcoming = &next
	}

	if FlagJSON {
		return view.renderJSON(cmd.OutOrStdout())
	}
	view.renderRich(cmd.OutOrStdout())
	return nil
}

type todayView struct {
	*session
	prayers  []prayer.Prayer
	current  *prayer.Prayer
	upcoming *prayer.NextInfo
	hijri    string
}

// renderRich renders the colored terminal output for today's prayer schedule.
func (v todayView) renderRich(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", v.loc.Label())
	fmt.Fprintf(w, "  %s\n", v.loc.Timezone)
	fmt.Fprintf(w, "  %s\n", formatDate(v.now))
	if v.hijri != "" {
		fmt.Fprintf(w, "  %s\n", v.hijri)
	}
	if day := v.ramadanDay(v.now); day > 0 {
		fmt.Fprintf(w, "  %s\n", display.Green(fmt.Sprintf("Ramadan, day %d", day)))
	}
	fmt.Fprintf(w, "  %s\n", display.Muted(v.describe()))
	fmt.Fprintln(w)

	maxNameLen := 0
	for _, p := range v.prayers {
		if len(p.Name) > maxNameLen {
			maxNameLen = len(p.Name)
		}
	}

	for _, p := range v.prayers {
		timeStr := prayer.FormatClock(p.Time, v.layout)
		line := fmt.Sprintf("  %s  %s", padRight(p.Name, maxNameLen), timeStr)

		switch {
		case !p.Available():
			fmt.Fprintln(w, display.Muted(line))
		case v.current != nil && p.Name == v.current.Name:
			fmt.Fprintln(w, display.Dim(line))
		case v.isNext(p):
			suffix := fmt.Sprintf("  <- next in %s", v.upcoming.RemainingLabel)
			fmt.Fprintln(w, display.Accent(line)+display.Accent(suffix))
		default:
			fmt.Fprintln(w, line)
		}
	}

	if v.upcoming != nil && !v.nextIsToday() {
		fmt.Fprintf(w, "  %s\n", display.Muted(fmt.Sprintf("Next: %s tomorrow at %s, in %s",
			v.upcoming.Name, prayer.FormatClock(v.upcoming.Time, v.layout), v.upcoming.RemainingLabel)))
	}

	q := v.qibla()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %s, %s\n", padRight("Qibla", maxNameLen), display.Bearing(q.BearingDegrees, q.Compass()), display.Distance(q.DistanceKm))
	fmt.Fprintln(w)
}

func (v todayView) isNext(p prayer.Prayer) bool {
	return v.upcoming != nil && p.Name == v.upcoming.Name && p.Time.Equal(v.upcoming.Time)
}

func (v todayView) nextIsToday() bool {
	for _, p := range v.prayers {
		if v.isNext(p) {
			return true
		}
	}
	return false
}

// formatDate returns a date like "Friday, 20 March 2026".
func formatDate(t time.Time) string {
	return t.Format("Monday, 02 January 2006")
}

// padRight pads a string to the given width with spaces.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location todayJSONLocation `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Method   string            `json:"method"`
	School   string            `json:"school"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current"`
	Next     *todayJSONNext    `json:"next"`
	Qibla    todayJSONQibla    `json:"qibla"`
}

type todayJSONLocation struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`
}

type todayJSONDate struct {
	Gregorian  string `json:"gregorian"`
	Hijri      string `json:"hijri,omitempty"`
	RamadanDay int    `json:"ramadan_day,omitempty"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Date      string `json:"date"`
	Remaining string `json:"remaining"`
}

type todayJSONQibla struct {
	Bearing    float64 `json:"bearing"`
	Compass    string  `json:"compass"`
	DistanceKm float64 `json:"distance_km"`
}

// renderJSON renders structured JSON output.
func (v todayView) renderJSON(w io.Writer) error {
	timings := make(map[string]string, len(v.prayers))
	for _, p := range v.prayers {
		timings[strings.ToLower(p.Name)] = prayer.FormatClock(p.Time, v.layout)
	}

	q := v.qibla()
	out := todayJSON{
		Location: v.locationJSON(),
		Date: todayJSONDate{
			Gregorian:  v.now.Format(dateLayout),
			Hijri:      v.hijri,
			RamadanDay: v.ramadanDay(v.now),
		},
		Method:  v.method.String(),
		School:  strings.ToLower(v.opts.School.String()),
		Timings: timings,
		Qibla: todayJSONQibla{
			Bearing:    q.BearingDegrees,
			Compass:    q.Compass(),
			DistanceKm: q.DistanceKm,
		},
	}

	if v.current != nil {
		out.Current = strings.ToLower(v.current.Name)
	}

	if v.upcoming != nil {
		out.Next = &todayJSONNext{
			Prayer:    strings.ToLower(v.upcoming.Name),
			Time:      prayer.FormatClock(v.upcoming.Time, v.layout),
			Date:      v.upcoming.Time.Format(dateLayout),
			Remaining: v.upcoming.RemainingLabel,
		}
	}

	return writeJSON(w, out)
}

// writeJSON prints v indented, followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
