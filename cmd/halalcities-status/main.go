// Command halalcities-status prints the next prayer on one line for status
// bars such as tmux. It calculates locally and never touches the network,
// so it is safe to run every few seconds.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/ramadan"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now()); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, now time.Time) error {
	fs := pflag.NewFlagSet("halalcities-status", pflag.ContinueOnError)
	fs.SetOutput(out)

	latitude := fs.Float64("latitude", 0, "Latitude in degrees (north positive)")
	longitude := fs.Float64("longitude", 0, "Longitude in degrees (east positive)")
	timezone := fs.String("timezone", "", "IANA timezone (default: derived from the longitude)")

	method := fs.String("method", prayer.DefaultMethod.String(), "Calculation method: "+strings.Join(prayer.MethodTags(), ", "))
	school := fs.String("school", "shafi", "Asr school: shafi or hanafi")
	highLat := fs.String("high-latitude", prayer.HighLatNone.String(), "High latitude rule: none, middle-of-night, one-seventh or angle-based")

	format := fs.String("format", prayer.FormatNameAndTime, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}'). Template fields: .Name, .ShortName, .Time, .Remaining, .Hours, .Minutes")
	timeFormat := fs.String("time-format", "24h", "Time format: 12h or 24h")
	prayers := fs.String("prayers", "", "Comma-separated list of prayers to track (default: Fajr,Sunrise,Dhuhr,Asr,Maghrib,Isha)")

	showVersion := fs.Bool("version", false, "Print version and exit")
	listMethods := fs.Bool("list-methods", false, "Print supported calculation methods and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(out, "halalcities-status %s\n", version)
		return nil
	}
	if *listMethods {
		printMethods(out)
		return nil
	}

	if !fs.Changed("latitude") || !fs.Changed("longitude") {
		return errors.New("--latitude and --longitude are required")
	}
	coord := geo.Coordinate{Latitude: *latitude, Longitude: *longitude}
	if err := coord.Validate(); err != nil {
		return err
	}

	m, err := prayer.ParseMethod(*method)
	if err != nil {
		return err
	}
	s, err := prayer.ParseSchool(*school)
	if err != nil {
		return err
	}
	rule, err := prayer.ParseHighLatitudeRule(*highLat)
	if err != nil {
		return err
	}
	if *timeFormat != "12h" && *timeFormat != "24h" {
		return fmt.Errorf("invalid --time-format %q: must be 12h or 24h", *timeFormat)
	}

	loc := prayer.LongitudeZone(coord.Longitude)
	if *timezone != "" {
		if loc, err = time.LoadLocation(*timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", *timezone, err)
		}
	}

	names := prayer.DefaultPrayerNames
	if *prayers != "" {
		names = nil
		for _, n := range strings.Split(*prayers, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}

	opts := prayer.Options{Location: loc, School: s, HighLatitude: rule}
	cal := ramadan.DefaultCalendar()
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var upcoming []prayer.Prayer
	for _, date := range []time.Time{today, today.AddDate(0, 0, 1)} {
		opts.Ramadan = cal.Contains(date)
		selected, err := prayer.Calculate(coord, date, m, opts).Select(names)
		if err != nil {
			return err
		}
		upcoming = append(upcoming, selected...)
	}

	next, ok := prayer.Resolve(upcoming, now)
	if !ok {
		fmt.Fprint(out, prayer.Unavailable)
		return nil
	}
	fmt.Fprint(out, prayer.Render(next, now, *format, prayer.TimeLayout(*timeFormat)))
	return nil
}

// printMethods prints the table of supported calculation methods.
func printMethods(out io.Writer) {
	fmt.Fprintln(out, "Supported calculation methods:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-8s %s\n", "Tag", "Name")
	fmt.Fprintf(out, "  %-8s %s\n", "---", "----")
	for _, m := range prayer.Methods() {
		p := m.Params()
		fmt.Fprintf(out, "  %-8s %s\n", p.Tag, p.Name)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Use --method <tag> to select a calculation method. The default is %s.\n", prayer.DefaultMethod)
}
