package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/halalcities/halalcities/internal/cache"
	"github.com/halalcities/halalcities/internal/config"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/qibla"
	"github.com/halalcities/halalcities/internal/ramadan"
)

// session bundles everything a schedule command needs: the merged config,
// the resolved place and the calculation settings.
type session struct {
	cfg      *config.Config
	cache    *cache.Cache
	loc      resolvedLocation
	method   prayer.Method
	opts     prayer.Options
	layout   string
	names    []string
	calendar *ramadan.Calendar
	now      time.Time
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}

	c := openCache(cfg)
	loc, err := resolveLocation(cmd.Context(), cfg, c)
	if err != nil {
		closeCache(c)
		return nil, err
	}

	cal, err := ramadan.LoadCalendar(cfg.RamadanCalendar)
	if err != nil {
		closeCache(c)
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		cache:    c,
		loc:      loc,
		method:   cfg.MethodOrDefault(prayer.DefaultMethod),
		layout:   prayer.TimeLayout(cfg.TimeFormat),
		names:    cfg.PrayerNames(),
		calendar: cal,
		now:      nowFunc().In(loc.Timezone),
	}
	// A directory city's customary method applies unless one was chosen.
	if loc.Method != "" && !methodChosen(cmd) {
		if m, err := prayer.ParseMethod(loc.Method); err == nil {
			s.method = m
		}
	}
	s.opts = prayer.Options{
		Location:     loc.Timezone,
		School:       cfg.SchoolOrDefault(prayer.Shafi),
		HighLatitude: cfg.HighLatitudeOrDefault(prayer.HighLatNone),
	}
	if len(s.names) == 0 {
		s.names = prayer.DefaultPrayerNames
	}
	return s, nil
}

// methodChosen reports whether the method came from a flag or the config file.
func methodChosen(cmd *cobra.Command) bool {
	if flagWasSet(cmd.Flags(), cmd.Root().PersistentFlags(), "method") {
		return true
	}
	return loadedConfig != nil && loadedConfig.Method != ""
}

func (s *session) Close() {
	closeCache(s.cache)
}

func closeCache(c *cache.Cache) {
	if c != nil {
		c.Close()
	}
}

// today returns midnight of the current civil date at the location.
func (s *session) today() time.Time {
	y, m, d := s.now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc.Timezone)
}

// times computes the schedule for date, using the Ramadan Isha delay on
// dates the calendar marks as Ramadan.
func (s *session) times(date time.Time) prayer.Times {
	opts := s.opts
	opts.Ramadan = s.calendar.Contains(date)
	return prayer.Calculate(s.loc.Coord, date, s.method, opts)
}

// selected returns the configured prayers of date.
func (s *session) selected(date time.Time) ([]prayer.Prayer, error) {
	return s.times(date).Select(s.names)
}

// next finds the upcoming configured prayer, looking into tomorrow once
// today's are over.
func (s *session) next() (prayer.NextInfo, bool, error) {
	today := s.today()
	prayers, err := s.selected(today)
	if err != nil {
		return prayer.NextInfo{}, false, err
	}
	tomorrow, err := s.selected(today.AddDate(0, 0, 1))
	if err != nil {
		return prayer.NextInfo{}, false, err
	}
	info, ok := prayer.Resolve(append(prayers, tomorrow...), s.now)
	return info, ok, nil
}

func (s *session) qibla() qibla.Result {
	return qibla.Compute(s.loc.Coord)
}

// ramadanDay returns the 1-based day of Ramadan for date, or 0 outside it.
func (s *session) ramadanDay(date time.Time) int {
	if !s.calendar.Contains(date) {
		return 0
	}
	r, err := s.calendar.Range(date.Year())
	if err != nil {
		return 0
	}
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(r.Start).Hours()/24) + 1
}

// cacheQuery keys computed results by every setting that changes them.
func (s *session) cacheQuery() cache.Query {
	return cache.Query{
		Latitude:     s.loc.Coord.Latitude,
		Longitude:    s.loc.Coord.Longitude,
		Method:       int(s.method),
		School:       int(s.opts.School),
		HighLatitude: int(s.opts.HighLatitude),
		Timezone:     s.loc.Timezone.String(),
	}
}

func (s *session) describe() string {
	return fmt.Sprintf("%s, %s Asr", s.method.Params().Name, s.opts.School)
}
