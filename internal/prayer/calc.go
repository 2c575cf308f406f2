package prayer

import (
	"fmt"
	"math"
	"time"

	"github.com/halalcities/halalcities/internal/angle"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/solar"
)

// horizonAltitude is the altitude of the sun's centre at apparent sunrise and
// sunset: atmospheric refraction plus the solar semi-diameter.
const horizonAltitude = -0.833

// Options tune a calculation beyond the method's angles.
type Options struct {
	// Location is the civil time zone of the results. When nil a fixed zone
	// derived from the longitude is used (see LongitudeZone).
	Location     *time.Location
	School       School
	HighLatitude HighLatitudeRule
	// Ramadan switches minute-based Isha methods to their Ramadan delay.
	Ramadan bool
}

// Calculate computes the six daily times for coord on the calendar date of
// date. Fields whose solar altitude is never reached on that date are left as
// the zero time.Time; the rest of the set is still returned.
func Calculate(coord geo.Coordinate, date time.Time, method Method, opts Options) Times {
	loc := opts.Location
	if loc == nil {
		loc = LongitudeZone(coord.Longitude)
	}
	params := method.Params()

	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	// Events are computed relative to 00:00 UT. Zones far from their
	// longitude's natural offset put that day's noon on a neighbouring civil
	// date, so redo the calculation from the matching UT day.
	ev := dayEvents(coord, day, params, opts)
	if shift := dateShift(day, ev.at(ev.dhuhr), loc); shift != 0 {
		ev = dayEvents(coord, day.AddDate(0, 0, -shift), params, opts)
	}

	return Times{
		Date:     time.Date(y, m, d, 0, 0, 0, 0, loc),
		Location: loc,
		Method:   method,
		Fajr:     inZone(ev.at(ev.fajr), loc),
		Sunrise:  inZone(ev.at(ev.sunrise), loc),
		Dhuhr:    inZone(ev.at(ev.dhuhr), loc),
		Asr:      inZone(ev.at(ev.asr), loc),
		Maghrib:  inZone(ev.at(ev.maghrib), loc),
		Isha:     inZone(ev.at(ev.isha), loc),
	}
}

// LongitudeZone returns a fixed zone whose offset is the longitude rounded to
// whole hours (15 degrees per hour), named like "UTC+3".
func LongitudeZone(longitude float64) *time.Location {
	hours := int(math.Round(longitude / 15))
	if hours == 0 {
		return time.FixedZone("UTC", 0)
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600)
}

// events holds event times in minutes after base (00:00 UT). NaN marks an
// event whose altitude is not reached.
type events struct {
	base                                     time.Time
	fajr, sunrise, dhuhr, asr, maghrib, isha float64
}

func dayEvents(coord geo.Coordinate, day time.Time, params MethodParams, opts Options) events {
	sun := solar.Compute(day)
	lat, decl := coord.Latitude, sun.Declination
	noon := 720 - 4*coord.Longitude - sun.EquationOfTime

	horizon := hourAngle(lat, decl, horizonAltitude)
	ev := events{
		base:    day,
		fajr:    noon - 4*hourAngle(lat, decl, -params.FajrAngle),
		sunrise: noon - 4*horizon,
		dhuhr:   noon,
		asr:     noon + 4*hourAngle(lat, decl, asrAltitude(lat, decl, opts.School.ShadowFactor())),
		maghrib: noon + 4*horizon,
	}

	if params.IshaDelay > 0 {
		delay := params.IshaDelay
		if opts.Ramadan && params.IshaDelayRamadan > 0 {
			delay = params.IshaDelayRamadan
		}
		ev.isha = ev.maghrib + delay
	} else {
		ev.isha = noon + 4*hourAngle(lat, decl, -params.IshaAngle)
	}

	if opts.HighLatitude != HighLatNone {
		ev.adjustHighLatitude(params, opts.HighLatitude)
	}
	return ev
}

// adjustHighLatitude bounds Fajr and Isha by a portion of the night between
// sunset and the next sunrise. It needs both horizon crossings.
func (ev *events) adjustHighLatitude(params MethodParams, rule HighLatitudeRule) {
	if math.IsNaN(ev.sunrise) || math.IsNaN(ev.maghrib) {
		return
	}
	night := 1440 - (ev.maghrib - ev.sunrise)

	if limit := rule.portion(params.FajrAngle) * night; math.IsNaN(ev.fajr) || ev.sunrise-ev.fajr > limit {
		ev.fajr = ev.sunrise - limit
	}

	if params.IshaDelay > 0 {
		return
	}
	if limit := rule.portion(params.IshaAngle) * night; math.IsNaN(ev.isha) || ev.isha-ev.maghrib > limit {
		ev.isha = ev.maghrib + limit
	}
}

// at converts minutes after base to an instant rounded to the minute.
func (ev events) at(minutes float64) time.Time {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return time.Time{}
	}
	d := time.Duration(minutes * float64(time.Minute))
	return ev.base.Add(d).Round(time.Minute)
}

// hourAngle returns the hour angle in degrees at which the sun stands at
// altitude alt, or NaN when it never does on this day.
func hourAngle(lat, decl, alt float64) float64 {
	cosH := (angle.SinD(alt) - angle.SinD(lat)*angle.SinD(decl)) / (angle.CosD(lat) * angle.CosD(decl))
	if math.IsNaN(cosH) || cosH < -1 || cosH > 1 {
		return math.NaN()
	}
	return angle.AcosD(cosH)
}

// asrAltitude is the sun's altitude when a shadow reaches factor times the
// object's length plus its noon shadow.
func asrAltitude(lat, decl, factor float64) float64 {
	return angle.AcotD(factor + angle.TanD(math.Abs(lat-decl)))
}

// dateShift returns how many days the civil date of noon in loc is ahead of day.
func dateShift(day, noon time.Time, loc *time.Location) int {
	if noon.IsZero() {
		return 0
	}
	y, m, d := noon.In(loc).Date()
	local := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(math.Round(local.Sub(day).Hours() / 24))
}

func inZone(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(loc)
}
