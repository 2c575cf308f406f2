// Package solar computes the sun's declination and the equation of time for a
// calendar date, using the low-precision almanac series common to prayer-time
// tables (accurate to about a minute of time between 1950 and 2050).
package solar

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/halalcities/halalcities/internal/angle"
)

// j2000 is the Julian day of the J2000.0 epoch.
const j2000 = 2451545.0

// Parameters are the solar values for one calendar date.
type Parameters struct {
	DayOfYear      int
	Declination    float64 // degrees
	EquationOfTime float64 // minutes; apparent minus mean solar time
}

// Compute returns the solar parameters for the calendar date of date.
// The time of day and location of date are ignored; the series is evaluated
// at 12:00 UT of that date.
func Compute(date time.Time) Parameters {
	y, m, d := date.Date()
	jd := julian.CalendarGregorianToJD(y, int(m), float64(d)+0.5)
	decl, eqt := position(jd - j2000)

	return Parameters{
		DayOfYear:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC).YearDay(),
		Declination:    decl,
		EquationOfTime: eqt * 60,
	}
}

// position returns declination in degrees and the equation of time in hours
// for n days since J2000.0.
func position(n float64) (decl, eqt float64) {
	g := angle.Normalize360(357.529 + 0.98560028*n)
	q := angle.Normalize360(280.459 + 0.98564736*n)
	l := angle.Normalize360(q + 1.915*angle.SinD(g) + 0.020*angle.SinD(2*g))
	e := 23.439 - 0.00000036*n

	ra := angle.Normalize24(angle.Atan2D(angle.CosD(e)*angle.SinD(l), angle.CosD(l)) / 15)
	decl = angle.AsinD(angle.SinD(e) * angle.SinD(l))

	eqt = q/15 - ra
	switch {
	case eqt > 12:
		eqt -= 24
	case eqt < -12:
		eqt += 24
	}
	return decl, eqt
}
