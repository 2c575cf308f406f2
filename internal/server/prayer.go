package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/halalcities/halalcities/internal/cache"
	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/qibla"
	"github.com/halalcities/halalcities/internal/ramadan"
)

type prayerController struct {
	deps Deps
}

// PrayerModule serves the coordinate-based endpoints.
func PrayerModule(d Deps) Module {
	ctl := &prayerController{deps: d}
	return ModuleFunc(func(c *Controller) {
		c.GET("/methods", ctl.listMethods)
		c.GET("/prayer-times", ctl.prayerTimes)
		c.GET("/qibla", ctl.qibla)
		c.GET("/next", ctl.next)
		c.GET("/ramadan/:year", ctl.ramadan)
	})
}

// GET /api/methods
func (p *prayerController) listMethods(_ *gin.Context) (any, *Error) {
	out := make([]methodResponse, 0, len(prayer.Methods()))
	for _, m := range prayer.Methods() {
		params := m.Params()
		out = append(out, methodResponse{
			Tag:       params.Tag,
			Name:      params.Name,
			FajrAngle: params.FajrAngle,
			IshaAngle: params.IshaAngle,
			IshaDelay: int(params.IshaDelay),
		})
	}
	return out, nil
}

// GET /api/prayer-times?lat&lon&date&method&tz&school&high_lat&format
func (p *prayerController) prayerTimes(c *gin.Context) (any, *Error) {
	coord, err := coordinate(c)
	if err != nil {
		return nil, toError(err)
	}
	m, err := method(c, p.deps.DefaultMethod)
	if err != nil {
		return nil, toError(err)
	}
	return p.times(c, coord, m, prayer.LongitudeZone(coord.Longitude), nil)
}

// times answers a prayer-times request once the place is known. city is
// echoed back when the request named one.
func (p *prayerController) times(c *gin.Context, coord geo.Coordinate, m prayer.Method, defLoc *time.Location, city *directory.City) (any, *Error) {
	opts, err := options(c, defLoc)
	if err != nil {
		return nil, toError(err)
	}
	day, err := date(c, opts.Location, p.deps.Now())
	if err != nil {
		return nil, toError(err)
	}
	clock, err := layout(c)
	if err != nil {
		return nil, toError(err)
	}
	opts.Ramadan = p.deps.Calendar.Contains(day)

	times := prayer.Calculate(coord, day, m, opts)
	return prayerTimesResponse{
		Date:         times.Date.Format(dateLayout),
		Timezone:     opts.Location.String(),
		Method:       m.String(),
		School:       opts.School.String(),
		HighLatitude: opts.HighLatitude.String(),
		Ramadan:      opts.Ramadan,
		Coordinates:  coord,
		Times:        times.Strings(clock),
		City:         city,
	}, nil
}

// GET /api/qibla?lat&lon
func (p *prayerController) qibla(c *gin.Context) (any, *Error) {
	coord, err := coordinate(c)
	if err != nil {
		return nil, toError(err)
	}
	return newQiblaResponse(coord, nil), nil
}

func newQiblaResponse(coord geo.Coordinate, city *directory.City) qiblaResponse {
	res := qibla.Compute(coord)
	return qiblaResponse{
		Coordinates: coord,
		Result:      res,
		Compass:     res.Compass(),
		City:        city,
	}
}

// GET /api/next?lat&lon&method&tz&now
func (p *prayerController) next(c *gin.Context) (any, *Error) {
	coord, err := coordinate(c)
	if err != nil {
		return nil, toError(err)
	}
	m, err := method(c, p.deps.DefaultMethod)
	if err != nil {
		return nil, toError(err)
	}
	opts, err := options(c, prayer.LongitudeZone(coord.Longitude))
	if err != nil {
		return nil, toError(err)
	}
	now, err := instant(c, p.deps.Now())
	if err != nil {
		return nil, toError(err)
	}
	opts.Ramadan = p.deps.Calendar.Contains(now.In(opts.Location))

	info, ok := prayer.Upcoming(coord, now, m, opts)
	if !ok {
		return nil, &Error{Code: http.StatusNotFound, Message: "no prayer time can be computed at this location"}
	}
	resp := nextResponse{NextInfo: info}
	resp.Time = info.Time.In(opts.Location)
	today := prayer.Calculate(coord, now.In(opts.Location), m, opts).Prayers()
	if cur := prayer.CurrentPrayer(today, now); cur != nil {
		resp.Current = cur.Name
	}
	return resp, nil
}

// GET /api/ramadan/:year?lat&lon&method&tz&school&high_lat
func (p *prayerController) ramadan(c *gin.Context) (any, *Error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return nil, toError(fmt.Errorf("%w: year must be a number", errInvalidParam))
	}
	coord, err := coordinate(c)
	if err != nil {
		return nil, toError(err)
	}
	m, err := method(c, p.deps.DefaultMethod)
	if err != nil {
		return nil, toError(err)
	}
	opts, err := options(c, prayer.LongitudeZone(coord.Longitude))
	if err != nil {
		return nil, toError(err)
	}
	r, err := p.deps.Calendar.Range(year)
	if err != nil {
		return nil, toError(err)
	}

	q := cache.Query{
		Latitude:     coord.Latitude,
		Longitude:    coord.Longitude,
		Method:       int(m),
		School:       int(opts.School),
		HighLatitude: int(opts.HighLatitude),
		Timezone:     opts.Location.String(),
	}
	var days []ramadan.Day
	if p.deps.Cache != nil {
		days = p.deps.Cache.LoadRamadan(c.Request.Context(), year, r, q)
	}
	if days == nil {
		days = ramadan.Build(coord, r, m, opts)
		if p.deps.Cache != nil {
			if err := p.deps.Cache.SaveRamadan(c.Request.Context(), year, r, q, days); err != nil {
				log.Warn().Err(err).Int("year", year).Msg("failed to cache ramadan schedule")
			}
		}
	}

	return newRamadanResponse(year, r, m, opts.Location, days), nil
}
