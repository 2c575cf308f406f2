package server

import (
	"github.com/gin-gonic/gin"

	"github.com/halalcities/halalcities/internal/directory"
)

type cityController struct {
	deps   Deps
	prayer *prayerController
}

// CityModule serves the directory endpoints.
func CityModule(d Deps) Module {
	ctl := &cityController{deps: d, prayer: &prayerController{deps: d}}
	return ModuleFunc(func(c *Controller) {
		c.GET("/cities", ctl.listCities)
		c.GET("/cities/:slug", ctl.getCity)
		c.GET("/cities/:slug/prayer-times", ctl.cityPrayerTimes)
		c.GET("/cities/:slug/qibla", ctl.cityQibla)
	})
}

// GET /api/cities?country
func (ctl *cityController) listCities(c *gin.Context) (any, *Error) {
	cities, err := ctl.deps.Cities.ListCities(c.Request.Context(), c.Query("country"))
	if err != nil {
		return nil, toError(err)
	}
	if cities == nil {
		cities = []directory.City{}
	}
	return cities, nil
}

func (ctl *cityController) lookup(c *gin.Context) (directory.City, *Error) {
	city, err := ctl.deps.Cities.GetCity(c.Request.Context(), c.Param("slug"))
	if err != nil {
		return directory.City{}, toError(err)
	}
	return city, nil
}

// GET /api/cities/:slug
func (ctl *cityController) getCity(c *gin.Context) (any, *Error) {
	city, apiErr := ctl.lookup(c)
	if apiErr != nil {
		return nil, apiErr
	}
	return city, nil
}

// GET /api/cities/:slug/prayer-times?date&method&tz&school&high_lat&format
func (ctl *cityController) cityPrayerTimes(c *gin.Context) (any, *Error) {
	city, apiErr := ctl.lookup(c)
	if apiErr != nil {
		return nil, apiErr
	}
	loc, err := city.Location()
	if err != nil {
		return nil, toError(err)
	}
	m, err := method(c, city.MethodOr(ctl.deps.DefaultMethod))
	if err != nil {
		return nil, toError(err)
	}
	return ctl.prayer.times(c, city.Coordinate(), m, loc, &city)
}

// GET /api/cities/:slug/qibla
func (ctl *cityController) cityQibla(c *gin.Context) (any, *Error) {
	city, apiErr := ctl.lookup(c)
	if apiErr != nil {
		return nil, apiErr
	}
	return newQiblaResponse(city.Coordinate(), &city), nil
}
