// Package server exposes prayer times, Qibla directions, Ramadan schedules
// and the city directory over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/halalcities/halalcities/internal/cache"
	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/ramadan"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Cities        directory.Store   // nil disables the /api/cities routes
	Cache         *cache.Cache      // optional; caches Ramadan schedules
	Calendar      *ramadan.Calendar // defaults to the embedded table
	DefaultMethod prayer.Method
	Logger        *zerolog.Logger // defaults to the global logger
	Now           func() time.Time
}

func (d *Deps) setDefaults() {
	if d.Calendar == nil {
		d.Calendar = ramadan.DefaultCalendar()
	}
	if !d.DefaultMethod.Valid() {
		d.DefaultMethod = prayer.DefaultMethod
	}
	if d.Logger == nil {
		d.Logger = &log.Logger
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// NewRouter builds the gin engine with every module mounted.
func NewRouter(d Deps) *gin.Engine {
	d.setDefaults()

	r := gin.New()
	r.Use(RequestID(), AccessLog(*d.Logger), Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS", "HEAD"},
		AllowHeaders:    []string{"Origin", "Accept", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	modules := []Module{PrayerModule(d)}
	if d.Cities != nil {
		modules = append(modules, CityModule(d))
	}
	MountGroup(r, GroupConfig{Prefix: "/api"}, modules...)

	return r
}

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
