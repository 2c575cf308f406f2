package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halalcities/halalcities/internal/directory"
	"github.com/halalcities/halalcities/internal/geo"
	"github.com/halalcities/halalcities/internal/prayer"
	"github.com/halalcities/halalcities/internal/ramadan"
)

// Error is returned by handlers and written as {"error": Message}.
type Error struct {
	Code    int
	Message string
}

func badRequest(err error) *Error {
	return &Error{Code: http.StatusBadRequest, Message: err.Error()}
}

// toError maps domain errors onto HTTP status codes.
func toError(err error) *Error {
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, prayer.ErrUnknownMethod),
		errors.Is(err, errInvalidParam):
		return &Error{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, directory.ErrCityNotFound),
		errors.Is(err, ramadan.ErrUnknownYear):
		return &Error{Code: http.StatusNotFound, Message: err.Error()}
	default:
		return &Error{Code: http.StatusInternalServerError, Message: "internal error"}
	}
}

// HandlerFunc returns a JSON body or an error.
type HandlerFunc func(ctx *gin.Context) (any, *Error)

// ResolveEndpoint adapts a HandlerFunc to gin.
func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			if apiErr.Code >= http.StatusInternalServerError {
				_ = ctx.Error(errors.New(apiErr.Message))
			}
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

// Controller is the route group a Module attaches its endpoints to.
type Controller struct {
	Group *gin.RouterGroup
}

// GET registers a read-only endpoint.
func (c *Controller) GET(path string, h HandlerFunc) {
	c.Group.GET(path, ResolveEndpoint(h))
}

// Module is a pluggable feature that attaches its endpoints to a Controller.
type Module interface {
	Mount(c *Controller)
}

// ModuleFunc lets you define a Module with a simple function.
type ModuleFunc func(c *Controller)

func (f ModuleFunc) Mount(c *Controller) { f(c) }

// GroupConfig tells MountGroup where and how to mount modules.
type GroupConfig struct {
	Prefix     string
	Middleware []gin.HandlerFunc
}

// MountGroup mounts one or more Modules under a prefix.
func MountGroup(parent gin.IRouter, cfg GroupConfig, modules ...Module) {
	grp := parent.Group(cfg.Prefix, cfg.Middleware...)
	controller := &Controller{Group: grp}
	for _, m := range modules {
		m.Mount(controller)
	}
}
