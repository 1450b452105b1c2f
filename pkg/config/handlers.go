package config

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	config *Config
}

// retrieve exposes the settings a client needs to build forms and pagers.
// Database and server settings are hidden by their json tags.
func (h *handler) retrieve(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, h.config))
}
