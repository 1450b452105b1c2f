package readers

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers reader and ticket routes on a
// pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		config:        cfg,
		readerService: NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/choices", h.choices)
	g.GET("/:id", h.retrieve)
	g.POST("/:id/ticket", h.issueTicket)
	g.PATCH("/:id/ticket", h.updateTicket)
}
