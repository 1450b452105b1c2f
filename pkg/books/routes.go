package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		config:      cfg,
		bookService: NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/choices", h.choices)
	g.GET("/:id", h.retrieve)
}
