package loans

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers loan routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		config:      cfg,
		loanService: NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PATCH("/:id", h.update)
	g.POST("/:id/return", h.returnLoan)
	g.POST("/:id/undo-return", h.undoReturn)
}
