package librarians

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/binder"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	librarianService *Service
}

func (h *handler) list(c echo.Context) error {
	librarians, err := h.librarianService.ListLibrarianChoices(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, librarians))
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Librarian")
	}

	librarian, err := h.librarianService.RetrieveLibrarian(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, librarian))
}

func (h *handler) create(c echo.Context) error {
	params := CreateLibrarianPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	librarian := &models.Librarian{
		FirstName: params.FirstName,
		LastName:  params.LastName,
	}
	if params.HiredAt != "" {
		hiredAt, err := time.Parse(binder.DateLayout, params.HiredAt)
		if err != nil {
			return errcodes.ValidationError(`"hired_at" should be in the format of YYYY-MM-DD`)
		}
		librarian.HiredAt = hiredAt
	}

	if err := h.librarianService.CreateLibrarian(c.Request().Context(), librarian); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusCreated, librarian))
}
