package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/pagination"
)

type handler struct {
	config      *config.Config
	bookService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, p, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Search:        params.Search,
		Sort:          params.Sort,
		AvailableOnly: params.Available,
		AuthorID:      params.AuthorID,
		Page:          params.Page,
		PageSize:      pagination.PageSize(params.PageSize, h.config.DefaultPageSize, h.config.MaxPageSize),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"books":      books,
		"pagination": p,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) choices(c echo.Context) error {
	ctx := c.Request().Context()

	choices, err := h.bookService.ListBookChoices(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, choices))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		AuthorID:       params.AuthorID,
		Name:           params.Name,
		Description:    params.Description,
		AvailableCount: params.AvailableCount,
	}
	if params.CoverURL != "" {
		book.CoverURL = &params.CoverURL
	}

	if err := h.bookService.CreateBook(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	created, err := h.bookService.RetrieveBook(ctx, book.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, created))
}
