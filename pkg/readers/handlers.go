package readers

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
	config        *config.Config
	readerService *Service
}

func readerID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Reader")
	}
	return id, nil
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := readerID(c)
	if err != nil {
		return err
	}

	reader, err := h.readerService.RetrieveReader(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, reader))
}

func (h *handler) list(c echo.Context) error {
	params := ListReadersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readers, p, err := h.readerService.ListReadersWithTotal(c.Request().Context(), ListReadersOptions{
		Search:   params.Search,
		Sort:     params.Sort,
		Page:     params.Page,
		PageSize: pagination.PageSize(params.PageSize, h.config.DefaultPageSize, h.config.MaxPageSize),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"readers":    readers,
		"pagination": p,
	}
	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) choices(c echo.Context) error {
	choices, err := h.readerService.ListReaderChoices(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, choices))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateReaderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reader := &models.Reader{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
	}
	if params.Phone != "" {
		reader.Phone = &params.Phone
	}
	if params.CoverURL != "" {
		reader.CoverURL = &params.CoverURL
	}

	if err := h.readerService.CreateReader(ctx, reader); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusCreated, reader))
}

func (h *handler) issueTicket(c echo.Context) error {
	id, err := readerID(c)
	if err != nil {
		return err
	}

	ticket, err := h.readerService.IssueTicket(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusCreated, ticket))
}

func (h *handler) updateTicket(c echo.Context) error {
	id, err := readerID(c)
	if err != nil {
		return err
	}

	params := UpdateTicketPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	ticket, err := h.readerService.SetTicketActive(c.Request().Context(), id, *params.IsActive)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, ticket))
}
