package loans

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/binder"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/pagination"
)

type handler struct {
	config      *config.Config
	loanService *Service
}

func loanID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Loan")
	}
	return id, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(binder.DateLayout, value)
	if err != nil {
		return time.Time{}, errcodes.ValidationError(strconv.Quote(field) + " should be in the format of YYYY-MM-DD")
	}
	return t, nil
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return err
	}

	loan, err := h.loanService.RetrieveLoan(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

func (h *handler) list(c echo.Context) error {
	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListLoansOptions{
		OverdueOnly: params.Overdue,
		ReaderID:    params.ReaderID,
		BookID:      params.BookID,
		Sort:        params.Sort,
		Page:        params.Page,
		PageSize:    pagination.PageSize(params.PageSize, h.config.DefaultPageSize, h.config.MaxPageSize),
	}
	if params.Active != nil {
		opts.ActiveOnly = *params.Active
		opts.ReturnedOnly = !*params.Active
	}

	loans, p, err := h.loanService.ListLoansWithTotal(c.Request().Context(), opts)
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"loans":      loans,
		"pagination": p,
	}
	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	dueDate := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, h.config.DefaultLoanDays)
	if params.DueDate != "" {
		var err error
		dueDate, err = parseDate("due_date", params.DueDate)
		if err != nil {
			return err
		}
	}

	loan, err := h.loanService.CreateLoan(ctx, CreateLoanOptions{
		BookID:      params.BookID,
		ReaderID:    params.ReaderID,
		LibrarianID: params.LibrarianID,
		DueDate:     dueDate,
	})
	if err != nil {
		if errcodes.IsRetryable(err) {
			logger.FromContext(ctx).Warn("loan contention", logger.Data{"book_id": params.BookID, "error": err.Error()})
		}
		return errors.WithStack(err)
	}
	logger.FromContext(ctx).Info("loan created", logger.Data{"loan_id": loan.ID, "book_id": loan.BookID, "reader_id": loan.ReaderID})

	detail, err := h.loanService.RetrieveLoan(ctx, loan.ID)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusCreated, detail))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := loanID(c)
	if err != nil {
		return err
	}

	params := UpdateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	dueDate, err := parseDate("due_date", params.DueDate)
	if err != nil {
		return err
	}

	if _, err := h.loanService.UpdateLoan(ctx, id, UpdateLoanOptions{
		DueDate:    dueDate,
		ReturnedAt: params.ReturnedAt,
	}); err != nil {
		return errors.WithStack(err)
	}
	return h.respond(c, id)
}

func (h *handler) returnLoan(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return err
	}

	loan, err := h.loanService.ReturnLoan(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	logger.FromContext(c.Request().Context()).Info("loan returned", logger.Data{"loan_id": loan.ID, "book_id": loan.BookID})
	return h.respond(c, id)
}

func (h *handler) undoReturn(c echo.Context) error {
	id, err := loanID(c)
	if err != nil {
		return err
	}

	if _, err := h.loanService.UndoReturn(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}
	return h.respond(c, id)
}

func (h *handler) respond(c echo.Context, id int) error {
	loan, err := h.loanService.RetrieveLoan(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, loan))
}
