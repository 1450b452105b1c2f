package readers

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

const (
	ticketCodeLength   = 12
	ticketCodeAttempts = 3
)

// newTicketCode derives a code from a random UUID: its first 12 hex digits,
// upper-cased.
func newTicketCode() string {
	code := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(code[:ticketCodeLength])
}

// IssueTicket gives a reader their library ticket. A reader can only ever
// hold one. A generated code that is already taken is replaced with a fresh
// one a few times before giving up.
func (svc *Service) IssueTicket(ctx context.Context, readerID int) (*models.ReaderTicket, error) {
	for attempt := 1; ; attempt++ {
		ticket, err := svc.issueTicket(ctx, readerID, svc.ticketCode())
		if attempt < ticketCodeAttempts && isTicketCodeTaken(err) {
			continue
		}
		return ticket, err
	}
}

func (svc *Service) issueTicket(ctx context.Context, readerID int, code string) (*models.ReaderTicket, error) {
	ticket := &models.ReaderTicket{
		ReaderID: readerID,
		Code:     code,
		IssuedAt: time.Now().UTC(),
		IsActive: true,
	}

	err := database.RunInTx(ctx, svc.db, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.
			NewSelect().
			Model((*models.Reader)(nil)).
			Where("r.id = ?", readerID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Reader")
		}

		exists, err = tx.
			NewSelect().
			Model((*models.ReaderTicket)(nil)).
			Where("rt.reader_id = ?", readerID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.DuplicateTicket()
		}

		_, err = tx.
			NewInsert().
			Model(ticket).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	switch {
	case err == nil:
		return ticket, nil
	case isTicketCodeTaken(err):
		return nil, err
	case database.IsUniqueViolation(err):
		return nil, errcodes.DuplicateTicket()
	}
	return nil, err
}

func isTicketCodeTaken(err error) bool {
	return database.IsUniqueViolationOn(err, "ux_reader_tickets_code", "reader_tickets.code")
}

func (svc *Service) RetrieveTicket(ctx context.Context, readerID int) (*models.ReaderTicket, error) {
	ticket := &models.ReaderTicket{}
	err := svc.db.
		NewSelect().
		Model(ticket).
		Where("rt.reader_id = ?", readerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Ticket")
		}
		return nil, errors.WithStack(err)
	}
	return ticket, nil
}

// SetTicketActive blocks or unblocks a reader's ticket.
func (svc *Service) SetTicketActive(ctx context.Context, readerID int, active bool) (*models.ReaderTicket, error) {
	ticket, err := svc.RetrieveTicket(ctx, readerID)
	if err != nil {
		return nil, err
	}

	ticket.IsActive = active
	_, err = svc.db.
		NewUpdate().
		Model(ticket).
		Column("is_active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ticket, nil
}
