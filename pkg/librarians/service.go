package librarians

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateLibrarian(ctx context.Context, librarian *models.Librarian) error {
	if librarian.HiredAt.IsZero() {
		librarian.HiredAt = time.Now().UTC()
	}

	_, err := svc.db.
		NewInsert().
		Model(librarian).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveLibrarian(ctx context.Context, id int) (*models.Librarian, error) {
	librarian := &models.Librarian{}
	err := svc.db.
		NewSelect().
		Model(librarian).
		Where("l.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Librarian")
		}
		return nil, errors.WithStack(err)
	}
	return librarian, nil
}

// ListLibrarianChoices returns every librarian ordered by last name.
func (svc *Service) ListLibrarianChoices(ctx context.Context) ([]*models.Librarian, error) {
	librarians := []*models.Librarian{}
	err := svc.db.
		NewSelect().
		Model(&librarians).
		Order("l.last_name ASC", "l.first_name ASC", "l.id ASC").
		Scan(ctx)
	return librarians, errors.WithStack(err)
}
