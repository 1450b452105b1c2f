package authors

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAuthor(t *testing.T) {
	t.Parallel()
	svc := NewService(testutils.NewDB(t))
	ctx := context.Background()

	author := &models.Author{Name: "  Ray Bradbury "}
	require.NoError(t, svc.CreateAuthor(ctx, author))
	assert.NotZero(t, author.ID)
	assert.Equal(t, "Ray Bradbury", author.Name)

	err := svc.CreateAuthor(ctx, &models.Author{Name: "RAY BRADBURY"})
	assert.True(t, errors.Is(err, errcodes.DuplicateAuthor()))

	require.NoError(t, svc.CreateAuthor(ctx, &models.Author{Name: "Лев Толстой"}))
	err = svc.CreateAuthor(ctx, &models.Author{Name: "ЛЕВ ТОЛСТОЙ"})
	assert.True(t, errors.Is(err, errcodes.DuplicateAuthor()))

	err = svc.CreateAuthor(ctx, &models.Author{Name: "   "})
	assert.Equal(t, errcodes.KindValidation, errcodes.KindOf(err))

	got, err := svc.RetrieveAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ray Bradbury", got.Name)

	_, err = svc.RetrieveAuthor(ctx, author.ID+1)
	assert.True(t, errors.Is(err, errcodes.NotFound("Author")))
}

func TestListAuthorChoices(t *testing.T) {
	t.Parallel()
	svc := NewService(testutils.NewDB(t))
	ctx := context.Background()

	for _, name := range []string{"Zamyatin", "Bulgakov", "Nabokov"} {
		require.NoError(t, svc.CreateAuthor(ctx, &models.Author{Name: name}))
	}

	authors, err := svc.ListAuthorChoices(ctx)
	require.NoError(t, err)
	require.Len(t, authors, 3)
	assert.Equal(t, "Bulgakov", authors[0].Name)
	assert.Equal(t, "Nabokov", authors[1].Name)
	assert.Equal(t, "Zamyatin", authors[2].Name)
}

func TestHandlers(t *testing.T) {
	t.Parallel()
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/authors"), testutils.NewDB(t))

	rr := testutils.Do(t, e, http.MethodPost, "/authors", `{"name":"Bulgakov"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = testutils.Do(t, e, http.MethodPost, "/authors", `{"name":"bulgakov"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "duplicate_author", testutils.ErrorCode(t, rr))

	rr = testutils.Do(t, e, http.MethodGet, "/authors", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var authors []models.Author
	testutils.DecodeJSON(t, rr, &authors)
	assert.Len(t, authors, 1)

	rr = testutils.Do(t, e, http.MethodGet, "/authors/abc", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
