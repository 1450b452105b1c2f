package books

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestServer(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()
	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/books"), db, config.NewForTest())
	return e
}

func TestHandlers(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	e := setupTestServer(t, db)
	author := testutils.CreateAuthor(t, db, "Arkady Strugatsky")

	var created BookWithAuthor
	t.Run("create", func(t *testing.T) {
		rr := testutils.Do(t, e, http.MethodPost, "/books", `{"author_id":`+strconv.Itoa(author.ID)+`,"name":" Roadside Picnic ","available_count":2,"cover_url":"https://example.com/rp.jpg"}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		testutils.DecodeJSON(t, rr, &created)
		assert.Equal(t, "Roadside Picnic", created.Name)
		assert.Equal(t, "Arkady Strugatsky", created.AuthorName)
		require.NotNil(t, created.CoverURL)
	})

	t.Run("create duplicate", func(t *testing.T) {
		rr := testutils.Do(t, e, http.MethodPost, "/books", `{"author_id":`+strconv.Itoa(author.ID)+`,"name":"Roadside Picnic"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, "duplicate_book", testutils.ErrorCode(t, rr))
	})

	t.Run("create with invalid payload", func(t *testing.T) {
		rr := testutils.Do(t, e, http.MethodPost, "/books", `{"author_id":0,"name":"","available_count":-1}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, "validation_error", testutils.ErrorCode(t, rr))
	})

	t.Run("retrieve", func(t *testing.T) {
		rr := testutils.Do(t, e, http.MethodGet, "/books/"+strconv.Itoa(created.ID), "")
		require.Equal(t, http.StatusOK, rr.Code)
		var got BookWithAuthor
		testutils.DecodeJSON(t, rr, &got)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("retrieve missing", func(t *testing.T) {
		rr := testutils.Do(t, e, http.MethodGet, "/books/9999", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "not_found", testutils.ErrorCode(t, rr))
	})

	t.Run("list", func(t *testing.T) {
		rr := testutils.Do(t, e, http.MethodGet, "/books?q=picnic&sort=-name&page=1", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var body struct {
			Books      []BookWithAuthor `json:"books"`
			Pagination struct {
				Total    int `json:"total"`
				PageSize int `json:"page_size"`
			} `json:"pagination"`
		}
		testutils.DecodeJSON(t, rr, &body)
		require.Len(t, body.Books, 1)
		assert.Equal(t, 1, body.Pagination.Total)
		assert.Equal(t, 10, body.Pagination.PageSize)
	})

	t.Run("choices", func(t *testing.T) {
		rr := testutils.Do(t, e, http.MethodGet, "/books/choices", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var choices []BookChoice
		testutils.DecodeJSON(t, rr, &choices)
		assert.Len(t, choices, 1)
	})
}
