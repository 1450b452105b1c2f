package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ray Bradbury", "ray bradbury"},
		{"Лев Толстой", "лев толстой"},
		{"ПЁТР", "пётр"},
		{"Stanisław LEM", "stanisław lem"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in))
	}
}

func TestBeforeAppendModel_FillsFoldedColumns(t *testing.T) {
	author := &Author{Name: "Лев Толстой"}
	require.NoError(t, author.BeforeAppendModel(context.Background(), nil))
	assert.Equal(t, "лев толстой", author.NameFolded)

	book := &Book{Name: "Война и мир"}
	require.NoError(t, book.BeforeAppendModel(context.Background(), nil))
	assert.Equal(t, "война и мир", book.NameFolded)

	reader := &Reader{FirstName: "Анна", LastName: "Каренина"}
	require.NoError(t, reader.BeforeAppendModel(context.Background(), nil))
	assert.Equal(t, "анна", reader.FirstNameFolded)
	assert.Equal(t, "каренина", reader.LastNameFolded)
}
