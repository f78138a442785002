package movies

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	movieID = "6f1c1b38-9d8e-4d38-a7a4-0e6c5c3f1f01"
	ownerID = "0b3f0c57-0d0c-4f42-9a8b-5b3c1f7f2d11"
)

var columns = []string{"id", "user_id", "title", "release_date", "rented", "no_of_rentals", "lat", "lng", "photo_path"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgres_Find(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	release := time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^SELECT .* FROM movies\s+WHERE user_id = \$1\s+ORDER BY created_at, id$`).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(movieID, ownerID, "Alien", release, true, 3, 1.5, 2.5, "p.jpg"))

	got, err := repo.Find(context.Background(), ownerID)
	require.NoError(t, err)

	want := []*models.Movie{{
		ID: movieID, OwnerID: ownerID, Title: "Alien", ReleaseDate: release,
		Rented: true, RentalCount: 3, Lat: 1.5, Lng: 2.5, PhotoPath: "p.jpg",
	}}
	assert.Empty(t, cmp.Diff(want, got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Find_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM movies`).WithArgs(ownerID).WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.Find(context.Background(), ownerID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgres_Find_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .* FROM movies`).WillReturnError(errors.New("db down"))

	_, err := repo.Find(context.Background(), ownerID)
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestPostgres_FindOne(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`SELECT .* FROM movies WHERE id = \$1$`).
			WithArgs(movieID).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(movieID, ownerID, "Alien", time.Now(), false, 0, 0.0, 0.0, ""))

		got, err := repo.FindOne(context.Background(), movieID)
		require.NoError(t, err)
		assert.Equal(t, movieID, got.ID)
		assert.Equal(t, ownerID, got.OwnerID)
	})

	t.Run("absent", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`SELECT .* FROM movies WHERE id = \$1$`).WithArgs(movieID).WillReturnError(sql.ErrNoRows)

		_, err := repo.FindOne(context.Background(), movieID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("not a uuid", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		_, err := repo.FindOne(context.Background(), "42")
		assert.ErrorIs(t, err, common.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_Insert(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	release := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`(?s)^INSERT INTO movies \(id, user_id, title, .*\)\s+VALUES \(\$1, .*\$9\)$`).
		WithArgs(sqlmock.AnyArg(), ownerID, "B", release, false, 0, 0.0, 0.0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	in := &models.Movie{Title: "B", ReleaseDate: release, OwnerID: ownerID}
	got, err := repo.Insert(context.Background(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Empty(t, in.ID, "input must not be mutated")
	assert.Equal(t, ownerID, got.OwnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Update(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
	}{
		{"updated", 1},
		{"gone", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectExec(`(?s)^UPDATE movies SET.*WHERE id = \$1$`).
				WithArgs(movieID, ownerID, "B", sqlmock.AnyArg(), true, 2, 0.0, 0.0, "").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			n, err := repo.Update(context.Background(), movieID, &models.Movie{OwnerID: ownerID, Title: "B", Rented: true, RentalCount: 2})
			require.NoError(t, err)
			assert.Equal(t, tt.affected, n)
		})
	}
}

func TestPostgres_Update_NotUUID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	n, err := repo.Update(context.Background(), "42", &models.Movie{Title: "B"})
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Remove(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE FROM movies WHERE id = \$1$`).
		WithArgs(movieID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Remove(context.Background(), movieID))
	require.NoError(t, mock.ExpectationsWereMet())
}
