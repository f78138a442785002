package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/dbx"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const movieColumns = `id, user_id, title, release_date, rented, no_of_rentals, lat, lng, photo_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	var m models.Movie
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Title, &m.ReleaseDate, &m.Rented, &m.RentalCount,
		&m.Lat, &m.Lng, &m.PhotoPath); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) Find(ctx context.Context, ownerID string) ([]*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) FindOne(ctx context.Context, id string) (*models.Movie, error) {
	if uuid.Validate(id) != nil {
		// not a key the table can hold
		return nil, common.ErrNotFound
	}

	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	m, err := scanMovie(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	query := `INSERT INTO movies (` + movieColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	m := *movie
	m.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.OwnerID, m.Title, m.ReleaseDate, m.Rented, m.RentalCount, m.Lat, m.Lng, m.PhotoPath)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &m, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, movie *models.Movie) (int64, error) {
	if uuid.Validate(id) != nil {
		return 0, nil
	}

	query := `UPDATE movies SET
			user_id = $2, title = $3, release_date = $4, rented = $5,
			no_of_rentals = $6, lat = $7, lng = $8, photo_path = $9
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		id, movie.OwnerID, movie.Title, movie.ReleaseDate, movie.Rented, movie.RentalCount,
		movie.Lat, movie.Lng, movie.PhotoPath)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
