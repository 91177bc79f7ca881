package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `id, title, year_of_release, running_time`

// Exists reports whether a movie with id is stored.
func (r *MoviesRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("movie exists: %w", err)
	}
	return exists, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Find returns the movies matching every criterion set on spec, ordered by id.
//
// Title matching uses strpos so the needle is compared literally and
// case-sensitively; LIKE metacharacters have no special meaning.
func (r *MoviesRepository) Find(ctx context.Context, spec domain.FilterSpec) ([]domain.Movie, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if spec.HasYear() {
		where = append(where, fmt.Sprintf("year_of_release = %s", arg(spec.Year)))
	}
	if spec.HasTitle() {
		where = append(where, fmt.Sprintf("strpos(title, %s) > 0", arg(spec.Title)))
	}
	if spec.HasGenres() {
		where = append(where, fmt.Sprintf(`id IN (
            SELECT mg.movie_id
            FROM movie_genres mg
            JOIN genres g ON g.id = mg.genre_id
            WHERE g.name = ANY(%s::text[])
        )`, arg(spec.Genres)))
	}

	var qb strings.Builder
	qb.WriteString("SELECT ")
	qb.WriteString(movieColumns)
	qb.WriteString(" FROM movies")
	if len(where) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY id")

	return r.query(ctx, qb.String(), args...)
}

// ByIDs returns the movies with the given ids, ordered by id. Unknown ids are
// skipped.
func (r *MoviesRepository) ByIDs(ctx context.Context, ids []int) ([]domain.Movie, error) {
	if len(ids) == 0 {
		return []domain.Movie{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = ANY($1::int[]) ORDER BY id`, movieColumns)
	return r.query(ctx, query, ids)
}

func (r *MoviesRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.YearOfRelease,
		&movie.RunningTime,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
