package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

// RatingsRepository provides helpers for user ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `user_id, movie_id, rating`

// Upsert inserts or updates a rating and indicates whether it was newly created.
func (r *RatingsRepository) Upsert(ctx context.Context, rating domain.UserRating) (bool, error) {
	const query = `
        INSERT INTO user_ratings (user_id, movie_id, rating)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, movie_id)
        DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
        RETURNING (xmax = 0) AS inserted
    `

	var inserted bool
	err := r.pool.QueryRow(ctx, query, rating.UserID, rating.MovieID, rating.Rating).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// Get retrieves the rating a user gave a movie.
func (r *RatingsRepository) Get(ctx context.Context, movieID, userID int) (domain.UserRating, error) {
	const query = `SELECT ` + ratingColumns + ` FROM user_ratings WHERE movie_id = $1 AND user_id = $2`
	var rating domain.UserRating
	err := r.pool.QueryRow(ctx, query, movieID, userID).Scan(&rating.UserID, &rating.MovieID, &rating.Rating)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.UserRating{}, ErrNotFound
		}
		return domain.UserRating{}, err
	}
	return rating, nil
}

// ForMovies returns every rating of the given movies.
func (r *RatingsRepository) ForMovies(ctx context.Context, movieIDs []int) ([]domain.UserRating, error) {
	if len(movieIDs) == 0 {
		return []domain.UserRating{}, nil
	}
	const query = `SELECT ` + ratingColumns + ` FROM user_ratings WHERE movie_id = ANY($1::int[]) ORDER BY movie_id, user_id`
	return r.query(ctx, query, movieIDs)
}

// All returns every stored rating.
func (r *RatingsRepository) All(ctx context.Context) ([]domain.UserRating, error) {
	const query = `SELECT ` + ratingColumns + ` FROM user_ratings ORDER BY movie_id, user_id`
	return r.query(ctx, query)
}

// ForUser returns the ratings one user has given.
func (r *RatingsRepository) ForUser(ctx context.Context, userID int) ([]domain.UserRating, error) {
	const query = `SELECT ` + ratingColumns + ` FROM user_ratings WHERE user_id = $1 ORDER BY movie_id`
	return r.query(ctx, query, userID)
}

func (r *RatingsRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.UserRating, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.UserRating, 0)
	for rows.Next() {
		var rating domain.UserRating
		if err := rows.Scan(&rating.UserID, &rating.MovieID, &rating.Rating); err != nil {
			return nil, err
		}
		results = append(results, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
