package repository

import (
	"context"
	"fmt"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

// MovieExists implements catalog.Store.
func (r *Repository) MovieExists(ctx context.Context, id int) (bool, error) {
	return r.Movies.Exists(ctx, id)
}

// UserExists implements catalog.Store.
func (r *Repository) UserExists(ctx context.Context, id int) (bool, error) {
	return r.Users.Exists(ctx, id)
}

// FindMovies implements catalog.Store.
func (r *Repository) FindMovies(ctx context.Context, spec domain.FilterSpec) ([]domain.Movie, error) {
	movies, err := r.Movies.Find(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	return movies, nil
}

// MoviesByIDs implements catalog.Store and catalog.MovieLookup.
func (r *Repository) MoviesByIDs(ctx context.Context, ids []int) ([]domain.Movie, error) {
	movies, err := r.Movies.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("movies by ids: %w", err)
	}
	return movies, nil
}

// RatingsForMovies implements catalog.Store.
func (r *Repository) RatingsForMovies(ctx context.Context, movieIDs []int) ([]domain.UserRating, error) {
	ratings, err := r.Ratings.ForMovies(ctx, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("ratings for movies: %w", err)
	}
	return ratings, nil
}

// AllRatings implements catalog.Store.
func (r *Repository) AllRatings(ctx context.Context) ([]domain.UserRating, error) {
	ratings, err := r.Ratings.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("all ratings: %w", err)
	}
	return ratings, nil
}

// RatingsForUser implements catalog.Store.
func (r *Repository) RatingsForUser(ctx context.Context, userID int) ([]domain.UserRating, error) {
	ratings, err := r.Ratings.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings for user %d: %w", userID, err)
	}
	return ratings, nil
}

// UpsertRating implements catalog.Store.
func (r *Repository) UpsertRating(ctx context.Context, movieID, userID, rating int) error {
	inserted, err := r.Ratings.Upsert(ctx, domain.UserRating{UserID: userID, MovieID: movieID, Rating: rating})
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	r.log.Debug("rating upserted", "movie_id", movieID, "user_id", userID, "inserted", inserted)
	return nil
}
