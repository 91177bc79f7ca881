package catalog

import (
	"context"
	"errors"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

var (
	// ErrInvalidFilter is returned when a filter spec carries no usable criteria.
	ErrInvalidFilter = errors.New("catalog: invalid filter")
	// ErrInvalidRating is returned for ratings outside [0,5].
	ErrInvalidRating = errors.New("catalog: invalid rating")
	// ErrMovieNotFound indicates the referenced movie does not exist.
	ErrMovieNotFound = errors.New("catalog: movie not found")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("catalog: user not found")
)

// Store is the persistence boundary the catalog core reads from and writes to.
//
// Implementations must make UpsertRating atomic per (movie, user) key and must
// return movies ordered by id.
type Store interface {
	MovieExists(ctx context.Context, id int) (bool, error)
	UserExists(ctx context.Context, id int) (bool, error)
	FindMovies(ctx context.Context, spec domain.FilterSpec) ([]domain.Movie, error)
	MoviesByIDs(ctx context.Context, ids []int) ([]domain.Movie, error)
	RatingsForMovies(ctx context.Context, movieIDs []int) ([]domain.UserRating, error)
	AllRatings(ctx context.Context) ([]domain.UserRating, error)
	RatingsForUser(ctx context.Context, userID int) ([]domain.UserRating, error)
	UpsertRating(ctx context.Context, movieID, userID, rating int) error
}

// MovieLookup fetches movies in bulk. Unknown ids are dropped, not errored.
type MovieLookup interface {
	MoviesByIDs(ctx context.Context, ids []int) ([]domain.Movie, error)
}
