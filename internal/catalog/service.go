package catalog

import (
	"context"
	"fmt"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
)

// Service composes filtering, aggregation and ranking over a Store.
type Service struct {
	store Store
	topN  int
	log   *logger.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithTopN overrides the size of the top-rated lists.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService constructs a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, topN: DefaultTopN}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrNop(s.log).With("component", "catalog")
	return s
}

// TopN returns the configured size of the top-rated lists.
func (s *Service) TopN() int { return s.topN }

// ValidateFilterSpec is ValidateFilterSpec bound to the service.
func (s *Service) ValidateFilterSpec(spec *domain.FilterSpec) bool {
	return ValidateFilterSpec(spec)
}

// ValidateRating is ValidateRating bound to the service.
func (s *Service) ValidateRating(rating int) bool {
	return ValidateRating(rating)
}

// MovieExists reports whether a movie with id exists.
func (s *Service) MovieExists(ctx context.Context, id int) (bool, error) {
	ok, err := s.store.MovieExists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check movie %d: %w", id, err)
	}
	return ok, nil
}

// UserExists reports whether a user with id exists.
func (s *Service) UserExists(ctx context.Context, id int) (bool, error) {
	ok, err := s.store.UserExists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return ok, nil
}

// Search returns the movies matching spec with their average ratings, sorted
// by title. spec must have been validated by the caller.
func (s *Service) Search(ctx context.Context, spec domain.FilterSpec) ([]domain.MovieView, error) {
	movies, err := FilterMovies(ctx, s.store, spec)
	if err != nil {
		return nil, fmt.Errorf("filter movies: %w", err)
	}
	if len(movies) == 0 {
		return []domain.MovieView{}, nil
	}

	ids := make([]int, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	ratings, err := s.store.RatingsForMovies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	views := combine(movies, averagesByMovie(Aggregate(ratings)))
	sortByTitle(views)
	s.log.Debug("search completed", "matches", len(views))
	return views, nil
}

// TopRated returns the best rated movies across all users.
func (s *Service) TopRated(ctx context.Context) ([]domain.MovieView, error) {
	ratings, err := s.store.AllRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	return s.rank(ctx, ratings)
}

// UserTopRated returns the best rated movies according to one user.
// An unknown user or one without ratings yields an empty list.
func (s *Service) UserTopRated(ctx context.Context, userID int) ([]domain.MovieView, error) {
	ratings, err := s.store.RatingsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ratings for user %d: %w", userID, err)
	}
	return s.rank(ctx, ratings)
}

func (s *Service) rank(ctx context.Context, ratings []domain.UserRating) ([]domain.MovieView, error) {
	return SelectTopN(ctx, Aggregate(ratings), s.topN, s.store)
}

// UpsertRating stores rating for (movieID, userID), replacing any previous
// value. It returns once the write is durable in the store. Range and
// existence checks are the caller's job; see RateMovie.
func (s *Service) UpsertRating(ctx context.Context, movieID, userID, rating int) error {
	if err := s.store.UpsertRating(ctx, movieID, userID, rating); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	s.log.Info("rating stored", "movie_id", movieID, "user_id", userID, "rating", rating)
	return nil
}

// RateMovie validates the rating and both ids, then upserts.
func (s *Service) RateMovie(ctx context.Context, movieID, userID, rating int) error {
	if !ValidateRating(rating) {
		return ErrInvalidRating
	}
	ok, err := s.MovieExists(ctx, movieID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMovieNotFound
	}
	ok, err = s.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return s.UpsertRating(ctx, movieID, userID, rating)
}
