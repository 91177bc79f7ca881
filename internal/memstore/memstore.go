// Package memstore is an in-process catalog.Store guarded by a RWMutex.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/domain"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
)

type ratingKey struct {
	userID  int
	movieID int
}

// Store keeps the whole catalog in memory. Data does not survive the process.
type Store struct {
	mu      sync.RWMutex
	movies  map[int]domain.Movie
	genres  map[int]domain.Genre
	links   map[domain.MovieGenre]struct{}
	users   map[int]struct{}
	ratings map[ratingKey]int
}

var (
	_ catalog.Store   = (*Store)(nil)
	_ fixtures.Seeder = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		movies:  make(map[int]domain.Movie),
		genres:  make(map[int]domain.Genre),
		links:   make(map[domain.MovieGenre]struct{}),
		users:   make(map[int]struct{}),
		ratings: make(map[ratingKey]int),
	}
}

// NewSeeded returns a store loaded with ds.
func NewSeeded(ds fixtures.Dataset) *Store {
	s := New()
	_ = s.Seed(context.Background(), ds)
	return s
}

// Seed upserts every row of ds.
func (s *Store) Seed(_ context.Context, ds fixtures.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range ds.Movies {
		s.movies[m.ID] = m
	}
	for _, g := range ds.Genres {
		s.genres[g.ID] = g
	}
	for _, l := range ds.MovieGenres {
		s.links[l] = struct{}{}
	}
	for _, u := range ds.Users {
		s.users[u.ID] = struct{}{}
	}
	for _, r := range ds.Ratings {
		s.ratings[ratingKey{userID: r.UserID, movieID: r.MovieID}] = r.Rating
	}
	return nil
}

// MovieExists reports whether a movie with id is stored.
func (s *Store) MovieExists(_ context.Context, id int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.movies[id]
	return ok, nil
}

// UserExists reports whether a user with id is stored.
func (s *Store) UserExists(_ context.Context, id int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

// FindMovies returns the movies matching spec, ordered by id.
func (s *Store) FindMovies(_ context.Context, spec domain.FilterSpec) ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var genreMovieIDs map[int]struct{}
	if spec.HasGenres() {
		genres := make([]domain.Genre, 0, len(s.genres))
		for _, g := range s.genres {
			genres = append(genres, g)
		}
		links := make([]domain.MovieGenre, 0, len(s.links))
		for l := range s.links {
			links = append(links, l)
		}
		genreMovieIDs = catalog.MovieIDsForGenres(spec.Genres, genres, links)
	}
	return catalog.NewPredicate(spec, genreMovieIDs).Apply(s.sortedMovies()), nil
}

// MoviesByIDs returns the stored movies among ids, ordered by id.
func (s *Store) MoviesByIDs(_ context.Context, ids []int) ([]domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]domain.Movie, 0, len(ids))
	for _, m := range s.sortedMovies() {
		if _, ok := wanted[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// RatingsForMovies returns every rating of the given movies.
func (s *Store) RatingsForMovies(_ context.Context, movieIDs []int) ([]domain.UserRating, error) {
	if len(movieIDs) == 0 {
		return []domain.UserRating{}, nil
	}
	wanted := make(map[int]struct{}, len(movieIDs))
	for _, id := range movieIDs {
		wanted[id] = struct{}{}
	}
	return s.collectRatings(func(k ratingKey) bool {
		_, ok := wanted[k.movieID]
		return ok
	}), nil
}

// AllRatings returns every stored rating.
func (s *Store) AllRatings(_ context.Context) ([]domain.UserRating, error) {
	return s.collectRatings(func(ratingKey) bool { return true }), nil
}

// RatingsForUser returns the ratings given by userID.
func (s *Store) RatingsForUser(_ context.Context, userID int) ([]domain.UserRating, error) {
	return s.collectRatings(func(k ratingKey) bool { return k.userID == userID }), nil
}

// UpsertRating replaces or inserts the rating atomically under the write lock.
func (s *Store) UpsertRating(_ context.Context, movieID, userID, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[ratingKey{userID: userID, movieID: movieID}] = rating
	return nil
}

// sortedMovies must be called with the lock held.
func (s *Store) sortedMovies() []domain.Movie {
	out := make([]domain.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) collectRatings(keep func(ratingKey) bool) []domain.UserRating {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserRating, 0)
	for k, v := range s.ratings {
		if keep(k) {
			out = append(out, domain.UserRating{UserID: k.userID, MovieID: k.movieID, Rating: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MovieID != out[j].MovieID {
			return out[i].MovieID < out[j].MovieID
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
