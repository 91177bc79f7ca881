package catalog

import (
	"context"
	"strings"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

// Predicate reports whether a movie satisfies a filter.
type Predicate func(domain.Movie) bool

// NewPredicate builds the conjunction of the criteria set on spec.
// genreMovieIDs holds the ids of movies having any of spec.Genres and is only
// consulted when spec has genres.
func NewPredicate(spec domain.FilterSpec, genreMovieIDs map[int]struct{}) Predicate {
	return func(m domain.Movie) bool {
		if spec.HasYear() && m.YearOfRelease != spec.Year {
			return false
		}
		if spec.HasTitle() && !strings.Contains(m.Title, spec.Title) {
			return false
		}
		if spec.HasGenres() {
			if _, ok := genreMovieIDs[m.ID]; !ok {
				return false
			}
		}
		return true
	}
}

// Apply returns the movies matching p, preserving input order.
func (p Predicate) Apply(movies []domain.Movie) []domain.Movie {
	out := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		if p(m) {
			out = append(out, m)
		}
	}
	return out
}

// MovieIDsForGenres resolves the ids of movies linked to any of the named
// genres. Unknown names contribute nothing.
func MovieIDsForGenres(names []string, genres []domain.Genre, links []domain.MovieGenre) map[int]struct{} {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	genreIDs := make(map[int]struct{})
	for _, g := range genres {
		if _, ok := wanted[g.Name]; ok {
			genreIDs[g.ID] = struct{}{}
		}
	}
	ids := make(map[int]struct{})
	for _, l := range links {
		if _, ok := genreIDs[l.GenreID]; ok {
			ids[l.MovieID] = struct{}{}
		}
	}
	return ids
}

// FilterMovies returns the movies matching spec. Callers must validate spec
// first; a spec without criteria is rejected with ErrInvalidFilter.
func FilterMovies(ctx context.Context, store Store, spec domain.FilterSpec) ([]domain.Movie, error) {
	if !spec.HasYear() && !spec.HasTitle() && !spec.HasGenres() {
		return nil, ErrInvalidFilter
	}
	return store.FindMovies(ctx, spec)
}
