package catalog

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

// DefaultTopN is the size of the top-rated lists.
const DefaultTopN = 5

// SelectTopN picks the n best rated movies from summaries.
//
// Candidates are every movie whose average is among the n highest distinct
// averages, so ties at the boundary are all considered. The candidates are then
// ordered by average descending, then title ascending, and cut to n.
func SelectTopN(ctx context.Context, summaries []domain.MovieRatingSummary, n int, lookup MovieLookup) ([]domain.MovieView, error) {
	if len(summaries) == 0 || n <= 0 {
		return []domain.MovieView{}, nil
	}

	cutoff := topDistinctAverages(summaries, n)
	ids := make([]int, 0, len(summaries))
	for _, s := range summaries {
		if _, ok := cutoff[s.Average]; ok {
			ids = append(ids, s.MovieID)
		}
	}

	movies, err := lookup.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch ranked movies: %w", err)
	}

	views := combine(movies, averagesByMovie(summaries))
	sortByTitle(views)
	sort.SliceStable(views, func(i, j int) bool { return views[i].AverageRating > views[j].AverageRating })

	if len(views) > n {
		views = views[:n]
	}
	return views, nil
}

func topDistinctAverages(summaries []domain.MovieRatingSummary, n int) map[float64]struct{} {
	seen := make(map[float64]struct{}, len(summaries))
	distinct := make([]float64, 0, len(summaries))
	for _, s := range summaries {
		if _, ok := seen[s.Average]; ok {
			continue
		}
		seen[s.Average] = struct{}{}
		distinct = append(distinct, s.Average)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))
	if len(distinct) > n {
		distinct = distinct[:n]
	}

	out := make(map[float64]struct{}, len(distinct))
	for _, avg := range distinct {
		out[avg] = struct{}{}
	}
	return out
}

// combine zips movies with their averages; unrated movies get 0.
func combine(movies []domain.Movie, averages map[int]float64) []domain.MovieView {
	views := make([]domain.MovieView, 0, len(movies))
	for _, m := range movies {
		views = append(views, domain.NewMovieView(m, averages[m.ID]))
	}
	return views
}

// sortByTitle orders views alphabetically, so "alpha" sorts before "Beta".
// A Collator is not safe for concurrent use; each call builds its own.
func sortByTitle(views []domain.MovieView) {
	c := collate.New(language.Und)
	sort.SliceStable(views, func(i, j int) bool {
		return c.CompareString(views[i].Title, views[j].Title) < 0
	})
}
