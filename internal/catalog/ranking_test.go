package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

type lookupFunc func(ctx context.Context, ids []int) ([]domain.Movie, error)

func (f lookupFunc) MoviesByIDs(ctx context.Context, ids []int) ([]domain.Movie, error) {
	return f(ctx, ids)
}

// catalogLookup serves movies from a fixed slice and records requested ids.
type catalogLookup struct {
	movies    []domain.Movie
	requested []int
	calls     int
}

func (c *catalogLookup) MoviesByIDs(_ context.Context, ids []int) ([]domain.Movie, error) {
	c.calls++
	c.requested = append(c.requested, ids...)
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []domain.Movie
	for _, m := range c.movies {
		if _, ok := wanted[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func summary(id int, avg float64) domain.MovieRatingSummary {
	return domain.MovieRatingSummary{MovieID: id, Count: 1, Average: avg}
}

func titledMovies(n int) []domain.Movie {
	movies := make([]domain.Movie, 0, n)
	for i := 1; i <= n; i++ {
		movies = append(movies, domain.Movie{ID: i, Title: fmt.Sprintf("Movie %02d", i)})
	}
	return movies
}

func TestSelectTopN_TiesAtBoundaryAreCandidates(t *testing.T) {
	lookup := &catalogLookup{movies: titledMovies(6)}
	summaries := []domain.MovieRatingSummary{
		summary(1, 5.0), summary(2, 5.0),
		summary(3, 4.5), summary(4, 4.5), summary(5, 4.5),
		summary(6, 4.0),
	}

	views, err := SelectTopN(context.Background(), summaries, 5, lookup)
	if err != nil {
		t.Fatalf("SelectTopN: %v", err)
	}
	if len(lookup.requested) != 6 {
		t.Fatalf("candidate ids = %v, want all 6", lookup.requested)
	}
	if len(views) != 5 {
		t.Fatalf("views = %d, want 5", len(views))
	}
	wantIDs := []int{1, 2, 3, 4, 5}
	for i, v := range views {
		if v.ID != wantIDs[i] {
			t.Fatalf("view %d id = %d, want %d", i, v.ID, wantIDs[i])
		}
	}
}

func TestSelectTopN_DistinctCutoffExcludesLowerValues(t *testing.T) {
	lookup := &catalogLookup{movies: titledMovies(4)}
	summaries := []domain.MovieRatingSummary{
		summary(1, 3.0), summary(2, 2.0), summary(3, 1.0), summary(4, 2.0),
	}

	views, err := SelectTopN(context.Background(), summaries, 2, lookup)
	if err != nil {
		t.Fatalf("SelectTopN: %v", err)
	}
	for _, id := range lookup.requested {
		if id == 3 {
			t.Fatalf("movie 3 is below the distinct cutoff but was fetched")
		}
	}
	if len(views) != 2 || views[0].ID != 1 || views[1].ID != 2 {
		t.Fatalf("views = %+v, want movies 1 then 2", views)
	}
}

func TestSelectTopN_OrdersByAverageThenTitle(t *testing.T) {
	lookup := &catalogLookup{movies: []domain.Movie{
		{ID: 1, Title: "Zulu"}, {ID: 2, Title: "Alpha"}, {ID: 3, Title: "Mike"}, {ID: 4, Title: "Bravo"},
	}}
	summaries := []domain.MovieRatingSummary{
		summary(1, 4.0), summary(2, 3.0), summary(3, 4.0), summary(4, 3.0),
	}

	views, err := SelectTopN(context.Background(), summaries, 5, lookup)
	if err != nil {
		t.Fatalf("SelectTopN: %v", err)
	}
	want := []string{"Mike", "Zulu", "Alpha", "Bravo"}
	if len(views) != len(want) {
		t.Fatalf("views = %d, want %d", len(views), len(want))
	}
	for i, v := range views {
		if v.Title != want[i] {
			t.Fatalf("position %d = %q, want %q", i, v.Title, want[i])
		}
	}
	if views[0].AverageRating != 4.0 || views[3].AverageRating != 3.0 {
		t.Fatalf("averages not carried into views: %+v", views)
	}
}

func TestSelectTopN_TitleOrderIgnoresCase(t *testing.T) {
	lookup := &catalogLookup{movies: []domain.Movie{
		{ID: 1, Title: "Zulu"}, {ID: 2, Title: "alpha"}, {ID: 3, Title: "Beta"},
	}}
	summaries := []domain.MovieRatingSummary{summary(1, 4.0), summary(2, 4.0), summary(3, 4.0)}

	views, err := SelectTopN(context.Background(), summaries, 5, lookup)
	if err != nil {
		t.Fatalf("SelectTopN: %v", err)
	}
	want := []string{"alpha", "Beta", "Zulu"}
	if len(views) != len(want) {
		t.Fatalf("views = %d, want %d", len(views), len(want))
	}
	for i, v := range views {
		if v.Title != want[i] {
			t.Fatalf("position %d = %q, want %q", i, v.Title, want[i])
		}
	}
}

func TestSelectTopN_BoundaryTieTruncatesAlphabetically(t *testing.T) {
	lookup := &catalogLookup{movies: titledMovies(7)}
	summaries := []domain.MovieRatingSummary{
		summary(7, 5.0), summary(6, 4.5), summary(5, 4.5), summary(4, 4.5),
		summary(3, 4.0), summary(2, 4.0), summary(1, 4.0),
	}

	views, err := SelectTopN(context.Background(), summaries, 5, lookup)
	if err != nil {
		t.Fatalf("SelectTopN: %v", err)
	}
	want := []int{7, 4, 5, 6, 1}
	for i, v := range views {
		if v.ID != want[i] {
			t.Fatalf("ids position %d = %d, want %d", i, v.ID, want[i])
		}
	}
}

func TestSelectTopN_Empty(t *testing.T) {
	lookup := &catalogLookup{}
	views, err := SelectTopN(context.Background(), nil, 5, lookup)
	if err != nil {
		t.Fatalf("SelectTopN: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Fatalf("views = %v, want empty", views)
	}
	if lookup.calls != 0 {
		t.Fatalf("lookup called %d times for empty input", lookup.calls)
	}

	views, err = SelectTopN(context.Background(), []domain.MovieRatingSummary{summary(1, 3)}, 0, lookup)
	if err != nil || len(views) != 0 {
		t.Fatalf("n=0: views = %v, err = %v", views, err)
	}
}

func TestSelectTopN_UnknownIDsDropped(t *testing.T) {
	lookup := &catalogLookup{movies: titledMovies(2)}
	summaries := []domain.MovieRatingSummary{summary(1, 4), summary(2, 3), summary(99, 5)}

	views, err := SelectTopN(context.Background(), summaries, 5, lookup)
	if err != nil {
		t.Fatalf("SelectTopN: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
}

func TestSelectTopN_LookupError(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := lookupFunc(func(context.Context, []int) ([]domain.Movie, error) { return nil, boom })

	_, err := SelectTopN(context.Background(), []domain.MovieRatingSummary{summary(1, 3)}, 5, lookup)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestSelectTopN_NeverExceedsN(t *testing.T) {
	movies := titledMovies(40)
	summaries := make([]domain.MovieRatingSummary, 0, len(movies))
	for _, m := range movies {
		summaries = append(summaries, summary(m.ID, float64(m.ID%11)/2))
	}
	for n := 1; n <= 12; n++ {
		views, err := SelectTopN(context.Background(), summaries, n, &catalogLookup{movies: movies})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(views) > n {
			t.Fatalf("n=%d: got %d views", n, len(views))
		}
		minReturned := views[len(views)-1].AverageRating
		returned := make(map[int]struct{}, len(views))
		for _, v := range views {
			returned[v.ID] = struct{}{}
		}
		for _, s := range summaries {
			if _, ok := returned[s.MovieID]; !ok && s.Average > minReturned {
				t.Fatalf("n=%d: movie %d (%.1f) outranks returned minimum %.1f", n, s.MovieID, s.Average, minReturned)
			}
		}
	}
}

func BenchmarkSelectTopN(b *testing.B) {
	movies := titledMovies(500)
	summaries := make([]domain.MovieRatingSummary, 0, len(movies))
	for _, m := range movies {
		summaries = append(summaries, summary(m.ID, float64(m.ID%11)/2))
	}
	lookup := &catalogLookup{movies: movies}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lookup.requested = lookup.requested[:0]
		if _, err := SelectTopN(ctx, summaries, DefaultTopN, lookup); err != nil {
			b.Fatal(err)
		}
	}
}
