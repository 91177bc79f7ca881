// Package catalogtest holds a conformance suite for catalog.Store
// implementations, run against the demo dataset.
package catalogtest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/domain"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
)

// SeededStore is a store that can also load fixtures.
type SeededStore interface {
	catalog.Store
	fixtures.Seeder
}

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) SeededStore

// RunStoreSuite checks the filtering, lookup and upsert contracts of a store.
func RunStoreSuite(t *testing.T, newStore Factory) {
	t.Helper()

	seeded := func(t *testing.T) SeededStore {
		t.Helper()
		st := newStore(t)
		if err := st.Seed(context.Background(), fixtures.Demo()); err != nil {
			t.Fatalf("seed demo dataset: %v", err)
		}
		return st
	}

	t.Run("FindMovies", func(t *testing.T) {
		st := seeded(t)
		tests := []struct {
			name    string
			spec    domain.FilterSpec
			wantIDs []int
		}{
			{"year", domain.FilterSpec{Year: 2001}, []int{2, 3}},
			{"title", domain.FilterSpec{Title: "A"}, []int{1, 2, 4}},
			{"title is case sensitive", domain.FilterSpec{Title: "a"}, []int{}},
			{"title and year", domain.FilterSpec{Title: "A", Year: 2001}, []int{2}},
			{"genre", domain.FilterSpec{Genres: []string{"Horror"}}, []int{2, 3, 4, 9}},
			{"any genre", domain.FilterSpec{Genres: []string{"Action", "Sci-Fi"}}, []int{1, 3, 5, 7, 10}},
			{"unknown genre", domain.FilterSpec{Genres: []string{"Western"}}, []int{}},
			{"unknown genre is ignored", domain.FilterSpec{Genres: []string{"Western", "Action"}}, []int{1, 7}},
			{"genre and year", domain.FilterSpec{Genres: []string{"Horror"}, Year: 2001}, []int{2, 3}},
			{"genre year and title", domain.FilterSpec{Genres: []string{"Horror"}, Year: 2001, Title: "A"}, []int{2}},
			{"title with wildcard characters", domain.FilterSpec{Title: "%"}, []int{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				movies, err := st.FindMovies(context.Background(), tt.spec)
				if err != nil {
					t.Fatalf("FindMovies: %v", err)
				}
				assertIDs(t, movies, tt.wantIDs)
				for _, m := range movies {
					if tt.spec.HasYear() && m.YearOfRelease != tt.spec.Year {
						t.Fatalf("movie %d year = %d, want %d", m.ID, m.YearOfRelease, tt.spec.Year)
					}
					if tt.spec.HasTitle() && !strings.Contains(m.Title, tt.spec.Title) {
						t.Fatalf("movie %q does not contain %q", m.Title, tt.spec.Title)
					}
				}
			})
		}
	})

	t.Run("MoviesByIDs", func(t *testing.T) {
		st := seeded(t)
		ctx := context.Background()

		movies, err := st.MoviesByIDs(ctx, []int{})
		if err != nil {
			t.Fatalf("MoviesByIDs(empty): %v", err)
		}
		if len(movies) != 0 {
			t.Fatalf("MoviesByIDs(empty) = %d movies, want 0", len(movies))
		}

		movies, err = st.MoviesByIDs(ctx, []int{1, 2, 3, 4, 200})
		if err != nil {
			t.Fatalf("MoviesByIDs: %v", err)
		}
		assertIDs(t, movies, []int{1, 2, 3, 4})
		if movies[0].Title != "A Movie" || movies[0].YearOfRelease != 1998 || movies[0].RunningTime != 120 {
			t.Fatalf("movie 1 not loaded correctly: %+v", movies[0])
		}
	})

	t.Run("Exists", func(t *testing.T) {
		st := seeded(t)
		ctx := context.Background()
		checks := []struct {
			name string
			fn   func(context.Context, int) (bool, error)
			id   int
			want bool
		}{
			{"movie", st.MovieExists, 1, true},
			{"missing movie", st.MovieExists, 200, false},
			{"user", st.UserExists, 4, true},
			{"missing user", st.UserExists, 200, false},
		}
		for _, c := range checks {
			got, err := c.fn(ctx, c.id)
			if err != nil {
				t.Fatalf("%s exists: %v", c.name, err)
			}
			if got != c.want {
				t.Fatalf("%s exists(%d) = %v, want %v", c.name, c.id, got, c.want)
			}
		}
	})

	t.Run("Ratings", func(t *testing.T) {
		st := seeded(t)
		ctx := context.Background()

		none, err := st.RatingsForMovies(ctx, nil)
		if err != nil {
			t.Fatalf("RatingsForMovies(nil): %v", err)
		}
		if len(none) != 0 {
			t.Fatalf("RatingsForMovies(nil) = %d, want 0", len(none))
		}

		forMovies, err := st.RatingsForMovies(ctx, []int{1, 2})
		if err != nil {
			t.Fatalf("RatingsForMovies: %v", err)
		}
		if len(forMovies) != 6 {
			t.Fatalf("RatingsForMovies(1,2) = %d, want 6", len(forMovies))
		}

		all, err := st.AllRatings(ctx)
		if err != nil {
			t.Fatalf("AllRatings: %v", err)
		}
		if len(all) != 27 {
			t.Fatalf("AllRatings = %d, want 27", len(all))
		}

		forUser, err := st.RatingsForUser(ctx, 1)
		if err != nil {
			t.Fatalf("RatingsForUser: %v", err)
		}
		if len(forUser) != 9 {
			t.Fatalf("RatingsForUser(1) = %d, want 9", len(forUser))
		}
		for _, r := range forUser {
			if r.UserID != 1 {
				t.Fatalf("rating for user %d leaked into user 1 results", r.UserID)
			}
		}

		unknown, err := st.RatingsForUser(ctx, 200)
		if err != nil {
			t.Fatalf("RatingsForUser(200): %v", err)
		}
		if len(unknown) != 0 {
			t.Fatalf("RatingsForUser(200) = %d, want 0", len(unknown))
		}
	})

	t.Run("UpsertRating", func(t *testing.T) {
		st := seeded(t)
		ctx := context.Background()
		extra := fixtures.Dataset{
			Movies:  []domain.Movie{{ID: 20, Title: "T Movie", YearOfRelease: 2020, RunningTime: 90}},
			Users:   []domain.User{{ID: 5}},
			Ratings: []domain.UserRating{{UserID: 5, MovieID: 20, Rating: 2}},
		}
		if err := st.Seed(ctx, extra); err != nil {
			t.Fatalf("seed extra rows: %v", err)
		}

		for i := 0; i < 2; i++ {
			if err := st.UpsertRating(ctx, 20, 5, 4); err != nil {
				t.Fatalf("upsert #%d: %v", i+1, err)
			}
		}

		ratings, err := st.RatingsForMovies(ctx, []int{20})
		if err != nil {
			t.Fatalf("RatingsForMovies: %v", err)
		}
		if len(ratings) != 1 {
			t.Fatalf("rows for (20,5) = %d, want 1", len(ratings))
		}
		if ratings[0].Rating != 4 || ratings[0].UserID != 5 {
			t.Fatalf("rating = %+v, want user 5 rating 4", ratings[0])
		}

		if err := st.UpsertRating(ctx, 1, 2, 3); err != nil {
			t.Fatalf("insert new pair: %v", err)
		}
		all, err := st.AllRatings(ctx)
		if err != nil {
			t.Fatalf("AllRatings: %v", err)
		}
		if len(all) != 29 {
			t.Fatalf("AllRatings after insert = %d, want 29", len(all))
		}
	})

	t.Run("ConcurrentUpserts", func(t *testing.T) {
		st := seeded(t)
		ctx := context.Background()
		const workers = 8
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(rating int) {
				defer wg.Done()
				if err := st.UpsertRating(ctx, 10, 3, rating%6); err != nil {
					t.Errorf("upsert: %v", err)
				}
			}(i)
		}
		wg.Wait()

		ratings, err := st.RatingsForMovies(ctx, []int{10})
		if err != nil {
			t.Fatalf("RatingsForMovies: %v", err)
		}
		if len(ratings) != 1 {
			t.Fatalf("rows for (10,3) = %d, want 1", len(ratings))
		}
	})

	t.Run("SeedIsIdempotent", func(t *testing.T) {
		st := seeded(t)
		ctx := context.Background()
		if err := st.Seed(ctx, fixtures.Demo()); err != nil {
			t.Fatalf("reseed: %v", err)
		}
		all, err := st.AllRatings(ctx)
		if err != nil {
			t.Fatalf("AllRatings: %v", err)
		}
		if len(all) != 27 {
			t.Fatalf("AllRatings after reseed = %d, want 27", len(all))
		}
	})

	t.Run("Service", func(t *testing.T) {
		svc := catalog.NewService(seeded(t))
		ctx := context.Background()

		views, err := svc.TopRated(ctx)
		if err != nil {
			t.Fatalf("TopRated: %v", err)
		}
		assertTitles(t, views, "AD Movie", "E Movie", "F Movie", "H Movie", "A Movie")

		views, err = svc.UserTopRated(ctx, 1)
		if err != nil {
			t.Fatalf("UserTopRated: %v", err)
		}
		assertTitles(t, views, "I Movie", "C Movie", "E Movie", "AB Movie", "AD Movie")
	})
}

func assertIDs(t *testing.T, movies []domain.Movie, want []int) {
	t.Helper()
	if len(movies) != len(want) {
		t.Fatalf("got %d movies %v, want ids %v", len(movies), movieIDs(movies), want)
	}
	for i, m := range movies {
		if m.ID != want[i] {
			t.Fatalf("got ids %v, want %v", movieIDs(movies), want)
		}
	}
}

func assertTitles(t *testing.T, views []domain.MovieView, want ...string) {
	t.Helper()
	if len(views) != len(want) {
		t.Fatalf("got %d views, want %d", len(views), len(want))
	}
	for i, v := range views {
		if v.Title != want[i] {
			got := make([]string, 0, len(views))
			for _, v := range views {
				got = append(got, v.Title)
			}
			t.Fatalf("titles = %v, want %v", got, want)
		}
	}
}

func movieIDs(movies []domain.Movie) []int {
	ids := make([]int, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}
