package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/config"
	"github.com/BHuysamen/MovieApiHomework/internal/domain"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
	"github.com/BHuysamen/MovieApiHomework/internal/memstore"
)

func nopLogger() *logger.Logger { return logger.Nop() }

type healthFunc func(context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// brokenStore fails every ratings read.
type brokenStore struct {
	*memstore.Store
}

var errBroken = errors.New("store offline")

func (brokenStore) AllRatings(context.Context) ([]domain.UserRating, error) { return nil, errBroken }

func (brokenStore) RatingsForMovies(context.Context, []int) ([]domain.UserRating, error) {
	return nil, errBroken
}

func buildTestServer(tb testing.TB, st catalog.Store) *Server {
	tb.Helper()
	cfg := config.Config{
		Port:             "0",
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
		TopN:             catalog.DefaultTopN,
	}
	return New(cfg, catalog.NewService(st), nil, nopLogger())
}

func demoServer(tb testing.TB) (*Server, *memstore.Store) {
	tb.Helper()
	st := memstore.NewSeeded(fixtures.Demo())
	return buildTestServer(tb, st), st
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeMovies(t *testing.T, rec *httptest.ResponseRecorder) []movieResponse {
	t.Helper()
	var items []movieResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode movies: %v (body %s)", err, rec.Body.String())
	}
	return items
}

func titles(items []movieResponse) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func assertTitles(t *testing.T, items []movieResponse, want ...string) {
	t.Helper()
	got := titles(items)
	if len(got) != len(want) {
		t.Fatalf("titles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles = %v, want %v", got, want)
		}
	}
}

func TestHandleSearchMovies(t *testing.T) {
	srv, _ := demoServer(t)

	rec := do(t, srv, http.MethodPost, "/movies/ByFilters", `{"year":2001}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	items := decodeMovies(t, rec)
	assertTitles(t, items, "AB Movie", "C Movie")
	if items[0].AverageRating != 3.0 || items[1].AverageRating != 2.5 {
		t.Fatalf("averages = %v/%v, want 3.0/2.5", items[0].AverageRating, items[1].AverageRating)
	}
	if items[0].ID != 2 || items[0].YearOfRelease != 2001 || items[0].RunningTime != 120 {
		t.Fatalf("unexpected movie payload: %+v", items[0])
	}
}

func TestHandleSearchMovies_JSONShape(t *testing.T) {
	srv, _ := demoServer(t)
	rec := do(t, srv, http.MethodPost, "/movies/ByFilters", `{"title":"J"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var raw []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("items = %d, want 1", len(raw))
	}
	for _, key := range []string{"id", "title", "yearOfRelease", "runningTime", "averageRating"} {
		if _, ok := raw[0][key]; !ok {
			t.Fatalf("missing key %q in %v", key, raw[0])
		}
	}
	if raw[0]["averageRating"].(float64) != 0 {
		t.Fatalf("unrated movie average = %v, want 0", raw[0]["averageRating"])
	}
}

func TestHandleSearchMovies_Errors(t *testing.T) {
	srv, _ := demoServer(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty spec", `{}`, http.StatusBadRequest},
		{"negative year", `{"year":-1}`, http.StatusBadRequest},
		{"empty genre name", `{"genres":[""]}`, http.StatusBadRequest},
		{"malformed", `{"year":`, http.StatusBadRequest},
		{"unknown field", `{"director":"x"}`, http.StatusBadRequest},
		{"trailing garbage", `{"title":"A"}garbage`, http.StatusBadRequest},
		{"no matches", `{"title":"Nothing"}`, http.StatusNotFound},
		{"genre only", `{"genres":["Horror"]}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/movies/ByFilters", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandleTopRated(t *testing.T) {
	srv, _ := demoServer(t)
	for _, path := range []string{"/movies/topfive", "/movies/User/All/TopFiveRating"} {
		rec := do(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, rec.Code)
		}
		assertTitles(t, decodeMovies(t, rec), "AD Movie", "E Movie", "F Movie", "H Movie", "A Movie")
	}
}

func TestHandleTopRated_NoRatings(t *testing.T) {
	ds := fixtures.Demo()
	ds.Ratings = nil
	srv := buildTestServer(t, memstore.NewSeeded(ds))

	rec := do(t, srv, http.MethodGet, "/movies/topfive", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleUserTopRated(t *testing.T) {
	srv, _ := demoServer(t)
	for _, path := range []string{"/movies/user/1/topfive", "/movies/User/1/TopFiveRating"} {
		rec := do(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, rec.Code)
		}
		assertTitles(t, decodeMovies(t, rec), "I Movie", "C Movie", "E Movie", "AB Movie", "AD Movie")
	}
}

func TestHandleUserTopRated_Errors(t *testing.T) {
	ds := fixtures.Demo()
	ds.Users = append(ds.Users, domain.User{ID: 5})
	srv := buildTestServer(t, memstore.NewSeeded(ds))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown user", "/movies/user/999/topfive", http.StatusBadRequest},
		{"non-integer user", "/movies/user/abc/topfive", http.StatusBadRequest},
		{"user without ratings", "/movies/user/5/topfive", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleRateMovie(t *testing.T) {
	srv, st := demoServer(t)

	rec := do(t, srv, http.MethodPut, "/movies/10/user/4/rating/5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp ratingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp != (ratingResponse{MovieID: 10, UserID: 4, Rating: 5}) {
		t.Fatalf("response = %+v", resp)
	}

	// The write is visible immediately.
	rec = do(t, srv, http.MethodPut, "/movies/10/User/4/Rating/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("alias status = %d, want 200", rec.Code)
	}
	ratings, err := st.RatingsForMovies(context.Background(), []int{10})
	if err != nil {
		t.Fatalf("RatingsForMovies: %v", err)
	}
	if len(ratings) != 1 || ratings[0].Rating != 1 {
		t.Fatalf("ratings for movie 10 = %+v, want one rating of 1", ratings)
	}
}

func TestHandleRateMovie_Errors(t *testing.T) {
	srv, st := demoServer(t)
	tests := []struct {
		name string
		path string
		want int
	}{
		{"rating too high", "/movies/1/user/1/rating/6", http.StatusBadRequest},
		{"negative rating", "/movies/1/user/1/rating/-1", http.StatusBadRequest},
		{"non-integer rating", "/movies/1/user/1/rating/3.5", http.StatusBadRequest},
		{"non-integer movie", "/movies/x/user/1/rating/3", http.StatusBadRequest},
		{"unknown movie", "/movies/999/user/1/rating/3", http.StatusNotFound},
		{"unknown user", "/movies/1/user/999/rating/3", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPut, tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	all, err := st.AllRatings(context.Background())
	if err != nil {
		t.Fatalf("AllRatings: %v", err)
	}
	if len(all) != 27 {
		t.Fatalf("rejected writes touched the store: %d ratings", len(all))
	}
}

func TestStoreFailureMapsTo500(t *testing.T) {
	srv := buildTestServer(t, brokenStore{memstore.NewSeeded(fixtures.Demo())})

	rec := do(t, srv, http.MethodGet, "/movies/topfive", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("topfive status = %d, want 500", rec.Code)
	}
	rec = do(t, srv, http.MethodPost, "/movies/ByFilters", `{"year":2001}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("search status = %d, want 500", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Fatalf("code = %s, want INTERNAL_ERROR", body.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	srv, _ := demoServer(t)
	if rec := do(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	srv.health = healthFunc(func(context.Context) error { return errors.New("down") })
	if rec := do(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
