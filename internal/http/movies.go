package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

const maxRequestBody = 1 << 20 // 1 MiB

var errTrailingData = errors.New("request body must contain a single JSON value")

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type filterRequest struct {
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Genres []string `json:"genres"`
}

type movieResponse struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	YearOfRelease int     `json:"yearOfRelease"`
	RunningTime   int     `json:"runningTime"`
	AverageRating float64 `json:"averageRating"`
}

type ratingResponse struct {
	MovieID int `json:"movieId"`
	UserID  int `json:"userId"`
	Rating  int `json:"rating"`
}

func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	spec := buildFilterSpec(req)
	if !s.catalog.ValidateFilterSpec(&spec) {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "At least one of title, year or genres is required")
		return
	}

	views, err := s.catalog.Search(r.Context(), spec)
	if err != nil {
		s.log.Error("search movies failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search movies")
		return
	}
	s.respondMovies(w, views)
}

func buildFilterSpec(req filterRequest) domain.FilterSpec {
	return domain.FilterSpec{
		Title:  req.Title,
		Year:   req.Year,
		Genres: req.Genres,
	}
}

func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	views, err := s.catalog.TopRated(r.Context())
	if err != nil {
		s.log.Error("top rated failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to rank movies")
		return
	}
	s.respondMovies(w, views)
}

func (s *Server) handleUserTopRated(w http.ResponseWriter, r *http.Request) {
	userID, err := intParam(r, "userId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	ok, err := s.catalog.UserExists(r.Context(), userID)
	if err != nil {
		s.log.Error("user lookup failed", "user_id", userID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to rank movies")
		return
	}
	if !ok {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Unknown user")
		return
	}

	views, err := s.catalog.UserTopRated(r.Context(), userID)
	if err != nil {
		s.log.Error("user top rated failed", "user_id", userID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to rank movies")
		return
	}
	s.respondMovies(w, views)
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := intParam(r, "movieId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	userID, err := intParam(r, "userId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	rating, err := intParam(r, "rating")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	err = s.catalog.RateMovie(r.Context(), movieID, userID, rating)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, ratingResponse{MovieID: movieID, UserID: userID, Rating: rating})
	case errors.Is(err, catalog.ErrInvalidRating):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST",
			fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	case errors.Is(err, catalog.ErrMovieNotFound), errors.Is(err, catalog.ErrUserNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		s.log.Error("rate movie failed", "movie_id", movieID, "user_id", userID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store rating")
	}
}

// respondMovies writes views, or 404 when there are none.
func (s *Server) respondMovies(w http.ResponseWriter, views []domain.MovieView) {
	if len(views) == 0 {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "No movies found")
		return
	}
	items := make([]movieResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toMovieResponse(v))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func toMovieResponse(v domain.MovieView) movieResponse {
	return movieResponse{
		ID:            v.ID,
		Title:         v.Title,
		YearOfRelease: v.YearOfRelease,
		RunningTime:   v.RunningTime,
		AverageRating: v.AverageRating,
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.log.Warn("failed to encode response", "error", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.Is(err, errTrailingData):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request body must contain a single JSON object")
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Unable to parse request body")
	}
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}
