package domain

// Rating bounds, inclusive.
const (
	MinRating = 0
	MaxRating = 5
)

// UserRating is a single user's rating for a movie. There is at most one
// rating per (user, movie) pair.
type UserRating struct {
	UserID  int
	MovieID int
	Rating  int
}

// MovieRatingSummary holds the collated ratings for one movie.
type MovieRatingSummary struct {
	MovieID int
	Count   int
	Sum     int
	Average float64
}

// MovieView is a movie combined with its average rating.
type MovieView struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	YearOfRelease int     `json:"yearOfRelease"`
	RunningTime   int     `json:"runningTime"`
	AverageRating float64 `json:"averageRating"`
}

// NewMovieView builds a view for movie with the given average.
func NewMovieView(movie Movie, average float64) MovieView {
	return MovieView{
		ID:            movie.ID,
		Title:         movie.Title,
		YearOfRelease: movie.YearOfRelease,
		RunningTime:   movie.RunningTime,
		AverageRating: average,
	}
}
