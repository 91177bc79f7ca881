package domain

// Movie represents the canonical movie entity in the catalog.
type Movie struct {
	ID            int
	Title         string
	YearOfRelease int
	RunningTime   int
}

// Genre is a named category. Names are unique across the catalog.
type Genre struct {
	ID   int
	Name string
}

// MovieGenre links a movie to one of its genres.
type MovieGenre struct {
	MovieID int
	GenreID int
}

// User is a rater. Only the identity is tracked.
type User struct {
	ID int
}
