package domain

// FilterSpec describes a movie search. Zero values mean "not set".
type FilterSpec struct {
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Genres []string `json:"genres"`
}

// HasYear reports whether the year criterion is set.
func (f FilterSpec) HasYear() bool { return f.Year > 0 }

// HasTitle reports whether the title criterion is set.
func (f FilterSpec) HasTitle() bool { return f.Title != "" }

// HasGenres reports whether the genre criterion is set.
func (f FilterSpec) HasGenres() bool { return len(f.Genres) > 0 }
