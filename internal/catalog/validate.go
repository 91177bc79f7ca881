package catalog

import "github.com/BHuysamen/MovieApiHomework/internal/domain"

// ValidateFilterSpec reports whether spec can be searched with.
//
// A nil spec, a negative year, or any empty genre name is invalid. A non-empty
// genre list is enough on its own; otherwise a positive year or a title is
// required.
func ValidateFilterSpec(spec *domain.FilterSpec) bool {
	if spec == nil || spec.Year < 0 {
		return false
	}
	for _, g := range spec.Genres {
		if g == "" {
			return false
		}
	}
	if spec.HasGenres() {
		return true
	}
	return spec.HasYear() || spec.HasTitle()
}

// ValidateRating reports whether rating lies in the accepted range.
func ValidateRating(rating int) bool {
	return rating >= domain.MinRating && rating <= domain.MaxRating
}
