package catalog

import (
	"math"
	"sort"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

// Aggregate collates ratings into one summary per movie, ordered by movie id.
func Aggregate(ratings []domain.UserRating) []domain.MovieRatingSummary {
	if len(ratings) == 0 {
		return []domain.MovieRatingSummary{}
	}

	byMovie := make(map[int]*domain.MovieRatingSummary)
	for _, r := range ratings {
		s, ok := byMovie[r.MovieID]
		if !ok {
			s = &domain.MovieRatingSummary{MovieID: r.MovieID}
			byMovie[r.MovieID] = s
		}
		s.Count++
		s.Sum += r.Rating
	}

	out := make([]domain.MovieRatingSummary, 0, len(byMovie))
	for _, s := range byMovie {
		s.Average = HalfPointAverage(s.Sum, s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieID < out[j].MovieID })
	return out
}

// HalfPointAverage returns sum/count rounded to the nearest 0.5, with exact
// quarter ties rounded away from zero. A zero count yields 0.
func HalfPointAverage(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(2*sum)/float64(count)) / 2
}

// averagesByMovie indexes summaries by movie id.
func averagesByMovie(summaries []domain.MovieRatingSummary) map[int]float64 {
	out := make(map[int]float64, len(summaries))
	for _, s := range summaries {
		out[s.MovieID] = s.Average
	}
	return out
}
