// Package fixtures loads catalog datasets from YAML and seeds them into stores.
package fixtures

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
)

//go:embed demo.yaml
var demoYAML []byte

// Dataset is a complete catalog snapshot ready to be seeded.
type Dataset struct {
	Movies      []domain.Movie
	Genres      []domain.Genre
	MovieGenres []domain.MovieGenre
	Users       []domain.User
	Ratings     []domain.UserRating
}

// Seeder is implemented by stores that can load a Dataset. Seeding must be
// idempotent: existing rows are updated, never duplicated.
type Seeder interface {
	Seed(ctx context.Context, ds Dataset) error
}

type fileFormat struct {
	Genres  []genreRecord  `yaml:"genres"`
	Movies  []movieRecord  `yaml:"movies"`
	Users   []int          `yaml:"users"`
	Ratings []ratingRecord `yaml:"ratings"`
}

type genreRecord struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type movieRecord struct {
	ID          int      `yaml:"id"`
	Title       string   `yaml:"title"`
	Year        int      `yaml:"year"`
	RunningTime int      `yaml:"runningTime"`
	Genres      []string `yaml:"genres"`
}

type ratingRecord struct {
	User   int `yaml:"user"`
	Movie  int `yaml:"movie"`
	Rating int `yaml:"rating"`
}

// Demo returns the embedded demo dataset.
func Demo() Dataset {
	ds, err := Parse(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("fixtures: embedded demo dataset is invalid: %v", err))
	}
	return ds
}

// LoadFile reads and parses a dataset file.
func LoadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a dataset from r.
func Load(r io.Reader) (Dataset, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(payload)
}

// Parse decodes and validates a YAML dataset.
func Parse(payload []byte) (Dataset, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}

	var ds Dataset
	genreIDs := make(map[string]int, len(raw.Genres))
	for _, g := range raw.Genres {
		if g.Name == "" {
			return Dataset{}, fmt.Errorf("genre %d has no name", g.ID)
		}
		if _, dup := genreIDs[g.Name]; dup {
			return Dataset{}, fmt.Errorf("duplicate genre name %q", g.Name)
		}
		genreIDs[g.Name] = g.ID
		ds.Genres = append(ds.Genres, domain.Genre{ID: g.ID, Name: g.Name})
	}

	movieIDs := make(map[int]struct{}, len(raw.Movies))
	for _, m := range raw.Movies {
		if _, dup := movieIDs[m.ID]; dup {
			return Dataset{}, fmt.Errorf("duplicate movie id %d", m.ID)
		}
		movieIDs[m.ID] = struct{}{}
		ds.Movies = append(ds.Movies, domain.Movie{
			ID:            m.ID,
			Title:         m.Title,
			YearOfRelease: m.Year,
			RunningTime:   m.RunningTime,
		})
		for _, name := range m.Genres {
			gid, ok := genreIDs[name]
			if !ok {
				return Dataset{}, fmt.Errorf("movie %d references unknown genre %q", m.ID, name)
			}
			ds.MovieGenres = append(ds.MovieGenres, domain.MovieGenre{MovieID: m.ID, GenreID: gid})
		}
	}

	userIDs := make(map[int]struct{}, len(raw.Users))
	for _, id := range raw.Users {
		if _, dup := userIDs[id]; dup {
			return Dataset{}, fmt.Errorf("duplicate user id %d", id)
		}
		userIDs[id] = struct{}{}
		ds.Users = append(ds.Users, domain.User{ID: id})
	}

	for _, r := range raw.Ratings {
		if _, ok := movieIDs[r.Movie]; !ok {
			return Dataset{}, fmt.Errorf("rating references unknown movie %d", r.Movie)
		}
		if _, ok := userIDs[r.User]; !ok {
			return Dataset{}, fmt.Errorf("rating references unknown user %d", r.User)
		}
		if r.Rating < domain.MinRating || r.Rating > domain.MaxRating {
			return Dataset{}, fmt.Errorf("rating %d for movie %d out of range", r.Rating, r.Movie)
		}
		ds.Ratings = append(ds.Ratings, domain.UserRating{UserID: r.User, MovieID: r.Movie, Rating: r.Rating})
	}

	return ds, nil
}
