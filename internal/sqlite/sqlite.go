// Package sqlite is a gorm-backed catalog store for single-node deployments
// and local development.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/domain"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
)

// Store implements catalog.Store over a SQLite database.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

var (
	_ catalog.Store   = (*Store)(nil)
	_ fixtures.Seeder = (*Store)(nil)
)

// Open connects to dsn, migrates the schema and returns a ready store.
// ":memory:" gives a private in-memory database.
func Open(dsn string, logg *logger.Logger) (*Store, error) {
	log := logger.OrNop(logg).With("component", "sqlite")

	gormLog := gormLogger.New(
		zap.NewStdLog(log.SugaredLogger.Desugar()),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := db.AutoMigrate(&movieModel{}, &genreModel{}, &movieGenreModel{}, &userModel{}, &userRatingModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	log.Info("sqlite store ready", "dsn", dsn)
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// MovieExists reports whether a movie with id is stored.
func (s *Store) MovieExists(ctx context.Context, id int) (bool, error) {
	return s.exists(ctx, &movieModel{}, id)
}

// UserExists reports whether a user with id is stored.
func (s *Store) UserExists(ctx context.Context, id int) (bool, error) {
	return s.exists(ctx, &userModel{}, id)
}

func (s *Store) exists(ctx context.Context, model interface{}, id int) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return count > 0, nil
}

// FindMovies pushes every criterion on spec down into one query. instr keeps
// title matching literal and case-sensitive.
func (s *Store) FindMovies(ctx context.Context, spec domain.FilterSpec) ([]domain.Movie, error) {
	q := s.db.WithContext(ctx).Model(&movieModel{})
	if spec.HasYear() {
		q = q.Where("year_of_release = ?", spec.Year)
	}
	if spec.HasTitle() {
		q = q.Where("instr(title, ?) > 0", spec.Title)
	}
	if spec.HasGenres() {
		sub := s.db.Model(&movieGenreModel{}).
			Select("movie_genres.movie_id").
			Joins("JOIN genres ON genres.id = movie_genres.genre_id").
			Where("genres.name IN ?", spec.Genres)
		q = q.Where("id IN (?)", sub)
	}

	var rows []movieModel
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	return toMovies(rows), nil
}

// MoviesByIDs returns the stored movies among ids, ordered by id.
func (s *Store) MoviesByIDs(ctx context.Context, ids []int) ([]domain.Movie, error) {
	if len(ids) == 0 {
		return []domain.Movie{}, nil
	}
	var rows []movieModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("movies by ids: %w", err)
	}
	return toMovies(rows), nil
}

// RatingsForMovies returns every rating of the given movies. No query runs for an empty list.
func (s *Store) RatingsForMovies(ctx context.Context, movieIDs []int) ([]domain.UserRating, error) {
	if len(movieIDs) == 0 {
		return []domain.UserRating{}, nil
	}
	return s.ratings(ctx, s.db.WithContext(ctx).Where("movie_id IN ?", movieIDs))
}

// AllRatings returns every stored rating.
func (s *Store) AllRatings(ctx context.Context) ([]domain.UserRating, error) {
	return s.ratings(ctx, s.db.WithContext(ctx))
}

// RatingsForUser returns the ratings given by userID.
func (s *Store) RatingsForUser(ctx context.Context, userID int) ([]domain.UserRating, error) {
	return s.ratings(ctx, s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *Store) ratings(_ context.Context, q *gorm.DB) ([]domain.UserRating, error) {
	var rows []userRatingModel
	if err := q.Order("movie_id, user_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	out := make([]domain.UserRating, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.UserRating{UserID: r.UserID, MovieID: r.MovieID, Rating: r.Rating})
	}
	return out, nil
}

// UpsertRating inserts or replaces the (user, movie) rating in one statement.
func (s *Store) UpsertRating(ctx context.Context, movieID, userID, rating int) error {
	return upsertRatings(s.db.WithContext(ctx), []userRatingModel{{UserID: userID, MovieID: movieID, Rating: rating}})
}

func upsertRatings(db *gorm.DB, rows []userRatingModel) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Omit(clause.Associations).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// Seed upserts ds in one transaction.
func (s *Store) Seed(ctx context.Context, ds fixtures.Dataset) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ds.Genres) > 0 {
			rows := make([]genreModel, 0, len(ds.Genres))
			for _, g := range ds.Genres {
				rows = append(rows, genreModel{ID: g.ID, Name: g.Name})
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("genres: %w", err)
			}
		}
		if len(ds.Movies) > 0 {
			rows := make([]movieModel, 0, len(ds.Movies))
			for _, m := range ds.Movies {
				rows = append(rows, movieModel{ID: m.ID, Title: m.Title, YearOfRelease: m.YearOfRelease, RunningTime: m.RunningTime})
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("movies: %w", err)
			}
		}
		if len(ds.MovieGenres) > 0 {
			rows := make([]movieGenreModel, 0, len(ds.MovieGenres))
			for _, l := range ds.MovieGenres {
				rows = append(rows, movieGenreModel{MovieID: l.MovieID, GenreID: l.GenreID})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&rows).Error; err != nil {
				return fmt.Errorf("movie genres: %w", err)
			}
		}
		if len(ds.Users) > 0 {
			rows := make([]userModel, 0, len(ds.Users))
			for _, u := range ds.Users {
				rows = append(rows, userModel{ID: u.ID})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("users: %w", err)
			}
		}
		if len(ds.Ratings) > 0 {
			rows := make([]userRatingModel, 0, len(ds.Ratings))
			for _, r := range ds.Ratings {
				rows = append(rows, userRatingModel{UserID: r.UserID, MovieID: r.MovieID, Rating: r.Rating})
			}
			return upsertRatings(tx, rows)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	s.log.Info("dataset seeded", "movies", len(ds.Movies), "ratings", len(ds.Ratings))
	return nil
}

func toMovies(rows []movieModel) []domain.Movie {
	out := make([]domain.Movie, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Movie{
			ID:            r.ID,
			Title:         r.Title,
			YearOfRelease: r.YearOfRelease,
			RunningTime:   r.RunningTime,
		})
	}
	return out
}
