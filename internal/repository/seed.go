package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
)

// Seed upserts ds in a single transaction. Rows already present are updated in
// place, so seeding twice leaves the same data behind.
func (r *Repository) Seed(ctx context.Context, ds fixtures.Dataset) error {
	batch := &pgx.Batch{}
	for _, g := range ds.Genres {
		batch.Queue(`
            INSERT INTO genres (id, name) VALUES ($1,$2)
            ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, g.ID, g.Name)
	}
	for _, m := range ds.Movies {
		batch.Queue(`
            INSERT INTO movies (id, title, year_of_release, running_time) VALUES ($1,$2,$3,$4)
            ON CONFLICT (id) DO UPDATE
            SET title = EXCLUDED.title,
                year_of_release = EXCLUDED.year_of_release,
                running_time = EXCLUDED.running_time`, m.ID, m.Title, m.YearOfRelease, m.RunningTime)
	}
	for _, l := range ds.MovieGenres {
		batch.Queue(`
            INSERT INTO movie_genres (movie_id, genre_id) VALUES ($1,$2)
            ON CONFLICT DO NOTHING`, l.MovieID, l.GenreID)
	}
	for _, u := range ds.Users {
		batch.Queue(`INSERT INTO users (id) VALUES ($1) ON CONFLICT DO NOTHING`, u.ID)
	}
	for _, rt := range ds.Ratings {
		batch.Queue(`
            INSERT INTO user_ratings (user_id, movie_id, rating) VALUES ($1,$2,$3)
            ON CONFLICT (user_id, movie_id)
            DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()`, rt.UserID, rt.MovieID, rt.Rating)
	}
	if batch.Len() == 0 {
		return nil
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}

	r.log.Info("dataset seeded",
		"movies", len(ds.Movies),
		"genres", len(ds.Genres),
		"users", len(ds.Users),
		"ratings", len(ds.Ratings),
	)
	return nil
}
