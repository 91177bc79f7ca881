package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BHuysamen/MovieApiHomework/internal/catalog"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
	"github.com/BHuysamen/MovieApiHomework/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// Repository aggregates the table-level repositories and implements
// catalog.Store on top of them.
type Repository struct {
	pool    *pgxpool.Pool
	log     *logger.Logger
	Movies  *MoviesRepository
	Users   *UsersRepository
	Ratings *RatingsRepository
}

var (
	_ catalog.Store   = (*Repository)(nil)
	_ fixtures.Seeder = (*Repository)(nil)
)

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool(), st.Logger())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{
		pool:    pool,
		log:     logger.OrNop(log).With("component", "repository"),
		Movies:  &MoviesRepository{pool: pool},
		Users:   &UsersRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
	}
}
