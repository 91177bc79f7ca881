package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/BHuysamen/MovieApiHomework/internal/backend"
	"github.com/BHuysamen/MovieApiHomework/internal/client"
	"github.com/BHuysamen/MovieApiHomework/internal/config"
	"github.com/BHuysamen/MovieApiHomework/internal/domain"
	"github.com/BHuysamen/MovieApiHomework/internal/fixtures"
	"github.com/BHuysamen/MovieApiHomework/internal/loadgen"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
)

var (
	app = kingpin.New("catalogctl", "Movie catalog operator tool.")

	apiURL  = app.Flag("api", "base URL of the catalog API").Default("http://localhost:8080").Envar("CATALOG_API_URL").String()
	timeout = app.Flag("timeout", "request timeout").Default("5s").Duration()
	logMode = app.Flag("log-mode", "development or production").Default("development").Envar("LOG_MODE").String()

	seedCmd  = app.Command("seed", "load a dataset into the configured store (DB_DRIVER, DB_URL)")
	seedFile = seedCmd.Flag("file", "YAML dataset; the embedded demo dataset when empty").String()

	searchCmd    = app.Command("search", "search movies by title, year and genres")
	searchTitle  = searchCmd.Flag("title", "case-sensitive title substring").String()
	searchYear   = searchCmd.Flag("year", "year of release").Int()
	searchGenres = searchCmd.Flag("genre", "genre name, repeatable").Strings()

	topCmd  = app.Command("top", "show the top rated movies")
	topUser = topCmd.Flag("user", "rank by one user's ratings").Int()

	rateCmd    = app.Command("rate", "rate a movie")
	rateMovie  = rateCmd.Arg("movie", "movie id").Required().Int()
	rateUser   = rateCmd.Arg("user", "user id").Required().Int()
	rateRating = rateCmd.Arg("rating", "rating from 0 to 5").Required().Int()

	benchCmd         = app.Command("bench", "generate load against a running API")
	benchPath        = benchCmd.Flag("path", "request path").Default("/movies/topfive").String()
	benchMethod      = benchCmd.Flag("method", "HTTP method").Default("GET").Enum("GET", "POST", "PUT")
	benchBody        = benchCmd.Flag("body", "JSON request body").String()
	benchConcurrency = benchCmd.Flag("concurrency", "number of concurrent connections").Default("10").Int()
	benchDuration    = benchCmd.Flag("duration", "duration of the run").Default("10s").Duration()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg, err := logger.New(*logMode)
	app.FatalIfError(err, "init logger")
	defer logg.Sync()

	switch command {
	case seedCmd.FullCommand():
		err = runSeed(ctx, logg)
	case searchCmd.FullCommand():
		err = runSearch(ctx, logg)
	case topCmd.FullCommand():
		err = runTop(ctx, logg)
	case rateCmd.FullCommand():
		err = runRate(ctx, logg)
	case benchCmd.FullCommand():
		err = runBench(ctx)
	}
	app.FatalIfError(err, "%s", command)
}

func runSeed(ctx context.Context, logg *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ds := fixtures.Demo()
	if *seedFile != "" {
		if ds, err = fixtures.LoadFile(*seedFile); err != nil {
			return err
		}
	}

	st, err := backend.Open(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Seed(ctx, ds); err != nil {
		return err
	}
	fmt.Printf("seeded %d movies, %d users, %d ratings\n", len(ds.Movies), len(ds.Users), len(ds.Ratings))
	return nil
}

func newClient(logg *logger.Logger) (*client.HTTPClient, error) {
	return client.NewHTTPClient(*apiURL, *timeout, logg)
}

func runSearch(ctx context.Context, logg *logger.Logger) error {
	c, err := newClient(logg)
	if err != nil {
		return err
	}
	views, err := c.Search(ctx, domain.FilterSpec{Title: *searchTitle, Year: *searchYear, Genres: *searchGenres})
	if err != nil {
		return err
	}
	return printJSON(views)
}

func runTop(ctx context.Context, logg *logger.Logger) error {
	c, err := newClient(logg)
	if err != nil {
		return err
	}
	var views []domain.MovieView
	if *topUser > 0 {
		views, err = c.UserTopRated(ctx, *topUser)
	} else {
		views, err = c.TopRated(ctx)
	}
	if err != nil {
		return err
	}
	return printJSON(views)
}

func runRate(ctx context.Context, logg *logger.Logger) error {
	c, err := newClient(logg)
	if err != nil {
		return err
	}
	if err := c.Rate(ctx, *rateMovie, *rateUser, *rateRating); err != nil {
		return err
	}
	fmt.Printf("movie %d rated %d by user %d\n", *rateMovie, *rateRating, *rateUser)
	return nil
}

func runBench(ctx context.Context) error {
	stats, err := loadgen.Run(ctx, loadgen.Options{
		URL:         strings.TrimRight(*apiURL, "/") + *benchPath,
		Method:      *benchMethod,
		Body:        []byte(*benchBody),
		Concurrency: *benchConcurrency,
		Duration:    *benchDuration,
		Timeout:     *timeout,
	})
	if err != nil {
		return err
	}
	fmt.Printf("requests: %d (%.1f/s), errors: %d, latency min %s max %s\n",
		stats.Requests, stats.RequestsPerSecond(), stats.Errors,
		stats.MinLatency.Round(time.Microsecond), stats.MaxLatency.Round(time.Microsecond))
	return printJSON(stats)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
