// Package client talks to a running catalog HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BHuysamen/MovieApiHomework/internal/domain"
	"github.com/BHuysamen/MovieApiHomework/internal/logger"
)

var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("client: not found")
	// ErrBadRequest is returned when the API rejects the input with 400.
	ErrBadRequest = errors.New("client: bad request")
)

// HTTPClient calls the catalog API over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	log     *logger.Logger
}

// NewHTTPClient constructs a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, log *logger.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse api url: %q is not absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		log: logger.OrNop(log).With("component", "client"),
	}, nil
}

// Search posts spec to the filter endpoint.
func (c *HTTPClient) Search(ctx context.Context, spec domain.FilterSpec) ([]domain.MovieView, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return c.movies(ctx, http.MethodPost, "/movies/ByFilters", body)
}

// TopRated fetches the global top list.
func (c *HTTPClient) TopRated(ctx context.Context) ([]domain.MovieView, error) {
	return c.movies(ctx, http.MethodGet, "/movies/topfive", nil)
}

// UserTopRated fetches one user's top list.
func (c *HTTPClient) UserTopRated(ctx context.Context, userID int) ([]domain.MovieView, error) {
	return c.movies(ctx, http.MethodGet, "/movies/user/"+strconv.Itoa(userID)+"/topfive", nil)
}

// Rate stores rating for (movieID, userID).
func (c *HTTPClient) Rate(ctx context.Context, movieID, userID, rating int) error {
	path := fmt.Sprintf("/movies/%d/user/%d/rating/%d", movieID, userID, rating)
	_, err := c.do(ctx, http.MethodPut, path, nil)
	return err
}

func (c *HTTPClient) movies(ctx context.Context, method, path string, body []byte) ([]domain.MovieView, error) {
	payload, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var items []movieView
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	return convertMovies(items), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: c.baseURL.Path + path})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return payload, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, errorMessage(payload))
	default:
		c.log.Warn("unexpected status", "status", resp.StatusCode, "method", method, "path", path, "request_id", requestID)
		return nil, fmt.Errorf("client: api returned %d: %s", resp.StatusCode, errorMessage(payload))
	}
}

type movieView struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	YearOfRelease int     `json:"yearOfRelease"`
	RunningTime   int     `json:"runningTime"`
	AverageRating float64 `json:"averageRating"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func convertMovies(items []movieView) []domain.MovieView {
	out := make([]domain.MovieView, 0, len(items))
	for _, it := range items {
		out = append(out, domain.MovieView{
			ID:            it.ID,
			Title:         it.Title,
			YearOfRelease: it.YearOfRelease,
			RunningTime:   it.RunningTime,
			AverageRating: it.AverageRating,
		})
	}
	return out
}

// errorMessage extracts the message of an error envelope, falling back to the
// raw body.
func errorMessage(payload []byte) string {
	var e apiError
	if err := json.Unmarshal(payload, &e); err == nil && e.Message != "" {
		return e.Message
	}
	msg := strings.TrimSpace(string(payload))
	if msg == "" {
		return "no details"
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
