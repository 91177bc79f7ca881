// Package loadgen drives concurrent HTTP load against the catalog API.
package loadgen

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// Options configures a run.
type Options struct {
	URL         string
	Method      string
	Body        []byte
	Concurrency int
	Duration    time.Duration
	Timeout     time.Duration
}

// Stats summarises a run. Latencies are per request.
type Stats struct {
	Requests     int64         `json:"nqueries"`
	Errors       int64         `json:"errors"`
	MinLatency   time.Duration `json:"min_latency"`
	MaxLatency   time.Duration `json:"max_latency"`
	StatusCounts map[int]int64 `json:"status_counts"`
	Duration     float64       `json:"duration"`
}

// RequestsPerSecond is the observed throughput.
func (s Stats) RequestsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Requests) / s.Duration
}

func newStats() Stats {
	return Stats{MinLatency: math.MaxInt64, StatusCounts: make(map[int]int64)}
}

func (s *Stats) merge(o Stats) {
	s.Requests += o.Requests
	s.Errors += o.Errors
	if o.MinLatency < s.MinLatency {
		s.MinLatency = o.MinLatency
	}
	if o.MaxLatency > s.MaxLatency {
		s.MaxLatency = o.MaxLatency
	}
	for code, n := range o.StatusCounts {
		s.StatusCounts[code] += n
	}
}

// Run issues requests from opts.Concurrency workers until opts.Duration
// elapses or ctx is cancelled.
func Run(ctx context.Context, opts Options) (Stats, error) {
	if opts.URL == "" {
		return Stats{}, errors.New("loadgen: url is required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Duration <= 0 {
		return Stats{}, errors.New("loadgen: duration must be positive")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Method == "" {
		opts.Method = fasthttp.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()

	client := &fasthttp.Client{MaxConnsPerHost: opts.Concurrency}
	statsCh := make(chan Stats, opts.Concurrency)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statsCh <- work(ctx, client, opts)
		}()
	}
	wg.Wait()
	close(statsCh)

	total := newStats()
	for s := range statsCh {
		total.merge(s)
	}
	if total.MinLatency == math.MaxInt64 {
		total.MinLatency = 0
	}
	total.Duration = time.Since(start).Seconds()
	return total, nil
}

// Backoff bounds for a worker whose requests keep failing.
const (
	minErrorBackoff = 10 * time.Millisecond
	maxErrorBackoff = time.Second
)

func work(ctx context.Context, client *fasthttp.Client, opts Options) Stats {
	req := fasthttp.AcquireRequest()
	rsp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(rsp)

	req.Header.SetMethod(opts.Method)
	req.SetRequestURI(opts.URL)
	if len(opts.Body) > 0 {
		req.Header.SetContentType("application/json")
		req.SetBody(opts.Body)
	}

	stats := newStats()
	backoff := time.Duration(0)
	for ctx.Err() == nil {
		began := time.Now()
		err := client.DoTimeout(req, rsp, opts.Timeout)
		latency := time.Since(began)

		stats.Requests++
		if err != nil {
			stats.Errors++
			backoff = nextBackoff(backoff)
			sleep(ctx, backoff)
			continue
		}
		backoff = 0
		stats.StatusCounts[rsp.StatusCode()]++
		if latency < stats.MinLatency {
			stats.MinLatency = latency
		}
		if latency > stats.MaxLatency {
			stats.MaxLatency = latency
		}
	}
	return stats
}

// nextBackoff doubles the wait after each consecutive failure.
func nextBackoff(cur time.Duration) time.Duration {
	if cur < minErrorBackoff {
		return minErrorBackoff
	}
	if cur*2 > maxErrorBackoff {
		return maxErrorBackoff
	}
	return cur * 2
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
