package httpserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func BenchmarkHandleRateMovie(b *testing.B) {
	srv, _ := demoServer(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		path := fmt.Sprintf("/movies/%d/user/%d/rating/%d", 1+i%10, 1+i%4, i%6)
		req := httptest.NewRequest(http.MethodPut, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkHandleTopRated(b *testing.B) {
	srv, _ := demoServer(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/movies/topfive", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
