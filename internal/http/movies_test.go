package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestBuildFilterSpec(t *testing.T) {
	spec := buildFilterSpec(filterRequest{Title: "A", Year: 2001, Genres: []string{"Horror"}})
	if spec.Title != "A" || spec.Year != 2001 || len(spec.Genres) != 1 || spec.Genres[0] != "Horror" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestIntParam(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"number", "42", 42, false},
		{"negative", "-1", -1, false},
		{"missing", "", 0, true},
		{"word", "abc", 0, true},
		{"float", "3.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := attachParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"userId": tt.raw})
			got, err := intParam(req, "userId")
			if (err != nil) != tt.wantErr {
				t.Fatalf("intParam(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("intParam(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeJSONBody_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"A","director":"x"}`))
	rec := httptest.NewRecorder()
	var dst filterRequest
	if err := decodeJSONBody(rec, req, &dst); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDecodeJSONBody_RejectsTrailingData(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"garbage after object", `{"title":"A"}garbage`, false},
		{"second object", `{"title":"A"}{"title":"B"}`, false},
		{"trailing whitespace", "{\"title\":\"A\"}\n  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			var dst filterRequest
			err := decodeJSONBody(rec, req, &dst)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, errTrailingData) {
				t.Fatalf("err = %v, want errTrailingData", err)
			}
		})
	}
}

func TestRespondDecodeError(t *testing.T) {
	srv := &Server{log: nopLogger()}
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `{"title":`},
		{"type", `{"year":"2001"}`},
		{"empty", ``},
		{"unknown field", `{"rating":3}`},
		{"trailing data", `{"title":"A"}garbage`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			var dst filterRequest
			err := decodeJSONBody(rec, req, &dst)
			if err == nil {
				t.Fatalf("expected decode error")
			}
			srv.respondDecodeError(rec, err)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != "BAD_REQUEST" {
				t.Fatalf("code = %s, want BAD_REQUEST", body.Code)
			}
		})
	}
}

func TestRespondDecodeError_UnknownError(t *testing.T) {
	srv := &Server{log: nopLogger()}
	rec := httptest.NewRecorder()
	srv.respondDecodeError(rec, errors.New("boom"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRespondErrorEnvelope(t *testing.T) {
	srv := &Server{log: nopLogger()}
	rec := httptest.NewRecorder()
	srv.respondError(rec, http.StatusNotFound, "NOT_FOUND", "No movies found")

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if len(body) != 2 || body["code"] != "NOT_FOUND" || body["message"] != "No movies found" {
		t.Fatalf("body = %v, want only code and message", body)
	}
}

func attachParams(req *http.Request, params map[string]string) *http.Request {
	ctx := chi.NewRouteContext()
	for k, v := range params {
		ctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}
