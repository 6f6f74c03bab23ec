package web

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

func TestRequestIDInjector(t *testing.T) {
	testCases := []struct {
		name     string
		incoming string
	}{
		{name: "generated", incoming: ""},
		{name: "reused", incoming: "abc-123"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := RequestIDInjector(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = middleware.GetReqID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tc.incoming != "" {
				assert.Equal(t, tc.incoming, seen)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(discard)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestQueryInt32(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected int32
		ok       bool
	}{
		{name: "absent uses default", query: "", expected: 50, ok: true},
		{name: "in range", query: "?limit=10", expected: 10, ok: true},
		{name: "upper bound", query: "?limit=1000", expected: 1000, ok: true},
		{name: "above range", query: "?limit=1001", ok: false},
		{name: "below range", query: "?limit=0", ok: false},
		{name: "not a number", query: "?limit=x", ok: false},
		{name: "overflows int32", query: "?limit=99999999999", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)

			value, ok := QueryInt32(req, rec, discard, "limit", 1, 1000, 50)

			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, value)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestParsePathInt32(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		expected int32
		ok       bool
	}{
		{name: "positive", path: "/q/5", expected: 5, ok: true},
		{name: "zero", path: "/q/0", ok: false},
		{name: "negative", path: "/q/-2", ok: false},
		{name: "text", path: "/q/five", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var value int32
			var ok bool
			mux := chi.NewRouter()
			mux.Get("/q/{quantity}", func(w http.ResponseWriter, r *http.Request) {
				value, ok = ParsePathInt32(w, r, discard, "quantity", 0)
			})
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, value)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
