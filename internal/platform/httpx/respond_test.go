package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatus(t *testing.T) {
	cases := map[error]int{
		ErrNotFound:                          http.StatusNotFound,
		fmt.Errorf("wrap: %w", ErrDuplicate): http.StatusConflict,
		ErrValidation:                        http.StatusBadRequest,
		ErrForbidden:                         http.StatusForbidden,
		ErrUnauthorized:                      http.StatusUnauthorized,
		ErrUnavailable:                       http.StatusServiceUnavailable,
		fmt.Errorf("db down"):                http.StatusInternalServerError,
	}
	for err, status := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, err)
		require.Equal(t, status, rr.Code, err.Error())
		require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, status, body.Status)
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("password=hunter2"))
	require.NotContains(t, rr.Body.String(), "hunter2")
}

type sample struct {
	Name string `json:"name" validate:"required"`
}

func TestDecodeValid(t *testing.T) {
	v := validator.New()
	cases := []struct {
		body string
		ok   bool
	}{
		{`{"name":"a"}`, true},
		{`{"name":""}`, false},
		{`{"name":"a","extra":1}`, false},
		{`{"name":"a"}{"name":"b"}`, false},
		{`{`, false},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
		var dst sample
		require.Equal(t, tc.ok, DecodeValid(rr, req, v, &dst), tc.body)
		if !tc.ok {
			require.Equal(t, http.StatusBadRequest, rr.Code)
		}
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := PathID(w, r, "id")
		if !ok {
			return
		}
		JSON(w, http.StatusOK, map[string]int64{"id": id})
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"id":42}`, rr.Body.String())

	for _, bad := range []string{"/items/0", "/items/-3", "/items/abc"} {
		rr = httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, bad, nil))
		require.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}
