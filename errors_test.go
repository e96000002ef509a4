package svcmap_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svcmap/svcmap"
)

func TestErrors_http_error_status(t *testing.T) {
	t.Parallel()

	r := svcmap.New()
	svcmap.Get(r, "/missing", func(_ context.Context, _ *svcmap.Void) (*pingResp, error) {
		return nil, svcmap.Error(http.StatusNotFound, "thing not found")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem svcmap.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, "thing not found", problem.Detail)
}

func TestErrors_plain_error_is_500(t *testing.T) {
	t.Parallel()

	r := svcmap.New()
	svcmap.Get(r, "/boom", func(_ context.Context, _ *svcmap.Void) (*pingResp, error) {
		return nil, errors.New("database gone")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem svcmap.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "database gone", problem.Detail)
}

func TestErrors_problem_detail_passthrough(t *testing.T) {
	t.Parallel()

	r := svcmap.New()
	svcmap.Get(r, "/conflict", func(_ context.Context, _ *svcmap.Void) (*pingResp, error) {
		return nil, &svcmap.ProblemDetail{
			Type:   "https://example.com/probs/conflict",
			Title:  "Conflict",
			Status: http.StatusConflict,
			Detail: "version mismatch",
		}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conflict", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var problem svcmap.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "https://example.com/probs/conflict", problem.Type)
	assert.Equal(t, "version mismatch", problem.Detail)
}

func TestErrors_error_status_helper(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadGateway, svcmap.ErrorStatus(svcmap.Error(http.StatusBadGateway, "upstream")))
	assert.Equal(t, http.StatusInternalServerError, svcmap.ErrorStatus(errors.New("plain")))

	wrapped := errors.Join(errors.New("context"), svcmap.Errorf(http.StatusForbidden, "no access for %s", "bob"))
	assert.Equal(t, http.StatusForbidden, svcmap.ErrorStatus(wrapped))
}

func TestErrors_custom_error_handler(t *testing.T) {
	t.Parallel()

	r := svcmap.New(svcmap.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("custom: " + err.Error()))
	}))
	svcmap.Get(r, "/fail", func(_ context.Context, _ *svcmap.Void) (*pingResp, error) {
		return nil, errors.New("nope")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "custom: nope", rec.Body.String())
}
