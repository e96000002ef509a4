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

type signupReq struct {
	Plan string `query:"plan" json:"plan" enum:"free,pro,team"`
	Body struct {
		Email string `json:"email" required:"true" pattern:"@"`
		Name  string `json:"name" minlen:"2" maxlen:"50"`
		Age   int    `json:"age" min:"13" max:"120"`
	}
}

func newSignupRouter() *svcmap.Router {
	r := svcmap.New()
	svcmap.Post(r, "/signup", func(_ context.Context, req *signupReq) (*pingResp, error) {
		return &pingResp{Message: req.Body.Email}, nil
	})
	return r
}

func postSignup(t *testing.T, body map[string]any, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/signup"+query, jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newSignupRouter().ServeHTTP(rec, req)
	return rec
}

func TestValidate_constraints_pass(t *testing.T) {
	t.Parallel()

	rec := postSignup(t, map[string]any{"email": "a@b.co", "name": "Ann", "age": 30}, "?plan=pro")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestValidate_constraint_violations_reported_per_field(t *testing.T) {
	t.Parallel()

	rec := postSignup(t, map[string]any{"name": "A", "age": 7}, "?plan=enterprise")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem svcmap.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "Validation Failed", problem.Title)

	fields := make([]string, 0, len(problem.Errors))
	for _, ve := range problem.Errors {
		fields = append(fields, ve.Field)
	}
	assert.ElementsMatch(t, []string{"plan", "body.email", "body.name", "body.age"}, fields)
}

func TestValidate_enum_constraint(t *testing.T) {
	t.Parallel()

	rec := postSignup(t, map[string]any{"email": "a@b.co"}, "?plan=gold")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem svcmap.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "plan", problem.Errors[0].Field)
	assert.Contains(t, problem.Errors[0].Message, "one of")
}

type selfChecked struct {
	Body struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}
}

func (s *selfChecked) Validate() error {
	if s.Body.End < s.Body.Start {
		return svcmap.Error(http.StatusUnprocessableEntity, "end before start")
	}
	return nil
}

func TestValidate_self_validator(t *testing.T) {
	t.Parallel()

	r := svcmap.New()
	svcmap.Post(r, "/ranges", func(_ context.Context, req *selfChecked) (*pingResp, error) {
		return &pingResp{Message: "ok"}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/ranges", jsonBody(t, map[string]int{"start": 9, "end": 3}))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "end before start")
}

type rejectAll struct{}

func (rejectAll) Validate(any) error { return errors.New("rejected by policy") }

func TestValidate_router_level_validator(t *testing.T) {
	t.Parallel()

	r := svcmap.New(svcmap.WithValidator(rejectAll{}))
	svcmap.Get(r, "/anything", func(_ context.Context, _ *svcmap.Void) (*pingResp, error) {
		return &pingResp{}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected by policy")
}
