package svcmap_test

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/svcmap/svcmap"
)

type greeting struct {
	XMLName xml.Name `json:"-" xml:"greeting" yaml:"-"`
	Message string   `json:"message" xml:"message" yaml:"message"`
}

func newGreetRouter(opts ...svcmap.RouteOption) *svcmap.Router {
	r := svcmap.New()
	svcmap.Get(r, "/greet", func(_ context.Context, _ *svcmap.Void) (*greeting, error) {
		return &greeting{Message: "hello"}, nil
	}, opts...)
	return r
}

func doGreet(t *testing.T, r *svcmap.Router, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/greet", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNegotiate_json_is_default(t *testing.T) {
	t.Parallel()

	rec := doGreet(t, newGreetRouter(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body greeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hello", body.Message)
}

func TestNegotiate_xml_via_accept(t *testing.T) {
	t.Parallel()

	rec := doGreet(t, newGreetRouter(), map[string]string{"Accept": "application/xml"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))

	var body greeting
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hello", body.Message)
}

func TestNegotiate_yaml_via_accept(t *testing.T) {
	t.Parallel()

	rec := doGreet(t, newGreetRouter(), map[string]string{"Accept": "application/yaml"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var body struct {
		Message string `yaml:"message"`
	}
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hello", body.Message)
}

func TestNegotiate_q_values_pick_best(t *testing.T) {
	t.Parallel()

	rec := doGreet(t, newGreetRouter(), map[string]string{
		"Accept": "application/json;q=0.2, application/xml;q=0.9",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
}

func TestNegotiate_q_zero_excludes(t *testing.T) {
	t.Parallel()

	rec := doGreet(t, newGreetRouter(), map[string]string{
		"Accept": "application/json;q=0, application/xml",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
}

func TestNegotiate_wildcard_uses_default(t *testing.T) {
	t.Parallel()

	rec := doGreet(t, newGreetRouter(), map[string]string{"Accept": "*/*"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestNegotiate_unsupported_accept_is_406(t *testing.T) {
	t.Parallel()

	rec := doGreet(t, newGreetRouter(), map[string]string{"Accept": "text/html"})

	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestNegotiate_produces_narrows_offers(t *testing.T) {
	t.Parallel()

	r := newGreetRouter(svcmap.Produces("application/xml"))

	// Default representation becomes the declared one.
	rec := doGreet(t, r, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))

	// JSON is no longer offered.
	rec = doGreet(t, r, map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestNegotiate_language_match(t *testing.T) {
	t.Parallel()

	r := newGreetRouter(svcmap.Languages("en", "de", "fr"))

	rec := doGreet(t, r, map[string]string{"Accept-Language": "de-CH, fr;q=0.8"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "de", rec.Header().Get("Content-Language"))
}

func TestNegotiate_language_default_is_first_declared(t *testing.T) {
	t.Parallel()

	r := newGreetRouter(svcmap.Languages("en", "de"))

	rec := doGreet(t, r, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
}

func TestNegotiate_language_no_match_is_406(t *testing.T) {
	t.Parallel()

	r := newGreetRouter(svcmap.Languages("en", "de"))

	rec := doGreet(t, r, map[string]string{"Accept-Language": "zh"})

	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestNegotiate_language_exposed_to_handler(t *testing.T) {
	t.Parallel()

	r := svcmap.New()
	svcmap.Get(r, "/lang", func(ctx context.Context, _ *svcmap.Void) (*pingResp, error) {
		return &pingResp{Message: svcmap.LanguageFrom(ctx)}, nil
	}, svcmap.Languages("en", "fr"))

	req := httptest.NewRequest(http.MethodGet, "/lang", nil)
	req.Header.Set("Accept-Language", "fr-CA")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fr")
}

func TestNegotiate_consumes_rejects_other_media(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name" xml:"name"`
	}

	r := svcmap.New()
	svcmap.Post(r, "/ingest", func(_ context.Context, in *payload) (*payload, error) {
		return in, nil
	}, svcmap.Consumes("application/json"))

	req := httptest.NewRequest(http.MethodPost, "/ingest", strReader("<payload><name>x</name></payload>"))
	req.Header.Set("Content-Type", "application/xml")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestNegotiate_unknown_body_media_is_415(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	r := svcmap.New()
	svcmap.Post(r, "/ingest", func(_ context.Context, in *payload) (*payload, error) {
		return in, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/ingest", strReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

type csvEncoder struct{}

func (csvEncoder) ContentType() string { return "text/csv" }

func (csvEncoder) Encode(w io.Writer, v any) error {
	g, ok := v.(*greeting)
	if !ok {
		return errors.New("csv encoder only handles greetings")
	}
	_, err := io.WriteString(w, "message\n"+g.Message+"\n")
	return err
}

func TestNegotiate_user_registered_encoder(t *testing.T) {
	t.Parallel()

	r := svcmap.New(svcmap.WithEncoder(csvEncoder{}))
	svcmap.Get(r, "/greet", func(_ context.Context, _ *svcmap.Void) (*greeting, error) {
		return &greeting{Message: "hello"}, nil
	})

	rec := doGreet(t, r, map[string]string{"Accept": "text/csv"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "message\nhello")
}

func TestNegotiate_xml_request_body(t *testing.T) {
	t.Parallel()

	type payload struct {
		XMLName xml.Name `json:"-" xml:"payload"`
		Name    string   `json:"name" xml:"name"`
	}

	r := svcmap.New()
	svcmap.Post(r, "/ingest", func(_ context.Context, in *payload) (*payload, error) {
		return in, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/ingest", strReader("<payload><name>from-xml</name></payload>"))
	req.Header.Set("Content-Type", "application/xml")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "from-xml")
}
