package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/bonosportal/internal/apierr"
)

type logLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Class   string `json:"class"`
	Status  int    `json:"status"`
}

func parseLogs(t *testing.T, buf *bytes.Buffer) []logLine {
	t.Helper()
	var lines []logLine
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var l logLine
		require.NoError(t, json.Unmarshal([]byte(raw), &l))
		lines = append(lines, l)
	}
	return lines
}

func countMessage(lines []logLine, msg string) int {
	n := 0
	for _, l := range lines {
		if l.Message == msg {
			n++
		}
	}
	return n
}

func newTestPipeline(tokens TokenSource) (*Pipeline, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := zerolog.New(buf).Level(zerolog.DebugLevel)
	return New(tokens, log, Options{}), buf
}

func get(t *testing.T, p *Pipeline, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return p.Do(context.Background(), req)
}

func TestDoAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(HeaderRequestID)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p, buf := newTestPipeline(TokenFunc(func() string { return "T1" }))
	resp, err := get(t, p, srv.URL+"/x")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer T1", gotAuth)
	assert.NotEmpty(t, gotID)

	lines := parseLogs(t, buf)
	assert.Equal(t, 1, countMessage(lines, "request completed"))
	assert.Equal(t, 1, countMessage(lines, "request finalized"))
}

func TestDoWithoutTokenSendsNoAuthorization(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
	}))
	defer srv.Close()

	p, _ := newTestPipeline(TokenFunc(func() string { return "" }))
	resp, err := get(t, p, srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, hadAuth)
}

func TestDoKeepsCallerRequestID(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(HeaderRequestID)
	}))
	defer srv.Close()

	p, _ := newTestPipeline(nil)
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set(HeaderRequestID, "fixed-id")
	resp, err := p.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "fixed-id", gotID)
}

func TestDoClassifiesFailures(t *testing.T) {
	tests := []struct {
		status int
		class  apierr.Class
		level  string
		target error
	}{
		{http.StatusUnauthorized, apierr.Authentication, "warn", apierr.ErrAuthentication},
		{http.StatusForbidden, apierr.Authorization, "warn", apierr.ErrAuthorization},
		{http.StatusNotFound, apierr.NotFound, "warn", apierr.ErrNotFound},
		{http.StatusInternalServerError, apierr.Server, "error", apierr.ErrServer},
		{http.StatusBadGateway, apierr.Server, "error", apierr.ErrServer},
		{http.StatusBadRequest, apierr.Client, "warn", nil},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"detalle del backend"}`))
			}))
			defer srv.Close()

			p, buf := newTestPipeline(nil)
			resp, err := get(t, p, srv.URL)
			require.Error(t, err)
			assert.Nil(t, resp)

			var apiErr *apierr.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.class, apiErr.Class)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "detalle del backend", apiErr.Message)
			assert.JSONEq(t, `{"message":"detalle del backend"}`, string(apiErr.Payload))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}

			lines := parseLogs(t, buf)
			var classified *logLine
			for i := range lines {
				if lines[i].Class != "" {
					classified = &lines[i]
				}
			}
			require.NotNil(t, classified)
			assert.Equal(t, tt.level, classified.Level)
			assert.Equal(t, tt.status, classified.Status)
			assert.Equal(t, 0, countMessage(lines, "request completed"))
			assert.Equal(t, 1, countMessage(lines, "request finalized"))
		})
	}
}

func TestDoConnectivityFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p, buf := newTestPipeline(nil)
	_, err := get(t, p, url)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrConnectivity)
	assert.Equal(t, apierr.Connectivity, apierr.ClassOf(err))

	lines := parseLogs(t, buf)
	assert.Equal(t, 1, countMessage(lines, "backend unreachable"))
	for _, l := range lines {
		if l.Message == "backend unreachable" {
			assert.Equal(t, "error", l.Level)
		}
	}
	assert.Equal(t, 1, countMessage(lines, "request finalized"))
}

type stubDoer struct {
	status int
	body   string
}

func (s stubDoer) Do(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     http.Header{},
	}, nil
}

func TestDoSuccessBodyOwnedByCaller(t *testing.T) {
	p := NewWithDoer(stubDoer{status: 201, body: `{"id":7}`}, nil, zerolog.Nop(), Options{})
	req, _ := http.NewRequest(http.MethodPost, "http://backend/api", nil)
	resp, err := p.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"id":7}`, string(data))
}

func TestDoRateLimitHonoursCancelledContext(t *testing.T) {
	p := NewWithDoer(stubDoer{status: 200}, nil, zerolog.Nop(), Options{RateLimit: 0.001, RateBurst: 1})
	req, _ := http.NewRequest(http.MethodGet, "http://backend/api", nil)

	resp, err := p.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Do(ctx, req)
	assert.ErrorIs(t, err, apierr.ErrConnectivity)
}

func TestBackendMessage(t *testing.T) {
	assert.Equal(t, "m", backendMessage([]byte(`{"message":"m"}`)))
	assert.Equal(t, "e", backendMessage([]byte(`{"error":"e"}`)))
	assert.Equal(t, "", backendMessage([]byte(`<html>`)))
	assert.Equal(t, "", backendMessage(nil))
}
