// Package pipeline is the single path every backend call takes. It attaches
// the bearer token, tags the request, rate limits, classifies failures and
// logs each call exactly once on completion.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/seenimoa/bonosportal/internal/apierr"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// maxErrorPayload bounds how much of a failed response body is retained.
const maxErrorPayload = 64 << 10

// TokenSource supplies the current bearer token. An empty token means the
// request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Doer is the transport the pipeline wraps.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configure a Pipeline.
type Options struct {
	Timeout   time.Duration // applied to the default transport only
	RateLimit float64       // requests per second, 0 disables
	RateBurst int
}

// Pipeline wraps an HTTP transport with auth, logging and classification.
type Pipeline struct {
	doer    Doer
	tokens  TokenSource
	limiter *rate.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

// New builds a pipeline over http.Client. tokens may be nil.
func New(tokens TokenSource, log zerolog.Logger, opts Options) *Pipeline {
	return NewWithDoer(&http.Client{Timeout: opts.Timeout}, tokens, log, opts)
}

// NewWithDoer builds a pipeline over an arbitrary transport.
func NewWithDoer(doer Doer, tokens TokenSource, log zerolog.Logger, opts Options) *Pipeline {
	p := &Pipeline{
		doer:   doer,
		tokens: tokens,
		log:    log.With().Str("component", "pipeline").Logger(),
		now:    time.Now,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return p
}

// SetTokenSource replaces the token source. It exists for the session
// store, which is built on top of a pipeline and then becomes its source.
func (p *Pipeline) SetTokenSource(tokens TokenSource) {
	p.tokens = tokens
}

// Do sends req. A non-2xx status or transport failure comes back as an
// *apierr.Error; the response is then already closed. On success the caller
// owns the response body.
func (p *Pipeline) Do(ctx context.Context, req *http.Request) (resp *http.Response, err error) {
	req = req.WithContext(ctx)
	if p.tokens != nil {
		if tok := p.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	reqID := req.Header.Get(HeaderRequestID)
	if reqID == "" {
		reqID = uuid.NewString()
		req.Header.Set(HeaderRequestID, reqID)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := p.now()
	url := req.URL.String()
	log := p.log.With().Str("request_id", reqID).Str("method", req.Method).Str("url", url).Logger()
	log.Debug().Msg("request")

	defer func() {
		log.Debug().
			Dur("elapsed", p.now().Sub(start)).
			Bool("ok", err == nil).
			Msg("request finalized")
	}()

	if p.limiter != nil {
		if werr := p.limiter.Wait(ctx); werr != nil {
			return nil, p.fail(log, &apierr.Error{Class: apierr.Connectivity, Method: req.Method, URL: url, Err: werr})
		}
	}

	resp, err = p.doer.Do(req)
	if err != nil {
		return nil, p.fail(log, &apierr.Error{Class: apierr.Connectivity, Method: req.Method, URL: url, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorPayload))
		resp.Body.Close()
		return nil, p.fail(log, &apierr.Error{
			Class:   apierr.Classify(resp.StatusCode),
			Status:  resp.StatusCode,
			Method:  req.Method,
			URL:     url,
			Payload: payload,
			Message: backendMessage(payload),
		})
	}

	log.Info().
		Int("status", resp.StatusCode).
		Int64("elapsed_ms", p.now().Sub(start).Milliseconds()).
		Msg("request completed")
	return resp, nil
}

// fail logs the classified error at the level its class warrants.
func (p *Pipeline) fail(log zerolog.Logger, e *apierr.Error) error {
	var ev *zerolog.Event
	switch e.Class {
	case apierr.Connectivity:
		if errors.Is(e.Err, context.Canceled) {
			ev = log.Debug()
		} else {
			ev = log.Error()
		}
		ev = ev.Str("class", string(e.Class)).AnErr("cause", e.Err)
		ev.Msg("backend unreachable")
		return e
	case apierr.Server:
		ev = log.Error()
	default:
		ev = log.Warn()
	}
	ev.Str("class", string(e.Class)).Int("status", e.Status)
	if e.Message != "" {
		ev = ev.Str("backend_message", e.Message)
	}
	ev.Msg(failureMessage(e.Class))
	return e
}

func failureMessage(c apierr.Class) string {
	switch c {
	case apierr.Authentication:
		return "unauthorized: token missing, invalid or expired"
	case apierr.Authorization:
		return "forbidden: insufficient permissions"
	case apierr.NotFound:
		return "resource not found"
	case apierr.Server:
		return "backend server error"
	}
	return "request rejected"
}

// backendMessage extracts a human message from an error payload. The backend
// uses "message" and occasionally "error".
func backendMessage(payload []byte) string {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
