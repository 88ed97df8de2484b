// Package httpapi implements the repository ports over the financial
// backend's JSON HTTP API. Every call goes through the request pipeline;
// adapters only build requests and normalize responses.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/bonosportal/internal/apierr"
)

// Requester sends a request through the pipeline. *pipeline.Pipeline
// satisfies it.
type Requester interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client holds the backend base URL and the pipeline shared by all adapters.
type Client struct {
	baseURL string
	pipe    Requester
	log     zerolog.Logger
}

// NewClient creates a client rooted at baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string, pipe Requester, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		pipe:    pipe,
		log:     log.With().Str("component", "httpapi").Logger(),
	}
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// --- Query parameters ---

// Param is an optional numeric query parameter. A nil Value means the
// caller did not provide it.
type Param struct {
	Name  string
	Value *float64
}

// Opt builds a Param from an optional value.
func Opt(name string, v *float64) Param { return Param{Name: name, Value: v} }

// Req builds a Param from a required value.
func Req(name string, v float64) Param { return Param{Name: name, Value: &v} }

// Pair is a query parameter that will be sent.
type Pair struct {
	Name  string
	Value string
}

// TextPairs is QueryPairs for text parameters given as name, value
// alternately. Blank values contribute nothing.
func TextPairs(nameValues ...string) []Pair {
	var pairs []Pair
	for i := 0; i+1 < len(nameValues); i += 2 {
		v := strings.TrimSpace(nameValues[i+1])
		if v == "" {
			continue
		}
		pairs = append(pairs, Pair{Name: nameValues[i], Value: v})
	}
	return pairs
}

// QueryPairs returns the pairs to send, in order. Params without a value
// contribute nothing; no pair is ever empty or defaulted.
func QueryPairs(params ...Param) []Pair {
	var pairs []Pair
	for _, p := range params {
		if p.Value == nil {
			continue
		}
		pairs = append(pairs, Pair{Name: p.Name, Value: strconv.FormatFloat(*p.Value, 'f', -1, 64)})
	}
	return pairs
}

// Encode renders pairs as a query string without a leading '?'.
func Encode(pairs []Pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// --- Request helpers ---

func (c *Client) endpoint(path string, pairs []Pair) string {
	u := c.baseURL + path
	if q := Encode(pairs); q != "" {
		u += "?" + q
	}
	return u
}

// call sends a request and decodes the JSON response into out. body and
// out may be nil.
func (c *Client) call(ctx context.Context, method, path string, pairs []Pair, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.endpoint(path, pairs), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.pipe.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apierr.Error{Class: apierr.Connectivity, Status: resp.StatusCode, Method: method, URL: req.URL.String(), Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.Error().Str("path", path).Err(err).Msg("unexpected response shape")
		return &apierr.DataShapeError{What: method + " " + path, Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, pairs []Pair, out any) error {
	return c.call(ctx, http.MethodGet, path, pairs, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}
