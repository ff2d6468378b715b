package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"

	"github.com/jimezsa/imsctl/internal/schema"
)

const maxBodyBytes = 8 << 20

// Doer is satisfied by *network.Client.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

type Options struct {
	BaseURL string
	Token   string
	Logger  zerolog.Logger
}

// Client talks to the IMS API rooted at a base URL.
type Client struct {
	doer   Doer
	base   *url.URL
	token  string
	logger zerolog.Logger
}

func NewClient(doer Doer, opts Options) (*Client, error) {
	if doer == nil {
		return nil, fmt.Errorf("api: nil doer")
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", opts.BaseURL)
	}
	return &Client{
		doer:   doer,
		base:   base,
		token:  strings.TrimSpace(opts.Token),
		logger: opts.Logger,
	}, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Collection binds the client to one entity.
func (c *Client) Collection(e *schema.Entity) *Collection {
	return &Collection{client: c, entity: e}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) send(ctx context.Context, method, target string, body io.Reader, contentType string) (response, error) {
	req, err := fhttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, &NetworkError{Method: method, URL: target, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug().Str("method", method).Str("url", target).Dur("duration", time.Since(started)).Err(err).Msg("api request failed")
		return response{}, &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger.Debug().Str("method", method).Str("url", target).Int("status", resp.StatusCode).Dur("duration", time.Since(started)).Msg("api request")
	if err != nil {
		return response{}, &NetworkError{Method: method, URL: target, Err: err}
	}
	return response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) sendJSON(ctx context.Context, method, target string, payload any) (response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return response{}, fmt.Errorf("encode %s payload: %w", method, err)
	}
	return c.send(ctx, method, target, bytes.NewReader(data), "application/json")
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func snippet(data []byte) string {
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
