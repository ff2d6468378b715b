package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/jimezsa/imsctl/internal/schema"
)

// Query selects one page of a collection.
type Query struct {
	Page   int
	Search string
	Status string
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if s := strings.TrimSpace(q.Status); s != "" {
		v.Set("status", s)
	}
	return v
}

// Page is one page of records as returned by the API.
type Page struct {
	Items      []schema.Record
	TotalPages int
	Page       int
}

type pageBody struct {
	Content    []schema.Record `json:"content"`
	TotalPages int             `json:"totalPages"`
}

// Collection performs CRUD calls for one entity.
type Collection struct {
	client *Client
	entity *schema.Entity
}

func (c *Collection) Entity() *schema.Entity {
	return c.entity
}

func (c *Collection) unsupported(op string) error {
	return fmt.Errorf("%s %s: %w", op, c.entity.Name, schema.ErrUnsupported)
}

func (c *Collection) List(ctx context.Context, q Query) (Page, error) {
	if !c.entity.Can(schema.CapList) {
		return Page{}, c.unsupported("list")
	}
	if q.Page < 0 {
		q.Page = 0
	}
	target := c.client.endpoint(c.entity.Path, q.values())
	resp, err := c.client.send(ctx, fhttp.MethodGet, target, nil, "")
	if err != nil {
		return Page{}, err
	}
	if !resp.ok() {
		return Page{}, &FetchError{Method: fhttp.MethodGet, URL: target, StatusCode: resp.status, Body: snippet(resp.body)}
	}

	var body pageBody
	if err := decode(resp.body, &body); err != nil {
		return Page{}, &FetchError{Method: fhttp.MethodGet, URL: target, StatusCode: resp.status, Err: fmt.Errorf("decode page: %w", err)}
	}
	if body.TotalPages < 0 {
		body.TotalPages = 0
	}
	return Page{Items: body.Content, TotalPages: body.TotalPages, Page: q.Page}, nil
}

func (c *Collection) Get(ctx context.Context, id string) (schema.Record, error) {
	if !c.entity.Can(schema.CapGet) {
		return nil, c.unsupported("get")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("get %s: %w", c.entity.Name, ErrNotFound)
	}
	target := c.client.endpoint(c.entity.Path+"/"+url.PathEscape(id), nil)
	resp, err := c.client.send(ctx, fhttp.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &FetchError{Method: fhttp.MethodGet, URL: target, StatusCode: resp.status, Body: snippet(resp.body)}
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil, fmt.Errorf("get %s %s: %w", c.entity.Name, id, ErrNotFound)
	}

	var rec schema.Record
	if err := decode(resp.body, &rec); err != nil {
		return nil, &FetchError{Method: fhttp.MethodGet, URL: target, StatusCode: resp.status, Err: fmt.Errorf("decode record: %w", err)}
	}
	if rec == nil {
		return nil, fmt.Errorf("get %s %s: %w", c.entity.Name, id, ErrNotFound)
	}
	return rec, nil
}

// Find is Get that swallows failures: it returns nil and logs a warning.
func (c *Collection) Find(ctx context.Context, id string) schema.Record {
	rec, err := c.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.client.logger.Warn().Err(err).Str("entity", c.entity.Name).Str("id", id).Msg("find failed")
		}
		return nil
	}
	return rec
}

// Create posts payload and returns the stored record when the API echoes
// one back.
func (c *Collection) Create(ctx context.Context, payload map[string]any) (schema.Record, error) {
	if !c.entity.Can(schema.CapCreate) {
		return nil, c.unsupported("create")
	}
	target := c.client.endpoint(c.entity.Path, nil)
	resp, err := c.client.sendJSON(ctx, fhttp.MethodPost, target, payload)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &SubmitError{Method: fhttp.MethodPost, URL: target, StatusCode: resp.status, Body: snippet(resp.body)}
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return nil, nil
	}
	var rec schema.Record
	if err := decode(resp.body, &rec); err != nil {
		// The write succeeded; a non-record body is not an error.
		c.client.logger.Debug().Err(err).Str("entity", c.entity.Name).Msg("create response is not a record")
		return nil, nil
	}
	return rec, nil
}

func (c *Collection) Update(ctx context.Context, id string, payload map[string]any) error {
	if !c.entity.Can(schema.CapUpdate) {
		return c.unsupported("update")
	}
	target := c.client.endpoint(c.entity.UpdateURLPath(url.PathEscape(strings.TrimSpace(id))), nil)
	resp, err := c.client.sendJSON(ctx, fhttp.MethodPut, target, payload)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &SubmitError{Method: fhttp.MethodPut, URL: target, StatusCode: resp.status, Body: snippet(resp.body)}
	}
	return nil
}

func (c *Collection) Remove(ctx context.Context, id string) error {
	if !c.entity.Can(schema.CapDelete) {
		return c.unsupported("delete")
	}
	target := c.client.endpoint(c.entity.Path+"/"+url.PathEscape(strings.TrimSpace(id)), nil)
	resp, err := c.client.send(ctx, fhttp.MethodDelete, target, nil, "")
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &SubmitError{Method: fhttp.MethodDelete, URL: target, StatusCode: resp.status, Body: snippet(resp.body)}
	}
	return nil
}
