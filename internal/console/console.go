// Package console implements the list, form and detail views of the IMS
// administrative console on top of the API client. The web server and the
// CLI both drive these views.
package console

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/imsctl/internal/api"
	"github.com/jimezsa/imsctl/internal/schema"
)

const DefaultReferencePages = 20

type Options struct {
	Catalogs       schema.Catalogs
	Location       *time.Location
	Logger         zerolog.Logger
	ReferencePages int
}

// Console binds the entity registry to one API client.
type Console struct {
	Registry *schema.Registry
	Catalogs schema.Catalogs
	Location *time.Location
	Logger   zerolog.Logger

	client   *api.Client
	refPages int
}

func New(client *api.Client, reg *schema.Registry, opts Options) *Console {
	catalogs := opts.Catalogs
	if catalogs == nil {
		catalogs = schema.DefaultCatalogs()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	pages := opts.ReferencePages
	if pages <= 0 {
		pages = DefaultReferencePages
	}
	return &Console{
		Registry: reg,
		Catalogs: catalogs,
		Location: loc,
		Logger:   opts.Logger,
		client:   client,
		refPages: pages,
	}
}

func (c *Console) Client() *api.Client {
	return c.client
}

func (c *Console) Collection(e *schema.Entity) *api.Collection {
	return c.client.Collection(e)
}

// Entity resolves name and checks that the entity supports op.
func (c *Console) Entity(name string, op schema.Capability) (*schema.Entity, error) {
	e, err := c.Registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !e.Can(op) {
		return nil, fmt.Errorf("%s: %w", e.Name, schema.ErrUnsupported)
	}
	return e, nil
}

// Cells renders the list columns of rec.
func (c *Console) Cells(e *schema.Entity, rec schema.Record) []string {
	out := make([]string, 0, len(e.Columns))
	for _, col := range e.Columns {
		out = append(out, e.Display(col.Field, rec, c.Catalogs, c.Location))
	}
	return out
}

// StatusOptions returns the choices of the list status filter. Entities
// whose status is free text return nil.
func (c *Console) StatusOptions(e *schema.Entity) []schema.Option {
	if e.StatusCatalog != "" {
		return c.Catalogs.Get(e.StatusCatalog)
	}
	f, ok := e.Field(e.StatusField)
	if ok && f.Kind == schema.KindBool {
		return []schema.Option{
			{Code: "true", Label: f.TrueLabel},
			{Code: "false", Label: f.FalseLabel},
		}
	}
	return nil
}

// RecordLabel names rec for confirmations and titles.
func (c *Console) RecordLabel(e *schema.Entity, rec schema.Record, id string) string {
	return referenceLabel(e, rec, id)
}
