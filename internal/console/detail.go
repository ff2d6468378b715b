package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/imsctl/internal/api"
	"github.com/jimezsa/imsctl/internal/schema"
)

type DetailStatus int

const (
	DetailLoading DetailStatus = iota
	DetailLoaded
	DetailNotFound
)

func (s DetailStatus) String() string {
	switch s {
	case DetailLoaded:
		return "loaded"
	case DetailNotFound:
		return "not found"
	default:
		return "loading"
	}
}

// Row is one label/value pair of a detail view.
type Row struct {
	Field   string
	Label   string
	Value   string
	Section string
}

// Detail is the read-only view of one record.
type Detail struct {
	Entity  *schema.Entity
	Status  DetailStatus
	ID      string
	Record  schema.Record
	Rows    []Row
	Message string
}

func (d *Detail) CanEdit() bool {
	return d.Status == DetailLoaded && d.Entity.Can(schema.CapUpdate)
}

func (d *Detail) CanDelete() bool {
	return d.Status == DetailLoaded && d.Entity.Can(schema.CapDelete)
}

// OpenDetail loads id. A missing id or any fetch failure ends in
// DetailNotFound with a message. Reference fields show the referenced
// record's label when its collection loads and "#id" otherwise.
func (c *Console) OpenDetail(ctx context.Context, e *schema.Entity, id string) *Detail {
	d := &Detail{Entity: e, Status: DetailLoading, ID: strings.TrimSpace(id)}
	if d.ID == "" {
		d.Status = DetailNotFound
		d.Message = fmt.Sprintf("No %s id given.", e.Singular())
		return d
	}

	rec, err := c.Collection(e).Get(ctx, d.ID)
	if err != nil {
		d.Status = DetailNotFound
		switch {
		case errors.Is(err, api.ErrNotFound):
			d.Message = fmt.Sprintf("%s #%s was not found.", e.Title, d.ID)
		default:
			d.Message = fmt.Sprintf("Could not load %s #%s: %v", e.Singular(), d.ID, err)
		}
		c.Logger.Warn().Err(err).Str("entity", e.Name).Str("id", d.ID).Msg("detail load failed")
		return d
	}

	refs, _ := c.loadReferences(ctx, e.References(), false)
	d.Status = DetailLoaded
	d.Record = rec
	d.Rows = c.rows(e, rec, refs)
	return d
}

func (c *Console) rows(e *schema.Entity, rec schema.Record, refs References) []Row {
	rows := make([]Row, 0, len(e.Fields))
	for _, f := range e.Fields {
		value := schema.DisplayField(f, rec, c.Catalogs, c.Location)
		if f.Kind == schema.KindReference {
			if id, ok := rec.ID(f.Name); ok {
				value = refs.Label(f.Ref, id)
			}
		}
		rows = append(rows, Row{Field: f.Name, Label: f.Label, Value: value, Section: f.Section})
	}
	return rows
}
