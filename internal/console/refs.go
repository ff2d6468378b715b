package console

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jimezsa/imsctl/internal/api"
	"github.com/jimezsa/imsctl/internal/schema"
)

// References maps entity names to id/label options.
type References map[string][]schema.Option

// Label returns the label of id in the options of entity, or "#id".
func (r References) Label(entity, id string) string {
	for _, opt := range r[entity] {
		if opt.Code == id {
			return opt.Label
		}
	}
	return "#" + id
}

// Has reports whether the options of entity were loaded.
func (r References) Has(entity string) bool {
	_, ok := r[entity]
	return ok
}

// loadReferences fetches the options of every named entity concurrently.
// In strict mode the first failure cancels the rest and is returned;
// otherwise failed entities are left out of the result.
func (c *Console) loadReferences(ctx context.Context, names []string, strict bool) (References, error) {
	refs := References{}
	if len(names) == 0 {
		return refs, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			e, err := c.Registry.Lookup(name)
			if err != nil {
				return err
			}
			opts, err := c.referenceOptions(gctx, e)
			if err != nil {
				if strict {
					return fmt.Errorf("load %s options: %w", e.Title, err)
				}
				c.Logger.Warn().Err(err).Str("entity", e.Name).Msg("reference options unavailable")
				return nil
			}
			mu.Lock()
			refs[e.Name] = opts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// referenceOptions walks the pages of e, up to the configured limit.
func (c *Console) referenceOptions(ctx context.Context, e *schema.Entity) ([]schema.Option, error) {
	col := c.Collection(e)
	var out []schema.Option
	for page := 0; page < c.refPages; page++ {
		result, err := col.List(ctx, api.Query{Page: page})
		if err != nil {
			return nil, err
		}
		for _, rec := range result.Items {
			id, ok := rec.ID(e.IDField)
			if !ok {
				continue
			}
			out = append(out, schema.Option{Code: id, Label: referenceLabel(e, rec, id)})
		}
		if page >= result.TotalPages-1 {
			break
		}
	}
	return out, nil
}

func referenceLabel(e *schema.Entity, rec schema.Record, id string) string {
	label := strings.TrimSpace(rec.String(e.LabelField))
	if label == "" || e.LabelField == e.IDField {
		return "#" + id
	}
	return label
}
