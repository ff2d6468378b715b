package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jimezsa/imsctl/internal/api"
	"github.com/jimezsa/imsctl/internal/schema"
)

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrStale          = errors.New("stale response dropped")
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Filter narrows a list. Both parts are optional.
type Filter struct {
	Search string
	Status string
}

func (f Filter) normalized() Filter {
	return Filter{Search: strings.TrimSpace(f.Search), Status: strings.TrimSpace(f.Status)}
}

// Snapshot is a consistent copy of a list's state.
type Snapshot struct {
	Entity     *schema.Entity
	Status     Status
	Page       int
	TotalPages int
	Items      []schema.Record
	Filter     Filter
	// Hidden counts records of the page the API returned although they do
	// not match Filter. Page counts still come from the API.
	Hidden int
	Err    error
}

func (s Snapshot) HasPrev() bool {
	return s.Page > 0
}

func (s Snapshot) HasNext() bool {
	return s.TotalPages > 0 && s.Page < s.TotalPages-1
}

// HiddenNotice describes records the filter guard removed from the page.
func (s Snapshot) HiddenNotice() (Notice, bool) {
	if s.Hidden == 0 {
		return Notice{}, false
	}
	return Warning(fmt.Sprintf("%d records on this page did not match the filter and are hidden; page counts come from the server.", s.Hidden)), true
}

func (s Snapshot) CanDelete() bool {
	return s.Entity.Can(schema.CapDelete)
}

// List is the paginated list view of one entity. Each load cancels the one
// in flight; responses of superseded loads are dropped with ErrStale.
type List struct {
	console *Console
	entity  *schema.Entity
	col     *api.Collection

	mu         sync.Mutex
	status     Status
	page       int
	totalPages int
	items      []schema.Record
	filter     Filter
	hidden     int
	err        error
	gen        uint64
	cancel     context.CancelFunc
}

func (c *Console) NewList(e *schema.Entity) (*List, error) {
	if !e.Can(schema.CapList) {
		return nil, fmt.Errorf("list %s: %w", e.Name, schema.ErrUnsupported)
	}
	return &List{console: c, entity: e, col: c.Collection(e)}, nil
}

func (l *List) Entity() *schema.Entity {
	return l.entity
}

func (l *List) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Entity:     l.entity,
		Status:     l.status,
		Page:       l.page,
		TotalPages: l.totalPages,
		Items:      append([]schema.Record(nil), l.items...),
		Filter:     l.filter,
		Hidden:     l.hidden,
		Err:        l.err,
	}
}

// Load fetches page with the current filter.
func (l *List) Load(ctx context.Context, page int) error {
	l.mu.Lock()
	filter := l.filter
	l.mu.Unlock()
	return l.load(ctx, page, filter)
}

// Reload fetches the current page again.
func (l *List) Reload(ctx context.Context) error {
	snap := l.Snapshot()
	return l.load(ctx, snap.Page, snap.Filter)
}

func (l *List) Next(ctx context.Context) error {
	snap := l.Snapshot()
	if snap.Status != StatusLoaded || !snap.HasNext() {
		return ErrPageOutOfRange
	}
	return l.load(ctx, snap.Page+1, snap.Filter)
}

func (l *List) Prev(ctx context.Context) error {
	snap := l.Snapshot()
	if snap.Status != StatusLoaded || !snap.HasPrev() {
		return ErrPageOutOfRange
	}
	return l.load(ctx, snap.Page-1, snap.Filter)
}

// Goto loads page with filter in one step.
func (l *List) Goto(ctx context.Context, page int, f Filter) error {
	return l.load(ctx, page, f)
}

// SetFilter replaces the filter and loads its first page.
func (l *List) SetFilter(ctx context.Context, f Filter) error {
	return l.load(ctx, 0, f)
}

// Delete removes id, reloads the current page and steps back one page when
// the current page came back empty.
func (l *List) Delete(ctx context.Context, id string) error {
	if !l.entity.Can(schema.CapDelete) {
		return fmt.Errorf("delete %s: %w", l.entity.Name, schema.ErrUnsupported)
	}
	if err := l.col.Remove(ctx, id); err != nil {
		return err
	}
	l.console.Logger.Info().Str("entity", l.entity.Name).Str("id", id).Msg("record deleted")

	if err := l.Reload(ctx); err != nil {
		return err
	}
	snap := l.Snapshot()
	if len(snap.Items) > 0 || snap.Page == 0 {
		return nil
	}
	return l.load(ctx, stepBack(snap.Page, snap.TotalPages), snap.Filter)
}

func stepBack(page, totalPages int) int {
	target := page - 1
	if last := totalPages - 1; last < target {
		target = last
	}
	if target < 0 {
		target = 0
	}
	return target
}

func (l *List) load(ctx context.Context, page int, filter Filter) error {
	if page < 0 {
		return ErrPageOutOfRange
	}
	filter = filter.normalized()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.status = StatusLoading
	l.mu.Unlock()
	defer cancel()

	result, err := l.col.List(ctx, api.Query{Page: page, Search: filter.Search, Status: filter.Status})

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return ErrStale
	}
	l.cancel = nil
	if err != nil {
		l.status = StatusFailed
		l.err = err
		return err
	}
	l.status = StatusLoaded
	l.err = nil
	l.page = result.Page
	l.totalPages = result.TotalPages
	l.filter = filter
	l.items = l.guard(result.Items, filter)
	l.hidden = len(result.Items) - len(l.items)
	return nil
}

// guard drops records the API returned although they do not match filter.
func (l *List) guard(items []schema.Record, filter Filter) []schema.Record {
	if filter.Search == "" && filter.Status == "" {
		return items
	}
	needle := strings.ToLower(filter.Search)
	out := make([]schema.Record, 0, len(items))
	for _, rec := range items {
		if filter.Status != "" && l.entity.StatusField != "" &&
			!strings.EqualFold(strings.TrimSpace(rec.String(l.entity.StatusField)), filter.Status) {
			continue
		}
		if needle != "" && len(l.entity.SearchFields) > 0 && !matchesAny(rec, l.entity.SearchFields, needle) {
			continue
		}
		out = append(out, rec)
	}
	if dropped := len(items) - len(out); dropped > 0 {
		l.console.Logger.Warn().Str("entity", l.entity.Name).Int("dropped", dropped).Int("returned", len(items)).
			Msg("api ignored list filter; page shows fewer records")
	}
	return out
}

func matchesAny(rec schema.Record, fields []string, needle string) bool {
	for _, name := range fields {
		if strings.Contains(strings.ToLower(rec.String(name)), needle) {
			return true
		}
	}
	return false
}
