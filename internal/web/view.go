package web

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/schema"
)

var funcs = template.FuncMap{
	"inputType": inputType,
}

func inputType(k schema.Kind) string {
	switch k {
	case schema.KindEmail:
		return "email"
	case schema.KindNumber:
		return "number"
	case schema.KindDate:
		return "date"
	case schema.KindDateTime:
		return "datetime-local"
	default:
		return "text"
	}
}

type navItem struct {
	Label  string
	Href   string
	Active bool
}

// Page is the data shared by every page. Title and the active navigation
// item come from the route that renders the page.
type Page struct {
	Title     string
	Nav       []navItem
	Notices   []console.Notice
	RequestID string
}

func (s *Server) page(c *gin.Context, active, title string, notices ...console.Notice) Page {
	nav := make([]navItem, 0, len(s.console.Registry.Entities()))
	for _, e := range s.console.Registry.Entities() {
		nav = append(nav, navItem{Label: e.Title, Href: entityHome(e), Active: e.Name == active})
	}
	all := popFlash(c)
	all = append(all, notices...)
	return Page{
		Title:     title,
		Nav:       nav,
		Notices:   all,
		RequestID: c.GetString(ctxRequestID),
	}
}

// entityHome is the navigation target of e: its list, or its create form
// when the API cannot list it.
func entityHome(e *schema.Entity) string {
	if e.Can(schema.CapList) {
		return "/" + e.Path
	}
	return "/" + e.Path + "/create"
}

func listHref(e *schema.Entity, page int, f console.Filter) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if len(q) == 0 {
		return "/" + e.Path
	}
	return "/" + e.Path + "?" + q.Encode()
}

func recordHref(e *schema.Entity, action, id string) string {
	return "/" + e.Path + "/" + action + "?id=" + url.QueryEscape(id)
}

type homeView struct {
	Page
	Entities []homeCard
}

type homeCard struct {
	Title string
	Href  string
	Caps  string
}

type listRow struct {
	ID         string
	Cells      []string
	DetailHref string
	EditHref   string
	DeleteHref string
}

type listView struct {
	Page
	Entity        *schema.Entity
	Headers       []string
	Rows          []listRow
	Filter        console.Filter
	StatusOptions []schema.Option
	PageNumber    int
	TotalPages    int
	PrevHref      string
	NextHref      string
	CreateHref    string
	Error         string
}

type formSection struct {
	Title  string
	Fields []schema.Field
}

type formView struct {
	Page
	Entity    *schema.Entity
	Form      *console.Form
	Sections  []formSection
	Action    string
	Multipart bool
	CancelURL string
}

type detailView struct {
	Page
	Entity   *schema.Entity
	Detail   *console.Detail
	Sections []detailSection
	EditHref string
	BackHref string
}

type detailSection struct {
	Title string
	Rows  []console.Row
}

type confirmView struct {
	Page
	Entity   *schema.Entity
	ID       string
	Label    string
	Action   string
	ListPage int
	Filter   console.Filter
	BackHref string
}

type errorView struct {
	Page
	Status  int
	Message string
}

func sections(fields []schema.Field) []formSection {
	var out []formSection
	for _, f := range fields {
		if n := len(out); n > 0 && out[n-1].Title == f.Section {
			out[n-1].Fields = append(out[n-1].Fields, f)
			continue
		}
		out = append(out, formSection{Title: f.Section, Fields: []schema.Field{f}})
	}
	return out
}

func detailSections(rows []console.Row) []detailSection {
	var out []detailSection
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Title == r.Section {
			out[n-1].Rows = append(out[n-1].Rows, r)
			continue
		}
		out = append(out, detailSection{Title: r.Section, Rows: []console.Row{r}})
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
