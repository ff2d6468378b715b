package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/schema"
)

func (s *Server) home(c *gin.Context) {
	var cards []homeCard
	for _, e := range s.console.Registry.Entities() {
		cards = append(cards, homeCard{Title: e.Title, Href: entityHome(e), Caps: capsText(e)})
	}
	c.HTML(http.StatusOK, "home.html", homeView{
		Page:     s.page(c, "", "Dashboard"),
		Entities: cards,
	})
}

func capsText(e *schema.Entity) string {
	var parts []string
	for _, item := range []struct {
		op   schema.Capability
		name string
	}{
		{schema.CapList, "list"},
		{schema.CapGet, "view"},
		{schema.CapCreate, "create"},
		{schema.CapUpdate, "edit"},
		{schema.CapDelete, "delete"},
	} {
		if e.Can(item.op) {
			parts = append(parts, item.name)
		}
	}
	return strings.Join(parts, ", ")
}

func pageParam(c *gin.Context, key string) int {
	page, err := strconv.Atoi(c.Query(key))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func filterParams(get func(string) string) console.Filter {
	return console.Filter{
		Search: strings.TrimSpace(get("search")),
		Status: strings.TrimSpace(get("status")),
	}
}

func (s *Server) list(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.console.NewList(e)
		if err != nil {
			s.renderError(c, http.StatusNotFound, e.Name, err.Error())
			return
		}
		filter := filterParams(c.Query)
		view := listView{
			Entity:        e,
			Filter:        filter,
			StatusOptions: s.console.StatusOptions(e),
		}
		if e.Can(schema.CapCreate) {
			view.CreateHref = "/" + e.Path + "/create"
		}
		for _, col := range e.Columns {
			view.Headers = append(view.Headers, col.Label)
		}

		status := http.StatusOK
		var notices []console.Notice
		page := pageParam(c, "page")
		if err := list.Goto(c.Request.Context(), page, filter); err != nil {
			status = http.StatusBadGateway
			view.Error = fmt.Sprintf("Could not load %s: %v", strings.ToLower(e.Title), err)
			notices = append(notices, console.Failure(view.Error))
		}

		snap := list.Snapshot()
		if last := max(snap.TotalPages-1, 0); snap.Status == console.StatusLoaded && page > last {
			c.Redirect(http.StatusSeeOther, listHref(e, last, snap.Filter))
			return
		}
		if n, ok := snap.HiddenNotice(); ok {
			notices = append(notices, n)
		}
		view.PageNumber = snap.Page + 1
		view.TotalPages = snap.TotalPages
		if snap.Status == console.StatusLoaded {
			if snap.HasPrev() {
				view.PrevHref = listHref(e, snap.Page-1, snap.Filter)
			}
			if snap.HasNext() {
				view.NextHref = listHref(e, snap.Page+1, snap.Filter)
			}
		}
		for _, rec := range snap.Items {
			id, _ := rec.ID(e.IDField)
			row := listRow{ID: id, Cells: s.console.Cells(e, rec)}
			if id != "" {
				if e.Can(schema.CapGet) {
					row.DetailHref = recordHref(e, "details", id)
				}
				if e.Can(schema.CapUpdate) {
					row.EditHref = recordHref(e, "edit", id)
				}
				if e.Can(schema.CapDelete) {
					row.DeleteHref = deleteHref(e, id, snap.Page, snap.Filter)
				}
			}
			view.Rows = append(view.Rows, row)
		}

		view.Page = s.page(c, e.Name, e.Title, notices...)
		c.HTML(status, "list.html", view)
	}
}

func deleteHref(e *schema.Entity, id string, page int, f console.Filter) string {
	href := recordHref(e, "delete", id) + "&page=" + strconv.Itoa(page)
	if f.Search != "" || f.Status != "" {
		rest := listHref(e, 0, f)
		href += "&" + rest[strings.Index(rest, "?")+1:]
	}
	return href
}

func (s *Server) createForm(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := s.console.OpenForm(c.Request.Context(), e, "")
		if err != nil {
			s.renderFormError(c, e, err)
			return
		}
		s.renderForm(c, http.StatusOK, e, f, "/"+e.Path+"/create")
	}
}

func (s *Server) editForm(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Query("id"))
		if id == "" {
			s.renderError(c, http.StatusNotFound, e.Name, fmt.Sprintf("No %s id given.", e.Singular()))
			return
		}
		f, err := s.console.OpenForm(c.Request.Context(), e, id)
		if err != nil {
			s.renderFormError(c, e, err)
			return
		}
		s.renderForm(c, http.StatusOK, e, f, recordHref(e, "edit", id))
	}
}

func (s *Server) createSubmit(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.submit(c, e, "")
	}
}

func (s *Server) editSubmit(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Query("id"))
		if id == "" {
			s.renderError(c, http.StatusNotFound, e.Name, fmt.Sprintf("No %s id given.", e.Singular()))
			return
		}
		s.submit(c, e, id)
	}
}

func (s *Server) submit(c *gin.Context, e *schema.Entity, id string) {
	ctx := c.Request.Context()
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.renderError(c, http.StatusBadRequest, e.Name, "Could not read the form: "+err.Error())
		return
	}

	f, err := s.console.PostedForm(ctx, e, id, c.Request.PostForm)
	if err != nil {
		s.renderFormError(c, e, err)
		return
	}

	var upload *console.Upload
	if len(e.FieldsOf(schema.KindFile)) > 0 {
		file, header, err := c.Request.FormFile("upload")
		switch {
		case err == nil:
			defer file.Close()
			upload = &console.Upload{Filename: header.Filename, Body: file}
		case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
			s.renderError(c, http.StatusBadRequest, e.Name, "Could not read the upload: "+err.Error())
			return
		}
	}

	action := "/" + e.Path + "/create"
	if id != "" {
		action = recordHref(e, "edit", id)
	}

	out := s.console.Submit(ctx, f, upload)
	switch out.Kind {
	case console.OutcomeCreated:
		setFlash(c, out.Notice)
		c.Redirect(http.StatusSeeOther, afterCreate(e, out.ID))
	case console.OutcomeUpdated:
		setFlash(c, out.Notice)
		c.Redirect(http.StatusSeeOther, action)
	case console.OutcomeInvalid:
		s.renderForm(c, http.StatusUnprocessableEntity, e, f, action)
	default:
		s.renderForm(c, http.StatusBadGateway, e, f, action)
	}
}

// afterCreate is the redirect target of a successful create.
func afterCreate(e *schema.Entity, id string) string {
	switch {
	case e.Can(schema.CapList):
		return "/" + e.Path
	case id != "" && e.Can(schema.CapGet):
		return recordHref(e, "details", id)
	default:
		return "/" + e.Path + "/create"
	}
}

func (s *Server) renderForm(c *gin.Context, status int, e *schema.Entity, f *console.Form, action string) {
	cancel := entityHome(e)
	if f.State.ID != "" && e.Can(schema.CapGet) {
		cancel = recordHref(e, "details", f.State.ID)
	}
	c.HTML(status, "form.html", formView{
		Page:      s.page(c, e.Name, f.Title(), f.Notices...),
		Entity:    e,
		Form:      f,
		Sections:  sections(e.Fields),
		Action:    action,
		Multipart: len(e.FieldsOf(schema.KindFile)) > 0,
		CancelURL: cancel,
	})
}

func (s *Server) renderFormError(c *gin.Context, e *schema.Entity, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, schema.ErrUnsupported) {
		status = http.StatusNotFound
	}
	s.renderError(c, status, e.Name, fmt.Sprintf("Could not open the %s form: %v", e.Singular(), err))
}

func (s *Server) details(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := s.console.OpenDetail(c.Request.Context(), e, c.Query("id"))
		view := detailView{
			Entity:   e,
			Detail:   d,
			BackHref: entityHome(e),
		}
		status := http.StatusOK
		var notices []console.Notice
		title := fmt.Sprintf("%s details", capitalize(e.Singular()))
		if d.Status == console.DetailNotFound {
			status = http.StatusNotFound
			notices = append(notices, console.Warning(d.Message))
		} else {
			title = fmt.Sprintf("%s #%s", capitalize(e.Singular()), d.ID)
			view.Sections = detailSections(d.Rows)
			if d.CanEdit() {
				view.EditHref = recordHref(e, "edit", d.ID)
			}
		}
		view.Page = s.page(c, e.Name, title, notices...)
		c.HTML(status, "detail.html", view)
	}
}

func (s *Server) deleteConfirm(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Query("id"))
		if id == "" {
			s.renderError(c, http.StatusNotFound, e.Name, fmt.Sprintf("No %s id given.", e.Singular()))
			return
		}
		page := pageParam(c, "page")
		filter := filterParams(c.Query)
		label := "#" + id
		if rec := s.console.Collection(e).Find(c.Request.Context(), id); rec != nil {
			label = s.console.RecordLabel(e, rec, id)
		}
		c.HTML(http.StatusOK, "confirm.html", confirmView{
			Page:     s.page(c, e.Name, fmt.Sprintf("Delete %s", e.Singular())),
			Entity:   e,
			ID:       id,
			Label:    label,
			Action:   recordHref(e, "delete", id),
			ListPage: page,
			Filter:   filter,
			BackHref: listHref(e, page, filter),
		})
	}
}

func (s *Server) deleteSubmit(e *schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := strings.TrimSpace(c.Query("id"))
		page, _ := strconv.Atoi(c.PostForm("page"))
		if page < 0 {
			page = 0
		}
		filter := filterParams(c.PostForm)
		if id == "" {
			setFlash(c, console.Failure(fmt.Sprintf("No %s id given.", e.Singular())))
			c.Redirect(http.StatusSeeOther, listHref(e, page, filter))
			return
		}

		list, err := s.console.NewList(e)
		if err != nil {
			s.renderError(c, http.StatusNotFound, e.Name, err.Error())
			return
		}
		if err := list.Goto(ctx, page, filter); err != nil {
			s.logger.Warn().Err(err).Str("entity", e.Name).Msg("list load before delete failed")
		}
		if err := list.Delete(ctx, id); err != nil {
			setFlash(c, console.Failure(fmt.Sprintf("Failed to delete %s #%s: %v", e.Singular(), id, err)))
			c.Redirect(http.StatusSeeOther, listHref(e, page, filter))
			return
		}
		snap := list.Snapshot()
		setFlash(c, console.Success(fmt.Sprintf("Deleted %s #%s.", e.Singular(), id)))
		c.Redirect(http.StatusSeeOther, listHref(e, snap.Page, snap.Filter))
	}
}

func (s *Server) renderError(c *gin.Context, status int, active, message string) {
	c.HTML(status, "error.html", errorView{
		Page:    s.page(c, active, http.StatusText(status)),
		Status:  status,
		Message: message,
	})
}
