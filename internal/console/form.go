package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jimezsa/imsctl/internal/form"
	"github.com/jimezsa/imsctl/internal/schema"
)

// Choice is one option of a select, multi-select, reference or bool
// control.
type Choice struct {
	Code     string
	Label    string
	Selected bool
	Unknown  bool
}

// Form is the form view of one entity in create or edit mode.
type Form struct {
	Entity  *schema.Entity
	State   *form.State
	Refs    References
	Notices []Notice

	catalogs schema.Catalogs
}

func (f *Form) Title() string {
	if f.State.Mode == form.ModeEdit {
		return fmt.Sprintf("Edit %s #%s", f.Entity.Singular(), f.State.ID)
	}
	return fmt.Sprintf("Create %s", f.Entity.Singular())
}

// Choices lists the options of field name with the current selection.
// Selected codes the option source does not know are appended as Unknown.
func (f *Form) Choices(name string) []Choice {
	field, ok := f.Entity.Field(name)
	if !ok {
		return nil
	}
	var options []schema.Option
	switch field.Kind {
	case schema.KindSelect, schema.KindMultiSelect:
		options = f.catalogs.Get(field.Catalog)
	case schema.KindReference:
		options = f.Refs[field.Ref]
	case schema.KindBool:
		options = []schema.Option{
			{Code: "true", Label: labelOr(field.TrueLabel, "Yes")},
			{Code: "false", Label: labelOr(field.FalseLabel, "No")},
		}
	default:
		return nil
	}

	selected := f.State.Selected(name)
	if !field.Multi() {
		selected = nil
		if v := strings.TrimSpace(f.State.Value(name)); v != "" {
			selected = []string{v}
		}
	}
	known := make(map[string]struct{}, len(options))
	out := make([]Choice, 0, len(options)+len(selected))
	for _, opt := range options {
		known[opt.Code] = struct{}{}
		out = append(out, Choice{Code: opt.Code, Label: opt.Label, Selected: f.State.IsSelected(name, opt.Code)})
	}
	for _, code := range selected {
		if _, ok := known[code]; ok {
			continue
		}
		label := code
		if field.Kind == schema.KindReference {
			label = "#" + code
		}
		out = append(out, Choice{Code: code, Label: label + " (unknown)", Selected: true, Unknown: true})
	}
	return out
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

// OpenForm prepares the form of e. An empty id opens a create form; any
// other id opens an edit form populated from the API. A record that cannot
// be loaded yields an empty edit form with a warning. Reference options
// load concurrently and any failure among them fails the whole form.
func (c *Console) OpenForm(ctx context.Context, e *schema.Entity, id string) (*Form, error) {
	id = strings.TrimSpace(id)
	f := &Form{Entity: e, catalogs: c.Catalogs}

	if id == "" {
		if !e.Can(schema.CapCreate) {
			return nil, fmt.Errorf("create %s: %w", e.Name, schema.ErrUnsupported)
		}
		f.State = form.New(e)
	} else {
		if !e.Can(schema.CapUpdate) {
			return nil, fmt.Errorf("update %s: %w", e.Name, schema.ErrUnsupported)
		}
		if rec := c.Collection(e).Find(ctx, id); rec != nil {
			f.State = form.FromRecord(e, id, rec, c.Location)
		} else {
			f.State = form.NewEdit(e, id)
			f.Notices = append(f.Notices, Warning(fmt.Sprintf("Could not load %s #%s; the form shows default values.", e.Singular(), id)))
		}
	}

	refs, err := c.loadReferences(ctx, e.References(), true)
	if err != nil {
		return nil, err
	}
	f.Refs = refs
	return f, nil
}

// PostedForm rebuilds the form of e from a full form post. The stored record
// is not read. Reference options load leniently: a source that fails keeps
// its selected ids as "#id" choices and adds a warning, so the entered
// values are never lost.
func (c *Console) PostedForm(ctx context.Context, e *schema.Entity, id string, values url.Values) (*Form, error) {
	id = strings.TrimSpace(id)
	f := &Form{Entity: e, catalogs: c.Catalogs}
	if id == "" {
		if !e.Can(schema.CapCreate) {
			return nil, fmt.Errorf("create %s: %w", e.Name, schema.ErrUnsupported)
		}
		f.State = form.New(e)
	} else {
		if !e.Can(schema.CapUpdate) {
			return nil, fmt.Errorf("update %s: %w", e.Name, schema.ErrUnsupported)
		}
		f.State = form.NewEdit(e, id)
	}
	f.State.Bind(values)

	names := e.References()
	refs, err := c.loadReferences(ctx, names, false)
	if err != nil {
		return nil, err
	}
	f.Refs = refs
	for _, name := range names {
		if refs.Has(name) {
			continue
		}
		title := name
		if re, err := c.Registry.Lookup(name); err == nil {
			title = re.Title
		}
		f.Notices = append(f.Notices, Warning(fmt.Sprintf("Could not load %s options; selections are shown by id.", strings.ToLower(title))))
	}
	return f, nil
}

// Upload is a file chosen for the entity's file field.
type Upload struct {
	Filename string
	Body     io.Reader
}

type OutcomeKind string

const (
	OutcomeCreated OutcomeKind = "created"
	OutcomeUpdated OutcomeKind = "updated"
	OutcomeInvalid OutcomeKind = "invalid"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome reports the result of a submit.
type Outcome struct {
	Kind   OutcomeKind
	ID     string
	Record schema.Record
	Notice Notice
	Err    error
}

func (o Outcome) OK() bool {
	return o.Kind == OutcomeCreated || o.Kind == OutcomeUpdated
}

// Submit validates the form, uploads the optional file and then creates or
// updates the record. On failure the form keeps every entered value and
// carries the error notice.
func (c *Console) Submit(ctx context.Context, f *Form, upload *Upload) Outcome {
	e := f.Entity
	out := c.submit(ctx, f, upload)
	f.Notices = append(f.Notices, out.Notice)

	event := c.Logger.Info()
	if !out.OK() {
		event = c.Logger.Warn().Err(out.Err)
	}
	event.Str("entity", e.Name).Str("outcome", string(out.Kind)).Str("id", out.ID).Msg("form submitted")
	return out
}

func (c *Console) submit(ctx context.Context, f *Form, upload *Upload) Outcome {
	e := f.Entity
	st := f.State
	if err := st.Validate(c.Location); err != nil {
		return Outcome{Kind: OutcomeInvalid, ID: st.ID, Notice: Failure(invalidText(err)), Err: err}
	}

	if upload != nil && upload.Body != nil {
		files := e.FieldsOf(schema.KindFile)
		if len(files) == 0 {
			err := fmt.Errorf("%s has no file field", e.Name)
			return Outcome{Kind: OutcomeFailed, ID: st.ID, Notice: Failure(err.Error()), Err: err}
		}
		path, err := c.client.Upload(ctx, upload.Filename, upload.Body)
		if err != nil {
			return Outcome{Kind: OutcomeFailed, ID: st.ID, Notice: Failure("Upload failed: " + err.Error()), Err: err}
		}
		if err := st.Set(files[0].Name, path); err != nil {
			return Outcome{Kind: OutcomeFailed, ID: st.ID, Notice: Failure(err.Error()), Err: err}
		}
	}

	payload, err := st.Payload(c.Location)
	if err != nil {
		return Outcome{Kind: OutcomeInvalid, ID: st.ID, Notice: Failure(invalidText(err)), Err: err}
	}

	col := c.Collection(e)
	if st.Mode == form.ModeEdit {
		if err := col.Update(ctx, st.ID, payload); err != nil {
			return Outcome{Kind: OutcomeFailed, ID: st.ID, Notice: Failure(fmt.Sprintf("Failed to update %s: %v", e.Singular(), err)), Err: err}
		}
		return Outcome{Kind: OutcomeUpdated, ID: st.ID, Notice: Success(fmt.Sprintf("Updated %s #%s.", e.Singular(), st.ID))}
	}

	rec, err := col.Create(ctx, payload)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Notice: Failure(fmt.Sprintf("Failed to create %s: %v", e.Singular(), err)), Err: err}
	}
	id, _ := rec.ID(e.IDField)
	return Outcome{Kind: OutcomeCreated, ID: id, Record: rec, Notice: Success(fmt.Sprintf("Created %s.", e.Singular()))}
}

func invalidText(err error) string {
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	parts := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Label, f.Problem))
	}
	return "Please check: " + strings.Join(parts, ", ") + "."
}
