// Package form holds the editable state of one entity form and turns it
// into an API payload.
package form

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/imsctl/internal/schema"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// State is the structured form state for one entity. Scalar fields live in
// Values as their input-control text; multi-select fields live in Multi as
// code lists.
type State struct {
	Entity  *schema.Entity
	Mode    Mode
	ID      string
	Values  map[string]string
	Multi   map[string][]string
	Invalid map[string]string
}

// New returns a create-mode form filled with field defaults.
func New(e *schema.Entity) *State {
	s := &State{
		Entity:  e,
		Mode:    ModeCreate,
		Values:  map[string]string{},
		Multi:   map[string][]string{},
		Invalid: map[string]string{},
	}
	for _, f := range e.Fields {
		s.reset(f)
	}
	return s
}

// NewEdit returns an edit-mode form for id with defaults only. It is the
// fallback when the record cannot be loaded.
func NewEdit(e *schema.Entity, id string) *State {
	s := New(e)
	s.Mode = ModeEdit
	s.ID = strings.TrimSpace(id)
	return s
}

// FromRecord returns an edit-mode form populated from rec. Fields the
// record lacks keep their defaults.
func FromRecord(e *schema.Entity, id string, rec schema.Record, loc *time.Location) *State {
	s := NewEdit(e, id)
	for _, f := range e.Fields {
		if _, ok := rec[f.Name]; !ok || rec[f.Name] == nil {
			continue
		}
		switch f.Kind {
		case schema.KindMultiSelect:
			s.Multi[f.Name] = rec.Strings(f.Name)
		case schema.KindDate:
			if v := schema.DateInputValue(rec.String(f.Name), loc); v != "" {
				s.Values[f.Name] = v
			}
		case schema.KindDateTime:
			if v := schema.DateTimeInputValue(rec.String(f.Name), loc); v != "" {
				s.Values[f.Name] = v
			}
		default:
			s.Values[f.Name] = rec.String(f.Name)
		}
	}
	return s
}

func (s *State) reset(f schema.Field) {
	if f.Multi() {
		s.Multi[f.Name] = splitCodes(f.Default)
		return
	}
	s.Values[f.Name] = f.Default
}

// Value returns the input text of a scalar field.
func (s *State) Value(name string) string {
	return s.Values[name]
}

// Selected returns the codes of a multi-select field.
func (s *State) Selected(name string) []string {
	return s.Multi[name]
}

// IsSelected reports whether code is chosen in field name. For scalar
// fields it compares against the current value.
func (s *State) IsSelected(name, code string) bool {
	if codes, ok := s.Multi[name]; ok {
		for _, c := range codes {
			if c == code {
				return true
			}
		}
		return false
	}
	return s.Values[name] == code
}

// Bind replaces every field value from a full form post. File fields keep
// their current value unless the post carries one.
func (s *State) Bind(values url.Values) {
	for _, f := range s.Entity.Fields {
		switch {
		case f.Multi():
			codes := make([]string, 0, len(values[f.Name]))
			for _, raw := range values[f.Name] {
				if raw = strings.TrimSpace(raw); raw != "" {
					codes = append(codes, raw)
				}
			}
			s.Multi[f.Name] = dedupe(codes)
		case f.Kind == schema.KindFile:
			if v := strings.TrimSpace(values.Get(f.Name)); v != "" {
				s.Values[f.Name] = v
			}
		default:
			s.Values[f.Name] = values.Get(f.Name)
		}
	}
}

// Set overrides one field. Multi-select values are comma separated.
func (s *State) Set(name, raw string) error {
	f, ok := s.Entity.Field(name)
	if !ok {
		return fmt.Errorf("%s has no field %q", s.Entity.Name, name)
	}
	if f.Multi() {
		s.Multi[f.Name] = dedupe(splitCodes(raw))
		return nil
	}
	s.Values[f.Name] = raw
	return nil
}

// Missing returns the names of required fields without a value, in field
// order.
func (s *State) Missing() []string {
	var out []string
	for _, f := range s.Entity.Fields {
		if f.Required && s.empty(f) {
			out = append(out, f.Name)
		}
	}
	return out
}

func (s *State) empty(f schema.Field) bool {
	if f.Multi() {
		return len(s.Multi[f.Name]) == 0
	}
	return strings.TrimSpace(s.Values[f.Name]) == ""
}

// Validate checks required markers and the format of typed inputs.
// Invalid is refreshed for rendering.
func (s *State) Validate(loc *time.Location) error {
	s.Invalid = map[string]string{}
	var fields []schema.Field
	for _, f := range s.Entity.Fields {
		problem := ""
		if f.Required && s.empty(f) {
			problem = ProblemRequired
		} else if !f.Multi() {
			problem = checkFormat(f, strings.TrimSpace(s.Values[f.Name]), loc)
		}
		if problem != "" {
			s.Invalid[f.Name] = problem
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	verr := &ValidationError{Entity: s.Entity.Name}
	for _, f := range fields {
		verr.Fields = append(verr.Fields, FieldError{Field: f.Name, Label: f.Label, Problem: s.Invalid[f.Name]})
	}
	return verr
}

func checkFormat(f schema.Field, raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	switch f.Kind {
	case schema.KindNumber:
		if !isNumber(raw) {
			return ProblemNumber
		}
	case schema.KindDate:
		if _, err := schema.ParseDate(raw, loc); err != nil {
			return ProblemDate
		}
	case schema.KindDateTime:
		if _, err := schema.ParseDateTime(raw, loc); err != nil {
			return ProblemDateTime
		}
	case schema.KindBool:
		if _, err := strconv.ParseBool(raw); err != nil {
			return ProblemBool
		}
	}
	return ""
}

// Payload validates the form and serializes it for the API. Multi-select
// fields are always arrays; empty optional non-text fields are null.
func (s *State) Payload(loc *time.Location) (map[string]any, error) {
	if err := s.Validate(loc); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(s.Entity.Fields)+1)
	if s.Mode == ModeEdit && s.ID != "" {
		out[s.Entity.IDField] = scalarID(s.ID)
	}
	for _, f := range s.Entity.Fields {
		if f.Multi() {
			codes := s.Multi[f.Name]
			if codes == nil {
				codes = []string{}
			}
			out[f.Name] = codes
			continue
		}
		raw := strings.TrimSpace(s.Values[f.Name])
		switch f.Kind {
		case schema.KindText, schema.KindTextarea, schema.KindEmail:
			out[f.Name] = raw
			continue
		}
		if raw == "" {
			out[f.Name] = nil
			continue
		}
		switch f.Kind {
		case schema.KindNumber:
			out[f.Name] = json.Number(raw)
		case schema.KindReference:
			out[f.Name] = scalarID(raw)
		case schema.KindDate:
			t, _ := schema.ParseDate(raw, loc)
			out[f.Name] = schema.FormatDate(t)
		case schema.KindDateTime:
			t, _ := schema.ParseDateTime(raw, loc)
			out[f.Name] = schema.FormatDateTime(t)
		case schema.KindBool:
			b, _ := strconv.ParseBool(raw)
			out[f.Name] = b
		default:
			out[f.Name] = raw
		}
	}
	return out, nil
}

// isNumber accepts decimal literals that are also valid JSON numbers.
func isNumber(raw string) bool {
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return false
	}
	return json.Valid([]byte(raw))
}

// scalarID keeps numeric ids numeric on the wire.
func scalarID(raw string) any {
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return json.Number(raw)
	}
	return raw
}

func splitCodes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
