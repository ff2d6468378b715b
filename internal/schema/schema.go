package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrUnsupported   = errors.New("operation not supported")
)

// Kind selects the input control and the serialization rule of a field.
type Kind string

const (
	KindText        Kind = "text"
	KindTextarea    Kind = "textarea"
	KindEmail       Kind = "email"
	KindNumber      Kind = "number"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindDate        Kind = "date"
	KindDateTime    Kind = "datetime"
	KindReference   Kind = "reference"
	KindBool        Kind = "bool"
	KindFile        Kind = "file"
)

// Capability is a bit set of the operations the API exposes for an entity.
type Capability uint8

const (
	CapList Capability = 1 << iota
	CapGet
	CapCreate
	CapUpdate
	CapDelete
)

// Field describes one record attribute.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Required    bool
	Catalog     string
	Ref         string
	Default     string
	Section     string
	Placeholder string
	TrueLabel   string
	FalseLabel  string
}

// Multi reports whether the field stores a list of codes.
func (f Field) Multi() bool {
	return f.Kind == KindMultiSelect
}

// Column is one list-table column.
type Column struct {
	Field string
	Label string
}

// Entity describes one collection of the IMS API.
type Entity struct {
	Name       string
	Title      string
	Path       string
	IDField    string
	LabelField string
	// UpdatePath holds the PUT path with "{id}" as placeholder.
	UpdatePath    string
	Caps          Capability
	Columns       []Column
	Fields        []Field
	StatusField   string
	StatusCatalog string
	SearchFields  []string
}

// Can reports whether the entity supports op.
func (e *Entity) Can(op Capability) bool {
	return e.Caps&op == op
}

// Field returns the field named name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldsOf returns the fields of kind k.
func (e *Entity) FieldsOf(k Kind) []Field {
	var out []Field
	for _, f := range e.Fields {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// Singular returns the lower-case entity name for messages.
func (e *Entity) Singular() string {
	return strings.ToLower(e.Name)
}

// UpdateURLPath expands UpdatePath for id.
func (e *Entity) UpdateURLPath(id string) string {
	if e.UpdatePath == "" {
		return e.Path + "/" + id
	}
	return strings.ReplaceAll(e.UpdatePath, "{id}", id)
}

// References returns the entity names referenced by the entity's fields,
// without duplicates, in field order.
func (e *Entity) References() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, f := range e.Fields {
		if f.Kind != KindReference || f.Ref == "" {
			continue
		}
		if _, ok := seen[f.Ref]; ok {
			continue
		}
		seen[f.Ref] = struct{}{}
		out = append(out, f.Ref)
	}
	return out
}

// Registry holds the entities in navigation order.
type Registry struct {
	entities []*Entity
}

// NewRegistry validates and indexes entities.
func NewRegistry(entities ...*Entity) (*Registry, error) {
	names := map[string]struct{}{}
	paths := map[string]struct{}{}
	for i, e := range entities {
		if e.Name == "" || e.Path == "" || e.IDField == "" {
			return nil, fmt.Errorf("entities[%d]: name, path and id field are required", i)
		}
		if _, ok := names[e.Name]; ok {
			return nil, fmt.Errorf("entities[%d]: duplicate name %q", i, e.Name)
		}
		if _, ok := paths[e.Path]; ok {
			return nil, fmt.Errorf("entities[%d]: duplicate path %q", i, e.Path)
		}
		names[e.Name] = struct{}{}
		paths[e.Path] = struct{}{}
		for j, f := range e.Fields {
			if f.Name == "" || f.Label == "" {
				return nil, fmt.Errorf("%s.fields[%d]: name and label are required", e.Name, j)
			}
			switch f.Kind {
			case KindSelect, KindMultiSelect:
				if f.Catalog == "" {
					return nil, fmt.Errorf("%s.%s: catalog required for %s", e.Name, f.Name, f.Kind)
				}
			case KindReference:
				if f.Ref == "" {
					return nil, fmt.Errorf("%s.%s: ref required for reference", e.Name, f.Name)
				}
			}
		}
	}
	for _, e := range entities {
		for _, ref := range e.References() {
			if _, ok := names[ref]; !ok {
				return nil, fmt.Errorf("%s: reference to unknown entity %q", e.Name, ref)
			}
		}
	}
	return &Registry{entities: entities}, nil
}

// Entities returns all entities in navigation order.
func (r *Registry) Entities() []*Entity {
	return append([]*Entity(nil), r.entities...)
}

// Lookup resolves an entity by name, path or title, case-insensitively.
func (r *Registry) Lookup(key string) (*Entity, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, e := range r.entities {
		if key == e.Name || key == e.Path || key == strings.ToLower(e.Title) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
}

// Names returns the entity names in navigation order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e.Name)
	}
	return out
}
