package schema

import (
	"strings"
	"time"
)

// NotAvailable is shown for empty values.
const NotAvailable = "N/A"

// Display renders the value stored under name for tables and detail views.
// Names that are not form fields (server-derived columns such as
// candidateName) render as plain text.
func (e *Entity) Display(name string, rec Record, catalogs Catalogs, loc *time.Location) string {
	f, ok := e.Field(name)
	if !ok {
		return orNA(strings.TrimSpace(rec.String(name)))
	}
	return DisplayField(f, rec, catalogs, loc)
}

// DisplayField renders one field value.
func DisplayField(f Field, rec Record, catalogs Catalogs, loc *time.Location) string {
	raw := strings.TrimSpace(rec.String(f.Name))
	switch f.Kind {
	case KindSelect:
		if raw == "" {
			return NotAvailable
		}
		return catalogs.Get(f.Catalog).Label(raw)
	case KindMultiSelect:
		selected := catalogs.Get(f.Catalog).Selected(rec.Strings(f.Name))
		labels := make([]string, 0, len(selected))
		for _, opt := range selected {
			labels = append(labels, opt.Label)
		}
		return orNA(strings.Join(labels, ", "))
	case KindDate:
		if v := DateInputValue(raw, loc); v != "" {
			return v
		}
		return orNA(raw)
	case KindDateTime:
		if raw == "" {
			return NotAvailable
		}
		t, err := ParseDateTime(raw, loc)
		if err != nil {
			return raw
		}
		return t.Format(displayDateTime)
	case KindBool:
		switch strings.ToLower(raw) {
		case "true", "1":
			return labelOr(f.TrueLabel, "Yes")
		case "false", "0":
			return labelOr(f.FalseLabel, "No")
		}
		return NotAvailable
	default:
		return orNA(raw)
	}
}

func orNA(value string) string {
	if value == "" {
		return NotAvailable
	}
	return value
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
