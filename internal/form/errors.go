package form

import (
	"fmt"
	"strings"
)

// FieldError names one field that blocked a submit.
type FieldError struct {
	Field   string
	Label   string
	Problem string
}

const (
	ProblemRequired = "required"
	ProblemNumber   = "must be a number"
	ProblemDate     = "must be a date (yyyy-mm-dd)"
	ProblemDateTime = "must be a date and time (yyyy-mm-ddThh:mm)"
	ProblemBool     = "must be true or false"
)

// ValidationError lists the fields that failed the presence or format
// checks of a form.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var missing, invalid []string
	for _, f := range e.Fields {
		if f.Problem == ProblemRequired {
			missing = append(missing, f.Label)
			continue
		}
		invalid = append(invalid, fmt.Sprintf("%s %s", f.Label, f.Problem))
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, strings.Join(invalid, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Entity, strings.Join(parts, "; "))
}

// Has reports whether field is listed.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
