// Package form implements schema-driven create and update submissions.
// A form is bound to a declarative field schema, validates its values
// before any network call, serializes to JSON or multipart depending on
// whether the schema carries file fields, and maps server-side field
// errors back onto the fields that caused them.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a schema field. File fields force multipart encoding
// for the whole submission; Reference fields submit a foreign entity as
// its numeric identifier.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindDate
	KindFile
	KindReference
)

// RequiredMessage is the inline message shown for missing required fields.
const RequiredMessage = "This field is required."

// File is an uploadable value for a KindFile field.
type File struct {
	Name string
	Data []byte
}

// Field declares one schema entry. Rules holds an optional validator/v10
// tag applied to non-empty values. RequiredWhen names a KindBool field
// that makes this one required while it is true; switching that toggle
// off clears this field's value and error.
type Field struct {
	Name         string
	Label        string
	Kind         Kind
	Required     bool
	RequiredWhen string
	Rules        string
}

// Schema is the declared field set of one resource form.
type Schema struct {
	Fields []Field
}

// HasFile reports whether any field is file-typed. The whole submission
// is multipart as soon as one is, populated or not.
func (s Schema) HasFile() bool {
	for _, f := range s.Fields {
		if f.Kind == KindFile {
			return true
		}
	}
	return false
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) dependents(name string) []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.RequiredWhen == name {
			out = append(out, f)
		}
	}
	return out
}

// Mode discriminates create from update. It is derived from the presence
// of a target id and never tracked separately.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// SubmitLabel is the label a submit control shows for this mode.
func (m Mode) SubmitLabel() string {
	if m == ModeUpdate {
		return "Update"
	}
	return "Create"
}

var validate = validator.New()

// Form holds the values and validation state of one mutation.
type Form struct {
	schema Schema
	values map[string]any
	errors map[string][]string
	target *int
}

// New creates a form. A non-nil initial carrying an "id" selects update
// mode; the remaining initial entries prefill the field values.
func New(schema Schema, initial map[string]any) *Form {
	f := &Form{
		schema: schema,
		values: make(map[string]any),
		errors: make(map[string][]string),
	}
	if initial == nil {
		return f
	}
	for name, value := range initial {
		if name == "id" {
			if id, ok := coerceInt(value); ok {
				f.target = &id
			}
			continue
		}
		if _, known := schema.field(name); known {
			f.values[name] = value
		}
	}
	return f
}

// Mode reports whether submission will create or update.
func (f *Form) Mode() Mode {
	if f.target != nil {
		return ModeUpdate
	}
	return ModeCreate
}

// TargetID returns the update target when in update mode.
func (f *Form) TargetID() (int, bool) {
	if f.target == nil {
		return 0, false
	}
	return *f.target, true
}

// Set assigns a field value. Setting a bool field to false clears the
// values and errors of every field that is required only while the
// toggle is on.
func (f *Form) Set(name string, value any) error {
	field, ok := f.schema.field(name)
	if !ok {
		return fmt.Errorf("form: unknown field %q", name)
	}
	f.values[name] = value

	if field.Kind == KindBool {
		if on, _ := value.(bool); !on {
			for _, dep := range f.schema.dependents(name) {
				delete(f.values, dep.Name)
				delete(f.errors, dep.Name)
			}
		}
	}
	return nil
}

// Get returns the current value of a field.
func (f *Form) Get(name string) any {
	return f.values[name]
}

// Errors returns the per-field validation messages from the last
// Validate call, merged with any server-side field errors from the last
// submission.
func (f *Form) Errors() map[string][]string {
	return f.errors
}

// Validate checks every field against the schema and reports whether the
// form may be submitted. Numeric fields are coerced from their string
// input representation first; rule tags run against the coerced value.
func (f *Form) Validate() bool {
	f.errors = make(map[string][]string)

	for _, field := range f.schema.Fields {
		value, present := f.values[field.Name]
		empty := !present || isEmpty(field, value)

		if empty {
			if f.requiredNow(field) {
				f.errors[field.Name] = append(f.errors[field.Name], RequiredMessage)
			}
			continue
		}

		coerced, err := coerceValue(field, value)
		if err != nil {
			f.errors[field.Name] = append(f.errors[field.Name], err.Error())
			continue
		}
		f.values[field.Name] = coerced

		if field.Rules != "" && field.Kind != KindFile {
			if err := validate.Var(coerced, field.Rules); err != nil {
				var valErrs validator.ValidationErrors
				if errors.As(err, &valErrs) {
					for _, ve := range valErrs {
						f.errors[field.Name] = append(f.errors[field.Name], ruleMessage(ve))
					}
				} else {
					f.errors[field.Name] = append(f.errors[field.Name], "invalid value")
				}
			}
		}
	}

	return len(f.errors) == 0
}

func (f *Form) requiredNow(field Field) bool {
	if field.Required {
		return true
	}
	if field.RequiredWhen == "" {
		return false
	}
	on, _ := f.values[field.RequiredWhen].(bool)
	return on
}

func isEmpty(field Field, value any) bool {
	if value == nil {
		return true
	}
	switch field.Kind {
	case KindFile:
		file, ok := value.(File)
		return !ok || len(file.Data) == 0
	case KindBool:
		return false
	default:
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s) == ""
		}
		return false
	}
}

func coerceValue(field Field, value any) (any, error) {
	switch field.Kind {
	case KindNumber:
		n, ok := coerceFloat(value)
		if !ok {
			return nil, fmt.Errorf("must be a number")
		}
		return n, nil
	case KindReference:
		id, ok := coerceInt(value)
		if !ok {
			return nil, fmt.Errorf("must be a numeric identifier")
		}
		return id, nil
	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("must be a boolean")
	case KindDate:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("must be a date")
		}
	case KindFile:
		if file, ok := value.(File); ok {
			return file, nil
		}
		return nil, fmt.Errorf("must be a file")
	default:
		return value, nil
	}
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func coerceInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

func ruleMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return RequiredMessage
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
