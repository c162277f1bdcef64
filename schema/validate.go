package schema

import (
	"errors"
	"fmt"

	"github.com/zenrsr/form-craft/model"
)

// ErrNoEmailField rejects a form save: every form needs an email field so
// submissions can be attributed and de-duplicated.
var ErrNoEmailField = errors.New("the form must contain at least one email field")

// ValidateForm is the save-time precondition for creating or replacing a
// form document.
func ValidateForm(form model.Form) error {
	for _, f := range form.Fields {
		if f.Type == TypeEmail {
			return nil
		}
	}
	return ErrNoEmailField
}

// Normalize prepares an incoming field list for persistence: ids are
// assigned where missing, transient editor attributes are dropped, and
// per-kind attributes are clamped to what the kind carries. Unknown field
// types are rejected.
func Normalize(fields []model.Field) ([]model.Field, error) {
	out := make([]model.Field, len(fields))
	for i, f := range fields {
		kind, ok := Lookup(f.Type)
		if !ok {
			return nil, fmt.Errorf("unknown field type %q", f.Type)
		}
		if f.ID == "" {
			f.ID = newFieldID()
		}
		f.File = ""
		f.PreviewURL = ""
		clampToKind(&f, kind)
		out[i] = f
	}
	return out, nil
}

// ValidateResponses enforces the required rule over a response set, in
// field display order. The returned map is keyed by composite key, the
// same key the responses are stored under; an empty map means valid.
func ValidateResponses(fields []model.Field, responses map[string]any) map[string]string {
	errs := make(map[string]string)
	for _, f := range fields {
		kind, ok := Lookup(f.Type)
		if !ok || kind.Validate == nil {
			// unknown and data-less kinds carry nothing to check
			continue
		}
		if !f.Required {
			continue
		}
		key := CompositeKey(f)
		if !kind.Validate(responses[key]) {
			errs[key] = f.Label + " is required."
		}
	}
	return errs
}

// EmailValue finds the form's email field and returns the submitted value
// under its composite key. Scanning by schema type keeps the lookup
// stable under field reordering.
func EmailValue(fields []model.Field, responses map[string]any) (string, bool) {
	for _, f := range fields {
		if f.Type != TypeEmail {
			continue
		}
		value, ok := responses[CompositeKey(f)].(string)
		if !ok || value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}
