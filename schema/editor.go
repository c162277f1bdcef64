package schema

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/zenrsr/form-craft/model"
)

// FieldPatch carries a partial field update; nil members are left alone.
type FieldPatch struct {
	Type       *string
	Label      *string
	Required   *bool
	Options    *[]string
	Price      *float64
	File       *string
	PreviewURL *string
}

// AddField appends a new field of the given kind with a generated id,
// a default label and the kind's default attributes.
func AddField(fields []model.Field, fieldType string) ([]model.Field, error) {
	kind, ok := Lookup(fieldType)
	if !ok {
		return fields, fmt.Errorf("unknown field type %q", fieldType)
	}

	f := model.Field{
		ID:       newFieldID(),
		Type:     fieldType,
		Label:    "Untitled " + upperFirst(fieldType),
		Required: false,
	}
	if kind.HasOptions {
		f.Options = []string{""}
	}
	if kind.HasPrice {
		zero := 0.0
		f.Price = &zero
	}
	return append(fields, f), nil
}

// UpdateField merges a patch into the field with the given id. When the
// patch changes the field's type, attributes the new kind does not carry
// are cleared and missing ones are seeded with the kind defaults.
func UpdateField(fields []model.Field, id string, patch FieldPatch) []model.Field {
	out := make([]model.Field, len(fields))
	copy(out, fields)

	for i := range out {
		if out[i].ID != id {
			continue
		}

		typeChanged := false
		if patch.Type != nil && *patch.Type != out[i].Type {
			out[i].Type = *patch.Type
			typeChanged = true
		}
		if patch.Label != nil {
			out[i].Label = *patch.Label
		}
		if patch.Required != nil {
			out[i].Required = *patch.Required
		}
		if patch.Options != nil {
			out[i].Options = *patch.Options
		}
		if patch.Price != nil {
			price := *patch.Price
			out[i].Price = &price
		}
		if patch.File != nil {
			out[i].File = *patch.File
		}
		if patch.PreviewURL != nil {
			out[i].PreviewURL = *patch.PreviewURL
		}

		if typeChanged {
			if kind, ok := Lookup(out[i].Type); ok {
				clampToKind(&out[i], kind)
			}
		}
		break
	}
	return out
}

// DeleteField removes the field with the given id, if present.
func DeleteField(fields []model.Field, id string) []model.Field {
	out := make([]model.Field, 0, len(fields))
	for _, f := range fields {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

// Reorder moves the element at src to dst, shifting the rest. Equal or
// out-of-range indices leave the sequence untouched.
func Reorder(fields []model.Field, src, dst int) []model.Field {
	if src == dst || src < 0 || dst < 0 || src >= len(fields) || dst >= len(fields) {
		return fields
	}

	out := make([]model.Field, 0, len(fields))
	out = append(out, fields[:src]...)
	out = append(out, fields[src+1:]...)

	tail := append([]model.Field(nil), out[dst:]...)
	out = append(out[:dst], fields[src])
	out = append(out, tail...)
	return out
}

// clampToKind restricts a field's optional attributes to what its kind
// carries, seeding defaults where the kind requires them.
func clampToKind(f *model.Field, kind Kind) {
	if kind.HasOptions {
		if f.Options == nil {
			f.Options = []string{""}
		}
	} else {
		f.Options = nil
	}
	if kind.HasPrice {
		if f.Price == nil {
			zero := 0.0
			f.Price = &zero
		}
	} else {
		f.Price = nil
	}
}

func newFieldID() string {
	return uuid.Must(uuid.NewV4()).String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
