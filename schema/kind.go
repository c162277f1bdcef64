package schema

import (
	"strings"

	"github.com/zenrsr/form-craft/model"
)

// RenderFunc writes the HTML fragment for one field in one context.
type RenderFunc func(b *strings.Builder, f model.Field)

// ValidateFunc reports whether a response value counts as present for a
// required check. Kinds that carry no respondent data have no validator.
type ValidateFunc func(value any) bool

// Kind describes one field type: its palette metadata, which optional
// attributes it carries, and its renderer/validator record. Rendering and
// validation dispatch through the registry instead of switch statements.
type Kind struct {
	Type       string
	Title      string
	Group      string // "basic" or "additional", palette placement
	HasOptions bool
	HasPrice   bool
	Structural bool // non-input markup, no caption label around it
	Editor     RenderFunc
	Preview    RenderFunc
	Public     RenderFunc
	Validate   ValidateFunc
}

const (
	TypeHeading     = "heading"
	TypeText        = "text"
	TypeEmail       = "email"
	TypeAddress     = "address"
	TypePhone       = "phone"
	TypeDate        = "date"
	TypeAppointment = "appointment"
	TypeDropdown    = "dropdown"
	TypeRadio       = "radio"
	TypeCheckbox    = "checkbox"
	TypeLongText    = "long_text"
	TypeScale       = "scale"
	TypeDivider     = "divider"
	TypePageBreak   = "page_break"
	TypeSignature   = "signature"
	TypeFileUpload  = "file_upload"
	TypeImageUpload = "image_upload"
	TypeProductList = "product_list"
)

var kinds = []Kind{
	{Type: TypeHeading, Title: "Heading", Group: "basic", Structural: true,
		Editor: renderHeading, Preview: renderHeading, Public: renderHeading},
	{Type: TypeText, Title: "Short Text", Group: "basic",
		Editor: inputRenderer("text", "Short Text"), Preview: inputRenderer("text", "Short Text"),
		Public: publicInputRenderer("text"), Validate: valuePresent},
	{Type: TypeEmail, Title: "Email", Group: "basic",
		Editor: inputRenderer("email", "Enter Email"), Preview: inputRenderer("email", "Enter Email"),
		Public: publicInputRenderer("email"), Validate: valuePresent},
	{Type: TypeAddress, Title: "Address", Group: "basic",
		Editor: renderAddress, Preview: renderAddress,
		Public: renderPublicAddress, Validate: valuePresent},
	{Type: TypePhone, Title: "Phone", Group: "basic",
		Editor: inputRenderer("tel", "Enter Phone Number"), Preview: inputRenderer("tel", "Enter Phone Number"),
		Public: publicInputRenderer("tel"), Validate: valuePresent},
	{Type: TypeDate, Title: "Date Picker", Group: "basic",
		Editor: inputRenderer("date", "Select Date"), Preview: inputRenderer("date", ""),
		Public: publicInputRenderer("date"), Validate: valuePresent},
	{Type: TypeAppointment, Title: "Appointment", Group: "basic",
		Editor: inputRenderer("datetime-local", "Set Appointment"), Preview: inputRenderer("datetime-local", ""),
		Public: publicInputRenderer("datetime-local"), Validate: valuePresent},
	{Type: TypeDropdown, Title: "Dropdown", Group: "basic", HasOptions: true,
		Editor: renderOptionEditor, Preview: renderDropdown,
		Public: renderDropdown, Validate: valuePresent},
	{Type: TypeRadio, Title: "Single Choice", Group: "basic", HasOptions: true,
		Editor: renderOptionEditor, Preview: renderRadio,
		Public: renderRadio, Validate: valuePresent},
	{Type: TypeCheckbox, Title: "Multiple Choice", Group: "basic", HasOptions: true,
		Editor: renderOptionEditor, Preview: renderCheckbox,
		Public: renderCheckbox, Validate: valuePresent},
	{Type: TypeLongText, Title: "Long Text", Group: "additional",
		Editor: renderTextarea, Preview: renderTextarea,
		Public: renderTextarea, Validate: valuePresent},
	{Type: TypeScale, Title: "Scale Rating", Group: "additional",
		Editor: renderScale, Preview: renderScale,
		Public: renderScale, Validate: valuePresent},
	{Type: TypeDivider, Title: "Divider", Group: "additional", Structural: true,
		Editor: renderDivider, Preview: renderDivider, Public: renderDivider},
	{Type: TypePageBreak, Title: "Page Break", Group: "additional", Structural: true,
		Editor: renderPageBreak, Preview: renderPageBreak, Public: renderPageBreak},
	{Type: TypeSignature, Title: "Signature", Group: "additional",
		Editor: renderSignature, Preview: renderSignature, Public: renderSignature},
	{Type: TypeFileUpload, Title: "File Upload", Group: "additional",
		Editor: renderFileUpload, Preview: renderFileUpload,
		Public: renderFileUpload, Validate: valuePresent},
	{Type: TypeImageUpload, Title: "Image Upload", Group: "additional",
		Editor: renderImageUploadEditor, Preview: renderImageUpload,
		Public: renderImageUpload, Validate: valuePresent},
	{Type: TypeProductList, Title: "Product List", Group: "additional", HasOptions: true, HasPrice: true,
		Editor: renderProductListEditor, Preview: renderProductList,
		Public: renderProductList, Validate: valuePresent},
}

var kindIndex = make(map[string]*Kind, len(kinds))

func init() {
	for i := range kinds {
		kindIndex[kinds[i].Type] = &kinds[i]
	}
}

// Lookup returns the kind record for a field type.
func Lookup(fieldType string) (Kind, bool) {
	k, ok := kindIndex[fieldType]
	if !ok {
		return Kind{}, false
	}
	return *k, true
}

// Palette lists all kinds in display order.
func Palette() []Kind {
	return append([]Kind(nil), kinds...)
}

// valuePresent is the shared required rule: strings must be non-empty,
// arrays must have at least one element, nested objects must exist.
func valuePresent(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
