package schema

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/zenrsr/form-craft/model"
)

// RenderContext selects which renderer of a kind's record is used.
type RenderContext int

const (
	EditorContext RenderContext = iota
	PreviewContext
	PublicContext
)

// RenderForm assembles the HTML fragment for a whole form in the given
// context: title, description, then every field in display order. Fields
// of unknown type render an "Unsupported field type" marker instead of
// breaking the page.
func RenderForm(form model.Form, ctx RenderContext) string {
	var b strings.Builder
	b.WriteString(`<h2>` + html.EscapeString(form.Title) + `</h2>`)
	if form.Description != "" {
		b.WriteString(`<p>` + html.EscapeString(form.Description) + `</p>`)
	}
	for _, f := range form.Fields {
		RenderField(&b, f, ctx)
	}
	return b.String()
}

// RenderField writes one field wrapped in its caption label. Structural
// kinds and headings render bare markup without a caption.
func RenderField(b *strings.Builder, f model.Field, ctx RenderContext) {
	kind, ok := Lookup(f.Type)
	if !ok {
		b.WriteString(`<p>Unsupported field type</p>`)
		return
	}

	b.WriteString(`<div class="form-field" data-field-id="` + html.EscapeString(f.ID) + `">`)
	if !kind.Structural {
		b.WriteString(`<label>` + html.EscapeString(f.Label) + `</label>`)
	}

	var render RenderFunc
	switch ctx {
	case EditorContext:
		render = kind.Editor
	case PreviewContext:
		render = kind.Preview
	default:
		render = kind.Public
	}
	render(b, f)

	b.WriteString(`</div>`)
}

func renderHeading(b *strings.Builder, f model.Field) {
	b.WriteString(`<h1>` + html.EscapeString(f.Label) + `</h1>`)
}

// inputRenderer builds an unnamed control for the editor and preview
// contexts, where no response is collected.
func inputRenderer(inputType, placeholder string) RenderFunc {
	return func(b *strings.Builder, f model.Field) {
		b.WriteString(`<input type="` + inputType + `"`)
		if placeholder != "" {
			b.WriteString(` placeholder="` + html.EscapeString(placeholder) + `"`)
		}
		b.WriteString(`>`)
	}
}

// publicInputRenderer names the control by the field's composite key so
// the submitted value lands under the key the validator and codec expect.
func publicInputRenderer(inputType string) RenderFunc {
	return func(b *strings.Builder, f model.Field) {
		fmt.Fprintf(b, `<input type="%s" name="%s" placeholder="%s">`,
			inputType, html.EscapeString(CompositeKey(f)), html.EscapeString(f.Label))
	}
}

var addressParts = []struct{ key, placeholder string }{
	{"street", "Street Address"},
	{"city", "City"},
	{"state", "State"},
	{"postalCode", "Postal Code"},
}

func renderAddress(b *strings.Builder, f model.Field) {
	for _, part := range addressParts {
		b.WriteString(`<input type="text" placeholder="` + part.placeholder + `">`)
	}
}

// Address responses are a nested object; the four sub-inputs are named
// "{compositeKey}.{subKey}" so the client can assemble them.
func renderPublicAddress(b *strings.Builder, f model.Field) {
	key := html.EscapeString(CompositeKey(f))
	for _, part := range addressParts {
		fmt.Fprintf(b, `<input type="text" name="%s.%s" placeholder="%s">`, key, part.key, part.placeholder)
	}
}

func renderDropdown(b *strings.Builder, f model.Field) {
	b.WriteString(`<select name="` + html.EscapeString(CompositeKey(f)) + `">`)
	for _, opt := range f.Options {
		escaped := html.EscapeString(opt)
		b.WriteString(`<option value="` + escaped + `">` + escaped + `</option>`)
	}
	b.WriteString(`</select>`)
}

func renderRadio(b *strings.Builder, f model.Field) {
	key := html.EscapeString(CompositeKey(f))
	for _, opt := range f.Options {
		escaped := html.EscapeString(opt)
		fmt.Fprintf(b, `<label><input type="radio" name="%s" value="%s"><span>%s</span></label>`, key, escaped, escaped)
	}
}

func renderCheckbox(b *strings.Builder, f model.Field) {
	key := html.EscapeString(CompositeKey(f))
	for _, opt := range f.Options {
		escaped := html.EscapeString(opt)
		fmt.Fprintf(b, `<label><input type="checkbox" name="%s" value="%s"><span>%s</span></label>`, key, escaped, escaped)
	}
}

func renderTextarea(b *strings.Builder, f model.Field) {
	b.WriteString(`<textarea rows="4" name="` + html.EscapeString(CompositeKey(f)) + `"></textarea>`)
}

func renderScale(b *strings.Builder, f model.Field) {
	key := html.EscapeString(CompositeKey(f))
	b.WriteString(`<p>Rate on a scale of 1 to 5:</p>`)
	for scale := 1; scale <= 5; scale++ {
		v := strconv.Itoa(scale)
		fmt.Fprintf(b, `<label><input type="radio" name="%s" value="%s"><span>%s</span></label>`, key, v, v)
	}
}

func renderDivider(b *strings.Builder, f model.Field) {
	b.WriteString(`<hr>`)
}

func renderPageBreak(b *strings.Builder, f model.Field) {
	b.WriteString(`<div class="page-break"></div>`)
}

func renderSignature(b *strings.Builder, f model.Field) {
	b.WriteString(`<div class="signature-placeholder">Signature Placeholder</div>`)
}

func renderFileUpload(b *strings.Builder, f model.Field) {
	b.WriteString(`<input type="file" name="` + html.EscapeString(CompositeKey(f)) + `">`)
}

func renderImageUpload(b *strings.Builder, f model.Field) {
	b.WriteString(`<input type="file" accept="image/*" name="` + html.EscapeString(CompositeKey(f)) + `">`)
}

func renderImageUploadEditor(b *strings.Builder, f model.Field) {
	b.WriteString(`<input type="file" accept="image/*">`)
	if f.PreviewURL != "" {
		b.WriteString(`<img src="` + html.EscapeString(f.PreviewURL) + `" alt="Preview">`)
	}
}

// renderOptionEditor is the editing surface for choice-like kinds: one
// text input per option plus an add-option control.
func renderOptionEditor(b *strings.Builder, f model.Field) {
	for _, opt := range f.Options {
		b.WriteString(`<input type="text" class="option-input" value="` + html.EscapeString(opt) + `" placeholder="Option">`)
	}
	b.WriteString(`<button type="button" class="add-option">Add Option</button>`)
}

func renderProductListEditor(b *strings.Builder, f model.Field) {
	b.WriteString(`<h3>My Products</h3>`)
	price := 0.0
	if f.Price != nil {
		price = *f.Price
	}
	for _, product := range f.Options {
		fmt.Fprintf(b, `<input type="text" value="%s" placeholder="Enter Product Name">`, html.EscapeString(product))
		fmt.Fprintf(b, `<input type="number" value="%s" placeholder="Price">`, formatPrice(price))
	}
	b.WriteString(`<button type="button" class="add-option">Add Product</button>`)
}

func renderProductList(b *strings.Builder, f model.Field) {
	key := html.EscapeString(CompositeKey(f))
	price := 0.0
	if f.Price != nil {
		price = *f.Price
	}
	b.WriteString(`<h3>My Products</h3>`)
	for _, product := range f.Options {
		escaped := html.EscapeString(product)
		fmt.Fprintf(b, `<label><input type="checkbox" name="%s" value="%s"><span>%s ($%s)</span></label>`,
			key, escaped, escaped, formatPrice(price))
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
