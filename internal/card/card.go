// Package card renders a book record into a presentational HTML fragment.
// Rendering is pure: no I/O, no mutation of the record.
package card

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/starford/berkana/internal/fields"
	"github.com/starford/berkana/internal/models"
)

//go:embed template/bookcard.html
var bookcardTemplate string

// placeholder is printed for a configured field the record has no value for.
const placeholder = "n/a"

// Renderer turns records into card fragments using a fixed field order.
type Renderer struct {
	tmpl  *template.Template
	order []fields.Field
}

type line struct {
	Label string
	Value string
}

type cardData struct {
	Title string
	Cover string
	URL   string
	Lines []line
}

// New creates a Renderer for the given field order. The order must already
// be validated against the vocabulary.
func New(order []fields.Field) (*Renderer, error) {
	tmpl, err := template.New("bookcard").Parse(bookcardTemplate)
	if err != nil {
		return nil, fmt.Errorf("card: parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl, order: order}, nil
}

// Render produces the card fragment for b. A nil record renders nothing,
// propagating the upstream miss instead of emitting a blank card. All
// record text is escaped by the template engine.
func (r *Renderer) Render(b *models.Book) (string, error) {
	if b == nil {
		return "", nil
	}

	data := cardData{
		Title: b.DisplayTitle(),
		Cover: b.Cover,
		URL:   b.SourceURL,
		Lines: make([]line, 0, len(r.order)),
	}
	for _, f := range r.order {
		value, ok := b.FieldValue(f)
		if !ok {
			value = placeholder
		}
		data.Lines = append(data.Lines, line{Label: fields.DisplayLabel(f), Value: value})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("card: render %s: %w", b.ID, err)
	}
	return sb.String(), nil
}
