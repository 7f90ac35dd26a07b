// Package fields holds the fixed vocabulary of book card fields and their
// label mappings: the remote page label used to locate a field during
// parsing, and the display label printed on rendered cards.
package fields

import (
	"fmt"

	"github.com/starford/berkana/internal/apperr"
)

// Field is one logical field name from the closed vocabulary.
type Field string

const (
	Subtitle       Field = "subtitle"
	OriginalTitle  Field = "original_title"
	Author         Field = "author"
	Translator     Field = "translator"
	Language       Field = "language"
	Publisher      Field = "publisher"
	PubYear        Field = "pub_year"
	PubMonth       Field = "pub_month"
	Binding        Field = "binding"
	Price          Field = "price"
	Pages          Field = "pages"
	ISBN           Field = "isbn"
	StandardNumber Field = "standard_number"
	Synopsis       Field = "synopsis"
	Series         Field = "series"
	Imprint        Field = "imprint"
)

type labels struct {
	source  string // label text anchoring the field on the remote page
	display string // label printed on the rendered card
}

// registry is built once; the vocabulary never changes at runtime.
var registry = map[Field]labels{
	Subtitle:       {source: "副标题:", display: "Subtitle"},
	OriginalTitle:  {source: "原作名:", display: "Original title"},
	Author:         {source: "作者:", display: "Author"},
	Translator:     {source: "译者:", display: "Translator"},
	Language:       {source: "语言:", display: "Language"},
	Publisher:      {source: "出版社:", display: "Publisher"},
	PubYear:        {source: "出版年:", display: "Year"},
	PubMonth:       {source: "出版年:", display: "Month"},
	Binding:        {source: "装帧:", display: "Binding"},
	Price:          {source: "定价:", display: "Price"},
	Pages:          {source: "页数:", display: "Pages"},
	ISBN:           {source: "ISBN:", display: "ISBN"},
	StandardNumber: {source: "统一书号:", display: "CSBN"},
	Synopsis:       {source: "内容简介", display: "Synopsis"},
	Series:         {source: "丛书:", display: "Series"},
	Imprint:        {source: "出品方:", display: "Imprint"},
}

// IsSupported reports whether f is part of the vocabulary.
func IsSupported(f Field) bool {
	_, ok := registry[f]
	return ok
}

// SourceLabel returns the remote page label anchoring f.
func SourceLabel(f Field) string {
	return registry[f].source
}

// DisplayLabel returns the card label for f.
func DisplayLabel(f Field) string {
	return registry[f].display
}

// ValidateOrder checks every configured name against the vocabulary and
// returns the typed field order. The first unknown name fails the whole
// configuration.
func ValidateOrder(names []string) ([]Field, error) {
	order := make([]Field, 0, len(names))
	for _, name := range names {
		f := Field(name)
		if !IsSupported(f) {
			return nil, fmt.Errorf("%w: %q", apperr.ErrUnsupportedField, name)
		}
		order = append(order, f)
	}
	return order, nil
}
