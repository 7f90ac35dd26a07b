// Package models defines the domain types for Berkana.
package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/starford/berkana/internal/fields"
)

// Book is the structured record for one catalog entry. The full vocabulary
// is always kept on the record regardless of which fields are configured
// for rendering, so a later field-order change never needs a re-fetch.
//
// Integer fields use pointers: nil means the value was absent or failed
// range validation. Price stays a raw string on purpose, its currency
// format varies across editions.
type Book struct {
	ID             string   `yaml:"id" json:"id"`
	Title          string   `yaml:"title" json:"title"`
	Name           string   `yaml:"name,omitempty" json:"name,omitempty"`
	Cover          string   `yaml:"cover,omitempty" json:"cover,omitempty"`
	SourceURL      string   `yaml:"url" json:"url"`
	Subtitle       string   `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	OriginalTitle  string   `yaml:"original_title,omitempty" json:"original_title,omitempty"`
	Authors        []string `yaml:"author,omitempty" json:"author,omitempty"`
	Translators    []string `yaml:"translator,omitempty" json:"translator,omitempty"`
	Language       string   `yaml:"language,omitempty" json:"language,omitempty"`
	Publisher      string   `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	PubYear        *int     `yaml:"pub_year,omitempty" json:"pub_year,omitempty"`
	PubMonth       *int     `yaml:"pub_month,omitempty" json:"pub_month,omitempty"`
	Binding        string   `yaml:"binding,omitempty" json:"binding,omitempty"`
	Price          string   `yaml:"price,omitempty" json:"price,omitempty"`
	Pages          *int     `yaml:"pages,omitempty" json:"pages,omitempty"`
	ISBN           string   `yaml:"isbn,omitempty" json:"isbn,omitempty"`
	StandardNumber string   `yaml:"standard_number,omitempty" json:"standard_number,omitempty"`
	Synopsis       string   `yaml:"synopsis,omitempty" json:"synopsis,omitempty"`
	Series         string   `yaml:"series,omitempty" json:"series,omitempty"`
	Imprint        string   `yaml:"imprint,omitempty" json:"imprint,omitempty"`
}

// DisplayTitle returns the fetched title, falling back to the token-supplied
// name when the remote page gave none.
func (b *Book) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Name
}

// FieldValue formats the value of one vocabulary field for display.
// The second return is false when the field has no value on this record.
func (b *Book) FieldValue(f fields.Field) (string, bool) {
	switch f {
	case fields.Subtitle:
		return b.Subtitle, b.Subtitle != ""
	case fields.OriginalTitle:
		return b.OriginalTitle, b.OriginalTitle != ""
	case fields.Author:
		return strings.Join(b.Authors, ", "), len(b.Authors) > 0
	case fields.Translator:
		return strings.Join(b.Translators, ", "), len(b.Translators) > 0
	case fields.Language:
		return b.Language, b.Language != ""
	case fields.Publisher:
		return b.Publisher, b.Publisher != ""
	case fields.PubYear:
		if b.PubYear == nil {
			return "", false
		}
		return strconv.Itoa(*b.PubYear), true
	case fields.PubMonth:
		if b.PubMonth == nil {
			return "", false
		}
		return strconv.Itoa(*b.PubMonth), true
	case fields.Binding:
		return b.Binding, b.Binding != ""
	case fields.Price:
		return b.Price, b.Price != ""
	case fields.Pages:
		if b.Pages == nil {
			return "", false
		}
		return strconv.Itoa(*b.Pages), true
	case fields.ISBN:
		return b.ISBN, b.ISBN != ""
	case fields.StandardNumber:
		return b.StandardNumber, b.StandardNumber != ""
	case fields.Synopsis:
		return b.Synopsis, b.Synopsis != ""
	case fields.Series:
		return b.Series, b.Series != ""
	case fields.Imprint:
		return b.Imprint, b.Imprint != ""
	}
	return "", false
}

// Document is a lightweight representation of one generated site file
// returned by storage listings.
type Document struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
