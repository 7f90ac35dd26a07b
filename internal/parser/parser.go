// Package parser extracts a structured book record from a catalog page.
//
// Extraction is label-anchored against the known page layout: each field is
// located by finding its landmark label inside the info block and reading
// the structurally adjacent text. Missing optional fields degrade to their
// zero value; only a missing title fails the record.
package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/starford/berkana/internal/apperr"
	"github.com/starford/berkana/internal/fields"
	"github.com/starford/berkana/internal/models"
)

const (
	maxNameLen  = 200
	maxTitleLen = 500
)

// Parse builds a Book from raw page markup. sourceURL is recorded on the
// result as the record's canonical remote address.
func Parse(markup, sourceURL string) (*models.Book, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1 span").First().Text())
	if title == "" {
		return nil, fmt.Errorf("parser: %s: %w", sourceURL, apperr.ErrMissingTitle)
	}

	info := doc.Find("#info")

	b := &models.Book{
		Title:          title,
		SourceURL:      sourceURL,
		Subtitle:       truncate(labeledText(info, fields.SourceLabel(fields.Subtitle)), maxTitleLen),
		OriginalTitle:  truncate(labeledText(info, fields.SourceLabel(fields.OriginalTitle)), maxTitleLen),
		Language:       labeledText(info, fields.SourceLabel(fields.Language)),
		Binding:        labeledText(info, fields.SourceLabel(fields.Binding)),
		Price:          labeledText(info, fields.SourceLabel(fields.Price)),
		ISBN:           labeledText(info, fields.SourceLabel(fields.ISBN)),
		StandardNumber: labeledText(info, fields.SourceLabel(fields.StandardNumber)),
		Series:         labeledLinkText(info, fields.SourceLabel(fields.Series)),
		Imprint:        labeledLinkText(info, fields.SourceLabel(fields.Imprint)),
		Synopsis:       synopsis(doc),
		Cover:          coverURL(doc),
	}

	// Publisher: direct following text first, sibling link as fallback.
	b.Publisher = labeledText(info, fields.SourceLabel(fields.Publisher))
	if b.Publisher == "" {
		b.Publisher = labeledLinkText(info, fields.SourceLabel(fields.Publisher))
	}

	b.PubYear, b.PubMonth = parsePubDate(labeledText(info, fields.SourceLabel(fields.PubYear)))
	b.Pages = parsePages(labeledText(info, fields.SourceLabel(fields.Pages)))

	b.Authors = people(info, fields.SourceLabel(fields.Author), maxNameLen)
	b.Translators = people(info, fields.SourceLabel(fields.Translator), 0)

	return b, nil
}

// findLabel returns the span node inside sel whose text equals label.
func findLabel(sel *goquery.Selection, label string) *html.Node {
	var found *html.Node
	sel.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Text() == label {
			found = s.Nodes[0]
			return false
		}
		return true
	})
	return found
}

// labeledText locates label inside sel and returns the first text that
// follows it in document order, trimmed. Whitespace-only adjacency counts
// as absent, which is what pushes callers to their link fallbacks.
func labeledText(sel *goquery.Selection, label string) string {
	span := findLabel(sel, label)
	if span == nil {
		return ""
	}
	return strings.TrimSpace(firstFollowingText(span))
}

// labeledLinkText locates label inside sel and returns the text of the
// first sibling link after it.
func labeledLinkText(sel *goquery.Selection, label string) string {
	span := findLabel(sel, label)
	if span == nil {
		return ""
	}
	for n := span.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.Data == "a" {
			return strings.TrimSpace(nodeText(n))
		}
	}
	return ""
}

// people extracts an author-style name list. The page has two layouts:
// the primary one anchors names as sibling links between the label span
// and the next line break; the fallback variant prefixes the label with a
// space and keeps every sibling link. The fallback is only consulted when
// the primary yields nothing.
func people(sel *goquery.Selection, label string, maxLen int) []string {
	names := siblingLinksUntilBreak(sel, label)
	if len(names) == 0 {
		names = siblingLinks(sel, " "+strings.TrimSuffix(label, ":"))
	}
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, truncate(collapseWhitespace(name), maxLen))
	}
	return out
}

// siblingLinksUntilBreak collects link text between the label span and the
// first <br> that follows it.
func siblingLinksUntilBreak(sel *goquery.Selection, label string) []string {
	span := findLabel(sel, label)
	if span == nil {
		return nil
	}
	var out []string
	for n := span.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		if n.Data == "br" {
			break
		}
		if n.Data == "a" {
			if t := strings.TrimSpace(nodeText(n)); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// siblingLinks collects the text of every sibling link after the label span.
func siblingLinks(sel *goquery.Selection, label string) []string {
	span := findLabel(sel, label)
	if span == nil {
		return nil
	}
	var out []string
	for n := span.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.Data == "a" {
			if t := strings.TrimSpace(nodeText(n)); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// synopsis joins the intro paragraphs of the full-length description block,
// skipping the collapsed "short" preview the page also embeds.
func synopsis(doc *goquery.Document) string {
	var heading *goquery.Selection
	doc.Find("h2 span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Text() == fields.SourceLabel(fields.Synopsis) {
			heading = s.Parent()
			return false
		}
		return true
	})
	if heading == nil {
		return ""
	}
	block := heading.NextFiltered("div")
	var paras []string
	block.Find("div.intro p").Each(func(_ int, p *goquery.Selection) {
		if p.ParentsFiltered("span.short").Length() > 0 {
			return
		}
		if t := strings.TrimSpace(p.Text()); t != "" {
			paras = append(paras, t)
		}
	})
	return strings.Join(paras, "\n")
}

func coverURL(doc *goquery.Document) string {
	src, _ := doc.Find("#mainpic a img").First().Attr("src")
	return strings.TrimSpace(src)
}

// firstFollowingText returns the first text node after n in document order,
// excluding n's own subtree.
func firstFollowingText(n *html.Node) string {
	cur := nextInDocument(n)
	for cur != nil {
		if cur.Type == html.TextNode {
			return cur.Data
		}
		if cur.FirstChild != nil {
			cur = cur.FirstChild
			continue
		}
		cur = nextInDocument(cur)
	}
	return ""
}

// nextInDocument returns the preorder successor of n, skipping n's subtree.
func nextInDocument(n *html.Node) *html.Node {
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
