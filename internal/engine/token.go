package engine

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/starford/berkana/internal/apperr"
)

// tokenRe matches one placeholder occurrence:
//
//	<p>[GETBOOK://<source><id>.<display_title>(.<cover_override>)]</p>
//
// The pattern deliberately matches any body so that shape errors surface as
// hard failures instead of silently surviving in the output.
var tokenRe = regexp.MustCompile(`<p>\[GETBOOK://.+?\]</p>`)

const (
	tokenPrefix = "<p>[GETBOOK://"
	tokenSuffix = "]</p>"
)

// Token is one parsed placeholder. Ephemeral: it exists only inside
// document text and is never persisted.
type Token struct {
	ID            string
	DisplayTitle  string
	CoverOverride string
}

// parseToken splits a matched placeholder into its 2 or 3 dot-separated
// parts. Anything else is a shape error and fatal for the document. The
// split stops at the second dot so a cover URL keeps its own dots, and
// the third part must be an absolute URL: a tail that is not one is a
// stray dot in the body, not a cover override.
func parseToken(match string) (Token, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(match, tokenPrefix), tokenSuffix)
	parts := strings.SplitN(body, ".", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Token{}, fmt.Errorf("%w: %q", apperr.ErrMalformedToken, match)
	}
	tok := Token{ID: parts[0], DisplayTitle: parts[1]}
	if len(parts) == 3 {
		cover, err := url.Parse(parts[2])
		if err != nil || cover.Scheme == "" || cover.Host == "" {
			return Token{}, fmt.Errorf("%w: %q", apperr.ErrMalformedToken, match)
		}
		tok.CoverOverride = parts[2]
	}
	return tok, nil
}

// itemNumber validates that id belongs to source and returns its numeric
// part. Any other ID scheme is a hard error.
func itemNumber(id, source string) (string, error) {
	num, ok := strings.CutPrefix(id, source)
	if !ok || num == "" {
		return "", fmt.Errorf("%w: %q", apperr.ErrUnsupportedSource, id)
	}
	for _, r := range num {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", apperr.ErrUnsupportedSource, id)
		}
	}
	return num, nil
}
