package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numbersRe    = regexp.MustCompile(`\d+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// parsePubDate digit-extracts a combined year/month token. One numeric
// group is a bare year; two or three groups are year then month, a
// trailing day group is discarded. Reversed locale ordering (year smaller
// than month) is swapped before range validation, and each part fails
// validation independently: year must be in [0, 3000), month in [1, 12].
func parsePubDate(raw string) (year, month *int) {
	groups := numbersRe.FindAllString(raw, -1)

	var y, m int
	var haveYear, haveMonth bool
	switch len(groups) {
	case 1:
		y, _ = strconv.Atoi(groups[0])
		haveYear = true
	case 2, 3:
		y, _ = strconv.Atoi(groups[0])
		m, _ = strconv.Atoi(groups[1])
		haveYear, haveMonth = true, true
	default:
		return nil, nil
	}

	if haveYear && haveMonth && y < m {
		y, m = m, y
	}
	if haveYear && y >= 0 && y < 3000 {
		year = &y
	}
	if haveMonth && m >= 1 && m <= 12 {
		month = &m
	}
	return year, month
}

// parsePages digit-extracts a page count; values outside (0, 999999]
// degrade to nil.
func parsePages(raw string) *int {
	group := numbersRe.FindString(raw)
	if group == "" {
		return nil
	}
	n, err := strconv.Atoi(group)
	if err != nil || n < 1 || n > 999999 {
		return nil
	}
	return &n
}

// collapseWhitespace trims s and squeezes internal whitespace runs into a
// single space.
func collapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// truncate hard-limits s to maxLen runes. A non-positive maxLen means no
// limit.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
