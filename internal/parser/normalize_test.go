package parser

import (
	"strconv"
	"testing"
)

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		in    string
		year  *int
		month *int
	}{
		{"1973-3", intp(1973), intp(3)},
		{"2020", intp(2020), nil},
		// Reversed locale ordering is swapped before validation; 13 is
		// then out of range for a month and degrades to nil on its own.
		{"13-2020", intp(2020), nil},
		{"3-1973", intp(1973), intp(3)},
		{"2001-9-11", intp(2001), intp(9)},
		{"2020年12月", intp(2020), intp(12)},
		{"", nil, nil},
		{"unknown", nil, nil},
		{"5000", nil, nil},
		{"5000-3", nil, intp(3)},
	}
	for _, tt := range tests {
		year, month := parsePubDate(tt.in)
		if !eq(year, tt.year) || !eq(month, tt.month) {
			t.Errorf("parsePubDate(%q) = (%s, %s), want (%s, %s)",
				tt.in, fmtp(year), fmtp(month), fmtp(tt.year), fmtp(tt.month))
		}
	}
}

func TestParsePages(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"160页", intp(160)},
		{"1000000页", nil},
		{"999999", intp(999999)},
		{"0页", nil},
		{"", nil},
		{"约300页", intp(300)},
	}
	for _, tt := range tests {
		if got := parsePages(tt.in); !eq(got, tt.want) {
			t.Errorf("parsePages(%q) = %s, want %s", tt.in, fmtp(got), fmtp(tt.want))
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := collapseWhitespace("  鲁\t\n 迅  "); got != "鲁 迅" {
		t.Errorf("collapseWhitespace = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("呐喊呐喊", 2); got != "呐喊" {
		t.Errorf("truncate runes = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Errorf("truncate unlimited = %q", got)
	}
}

func intp(n int) *int { return &n }

func eq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtp(p *int) string {
	if p == nil {
		return "nil"
	}
	return strconv.Itoa(*p)
}
