package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/berkana/internal/apperr"
	"github.com/starford/berkana/internal/testutil"
)

const sourceURL = "https://book.douban.com/subject/1449351/"

func TestParse_FixturePage(t *testing.T) {
	b, err := Parse(testutil.BookPage, sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Title != "呐喊" {
		t.Errorf("title = %q, want 呐喊", b.Title)
	}
	if b.SourceURL != sourceURL {
		t.Errorf("source url = %q", b.SourceURL)
	}
	if len(b.Authors) != 1 || b.Authors[0] != "鲁迅" {
		t.Errorf("authors = %v, want [鲁迅]", b.Authors)
	}
	// The publisher label is followed by whitespace, so the direct-text
	// lookup comes back empty and the sibling-link fallback must kick in.
	if b.Publisher != "人民文学出版社" {
		t.Errorf("publisher = %q", b.Publisher)
	}
	if b.PubYear == nil || *b.PubYear != 1973 {
		t.Errorf("pub_year = %v, want 1973", b.PubYear)
	}
	if b.PubMonth == nil || *b.PubMonth != 3 {
		t.Errorf("pub_month = %v, want 3", b.PubMonth)
	}
	if b.Pages == nil || *b.Pages != 160 {
		t.Errorf("pages = %v, want 160", b.Pages)
	}
	if b.Price != "0.36元" {
		t.Errorf("price = %q", b.Price)
	}
	if b.Binding != "平装" {
		t.Errorf("binding = %q", b.Binding)
	}
	if b.ISBN != "" {
		t.Errorf("isbn = %q, want empty", b.ISBN)
	}
	if b.Cover != "https://img/x.jpg" {
		t.Errorf("cover = %q", b.Cover)
	}
	if !strings.Contains(b.Synopsis, "短篇小说集") || !strings.Contains(b.Synopsis, "\n") {
		t.Errorf("synopsis = %q", b.Synopsis)
	}
}

func TestParse_MissingTitle(t *testing.T) {
	_, err := Parse("<html><body><div id='info'></div></body></html>", sourceURL)
	if !errors.Is(err, apperr.ErrMissingTitle) {
		t.Fatalf("err = %v, want ErrMissingTitle", err)
	}
}

func TestParse_MissingOptionalFieldsDegradeToZero(t *testing.T) {
	b, err := Parse("<html><body><h1><span>孤本</span></h1></body></html>", sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Publisher != "" || b.PubYear != nil || b.Pages != nil || b.Authors != nil {
		t.Errorf("optional fields should be zero: %+v", b)
	}
}

func TestParse_AuthorFallbackLayout(t *testing.T) {
	// Variant layout: label span carries a leading space and no colon;
	// names are plain sibling links.
	page := `<html><body><h1><span>朝花夕拾</span></h1>
<div id="info">
  <span><span class="pl"> 作者</span>: <a href="/a/1">鲁  迅</a> <a href="/a/2">周作人</a></span><br/>
</div></body></html>`
	b, err := Parse(page, sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Authors) != 2 {
		t.Fatalf("authors = %v, want 2 entries", b.Authors)
	}
	// Whitespace runs inside names collapse to a single space.
	if b.Authors[0] != "鲁 迅" || b.Authors[1] != "周作人" {
		t.Errorf("authors = %v", b.Authors)
	}
}

func TestParse_AuthorTruncated(t *testing.T) {
	long := strings.Repeat("名", 300)
	page := `<html><body><h1><span>t</span></h1>
<div id="info"><span class="pl">作者:</span> <a>` + long + `</a><br/></div></body></html>`
	b, err := Parse(page, sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len([]rune(b.Authors[0])); got != 200 {
		t.Errorf("author length = %d, want 200", got)
	}
}

func TestParse_SubtitleTruncated(t *testing.T) {
	long := strings.Repeat("副", 600)
	page := `<html><body><h1><span>t</span></h1>
<div id="info"><span class="pl">副标题:</span> ` + long + `<br/></div></body></html>`
	b, err := Parse(page, sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len([]rune(b.Subtitle)); got != 500 {
		t.Errorf("subtitle length = %d, want 500", got)
	}
}

func TestParse_TranslatorPrimaryLayout(t *testing.T) {
	page := `<html><body><h1><span>t</span></h1>
<div id="info">
  <span class="pl">译者:</span> <a>杨绛</a><br/>
  <span class="pl">作者:</span> <a>塞万提斯</a><br/>
</div></body></html>`
	b, err := Parse(page, sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Translators) != 1 || b.Translators[0] != "杨绛" {
		t.Errorf("translators = %v", b.Translators)
	}
	if len(b.Authors) != 1 || b.Authors[0] != "塞万提斯" {
		t.Errorf("authors = %v", b.Authors)
	}
}

func TestParse_SeriesAndStandardNumber(t *testing.T) {
	page := `<html><body><h1><span>t</span></h1>
<div id="info">
  <span class="pl">丛书:</span> <a href="/series/1">文学名著</a><br/>
  <span class="pl">统一书号:</span> 10019-1124<br/>
</div></body></html>`
	b, err := Parse(page, sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Series != "文学名著" {
		t.Errorf("series = %q", b.Series)
	}
	if b.StandardNumber != "10019-1124" {
		t.Errorf("standard number = %q", b.StandardNumber)
	}
}

func TestParse_ShortSynopsisVariantSkipped(t *testing.T) {
	page := `<html><body><h1><span>t</span></h1>
<h2><span>内容简介</span></h2>
<div><span class="short"><div class="intro"><p>preview…</p></div></span>
<div class="intro"><p>full text</p></div></div>
</body></html>`
	b, err := Parse(page, sourceURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Synopsis != "full text" {
		t.Errorf("synopsis = %q, want full text only", b.Synopsis)
	}
}
