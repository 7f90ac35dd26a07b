// Package testutil provides shared test helpers: temp shelves, temp site
// roots, fixture catalog pages, and a canned fetcher.
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/berkana/internal/apperr"
	"github.com/starford/berkana/internal/shelf"
	"github.com/starford/berkana/internal/storage"
)

// DiscardLogger returns a logger whose output is dropped.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestShelf creates an empty shelf backed by a file in a temp dir.
func TestShelf(t *testing.T) *shelf.Shelf {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookshelf.yaml")
	sh, err := shelf.Load(path, DiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return sh
}

// TestSite creates a temp site root with a storage provider for .html files.
func TestSite(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root, ".html")
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// FakeFetcher serves canned markup keyed by URL. A URL without an entry
// degrades to apperr.ErrUnavailable, like a non-success response would.
type FakeFetcher struct {
	Pages map[string]string
	Err   error // returned unconditionally when set
	Calls int
}

// Fetch implements fetch.Fetcher.
func (f *FakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.Calls++
	if f.Err != nil {
		return "", f.Err
	}
	page, ok := f.Pages[url]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperr.ErrUnavailable, url)
	}
	return page, nil
}

// BookPage is a fixture catalog page in the remote source's layout: 呐喊,
// published 1973-3, 160 pages, 0.36元, no ISBN. The publisher label is
// followed by whitespace so its lookup exercises the sibling-link fallback.
const BookPage = `<html><body>
<h1><span property="v:itemreviewed">呐喊</span></h1>
<div id="mainpic"><a class="nbg" href="https://img/x.jpg"><img src="https://img/x.jpg" title="呐喊"></a></div>
<div id="info">
  <span class="pl">作者:</span> <a href="/author/1">鲁迅</a><br/>
  <span class="pl">出版社:</span> <a href="/press/1">人民文学出版社</a><br/>
  <span class="pl">出版年:</span> 1973-3<br/>
  <span class="pl">页数:</span> 160页<br/>
  <span class="pl">定价:</span> 0.36元<br/>
  <span class="pl">装帧:</span> 平装<br/>
</div>
<h2><span>内容简介</span></h2>
<div class="related_info"><div class="intro"><p>《呐喊》是鲁迅的短篇小说集。</p><p>收录十四篇作品。</p></div></div>
</body></html>`
