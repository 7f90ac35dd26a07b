// Package engine orchestrates the fetch/parse/cache/substitute pipeline:
// it scans generated documents for placeholder tokens, resolves each one
// against the shelf or the remote catalog, and substitutes rendered cards.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/berkana/internal/apperr"
	"github.com/starford/berkana/internal/card"
	"github.com/starford/berkana/internal/fetch"
	"github.com/starford/berkana/internal/models"
	"github.com/starford/berkana/internal/parser"
	"github.com/starford/berkana/internal/shelf"
	"github.com/starford/berkana/internal/storage"
)

// Engine resolves placeholder tokens and rewrites documents in place.
type Engine struct {
	store    storage.Provider
	shelf    *shelf.Shelf
	fetcher  fetch.Fetcher
	renderer *card.Renderer
	source   string // supported catalog source name, prefix of item IDs
	baseURL  string // canonical remote address prefix for item pages
	logger   *slog.Logger

	// wrote remembers checksums of content this engine produced, so the
	// watcher can tell its own writes apart from generator output.
	mu    sync.Mutex
	wrote map[string]string
}

// New creates an Engine.
func New(store storage.Provider, sh *shelf.Shelf, fetcher fetch.Fetcher, renderer *card.Renderer, source, baseURL string, logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		shelf:    sh,
		fetcher:  fetcher,
		renderer: renderer,
		source:   source,
		baseURL:  baseURL,
		logger:   logger,
		wrote:    make(map[string]string),
	}
}

// itemURL builds the canonical page address for an item number.
func (e *Engine) itemURL(num string) string {
	return strings.TrimSuffix(e.baseURL, "/") + "/" + num + "/"
}

// FetchByID fetches and parses the record behind a shelf ID. Used both by
// token resolution on a cache miss and by shelf refresh.
func (e *Engine) FetchByID(ctx context.Context, id string) (*models.Book, error) {
	num, err := itemNumber(id, e.source)
	if err != nil {
		return nil, err
	}
	url := e.itemURL(num)
	markup, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	b, err := parser.Parse(markup, url)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return b, nil
}

// resolve returns the record for tok, consulting the shelf first and the
// remote catalog on a miss. Token-supplied display title and cover
// override are merged into a copy of the record, never in place: shelf
// readers in watch mode hold the stored pointer, so an in-place merge
// would race them. The merged copy is persisted back into the shelf, so
// a manually-supplied value sticks across runs.
func (e *Engine) resolve(ctx context.Context, tok Token) (*models.Book, error) {
	b, ok := e.shelf.Get(tok.ID)
	if !ok {
		var err error
		b, err = e.FetchByID(ctx, tok.ID)
		if err != nil {
			return nil, err
		}
	}

	record := *b
	record.Name = tok.DisplayTitle
	if tok.CoverOverride != "" {
		record.Cover = tok.CoverOverride
	}
	e.shelf.Put(tok.ID, &record)
	return &record, nil
}

// softFailure reports whether err is a per-token resolution failure that
// halts substitution in the current document without aborting the run.
func softFailure(err error) bool {
	return errors.Is(err, apperr.ErrUnavailable) || errors.Is(err, apperr.ErrMissingTitle)
}

// ProcessDocument substitutes every placeholder token in text with a
// rendered card, scanning left to right in a single pass. On a soft
// failure the remainder of the document, current token included, is left
// verbatim and a warning names the token and file. A malformed token or an
// unsupported ID scheme aborts the document: the original text is returned
// alongside the error.
//
// A document without tokens comes back unchanged, which also makes the
// whole operation idempotent: substituted cards no longer match the
// pattern.
func (e *Engine) ProcessDocument(ctx context.Context, text, name string) (string, error) {
	var out strings.Builder
	cursor := 0

	for {
		loc := tokenRe.FindStringIndex(text[cursor:])
		if loc == nil {
			if cursor == 0 {
				return text, nil
			}
			out.WriteString(text[cursor:])
			return out.String(), nil
		}
		start, end := cursor+loc[0], cursor+loc[1]
		match := text[start:end]
		out.WriteString(text[cursor:start])

		tok, err := parseToken(match)
		if err != nil {
			return text, fmt.Errorf("%s: %w", name, err)
		}

		b, err := e.resolve(ctx, tok)
		if err != nil {
			if softFailure(err) {
				e.logger.Warn("engine: token not replaced",
					slog.String("token", match),
					slog.String("file", name),
					slog.String("shelf", e.shelf.Path()),
					slog.String("error", err.Error()))
				out.WriteString(text[start:])
				return out.String(), nil
			}
			return text, fmt.Errorf("%s: %w", name, err)
		}

		fragment, err := e.renderer.Render(b)
		if err != nil {
			return text, fmt.Errorf("%s: %w", name, err)
		}

		out.WriteString(fragment)
		cursor = end
	}
}

// ProcessFile runs substitution on one site file. Paths without the
// configured document extension pass through untouched. The file is only
// rewritten when its content actually changed.
func (e *Engine) ProcessFile(ctx context.Context, path string) error {
	if !e.store.Eligible(path) {
		return nil
	}
	data, err := e.store.Read(path)
	if err != nil {
		return err
	}

	text, err := e.ProcessDocument(ctx, string(data), path)
	if err != nil {
		return err
	}
	if text == string(data) {
		return nil
	}

	content := []byte(text)
	if err := e.store.Write(path, content); err != nil {
		return err
	}
	e.rememberWrite(path, storage.Checksum(content))
	e.logger.Info("engine: document enriched", slog.String("path", path))
	return nil
}

// SyncAll processes every eligible document under the site root. The first
// hard failure aborts the pass.
func (e *Engine) SyncAll(ctx context.Context) error {
	docs, err := e.store.List("")
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := e.ProcessFile(ctx, doc.Path); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) rememberWrite(path, checksum string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wrote[path] = checksum
}

// wroteChecksum reports whether checksum is the content the engine last
// wrote to path.
func (e *Engine) wroteChecksum(path, checksum string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wrote[path] == checksum
}
