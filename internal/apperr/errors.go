// Package apperr defines the sentinel errors shared across components.
package apperr

import "errors"

var (
	// ErrNotFound means a requested record is not in the shelf.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means the remote source answered with a non-success
	// status. Recoverable: the token that triggered the fetch stays in
	// place and document processing halts at that point.
	ErrUnavailable = errors.New("remote source unavailable")
	// ErrMalformedToken means a placeholder token does not split into the
	// expected 2 or 3 dot-separated parts. Fatal for the whole document.
	ErrMalformedToken = errors.New("malformed placeholder token")
	// ErrUnsupportedSource means a token's item ID does not belong to the
	// configured catalog source.
	ErrUnsupportedSource = errors.New("unsupported catalog source")
	// ErrUnsupportedField means a configured card field is outside the
	// fixed vocabulary. Surfaced at startup.
	ErrUnsupportedField = errors.New("unsupported field")
	// ErrMissingTitle means a fetched page yielded no title, so no usable
	// record could be built. The engine treats it like ErrUnavailable.
	ErrMissingTitle = errors.New("page has no title")
)
