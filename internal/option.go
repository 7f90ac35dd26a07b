package internal

import "github.com/starford/berkana/internal/fetch"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	fetcher fetch.Fetcher
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFetcher overrides the remote fetcher. Used by tests to avoid real
// network calls.
func WithFetcher(f fetch.Fetcher) Option {
	return func(a *application) {
		a.fetcher = f
	}
}
