// Package storage defines the generated-site file-system abstraction.
package storage

import "github.com/starford/berkana/internal/models"

// Provider is the interface for site output file operations.
type Provider interface {
	// List returns metadata for every eligible document under dir
	// (relative to the site root).
	List(dir string) ([]models.Document, error)
	// Read returns the raw bytes of the file at path (relative to the
	// site root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the site root).
	Write(path string, content []byte) error
	// Eligible reports whether path is a document this pipeline processes.
	Eligible(path string) bool
}
