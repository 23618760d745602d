// Package storage defines the output-directory file abstraction.
package storage

// Provider is the interface for generated-file operations. All paths are
// relative to the output directory root.
type Provider interface {
	// List returns the names of the Markdown files directly in the root
	// (non-recursive; subdirectories are not scanned).
	List() ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
