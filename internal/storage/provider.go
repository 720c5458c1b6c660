// Package storage defines the run artifact store. Every dispatched solver
// request is persisted under its fileKey so the callback handler can
// validate the response against what was actually submitted.
package storage

// Provider is the interface for artifact blob operations, keyed by the
// run's fileKey.
type Provider interface {
	// Put atomically stores an artifact under fileKey, replacing any
	// previous content.
	Put(fileKey string, data []byte) error
	// Get returns the artifact stored under fileKey;
	// apperr.ErrNotFound when none exists.
	Get(fileKey string) ([]byte, error)
	// Delete removes the artifact under fileKey.
	Delete(fileKey string) error
}
