package gitstore

import "github.com/pkg/errors"

// Sentinel errors returned by the ObjectStore implementation. Callers should
// compare with errors.Is/errors.Cause rather than matching on message text.
var (
	// ErrOpenFailure means the repository at the given path could not be opened.
	ErrOpenFailure = errors.New("failed to open repository")

	// ErrLookupFailure means a referenced object id could not be resolved.
	ErrLookupFailure = errors.New("object lookup failed")

	// ErrUnsupportedTreeEntry means a tree entry's mode does not map to any
	// of tree, blob or commit (gitlink).
	ErrUnsupportedTreeEntry = errors.New("unsupported tree entry kind")

	// ErrCreateFailure means the store rejected a new commit or tree object.
	ErrCreateFailure = errors.New("failed to create object")
)
