package rewrite

import "github.com/pkg/errors"

// Sentinel error kinds. They are returned wrapped (via errors.Wrap/Wrapf at
// the site where they are first observed, per SPEC_FULL.md §7) so the
// original failure is never discarded, but callers can still test for the
// kind with errors.Is.
var (
	// ErrOpenFailure means the source branch set could not be enumerated.
	ErrOpenFailure = errors.New("open failure")

	// ErrLookupFailure means a referenced commit or tree id did not
	// resolve, during graph discovery or while rewriting.
	ErrLookupFailure = errors.New("lookup failure")

	// ErrOutOfMemory means the graph-map backend could not grow to hold a
	// new entry.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrMissingParentMapping means CommitRewriter was invoked on a commit
	// before all of its parents were rewritten - an engine bug, since the
	// Scheduler is responsible for this precondition.
	ErrMissingParentMapping = errors.New("missing parent mapping")

	// ErrUnsupportedTreeEntry means a tree entry's kind is none of
	// tree/blob/commit.
	ErrUnsupportedTreeEntry = errors.New("unsupported tree entry")

	// ErrCreateFailure means the object store rejected a new tree or commit.
	ErrCreateFailure = errors.New("create failure")

	// ErrRefMissingMapping means RefRebinder found a RefTable entry whose
	// old id never made it into OldToNew - also an engine bug.
	ErrRefMissingMapping = errors.New("reference missing mapping")

	// ErrContentRewriteUnsupported is returned by the CLI when its -c flag
	// is set: blob-content rewriting is a declared future feature (spec.md
	// §1), so the CLI accepts the flag and fails with this error rather
	// than silently ignoring it. The engine itself has no content option.
	ErrContentRewriteUnsupported = errors.New("content rewriting is not yet implemented")
)
