package rewrite

import "github.com/go-git/go-git/v5/plumbing"

// RefEntry is one (name, old commit id) pair captured into RefTable by
// GraphBuilder and consumed by RefRebinder once OldToNew is total.
type RefEntry struct {
	Name plumbing.ReferenceName
	Old  plumbing.Hash
}

// GraphStore owns the four auxiliary structures the spec calls ParentsOf,
// ChildrenOf, RefTable and OldToNew (plus Roots, which the spec treats as a
// single value but which SPEC_FULL.md §9 OQ2 corrects to a plural set). It
// is an interface, not a concrete map, so that very large histories can be
// driven through an on-disk backend (graphstore_bolt.go) without changing
// GraphBuilder/Scheduler/RefRebinder: see SPEC_FULL.md §5.
type GraphStore interface {
	// RecordParents records c's parents, in order, and registers c as a
	// child of each of them. Recording a commit with zero parents marks it
	// as a root. RecordParents is idempotent: recording the same child
	// twice is a no-op safeguard against double expansion, though
	// GraphBuilder's Done-set already prevents that from happening.
	RecordParents(child plumbing.Hash, parents []plumbing.Hash) error

	// IsRecorded reports whether c has already had RecordParents called on
	// it - the spec's Done-set membership test.
	IsRecorded(c plumbing.Hash) (bool, error)

	// Children returns the children of p in no particular order,
	// deduplicated.
	Children(p plumbing.Hash) ([]plumbing.Hash, error)

	// Parents returns c's parents in source order, as recorded by
	// RecordParents.
	Parents(c plumbing.Hash) ([]plumbing.Hash, error)

	// Roots returns every commit RecordParents saw with zero parents.
	Roots() ([]plumbing.Hash, error)

	// SetRef records a branch tip discovered by GraphBuilder. RefTable is a
	// RefName -> ObjectId map (spec.md §3): recording the same name twice
	// replaces its id rather than appending a duplicate entry.
	SetRef(name plumbing.ReferenceName, id plumbing.Hash) error

	// Refs returns every recorded branch tip.
	Refs() ([]RefEntry, error)

	// SetMapping records old -> new once a commit has been rewritten.
	// Entries are append-only: SetMapping is never called twice for the
	// same old id in a single run.
	SetMapping(old, new plumbing.Hash) error

	// Mapping looks up the new id for an old id. ok is false if old has not
	// been rewritten yet.
	Mapping(old plumbing.Hash) (new plumbing.Hash, ok bool, err error)
}
