package rewrite

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/kkyr/gitrewrite/gitstore"
	"github.com/kkyr/gitrewrite/replace"
	"github.com/sirupsen/logrus"
)

// Options configures an Engine at construction time. Per spec.md §9
// ("Global state"), every run-scoped choice - including the in-place vs.
// two-repository decision - is a field here, not a package-level variable.
type Options struct {
	// RenameNames enables tree entry name rewriting (-f).
	RenameNames bool

	// RewriteMessages enables commit message rewriting.
	RewriteMessages bool

	// Destination receives the rewritten objects and references. When nil,
	// Source is reused and references are force-updated in place - the
	// design note in spec.md §4.3 names this as the current evolution of
	// the reference implementation. A non-nil Destination implements the
	// two-repository design named as an earlier, equally valid revision
	// (spec.md §9).
	Destination gitstore.ObjectStore

	// Graph backs the four auxiliary maps. When nil, an in-memory
	// implementation is used (rewrite.NewMemGraphStore).
	Graph GraphStore

	// Log receives one diagnostic line per rebound reference. May be nil.
	Log logrus.FieldLogger
}

// Engine owns a single rewrite run: the source object store, the
// replacement rule and the auxiliary graph structures. It holds no
// process-global state and is safe to discard after Run returns.
type Engine struct {
	source      gitstore.ObjectStore
	destination gitstore.ObjectStore
	replacer    replace.Replacer
	graph       GraphStore
	opts        Options
}

// New constructs an Engine. replacer may be nil only when both
// opts.RenameNames and opts.RewriteMessages are false.
func New(source gitstore.ObjectStore, replacer replace.Replacer, opts Options) *Engine {
	destination := opts.Destination
	if destination == nil {
		destination = source
	}

	graph := opts.Graph
	if graph == nil {
		graph = NewMemGraphStore()
	}

	return &Engine{
		source:      source,
		destination: destination,
		replacer:    replacer,
		graph:       graph,
		opts:        opts,
	}
}

// Run executes the full rewrite: graph discovery, topological scheduling of
// tree and commit re-creation, and reference re-anchoring.
func (e *Engine) Run() error {
	if err := BuildGraph(e.source, e.graph); err != nil {
		return err
	}

	tree := NewTreeRewriter(e.source, e.destination, e.replacer, e.opts.RenameNames)
	commitRewriter := NewCommitRewriter(e.source, e.destination, tree, e.replacer, e.opts.RenameNames, e.opts.RewriteMessages)

	err := RunScheduler(e.graph, func(graph GraphStore, id plumbing.Hash) (plumbing.Hash, error) {
		return commitRewriter.Rewrite(graph, id)
	})
	if err != nil {
		return err
	}

	return RebindRefs(e.destination, e.graph, e.opts.Log)
}

// Mapping looks up the new id a source commit was rewritten to. It is only
// meaningful to call after Run has returned successfully.
func (e *Engine) Mapping(old plumbing.Hash) (plumbing.Hash, bool, error) {
	return e.graph.Mapping(old)
}
