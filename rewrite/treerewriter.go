package rewrite

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/kkyr/gitrewrite/gitstore"
	"github.com/kkyr/gitrewrite/replace"
	"github.com/pkg/errors"
)

// TreeRewriter reconstructs a tree recursively, substituting entry names
// through a Replacer when renameNames is set. It preserves the source
// tree's id when nothing in its entire transitive closure changed - the
// single most important correctness invariant named in spec.md §4.2. It
// reads source trees from source and writes rewritten trees to dest -
// distinct stores in two-repository mode (spec.md §9 OQ4), the same store
// in the default in-place mode.
type TreeRewriter struct {
	source      gitstore.ObjectStore
	dest        gitstore.ObjectStore
	replacer    replace.Replacer
	renameNames bool
}

// NewTreeRewriter builds a TreeRewriter reading from source and writing to
// dest. replacer may be nil when renameNames is false.
func NewTreeRewriter(source, dest gitstore.ObjectStore, replacer replace.Replacer, renameNames bool) *TreeRewriter {
	return &TreeRewriter{source: source, dest: dest, replacer: replacer, renameNames: renameNames}
}

// Rewrite returns the id of the rewritten tree and whether anything in it
// (directly or in a sub-tree) changed.
func (t *TreeRewriter) Rewrite(id plumbing.Hash) (plumbing.Hash, bool, error) {
	src, err := t.source.Tree(id)
	if err != nil {
		return plumbing.ZeroHash, false, errors.Wrapf(ErrLookupFailure, "tree %s: %s", id, err)
	}

	entries := make([]gitstore.TreeEntry, len(src.Entries))
	anyChanged := false

	for i, e := range src.Entries {
		childID := e.ID

		switch e.Kind {
		case gitstore.KindTree:
			newChildID, childChanged, err := t.Rewrite(e.ID)
			if err != nil {
				return plumbing.ZeroHash, false, err
			}
			childID = newChildID
			anyChanged = anyChanged || childChanged
		case gitstore.KindBlob:
			// Blob content rewriting is a declared future feature
			// (spec.md §1); identity is preserved.
		case gitstore.KindCommit:
			// Submodule entries (gitlinks) are preserved verbatim
			// (spec.md §4.2, scenario S6).
		default:
			return plumbing.ZeroHash, false, errors.Wrapf(ErrUnsupportedTreeEntry, "entry %q in tree %s", e.Name, id)
		}

		name := e.Name
		if t.renameNames {
			newName, count := t.replacer.Replace(e.Name)
			if count > 0 {
				name = newName
				anyChanged = true
			}
		}

		entries[i] = gitstore.TreeEntry{Name: name, ID: childID, Mode: e.Mode, Kind: e.Kind}
	}

	if !anyChanged {
		return id, false, nil
	}

	newID, err := t.dest.NewTree(entries)
	if err != nil {
		return plumbing.ZeroHash, false, errors.Wrap(ErrCreateFailure, err.Error())
	}
	return newID, true, nil
}
