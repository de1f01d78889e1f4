package rewrite

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/kkyr/gitrewrite/gitstore"
	"github.com/pkg/errors"
)

// BuildGraph discovers every commit reachable from the source's local
// branch tips and records it into store: ParentsOf, ChildrenOf, RefTable
// and Roots (SPEC_FULL.md §4.1).
//
// It is a work-list walk over two disjoint sets, pending and done, exactly
// as spec.md §4.1 describes: pending holds commits discovered but not yet
// expanded, done holds commits already expanded. Because children are
// iterated with an ordinary Go range over a []plumbing.Hash rather than by
// advancing a raw cursor over packed bytes, the off-by-element-width bug
// named in spec.md §9 Open Question 1 cannot arise - see SPEC_FULL.md §4.1.
func BuildGraph(source gitstore.ObjectStore, store GraphStore) error {
	branches, err := source.Branches()
	if err != nil {
		return errors.Wrap(ErrOpenFailure, err.Error())
	}

	var pending []plumbing.Hash
	inPending := make(map[plumbing.Hash]struct{})

	enqueue := func(id plumbing.Hash) {
		if _, ok := inPending[id]; ok {
			return
		}
		inPending[id] = struct{}{}
		pending = append(pending, id)
	}

	for _, b := range branches {
		if err := store.SetRef(b.Name, b.Hash); err != nil {
			return err
		}
		enqueue(b.Hash)
	}

	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		delete(inPending, c)

		done, err := store.IsRecorded(c)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		commit, err := source.Commit(c)
		if err != nil {
			return errors.Wrapf(ErrLookupFailure, "commit %s: %s", c, err)
		}

		if err := store.RecordParents(c, commit.ParentHashes); err != nil {
			return err
		}

		for _, p := range commit.ParentHashes {
			recorded, err := store.IsRecorded(p)
			if err != nil {
				return err
			}
			if !recorded {
				enqueue(p)
			}
		}
	}

	return nil
}
