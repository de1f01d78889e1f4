package rewrite

import "github.com/go-git/go-git/v5/plumbing"

// RunScheduler drives the global topological rewrite order: every root is
// seeded first (spec.md §9 Open Question 2 - all of them, not just the
// last discovered), then each commit is rewritten exactly once, strictly
// after all of its parents, before any of its children (spec.md §4.4).
//
// Dequeue order is FIFO within a ready level; this is observable in log
// output but has no bearing on the resulting object graph, since commit
// identity depends only on author, committer, parents, tree and message.
func RunScheduler(graph GraphStore, rewriteCommit func(GraphStore, plumbing.Hash) (plumbing.Hash, error)) error {
	roots, err := graph.Roots()
	if err != nil {
		return err
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

	for _, r := range roots {
		enqueue(r)
	}

	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		delete(inPending, c)

		if _, err := rewriteCommit(graph, c); err != nil {
			return err
		}

		children, err := graph.Children(c)
		if err != nil {
			return err
		}

		for _, child := range children {
			ready, err := allParentsMapped(graph, child)
			if err != nil {
				return err
			}
			if ready {
				enqueue(child)
			}
		}
	}

	return nil
}

// allParentsMapped reports whether every parent of child already has an
// entry in OldToNew - the readiness test spec.md §4.4 names.
func allParentsMapped(graph GraphStore, child plumbing.Hash) (bool, error) {
	parents, err := graph.Parents(child)
	if err != nil {
		return false, err
	}
	for _, p := range parents {
		_, ok, err := graph.Mapping(p)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
