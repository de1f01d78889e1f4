package rewrite

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/kkyr/gitrewrite/gitstore"
	"github.com/kkyr/gitrewrite/replace"
	"github.com/pkg/errors"
)

// CommitRewriter constructs the rewritten commit corresponding to a source
// commit whose parents have already been rewritten (spec.md §4.3). It reads
// the source commit from source and writes the rewritten commit to dest -
// distinct stores in two-repository mode (spec.md §9 OQ4), the same store
// in the default in-place mode.
type CommitRewriter struct {
	source         gitstore.ObjectStore
	dest           gitstore.ObjectStore
	tree           *TreeRewriter
	messageReplace replace.Replacer
	rewriteTree    bool
	rewriteMessage bool
}

// NewCommitRewriter builds a CommitRewriter. messageReplace may be nil when
// rewriteMessage is false.
func NewCommitRewriter(source, dest gitstore.ObjectStore, tree *TreeRewriter, messageReplace replace.Replacer, rewriteTree, rewriteMessage bool) *CommitRewriter {
	return &CommitRewriter{
		source:         source,
		dest:           dest,
		tree:           tree,
		messageReplace: messageReplace,
		rewriteTree:    rewriteTree,
		rewriteMessage: rewriteMessage,
	}
}

// Rewrite produces the new commit for src, given that graph already holds
// a mapping for every one of src's parents, and records the new mapping in
// graph before returning.
func (c *CommitRewriter) Rewrite(graph GraphStore, src plumbing.Hash) (plumbing.Hash, error) {
	source, err := c.source.Commit(src)
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrLookupFailure, "commit %s: %s", src, err)
	}

	newParents := make([]plumbing.Hash, len(source.ParentHashes))
	for i, p := range source.ParentHashes {
		newParent, ok, err := graph.Mapping(p)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if !ok {
			return plumbing.ZeroHash, errors.Wrapf(ErrMissingParentMapping, "commit %s, parent %s", src, p)
		}
		newParents[i] = newParent
	}

	message := source.Message
	if c.rewriteMessage && isDefaultEncoding(source.Encoding) {
		if out, count := c.messageReplace.Replace(source.Message); count > 0 {
			message = out
		}
	}
	// When a non-default encoding is declared, both the encoding tag and
	// the message are preserved verbatim - the "spec-clean" resolution of
	// spec.md §9 Open Question 3.

	treeID := source.TreeHash
	if c.rewriteTree {
		newTreeID, _, err := c.tree.Rewrite(source.TreeHash)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		treeID = newTreeID
	}

	newID, err := c.dest.NewCommit(&gitstore.NewCommitData{
		Author:       source.Author,
		Committer:    source.Committer,
		Message:      message,
		Encoding:     source.Encoding,
		TreeHash:     treeID,
		ParentHashes: newParents,
	})
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(ErrCreateFailure, err.Error())
	}

	if err := graph.SetMapping(src, newID); err != nil {
		return plumbing.ZeroHash, err
	}

	return newID, nil
}

// isDefaultEncoding reports whether a commit's declared encoding is the
// canonical unicode transfer encoding (or unset, which go-git and git
// itself both treat as UTF-8). go-git's Commit.Decode leaves Encoding set
// to "" for any commit with no "encoding" header at all - the common case
// - so the empty-string clause is required, not redundant with
// DefaultMessageEncoding. Any other declared encoding means the message
// bytes are not safe to run a UTF-8-oriented regexp substitution over,
// per spec.md §4.3 step 2.
func isDefaultEncoding(enc object.MessageEncoding) bool {
	return enc == "" || enc == object.DefaultMessageEncoding
}
