package gitstore

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
)

// ObjectStore is the typed read/write capability the rewrite engine needs
// from a content-addressed repository. It is deliberately narrower than
// go-git's own *git.Repository: only the operations the engine touches are
// exposed, so the engine can be driven against a fake in tests without
// standing up a real repository.
type ObjectStore interface {
	// Branches enumerates local branches as (ref name, tip commit id) pairs.
	Branches() ([]BranchRef, error)

	// Commit reads a commit's author, committer, message, encoding, parent
	// ids and root tree id.
	Commit(id plumbing.Hash) (*CommitData, error)

	// Tree reads a tree's entries.
	Tree(id plumbing.Hash) (*TreeData, error)

	// Blob confirms a blob id resolves, returning it unchanged. Content
	// access is not used by name/message rewriting; the method exists so
	// the interface has a home for the declared future content-rewrite
	// feature.
	Blob(id plumbing.Hash) (plumbing.Hash, error)

	// NewTree constructs a tree from an ordered sequence of entries and
	// returns its id.
	NewTree(entries []TreeEntry) (plumbing.Hash, error)

	// NewCommit constructs a commit and returns its id.
	NewCommit(c *NewCommitData) (plumbing.Hash, error)

	// SetReference creates or force-updates a reference to point at id.
	SetReference(name plumbing.ReferenceName, id plumbing.Hash) error
}

// Store is the go-git-backed ObjectStore implementation. It wraps a
// *git.Repository the same way remote/repo.Repo wraps one: by embedding it
// and layering the narrower, engine-specific surface on top.
type Store struct {
	*git.Repository
	path string
}

// Open opens the repository at path, the same way repo.Get does.
func Open(path string) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, errors.Wrap(ErrOpenFailure, err.Error())
	}
	return &Store{Repository: repo, path: path}, nil
}

// Init creates a fresh repository at path for two-repository rewrites (see
// SPEC_FULL.md §9, Open Question 4).
func Init(path string, bare bool) (*Store, error) {
	repo, err := git.PlainInit(path, bare)
	if err != nil {
		return nil, errors.Wrap(ErrOpenFailure, err.Error())
	}
	return &Store{Repository: repo, path: path}, nil
}

// Path returns the filesystem path the store was opened at.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Branches() ([]BranchRef, error) {
	iter, err := s.Repository.Branches()
	if err != nil {
		return nil, errors.Wrap(ErrOpenFailure, err.Error())
	}
	defer iter.Close()

	var refs []BranchRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		refs = append(refs, BranchRef{Name: ref.Name(), Hash: ref.Hash()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrLookupFailure, err.Error())
	}
	return refs, nil
}

func (s *Store) Commit(id plumbing.Hash) (*CommitData, error) {
	c, err := s.CommitObject(id)
	if err != nil {
		return nil, errors.Wrapf(ErrLookupFailure, "commit %s: %s", id, err)
	}
	return &CommitData{
		ID:           c.Hash,
		Author:       c.Author,
		Committer:    c.Committer,
		Message:      c.Message,
		Encoding:     c.Encoding,
		ParentHashes: append([]plumbing.Hash{}, c.ParentHashes...),
		TreeHash:     c.TreeHash,
	}, nil
}

func (s *Store) Tree(id plumbing.Hash) (*TreeData, error) {
	t, err := s.TreeObject(id)
	if err != nil {
		return nil, errors.Wrapf(ErrLookupFailure, "tree %s: %s", id, err)
	}
	entries := make([]TreeEntry, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = TreeEntry{Name: e.Name, ID: e.Hash, Mode: e.Mode, Kind: kindOf(e.Mode)}
	}
	return &TreeData{ID: t.Hash, Entries: entries}, nil
}

func (s *Store) Blob(id plumbing.Hash) (plumbing.Hash, error) {
	b, err := s.BlobObject(id)
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrLookupFailure, "blob %s: %s", id, err)
	}
	return b.Hash, nil
}

func (s *Store) NewTree(entries []TreeEntry) (plumbing.Hash, error) {
	tree := &object.Tree{Entries: make([]object.TreeEntry, len(entries))}
	for i, e := range entries {
		mode := e.Mode
		if mode == filemode.Empty {
			mode = filemode.Regular
		}
		tree.Entries[i] = object.TreeEntry{Name: e.Name, Mode: mode, Hash: e.ID}
	}

	obj := s.Storer.NewEncodedObject()
	obj.SetType(plumbing.TreeObject)
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, errors.Wrap(ErrCreateFailure, err.Error())
	}
	id, err := s.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(ErrCreateFailure, err.Error())
	}
	return id, nil
}

func (s *Store) NewCommit(c *NewCommitData) (plumbing.Hash, error) {
	commit := &object.Commit{
		Author:       c.Author,
		Committer:    c.Committer,
		Message:      c.Message,
		Encoding:     c.Encoding,
		TreeHash:     c.TreeHash,
		ParentHashes: c.ParentHashes,
	}

	obj := s.Storer.NewEncodedObject()
	obj.SetType(plumbing.CommitObject)
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, errors.Wrap(ErrCreateFailure, err.Error())
	}
	id, err := s.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(ErrCreateFailure, err.Error())
	}
	return id, nil
}

func (s *Store) SetReference(name plumbing.ReferenceName, id plumbing.Hash) error {
	ref := plumbing.NewHashReference(name, id)
	if err := s.Storer.SetReference(ref); err != nil {
		return errors.Wrapf(err, "failed to update %s", name)
	}
	return nil
}
