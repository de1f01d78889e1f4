package gitstore

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// EntryKind classifies a tree entry the way the rewrite engine needs to see
// it, collapsing go-git's finer-grained file modes (regular, executable,
// symlink) into a single Blob kind since the engine treats file content
// uniformly.
type EntryKind int

const (
	KindTree EntryKind = iota
	KindBlob
	KindCommit // submodule / gitlink
	KindOther
)

func kindOf(m filemode.FileMode) EntryKind {
	switch m {
	case filemode.Dir:
		return KindTree
	case filemode.Submodule:
		return KindCommit
	case filemode.Regular, filemode.Executable, filemode.Symlink, filemode.Deprecated:
		return KindBlob
	default:
		return KindOther
	}
}

// TreeEntry is one (name, id, mode) triple, as read from or written to a
// tree object.
type TreeEntry struct {
	Name string
	ID   plumbing.Hash
	Mode filemode.FileMode
	Kind EntryKind
}

// TreeData is the read view of a tree object.
type TreeData struct {
	ID      plumbing.Hash
	Entries []TreeEntry
}

// CommitData is the read view of a commit object, trimmed to the fields the
// engine actually rewrites or preserves.
type CommitData struct {
	ID           plumbing.Hash
	Author       object.Signature
	Committer    object.Signature
	Message      string
	Encoding     object.MessageEncoding
	ParentHashes []plumbing.Hash
	TreeHash     plumbing.Hash
}

// NewCommitData is the write view used to construct a rewritten commit.
type NewCommitData struct {
	Author       object.Signature
	Committer    object.Signature
	Message      string
	Encoding     object.MessageEncoding
	ParentHashes []plumbing.Hash
	TreeHash     plumbing.Hash
}

// BranchRef is one local branch: its name and the commit its tip points at.
type BranchRef struct {
	Name plumbing.ReferenceName
	Hash plumbing.Hash
}
