package rewrite_test

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/kkyr/gitrewrite/gitstore"
	"github.com/kkyr/gitrewrite/replace"
	"github.com/kkyr/gitrewrite/rewrite"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestRewrite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rewrite Suite")
}

func newMemStore() *gitstore.Store {
	repo, err := git.Init(memory.NewStorage(), nil)
	Expect(err).To(BeNil())
	return &gitstore.Store{Repository: repo}
}

func sig(name string) object.Signature {
	return object.Signature{Name: name, Email: name + "@example.com", When: time.Unix(0, 0).UTC()}
}

func mustTree(store *gitstore.Store, entries ...gitstore.TreeEntry) plumbing.Hash {
	id, err := store.NewTree(entries)
	Expect(err).To(BeNil())
	return id
}

func mustBlob(store *gitstore.Store, content string) plumbing.Hash {
	o := &plumbing.MemoryObject{}
	o.SetType(plumbing.BlobObject)
	o.Write([]byte(content))
	id, err := store.Storer.SetEncodedObject(o)
	Expect(err).To(BeNil())
	return id
}

func mustCommit(store *gitstore.Store, msg string, tree plumbing.Hash, parents ...plumbing.Hash) plumbing.Hash {
	id, err := store.NewCommit(&gitstore.NewCommitData{
		Author:       sig("a"),
		Committer:    sig("a"),
		Message:      msg,
		TreeHash:     tree,
		ParentHashes: parents,
	})
	Expect(err).To(BeNil())
	return id
}

var _ = Describe("Engine", func() {
	var store *gitstore.Store
	var rep replace.Replacer

	BeforeEach(func() {
		store = newMemStore()
		var err error
		rep, err = replace.New("old", "new")
		Expect(err).To(BeNil())
	})

	// S1: linear history, no match anywhere - every commit keeps its id.
	It("leaves a linear history untouched when nothing matches", func() {
		blob := mustBlob(store, "hello")
		tree := mustTree(store, gitstore.TreeEntry{Name: "file.txt", ID: blob, Mode: filemode.Regular})
		root := mustCommit(store, "root commit", tree)
		head := mustCommit(store, "second commit", tree, root)
		Expect(store.SetReference(plumbing.NewBranchReferenceName("main"), head)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RenameNames: true, RewriteMessages: true})
		Expect(e.Run()).To(BeNil())

		newHead, ok, err := e.Mapping(head)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(newHead).To(Equal(head))

		newRoot, ok, err := e.Mapping(root)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(newRoot).To(Equal(root))
	})

	// S2: linear history, a tree entry name matches - rewritten commit chain,
	// every commit from the matching one onward gets a new id.
	It("rewrites tree entry names and propagates new ids up the chain", func() {
		blob := mustBlob(store, "hello")
		oldTree := mustTree(store, gitstore.TreeEntry{Name: "old.txt", ID: blob, Mode: filemode.Regular})
		root := mustCommit(store, "root", oldTree)
		head := mustCommit(store, "second", oldTree, root)
		Expect(store.SetReference(plumbing.NewBranchReferenceName("main"), head)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RenameNames: true})
		Expect(e.Run()).To(BeNil())

		newRoot, ok, err := e.Mapping(root)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(newRoot).NotTo(Equal(root))

		rootData, err := store.Commit(newRoot)
		Expect(err).To(BeNil())
		treeData, err := store.Tree(rootData.TreeHash)
		Expect(err).To(BeNil())
		Expect(treeData.Entries[0].Name).To(Equal("new.txt"))

		newHead, ok, err := e.Mapping(head)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(newHead).NotTo(Equal(head))

		headData, err := store.Commit(newHead)
		Expect(err).To(BeNil())
		Expect(headData.ParentHashes).To(Equal([]plumbing.Hash{newRoot}))
	})

	// S3: merge commit - both parents must be mapped before the merge is
	// rewritten, and the new commit's parents must point at the new ids.
	It("waits for both parents of a merge commit before rewriting it", func() {
		blobA := mustBlob(store, "a")
		blobB := mustBlob(store, "b")
		treeA := mustTree(store, gitstore.TreeEntry{Name: "old.txt", ID: blobA, Mode: filemode.Regular})
		treeB := mustTree(store, gitstore.TreeEntry{Name: "b.txt", ID: blobB, Mode: filemode.Regular})

		root := mustCommit(store, "root", treeA)
		left := mustCommit(store, "left", treeA, root)
		right := mustCommit(store, "right", treeB, root)
		merge := mustCommit(store, "merge", treeB, left, right)

		Expect(store.SetReference(plumbing.NewBranchReferenceName("main"), merge)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RenameNames: true})
		Expect(e.Run()).To(BeNil())

		newLeft, ok, err := e.Mapping(left)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		newRight, ok, err := e.Mapping(right)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		newMerge, ok, err := e.Mapping(merge)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		mergeData, err := store.Commit(newMerge)
		Expect(err).To(BeNil())
		Expect(mergeData.ParentHashes).To(Equal([]plumbing.Hash{newLeft, newRight}))
	})

	// S4: two branches sharing ancestry - the shared ancestor is rewritten
	// exactly once and both branch tips observe the same new ancestor id.
	It("rewrites a shared ancestor once for two diverging branches", func() {
		blob := mustBlob(store, "x")
		tree := mustTree(store, gitstore.TreeEntry{Name: "old.txt", ID: blob, Mode: filemode.Regular})

		root := mustCommit(store, "root", tree)
		a := mustCommit(store, "branch a", tree, root)
		b := mustCommit(store, "branch b", tree, root)

		Expect(store.SetReference(plumbing.NewBranchReferenceName("a"), a)).To(BeNil())
		Expect(store.SetReference(plumbing.NewBranchReferenceName("b"), b)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RenameNames: true})
		Expect(e.Run()).To(BeNil())

		newRootA, _, err := e.Mapping(root)
		Expect(err).To(BeNil())

		aData, err := store.Commit(mustMap(e, a))
		Expect(err).To(BeNil())
		bData, err := store.Commit(mustMap(e, b))
		Expect(err).To(BeNil())

		Expect(aData.ParentHashes).To(Equal([]plumbing.Hash{newRootA}))
		Expect(bData.ParentHashes).To(Equal([]plumbing.Hash{newRootA}))
	})

	// S5: a commit declaring a non-default encoding keeps its message and
	// encoding tag verbatim, even when the message would otherwise match.
	It("preserves message and encoding tag on a non-default-encoding commit", func() {
		blob := mustBlob(store, "x")
		tree := mustTree(store, gitstore.TreeEntry{Name: "file.txt", ID: blob, Mode: filemode.Regular})

		commit := &object.Commit{
			Author:    sig("a"),
			Committer: sig("a"),
			Message:   "contains old text",
			Encoding:  "ISO-8859-1",
			TreeHash:  tree,
		}
		obj := store.Storer.NewEncodedObject()
		obj.SetType(plumbing.CommitObject)
		Expect(commit.Encode(obj)).To(BeNil())
		root, err := store.Storer.SetEncodedObject(obj)
		Expect(err).To(BeNil())

		Expect(store.SetReference(plumbing.NewBranchReferenceName("main"), root)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RewriteMessages: true})
		Expect(e.Run()).To(BeNil())

		newRoot, ok, err := e.Mapping(root)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		newData, err := store.Commit(newRoot)
		Expect(err).To(BeNil())
		Expect(newData.Message).To(Equal("contains old text"))
		Expect(newData.Encoding).To(Equal(object.MessageEncoding("ISO-8859-1")))
	})

	// S6: a submodule (gitlink) entry is preserved verbatim, never descended
	// into, even when rename is on and no name in the tree matches.
	It("preserves a submodule entry's id and mode untouched", func() {
		sub := plumbing.NewHash("1111111111111111111111111111111111111111")
		tree := mustTree(store, gitstore.TreeEntry{Name: "vendor/lib", ID: sub, Mode: filemode.Submodule})
		root := mustCommit(store, "root", tree)
		head := mustCommit(store, "second", tree, root)
		Expect(store.SetReference(plumbing.NewBranchReferenceName("main"), head)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RenameNames: true, RewriteMessages: true})
		Expect(e.Run()).To(BeNil())

		newRoot, _, err := e.Mapping(root)
		Expect(err).To(BeNil())
		Expect(newRoot).To(Equal(root))
	})

	It("force-updates the branch reference to the new tip after a rewrite", func() {
		blob := mustBlob(store, "x")
		tree := mustTree(store, gitstore.TreeEntry{Name: "old.txt", ID: blob, Mode: filemode.Regular})
		head := mustCommit(store, "root", tree)
		Expect(store.SetReference(plumbing.NewBranchReferenceName("main"), head)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RenameNames: true})
		Expect(e.Run()).To(BeNil())

		newHead, ok, err := e.Mapping(head)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		branches, err := store.Branches()
		Expect(err).To(BeNil())
		Expect(branches).To(HaveLen(1))
		Expect(branches[0].Hash).To(Equal(newHead))
	})

	It("rejects an unsupported tree entry kind", func() {
		bad := plumbing.NewHash("2222222222222222222222222222222222222222")
		tree := mustTree(store, gitstore.TreeEntry{Name: "weird", ID: bad, Mode: filemode.FileMode(0170000)})
		root := mustCommit(store, "root", tree)
		Expect(store.SetReference(plumbing.NewBranchReferenceName("main"), root)).To(BeNil())

		e := rewrite.New(store, rep, rewrite.Options{RenameNames: true})
		Expect(e.Run()).To(HaveOccurred())
	})
})

func mustMap(e *rewrite.Engine, old plumbing.Hash) plumbing.Hash {
	id, ok, err := e.Mapping(old)
	Expect(err).To(BeNil())
	Expect(ok).To(BeTrue())
	return id
}
