package git

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	mirrorerrors "mirrorkit.dev/mirrorkit/internal/errors"
)

// EntryType tags a top-level tree entry as a blob or a nested tree.
type EntryType int

const (
	// BlobEntry is raw file content.
	BlobEntry EntryType = iota + 1
	// TreeEntry is a nested name-to-entry mapping.
	TreeEntry
)

func (t EntryType) String() string {
	switch t {
	case BlobEntry:
		return "blob"
	case TreeEntry:
		return "tree"
	default:
		return "unknown"
	}
}

// Entry is the resolved view of one top-level tree entry. Content is
// set for blobs, Children for trees.
type Entry struct {
	Type     EntryType
	Content  []byte
	Children []string
}

// treeNode is the in-memory state of one top-level entry during a
// transaction. Either hash points at an existing stored object, or
// pending content waits to be written at commit time.
type treeNode struct {
	mode    filemode.FileMode
	hash    plumbing.Hash
	content []byte
	pending bool
}

// Transaction is a scoped builder over the repository's current tree.
// All mutations happen against an in-memory view and are flushed as
// exactly one commit when the transaction scope returns nil; a scope
// that returns an error produces no commit at all.
type Transaction struct {
	repo  *Repository
	nodes map[string]*treeNode
}

// Commit opens a transaction seeded from the current HEAD tree, runs
// fn, and if fn succeeds writes every change as a single new commit
// advancing the current branch. committer may be nil, in which case
// the author signs as committer too. Identity timestamps default to
// the time of the commit.
func (r *Repository) Commit(message string, author Identity, committer *Identity, fn func(*Transaction) error) error {
	tx, err := r.newTransaction()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}

	if committer == nil {
		committer = &author
	}

	return tx.flush(message, author, *committer)
}

// newTransaction snapshots the top-level entries of the HEAD commit
// tree. An unborn HEAD yields an empty view.
func (r *Repository) newTransaction() (*Transaction, error) {
	tx := &Transaction{
		repo:  r,
		nodes: make(map[string]*treeNode),
	}

	head, err := r.repo.Head()
	if err == plumbing.ErrReferenceNotFound {
		return tx, nil
	}
	if err != nil {
		return nil, mirrorerrors.NewRepositoryInvalidError(r.root, err.Error())
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read head commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read head tree: %w", err)
	}

	for _, entry := range tree.Entries {
		tx.nodes[entry.Name] = &treeNode{
			mode: entry.Mode,
			hash: entry.Hash,
		}
	}

	return tx, nil
}

// Add creates or overwrites a blob at name. A nil content is an
// error; an empty non-nil slice is a valid zero-length blob.
func (tx *Transaction) Add(name string, content []byte) error {
	if content == nil {
		return mirrorerrors.NewMissingBlobContentError(name)
	}

	tx.nodes[name] = &treeNode{
		mode:    filemode.Regular,
		content: content,
		pending: true,
	}
	return nil
}

// Remove deletes the entry at name. Removing a name that is not
// present is a no-op.
func (tx *Transaction) Remove(name string) {
	delete(tx.nodes, name)
}

// EmptyIndex removes every top-level entry, resetting the tracked
// content before repopulating.
func (tx *Transaction) EmptyIndex() {
	for _, name := range tx.Entries() {
		tx.Remove(name)
	}
}

// Entries lists the names of all top-level entries, sorted.
func (tx *Transaction) Entries() []string {
	names := make([]string, 0, len(tx.nodes))
	for name := range tx.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry resolves the entry at name: blob content for blobs, child
// names for trees. An absent entry returns (nil, nil).
func (tx *Transaction) Entry(name string) (*Entry, error) {
	node, ok := tx.nodes[name]
	if !ok {
		return nil, nil
	}

	if node.pending {
		return &Entry{Type: BlobEntry, Content: node.content}, nil
	}

	if node.mode == filemode.Dir {
		tree, err := tx.repo.repo.TreeObject(node.hash)
		if err != nil {
			return nil, fmt.Errorf("failed to read tree %s: %w", name, err)
		}

		children := make([]string, 0, len(tree.Entries))
		for _, child := range tree.Entries {
			children = append(children, child.Name)
		}
		return &Entry{Type: TreeEntry, Children: children}, nil
	}

	blob, err := tx.repo.repo.BlobObject(node.hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", name, err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", name, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", name, err)
	}

	return &Entry{Type: BlobEntry, Content: content}, nil
}

// EntryOfType resolves the entry at name and additionally checks its
// type. A mismatch is an error; an absent entry is still (nil, nil).
func (tx *Transaction) EntryOfType(name string, want EntryType) (*Entry, error) {
	entry, err := tx.Entry(name)
	if err != nil || entry == nil {
		return entry, err
	}

	if entry.Type != want {
		return nil, mirrorerrors.NewEntryTypeMismatchError(name, want.String(), entry.Type.String())
	}

	return entry, nil
}

// flush writes pending blobs, assembles the new root tree, creates
// the commit object, and advances the current branch ref.
func (tx *Transaction) flush(message string, author, committer Identity) error {
	storer := tx.repo.repo.Storer

	entries := make([]object.TreeEntry, 0, len(tx.nodes))
	for name, node := range tx.nodes {
		hash := node.hash
		if node.pending {
			var err error
			hash, err = tx.writeBlob(node.content)
			if err != nil {
				return fmt.Errorf("failed to write blob %s: %w", name, err)
			}
		}

		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: node.mode,
			Hash: hash,
		})
	}

	sortTreeEntries(entries)

	tree := &object.Tree{Entries: entries}
	treeObj := storer.NewEncodedObject()
	if err := tree.Encode(treeObj); err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	treeHash, err := storer.SetEncodedObject(treeObj)
	if err != nil {
		return fmt.Errorf("failed to store tree: %w", err)
	}

	commit := &object.Commit{
		Author:    author.signature(),
		Committer: committer.signature(),
		Message:   message,
		TreeHash:  treeHash,
	}

	if head, err := tx.repo.repo.Head(); err == nil {
		commit.ParentHashes = []plumbing.Hash{head.Hash()}
	}

	commitObj := storer.NewEncodedObject()
	if err := commit.Encode(commitObj); err != nil {
		return fmt.Errorf("failed to encode commit: %w", err)
	}
	commitHash, err := storer.SetEncodedObject(commitObj)
	if err != nil {
		return fmt.Errorf("failed to store commit: %w", err)
	}

	target, err := tx.currentBranchRef()
	if err != nil {
		return err
	}

	return storer.SetReference(plumbing.NewHashReference(target, commitHash))
}

// currentBranchRef resolves the ref the new commit should advance:
// the branch HEAD points at, or HEAD itself when detached.
func (tx *Transaction) currentBranchRef() (plumbing.ReferenceName, error) {
	head, err := tx.repo.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	if head.Type() == plumbing.SymbolicReference {
		return head.Target(), nil
	}
	return plumbing.HEAD, nil
}

// writeBlob stores raw bytes as a blob object and returns its hash.
func (tx *Transaction) writeBlob(content []byte) (plumbing.Hash, error) {
	obj := tx.repo.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return plumbing.ZeroHash, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}

	return tx.repo.repo.Storer.SetEncodedObject(obj)
}

// sortTreeEntries orders entries the way git expects: byte order,
// with directory names comparing as if they had a trailing slash.
func sortTreeEntries(entries []object.TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ni, nj := entries[i].Name, entries[j].Name
		if entries[i].Mode == filemode.Dir {
			ni += "/"
		}
		if entries[j].Mode == filemode.Dir {
			nj += "/"
		}
		return ni < nj
	})
}
