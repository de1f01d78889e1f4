package rewrite

import "github.com/go-git/go-git/v5/plumbing"

// memGraphStore is the default GraphStore: plain in-memory maps, adequate
// for any history that fits comfortably in RAM. plumbing.Hash is a
// comparable [20]byte array, so it is usable directly as a map key without
// any string conversion.
type memGraphStore struct {
	parentsOf  map[plumbing.Hash][]plumbing.Hash
	childrenOf map[plumbing.Hash]map[plumbing.Hash]struct{}
	roots      []plumbing.Hash
	rootSeen   map[plumbing.Hash]struct{}
	refs       []RefEntry
	oldToNew   map[plumbing.Hash]plumbing.Hash
}

// NewMemGraphStore returns the in-memory GraphStore implementation used by
// default.
func NewMemGraphStore() GraphStore {
	return &memGraphStore{
		parentsOf:  make(map[plumbing.Hash][]plumbing.Hash),
		childrenOf: make(map[plumbing.Hash]map[plumbing.Hash]struct{}),
		rootSeen:   make(map[plumbing.Hash]struct{}),
		oldToNew:   make(map[plumbing.Hash]plumbing.Hash),
	}
}

func (m *memGraphStore) RecordParents(child plumbing.Hash, parents []plumbing.Hash) error {
	if _, done := m.parentsOf[child]; done {
		return nil
	}

	cp := append([]plumbing.Hash{}, parents...)
	m.parentsOf[child] = cp

	if len(cp) == 0 {
		if _, seen := m.rootSeen[child]; !seen {
			m.rootSeen[child] = struct{}{}
			m.roots = append(m.roots, child)
		}
		return nil
	}

	for _, p := range cp {
		children, ok := m.childrenOf[p]
		if !ok {
			children = make(map[plumbing.Hash]struct{})
			m.childrenOf[p] = children
		}
		children[child] = struct{}{}
	}
	return nil
}

func (m *memGraphStore) IsRecorded(c plumbing.Hash) (bool, error) {
	_, ok := m.parentsOf[c]
	return ok, nil
}

func (m *memGraphStore) Parents(c plumbing.Hash) ([]plumbing.Hash, error) {
	return append([]plumbing.Hash{}, m.parentsOf[c]...), nil
}

func (m *memGraphStore) Children(p plumbing.Hash) ([]plumbing.Hash, error) {
	children := m.childrenOf[p]
	out := make([]plumbing.Hash, 0, len(children))
	for c := range children {
		out = append(out, c)
	}
	return out, nil
}

func (m *memGraphStore) Roots() ([]plumbing.Hash, error) {
	return append([]plumbing.Hash{}, m.roots...), nil
}

func (m *memGraphStore) SetRef(name plumbing.ReferenceName, id plumbing.Hash) error {
	for i, ref := range m.refs {
		if ref.Name == name {
			m.refs[i].Old = id
			return nil
		}
	}
	m.refs = append(m.refs, RefEntry{Name: name, Old: id})
	return nil
}

func (m *memGraphStore) Refs() ([]RefEntry, error) {
	return append([]RefEntry{}, m.refs...), nil
}

func (m *memGraphStore) SetMapping(old, new plumbing.Hash) error {
	m.oldToNew[old] = new
	return nil
}

func (m *memGraphStore) Mapping(old plumbing.Hash) (plumbing.Hash, bool, error) {
	new, ok := m.oldToNew[old]
	return new, ok, nil
}
