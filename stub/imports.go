package stub

// ImportSet is an insertion-ordered set of imports.
//
// Two imports are the same entry when path, alias and static flavor all
// match; the first occurrence keeps its position. The zero value is ready to use.
type ImportSet struct {
	entries []Import
	seen    map[Import]struct{}
}

// NewImportSet returns a set holding imports in order, duplicates dropped.
func NewImportSet(imports ...Import) *ImportSet {
	s := &ImportSet{}
	for _, imp := range imports {
		s.Add(imp)
	}
	return s
}

// Add appends imp unless an identical entry exists. It reports whether imp was new.
func (s *ImportSet) Add(imp Import) bool {
	if s.seen == nil {
		s.seen = make(map[Import]struct{})
	}
	if _, ok := s.seen[imp]; ok {
		return false
	}
	s.seen[imp] = struct{}{}
	s.entries = append(s.entries, imp)
	return true
}

// Merge appends every import of tree in source order and returns the set for chaining.
//
// Merging the same tree twice leaves the set as merging it once.
func (s *ImportSet) Merge(tree SyntaxTree) *ImportSet {
	for _, imp := range tree.Imports() {
		s.Add(imp)
	}
	return s
}

// Len returns the number of entries.
func (s *ImportSet) Len() int { return len(s.entries) }

// Slice returns a copy of the entries in insertion order.
func (s *ImportSet) Slice() []Import {
	out := make([]Import, len(s.entries))
	copy(out, s.entries)
	return out
}
