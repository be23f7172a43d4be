// Package categorytree implements single selection over an arbitrarily deep
// category tree.
package categorytree

import (
	"sync"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
)

type frame struct {
	node  *domain.CategoryNode
	depth int
}

// ResolveName returns the name of the node with the given id, or "" when the
// tree has no such node. Nodes are visited depth first, a node before its
// children and children in order; the first match wins.
func ResolveName(tree []domain.CategoryNode, id int64) string {
	if n := find(tree, id); n != nil {
		return n.Name
	}
	return ""
}

func find(tree []domain.CategoryNode, id int64) *domain.CategoryNode {
	stack := make([]*domain.CategoryNode, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, &tree[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID == id {
			return n
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}
	return nil
}

// Path returns the chain of nodes from a root down to the node with the
// given id, or nil when the id is absent.
func Path(tree []domain.CategoryNode, id int64) []domain.CategoryNode {
	stack := make([]frame, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: &tree[i]})
	}
	var trail []*domain.CategoryNode
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		trail = append(trail[:f.depth], f.node)
		if f.node.ID == id {
			path := make([]domain.CategoryNode, len(trail))
			for i, n := range trail {
				path[i] = *n
			}
			return path
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &f.node.Children[i], depth: f.depth + 1})
		}
	}
	return nil
}

// Descendants returns id together with the ids of every node below it, or
// nil when the id is absent.
func Descendants(tree []domain.CategoryNode, id int64) []int64 {
	root := find(tree, id)
	if root == nil {
		return nil
	}
	var ids []int64
	stack := []*domain.CategoryNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ids = append(ids, n.ID)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}
	return ids
}

// Select holds at most one selected category. It is safe for concurrent use.
type Select struct {
	mu       sync.RWMutex
	tree     []domain.CategoryNode
	selected int64
	expanded ExpandedKeys
}

// New creates a selector over tree.
func New(tree []domain.CategoryNode) *Select {
	return &Select{tree: tree, expanded: ExpandedKeys{}}
}

// SetTree replaces the tree, keeping the selection.
func (s *Select) SetTree(tree []domain.CategoryNode) {
	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()
}

// Select selects a node at any depth and expands its ancestors.
func (s *Select) Select(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
	path := Path(s.tree, id)
	for _, n := range path[:max(len(path)-1, 0)] {
		s.expanded[n.ID] = struct{}{}
	}
}

// Clear drops the selection.
func (s *Select) Clear() {
	s.mu.Lock()
	s.selected = 0
	s.mu.Unlock()
}

// Selected returns the selected id.
func (s *Select) Selected() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.selected != 0
}

// Label is the display name of the selection; empty when nothing is selected
// or the selected id is not in the tree.
func (s *Select) Label() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == 0 {
		return ""
	}
	return ResolveName(s.tree, s.selected)
}

// Toggle flips the expanded state of a node.
func (s *Select) Toggle(id int64) {
	s.mu.Lock()
	s.expanded.Toggle(id)
	s.mu.Unlock()
}

// Expanded reports whether a node is expanded.
func (s *Select) Expanded(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expanded.Has(id)
}

// CollapseAll collapses every node.
func (s *Select) CollapseAll() {
	s.mu.Lock()
	s.expanded = ExpandedKeys{}
	s.mu.Unlock()
}

// ExpandedKeys is the set of expanded node ids.
type ExpandedKeys map[int64]struct{}

func (k ExpandedKeys) Toggle(id int64) {
	if _, ok := k[id]; ok {
		delete(k, id)
		return
	}
	k[id] = struct{}{}
}

func (k ExpandedKeys) Has(id int64) bool {
	_, ok := k[id]
	return ok
}
