package gscl

import (
	"fmt"
	"math"
	"reflect"
)

//flatTree is a level-order copy of a Tree. Node 0 is the root and a node index is always
//greater than the index of its parent, so walking the indices backwards visits every node
//after all of its descendants.
//Leaf slots are numbered in depth-first pre-order, which gives every subtree a contiguous
//range [leafLo, leafHi) of slots.
type flatTree struct {
	nodes     []Node
	dists     []float64
	children  [][]int
	leafLo    []int
	leafHi    []int
	leafNames []string
}

func (ft *flatTree) size() int {
	return len(ft.nodes)
}

func (ft *flatTree) isLeaf(ind int) bool {
	return len(ft.children[ind]) == 0
}

//flatten enumerates the tree breadth-first and validates it on the way.
func flatten(tree Tree) (*flatTree, error) {
	if isNilValue(tree) {
		return nil, fmt.Errorf("%w: not a tree", ErrInvalidInput)
	}
	root := tree.Root()
	if isNilValue(root) {
		return nil, fmt.Errorf("%w: tree has no root", ErrInvalidInput)
	}

	ft := &flatTree{}
	seen := make(map[Node]struct{})
	ft.push(root, 0, seen)

	for ind := 0; ind < len(ft.nodes); ind++ {
		for _, child := range ft.nodes[ind].Children() {
			if isNilValue(child) {
				return nil, fmt.Errorf("%w: node %q has a nil child", ErrInvalidInput, ft.nodes[ind].Name())
			}
			if !ft.push(child, ind, seen) {
				return nil, fmt.Errorf("%w: node %q is reachable more than once", ErrInvalidInput, child.Name())
			}
			if err := validateDist(child); err != nil {
				return nil, err
			}
		}
	}

	if err := ft.assignLeafSlots(); err != nil {
		return nil, err
	}
	return ft, nil
}

//push appends a node and links it to its parent. It reports false when a comparable node
//has been seen before, which is how cycles and shared subtrees are caught.
func (ft *flatTree) push(node Node, parent int, seen map[Node]struct{}) bool {
	if reflect.TypeOf(node).Comparable() {
		if _, ok := seen[node]; ok {
			return false
		}
		seen[node] = struct{}{}
	}

	ind := len(ft.nodes)
	ft.nodes = append(ft.nodes, node)
	ft.dists = append(ft.dists, node.Dist())
	ft.children = append(ft.children, nil)
	if ind > 0 {
		ft.children[parent] = append(ft.children[parent], ind)
	}
	return true
}

func (ft *flatTree) assignLeafSlots() error {
	n := ft.size()
	ft.leafLo = make([]int, n)
	ft.leafHi = make([]int, n)
	names := make(map[string]struct{})

	stack := []int{0}
	for len(stack) > 0 {
		ind := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kids := ft.children[ind]
		if len(kids) == 0 {
			name := ft.nodes[ind].Name()
			if _, ok := names[name]; ok {
				return fmt.Errorf("%w: duplicate leaf name %q", ErrInvalidInput, name)
			}
			names[name] = struct{}{}
			ft.leafLo[ind] = len(ft.leafNames)
			ft.leafHi[ind] = len(ft.leafNames) + 1
			ft.leafNames = append(ft.leafNames, name)
			continue
		}
		for q := len(kids) - 1; q >= 0; q-- {
			stack = append(stack, kids[q])
		}
	}

	for ind := n - 1; ind >= 0; ind-- {
		kids := ft.children[ind]
		if len(kids) > 0 {
			ft.leafLo[ind] = ft.leafLo[kids[0]]
			ft.leafHi[ind] = ft.leafHi[kids[len(kids)-1]]
		}
	}
	return nil
}

//bottomUp returns the nodes of the subtree rooted at start in reversed level order.
func (ft *flatTree) bottomUp(start int) []int {
	if start == 0 {
		order := make([]int, ft.size())
		for ind := range order {
			order[ind] = len(order) - 1 - ind
		}
		return order
	}

	order := []int{start}
	for pos := 0; pos < len(order); pos++ {
		order = append(order, ft.children[order[pos]]...)
	}
	for p, q := 0, len(order)-1; p < q; p, q = p+1, q-1 {
		order[p], order[q] = order[q], order[p]
	}
	return order
}

func validateDist(node Node) error {
	dist := node.Dist()
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return fmt.Errorf("%w: branch length of %q is not finite", ErrInvalidInput, node.Name())
	}
	if dist < 0 {
		return fmt.Errorf("%w: branch length of %q is negative (%v)", ErrInvalidInput, node.Name(), dist)
	}
	return nil
}

func isNilValue(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

//LevelOrder returns all nodes of the tree breadth-first, root first. Siblings keep the
//order in which Children reports them.
func LevelOrder(tree Tree) ([]Node, error) {
	ft, err := flatten(tree)
	if err != nil {
		return nil, err
	}
	return ft.nodes, nil
}

//LeafCount returns the number of leaves of a valid tree.
func LeafCount(tree Tree) (int, error) {
	ft, err := flatten(tree)
	if err != nil {
		return 0, err
	}
	return len(ft.leafNames), nil
}
