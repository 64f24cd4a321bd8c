package gscl

//Node is the read-only view of a tree node consumed by the propagator.
//Dist is the branch length from the parent of the node; it is ignored for the root.
//Name is only consulted for leaves.
//Cycles and shared subtrees are detected only when the dynamic Node type is comparable (usable
//as a map key); a cyclic tree of a non-comparable Node type is not detected and is a caller error.
type Node interface {
	Name() string
	Dist() float64
	Children() []Node
}

//Tree is a rooted tree. Any structure that can hand out its root node satisfies it.
type Tree interface {
	Root() Node
}

//TreeNode is a simple in-memory tree node. A TreeNode is also a Tree rooted at itself.
type TreeNode struct {
	Label        string
	BranchLength float64
	Subtrees     []*TreeNode
}

//NewLeaf creates a leaf at distance dist from its parent.
func NewLeaf(name string, dist float64) *TreeNode {
	return &TreeNode{Label: name, BranchLength: dist}
}

//NewClade creates an internal node with the given children.
func NewClade(name string, dist float64, children ...*TreeNode) *TreeNode {
	return &TreeNode{Label: name, BranchLength: dist, Subtrees: children}
}

func (node *TreeNode) Name() string {
	return node.Label
}

func (node *TreeNode) Dist() float64 {
	return node.BranchLength
}

//Children returns the direct children. A nil entry in Subtrees is passed through as a nil Node
//so that the propagator can reject it.
func (node *TreeNode) Children() []Node {
	if len(node.Subtrees) == 0 {
		return nil
	}
	children := make([]Node, len(node.Subtrees))
	for ind, child := range node.Subtrees {
		if child != nil {
			children[ind] = child
		}
	}
	return children
}

//Root returns the node itself. A nil *TreeNode has no root.
func (node *TreeNode) Root() Node {
	if node == nil {
		return nil
	}
	return node
}

//IsLeaf returns whether this node has no children.
func (node *TreeNode) IsLeaf() bool {
	return len(node.Subtrees) == 0
}

//LeafNames returns the names of the leaves below node in depth-first order.
func (node *TreeNode) LeafNames() (names []string) {
	stack := []*TreeNode{node}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == nil {
			continue
		}
		if current.IsLeaf() {
			names = append(names, current.Label)
			continue
		}
		for ind := len(current.Subtrees) - 1; ind >= 0; ind-- {
			stack = append(stack, current.Subtrees[ind])
		}
	}
	return
}
