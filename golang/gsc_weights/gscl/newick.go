package gscl

import (
	"fmt"
	"io"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	gotree "github.com/evolbioinfo/gotree/tree"
)

//NewickTree exposes a tree parsed by gotree through the Tree interface.
//gotree stores an unrooted neighbour graph, so every node remembers the neighbour it was reached from.
type NewickTree struct {
	tree *gotree.Tree
}

type newickNode struct {
	node   *gotree.Node
	parent *gotree.Node
	edge   *gotree.Edge
}

//ParseNewick parses one tree in Newick format. The terminating semicolon is optional.
func ParseNewick(description string) (*NewickTree, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: empty tree description", ErrInvalidInput)
	}
	if !strings.HasSuffix(description, ";") {
		description += ";"
	}
	return ReadNewick(strings.NewReader(description))
}

//ReadNewick parses the first tree of a Newick stream.
func ReadNewick(source io.Reader) (*NewickTree, error) {
	tree, err := newick.NewParser(source).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: not a tree: %v", ErrInvalidInput, err)
	}
	return &NewickTree{tree: tree}, nil
}

func (t *NewickTree) Root() Node {
	if t == nil || t.tree == nil || t.tree.Root() == nil {
		return nil
	}
	return newickNode{node: t.tree.Root()}
}

func (n newickNode) Name() string {
	return n.node.Name()
}

//Dist returns the length of the edge to the parent. A missing length reads as zero.
//gotree stores a missing length as NIL_LENGTH (-1), so an explicit length of -1 reads as missing too;
//any other negative length is passed through and rejected by the propagator.
func (n newickNode) Dist() float64 {
	if n.edge == nil {
		return 0
	}
	length := n.edge.Length()
	if length == gotree.NIL_LENGTH {
		return 0
	}
	return length
}

func (n newickNode) Children() []Node {
	neighbours := n.node.Neigh()
	edges := n.node.Edges()
	children := make([]Node, 0, len(neighbours))
	for ind, neighbour := range neighbours {
		if neighbour == n.parent {
			continue
		}
		children = append(children, newickNode{node: neighbour, parent: n.node, edge: edges[ind]})
	}
	return children
}
