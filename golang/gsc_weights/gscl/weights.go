package gscl

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

//Epsilon replaces a branch length of exactly zero. It is the smallest positive normal float64.
const Epsilon = 0x1p-1022

//PropagatorParams collect arguments required to construct a propagator.
type PropagatorParams struct {
	Logger     *zap.Logger
	ThreadsNum int
}

//Propagator computes GSC weights. It holds no per-call state and can be shared between goroutines.
type Propagator struct {
	logger     *zap.Logger
	threadsNum int
}

//NewPropagator creates a new propagator. A nil logger discards log output, ThreadsNum below 2
//selects the sequential pass.
func NewPropagator(params PropagatorParams) *Propagator {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threadsNum := params.ThreadsNum
	if threadsNum < 1 {
		threadsNum = 1
	}
	return &Propagator{logger: logger, threadsNum: threadsNum}
}

var defaultPropagator = NewPropagator(PropagatorParams{})

//Compute returns the unnormalised GSC weight of every leaf of the tree.
func Compute(tree Tree) (ScoreTable, error) {
	return defaultPropagator.Compute(tree)
}

//Normalize rescales scores so that their mean is 1.
func Normalize(scores ScoreTable) (ScoreTable, error) {
	return defaultPropagator.Normalize(scores)
}

//GSC computes the weights of the tree and normalises them when normalise is set.
func GSC(tree Tree, normalise bool) (ScoreTable, error) {
	return defaultPropagator.GSC(tree, normalise)
}

//GSC computes the weights of the tree and normalises them when normalise is set.
func (p *Propagator) GSC(tree Tree, normalise bool) (ScoreTable, error) {
	scores, err := p.Compute(tree)
	if err != nil || !normalise {
		return scores, err
	}
	return p.Normalize(scores)
}

//Compute walks the tree from the deepest level up to the root. A leaf gets the length of the
//branch above it; every internal child then spreads its own branch length over the leaves
//below it in proportion to their current scores.
func (p *Propagator) Compute(tree Tree) (ScoreTable, error) {
	ft, err := flatten(tree)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(ft.leafNames))
	switch {
	case ft.isLeaf(0):
		// a lone root leaf has no incoming branch
		scores[0] = Epsilon
	case p.threadsNum > 1 && len(ft.children[0]) > 1:
		err = p.propagateForkJoin(ft, scores)
	default:
		err = p.propagate(ft, ft.bottomUp(0), scores)
	}
	if err != nil {
		return nil, err
	}

	table := make(ScoreTable, len(scores))
	for slot, name := range ft.leafNames {
		table[name] = scores[slot]
	}
	p.logger.Debug("gsc weights computed",
		zap.Int("nodes", ft.size()),
		zap.Int("leaves", len(scores)),
		zap.Int("threads", p.threadsNum))
	return table, nil
}

//propagate visits the nodes in the given order, which must list every node after its descendants.
func (p *Propagator) propagate(ft *flatTree, order []int, scores []float64) error {
	for _, ind := range order {
		if err := p.visit(ft, ind, scores); err != nil {
			return err
		}
	}
	return nil
}

//propagateForkJoin resolves the subtrees of the root concurrently and then applies the
//contribution of the root's own branches. Subtrees own disjoint leaf slots.
func (p *Propagator) propagateForkJoin(ft *flatTree, scores []float64) error {
	var group errgroup.Group
	group.SetLimit(p.threadsNum)

	for _, child := range ft.children[0] {
		if ft.isLeaf(child) {
			continue
		}
		group.Go(func() error {
			return p.propagate(ft, ft.bottomUp(child), scores)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return p.visit(ft, 0, scores)
}

//visit applies the contribution of each branch leaving node ind.
func (p *Propagator) visit(ft *flatTree, ind int, scores []float64) error {
	for _, child := range ft.children[ind] {
		dist := p.branchLength(ft, child)

		if ft.isLeaf(child) {
			scores[ft.leafLo[child]] = dist
			continue
		}

		subtree := scores[ft.leafLo[child]:ft.leafHi[child]]
		sumWeights := floats.Sum(subtree)
		if sumWeights == 0 || math.IsInf(sumWeights, 0) || math.IsNaN(sumWeights) {
			return fmt.Errorf("%w: leaves below %q have a degenerate total score %v",
				ErrInvalidInput, ft.nodes[child].Name(), sumWeights)
		}
		for q, score := range subtree {
			updated := score + dist*score/sumWeights
			if math.IsInf(updated, 0) || math.IsNaN(updated) {
				return fmt.Errorf("%w: score of %q overflows below %q",
					ErrInvalidInput, ft.leafNames[ft.leafLo[child]+q], ft.nodes[child].Name())
			}
			subtree[q] = updated
		}
	}
	return nil
}

//branchLength substitutes Epsilon for an exactly zero branch. Lengths that are positive but
//below Epsilon are used as they are.
func (p *Propagator) branchLength(ft *flatTree, ind int) float64 {
	dist := ft.dists[ind]
	if dist == 0 {
		return Epsilon
	}
	if dist < Epsilon {
		p.logger.Warn("subnormal branch length is not substituted",
			zap.String("node", ft.nodes[ind].Name()),
			zap.Float64("dist", dist))
	}
	return dist
}

//Normalize rescales scores so that their arithmetic mean is 1. The table is rejected when it is
//empty, holds a negative or non-finite value, or sums to zero.
func (p *Propagator) Normalize(scores ScoreTable) (ScoreTable, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: empty score table", ErrInvalidInput)
	}

	names := scores.Names()
	values := scores.Values(names)
	for ind, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return nil, fmt.Errorf("%w: score of %q is %v", ErrInvalidInput, names[ind], value)
		}
	}

	total := floats.Sum(values)
	if total == 0 {
		return nil, fmt.Errorf("%w: total score is zero", ErrDivisionByZero)
	}
	if math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total score overflows", ErrInvalidInput)
	}

	n := float64(len(values))
	normalised := make(ScoreTable, len(values))
	for ind, name := range names {
		normalised[name] = values[ind] / total * n
	}
	p.logger.Debug("gsc weights normalised", zap.Int("leaves", len(values)), zap.Float64("total", total))
	return normalised, nil
}
