package gscl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNewickReferenceScores(t *testing.T) {
	for _, description := range []string{ReferenceNewick, strings.TrimSuffix(ReferenceNewick, ";")} {
		tree, err := ParseNewick(description)
		require.NoError(t, err)

		scores, err := Compute(tree)
		require.NoError(t, err)
		require.Len(t, scores, 4)
		for name, want := range ReferenceScores() {
			assert.InDelta(t, want, scores[name], tolerance, name)
		}
	}
}

func TestParseNewickStructure(t *testing.T) {
	tree, err := ParseNewick(ReferenceNewick)
	require.NoError(t, err)

	nodes, err := LevelOrder(tree)
	require.NoError(t, err)
	require.Len(t, nodes, 7)

	dists := map[string]float64{}
	for _, node := range nodes[1:] {
		dists[node.Name()] = node.Dist()
	}
	assert.Equal(t, map[string]float64{"D": 80, "three": 30, "C": 50, "two": 30, "A": 20, "B": 20}, dists)
}

func TestParseNewickMissingLengthsAreZero(t *testing.T) {
	tree, err := ParseNewick("(A,B:2,(C,D)e:1);")
	require.NoError(t, err)

	scores, err := Compute(tree)
	require.NoError(t, err)
	assert.Equal(t, Epsilon, scores["A"])
	assert.Equal(t, 2.0, scores["B"])
	assert.InDelta(t, 0.5, scores["C"], tolerance)
	assert.InDelta(t, 0.5, scores["D"], tolerance)
}

func TestParseNewickNegativeLengths(t *testing.T) {
	tree, err := ParseNewick("(A:-1,B:2);")
	require.NoError(t, err)
	scores, err := Compute(tree)
	require.NoError(t, err)
	assert.Equal(t, Epsilon, scores["A"], "gotree cannot tell -1 from a missing length")

	tree, err = ParseNewick("(A:-2,B:2);")
	require.NoError(t, err)
	_, err = Compute(tree)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReadNewick(t *testing.T) {
	tree, err := ReadNewick(strings.NewReader(ReferenceNewick + "\n"))
	require.NoError(t, err)

	report, err := CheckReference(Compute, tree, tolerance)
	require.NoError(t, err)
	assert.True(t, report.Passed(), report.String())
}

func TestParseNewickInvalid(t *testing.T) {
	for _, description := range []string{"", "   ", "(A:1,B:2"} {
		_, err := ParseNewick(description)
		assert.ErrorIs(t, err, ErrInvalidInput, description)
	}

	var missing *NewickTree
	_, err := Compute(missing)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
