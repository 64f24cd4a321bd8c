package gscl

import (
	"fmt"
	"math"
)

//ReferenceNewick is the example tree of Gerstein, Sonnhammer and Chothia (1994).
const ReferenceNewick = "(D:80,(C:50,(A:20,B:20)two:30)three:30);"

//ReferenceScores returns the weights the paper gives for ReferenceNewick before normalisation.
func ReferenceScores() ScoreTable {
	return ScoreTable{"A": 43.75, "B": 43.75, "C": 62.5, "D": 80.0}
}

//ReferenceTree builds ReferenceNewick in memory.
func ReferenceTree() *TreeNode {
	return NewClade("", 0,
		NewLeaf("D", 80),
		NewClade("three", 30,
			NewLeaf("C", 50),
			NewClade("two", 30,
				NewLeaf("A", 20),
				NewLeaf("B", 20),
			),
		),
	)
}

//ReferenceLeaf compares one expected and obtained weight.
type ReferenceLeaf struct {
	Name     string
	Expected float64
	Obtained float64
	Correct  bool
}

//ReferenceReport is the outcome of CheckReference.
type ReferenceReport struct {
	Leaves  []ReferenceLeaf
	Correct int
}

//Percent returns the share of correctly scored leaves.
func (report ReferenceReport) Percent() float64 {
	if len(report.Leaves) == 0 {
		return 0
	}
	return float64(report.Correct) / float64(len(report.Leaves)) * 100
}

//Passed reports whether every leaf was scored correctly.
func (report ReferenceReport) Passed() bool {
	return len(report.Leaves) > 0 && report.Correct == len(report.Leaves)
}

func (report ReferenceReport) String() string {
	return fmt.Sprintf("%g%% scores were correctly predicted (%d out of %d)",
		report.Percent(), report.Correct, len(report.Leaves))
}

//CheckReference scores tree with compute and compares the result with ReferenceScores.
//Leaves missing from the result count as wrong.
func CheckReference(compute func(Tree) (ScoreTable, error), tree Tree, tolerance float64) (report ReferenceReport, err error) {
	scores, err := compute(tree)
	if err != nil {
		return report, err
	}

	expected := ReferenceScores()
	for _, name := range expected.Names() {
		obtained, ok := scores[name]
		leaf := ReferenceLeaf{
			Name:     name,
			Expected: expected[name],
			Obtained: obtained,
			Correct:  ok && math.Abs(obtained-expected[name]) <= tolerance,
		}
		if leaf.Correct {
			report.Correct++
		}
		report.Leaves = append(report.Leaves, leaf)
	}
	return report, nil
}
