package gscl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScoreTableNamesAndValues(t *testing.T) {
	table := ScoreTable{"b": 2, "a": 1, "c": 3}
	names := table.Names()
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Fatalf("unexpected names:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, table.Values(names)); diff != "" {
		t.Fatalf("unexpected values:\n%s", diff)
	}
	if table.Mean() != 2 {
		t.Fatalf("mean = %g, want 2", table.Mean())
	}
	if (ScoreTable{}).Mean() != 0 {
		t.Fatalf("empty mean should be 0")
	}
}

func TestScoreTableSaveAndLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "weights.json")
	if err := ReferenceScores().Save(filename); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadScoreTable(filename)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(ReferenceScores(), loaded); diff != "" {
		t.Fatalf("round trip changed the table:\n%s", diff)
	}
}

func TestLoadScoreTableYAML(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(filename, []byte("A: 1.5\nB: 2\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := LoadScoreTable(filename)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(ScoreTable{"A": 1.5, "B": 2}, loaded); diff != "" {
		t.Fatalf("unexpected table:\n%s", diff)
	}

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(broken, []byte("- just\n- a list\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadScoreTable(broken); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoreTableSaveNpy(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "weights.npy")
	if err := ReferenceScores().SaveNpy(filename); err != nil {
		t.Fatalf("save npy: %v", err)
	}
	column, err := ReadNpy(filename)
	if err != nil {
		t.Fatalf("read npy: %v", err)
	}
	h, w := column.Dims()
	if h != 4 || w != 1 {
		t.Fatalf("unexpected shape %dx%d", h, w)
	}
	want := []float64{43.75, 43.75, 62.5, 80}
	for ind, value := range want {
		if column.At(ind, 0) != value {
			t.Fatalf("row %d = %g, want %g", ind, column.At(ind, 0), value)
		}
	}

	if err := (ScoreTable{}).SaveNpy(filename); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty table, got %v", err)
	}
}
