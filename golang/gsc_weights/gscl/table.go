package gscl

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

//ScoreTable maps a leaf name to its weight.
type ScoreTable map[string]float64

//Names returns the leaf names in lexical order.
func (table ScoreTable) Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

//Values returns the scores of the given leaves, in the same order.
func (table ScoreTable) Values(names []string) []float64 {
	values := make([]float64, len(names))
	for ind, name := range names {
		values[ind] = table[name]
	}
	return values
}

//Mean returns the arithmetic mean of the scores, 0 for an empty table.
func (table ScoreTable) Mean() float64 {
	if len(table) == 0 {
		return 0
	}
	return floats.Sum(table.Values(table.Names())) / float64(len(table))
}

//Dense returns the sorted leaf names and a single column matrix with their scores.
func (table ScoreTable) Dense() (names []string, column *mat.Dense) {
	names = table.Names()
	if len(names) == 0 {
		return names, nil
	}
	return names, mat.NewDense(len(names), 1, table.Values(names))
}

//Save writes the table as indented JSON.
func (table ScoreTable) Save(filename string) (err error) {
	dest, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("can't open file %s to write: %w", filename, err)
	}
	defer func() {
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
	}()

	byteRepr, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	_, err = dest.Write(byteRepr)
	return err
}

//SaveNpy writes the scores as a numpy column ordered by Names.
func (table ScoreTable) SaveNpy(filename string) (err error) {
	_, column := table.Dense()
	if column == nil {
		return fmt.Errorf("%w: empty score table", ErrInvalidInput)
	}

	dest, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("can't open file %s to write: %w", filename, err)
	}
	defer func() {
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
	}()

	return npyio.Write(dest, column)
}

//LoadScoreTable reads a table saved by Save. YAML mappings are accepted as well.
func LoadScoreTable(filename string) (ScoreTable, error) {
	byteRepr, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	table := ScoreTable{}
	if err := yaml.Unmarshal(byteRepr, &table); err != nil {
		return nil, fmt.Errorf("%w: %s is not a score table: %v", ErrInvalidInput, filename, err)
	}
	return table, nil
}

//ReadNpy reads a numpy column written by SaveNpy.
func ReadNpy(filename string) (column *mat.Dense, err error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := source.Close(); err == nil {
			err = closeErr
		}
	}()

	r, err := npyio.NewReader(source)
	if err != nil {
		return nil, err
	}
	column = &mat.Dense{}
	if err := r.Read(column); err != nil {
		return nil, err
	}
	return column, nil
}
