package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tarstars/gsc_weighting/golang/gsc_weights/gscl"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	configFlagName = "config"
	debugFlagName  = "debug"

	referenceTolerance = 1e-9
)

var errSelfTestFailed = errors.New("self test failed")

//WeightsConfig describes a run of the weights command.
type WeightsConfig struct {
	Newick          string `yaml:"newick"`
	FileNameTree    string `yaml:"filename_tree"`
	Normalise       bool   `yaml:"normalise"`
	FileNameWeights string `yaml:"filename_weights"`
	FileNameNpy     string `yaml:"filename_npy"`
	ThreadsNum      int    `yaml:"threads_num"`
}

//NormalizeConfig describes a run of the normalize command.
type NormalizeConfig struct {
	FileNameScores  string `yaml:"filename_scores"`
	FileNameWeights string `yaml:"filename_weights"`
}

//decodeConfig fills out from a YAML or JSON file. An empty name leaves out untouched.
func decodeConfig(srcConfig string, out interface{}) error {
	if srcConfig == "" {
		return nil
	}
	byteRepr, err := os.ReadFile(srcConfig)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(byteRepr, out); err != nil {
		return fmt.Errorf("decoding config %s: %w", srcConfig, err)
	}
	return nil
}

type application struct {
	stdout io.Writer
	logger *zap.Logger
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  configFlagName,
		Usage: "a YAML or JSON config file for the run of the program",
	}
}

func (a *application) command() *cli.Command {
	return &cli.Command{
		Name:  "gsc",
		Usage: "Gerstein-Sonnhammer-Chothia weights for the leaves of a rooted tree",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: debugFlagName, Usage: "print verbose logs"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if a.logger != nil {
				return ctx, nil
			}
			var err error
			if cmd.Bool(debugFlagName) {
				a.logger, err = zap.NewDevelopment()
			} else {
				a.logger, err = zap.NewProduction()
			}
			return ctx, err
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "weights",
				Usage: "compute the weights of every leaf of a Newick tree",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "newick", Usage: "the tree as a Newick string"},
					&cli.StringFlag{Name: "tree", Usage: "a file with the tree in Newick format"},
					&cli.BoolFlag{Name: "normalise", Usage: "rescale the weights so that their mean is 1"},
					&cli.StringFlag{Name: "out", Usage: "write the weights as JSON to `file` instead of stdout"},
					&cli.StringFlag{Name: "npy", Usage: "also write the weights in leaf name order to a numpy `file`"},
					&cli.IntFlag{Name: "threads", Usage: "number of goroutines for independent subtrees", Value: 1},
				},
				Action: a.weights,
			},
			{
				Name:  "normalize",
				Usage: "rescale a saved score table so that its mean is 1",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "scores", Usage: "a JSON or YAML score table"},
					&cli.StringFlag{Name: "out", Usage: "write the weights as JSON to `file` instead of stdout"},
				},
				Action: a.normalize,
			},
			{
				Name:   "selftest",
				Usage:  "score the example tree of the GSC paper and compare with the published weights",
				Action: a.selfTest,
			},
		},
	}
}

func (a *application) weights(_ context.Context, cmd *cli.Command) error {
	var config WeightsConfig
	if err := decodeConfig(cmd.String(configFlagName), &config); err != nil {
		return err
	}
	if cmd.IsSet("newick") {
		config.Newick = cmd.String("newick")
	}
	if cmd.IsSet("tree") {
		config.FileNameTree = cmd.String("tree")
	}
	if cmd.IsSet("normalise") {
		config.Normalise = cmd.Bool("normalise")
	}
	if cmd.IsSet("out") {
		config.FileNameWeights = cmd.String("out")
	}
	if cmd.IsSet("npy") {
		config.FileNameNpy = cmd.String("npy")
	}
	if cmd.IsSet("threads") || config.ThreadsNum == 0 {
		config.ThreadsNum = cmd.Int("threads")
	}

	tree, err := loadTree(config)
	if err != nil {
		return err
	}

	propagator := gscl.NewPropagator(gscl.PropagatorParams{Logger: a.logger, ThreadsNum: config.ThreadsNum})
	scores, err := propagator.GSC(tree, config.Normalise)
	if err != nil {
		return err
	}

	if config.FileNameNpy != "" {
		a.logger.Info("writing numpy weights", zap.String("file", config.FileNameNpy))
		if err := scores.SaveNpy(config.FileNameNpy); err != nil {
			return err
		}
	}
	return a.emit(scores, config.FileNameWeights)
}

func loadTree(config WeightsConfig) (*gscl.NewickTree, error) {
	switch {
	case config.Newick != "" && config.FileNameTree != "":
		return nil, fmt.Errorf("%w: give either a Newick string or a tree file, not both", gscl.ErrInvalidInput)
	case config.Newick != "":
		return gscl.ParseNewick(config.Newick)
	case config.FileNameTree != "":
		source, err := os.Open(config.FileNameTree)
		if err != nil {
			return nil, err
		}
		defer source.Close()
		return gscl.ReadNewick(source)
	}
	return nil, fmt.Errorf("%w: no tree given", gscl.ErrInvalidInput)
}

func (a *application) normalize(_ context.Context, cmd *cli.Command) error {
	var config NormalizeConfig
	if err := decodeConfig(cmd.String(configFlagName), &config); err != nil {
		return err
	}
	if cmd.IsSet("scores") {
		config.FileNameScores = cmd.String("scores")
	}
	if cmd.IsSet("out") {
		config.FileNameWeights = cmd.String("out")
	}
	if config.FileNameScores == "" {
		return fmt.Errorf("%w: no score table given", gscl.ErrInvalidInput)
	}

	scores, err := gscl.LoadScoreTable(config.FileNameScores)
	if err != nil {
		return err
	}
	propagator := gscl.NewPropagator(gscl.PropagatorParams{Logger: a.logger})
	normalised, err := propagator.Normalize(scores)
	if err != nil {
		return err
	}
	return a.emit(normalised, config.FileNameWeights)
}

func (a *application) selfTest(_ context.Context, _ *cli.Command) error {
	tree, err := gscl.ParseNewick(gscl.ReferenceNewick)
	if err != nil {
		return err
	}
	propagator := gscl.NewPropagator(gscl.PropagatorParams{Logger: a.logger})
	report, err := gscl.CheckReference(propagator.Compute, tree, referenceTolerance)
	if err != nil {
		return err
	}

	for _, leaf := range report.Leaves {
		fmt.Fprintf(a.stdout, "Leaf %s: Correct score: %g - Score obtained: %g\n", leaf.Name, leaf.Expected, leaf.Obtained)
	}
	fmt.Fprintln(a.stdout, report)

	if !report.Passed() {
		return errSelfTestFailed
	}
	return nil
}

func (a *application) emit(scores gscl.ScoreTable, filename string) error {
	if filename != "" {
		a.logger.Info("writing weights", zap.String("file", filename), zap.Int("leaves", len(scores)))
		return scores.Save(filename)
	}
	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(scores)
}

func main() {
	app := &application{stdout: os.Stdout}
	if err := app.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
