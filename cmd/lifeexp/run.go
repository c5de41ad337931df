package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/lifeexp/core/model"
	"github.com/YuminosukeSato/lifeexp/dataset"
	"github.com/YuminosukeSato/lifeexp/pipeline"
	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// Artifact file names inside the output directory.
const (
	submissionFile = "submission.csv"
	imputerFile    = "imputer.gob"
	scalerFile     = "scaler.gob"
	modelFile      = "model.gob"
	archiveFile    = "artifacts.zip"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML config file (optional)",
	}

	trainFlag = &cli.StringFlag{
		Name:  "train",
		Usage: "Path to the training CSV (default: train.csv)",
	}

	testFlag = &cli.StringFlag{
		Name:  "test",
		Usage: "Path to the test CSV (default: test.csv)",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Directory for the submission and model artifacts (default: current dir)",
	}

	seedFlag = &cli.IntFlag{
		Name:  "seed",
		Usage: "Shuffle seed for the fit/held-out split",
	}

	heldOutFlag = &cli.FloatFlag{
		Name:  "held-out",
		Usage: "Fraction of training rows withheld for validation",
	}

	iterationsFlag = &cli.IntFlag{
		Name:  "iterations",
		Usage: "Number of boosting iterations",
	}

	learningRateFlag = &cli.FloatFlag{
		Name:  "learning-rate",
		Usage: "Boosting shrinkage rate",
	}

	maxDepthFlag = &cli.IntFlag{
		Name:  "max-depth",
		Usage: "Maximum regression tree depth",
	}

	earlyStoppingFlag = &cli.IntFlag{
		Name:  "early-stopping",
		Usage: "Stop after this many rounds without validation improvement (0 disables)",
	}

	runCmd = &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Trains the pipeline and writes predictions plus model artifacts",
		Action:  cmdRun,
		Flags: []cli.Flag{
			configFlag,
			trainFlag,
			testFlag,
			outputFlag,
			seedFlag,
			heldOutFlag,
			iterationsFlag,
			learningRateFlag,
			maxDepthFlag,
			earlyStoppingFlag,
		},
	}
)

// runResult is the JSON summary printed after a successful run.
type runResult struct {
	R2            float64 `json:"r2"`
	Predictions   int     `json:"predictions"`
	BestIteration int     `json:"best_iteration"`
	Submission    string  `json:"submission"`
	Archive       string  `json:"archive"`
}

func cmdRun(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadRunConfig(cmd.String(configFlag.Name))
	if err != nil {
		return err
	}
	applyRunFlags(&cfg, cmd)

	train, err := dataset.FromCSVFile(cfg.Train, true)
	if err != nil {
		return err
	}
	test, err := dataset.FromCSVFile(cfg.Test, false)
	if err != nil {
		return err
	}

	result, err := pipeline.New(cfg.pipelineConfig()).Run(train, test)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output dir %s", cfg.Output)
	}

	submissionPath := filepath.Join(cfg.Output, submissionFile)
	if err := dataset.WriteSubmissionFile(submissionPath, result.Predictions); err != nil {
		return err
	}

	artifacts := map[string]interface{}{
		imputerFile: result.Imputer,
		scalerFile:  result.Scaler,
		modelFile:   result.Model,
	}
	paths := []string{submissionPath}
	for name, artifact := range artifacts {
		p := filepath.Join(cfg.Output, name)
		if err := model.SaveModel(artifact, p); err != nil {
			return errors.Wrapf(err, "failed to save %s", name)
		}
		paths = append(paths, p)
	}

	archivePath := filepath.Join(cfg.Output, archiveFile)
	if err := packageArtifacts(archivePath, paths); err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(runResult{
		R2:            result.R2,
		Predictions:   len(result.Predictions),
		BestIteration: result.Model.BestIteration,
		Submission:    submissionPath,
		Archive:       archivePath,
	})
}

// applyRunFlags overlays explicitly set flags on the config.
func applyRunFlags(cfg *runConfig, cmd *cli.Command) {
	if cmd.IsSet(trainFlag.Name) {
		cfg.Train = cmd.String(trainFlag.Name)
	}
	if cmd.IsSet(testFlag.Name) {
		cfg.Test = cmd.String(testFlag.Name)
	}
	if cmd.IsSet(outputFlag.Name) {
		cfg.Output = cmd.String(outputFlag.Name)
	}
	if cmd.IsSet(seedFlag.Name) {
		cfg.Seed = int64(cmd.Int(seedFlag.Name))
	}
	if cmd.IsSet(heldOutFlag.Name) {
		cfg.HeldOutFraction = cmd.Float(heldOutFlag.Name)
	}
	if cmd.IsSet(iterationsFlag.Name) {
		cfg.Iterations = int(cmd.Int(iterationsFlag.Name))
	}
	if cmd.IsSet(learningRateFlag.Name) {
		cfg.LearningRate = cmd.Float(learningRateFlag.Name)
	}
	if cmd.IsSet(maxDepthFlag.Name) {
		cfg.MaxDepth = int(cmd.Int(maxDepthFlag.Name))
	}
	if cmd.IsSet(earlyStoppingFlag.Name) {
		cfg.EarlyStopping = int(cmd.Int(earlyStoppingFlag.Name))
	}
}
