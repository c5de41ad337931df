package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/YuminosukeSato/lifeexp/boosting"
	"github.com/YuminosukeSato/lifeexp/core/model"
	"github.com/YuminosukeSato/lifeexp/dataset"
	"github.com/YuminosukeSato/lifeexp/pipeline"
	"github.com/YuminosukeSato/lifeexp/pkg/errors"
	"github.com/YuminosukeSato/lifeexp/preprocessing"
)

var (
	artifactsFlag = &cli.StringFlag{
		Name:    "artifacts",
		Aliases: []string{"a"},
		Usage:   "Directory holding imputer.gob, scaler.gob and model.gob (default: current dir)",
		Value:   ".",
	}

	inputFlag = &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "CSV file with records to score",
	}

	predictOutputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Path for the prediction CSV (default: submission.csv)",
		Value:   submissionFile,
	}

	predictCmd = &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Applies saved artifacts to new records and writes predictions",
		Action:  cmdPredict,
		Flags: []cli.Flag{
			artifactsFlag,
			inputFlag,
			predictOutputFlag,
		},
	}
)

type predictResult struct {
	Predictions int    `json:"predictions"`
	Output      string `json:"output"`
}

func cmdPredict(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String(inputFlag.Name)
	if input == "" {
		return errors.New("predict: --input is required")
	}
	dir := cmd.String(artifactsFlag.Name)

	imputer := preprocessing.NewCountryMeanImputer()
	if err := model.LoadModel(imputer, filepath.Join(dir, imputerFile)); err != nil {
		return errors.Wrap(err, "failed to load imputer")
	}
	scaler := preprocessing.NewStandardScalerDefault()
	if err := model.LoadModel(scaler, filepath.Join(dir, scalerFile)); err != nil {
		return errors.Wrap(err, "failed to load scaler")
	}
	regressor := boosting.NewGBTRegressor()
	if err := model.LoadModel(regressor, filepath.Join(dir, modelFile)); err != nil {
		return errors.Wrap(err, "failed to load model")
	}

	ds, err := dataset.FromCSVFile(input, false)
	if err != nil {
		return err
	}

	predictions, err := pipeline.ApplyAndPredict(imputer, scaler, regressor, ds)
	if err != nil {
		return err
	}

	output := cmd.String(predictOutputFlag.Name)
	if err := dataset.WriteSubmissionFile(output, predictions); err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(predictResult{
		Predictions: len(predictions),
		Output:      output,
	})
}
