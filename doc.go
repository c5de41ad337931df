// Package lifeexp implements a life-expectancy prediction pipeline over
// country-year health, economic and demographic records.
//
// The pipeline ingests tabular records, imputes missing values with
// per-country statistics, synthesizes derived features, standardizes the
// numeric columns and trains a gradient-boosted regression model, producing
// predictions for held-out test rows.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/lifeexp/dataset"
//	    "github.com/YuminosukeSato/lifeexp/pipeline"
//	)
//
//	func main() {
//	    train, err := dataset.FromCSVFile("train.csv", true)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    test, err := dataset.FromCSVFile("test.csv", false)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := pipeline.New(pipeline.DefaultConfig()).Run(train, test)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Printf("held-out R²: %.4f\n", result.R2)
//	    if err := dataset.WriteSubmissionFile("submission.csv", result.Predictions); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Packages
//
//   - dataset: immutable tabular dataset, CSV loading, seeded splits
//   - preprocessing: per-country imputation, feature synthesis, scaling
//   - boosting: gradient-boosted regression trees with early stopping
//   - metrics: evaluation metrics (MSE, RMSE, MAE, R²)
//   - pipeline: the sequential training/prediction orchestrator
//   - core/model: estimator interfaces, fitted-state tracking, persistence
//   - core/parallel: parallel processing utilities
//   - pkg/errors: structured errors and the warning handler
//   - pkg/log: structured logging interfaces with a zerolog backend
//
// Every fitted component learns exclusively from the fit-portion of the
// training data; validation and test partitions are only ever transformed.
// Runs are deterministic given a seed.
//
// The cmd/lifeexp command wraps the pipeline in a CLI with YAML
// configuration and artifact packaging.
package lifeexp
