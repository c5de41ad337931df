// Package pipeline orchestrates the life-expectancy training workflow as a
// strictly sequential state machine. Every fitted component (imputer, scaler,
// booster) learns from the fit-portion only; the held-out and test partitions
// are transformed with the fitted state, never refit. A run either reaches
// the terminal state with all artifacts or produces nothing.
package pipeline

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lifeexp/boosting"
	"github.com/YuminosukeSato/lifeexp/core/model"
	"github.com/YuminosukeSato/lifeexp/dataset"
	"github.com/YuminosukeSato/lifeexp/metrics"
	"github.com/YuminosukeSato/lifeexp/pkg/errors"
	"github.com/YuminosukeSato/lifeexp/pkg/log"
	"github.com/YuminosukeSato/lifeexp/preprocessing"
)

// Stage identifies one state of the orchestrator.
type Stage int

const (
	StageLoaded Stage = iota
	StageSplit
	StageImputed
	StageFeaturized
	StageCategoryDropped
	StageScaled
	StageTrained
	StageEvaluated
	StagePredicted
)

var stageNames = map[Stage]string{
	StageLoaded:          "loaded",
	StageSplit:           "split",
	StageImputed:         "imputed",
	StageFeaturized:      "featurized",
	StageCategoryDropped: "category_dropped",
	StageScaled:          "scaled",
	StageTrained:         "trained",
	StageEvaluated:       "evaluated",
	StagePredicted:       "predicted",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Config holds the run parameters of a pipeline.
type Config struct {
	Seed            int64   // shuffle seed for the fit/held-out split
	HeldOutFraction float64 // fraction of training rows held out

	NumIterations int     // booster iterations
	LearningRate  float64 // booster shrinkage
	MaxDepth      int     // booster tree depth
	EarlyStopping int     // booster early stopping rounds, 0 disables
}

// DefaultConfig returns the standard run parameters: 20% held out and a
// validation-monitored booster.
func DefaultConfig() Config {
	return Config{
		Seed:            42,
		HeldOutFraction: 0.2,
		NumIterations:   300,
		LearningRate:    0.1,
		MaxDepth:        4,
		EarlyStopping:   20,
	}
}

// Result carries everything a completed run produces.
type Result struct {
	Predictions []float64 // test predictions in input row order
	R2          float64   // held-out coefficient of determination

	Imputer *preprocessing.CountryMeanImputer
	Scaler  *preprocessing.StandardScaler
	Model   *boosting.GBTRegressor
}

// Pipeline drives a single training run through its stages.
type Pipeline struct {
	cfg    Config
	stage  Stage
	logger log.Logger
}

// New creates a pipeline in the Loaded state.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		stage:  StageLoaded,
		logger: log.GetLoggerWithName("pipeline"),
	}
}

// Stage reports the current state.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// advance moves to the next stage, enforcing the strict ordering.
func (p *Pipeline) advance(next Stage) error {
	if next != p.stage+1 {
		return errors.NewValueError("Pipeline.advance",
			"illegal transition "+p.stage.String()+" -> "+next.String())
	}
	p.stage = next
	p.logger.Info("stage entered", log.StageKey, next.String())
	return nil
}

// Run executes the full workflow: split, impute, synthesize features, drop
// the category key, scale, train, evaluate and predict. train must carry the
// target; test must not be empty.
func (p *Pipeline) Run(train, test *dataset.Dataset) (*Result, error) {
	start := time.Now()
	result, err := p.run(train, test)
	if err != nil {
		p.logger.Error("run aborted", err, log.StageKey, p.stage.String())
		return nil, err
	}
	p.logger.Info("run completed",
		log.R2Key, result.R2,
		log.DurationMsKey, time.Since(start).Milliseconds())
	return result, nil
}

func (p *Pipeline) run(train, test *dataset.Dataset) (*Result, error) {
	if p.stage != StageLoaded {
		return nil, errors.NewValueError("Pipeline.Run",
			"pipeline already ran; create a new one per run")
	}
	if !train.HasTarget() {
		return nil, errors.NewSchemaError(p.stage.String(), dataset.TargetColumn,
			"training data must carry the target")
	}
	if test.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Pipeline.Run: test partition")
	}
	if err := train.CheckSchema(test, p.stage.String()); err != nil {
		return nil, err
	}

	// Loaded -> Split
	fit, heldOut, err := train.Split(p.cfg.HeldOutFraction, p.cfg.Seed)
	if err != nil {
		return nil, err
	}
	if err := p.advance(StageSplit); err != nil {
		return nil, err
	}
	p.logger.Info("training data partitioned",
		log.SamplesKey, fit.NumRows(),
		log.PartitionKey, "fit")
	p.logger.Info("training data partitioned",
		log.SamplesKey, heldOut.NumRows(),
		log.PartitionKey, "held_out")

	// Split -> Imputed: one fitted state applied to all three partitions.
	imputer := preprocessing.NewCountryMeanImputer()
	if err := imputer.Fit(fit); err != nil {
		return nil, err
	}
	fit, heldOut, test, err = p.transformAll(fit, heldOut, test, imputer.Transform)
	if err != nil {
		return nil, err
	}
	if err := p.advance(StageImputed); err != nil {
		return nil, err
	}

	// Imputed -> Featurized: pure row-wise synthesis per partition.
	fit, heldOut, test, err = p.transformAll(fit, heldOut, test, preprocessing.SynthesizeFeatures)
	if err != nil {
		return nil, err
	}
	if err := p.advance(StageFeaturized); err != nil {
		return nil, err
	}

	// Featurized -> CategoryDropped: the raw country key leaves the table.
	fit = fit.DropCountry()
	heldOut = heldOut.DropCountry()
	test = test.DropCountry()
	if err := p.advance(StageCategoryDropped); err != nil {
		return nil, err
	}

	// CategoryDropped -> Scaled. Scaling requires fully defined input.
	for _, part := range []*dataset.Dataset{fit, heldOut, test} {
		if err := part.CheckDefined(p.stage.String()); err != nil {
			return nil, err
		}
	}
	scaler := preprocessing.NewStandardScalerDefault()
	fitX, err := fit.Matrix()
	if err != nil {
		return nil, err
	}
	heldOutX, err := heldOut.Matrix()
	if err != nil {
		return nil, err
	}
	testX, err := test.Matrix()
	if err != nil {
		return nil, err
	}
	// The orchestrator only sees the transformer contract.
	var transformer model.Transformer = scaler
	if err := transformer.Fit(fitX); err != nil {
		return nil, err
	}
	fitScaled, err := transformer.Transform(fitX)
	if err != nil {
		return nil, err
	}
	heldOutScaled, err := transformer.Transform(heldOutX)
	if err != nil {
		return nil, err
	}
	testScaled, err := transformer.Transform(testX)
	if err != nil {
		return nil, err
	}
	if err := p.advance(StageScaled); err != nil {
		return nil, err
	}

	// Scaled -> Trained: held-out portion monitors early stopping only.
	fitY, err := fit.TargetMatrix()
	if err != nil {
		return nil, err
	}
	heldOutY, err := heldOut.TargetMatrix()
	if err != nil {
		return nil, err
	}
	booster := boosting.NewGBTRegressor().
		WithNumIterations(p.cfg.NumIterations).
		WithLearningRate(p.cfg.LearningRate).
		WithMaxDepth(p.cfg.MaxDepth).
		WithEarlyStopping(p.cfg.EarlyStopping).
		WithRandomState(p.cfg.Seed)
	var learner model.ValidatingFitter = booster
	if err := learner.FitWithValidation(fitScaled, fitY, heldOutScaled, heldOutY); err != nil {
		return nil, err
	}
	if err := p.advance(StageTrained); err != nil {
		return nil, err
	}

	// Trained -> Evaluated.
	var predictor model.Predictor = booster
	heldOutPred, err := predictor.Predict(heldOutScaled)
	if err != nil {
		return nil, err
	}
	r2, err := metrics.R2ScoreMatrix(heldOutY, heldOutPred)
	if err != nil {
		return nil, err
	}
	if err := p.advance(StageEvaluated); err != nil {
		return nil, err
	}
	p.logger.Info("held-out evaluation", log.R2Key, r2)

	// Evaluated -> Predicted: terminal.
	testPred, err := predictor.Predict(testScaled)
	if err != nil {
		return nil, err
	}
	predictions, err := columnToSlice(testPred, p.stage.String())
	if err != nil {
		return nil, err
	}
	if err := p.advance(StagePredicted); err != nil {
		return nil, err
	}
	p.logger.Info("test predictions produced", log.SamplesKey, len(predictions))

	return &Result{
		Predictions: predictions,
		R2:          r2,
		Imputer:     imputer,
		Scaler:      scaler,
		Model:       booster,
	}, nil
}

// transformAll applies one fitted transform to the three partitions, checking
// that their schemas still agree first.
func (p *Pipeline) transformAll(
	fit, heldOut, test *dataset.Dataset,
	transform func(*dataset.Dataset) (*dataset.Dataset, error),
) (*dataset.Dataset, *dataset.Dataset, *dataset.Dataset, error) {
	if err := fit.CheckSchema(heldOut, p.stage.String()); err != nil {
		return nil, nil, nil, err
	}
	if err := fit.CheckSchema(test, p.stage.String()); err != nil {
		return nil, nil, nil, err
	}

	fitOut, err := transform(fit)
	if err != nil {
		return nil, nil, nil, err
	}
	heldOutOut, err := transform(heldOut)
	if err != nil {
		return nil, nil, nil, err
	}
	testOut, err := transform(test)
	if err != nil {
		return nil, nil, nil, err
	}
	return fitOut, heldOutOut, testOut, nil
}

// columnToSlice extracts an n×1 prediction matrix into a slice, rejecting
// undefined values.
func columnToSlice(m mat.Matrix, stage string) ([]float64, error) {
	rows, cols := m.Dims()
	if cols != 1 {
		return nil, errors.NewDimensionError("Pipeline.Run", 1, cols, 1)
	}
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := m.At(i, 0)
		if math.IsNaN(v) {
			return nil, errors.NewUndefinedValueError(stage, dataset.TargetColumn, 1)
		}
		out[i] = v
	}
	return out, nil
}
