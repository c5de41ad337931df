// Package boosting implements a least-squares gradient boosting regressor
// over depth-limited regression trees. It is the opaque supervised learner
// behind the pipeline's train stage: Fit/Predict plus validation-monitored
// early stopping.
package boosting

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lifeexp/core/model"
	"github.com/YuminosukeSato/lifeexp/core/parallel"
	"github.com/YuminosukeSato/lifeexp/metrics"
	"github.com/YuminosukeSato/lifeexp/pkg/errors"
	"github.com/YuminosukeSato/lifeexp/pkg/log"
)

// GBTRegressor is a gradient-boosted tree regressor.
type GBTRegressor struct {
	model.StateManager

	// Hyperparameters
	NumIterations  int     // number of boosting iterations
	LearningRate   float64 // shrinkage applied to each tree
	MaxDepth       int     // maximum tree depth
	MinSamplesLeaf int     // minimum rows per leaf
	Subsample      float64 // row subsample ratio per iteration
	MinGainToSplit float64 // minimum SSE reduction to accept a split
	EarlyStopping  int     // stop after this many rounds without improvement (0 = off)
	RandomState    int64   // seed for row subsampling

	// Fitted state
	BaseScore     float64           // initial prediction (mean of y)
	Trees         []*RegressionTree // fitted trees, truncated to best iteration
	BestIteration int               // iteration selected by early stopping, -1 without validation
}

// NewGBTRegressor creates a GBTRegressor with default parameters.
func NewGBTRegressor() *GBTRegressor {
	return &GBTRegressor{
		NumIterations:  200,
		LearningRate:   0.1,
		MaxDepth:       3,
		MinSamplesLeaf: 5,
		Subsample:      1.0,
		MinGainToSplit: 1e-7,
		EarlyStopping:  0,
		RandomState:    42,
		BestIteration:  -1,
	}
}

// WithNumIterations sets the number of boosting iterations.
func (g *GBTRegressor) WithNumIterations(n int) *GBTRegressor {
	g.NumIterations = n
	return g
}

// WithLearningRate sets the shrinkage rate.
func (g *GBTRegressor) WithLearningRate(lr float64) *GBTRegressor {
	g.LearningRate = lr
	return g
}

// WithMaxDepth sets the maximum tree depth.
func (g *GBTRegressor) WithMaxDepth(d int) *GBTRegressor {
	g.MaxDepth = d
	return g
}

// WithEarlyStopping sets the early stopping rounds.
func (g *GBTRegressor) WithEarlyStopping(rounds int) *GBTRegressor {
	g.EarlyStopping = rounds
	return g
}

// WithRandomState sets the subsampling seed.
func (g *GBTRegressor) WithRandomState(seed int64) *GBTRegressor {
	g.RandomState = seed
	return g
}

// Fit trains the regressor on X and y without a validation set.
func (g *GBTRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GBTRegressor.Fit")
	return g.fit(X, y, nil, nil)
}

// FitWithValidation trains the regressor while monitoring RMSE on the given
// validation pair. The validation data never contributes to tree growth;
// it only decides when boosting stops and which iteration is kept.
func (g *GBTRegressor) FitWithValidation(X, y, Xval, yval mat.Matrix) (err error) {
	defer errors.Recover(&err, "GBTRegressor.FitWithValidation")
	if Xval == nil || yval == nil {
		return errors.NewValueError("GBTRegressor.FitWithValidation", "validation data must not be nil")
	}
	return g.fit(X, y, Xval, yval)
}

func (g *GBTRegressor) fit(X, y, Xval, yval mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("GBTRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("GBTRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("GBTRegressor.Fit", 1, yCols, 1)
	}

	data, err := toRows(X, "GBTRegressor.Fit")
	if err != nil {
		return err
	}
	target := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		if math.IsNaN(v) {
			return errors.NewUndefinedValueError("GBTRegressor.Fit", "target", 1)
		}
		target[i] = v
	}

	var valData [][]float64
	var valTarget []float64
	if Xval != nil {
		valRows, valCols := Xval.Dims()
		if valCols != cols {
			return errors.NewDimensionError("GBTRegressor.FitWithValidation", cols, valCols, 1)
		}
		if vyRows, _ := yval.Dims(); vyRows != valRows {
			return errors.NewDimensionError("GBTRegressor.FitWithValidation", valRows, vyRows, 0)
		}
		valData, err = toRows(Xval, "GBTRegressor.FitWithValidation")
		if err != nil {
			return err
		}
		valTarget = make([]float64, valRows)
		for i := 0; i < valRows; i++ {
			v := yval.At(i, 0)
			if math.IsNaN(v) {
				return errors.NewUndefinedValueError("GBTRegressor.FitWithValidation", "target", 1)
			}
			valTarget[i] = v
		}
	}

	base := 0.0
	for _, v := range target {
		base += v
	}
	base /= float64(rows)

	pred := make([]float64, rows)
	for i := range pred {
		pred[i] = base
	}
	var valPred []float64
	if valData != nil {
		valPred = make([]float64, len(valData))
		for i := range valPred {
			valPred[i] = base
		}
	}

	params := treeParams{
		maxDepth:       g.MaxDepth,
		minSamplesLeaf: g.MinSamplesLeaf,
		minGainToSplit: g.MinGainToSplit,
	}
	rng := rand.New(rand.NewSource(g.RandomState))
	es := newEarlyStopping(g.EarlyStopping)
	logger := log.GetLoggerWithName("boosting.regressor")
	logger.Info("training started",
		log.OperationKey, "fit",
		log.SamplesKey, rows,
		log.FeaturesKey, cols)

	residuals := make([]float64, rows)
	trees := make([]*RegressionTree, 0, g.NumIterations)
	bestIteration := -1

	for iter := 0; iter < g.NumIterations; iter++ {
		for i := range residuals {
			residuals[i] = target[i] - pred[i]
		}

		indices := g.sampleRows(rows, rng)
		tree := buildTree(data, residuals, indices, params)
		trees = append(trees, tree)

		for i, row := range data {
			pred[i] += g.LearningRate * tree.predict(row)
		}

		if valData == nil {
			continue
		}
		var sse float64
		for i, row := range valData {
			valPred[i] += g.LearningRate * tree.predict(row)
			diff := valTarget[i] - valPred[i]
			sse += diff * diff
		}
		rmse := math.Sqrt(sse / float64(len(valData)))
		logger.Debug("validation evaluated",
			log.IterationKey, iter,
			log.RMSEKey, rmse)

		if es.update(iter, rmse) {
			bestIteration = es.bestIteration
			logger.Info("early stopping triggered",
				log.IterationKey, iter,
				log.BestIterationKey, bestIteration,
				log.RMSEKey, es.bestScore)
			break
		}
	}

	if valData != nil && bestIteration < 0 && es.enabled {
		bestIteration = es.bestIteration
	}
	if bestIteration >= 0 {
		trees = trees[:bestIteration+1]
	}

	g.BaseScore = base
	g.Trees = trees
	g.BestIteration = bestIteration
	g.SetDimensions(cols, rows)
	g.SetFitted()

	logger.Info("training completed",
		log.IterationKey, len(trees))
	return nil
}

// parallelPredictThreshold is the row count below which batch prediction
// stays sequential.
const parallelPredictThreshold = 256

// Predict returns predictions for X as an n×1 matrix.
func (g *GBTRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GBTRegressor", "Predict")
	}

	rows, cols := X.Dims()
	nFeatures, _ := g.GetDimensions()
	if cols != nFeatures {
		return nil, errors.NewDimensionError("GBTRegressor.Predict", nFeatures, cols, 1)
	}

	data, err := toRows(X, "GBTRegressor.Predict")
	if err != nil {
		return nil, err
	}

	result := mat.NewDense(rows, 1, nil)
	parallel.ParallelizeWithThreshold(rows, parallelPredictThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := g.BaseScore
			for _, tree := range g.Trees {
				pred += g.LearningRate * tree.predict(data[i])
			}
			result.Set(i, 0, pred)
		}
	})
	return result, nil
}

// Score returns the coefficient of determination of the prediction.
func (g *GBTRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !g.IsFitted() {
		return 0, errors.NewNotFittedError("GBTRegressor", "Score")
	}

	predictions, err := g.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, predictions)
}

// sampleRows draws the row set for one boosting iteration. With Subsample
// >= 1 every row is used and the rng stays untouched.
func (g *GBTRegressor) sampleRows(rows int, rng *rand.Rand) []int {
	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	if g.Subsample >= 1.0 {
		return indices
	}

	rng.Shuffle(rows, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	n := int(float64(rows) * g.Subsample)
	if n < 1 {
		n = 1
	}
	return indices[:n]
}

// toRows converts a matrix to row-major slices, rejecting undefined values.
func toRows(X mat.Matrix, op string) ([][]float64, error) {
	rows, cols := X.Dims()
	data := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				return nil, errors.NewUndefinedValueError(op, fmt.Sprintf("feature %d", j), 1)
			}
			row[j] = v
		}
		data[i] = row
	}
	return data, nil
}
