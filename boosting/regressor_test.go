package boosting

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// stepData builds a simple piecewise-constant target: y = 10 when x < 5,
// y = 20 otherwise. One split recovers it exactly.
func stepData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	y := mat.NewDense(10, 1, []float64{10, 10, 10, 10, 10, 20, 20, 20, 20, 20})
	return X, y
}

func TestGBTRegressorFitPredict(t *testing.T) {
	X, y := stepData()

	reg := NewGBTRegressor().
		WithNumIterations(50).
		WithMaxDepth(2)
	reg.MinSamplesLeaf = 2

	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !reg.IsFitted() {
		t.Fatal("IsFitted() = false after Fit")
	}

	pred, err := reg.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	rows, cols := pred.Dims()
	if rows != 10 || cols != 1 {
		t.Fatalf("Predict() dims = %dx%d, want 10x1", rows, cols)
	}

	for i := 0; i < 10; i++ {
		want := 10.0
		if i >= 5 {
			want = 20.0
		}
		if got := pred.At(i, 0); math.Abs(got-want) > 0.5 {
			t.Errorf("prediction[%d] = %v, want ~%v", i, got, want)
		}
	}
}

func TestGBTRegressorDeterminism(t *testing.T) {
	X, y := stepData()

	run := func() []float64 {
		reg := NewGBTRegressor().WithNumIterations(30)
		reg.MinSamplesLeaf = 2
		if err := reg.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		pred, err := reg.Predict(X)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		out := make([]float64, 10)
		for i := range out {
			out[i] = pred.At(i, 0)
		}
		return out
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("prediction[%d] differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestGBTRegressorPredictBeforeFit(t *testing.T) {
	reg := NewGBTRegressor()
	X := mat.NewDense(2, 1, []float64{1, 2})

	_, err := reg.Predict(X)
	if err == nil {
		t.Fatal("Predict() before Fit should error")
	}
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Errorf("error = %v, want NotFittedError", err)
	}
}

func TestGBTRegressorRejectsNaN(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, math.NaN(), 3})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	reg := NewGBTRegressor()
	err := reg.Fit(X, y)
	if err == nil {
		t.Fatal("Fit() with NaN feature should error")
	}
	var uve *errors.UndefinedValueError
	if !errors.As(err, &uve) {
		t.Errorf("error = %v, want UndefinedValueError", err)
	}
}

func TestGBTRegressorRejectsNaNValidationTarget(t *testing.T) {
	X, y := stepData()
	Xval := mat.NewDense(2, 1, []float64{1, 8})
	yval := mat.NewDense(2, 1, []float64{10, math.NaN()})

	reg := NewGBTRegressor().WithEarlyStopping(5)
	err := reg.FitWithValidation(X, y, Xval, yval)
	if err == nil {
		t.Fatal("FitWithValidation() with NaN validation target should error")
	}
	var uve *errors.UndefinedValueError
	if !errors.As(err, &uve) {
		t.Errorf("error = %v, want UndefinedValueError", err)
	}
}

func TestGBTRegressorDimensionChecks(t *testing.T) {
	reg := NewGBTRegressor()

	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	yShort := mat.NewDense(2, 1, []float64{1, 2})
	if err := reg.Fit(X, yShort); err == nil {
		t.Error("Fit() with mismatched row counts should error")
	}

	y := mat.NewDense(3, 1, []float64{1, 2, 3})
	reg2 := NewGBTRegressor().WithNumIterations(5)
	reg2.MinSamplesLeaf = 1
	if err := reg2.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	narrow := mat.NewDense(3, 1, []float64{1, 2, 3})
	if _, err := reg2.Predict(narrow); err == nil {
		t.Error("Predict() with wrong feature count should error")
	}
}

func TestGBTRegressorEarlyStopping(t *testing.T) {
	X, y := stepData()
	Xval := mat.NewDense(4, 1, []float64{1.5, 3.5, 6.5, 8.5})
	yval := mat.NewDense(4, 1, []float64{10, 10, 20, 20})

	reg := NewGBTRegressor().
		WithNumIterations(500).
		WithEarlyStopping(5)
	reg.MinSamplesLeaf = 2

	if err := reg.FitWithValidation(X, y, Xval, yval); err != nil {
		t.Fatalf("FitWithValidation() error = %v", err)
	}

	if reg.BestIteration < 0 {
		t.Error("BestIteration should be set with validation data")
	}
	if len(reg.Trees) >= 500 {
		t.Errorf("early stopping kept %d trees, expected far fewer", len(reg.Trees))
	}
	if len(reg.Trees) != reg.BestIteration+1 {
		t.Errorf("len(Trees) = %d, want BestIteration+1 = %d", len(reg.Trees), reg.BestIteration+1)
	}
}

func TestGBTRegressorScore(t *testing.T) {
	X, y := stepData()

	reg := NewGBTRegressor().WithNumIterations(50)
	reg.MinSamplesLeaf = 2
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	score, err := reg.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score < 0.95 {
		t.Errorf("Score() = %v, want > 0.95 on training data", score)
	}
}

func TestGBTRegressorGobRoundTrip(t *testing.T) {
	X, y := stepData()

	reg := NewGBTRegressor().WithNumIterations(20)
	reg.MinSamplesLeaf = 2
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(reg); err != nil {
		t.Fatalf("gob encode error = %v", err)
	}

	restored := &GBTRegressor{}
	if err := gob.NewDecoder(&buf).Decode(restored); err != nil {
		t.Fatalf("gob decode error = %v", err)
	}

	want, err := reg.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	got, err := restored.Predict(X)
	if err != nil {
		t.Fatalf("restored Predict() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		if want.At(i, 0) != got.At(i, 0) {
			t.Errorf("prediction[%d] = %v after round trip, want %v", i, got.At(i, 0), want.At(i, 0))
		}
	}
}
