package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	// Each column ends with zero mean and unit variance.
	r, c := scaled.Dims()
	for j := 0; j < c; j++ {
		var sum, sumSq float64
		for i := 0; i < r; i++ {
			v := scaled.At(i, j)
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(r)
		variance := sumSq/float64(r) - mean*mean
		if math.Abs(mean) > 1e-10 {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}
		if math.Abs(variance-1) > 1e-10 {
			t.Errorf("column %d variance = %v, want 1", j, variance)
		}
	}
}

func TestStandardScalerConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{7, 7, 7})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	if scaler.Scale[0] != 1.0 {
		t.Errorf("Scale[0] = %v, want 1.0 (constant feature clamp)", scaler.Scale[0])
	}
	for i := 0; i < 3; i++ {
		if scaled.At(i, 0) != 0 {
			t.Errorf("scaled[%d] = %v, want 0", i, scaled.At(i, 0))
		}
	}
}

func TestStandardScalerRejectsUndefinedInput(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, math.NaN(), 3})

	scaler := NewStandardScalerDefault()
	err := scaler.Fit(X)
	if err == nil {
		t.Fatal("Fit() with NaN input should error")
	}
	var uve *errors.UndefinedValueError
	if !errors.As(err, &uve) {
		t.Errorf("error = %v, want UndefinedValueError", err)
	}
}

func TestStandardScalerTransformUsesFitStatistics(t *testing.T) {
	fitX := mat.NewDense(2, 1, []float64{0, 10})
	otherX := mat.NewDense(2, 1, []float64{100, 200})

	scaler := NewStandardScalerDefault()
	if err := scaler.Fit(fitX); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Mean 5, std 5 from the fit data, regardless of what is transformed.
	out, err := scaler.Transform(otherX)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got := out.At(0, 0); got != 19 {
		t.Errorf("Transform(100) = %v, want 19", got)
	}
	if got := out.At(1, 0); got != 39 {
		t.Errorf("Transform(200) = %v, want 39", got)
	}
}

func TestStandardScalerInverseTransformRoundTrip(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1.5, -2,
		3.25, 0,
		-1, 4.5,
	})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(restored.At(i, j)-X.At(i, j)) > 1e-10 {
				t.Errorf("restored[%d,%d] = %v, want %v", i, j, restored.At(i, j), X.At(i, j))
			}
		}
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScalerDefault()
	X := mat.NewDense(1, 1, []float64{1})

	_, err := scaler.Transform(X)
	if err == nil {
		t.Fatal("Transform() before Fit should error")
	}
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Errorf("error = %v, want NotFittedError", err)
	}
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	_, err := scaler.Transform(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))
	if err == nil {
		t.Fatal("Transform() with extra feature should error")
	}
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Errorf("error = %v, want DimensionError", err)
	}
}
