package pipeline

import (
	"github.com/YuminosukeSato/lifeexp/boosting"
	"github.com/YuminosukeSato/lifeexp/dataset"
	"github.com/YuminosukeSato/lifeexp/preprocessing"
)

// ApplyAndPredict pushes raw records through previously fitted components:
// imputation, feature synthesis, category drop, scaling, prediction. It is
// the apply-only half of Run, used to score new data with saved artifacts.
func ApplyAndPredict(
	imputer *preprocessing.CountryMeanImputer,
	scaler *preprocessing.StandardScaler,
	model *boosting.GBTRegressor,
	ds *dataset.Dataset,
) ([]float64, error) {
	out, err := imputer.Transform(ds)
	if err != nil {
		return nil, err
	}
	out, err = preprocessing.SynthesizeFeatures(out)
	if err != nil {
		return nil, err
	}
	out = out.DropCountry()

	if err := out.CheckDefined(StageScaled.String()); err != nil {
		return nil, err
	}
	X, err := out.Matrix()
	if err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(X)
	if err != nil {
		return nil, err
	}

	pred, err := model.Predict(scaled)
	if err != nil {
		return nil, err
	}
	return columnToSlice(pred, StagePredicted.String())
}
