package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer はモデルの決定係数（R²）を計算するインターフェース
type Scorer interface {
	// Score は予測の決定係数を返す
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor は回帰モデルの複合インターフェース
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// ValidatingFitter is implemented by learners that monitor a held-out
// validation set while fitting (early stopping). The validation pair is never
// used to compute gradients, only to decide when to stop.
type ValidatingFitter interface {
	FitWithValidation(X, y, Xval, yval mat.Matrix) error
}
