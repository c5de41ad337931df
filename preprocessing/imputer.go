// Package preprocessing provides the fitted data transformations of the
// pipeline: per-country missing-value imputation, derived feature synthesis
// and standardization.
package preprocessing

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/YuminosukeSato/lifeexp/core/model"
	"github.com/YuminosukeSato/lifeexp/dataset"
	"github.com/YuminosukeSato/lifeexp/pkg/errors"
	"github.com/YuminosukeSato/lifeexp/pkg/log"
)

// Status label encoding. Any other label is a schema violation, never a
// silent missing value.
const (
	statusDeveloping = "Developing"
	statusDeveloped  = "Developed"

	StatusDevelopingValue = 0.0
	StatusDevelopedValue  = 1.0
)

// ColumnStatistics holds the fitted imputation state of one column: the mean
// of observed values per country key, and the global median used when a key
// was never seen during fit or its per-country statistic is undefined.
type ColumnStatistics struct {
	CountryMean  map[string]float64
	GlobalMedian float64
}

// CountryMeanImputer learns per-country fill statistics for every column
// that contains at least one missing value at fit time, and applies them to
// any dataset sharing the country key column. Columns fully observed at fit
// time pass through Transform untouched.
//
// The fitted state derives exclusively from the dataset given to Fit;
// Transform never refits.
type CountryMeanImputer struct {
	model.StateManager

	// ImputedColumns lists the fitted columns in fit dataset order.
	ImputedColumns []string

	// Stats maps a fitted column name to its statistics.
	Stats map[string]ColumnStatistics

	// FitCountries records every country key observed during fit, for
	// distinguishing unseen keys from keys with undefined statistics.
	FitCountries map[string]bool
}

// NewCountryMeanImputer creates an unfitted CountryMeanImputer.
func NewCountryMeanImputer() *CountryMeanImputer {
	return &CountryMeanImputer{}
}

// Fit learns imputation statistics from the given dataset. For each numeric
// column with at least one missing value it computes the per-country mean of
// observed values and the global median across all rows. Fully observed
// columns get no entry and are left untouched by Transform.
func (imp *CountryMeanImputer) Fit(ds *dataset.Dataset) error {
	if ds.NumRows() == 0 {
		return errors.NewModelError("CountryMeanImputer.Fit", "empty data", errors.ErrEmptyData)
	}
	if !ds.HasCountry() {
		return errors.NewSchemaError("CountryMeanImputer.Fit", dataset.CountryColumn,
			"country key column required to fit imputation statistics")
	}

	country := ds.Country()
	imputed := []string{}
	columnStats := make(map[string]ColumnStatistics)

	for _, name := range ds.Columns() {
		col, err := ds.Column(name)
		if err != nil {
			return err
		}

		missing := 0
		observed := make([]float64, 0, len(col))
		byCountry := make(map[string][]float64)
		for i, v := range col {
			if math.IsNaN(v) {
				missing++
				continue
			}
			observed = append(observed, v)
			byCountry[country[i]] = append(byCountry[country[i]], v)
		}
		if missing == 0 {
			continue
		}
		if len(observed) == 0 {
			return errors.NewModelError("CountryMeanImputer.Fit",
				"column "+name+" has no observed values to fit on", errors.ErrEmptyData)
		}

		median, err := stats.Median(observed)
		if err != nil {
			return errors.Wrapf(err, "CountryMeanImputer.Fit: global median of %q", name)
		}

		countryMean := make(map[string]float64, len(byCountry))
		for key, values := range byCountry {
			mean, err := stats.Mean(values)
			if err != nil {
				return errors.Wrapf(err, "CountryMeanImputer.Fit: mean of %q for %q", name, key)
			}
			countryMean[key] = mean
		}

		imputed = append(imputed, name)
		columnStats[name] = ColumnStatistics{
			CountryMean:  countryMean,
			GlobalMedian: median,
		}
	}

	fitCountries := make(map[string]bool, 256)
	for _, key := range country {
		fitCountries[key] = true
	}

	imp.ImputedColumns = imputed
	imp.Stats = columnStats
	imp.FitCountries = fitCountries
	imp.SetDimensions(ds.NumColumns(), ds.NumRows())
	imp.SetFitted()

	log.GetLoggerWithName("preprocessing.imputer").Info("imputer fitted",
		log.OperationKey, "fit",
		log.ColumnsKey, len(imputed),
		log.SamplesKey, ds.NumRows())
	return nil
}

// Transform fills missing values using the fitted statistics and encodes the
// development status labels into a numeric 0/1 column. For each fitted
// column, a missing value is replaced by the per-country mean when the row's
// key was seen at fit time with a defined statistic, otherwise by the global
// median. Keys never seen during fit emit a non-fatal UnseenCategoryWarning.
func (imp *CountryMeanImputer) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if !imp.IsFitted() {
		return nil, errors.NewNotFittedError("CountryMeanImputer", "Transform")
	}
	if !ds.HasCountry() {
		return nil, errors.NewSchemaError("CountryMeanImputer.Transform", dataset.CountryColumn,
			"country key column required to apply imputation statistics")
	}

	country := ds.Country()
	warned := make(map[string]bool)
	out := ds

	for _, name := range imp.ImputedColumns {
		if !ds.HasColumn(name) {
			return nil, errors.NewSchemaError("CountryMeanImputer.Transform", name,
				"column present during fit is missing from input")
		}
		colStats := imp.Stats[name]

		col, err := out.Column(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			if !math.IsNaN(v) {
				continue
			}
			key := country[i]
			if mean, ok := colStats.CountryMean[key]; ok {
				col[i] = mean
				continue
			}
			col[i] = colStats.GlobalMedian
			if !imp.FitCountries[key] && !warned[name+"\x00"+key] {
				warned[name+"\x00"+key] = true
				errors.Warn(errors.NewUnseenCategoryWarning(name, key, colStats.GlobalMedian))
			}
		}

		out, err = out.WithColumn(name, col)
		if err != nil {
			return nil, err
		}
	}

	return imp.encodeStatus(out)
}

// FitTransform fits the imputer on the dataset and transforms the same
// dataset. Pure composition of Fit and Transform.
func (imp *CountryMeanImputer) FitTransform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if err := imp.Fit(ds); err != nil {
		return nil, err
	}
	return imp.Transform(ds)
}

// encodeStatus replaces the raw status labels with a numeric 0/1 column
// under the same name. A label outside the fixed binary mapping is a fatal
// schema violation.
func (imp *CountryMeanImputer) encodeStatus(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if !ds.HasStatusLabels() {
		if ds.HasColumn(dataset.StatusColumn) {
			// Already encoded; idempotent pass-through.
			return ds, nil
		}
		return nil, errors.NewSchemaError("CountryMeanImputer.Transform", dataset.StatusColumn,
			"status column missing from input")
	}

	labels := ds.StatusLabels()
	encoded := make([]float64, len(labels))
	for i, label := range labels {
		switch label {
		case statusDeveloping:
			encoded[i] = StatusDevelopingValue
		case statusDeveloped:
			encoded[i] = StatusDevelopedValue
		default:
			return nil, errors.NewSchemaError("CountryMeanImputer.Transform", dataset.StatusColumn,
				"unexpected value \""+label+"\" outside fixed binary mapping")
		}
	}

	out, err := ds.WithColumn(dataset.StatusColumn, encoded)
	if err != nil {
		return nil, err
	}
	return out.WithoutStatusLabels(), nil
}
