package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/lifeexp/dataset"
	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// Names of the synthesized feature columns, appended in this order.
const (
	GDPPerCapitaColumn        = "GDP_per_capita"
	ChildMortalityRatioColumn = "Child_mortality_ratio"
	HealthExpPerGDPColumn     = "Health_expenditure_per_GDP"
)

// Source columns consumed by feature synthesis.
const (
	gdpColumn         = "GDP"
	populationColumn  = "Population"
	underFiveColumn   = "under-five deaths"
	infantDeathColumn = "infant deaths"
	totalExpColumn    = "Total expenditure"
)

// SynthesizeFeatures derives three numeric columns row-wise from existing
// ones: GDP per capita, the ratio of under-five to infant deaths, and total
// health expenditure relative to GDP. It is stateless and must be applied
// identically, in the same column order, to every partition.
//
// A zero denominator yields an undefined value (NaN), never an infinity.
// Synthesis runs after imputation, so a residual NaN surfaces as a fatal
// UndefinedValueError at the next stage that requires defined input.
func SynthesizeFeatures(ds *dataset.Dataset) (*dataset.Dataset, error) {
	for _, name := range []string{gdpColumn, populationColumn, underFiveColumn, infantDeathColumn, totalExpColumn} {
		if !ds.HasColumn(name) {
			return nil, errors.NewSchemaError("Featurized", name,
				"source column for feature synthesis missing from input")
		}
	}

	gdp, err := ds.Column(gdpColumn)
	if err != nil {
		return nil, err
	}
	population, err := ds.Column(populationColumn)
	if err != nil {
		return nil, err
	}
	underFive, err := ds.Column(underFiveColumn)
	if err != nil {
		return nil, err
	}
	infant, err := ds.Column(infantDeathColumn)
	if err != nil {
		return nil, err
	}
	totalExp, err := ds.Column(totalExpColumn)
	if err != nil {
		return nil, err
	}

	out, err := ds.WithColumn(GDPPerCapitaColumn, ratioColumn(gdp, population))
	if err != nil {
		return nil, err
	}
	out, err = out.WithColumn(ChildMortalityRatioColumn, ratioColumn(underFive, infant))
	if err != nil {
		return nil, err
	}
	return out.WithColumn(HealthExpPerGDPColumn, ratioColumn(totalExp, gdp))
}

// ratioColumn computes num/den element-wise with zero denominators mapped to
// NaN. NaN operands propagate naturally.
func ratioColumn(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i := range num {
		if den[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = num[i] / den[i]
	}
	return out
}
