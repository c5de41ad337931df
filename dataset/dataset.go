// Package dataset provides the immutable tabular dataset value flowing
// through the pipeline. A Dataset holds ordered numeric columns (NaN marks a
// missing value), the country category key, the raw development status label
// and an optional target vector. Every operation returns a new Dataset;
// column vectors are shared between snapshots and never mutated in place.
package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// Well-known column names of the country-year health records.
const (
	// CountryColumn is the categorical key used to group imputation statistics.
	CountryColumn = "Country"

	// StatusColumn is the binary development status label. It enters the
	// pipeline as a string label and leaves imputation as a numeric 0/1
	// column under the same name.
	StatusColumn = "Status"

	// TargetColumn is the prediction target, present in training data only.
	TargetColumn = "Life expectancy"
)

// Dataset is an immutable snapshot of country-year records.
type Dataset struct {
	columns []string
	data    map[string][]float64
	country []string  // nil once the country column has been dropped
	status  []string  // nil once Status has been encoded to a numeric column
	target  []float64 // nil for test data
	nRows   int
}

// New assembles a Dataset from parallel column vectors. Every supplied slice
// must have the same length; columns lists the numeric column order and must
// have an entry in data for each name.
func New(columns []string, data map[string][]float64, country, status []string, target []float64) (*Dataset, error) {
	if len(columns) == 0 && country == nil && target == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New")
	}

	nRows := -1
	check := func(n int, name string) error {
		if nRows == -1 {
			nRows = n
			return nil
		}
		if n != nRows {
			return errors.NewDimensionError("dataset.New("+name+")", nRows, n, 0)
		}
		return nil
	}

	for _, name := range columns {
		col, ok := data[name]
		if !ok {
			return nil, errors.NewSchemaError("dataset.New", name, "column listed but not provided")
		}
		if err := check(len(col), name); err != nil {
			return nil, err
		}
	}
	if country != nil {
		if err := check(len(country), CountryColumn); err != nil {
			return nil, err
		}
	}
	if status != nil {
		if err := check(len(status), StatusColumn); err != nil {
			return nil, err
		}
	}
	if target != nil {
		if err := check(len(target), TargetColumn); err != nil {
			return nil, err
		}
	}
	if nRows == -1 {
		nRows = 0
	}

	return &Dataset{
		columns: columns,
		data:    data,
		country: country,
		status:  status,
		target:  target,
		nRows:   nRows,
	}, nil
}

// NumRows returns the number of records.
func (d *Dataset) NumRows() int { return d.nRows }

// NumColumns returns the number of numeric columns.
func (d *Dataset) NumColumns() int { return len(d.columns) }

// Columns returns the ordered numeric column names.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether a numeric column with the given name exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.data[name]
	return ok
}

// Column returns a copy of the named numeric column.
func (d *Dataset) Column(name string) ([]float64, error) {
	col, ok := d.data[name]
	if !ok {
		return nil, errors.NewSchemaError("Dataset.Column", name, "no such column")
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// Country returns the country key column, or nil if it has been dropped.
func (d *Dataset) Country() []string {
	if d.country == nil {
		return nil
	}
	out := make([]string, len(d.country))
	copy(out, d.country)
	return out
}

// HasCountry reports whether the country key column is still present.
func (d *Dataset) HasCountry() bool { return d.country != nil }

// StatusLabels returns the raw development status labels, or nil once the
// column has been encoded numerically.
func (d *Dataset) StatusLabels() []string {
	if d.status == nil {
		return nil
	}
	out := make([]string, len(d.status))
	copy(out, d.status)
	return out
}

// HasStatusLabels reports whether the raw status labels are still present.
func (d *Dataset) HasStatusLabels() bool { return d.status != nil }

// Target returns a copy of the target vector, or nil for test data.
func (d *Dataset) Target() []float64 {
	if d.target == nil {
		return nil
	}
	out := make([]float64, len(d.target))
	copy(out, d.target)
	return out
}

// HasTarget reports whether the target vector is present.
func (d *Dataset) HasTarget() bool { return d.target != nil }

// WithColumn returns a new Dataset with the named numeric column replaced,
// or appended after the existing columns if it does not exist yet.
func (d *Dataset) WithColumn(name string, values []float64) (*Dataset, error) {
	if len(values) != d.nRows {
		return nil, errors.NewDimensionError("Dataset.WithColumn("+name+")", d.nRows, len(values), 0)
	}

	next := d.shallowClone()
	if !d.HasColumn(name) {
		next.columns = append(next.columns, name)
	}
	vals := make([]float64, len(values))
	copy(vals, values)
	next.data[name] = vals
	return next, nil
}

// DropColumn returns a new Dataset without the named numeric column.
func (d *Dataset) DropColumn(name string) (*Dataset, error) {
	if !d.HasColumn(name) {
		return nil, errors.NewSchemaError("Dataset.DropColumn", name, "no such column")
	}

	next := d.shallowClone()
	cols := make([]string, 0, len(d.columns)-1)
	for _, c := range d.columns {
		if c != name {
			cols = append(cols, c)
		}
	}
	next.columns = cols
	delete(next.data, name)
	return next, nil
}

// DropCountry returns a new Dataset without the country key column. The key
// has served its purpose once imputation statistics are applied; the numeric
// learner never sees it.
func (d *Dataset) DropCountry() *Dataset {
	next := d.shallowClone()
	next.country = nil
	return next
}

// WithoutStatusLabels returns a new Dataset without the raw status label
// column. Used after the labels have been encoded into a numeric column.
func (d *Dataset) WithoutStatusLabels() *Dataset {
	next := d.shallowClone()
	next.status = nil
	return next
}

// Subset returns a new Dataset containing the given rows, in the given order.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	for _, idx := range indices {
		if idx < 0 || idx >= d.nRows {
			return nil, errors.NewValueError("Dataset.Subset", "row index out of range")
		}
	}

	data := make(map[string][]float64, len(d.data))
	for name, col := range d.data {
		sub := make([]float64, len(indices))
		for i, idx := range indices {
			sub[i] = col[idx]
		}
		data[name] = sub
	}

	var country, status []string
	if d.country != nil {
		country = make([]string, len(indices))
		for i, idx := range indices {
			country[i] = d.country[idx]
		}
	}
	if d.status != nil {
		status = make([]string, len(indices))
		for i, idx := range indices {
			status[i] = d.status[idx]
		}
	}

	var target []float64
	if d.target != nil {
		target = make([]float64, len(indices))
		for i, idx := range indices {
			target[i] = d.target[idx]
		}
	}

	cols := make([]string, len(d.columns))
	copy(cols, d.columns)

	return &Dataset{
		columns: cols,
		data:    data,
		country: country,
		status:  status,
		target:  target,
		nRows:   len(indices),
	}, nil
}

// Matrix converts the numeric columns into a dense row-major matrix in
// column declaration order.
func (d *Dataset) Matrix() (*mat.Dense, error) {
	if d.nRows == 0 || len(d.columns) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Dataset.Matrix")
	}

	m := mat.NewDense(d.nRows, len(d.columns), nil)
	for j, name := range d.columns {
		col := d.data[name]
		for i := 0; i < d.nRows; i++ {
			m.Set(i, j, col[i])
		}
	}
	return m, nil
}

// TargetVector returns the target as a column vector.
func (d *Dataset) TargetVector() (*mat.VecDense, error) {
	if d.target == nil {
		return nil, errors.NewSchemaError("Dataset.TargetVector", TargetColumn, "dataset has no target")
	}
	v := mat.NewVecDense(d.nRows, nil)
	for i, y := range d.target {
		v.SetVec(i, y)
	}
	return v, nil
}

// TargetMatrix returns the target as an n×1 matrix.
func (d *Dataset) TargetMatrix() (*mat.Dense, error) {
	if d.target == nil {
		return nil, errors.NewSchemaError("Dataset.TargetMatrix", TargetColumn, "dataset has no target")
	}
	m := mat.NewDense(d.nRows, 1, nil)
	for i, y := range d.target {
		m.Set(i, 0, y)
	}
	return m, nil
}

// CheckSchema verifies that other carries exactly the same numeric columns in
// the same order, and agrees on the presence of the country and status
// columns. Any divergence is fatal: the pipeline must not guess a schema.
func (d *Dataset) CheckSchema(other *Dataset, stage string) error {
	if len(d.columns) != len(other.columns) {
		return errors.NewSchemaError(stage, "",
			"partitions disagree on column count")
	}
	for i, name := range d.columns {
		if other.columns[i] != name {
			return errors.NewSchemaError(stage, name,
				"column missing or out of order in other partition")
		}
	}
	if d.HasCountry() != other.HasCountry() {
		return errors.NewSchemaError(stage, CountryColumn,
			"partitions disagree on country column presence")
	}
	if d.HasStatusLabels() != other.HasStatusLabels() {
		return errors.NewSchemaError(stage, StatusColumn,
			"partitions disagree on raw status label presence")
	}
	return nil
}

// CheckDefined verifies that no numeric column still holds an undefined
// (NaN) value. Stages that require fully defined numeric input (scaling,
// training, prediction) call this and abort the run on failure.
func (d *Dataset) CheckDefined(stage string) error {
	for _, name := range d.columns {
		undefined := 0
		for _, v := range d.data[name] {
			if math.IsNaN(v) {
				undefined++
			}
		}
		if undefined > 0 {
			return errors.NewUndefinedValueError(stage, name, undefined)
		}
	}
	return nil
}

// MissingCount returns the number of undefined values in the named column.
func (d *Dataset) MissingCount(name string) (int, error) {
	col, ok := d.data[name]
	if !ok {
		return 0, errors.NewSchemaError("Dataset.MissingCount", name, "no such column")
	}
	count := 0
	for _, v := range col {
		if math.IsNaN(v) {
			count++
		}
	}
	return count, nil
}

// shallowClone copies the container, sharing the column vectors. Callers
// must replace, never mutate, shared slices.
func (d *Dataset) shallowClone() *Dataset {
	cols := make([]string, len(d.columns))
	copy(cols, d.columns)
	data := make(map[string][]float64, len(d.data))
	for name, col := range d.data {
		data[name] = col
	}
	return &Dataset{
		columns: cols,
		data:    data,
		country: d.country,
		status:  d.status,
		target:  d.target,
		nRows:   d.nRows,
	}
}
