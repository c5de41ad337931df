package dataset

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		[]string{"Year", "GDP"},
		map[string][]float64{
			"Year": {2000, 2001, 2002},
			"GDP":  {100, math.NaN(), 300},
		},
		[]string{"A", "B", "A"},
		[]string{"Developing", "Developed", "Developing"},
		[]float64{60, 65, 70},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ds
}

func TestNewValidatesLengths(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		data    map[string][]float64
		country []string
		wantErr bool
	}{
		{
			name:    "consistent lengths",
			columns: []string{"Year"},
			data:    map[string][]float64{"Year": {1, 2}},
			country: []string{"A", "B"},
		},
		{
			name:    "column length mismatch",
			columns: []string{"Year", "GDP"},
			data:    map[string][]float64{"Year": {1, 2}, "GDP": {1}},
			country: []string{"A", "B"},
			wantErr: true,
		},
		{
			name:    "country length mismatch",
			columns: []string{"Year"},
			data:    map[string][]float64{"Year": {1, 2}},
			country: []string{"A"},
			wantErr: true,
		},
		{
			name:    "listed column not provided",
			columns: []string{"Year", "GDP"},
			data:    map[string][]float64{"Year": {1, 2}},
			country: []string{"A", "B"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.columns, tt.data, tt.country, nil, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestColumnReturnsCopy(t *testing.T) {
	ds := sampleDataset(t)

	year, err := ds.Column("Year")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	year[0] = -1

	again, _ := ds.Column("Year")
	if again[0] != 2000 {
		t.Error("mutating a returned column must not affect the dataset")
	}
}

func TestWithColumnImmutability(t *testing.T) {
	ds := sampleDataset(t)

	replaced, err := ds.WithColumn("GDP", []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("WithColumn() error = %v", err)
	}

	orig, _ := ds.Column("GDP")
	if orig[0] != 100 || !math.IsNaN(orig[1]) {
		t.Error("WithColumn must not mutate the original dataset")
	}
	next, _ := replaced.Column("GDP")
	if next[0] != 1 {
		t.Errorf("replaced GDP[0] = %v, want 1", next[0])
	}

	appended, err := ds.WithColumn("New", []float64{9, 9, 9})
	if err != nil {
		t.Fatalf("WithColumn() append error = %v", err)
	}
	cols := appended.Columns()
	if cols[len(cols)-1] != "New" {
		t.Errorf("appended column must come last, got %v", cols)
	}
	if ds.NumColumns() != 2 {
		t.Error("appending to a snapshot must not grow the original")
	}

	if _, err := ds.WithColumn("Short", []float64{1}); err == nil {
		t.Error("WithColumn() with wrong length should error")
	}
}

func TestDropColumn(t *testing.T) {
	ds := sampleDataset(t)

	dropped, err := ds.DropColumn("GDP")
	if err != nil {
		t.Fatalf("DropColumn() error = %v", err)
	}
	if dropped.HasColumn("GDP") {
		t.Error("dropped column still present")
	}
	if !ds.HasColumn("GDP") {
		t.Error("DropColumn must not mutate the original dataset")
	}

	if _, err := ds.DropColumn("Nope"); err == nil {
		t.Error("DropColumn() on a missing column should error")
	}
}

func TestDropCountryAndStatusLabels(t *testing.T) {
	ds := sampleDataset(t)

	noCountry := ds.DropCountry()
	if noCountry.HasCountry() {
		t.Error("DropCountry() left the country column in place")
	}
	if !ds.HasCountry() {
		t.Error("DropCountry must not mutate the original dataset")
	}

	noStatus := ds.WithoutStatusLabels()
	if noStatus.HasStatusLabels() {
		t.Error("WithoutStatusLabels() left the labels in place")
	}
	if !ds.HasStatusLabels() {
		t.Error("WithoutStatusLabels must not mutate the original dataset")
	}
}

func TestSubsetPreservesOrder(t *testing.T) {
	ds := sampleDataset(t)

	sub, err := ds.Subset([]int{2, 0})
	if err != nil {
		t.Fatalf("Subset() error = %v", err)
	}
	if sub.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", sub.NumRows())
	}

	year, _ := sub.Column("Year")
	if year[0] != 2002 || year[1] != 2000 {
		t.Errorf("Year = %v, want [2002 2000]", year)
	}
	if c := sub.Country(); c[0] != "A" || c[1] != "A" {
		t.Errorf("Country = %v, want [A A]", c)
	}
	if y := sub.Target(); y[0] != 70 || y[1] != 60 {
		t.Errorf("Target = %v, want [70 60]", y)
	}

	if _, err := ds.Subset([]int{5}); err == nil {
		t.Error("Subset() with out-of-range index should error")
	}
}

func TestMatrixLayout(t *testing.T) {
	ds := sampleDataset(t)

	m, err := ds.Matrix()
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	r, c := m.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("Matrix() dims = %dx%d, want 3x2", r, c)
	}
	// Column order follows declaration order.
	if m.At(0, 0) != 2000 || m.At(0, 1) != 100 {
		t.Errorf("row 0 = [%v %v], want [2000 100]", m.At(0, 0), m.At(0, 1))
	}
	if !math.IsNaN(m.At(1, 1)) {
		t.Errorf("missing value must survive as NaN, got %v", m.At(1, 1))
	}
}

func TestCheckSchema(t *testing.T) {
	ds := sampleDataset(t)

	same := sampleDataset(t)
	if err := ds.CheckSchema(same, "test"); err != nil {
		t.Errorf("CheckSchema() on identical schema error = %v", err)
	}

	dropped, _ := same.DropColumn("GDP")
	if err := ds.CheckSchema(dropped, "test"); err == nil {
		t.Error("CheckSchema() should reject differing column counts")
	}

	reordered, err := New(
		[]string{"GDP", "Year"},
		map[string][]float64{
			"Year": {2000, 2001, 2002},
			"GDP":  {100, 200, 300},
		},
		[]string{"A", "B", "A"},
		[]string{"Developing", "Developed", "Developing"},
		nil,
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := ds.CheckSchema(reordered, "test"); err == nil {
		t.Error("CheckSchema() should reject out-of-order columns")
	}

	if err := ds.CheckSchema(same.DropCountry(), "test"); err == nil {
		t.Error("CheckSchema() should reject country presence mismatch")
	}

	var se *errors.SchemaError
	err = ds.CheckSchema(dropped, "test")
	if !errors.As(err, &se) {
		t.Errorf("error = %v, want SchemaError", err)
	}
}

func TestCheckDefined(t *testing.T) {
	ds := sampleDataset(t)

	err := ds.CheckDefined("Scaled")
	if err == nil {
		t.Fatal("CheckDefined() should flag the missing GDP value")
	}
	var uve *errors.UndefinedValueError
	if !errors.As(err, &uve) {
		t.Fatalf("error = %v, want UndefinedValueError", err)
	}
	if uve.Column != "GDP" || uve.Rows != 1 {
		t.Errorf("UndefinedValueError = %+v, want column GDP with 1 row", uve)
	}

	filled, _ := ds.WithColumn("GDP", []float64{100, 200, 300})
	if err := filled.CheckDefined("Scaled"); err != nil {
		t.Errorf("CheckDefined() on complete data error = %v", err)
	}
}

func TestMissingCount(t *testing.T) {
	ds := sampleDataset(t)

	n, err := ds.MissingCount("GDP")
	if err != nil {
		t.Fatalf("MissingCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("MissingCount(GDP) = %d, want 1", n)
	}

	n, err = ds.MissingCount("Year")
	if err != nil {
		t.Fatalf("MissingCount() error = %v", err)
	}
	if n != 0 {
		t.Errorf("MissingCount(Year) = %d, want 0", n)
	}

	if _, err := ds.MissingCount("Nope"); err == nil {
		t.Error("MissingCount() on a missing column should error")
	}
}
