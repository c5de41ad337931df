package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

const trainCSV = `Country,Year,Status,Life expectancy,GDP
Afghanistan,2015,Developing,65.0,584.26
Albania,2015,Developing,77.8,3954.23
Germany,2015,Developed,81.0,NA
`

func TestFromCSVTraining(t *testing.T) {
	ds, err := FromCSV(strings.NewReader(trainCSV), true)
	if err != nil {
		t.Fatalf("FromCSV() error = %v", err)
	}

	if ds.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", ds.NumRows())
	}
	// Country, Status and the target are carried out of band; Year and GDP
	// remain as numeric columns.
	if got := ds.Columns(); len(got) != 2 || got[0] != "Year" || got[1] != "GDP" {
		t.Errorf("Columns() = %v, want [Year GDP]", got)
	}

	if c := ds.Country(); c[0] != "Afghanistan" || c[2] != "Germany" {
		t.Errorf("Country = %v", c)
	}
	if s := ds.StatusLabels(); s[2] != "Developed" {
		t.Errorf("StatusLabels = %v", s)
	}
	if y := ds.Target(); y[1] != 77.8 {
		t.Errorf("Target = %v", y)
	}

	gdp, _ := ds.Column("GDP")
	if gdp[0] != 584.26 {
		t.Errorf("GDP[0] = %v, want 584.26", gdp[0])
	}
	if !math.IsNaN(gdp[2]) {
		t.Errorf("GDP[2] = %v, want NaN for the NA marker", gdp[2])
	}
}

func TestFromCSVTestData(t *testing.T) {
	csv := `Country,Year,Status,GDP
Afghanistan,2016,Developing,600.0
`
	ds, err := FromCSV(strings.NewReader(csv), false)
	if err != nil {
		t.Fatalf("FromCSV() error = %v", err)
	}
	if ds.HasTarget() {
		t.Error("test data must not carry a target")
	}
}

func TestFromCSVMissingMarkers(t *testing.T) {
	tests := []struct {
		cell string
		nan  bool
	}{
		{"", true},
		{"NA", true},
		{"N/A", true},
		{"nan", true},
		{"NaN", true},
		{" 42.5 ", false},
	}
	for _, tt := range tests {
		got, err := parseCell(tt.cell)
		if err != nil {
			t.Errorf("parseCell(%q) error = %v", tt.cell, err)
			continue
		}
		if math.IsNaN(got) != tt.nan {
			t.Errorf("parseCell(%q) = %v, want NaN=%v", tt.cell, got, tt.nan)
		}
	}
}

func TestFromCSVSchemaErrors(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		withTarget bool
	}{
		{
			name:       "missing country column",
			csv:        "Year,Status,Life expectancy\n2015,Developing,65.0\n",
			withTarget: true,
		},
		{
			name:       "missing status column",
			csv:        "Country,Year,Life expectancy\nAfghanistan,2015,65.0\n",
			withTarget: true,
		},
		{
			name:       "missing target column",
			csv:        "Country,Year,Status\nAfghanistan,2015,Developing\n",
			withTarget: true,
		},
		{
			name:       "unparseable numeric cell",
			csv:        "Country,Year,Status\nAfghanistan,abc,Developing\n",
			withTarget: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCSV(strings.NewReader(tt.csv), tt.withTarget)
			if err == nil {
				t.Fatal("FromCSV() should error")
			}
			var se *errors.SchemaError
			if !errors.As(err, &se) {
				t.Errorf("error = %v, want SchemaError", err)
			}
		})
	}
}

func TestWriteSubmission(t *testing.T) {
	var sb strings.Builder
	if err := WriteSubmission(&sb, []float64{65.5, 77.25}); err != nil {
		t.Fatalf("WriteSubmission() error = %v", err)
	}

	want := "Life expectancy\n65.5\n77.25\n"
	if sb.String() != want {
		t.Errorf("WriteSubmission() = %q, want %q", sb.String(), want)
	}
}

func TestWriteSubmissionRejectsNaN(t *testing.T) {
	var sb strings.Builder
	err := WriteSubmission(&sb, []float64{65.5, math.NaN()})
	if err == nil {
		t.Fatal("WriteSubmission() with NaN prediction should error")
	}
	var uve *errors.UndefinedValueError
	if !errors.As(err, &uve) {
		t.Errorf("error = %v, want UndefinedValueError", err)
	}
}
