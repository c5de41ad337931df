package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// FromCSV reads country-year records from CSV data. The first row is the
// header; it must contain the Country and Status columns and, when
// withTarget is set, the target column. Every other column is parsed as a
// float64; empty cells and the markers "NA" / "N/A" become NaN (missing).
func FromCSV(r io.Reader, withTarget bool) (*Dataset, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	countryIdx, statusIdx, targetIdx := -1, -1, -1
	numericIdx := make([]int, 0, len(header))
	numericNames := make([]string, 0, len(header))

	for i, name := range header {
		switch {
		case name == CountryColumn:
			countryIdx = i
		case name == StatusColumn:
			statusIdx = i
		case withTarget && name == TargetColumn:
			targetIdx = i
		default:
			numericIdx = append(numericIdx, i)
			numericNames = append(numericNames, name)
		}
	}

	if countryIdx == -1 {
		return nil, errors.NewSchemaError("Loaded", CountryColumn, "required column missing from input")
	}
	if statusIdx == -1 {
		return nil, errors.NewSchemaError("Loaded", StatusColumn, "required column missing from input")
	}
	if withTarget && targetIdx == -1 {
		return nil, errors.NewSchemaError("Loaded", TargetColumn, "required column missing from input")
	}

	data := make(map[string][]float64, len(numericNames))
	for _, name := range numericNames {
		data[name] = []float64{}
	}
	var country, status []string
	var target []float64

	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read CSV row %d", row)
		}
		row++

		country = append(country, strings.TrimSpace(record[countryIdx]))
		status = append(status, strings.TrimSpace(record[statusIdx]))

		if withTarget {
			y, err := parseCell(record[targetIdx])
			if err != nil {
				return nil, errors.NewSchemaError("Loaded", TargetColumn,
					fmt.Sprintf("unparseable value %q at row %d", record[targetIdx], row))
			}
			target = append(target, y)
		}

		for k, idx := range numericIdx {
			name := numericNames[k]
			v, err := parseCell(record[idx])
			if err != nil {
				return nil, errors.NewSchemaError("Loaded", name,
					fmt.Sprintf("unparseable value %q at row %d", record[idx], row))
			}
			data[name] = append(data[name], v)
		}
	}

	return New(numericNames, data, country, status, target)
}

// FromCSVFile reads country-year records from a CSV file on disk.
func FromCSVFile(path string, withTarget bool) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	ds, err := FromCSV(f, withTarget)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return ds, nil
}

// parseCell parses a numeric cell, mapping empty and NA markers to NaN.
func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch cell {
	case "", "NA", "N/A", "nan", "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// WriteSubmission writes predictions as a single-column CSV with the target
// column name as header, one row per prediction, in input order.
func WriteSubmission(w io.Writer, predictions []float64) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{TargetColumn}); err != nil {
		return errors.Wrap(err, "failed to write submission header")
	}
	for i, p := range predictions {
		if math.IsNaN(p) {
			return errors.NewUndefinedValueError("Predicted", TargetColumn, 1)
		}
		if err := writer.Write([]string{strconv.FormatFloat(p, 'f', -1, 64)}); err != nil {
			return errors.Wrapf(err, "failed to write prediction row %d", i+1)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush submission")
}

// WriteSubmissionFile writes predictions to a CSV file on disk.
func WriteSubmissionFile(path string, predictions []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	return WriteSubmission(f, predictions)
}
