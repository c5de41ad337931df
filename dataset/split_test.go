package dataset

import (
	"testing"
)

func splitFixture(t *testing.T, n int) *Dataset {
	t.Helper()
	year := make([]float64, n)
	country := make([]string, n)
	status := make([]string, n)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		year[i] = float64(i)
		country[i] = "A"
		status[i] = "Developing"
		target[i] = float64(i)
	}
	ds, err := New([]string{"Year"}, map[string][]float64{"Year": year}, country, status, target)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ds
}

func TestSplitRowCounts(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		wantHeld int
	}{
		{2848, 0.2, 570}, // round(2848 * 0.2) = 570
		{10, 0.2, 2},
		{10, 0.25, 3}, // rounds 2.5 up
		{100, 0.5, 50},
	}

	for _, tt := range tests {
		ds := splitFixture(t, tt.n)
		fit, heldOut, err := ds.Split(tt.fraction, 42)
		if err != nil {
			t.Fatalf("Split(%d, %v) error = %v", tt.n, tt.fraction, err)
		}
		if heldOut.NumRows() != tt.wantHeld {
			t.Errorf("Split(%d, %v) held out %d rows, want %d",
				tt.n, tt.fraction, heldOut.NumRows(), tt.wantHeld)
		}
		if fit.NumRows()+heldOut.NumRows() != tt.n {
			t.Errorf("partitions do not cover the input: %d + %d != %d",
				fit.NumRows(), heldOut.NumRows(), tt.n)
		}
	}
}

func TestSplitReproducible(t *testing.T) {
	ds := splitFixture(t, 100)

	fitA, heldA, err := ds.Split(0.2, 7)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	fitB, heldB, err := ds.Split(0.2, 7)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	yA, _ := fitA.Column("Year")
	yB, _ := fitB.Column("Year")
	for i := range yA {
		if yA[i] != yB[i] {
			t.Fatalf("fit partition differs at row %d with identical seed", i)
		}
	}
	hA, _ := heldA.Column("Year")
	hB, _ := heldB.Column("Year")
	for i := range hA {
		if hA[i] != hB[i] {
			t.Fatalf("held-out partition differs at row %d with identical seed", i)
		}
	}
}

func TestSplitSeedChangesPartition(t *testing.T) {
	ds := splitFixture(t, 100)

	_, heldA, err := ds.Split(0.2, 1)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	_, heldB, err := ds.Split(0.2, 2)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	yA, _ := heldA.Column("Year")
	yB, _ := heldB.Column("Year")
	same := true
	for i := range yA {
		if yA[i] != yB[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical held-out partitions")
	}
}

func TestSplitPartitionsAreDisjoint(t *testing.T) {
	ds := splitFixture(t, 50)

	fit, heldOut, err := ds.Split(0.3, 11)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	seen := make(map[float64]bool)
	held, _ := heldOut.Column("Year")
	for _, v := range held {
		seen[v] = true
	}
	fitYears, _ := fit.Column("Year")
	for _, v := range fitYears {
		if seen[v] {
			t.Fatalf("row %v appears in both partitions", v)
		}
	}
}

func TestSplitValidation(t *testing.T) {
	ds := splitFixture(t, 10)

	if _, _, err := ds.Split(0, 1); err == nil {
		t.Error("Split(0) should error")
	}
	if _, _, err := ds.Split(1, 1); err == nil {
		t.Error("Split(1) should error")
	}
	if _, _, err := ds.Split(0.01, 1); err == nil {
		t.Error("a fraction rounding to zero held-out rows should error")
	}

	tiny := splitFixture(t, 1)
	if _, _, err := tiny.Split(0.5, 1); err == nil {
		t.Error("Split() on a single row should error")
	}
}
