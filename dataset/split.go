package dataset

import (
	"math"
	"math/rand"

	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// Split partitions the dataset into a fit-portion and a held-out portion via
// a reproducible seeded shuffle. heldOutFraction is the share of rows
// withheld from fitting; the held-out row count is round(n × fraction).
// Running Split twice with the same seed yields identical partitions.
func (d *Dataset) Split(heldOutFraction float64, seed int64) (fit, heldOut *Dataset, err error) {
	if heldOutFraction <= 0 || heldOutFraction >= 1 {
		return nil, nil, errors.NewValueError("Dataset.Split", "held-out fraction must be in (0, 1)")
	}
	if d.nRows < 2 {
		return nil, nil, errors.NewValueError("Dataset.Split", "need at least 2 rows to split")
	}

	indices := make([]int, d.nRows)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(d.nRows, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nHeld := int(math.Round(float64(d.nRows) * heldOutFraction))
	if nHeld == 0 || nHeld == d.nRows {
		return nil, nil, errors.NewValueError("Dataset.Split", "held-out fraction leaves an empty partition")
	}

	heldOut, err = d.Subset(indices[:nHeld])
	if err != nil {
		return nil, nil, err
	}
	fit, err = d.Subset(indices[nHeld:])
	if err != nil {
		return nil, nil, err
	}
	return fit, heldOut, nil
}
