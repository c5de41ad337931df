package boosting

import "math"

// earlyStopping tracks validation scores during boosting and decides when
// additional iterations stop improving generalization.
type earlyStopping struct {
	rounds          int
	bestScore       float64
	bestIteration   int
	roundsNoImprove int
	enabled         bool
}

// newEarlyStopping creates an early stopping tracker. rounds <= 0 disables
// it. The monitored metric (validation RMSE) is minimized.
func newEarlyStopping(rounds int) *earlyStopping {
	if rounds <= 0 {
		return &earlyStopping{enabled: false}
	}
	return &earlyStopping{
		rounds:    rounds,
		bestScore: math.Inf(1),
		enabled:   true,
	}
}

// update records the score of the given iteration and reports whether
// training should stop.
func (es *earlyStopping) update(iteration int, score float64) bool {
	if !es.enabled {
		return false
	}

	if score < es.bestScore {
		es.bestScore = score
		es.bestIteration = iteration
		es.roundsNoImprove = 0
	} else {
		es.roundsNoImprove++
	}
	return es.roundsNoImprove >= es.rounds
}
