package scoring

import (
	"errors"
	"fmt"
)

// ErrNothingToRank rejects completing a race with an empty finish order.
var ErrNothingToRank = errors.New("no boats in finish order")

// MissingBoatsError is returned when completion is attempted without force
// while some of the regatta's boats are not in the finish order.
type MissingBoatsError struct {
	Count   int
	BoatIDs []int
}

func (e *MissingBoatsError) Error() string {
	return fmt.Sprintf("%d boat(s) missing from finish order", e.Count)
}

// Completion is the outcome of a successful Complete.
type Completion struct {
	Placings   []Placing
	Incomplete bool
	// Backfilled lists the boats that were added with DidNotStart.
	Backfilled []int
}

// Complete decides whether the order covers every boat in boatIDs. Missing
// boats fail the call unless force is set, in which case they are appended
// to o with DidNotStart and the completion is flagged incomplete.
func Complete(o *FinishOrder, boatIDs []int, force bool) (*Completion, error) {
	if o.Len() == 0 {
		return nil, ErrNothingToRank
	}

	var missing []int
	seen := make(map[int]bool, len(boatIDs))
	for _, id := range boatIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !o.Contains(id) {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 && !force {
		return nil, &MissingBoatsError{Count: len(missing), BoatIDs: missing}
	}

	for _, id := range missing {
		if err := o.appendPenalty(id, DidNotStart); err != nil {
			return nil, fmt.Errorf("backfill %d: %w", id, err)
		}
	}

	return &Completion{
		Placings:   o.Placings(),
		Incomplete: len(missing) > 0,
		Backfilled: missing,
	}, nil
}
