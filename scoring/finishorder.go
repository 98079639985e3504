package scoring

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	ErrBoatPresent            = errors.New("boat already in finish order")
	ErrBoatAbsent             = errors.New("boat not in finish order")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrCrossesPenaltyBoundary = errors.New("move crosses the penalty boundary")
	ErrInvalidRank            = errors.New("rank must be at least 1")
	ErrSegmentation           = errors.New("finish order segmentation violated")
)

// Placing is one boat's outcome in a race: a 1-based placement for a
// finisher, or a penalty code with Placement 0.
type Placing struct {
	BoatID    int
	Placement int
	Penalty   Penalty
}

// Snapshot is a copy of a finish order suitable for persistence.
type Snapshot struct {
	Order     []int
	Penalties map[int]Penalty
}

// Placings turns the snapshot into result rows. Finishers get their 1-based
// position within the active segment.
func (s Snapshot) Placings() []Placing {
	out := make([]Placing, 0, len(s.Order))
	place := 1
	for _, id := range s.Order {
		if p, ok := s.Penalties[id]; ok {
			out = append(out, Placing{BoatID: id, Penalty: p})
			continue
		}
		out = append(out, Placing{BoatID: id, Placement: place})
		place++
	}
	return out
}

// FinishOrder is the working ranking of one race under capture. Boats
// without a penalty (the active segment) always precede penalized boats, and
// the penalty segment is sorted by Penalty.Priority.
//
// A FinishOrder is not safe for concurrent use.
type FinishOrder struct {
	order     []int
	penaltyOf map[int]Penalty
}

// NewFinishOrder returns an empty order.
func NewFinishOrder() *FinishOrder {
	return &FinishOrder{penaltyOf: map[int]Penalty{}}
}

// Rehydrate rebuilds an order from stored placings: finishers by placement,
// then penalized boats by priority. Ties keep input order.
func Rehydrate(placings []Placing) *FinishOrder {
	var active, penalized []Placing
	for _, p := range placings {
		if p.Penalty != "" {
			penalized = append(penalized, p)
		} else {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Placement < active[j].Placement })
	sort.SliceStable(penalized, func(i, j int) bool {
		return penalized[i].Penalty.Priority() < penalized[j].Penalty.Priority()
	})

	o := NewFinishOrder()
	for _, p := range active {
		if o.Contains(p.BoatID) {
			continue
		}
		o.order = append(o.order, p.BoatID)
	}
	for _, p := range penalized {
		if o.Contains(p.BoatID) {
			continue
		}
		o.order = append(o.order, p.BoatID)
		o.penaltyOf[p.BoatID] = p.Penalty
	}
	return o
}

// Len is the number of boats in the order.
func (o *FinishOrder) Len() int { return len(o.order) }

// ActiveLen is the number of boats without a penalty. It is also the index
// of the first penalized boat.
func (o *FinishOrder) ActiveLen() int { return o.firstPenaltyIndex() }

// Contains reports whether boatID is in the order.
func (o *FinishOrder) Contains(boatID int) bool { return o.IndexOf(boatID) >= 0 }

// IndexOf returns the zero-based position of boatID, or -1.
func (o *FinishOrder) IndexOf(boatID int) int { return slices.Index(o.order, boatID) }

// PenaltyOf returns the penalty held by boatID, if any.
func (o *FinishOrder) PenaltyOf(boatID int) (Penalty, bool) {
	p, ok := o.penaltyOf[boatID]
	return p, ok
}

// Insert appends boatID to the end of the active segment.
func (o *FinishOrder) Insert(boatID int) error {
	if o.Contains(boatID) {
		return fmt.Errorf("insert %d: %w", boatID, ErrBoatPresent)
	}
	return o.apply(func(n *FinishOrder) {
		n.insertAt(n.firstPenaltyIndex(), boatID)
	})
}

// Remove drops boatID and any penalty it held.
func (o *FinishOrder) Remove(boatID int) error {
	i := o.IndexOf(boatID)
	if i < 0 {
		return fmt.Errorf("remove %d: %w", boatID, ErrBoatAbsent)
	}
	return o.apply(func(n *FinishOrder) {
		n.removeAt(i)
		delete(n.penaltyOf, boatID)
	})
}

// ReorderFree moves the entry at from to to. Both indices must lie inside
// the active segment.
func (o *FinishOrder) ReorderFree(from, to int) error {
	if from < 0 || to < 0 || from >= len(o.order) || to >= len(o.order) {
		return fmt.Errorf("reorder %d->%d: %w", from, to, ErrIndexOutOfRange)
	}
	active := o.firstPenaltyIndex()
	if from >= active || to >= active {
		return fmt.Errorf("reorder %d->%d: %w", from, to, ErrCrossesPenaltyBoundary)
	}
	if from == to {
		return nil
	}
	return o.apply(func(n *FinishOrder) {
		id := n.order[from]
		n.removeAt(from)
		n.insertAt(to, id)
	})
}

// SetManualPlacement clears any penalty on boatID and moves it to rank,
// clamped so it never lands behind a penalized boat.
func (o *FinishOrder) SetManualPlacement(boatID, rank int) error {
	if rank < 1 {
		return fmt.Errorf("placement %d for %d: %w", rank, boatID, ErrInvalidRank)
	}
	i := o.IndexOf(boatID)
	if i < 0 {
		return fmt.Errorf("placement for %d: %w", boatID, ErrBoatAbsent)
	}
	return o.apply(func(n *FinishOrder) {
		n.removeAt(i)
		delete(n.penaltyOf, boatID)
		n.insertAt(min(rank-1, n.firstPenaltyIndex()), boatID)
	})
}

// SetPenalty moves boatID into the penalty segment. It lands after every
// penalized boat of strictly higher priority and before those of equal or
// lower priority.
func (o *FinishOrder) SetPenalty(boatID int, code Penalty) error {
	if !code.Valid() {
		return fmt.Errorf("penalty for %d: %w: %q", boatID, ErrUnknownPenalty, code)
	}
	i := o.IndexOf(boatID)
	if i < 0 {
		return fmt.Errorf("penalty for %d: %w", boatID, ErrBoatAbsent)
	}
	return o.apply(func(n *FinishOrder) {
		n.removeAt(i)
		delete(n.penaltyOf, boatID)
		n.insertPenalty(boatID, code, false)
	})
}

// appendPenalty adds a boat that is not yet in the order straight into the
// penalty segment, behind boats holding the same code.
func (o *FinishOrder) appendPenalty(boatID int, code Penalty) error {
	if o.Contains(boatID) {
		return fmt.Errorf("append %d: %w", boatID, ErrBoatPresent)
	}
	return o.apply(func(n *FinishOrder) {
		n.insertPenalty(boatID, code, true)
	})
}

// Snapshot copies the current state.
func (o *FinishOrder) Snapshot() Snapshot {
	pens := make(map[int]Penalty, len(o.penaltyOf))
	for id, p := range o.penaltyOf {
		pens[id] = p
	}
	return Snapshot{Order: slices.Clone(o.order), Penalties: pens}
}

// Placings is shorthand for Snapshot().Placings().
func (o *FinishOrder) Placings() []Placing { return o.Snapshot().Placings() }

// Validate checks the segmentation invariant.
func (o *FinishOrder) Validate() error {
	seen := make(map[int]bool, len(o.order))
	inPenalties := false
	last := -1
	for i, id := range o.order {
		if seen[id] {
			return fmt.Errorf("%w: boat %d listed twice", ErrSegmentation, id)
		}
		seen[id] = true
		p, ok := o.penaltyOf[id]
		if !ok {
			if inPenalties {
				return fmt.Errorf("%w: finisher %d at %d after a penalty", ErrSegmentation, id, i)
			}
			continue
		}
		inPenalties = true
		if p.Priority() < last {
			return fmt.Errorf("%w: %s at %d out of priority order", ErrSegmentation, p, i)
		}
		last = p.Priority()
	}
	for id := range o.penaltyOf {
		if !seen[id] {
			return fmt.Errorf("%w: penalty for absent boat %d", ErrSegmentation, id)
		}
	}
	return nil
}

// apply runs mutate on a copy and only commits it if the invariant holds.
func (o *FinishOrder) apply(mutate func(n *FinishOrder)) error {
	n := &FinishOrder{order: slices.Clone(o.order), penaltyOf: make(map[int]Penalty, len(o.penaltyOf)+1)}
	for id, p := range o.penaltyOf {
		n.penaltyOf[id] = p
	}
	mutate(n)
	if err := n.Validate(); err != nil {
		return err
	}
	o.order, o.penaltyOf = n.order, n.penaltyOf
	return nil
}

func (o *FinishOrder) firstPenaltyIndex() int {
	for i, id := range o.order {
		if _, ok := o.penaltyOf[id]; ok {
			return i
		}
	}
	return len(o.order)
}

func (o *FinishOrder) insertPenalty(boatID int, code Penalty, afterEqual bool) {
	at := o.firstPenaltyIndex()
	for i := len(o.order) - 1; i >= at; i-- {
		pr := o.penaltyOf[o.order[i]].Priority()
		if pr < code.Priority() || (afterEqual && pr == code.Priority()) {
			at = i + 1
			break
		}
	}
	o.insertAt(at, boatID)
	o.penaltyOf[boatID] = code
}

func (o *FinishOrder) insertAt(i, boatID int) {
	o.order = slices.Insert(o.order, i, boatID)
}

func (o *FinishOrder) removeAt(i int) {
	o.order = slices.Delete(o.order, i, i+1)
}

// Clone returns an independent copy.
func (o *FinishOrder) Clone() *FinishOrder {
	s := o.Snapshot()
	return &FinishOrder{order: s.Order, penaltyOf: s.Penalties}
}
