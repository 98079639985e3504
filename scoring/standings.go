package scoring

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrIncompleteRaceForStandings means a completed race has no result for
// one of the regatta's boats. A race closed through Complete never does.
var ErrIncompleteRaceForStandings = errors.New("completed race lacks a result for every boat")

// MinRacesForStandings is the number of completed races needed before a
// series table is produced.
const MinRacesForStandings = 2

// RaceResults is one race with its stored placings.
type RaceResults struct {
	RaceID     int
	Sequence   int
	Completed  bool
	Incomplete bool
	Placings   []Placing
}

// Cell is a boat's score in one race of the series.
type Cell struct {
	RaceID     int
	Sequence   int
	Point      int
	Penalty    Penalty
	Discarded  bool
	Incomplete bool

	raceIndex int
}

// Standing is one row of the series table.
type Standing struct {
	BoatID int
	Rank   int
	Total  int
	Cells  []Cell
}

// Standings is the ranked series table.
type Standings struct {
	// Races are the completed races in sequence order.
	Races []RaceResults
	Rows  []Standing
}

// ComputeStandings ranks boatIDs over the completed races. It returns false
// when fewer than MinRacesForStandings races are completed.
//
// A penalized boat scores one point more than the race's finisher count.
// Up to discardCount worst scores per boat are dropped, always keeping at
// least one. Ties on total go to the better sorted kept scores, then to the
// better score in the boat's last race; anything still tied keeps input
// order.
func ComputeStandings(boatIDs []int, races []RaceResults, discardCount int) (*Standings, bool) {
	var completed []RaceResults
	for _, r := range races {
		if r.Completed {
			completed = append(completed, r)
		}
	}
	if len(completed) < MinRacesForStandings {
		return nil, false
	}
	sort.SliceStable(completed, func(i, j int) bool { return completed[i].Sequence < completed[j].Sequence })

	cells := map[int][]Cell{}
	for idx, r := range completed {
		penaltyPoint := finishers(r.Placings) + 1
		for _, p := range r.Placings {
			c := Cell{
				RaceID:     r.RaceID,
				Sequence:   r.Sequence,
				Point:      p.Placement,
				Penalty:    p.Penalty,
				Incomplete: r.Incomplete,
				raceIndex:  idx,
			}
			if p.Penalty != "" {
				c.Point = penaltyPoint
			}
			cells[p.BoatID] = append(cells[p.BoatID], c)
		}
	}

	rows := make([]Standing, 0, len(boatIDs))
	for _, id := range boatIDs {
		cs := cells[id]
		if len(cs) == 0 {
			continue
		}
		markDiscards(cs, discardCount)
		rows = append(rows, Standing{BoatID: id, Total: total(cs), Cells: cs})
	}

	sort.SliceStable(rows, func(i, j int) bool { return ahead(rows[i], rows[j]) })
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return &Standings{Races: completed, Rows: rows}, true
}

// CheckCoverage reports the first completed race missing a result for one
// of boatIDs.
func CheckCoverage(boatIDs []int, races []RaceResults) error {
	for _, r := range races {
		if !r.Completed {
			continue
		}
		have := make(map[int]bool, len(r.Placings))
		for _, p := range r.Placings {
			have[p.BoatID] = true
		}
		missing := 0
		for _, id := range boatIDs {
			if !have[id] {
				missing++
			}
		}
		if missing > 0 {
			return fmt.Errorf("race %d: %d boat(s) without result: %w", r.RaceID, missing, ErrIncompleteRaceForStandings)
		}
	}
	return nil
}

// KeptPoints returns the non-discarded points sorted ascending.
func (s Standing) KeptPoints() []int {
	var pts []int
	for _, c := range s.Cells {
		if !c.Discarded {
			pts = append(pts, c.Point)
		}
	}
	slices.Sort(pts)
	return pts
}

// String renders the cell for tables: the point, the penalty code if any,
// and parentheses around a discarded score.
func (c Cell) String() string {
	s := fmt.Sprint(c.Point)
	if c.Penalty != "" {
		s += " " + string(c.Penalty)
	}
	if c.Discarded {
		s = "(" + s + ")"
	}
	return s
}

func finishers(ps []Placing) int {
	n := 0
	for _, p := range ps {
		if p.Penalty == "" {
			n++
		}
	}
	return n
}

// markDiscards flags the worst scores, preferring the more recent race on
// equal points.
func markDiscards(cs []Cell, discardCount int) {
	if discardCount <= 0 || len(cs) <= 1 {
		return
	}
	idx := make([]int, len(cs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ca, cb := cs[idx[a]], cs[idx[b]]
		if ca.Point != cb.Point {
			return ca.Point > cb.Point
		}
		return ca.raceIndex > cb.raceIndex
	})
	for _, i := range idx[:min(discardCount, len(cs)-1)] {
		cs[i].Discarded = true
	}
}

func total(cs []Cell) int {
	sum := 0
	for _, c := range cs {
		if !c.Discarded {
			sum += c.Point
		}
	}
	return sum
}

func ahead(a, b Standing) bool {
	if a.Total != b.Total {
		return a.Total < b.Total
	}

	ka, kb := a.KeptPoints(), b.KeptPoints()
	for i := 0; i < min(len(ka), len(kb)); i++ {
		if ka[i] != kb[i] {
			return ka[i] < kb[i]
		}
	}

	la, lb := lastCell(a.Cells), lastCell(b.Cells)
	return la.Point < lb.Point
}

func lastCell(cs []Cell) Cell {
	last := cs[0]
	for _, c := range cs[1:] {
		if c.raceIndex > last.raceIndex {
			last = c
		}
	}
	return last
}
