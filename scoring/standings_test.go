package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func race(id, seq int, placings ...Placing) RaceResults {
	return RaceResults{RaceID: id, Sequence: seq, Completed: true, Placings: placings}
}

func at(boat, place int) Placing { return Placing{BoatID: boat, Placement: place} }

func pen(boat int, p Penalty) Placing { return Placing{BoatID: boat, Penalty: p} }

func rowFor(t *testing.T, s *Standings, boat int) Standing {
	t.Helper()
	for _, r := range s.Rows {
		if r.BoatID == boat {
			return r
		}
	}
	t.Fatalf("boat %d not in standings", boat)
	return Standing{}
}

func boatOrder(s *Standings) []int {
	out := make([]int, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.BoatID
	}
	return out
}

func TestComputeStandings_NeedsTwoCompletedRaces(t *testing.T) {
	open := race(2, 2, at(1, 1))
	open.Completed = false

	_, ok := ComputeStandings([]int{1}, []RaceResults{race(1, 1, at(1, 1)), open}, 0)
	assert.False(t, ok)
}

func TestComputeStandings_DiscardWorst(t *testing.T) {
	const a, b = 1, 2
	races := []RaceResults{
		race(10, 1, at(a, 1), at(b, 2)),
		race(11, 2, at(b, 3), at(a, 5)),
		race(12, 3, at(a, 2), at(b, 4)),
	}

	s, ok := ComputeStandings([]int{b, a}, races, 1)
	require.True(t, ok)

	ra, rb := rowFor(t, s, a), rowFor(t, s, b)
	assert.Equal(t, 3, ra.Total)
	assert.True(t, ra.Cells[1].Discarded)
	assert.Equal(t, 5, rb.Total)
	assert.True(t, rb.Cells[2].Discarded)
	assert.Equal(t, []int{a, b}, boatOrder(s))
	assert.Equal(t, 1, s.Rows[0].Rank)
	assert.Equal(t, 2, s.Rows[1].Rank)
}

func TestComputeStandings_PenaltyScoresFinishersPlusOne(t *testing.T) {
	races := []RaceResults{
		race(1, 1, at(1, 1), at(2, 2), at(3, 3), pen(4, DNF), pen(5, DSQ)),
		race(2, 2, at(4, 1), at(1, 2), at(2, 3), at(3, 4), at(5, 5)),
	}

	s, ok := ComputeStandings([]int{1, 2, 3, 4, 5}, races, 0)
	require.True(t, ok)
	assert.Equal(t, 4, rowFor(t, s, 4).Cells[0].Point)
	assert.Equal(t, DNF, rowFor(t, s, 4).Cells[0].Penalty)
	assert.Equal(t, 4, rowFor(t, s, 5).Cells[0].Point)
	assert.Equal(t, 5, rowFor(t, s, 4).Total)
}

func TestComputeStandings_CountBack(t *testing.T) {
	races := []RaceResults{
		race(1, 1, at(1, 2), at(2, 1)),
		race(2, 2, at(1, 3), at(2, 4)),
	}

	// both total 5; boat 2 holds the single best result
	s, ok := ComputeStandings([]int{1, 2}, races, 0)
	require.True(t, ok)
	assert.Equal(t, []int{2, 1}, boatOrder(s))
}

func TestComputeStandings_LastRaceBreaksTie(t *testing.T) {
	races := []RaceResults{
		race(1, 1, at(1, 2), at(2, 3)),
		race(2, 2, at(2, 2), at(1, 3)),
	}

	s, ok := ComputeStandings([]int{1, 2}, races, 0)
	require.True(t, ok)
	assert.Equal(t, []int{2, 1}, boatOrder(s))
}

func TestComputeStandings_LastRaceCountsEvenIfDiscarded(t *testing.T) {
	races := []RaceResults{
		race(1, 1, at(1, 1), at(2, 1)),
		race(2, 2, at(1, 1), at(2, 1)),
		race(3, 3, at(1, 6), at(2, 5)),
	}

	s, ok := ComputeStandings([]int{1, 2}, races, 1)
	require.True(t, ok)
	assert.True(t, rowFor(t, s, 1).Cells[2].Discarded)
	assert.Equal(t, []int{2, 1}, boatOrder(s))
}

func TestComputeStandings_ResidualTieKeepsInputOrder(t *testing.T) {
	races := []RaceResults{
		race(1, 1, at(3, 1), at(7, 1)),
		race(2, 2, at(3, 2), at(7, 2)),
	}

	s, ok := ComputeStandings([]int{7, 3}, races, 0)
	require.True(t, ok)
	assert.Equal(t, []int{7, 3}, boatOrder(s))
}

func TestComputeStandings_RacesOrderedBySequence(t *testing.T) {
	races := []RaceResults{
		race(30, 3, at(1, 4)),
		race(10, 1, at(1, 1)),
		race(20, 2, at(1, 4)),
	}

	s, ok := ComputeStandings([]int{1}, races, 1)
	require.True(t, ok)
	cells := rowFor(t, s, 1).Cells
	require.Len(t, cells, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{cells[0].Sequence, cells[1].Sequence, cells[2].Sequence})
	// equal worst points: the more recent race is dropped
	assert.False(t, cells[1].Discarded)
	assert.True(t, cells[2].Discarded)
}

func TestComputeStandings_DiscardFloor(t *testing.T) {
	tests := []struct {
		name     string
		points   []int
		discards int
		want     int
	}{
		{"no discards", []int{3, 1, 2}, 0, 0},
		{"one of three", []int{3, 1, 2}, 1, 1},
		{"capped at n-1", []int{3, 1, 2}, 5, 2},
		{"two races all discards", []int{4, 4}, 9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var races []RaceResults
			for i, p := range tt.points {
				races = append(races, race(i+1, i+1, at(1, p)))
			}
			s, ok := ComputeStandings([]int{1}, races, tt.discards)
			require.True(t, ok)

			got := 0
			for _, c := range s.Rows[0].Cells {
				if c.Discarded {
					got++
				}
			}
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, s.Rows[0].KeptPoints())
		})
	}
}

func TestComputeStandings_SingleScoredRaceNeverDiscarded(t *testing.T) {
	races := []RaceResults{
		race(1, 1, at(1, 1), at(2, 2)),
		race(2, 2, at(1, 1)),
	}

	s, ok := ComputeStandings([]int{1, 2, 3}, races, 2)
	require.True(t, ok)
	r2 := rowFor(t, s, 2)
	require.Len(t, r2.Cells, 1)
	assert.False(t, r2.Cells[0].Discarded)
	assert.Equal(t, 2, r2.Total)
	assert.Len(t, s.Rows, 2, "boat without any result is left out")
}

func TestCheckCoverage(t *testing.T) {
	full := race(1, 1, at(1, 1), pen(2, DNS))
	partial := race(2, 2, at(1, 1))
	open := race(3, 3)
	open.Completed = false

	assert.NoError(t, CheckCoverage([]int{1, 2}, []RaceResults{full, open}))
	assert.ErrorIs(t, CheckCoverage([]int{1, 2}, []RaceResults{full, partial}), ErrIncompleteRaceForStandings)
}

func TestCell_String(t *testing.T) {
	assert.Equal(t, "2", Cell{Point: 2}.String())
	assert.Equal(t, "4 DSQ", Cell{Point: 4, Penalty: DSQ}.String())
	assert.Equal(t, "(4 DNS)", Cell{Point: 4, Penalty: DNS, Discarded: true}.String())
	assert.Equal(t, "(7)", Cell{Point: 7, Discarded: true}.String())
}
