package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_AllBoatsPresent(t *testing.T) {
	o := orderOf(t, 1, 2, 3)

	c, err := Complete(o, []int{1, 2, 3}, false)
	require.NoError(t, err)
	assert.False(t, c.Incomplete)
	assert.Empty(t, c.Backfilled)
	assert.Equal(t, []Placing{
		{BoatID: 1, Placement: 1},
		{BoatID: 2, Placement: 2},
		{BoatID: 3, Placement: 3},
	}, c.Placings)
}

func TestComplete_MissingWithoutForce(t *testing.T) {
	o := orderOf(t, 1, 2)

	_, err := Complete(o, []int{1, 2, 3, 4}, false)
	var mb *MissingBoatsError
	require.ErrorAs(t, err, &mb)
	assert.Equal(t, 2, mb.Count)
	assert.Equal(t, []int{3, 4}, mb.BoatIDs)
	assert.Equal(t, 2, o.Len(), "order untouched")
}

func TestComplete_ForceBackfillsDidNotStart(t *testing.T) {
	o := orderOf(t, 1, 2, 3, 5)
	require.NoError(t, o.SetPenalty(5, DSQ))

	c, err := Complete(o, []int{1, 2, 3, 4, 5, 6}, true)
	require.NoError(t, err)
	assert.True(t, c.Incomplete)
	assert.Equal(t, []int{4, 6}, c.Backfilled)
	assert.Equal(t, []Placing{
		{BoatID: 1, Placement: 1},
		{BoatID: 2, Placement: 2},
		{BoatID: 3, Placement: 3},
		{BoatID: 4, Penalty: DNS},
		{BoatID: 6, Penalty: DNS},
		{BoatID: 5, Penalty: DSQ},
	}, c.Placings)
	require.NoError(t, o.Validate())
}

func TestComplete_EmptyOrderRejected(t *testing.T) {
	for _, force := range []bool{false, true} {
		_, err := Complete(NewFinishOrder(), []int{1, 2}, force)
		assert.ErrorIs(t, err, ErrNothingToRank)
	}
}
