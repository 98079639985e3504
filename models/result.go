package models

import (
	"github.com/uptrace/bun"

	"github.com/padraicbc/regattaapi/scoring"
)

// Result is one boat's outcome in a race. Exactly one of Placement and
// Penalty is set; the other is stored as NULL.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID        int             `bun:"id,pk,autoincrement" json:"id"`
	RaceID    int             `bun:"race_id,notnull,unique:results_no_dupes" json:"raceID"`
	BoatID    int             `bun:"boat_id,notnull,unique:results_no_dupes" json:"boatID"`
	Placement int             `bun:"placement,nullzero" json:"placement,omitempty"`
	Penalty   scoring.Penalty `bun:"penalty,nullzero" json:"penalty,omitempty"`
}

// Placing converts the row for the scoring engine.
func (r Result) Placing() scoring.Placing {
	return scoring.Placing{BoatID: r.BoatID, Placement: r.Placement, Penalty: r.Penalty}
}

// Placings converts a slice of rows.
func Placings(rows []Result) []scoring.Placing {
	out := make([]scoring.Placing, len(rows))
	for i, r := range rows {
		out[i] = r.Placing()
	}
	return out
}
