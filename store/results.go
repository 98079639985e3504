package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/scoring"
)

// ListResults returns the stored result rows of a race.
func (s *Store) ListResults(ctx context.Context, raceID int) ([]models.Result, error) {
	var out []models.Result
	err := s.db.NewSelect().Model(&out).
		Where("r.race_id = ?", raceID).
		OrderExpr("r.id ASC").
		Scan(ctx)
	return out, err
}

// ListRegattaResults returns the result rows of every race of a regatta.
func (s *Store) ListRegattaResults(ctx context.Context, regattaID int) ([]models.Result, error) {
	var out []models.Result
	err := s.db.NewSelect().Model(&out).
		Join("JOIN races AS rc ON rc.id = r.race_id").
		Where("rc.regatta_id = ?", regattaID).
		OrderExpr("r.race_id ASC, r.id ASC").
		Scan(ctx)
	return out, err
}

// WriteResults replaces every result row of raceID with placings. Calling it
// twice with the same placings leaves the same rows behind.
func (s *Store) WriteResults(ctx context.Context, raceID int, placings []scoring.Placing) error {
	return s.inTx(ctx, func(tx bun.Tx) error {
		return writeResults(ctx, tx, raceID, placings)
	})
}

// CompleteRace writes the final placings and closes the race in one
// transaction.
func (s *Store) CompleteRace(ctx context.Context, raceID int, placings []scoring.Placing, incomplete bool) error {
	return s.inTx(ctx, func(tx bun.Tx) error {
		if err := writeResults(ctx, tx, raceID, placings); err != nil {
			return err
		}
		return setRaceState(ctx, tx, raceID, true, incomplete)
	})
}

func writeResults(ctx context.Context, tx bun.Tx, raceID int, placings []scoring.Placing) error {
	if _, err := tx.NewDelete().Model((*models.Result)(nil)).Where("race_id = ?", raceID).Exec(ctx); err != nil {
		return fmt.Errorf("clear results of race %d: %w", raceID, err)
	}
	if len(placings) == 0 {
		return nil
	}

	rows := make([]models.Result, len(placings))
	for i, p := range placings {
		rows[i] = models.Result{RaceID: raceID, BoatID: p.BoatID, Placement: p.Placement, Penalty: p.Penalty}
	}
	if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert results of race %d: %w", raceID, err)
	}
	return nil
}
