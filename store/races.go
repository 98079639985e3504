package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/padraicbc/regattaapi/models"
)

// ListRaces returns the regatta's races in sequence order.
func (s *Store) ListRaces(ctx context.Context, regattaID int) ([]models.Race, error) {
	var out []models.Race
	err := s.db.NewSelect().Model(&out).
		Where("rc.regatta_id = ?", regattaID).
		OrderExpr("rc.sequence ASC").
		Scan(ctx)
	return out, err
}

// GetRace loads one race.
func (s *Store) GetRace(ctx context.Context, id int) (*models.Race, error) {
	rc := &models.Race{}
	if err := s.db.NewSelect().Model(rc).Where("rc.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return rc, nil
}

// CreateRace appends a new open race to the regatta. Its sequence number is
// one past the highest existing one.
func (s *Store) CreateRace(ctx context.Context, regattaID int) (*models.Race, error) {
	if _, err := s.GetRegatta(ctx, regattaID); err != nil {
		return nil, err
	}

	rc := &models.Race{RegattaID: regattaID}
	err := s.inTx(ctx, func(tx bun.Tx) error {
		var last int
		if err := tx.NewSelect().Model((*models.Race)(nil)).
			ColumnExpr("COALESCE(MAX(sequence), 0)").
			Where("regatta_id = ?", regattaID).
			Scan(ctx, &last); err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		rc.Sequence = last + 1
		rc.Name = fmt.Sprintf("Race %d", rc.Sequence)
		_, err := tx.NewInsert().Model(rc).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// UpdateRaceDetails saves the descriptive fields of a race. A finish time
// earlier than the start time is rejected.
func (s *Store) UpdateRaceDetails(ctx context.Context, rc *models.Race) error {
	rc.Name = strings.TrimSpace(rc.Name)
	if rc.StartTime != "" && rc.FinishTime != "" && rc.FinishTime < rc.StartTime {
		return ErrFinishBeforeStart
	}
	cols := []string{"start_time", "finish_time", "wind_strength", "course_length"}
	if rc.Name != "" {
		cols = append(cols, "name")
	}
	return mustAffect(s.db.NewUpdate().Model(rc).Column(cols...).WherePK().Exec(ctx))
}

// DeleteRace removes a race and its results.
func (s *Store) DeleteRace(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Result)(nil)).Where("race_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete results: %w", err)
		}
		return mustAffect(tx.NewDelete().Model((*models.Race)(nil)).Where("id = ?", id).Exec(ctx))
	})
}

// SetRaceState stores the completion flags of a race.
func (s *Store) SetRaceState(ctx context.Context, raceID int, completed, incomplete bool) error {
	return setRaceState(ctx, s.db, raceID, completed, incomplete)
}

func setRaceState(ctx context.Context, db bun.IDB, raceID int, completed, incomplete bool) error {
	return mustAffect(db.NewUpdate().Model((*models.Race)(nil)).
		Set("completed = ?", completed).
		Set("incomplete = ?", incomplete && completed).
		Where("id = ?", raceID).
		Exec(ctx))
}
