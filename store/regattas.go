package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/padraicbc/regattaapi/models"
)

// ListRegattas returns all regattas, newest first.
func (s *Store) ListRegattas(ctx context.Context) ([]models.Regatta, error) {
	var out []models.Regatta
	err := s.db.NewSelect().Model(&out).OrderExpr("rg.created_at DESC, rg.id DESC").Scan(ctx)
	return out, err
}

// GetRegatta loads one regatta.
func (s *Store) GetRegatta(ctx context.Context, id int) (*models.Regatta, error) {
	rg := &models.Regatta{}
	if err := s.db.NewSelect().Model(rg).Where("rg.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return rg, nil
}

// CreateRegatta inserts rg after normalising its fields.
func (s *Store) CreateRegatta(ctx context.Context, rg *models.Regatta) error {
	if err := normaliseRegatta(rg); err != nil {
		return err
	}
	_, err := s.db.NewInsert().Model(rg).Exec(ctx)
	return err
}

// UpdateRegatta overwrites the editable regatta fields.
func (s *Store) UpdateRegatta(ctx context.Context, rg *models.Regatta) error {
	if err := normaliseRegatta(rg); err != nil {
		return err
	}
	return mustAffect(s.db.NewUpdate().Model(rg).
		Column("name", "date", "organizer", "boat_class", "status", "discard_count").
		WherePK().
		Exec(ctx))
}

// DeleteRegatta removes a regatta together with its boats, races and results.
func (s *Store) DeleteRegatta(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx bun.Tx) error {
		raceIDs := tx.NewSelect().Model((*models.Race)(nil)).Column("id").Where("regatta_id = ?", id)
		if _, err := tx.NewDelete().Model((*models.Result)(nil)).Where("race_id IN (?)", raceIDs).Exec(ctx); err != nil {
			return fmt.Errorf("delete results: %w", err)
		}
		if _, err := tx.NewDelete().Model((*models.Race)(nil)).Where("regatta_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete races: %w", err)
		}
		if _, err := tx.NewDelete().Model((*models.Boat)(nil)).Where("regatta_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete boats: %w", err)
		}
		return mustAffect(tx.NewDelete().Model((*models.Regatta)(nil)).Where("id = ?", id).Exec(ctx))
	})
}

// DiscardCount returns how many worst scores per boat the regatta drops.
func (s *Store) DiscardCount(ctx context.Context, regattaID int) (int, error) {
	rg, err := s.GetRegatta(ctx, regattaID)
	if err != nil {
		return 0, err
	}
	return rg.DiscardCount, nil
}

// SetDiscardCount changes the regatta's discard count.
func (s *Store) SetDiscardCount(ctx context.Context, regattaID, n int) error {
	if n < 0 {
		return ErrInvalidDiscards
	}
	return mustAffect(s.db.NewUpdate().Model((*models.Regatta)(nil)).
		Set("discard_count = ?", n).
		Where("id = ?", regattaID).
		Exec(ctx))
}

func normaliseRegatta(rg *models.Regatta) error {
	rg.Name = strings.TrimSpace(rg.Name)
	if rg.Name == "" {
		return ErrNameRequired
	}
	if rg.DiscardCount < 0 {
		return ErrInvalidDiscards
	}
	switch rg.Status {
	case "":
		rg.Status = models.StatusPreparation
	case models.StatusPreparation, models.StatusActive, models.StatusClosed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, rg.Status)
	}
	return nil
}
