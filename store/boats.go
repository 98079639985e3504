package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/uptrace/bun"

	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/scoring"
)

// Boat validation codes.
const (
	CodeSailNumberRequired = "SAIL_NUMBER_REQUIRED"
	CodeSailNumberExists   = "SAIL_NUMBER_EXISTS"
	CodeSailNumberInvalid  = "SAIL_NUMBER_INVALID"
)

var sailNumberPattern = regexp.MustCompile(`^[a-zA-Z0-9\s-]+$`)

// ValidationError is a boat entry problem the client can show next to the
// sail number field.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }

// ListBoats returns the regatta's boats ordered by sail number.
func (s *Store) ListBoats(ctx context.Context, regattaID int) ([]models.Boat, error) {
	var out []models.Boat
	err := s.db.NewSelect().Model(&out).
		Where("b.regatta_id = ?", regattaID).
		OrderExpr("b.sail_number ASC, b.id ASC").
		Scan(ctx)
	return out, err
}

// GetBoat loads one boat.
func (s *Store) GetBoat(ctx context.Context, id int) (*models.Boat, error) {
	b := &models.Boat{}
	if err := s.db.NewSelect().Model(b).Where("b.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// CreateBoat validates and inserts b.
func (s *Store) CreateBoat(ctx context.Context, b *models.Boat) error {
	if _, err := s.GetRegatta(ctx, b.RegattaID); err != nil {
		return err
	}
	if err := s.validateBoat(ctx, b); err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(b).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return sailNumberExists()
		}
		return err
	}
	return nil
}

// UpdateBoat validates and saves sail number, helm and club.
func (s *Store) UpdateBoat(ctx context.Context, b *models.Boat) error {
	cur, err := s.GetBoat(ctx, b.ID)
	if err != nil {
		return err
	}
	b.RegattaID = cur.RegattaID
	if err := s.validateBoat(ctx, b); err != nil {
		return err
	}
	_, err = s.db.NewUpdate().Model(b).Column("sail_number", "helm", "club").WherePK().Exec(ctx)
	if isUniqueViolation(err) {
		return sailNumberExists()
	}
	return err
}

// DeleteBoat removes a boat and its results. Races the boat had a placement
// in are renumbered so placements stay dense.
func (s *Store) DeleteBoat(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx bun.Tx) error {
		var raceIDs []int
		if err := tx.NewSelect().Model((*models.Result)(nil)).
			Column("race_id").
			Where("boat_id = ?", id).
			Scan(ctx, &raceIDs); err != nil {
			return fmt.Errorf("races of boat %d: %w", id, err)
		}
		if _, err := tx.NewDelete().Model((*models.Result)(nil)).Where("boat_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete results: %w", err)
		}
		for _, raceID := range raceIDs {
			var rows []models.Result
			if err := tx.NewSelect().Model(&rows).Where("race_id = ?", raceID).OrderExpr("id ASC").Scan(ctx); err != nil {
				return err
			}
			placings := scoring.Rehydrate(models.Placings(rows)).Placings()
			if err := writeResults(ctx, tx, raceID, placings); err != nil {
				return err
			}
		}
		return mustAffect(tx.NewDelete().Model((*models.Boat)(nil)).Where("id = ?", id).Exec(ctx))
	})
}

// validateBoat trims the text fields and checks the sail number is present,
// unique within the regatta and well formed, in that order.
func (s *Store) validateBoat(ctx context.Context, b *models.Boat) error {
	b.SailNumber = strings.TrimSpace(b.SailNumber)
	b.Helm = strings.TrimSpace(b.Helm)
	b.Club = strings.TrimSpace(b.Club)

	if b.SailNumber == "" {
		return &ValidationError{Code: CodeSailNumberRequired, Message: "sail number is required"}
	}

	exists, err := s.db.NewSelect().Model((*models.Boat)(nil)).
		Where("regatta_id = ?", b.RegattaID).
		Where("sail_number = ?", b.SailNumber).
		Where("id <> ?", b.ID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return sailNumberExists()
	}

	if !sailNumberPattern.MatchString(b.SailNumber) {
		return &ValidationError{Code: CodeSailNumberInvalid, Message: "sail number contains invalid characters"}
	}
	return nil
}

func sailNumberExists() error {
	return &ValidationError{Code: CodeSailNumberExists, Message: "sail number already exists in this regatta"}
}
