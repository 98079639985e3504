package regatta

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	applog "github.com/padraicbc/regattaapi/logger"
	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/scoring"
)

// Session is the capture of one race. Every successful edit is written
// through to the store before the call returns.
type Session struct {
	svc *Service
	log *zap.Logger

	mu    sync.Mutex
	race  models.Race
	order *scoring.FinishOrder
}

func newSession(svc *Service, race models.Race, order *scoring.FinishOrder) *Session {
	return &Session{
		svc:   svc,
		log:   applog.Race(svc.log, race.RegattaID, race.ID),
		race:  race,
		order: order,
	}
}

// Race returns the race as last seen by the session.
func (s *Session) Race() models.Race {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.race
}

// Snapshot copies the current finish order.
func (s *Session) Snapshot() scoring.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Snapshot()
}

// Placings returns the current order as result rows.
func (s *Session) Placings() []scoring.Placing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Placings()
}

// Insert records boatID as the next finisher.
func (s *Session) Insert(ctx context.Context, boatID int) error {
	b, err := s.svc.store.GetBoat(ctx, boatID)
	if err != nil {
		return err
	}
	if b.RegattaID != s.Race().RegattaID {
		return fmt.Errorf("insert %d: %w", boatID, ErrUnknownBoat)
	}
	return s.mutate(ctx, func(o *scoring.FinishOrder) error { return o.Insert(boatID) })
}

// Remove takes boatID out of the order.
func (s *Session) Remove(ctx context.Context, boatID int) error {
	return s.mutate(ctx, func(o *scoring.FinishOrder) error { return o.Remove(boatID) })
}

// ReorderFree drags the finisher at from to to.
func (s *Session) ReorderFree(ctx context.Context, from, to int) error {
	return s.mutate(ctx, func(o *scoring.FinishOrder) error { return o.ReorderFree(from, to) })
}

// SetManualPlacement puts boatID at rank, clearing any penalty.
func (s *Session) SetManualPlacement(ctx context.Context, boatID, rank int) error {
	return s.mutate(ctx, func(o *scoring.FinishOrder) error { return o.SetManualPlacement(boatID, rank) })
}

// SetPenalty assigns code to boatID.
func (s *Session) SetPenalty(ctx context.Context, boatID int, code scoring.Penalty) error {
	return s.mutate(ctx, func(o *scoring.FinishOrder) error { return o.SetPenalty(boatID, code) })
}

// Available lists the regatta's boats that are not in the order yet.
func (s *Session) Available(ctx context.Context) ([]models.Boat, error) {
	boats, err := s.svc.store.ListBoats(ctx, s.Race().RegattaID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Boat, 0, len(boats))
	for _, b := range boats {
		if !s.order.Contains(b.ID) {
			out = append(out, b)
		}
	}
	return out, nil
}

// mutate applies edit and autosaves. The in-memory order keeps the edit even
// if the autosave fails, so the next successful save catches up.
func (s *Session) mutate(ctx context.Context, edit func(o *scoring.FinishOrder) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.race.Completed {
		return ErrRaceLocked
	}
	if err := edit(s.order); err != nil {
		return err
	}
	return s.svc.autosave(ctx, s.log, s.race.ID, s.order.Placings())
}
