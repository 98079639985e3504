package regatta

import (
	"context"
	"errors"

	"go.uber.org/zap"

	applog "github.com/padraicbc/regattaapi/logger"
	"github.com/padraicbc/regattaapi/scoring"
)

// CompleteRace closes the race if its finish order covers every boat of the
// regatta. With force, missing boats are scored DNS and the race is marked
// incomplete. A *scoring.MissingBoatsError is returned otherwise.
func (s *Service) CompleteRace(ctx context.Context, raceID int, force bool) (*scoring.Completion, error) {
	race, err := s.store.GetRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if race.Completed {
		return nil, ErrRaceCompleted
	}

	sess, err := s.OpenCapture(ctx, raceID)
	if err != nil {
		return nil, err
	}
	boats, err := s.store.ListBoats(ctx, race.RegattaID)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(boats))
	for i, b := range boats {
		ids[i] = b.ID
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Work on a copy so a failed write leaves the session as it was.
	order := sess.order.Clone()
	c, err := scoring.Complete(order, ids, force)
	if err != nil {
		var mb *scoring.MissingBoatsError
		if errors.As(err, &mb) {
			sess.log.Info("completion refused", zap.Int("missing", mb.Count))
		}
		return nil, err
	}

	if err := s.store.CompleteRace(ctx, raceID, c.Placings, c.Incomplete); err != nil {
		return nil, err
	}

	sess.order = order
	sess.race.Completed = true
	sess.race.Incomplete = c.Incomplete

	if c.Incomplete {
		sess.log.Warn("race completed with missing boats", zap.Ints("backfilled", c.Backfilled))
	} else {
		sess.log.Info("race completed", zap.Int("boats", len(c.Placings)))
	}
	return c, nil
}

// ReopenRace unlocks a completed race for editing. Its results stay in
// place and seed the next capture session.
func (s *Service) ReopenRace(ctx context.Context, raceID int) error {
	race, err := s.store.GetRace(ctx, raceID)
	if err != nil {
		return err
	}
	if !race.Completed {
		return ErrRaceNotCompleted
	}
	if err := s.store.SetRaceState(ctx, raceID, false, false); err != nil {
		return err
	}

	s.mu.Lock()
	sess, ok := s.sessions[raceID]
	s.mu.Unlock()
	if ok {
		sess.mu.Lock()
		sess.race.Completed = false
		sess.race.Incomplete = false
		sess.mu.Unlock()
	}

	applog.Race(s.log, race.RegattaID, raceID).Info("race reopened")
	return nil
}
