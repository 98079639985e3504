// Package regatta drives race capture on top of the scoring engine: it keeps
// one capture session per race, autosaves every edit, closes and reopens
// races and computes the series standings.
package regatta

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/scoring"
)

var (
	ErrRaceLocked       = errors.New("race is completed; reopen it to edit")
	ErrRaceCompleted    = errors.New("race is already completed")
	ErrRaceNotCompleted = errors.New("race is not completed")
	ErrUnknownBoat      = errors.New("boat does not belong to the race's regatta")
	ErrAutosaveFailed   = errors.New("autosave failed")
)

// Store is the persistence the service needs.
type Store interface {
	GetRace(ctx context.Context, id int) (*models.Race, error)
	GetBoat(ctx context.Context, id int) (*models.Boat, error)
	ListBoats(ctx context.Context, regattaID int) ([]models.Boat, error)
	ListRaces(ctx context.Context, regattaID int) ([]models.Race, error)
	ListResults(ctx context.Context, raceID int) ([]models.Result, error)
	ListRegattaResults(ctx context.Context, regattaID int) ([]models.Result, error)
	DiscardCount(ctx context.Context, regattaID int) (int, error)
	WriteResults(ctx context.Context, raceID int, placings []scoring.Placing) error
	CompleteRace(ctx context.Context, raceID int, placings []scoring.Placing, incomplete bool) error
	SetRaceState(ctx context.Context, raceID int, completed, incomplete bool) error
}

// Options tunes the autosave retry.
type Options struct {
	AutosaveAttempts int
	AutosaveBackoff  time.Duration
}

// Service owns the open capture sessions.
type Service struct {
	store Store
	log   *zap.Logger
	opts  Options

	mu       sync.Mutex
	sessions map[int]*Session
}

// NewService returns a Service backed by st.
func NewService(st Store, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.AutosaveAttempts < 1 {
		opts.AutosaveAttempts = 1
	}
	return &Service{
		store:    st,
		log:      log,
		opts:     opts,
		sessions: map[int]*Session{},
	}
}

// OpenCapture returns the race's capture session, rehydrating it from the
// stored results if none is open.
func (s *Service) OpenCapture(ctx context.Context, raceID int) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[raceID]; ok {
		return sess, nil
	}

	race, err := s.store.GetRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListResults(ctx, raceID)
	if err != nil {
		return nil, err
	}

	sess := newSession(s, *race, scoring.Rehydrate(models.Placings(rows)))
	s.sessions[raceID] = sess
	sess.log.Debug("capture opened", zap.Int("boats", sess.order.Len()))
	return sess, nil
}

// CloseCapture discards the race's session. Stored results are kept.
func (s *Service) CloseCapture(raceID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, raceID)
}

// ForgetBoat drops a deleted boat from every open session. The store has
// already renumbered the stored results.
func (s *Service) ForgetBoat(boatID int) {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		if sess.order.Contains(boatID) {
			_ = sess.order.Remove(boatID)
		}
		sess.mu.Unlock()
	}
}

func (s *Service) autosave(ctx context.Context, log *zap.Logger, raceID int, placings []scoring.Placing) error {
	var lastErr error
	for attempt := 1; attempt <= s.opts.AutosaveAttempts; attempt++ {
		if lastErr = s.store.WriteResults(ctx, raceID, placings); lastErr == nil {
			return nil
		}
		log.Warn("autosave attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt == s.opts.AutosaveAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ErrAutosaveFailed, ctx.Err())
		case <-time.After(s.opts.AutosaveBackoff):
		}
	}
	log.Error("autosave gave up", zap.Int("attempts", s.opts.AutosaveAttempts), zap.Error(lastErr))
	return errors.Join(ErrAutosaveFailed, lastErr)
}
