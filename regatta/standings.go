package regatta

import (
	"context"

	"go.uber.org/zap"

	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/scoring"
)

// ComputeStandings reads the regatta's completed races and ranks its boats.
// ok is false while fewer than two races are completed.
func (s *Service) ComputeStandings(ctx context.Context, regattaID int) (st *scoring.Standings, ok bool, err error) {
	boats, err := s.store.ListBoats(ctx, regattaID)
	if err != nil {
		return nil, false, err
	}
	races, err := s.store.ListRaces(ctx, regattaID)
	if err != nil {
		return nil, false, err
	}
	rows, err := s.store.ListRegattaResults(ctx, regattaID)
	if err != nil {
		return nil, false, err
	}
	discards, err := s.store.DiscardCount(ctx, regattaID)
	if err != nil {
		return nil, false, err
	}

	ids := make([]int, len(boats))
	for i, b := range boats {
		ids[i] = b.ID
	}
	input := raceResults(races, rows)

	if err := scoring.CheckCoverage(ids, input); err != nil {
		s.log.Warn("standings over uncovered race", zap.Int("regatta_id", regattaID), zap.Error(err))
	}

	st, ok = scoring.ComputeStandings(ids, input, discards)
	return st, ok, nil
}

func raceResults(races []models.Race, rows []models.Result) []scoring.RaceResults {
	byRace := map[int][]scoring.Placing{}
	for _, r := range rows {
		byRace[r.RaceID] = append(byRace[r.RaceID], r.Placing())
	}
	out := make([]scoring.RaceResults, len(races))
	for i, rc := range races {
		out[i] = scoring.RaceResults{
			RaceID:     rc.ID,
			Sequence:   rc.Sequence,
			Completed:  rc.Completed,
			Incomplete: rc.Incomplete,
			Placings:   byRace[rc.ID],
		}
	}
	return out
}
