// cmd/import/main.go
// Imports the local storage export of the browser scoring app into the
// database. Every regatta in the file is created anew; string ids are
// remapped to database ids.
//
// Usage:
//
//	go run ./cmd/import -file export.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/regattaapi/config"
	bundb "github.com/padraicbc/regattaapi/db"
	applog "github.com/padraicbc/regattaapi/logger"
	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/scoring"
)

const batchSize = 500

type exportFile struct {
	Regattas    []exportRegatta `json:"regattas"`
	Boats       []exportBoat    `json:"boats"`
	Wettfahrten []exportRace    `json:"wettfahrten"`
	Ergebnisse  []exportResult  `json:"ergebnisse"`
	Streicher   map[string]int  `json:"streicher"`
}

type exportRegatta struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Datum        string `json:"datum"`
	Veranstalter string `json:"veranstalter"`
	Bootsklasse  string `json:"bootsklasse"`
	Status       string `json:"status"`
	ErstelltAm   string `json:"erstelltAm"`
}

type exportBoat struct {
	ID          string `json:"id"`
	RegattaID   string `json:"regattaId"`
	Segelnummer string `json:"segelnummer"`
	Steuermann  string `json:"steuermann"`
	Verein      string `json:"verein"`
}

type exportRace struct {
	ID             string `json:"id"`
	RegattaID      string `json:"regattaId"`
	Nummer         int    `json:"nummer"`
	Name           string `json:"name"`
	Startzeit      string `json:"startzeit"`
	Zielzeit       string `json:"zielzeit"`
	Windstaerke    string `json:"windstaerke"`
	Bahnlaenge     string `json:"bahnlaenge"`
	Abgeschlossen  bool   `json:"abgeschlossen"`
	Unvollstaendig bool   `json:"unvollstaendig"`
}

type exportResult struct {
	WettfahrtID string  `json:"wettfahrtId"`
	BootID      string  `json:"bootId"`
	Platz       *int    `json:"platz"`
	Penalty     *string `json:"penalty"`
}

var statuses = map[string]string{
	"vorbereitung":  models.StatusPreparation,
	"aktiv":         models.StatusActive,
	"abgeschlossen": models.StatusClosed,
}

type counts struct {
	Regattas, Boats, Races, Results, Skipped int
}

func main() {
	file := flag.String("file", "", "export JSON file (required)")
	flag.Parse()

	logger, err := applog.New(false)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if *file == "" {
		logger.Fatal("-file is required")
	}
	raw, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("read export", zap.Error(err))
	}
	var exp exportFile
	if err := json.Unmarshal(raw, &exp); err != nil {
		logger.Fatal("parse export", zap.Error(err))
	}

	ctx := context.Background()
	cfg := config.LoadDB()
	db := bundb.Setup(cfg)
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		logger.Fatal("create tables", zap.Error(err))
	}

	n, err := importExport(ctx, db, &exp, logger)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	logger.Info("import complete",
		zap.Int("regattas", n.Regattas),
		zap.Int("boats", n.Boats),
		zap.Int("races", n.Races),
		zap.Int("results", n.Results),
		zap.Int("skipped", n.Skipped),
	)
}

// importExport loads exp in a single transaction.
func importExport(ctx context.Context, db *bun.DB, exp *exportFile, log *zap.Logger) (counts, error) {
	var n counts
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n = counts{}
		regattaIDs, err := importRegattas(ctx, tx, exp, &n)
		if err != nil {
			return err
		}
		boatIDs, err := importBoats(ctx, tx, exp.Boats, regattaIDs, &n, log)
		if err != nil {
			return err
		}
		raceIDs, err := importRaces(ctx, tx, exp.Wettfahrten, regattaIDs, &n, log)
		if err != nil {
			return err
		}
		return importResults(ctx, tx, exp.Ergebnisse, raceIDs, boatIDs, &n, log)
	})
	return n, err
}

func importRegattas(ctx context.Context, tx bun.Tx, exp *exportFile, n *counts) (map[string]int, error) {
	ids := make(map[string]int, len(exp.Regattas))
	for _, r := range exp.Regattas {
		rg := &models.Regatta{
			Name:         strings.TrimSpace(r.Name),
			Date:         r.Datum,
			Organizer:    r.Veranstalter,
			BoatClass:    r.Bootsklasse,
			Status:       statuses[r.Status],
			DiscardCount: max(exp.Streicher[r.ID], 0),
		}
		if rg.Name == "" {
			rg.Name = "Imported regatta"
		}
		if rg.Status == "" {
			rg.Status = models.StatusPreparation
		}
		if t, err := time.Parse(time.RFC3339, r.ErstelltAm); err == nil {
			rg.CreatedAt = t
		}
		if _, err := tx.NewInsert().Model(rg).Exec(ctx); err != nil {
			return nil, fmt.Errorf("regatta %s: %w", r.ID, err)
		}
		ids[r.ID] = rg.ID
		n.Regattas++
	}
	return ids, nil
}

func importBoats(ctx context.Context, tx bun.Tx, boats []exportBoat, regattaIDs map[string]int, n *counts, log *zap.Logger) (map[string]int, error) {
	ids := make(map[string]int, len(boats))
	seen := map[string]bool{}
	for _, b := range boats {
		regattaID, ok := regattaIDs[b.RegattaID]
		sail := strings.TrimSpace(b.Segelnummer)
		key := fmt.Sprintf("%d/%s", regattaID, sail)
		if !ok || sail == "" || seen[key] {
			log.Warn("skipping boat", zap.String("id", b.ID), zap.String("sail_number", sail))
			n.Skipped++
			continue
		}
		seen[key] = true

		row := &models.Boat{RegattaID: regattaID, SailNumber: sail, Helm: b.Steuermann, Club: b.Verein}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return nil, fmt.Errorf("boat %s: %w", b.ID, err)
		}
		ids[b.ID] = row.ID
		n.Boats++
	}
	return ids, nil
}

func importRaces(ctx context.Context, tx bun.Tx, races []exportRace, regattaIDs map[string]int, n *counts, log *zap.Logger) (map[string]int, error) {
	ids := make(map[string]int, len(races))
	used := map[int]map[int]bool{}
	last := map[int]int{}
	for _, r := range races {
		regattaID, ok := regattaIDs[r.RegattaID]
		if !ok {
			log.Warn("skipping race of unknown regatta", zap.String("id", r.ID))
			n.Skipped++
			continue
		}
		if used[regattaID] == nil {
			used[regattaID] = map[int]bool{}
		}

		seq := r.Nummer
		if seq <= 0 || used[regattaID][seq] {
			seq = last[regattaID] + 1
		}
		used[regattaID][seq] = true
		last[regattaID] = max(last[regattaID], seq)

		rc := &models.Race{
			RegattaID:    regattaID,
			Sequence:     seq,
			Name:         strings.TrimSpace(r.Name),
			StartTime:    r.Startzeit,
			FinishTime:   r.Zielzeit,
			WindStrength: r.Windstaerke,
			CourseLength: r.Bahnlaenge,
			Completed:    r.Abgeschlossen,
			Incomplete:   r.Abgeschlossen && r.Unvollstaendig,
		}
		if rc.Name == "" {
			rc.Name = fmt.Sprintf("Race %d", seq)
		}
		if _, err := tx.NewInsert().Model(rc).Exec(ctx); err != nil {
			return nil, fmt.Errorf("race %s: %w", r.ID, err)
		}
		ids[r.ID] = rc.ID
		n.Races++
	}
	return ids, nil
}

// importResults groups the results by race and renumbers them through the
// finish order, so gaps and duplicates in the export do not survive.
func importResults(ctx context.Context, tx bun.Tx, results []exportResult, raceIDs, boatIDs map[string]int, n *counts, log *zap.Logger) error {
	byRace := map[int][]scoring.Placing{}
	var order []int
	for _, r := range results {
		raceID, okRace := raceIDs[r.WettfahrtID]
		boatID, okBoat := boatIDs[r.BootID]
		if !okRace || !okBoat {
			n.Skipped++
			continue
		}

		p := scoring.Placing{BoatID: boatID}
		switch {
		case r.Penalty != nil && *r.Penalty != "":
			code, err := scoring.ParsePenalty(*r.Penalty)
			if err != nil {
				log.Warn("skipping result", zap.String("penalty", *r.Penalty), zap.Error(err))
				n.Skipped++
				continue
			}
			p.Penalty = code
		case r.Platz != nil && *r.Platz > 0:
			p.Placement = *r.Platz
		default:
			n.Skipped++
			continue
		}

		if _, ok := byRace[raceID]; !ok {
			order = append(order, raceID)
		}
		byRace[raceID] = append(byRace[raceID], p)
	}

	var rows []models.Result
	for _, raceID := range order {
		before := len(byRace[raceID])
		placings := scoring.Rehydrate(byRace[raceID]).Placings()
		n.Skipped += before - len(placings)
		for _, p := range placings {
			rows = append(rows, models.Result{RaceID: raceID, BoatID: p.BoatID, Placement: p.Placement, Penalty: p.Penalty})
		}
	}
	if err := bulkInsert(ctx, tx, rows); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	n.Results += len(rows)
	return nil
}

// bulkInsert inserts rows in batches, skipping rows that already exist.
func bulkInsert[T any](ctx context.Context, db bun.IDB, rows []T) error {
	for start := 0; start < len(rows); start += batchSize {
		batch := rows[start:min(start+batchSize, len(rows))]
		if _, err := db.NewInsert().Model(&batch).Ignore().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
