// cmd/standings/main.go
// Prints the series standings of a regatta as a terminal table.
//
// Usage:
//
//	go run ./cmd/standings -regatta 3
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/padraicbc/regattaapi/config"
	bundb "github.com/padraicbc/regattaapi/db"
	applog "github.com/padraicbc/regattaapi/logger"
	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/regatta"
	"github.com/padraicbc/regattaapi/scoring"
	"github.com/padraicbc/regattaapi/store"
)

func main() {
	regattaID := flag.Int("regatta", 0, "regatta id (required)")
	flag.Parse()

	logger, err := applog.New(false)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if *regattaID < 1 {
		logger.Fatal("-regatta is required")
	}

	ctx := context.Background()
	cfg := config.LoadDB()
	db := bundb.Setup(cfg)
	defer db.Close()

	st := store.New(db, logger)
	if err := run(ctx, os.Stdout, st, regatta.NewService(st, logger, regatta.Options{}), *regattaID); err != nil {
		logger.Fatal("standings", zap.Int("regatta_id", *regattaID), zap.Error(err))
	}
}

func run(ctx context.Context, w io.Writer, st *store.Store, svc *regatta.Service, regattaID int) error {
	rg, err := st.GetRegatta(ctx, regattaID)
	if err != nil {
		return err
	}
	standings, ok, err := svc.ComputeStandings(ctx, regattaID)
	if err != nil {
		return err
	}
	if !ok {
		_, err := fmt.Fprintf(w, "%s: standings need %d completed races\n", rg.Name, scoring.MinRacesForStandings)
		return err
	}
	boats, err := st.ListBoats(ctx, regattaID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%d discard(s))\n", rg.Name, rg.DiscardCount)
	render(w, standings, boats)
	return nil
}

func render(w io.Writer, standings *scoring.Standings, boats []models.Boat) {
	byID := make(map[int]models.Boat, len(boats))
	for _, b := range boats {
		byID[b.ID] = b
	}

	header := []string{"#", "Sail", "Helm", "Club"}
	for _, rc := range standings.Races {
		label := "R" + strconv.Itoa(rc.Sequence)
		if rc.Incomplete {
			label += "*"
		}
		header = append(header, label)
	}
	header = append(header, "Total")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)

	for _, row := range standings.Rows {
		b := byID[row.BoatID]
		line := []string{strconv.Itoa(row.Rank), b.SailNumber, b.Helm, b.Club}
		for _, c := range row.Cells {
			line = append(line, c.String())
		}
		line = append(line, strconv.Itoa(row.Total))
		table.Append(line)
	}
	table.Render()
}
