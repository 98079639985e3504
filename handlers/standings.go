package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/scoring"
)

type raceColumn struct {
	RaceID     int  `json:"raceID"`
	Sequence   int  `json:"sequence"`
	Incomplete bool `json:"incomplete"`
}

type cellData struct {
	RaceID     int    `json:"raceID"`
	Sequence   int    `json:"sequence"`
	Point      int    `json:"point"`
	Penalty    string `json:"penalty,omitempty"`
	Discarded  bool   `json:"discarded"`
	Incomplete bool   `json:"incomplete"`
}

type standingRow struct {
	Rank       int        `json:"rank"`
	BoatID     int        `json:"boatID"`
	SailNumber string     `json:"sailNumber"`
	Helm       string     `json:"helm,omitempty"`
	Club       string     `json:"club,omitempty"`
	Total      int        `json:"total"`
	Cells      []cellData `json:"cells"`
}

type standingsData struct {
	// Ready is false until enough races are completed.
	Ready bool          `json:"ready"`
	Races []raceColumn  `json:"races"`
	Rows  []standingRow `json:"rows"`
}

type standingCSV struct {
	Rank       int    `csv:"rank"`
	SailNumber string `csv:"sail_number"`
	Helm       string `csv:"helm"`
	Club       string `csv:"club"`
	Total      int    `csv:"total"`
	Races      string `csv:"races"`
}

// Standings returns the regatta's series table as JSON, or as a CSV download
// with ?format=csv.
func (h *Handler) Standings(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.store.GetRegatta(ctx, id); err != nil {
		return httpError(err)
	}
	st, ok, err := h.svc.ComputeStandings(ctx, id)
	if err != nil {
		return httpError(err)
	}
	boats, err := h.store.ListBoats(ctx, id)
	if err != nil {
		return httpError(err)
	}
	byID := make(map[int]models.Boat, len(boats))
	for _, b := range boats {
		byID[b.ID] = b
	}

	if c.QueryParam("format") == "csv" {
		if !ok {
			return echo.NewHTTPError(http.StatusConflict,
				fmt.Sprintf("standings need %d completed races", scoring.MinRacesForStandings))
		}
		body, err := standingsCSV(st, byID)
		if err != nil {
			return httpError(err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="regatta-%d-standings.csv"`, id))
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", body)
	}

	out := standingsData{Races: []raceColumn{}, Rows: []standingRow{}}
	if !ok {
		return c.JSON(http.StatusOK, out)
	}
	out.Ready = true
	for _, rc := range st.Races {
		out.Races = append(out.Races, raceColumn{RaceID: rc.RaceID, Sequence: rc.Sequence, Incomplete: rc.Incomplete})
	}
	for _, row := range st.Rows {
		b := byID[row.BoatID]
		sr := standingRow{
			Rank:       row.Rank,
			BoatID:     row.BoatID,
			SailNumber: b.SailNumber,
			Helm:       b.Helm,
			Club:       b.Club,
			Total:      row.Total,
			Cells:      make([]cellData, len(row.Cells)),
		}
		for i, cell := range row.Cells {
			sr.Cells[i] = cellData{
				RaceID:     cell.RaceID,
				Sequence:   cell.Sequence,
				Point:      cell.Point,
				Penalty:    string(cell.Penalty),
				Discarded:  cell.Discarded,
				Incomplete: cell.Incomplete,
			}
		}
		out.Rows = append(out.Rows, sr)
	}
	return c.JSON(http.StatusOK, out)
}

func standingsCSV(st *scoring.Standings, boats map[int]models.Boat) ([]byte, error) {
	rows := make([]standingCSV, len(st.Rows))
	for i, row := range st.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		b := boats[row.BoatID]
		rows[i] = standingCSV{
			Rank:       row.Rank,
			SailNumber: b.SailNumber,
			Helm:       b.Helm,
			Club:       b.Club,
			Total:      row.Total,
			Races:      strings.Join(cells, " / "),
		}
	}
	return gocsv.MarshalBytes(&rows)
}

type penaltyData struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Priority int    `json:"priority"`
}

// Penalties lists the penalty catalog in priority order.
func (h *Handler) Penalties(c echo.Context) error {
	codes := scoring.Penalties()
	out := make([]penaltyData, len(codes))
	for i, p := range codes {
		out[i] = penaltyData{Code: string(p), Label: p.Label(), Priority: p.Priority()}
	}
	return c.JSON(http.StatusOK, out)
}
