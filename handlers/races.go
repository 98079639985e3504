package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/regattaapi/models"
)

type raceRequest struct {
	Name         string `json:"name"`
	StartTime    string `json:"startTime"`
	FinishTime   string `json:"finishTime"`
	WindStrength string `json:"windStrength"`
	CourseLength string `json:"courseLength"`
}

type resultData struct {
	BoatID    int    `json:"boatID"`
	Placement int    `json:"placement,omitempty"`
	Penalty   string `json:"penalty,omitempty"`
}

// ListRaces returns the regatta's races in sequence order.
func (h *Handler) ListRaces(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.store.GetRegatta(ctx, id); err != nil {
		return httpError(err)
	}
	out, err := h.store.ListRaces(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if out == nil {
		out = []models.Race{}
	}
	return c.JSON(http.StatusOK, out)
}

// CreateRace appends the next race to the regatta.
func (h *Handler) CreateRace(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	rc, err := h.store.CreateRace(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rc)
}

// UpdateRace saves a race's name, times, wind and course length.
func (h *Handler) UpdateRace(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req raceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	rc, err := h.store.GetRace(ctx, id)
	if err != nil {
		return httpError(err)
	}
	rc.StartTime, rc.FinishTime = req.StartTime, req.FinishTime
	rc.WindStrength, rc.CourseLength = req.WindStrength, req.CourseLength
	if req.Name != "" {
		rc.Name = req.Name
	}
	if err := h.store.UpdateRaceDetails(ctx, rc); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rc)
}

// DeleteRace removes a race with its results and drops its capture session.
func (h *Handler) DeleteRace(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteRace(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	h.svc.CloseCapture(id)
	return c.NoContent(http.StatusNoContent)
}

// RaceResults returns the stored results of a race.
func (h *Handler) RaceResults(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.store.GetRace(ctx, id); err != nil {
		return httpError(err)
	}
	rows, err := h.store.ListResults(ctx, id)
	if err != nil {
		return httpError(err)
	}
	out := make([]resultData, len(rows))
	for i, p := range models.Placings(rows) {
		out[i] = resultData{BoatID: p.BoatID, Placement: p.Placement, Penalty: string(p.Penalty)}
	}
	return c.JSON(http.StatusOK, out)
}
