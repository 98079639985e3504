package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/regatta"
	"github.com/padraicbc/regattaapi/scoring"
)

type captureData struct {
	Race      models.Race   `json:"race"`
	Placings  []resultData  `json:"placings"`
	Available []models.Boat `json:"available"`
}

type completionData struct {
	Race       models.Race  `json:"race"`
	Placings   []resultData `json:"placings"`
	Incomplete bool         `json:"incomplete"`
	Backfilled []int        `json:"backfilled"`
}

func placingData(ps []scoring.Placing) []resultData {
	out := make([]resultData, len(ps))
	for i, p := range ps {
		out[i] = resultData{BoatID: p.BoatID, Placement: p.Placement, Penalty: string(p.Penalty)}
	}
	return out
}

func captureView(ctx context.Context, sess *regatta.Session) (*captureData, error) {
	avail, err := sess.Available(ctx)
	if err != nil {
		return nil, err
	}
	return &captureData{
		Race:      sess.Race(),
		Placings:  placingData(sess.Placings()),
		Available: avail,
	}, nil
}

// session opens the capture of the race named by the :id param.
func (h *Handler) session(c echo.Context) (*regatta.Session, error) {
	id, err := intParam(c, "id")
	if err != nil {
		return nil, err
	}
	sess, err := h.svc.OpenCapture(c.Request().Context(), id)
	if err != nil {
		return nil, httpError(err)
	}
	return sess, nil
}

// edit runs fn against the race's capture session and answers with the
// resulting capture view.
func (h *Handler) edit(c echo.Context, fn func(ctx context.Context, sess *regatta.Session) error) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := fn(ctx, sess); err != nil {
		return httpError(err)
	}
	view, err := captureView(ctx, sess)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetCapture opens the race for capture and returns the current finish order
// with the boats still to be placed.
func (h *Handler) GetCapture(c echo.Context) error {
	return h.edit(c, func(context.Context, *regatta.Session) error { return nil })
}

// CloseCapture drops the race's capture session. Stored results stay.
func (h *Handler) CloseCapture(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	h.svc.CloseCapture(id)
	return c.NoContent(http.StatusNoContent)
}

// CaptureAddBoat records a boat as the next finisher.
func (h *Handler) CaptureAddBoat(c echo.Context) error {
	var req struct {
		BoatID int `json:"boatID"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BoatID < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "boatID is required")
	}
	return h.edit(c, func(ctx context.Context, sess *regatta.Session) error {
		return sess.Insert(ctx, req.BoatID)
	})
}

// CaptureRemoveBoat takes a boat out of the finish order.
func (h *Handler) CaptureRemoveBoat(c echo.Context) error {
	boatID, err := intParam(c, "boatID")
	if err != nil {
		return err
	}
	return h.edit(c, func(ctx context.Context, sess *regatta.Session) error {
		return sess.Remove(ctx, boatID)
	})
}

// CaptureReorder drags a finisher from one position to another.
func (h *Handler) CaptureReorder(c echo.Context) error {
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.From == nil || req.To == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "from and to are required")
	}
	return h.edit(c, func(ctx context.Context, sess *regatta.Session) error {
		return sess.ReorderFree(ctx, *req.From, *req.To)
	})
}

// CaptureSetPlacement moves a boat to an explicit rank, clearing its penalty.
func (h *Handler) CaptureSetPlacement(c echo.Context) error {
	boatID, err := intParam(c, "boatID")
	if err != nil {
		return err
	}
	var req struct {
		Placement int `json:"placement"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.edit(c, func(ctx context.Context, sess *regatta.Session) error {
		return sess.SetManualPlacement(ctx, boatID, req.Placement)
	})
}

// CaptureSetPenalty scores a boat with a penalty code.
func (h *Handler) CaptureSetPenalty(c echo.Context) error {
	boatID, err := intParam(c, "boatID")
	if err != nil {
		return err
	}
	var req struct {
		Penalty string `json:"penalty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	code, err := scoring.ParsePenalty(req.Penalty)
	if err != nil {
		return httpError(err)
	}
	return h.edit(c, func(ctx context.Context, sess *regatta.Session) error {
		return sess.SetPenalty(ctx, boatID, code)
	})
}

// CompleteRace closes the race. Missing boats are refused with 422 unless
// ?force=true, which scores them DNS and flags the race incomplete.
func (h *Handler) CompleteRace(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	force := false
	if v := c.QueryParam("force"); v != "" {
		if force, err = strconv.ParseBool(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid force")
		}
	}

	ctx := c.Request().Context()
	done, err := h.svc.CompleteRace(ctx, id, force)
	if err != nil {
		return httpError(err)
	}
	rc, err := h.store.GetRace(ctx, id)
	if err != nil {
		return httpError(err)
	}
	backfilled := done.Backfilled
	if backfilled == nil {
		backfilled = []int{}
	}
	return c.JSON(http.StatusOK, completionData{
		Race:       *rc,
		Placings:   placingData(done.Placings),
		Incomplete: done.Incomplete,
		Backfilled: backfilled,
	})
}

// ReopenRace unlocks a completed race for editing.
func (h *Handler) ReopenRace(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.ReopenRace(ctx, id); err != nil {
		return httpError(err)
	}
	rc, err := h.store.GetRace(ctx, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rc)
}
