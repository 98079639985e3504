package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/regattaapi/models"
)

type regattaRequest struct {
	Name         string `json:"name"`
	Date         string `json:"date"`
	Organizer    string `json:"organizer"`
	BoatClass    string `json:"boatClass"`
	Status       string `json:"status"`
	DiscardCount *int   `json:"discardCount"`
}

func (r regattaRequest) apply(rg *models.Regatta) {
	rg.Name = r.Name
	rg.Date = r.Date
	rg.Organizer = r.Organizer
	rg.BoatClass = r.BoatClass
	rg.Status = r.Status
	if r.DiscardCount != nil {
		rg.DiscardCount = *r.DiscardCount
	}
}

// ListRegattas returns every regatta, newest first.
func (h *Handler) ListRegattas(c echo.Context) error {
	out, err := h.store.ListRegattas(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if out == nil {
		out = []models.Regatta{}
	}
	return c.JSON(http.StatusOK, out)
}

// GetRegatta returns one regatta.
func (h *Handler) GetRegatta(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	rg, err := h.store.GetRegatta(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rg)
}

// CreateRegatta inserts a regatta. Without a discard count the configured
// default applies.
func (h *Handler) CreateRegatta(c echo.Context) error {
	var req regattaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rg := &models.Regatta{DiscardCount: h.DefaultDiscards}
	req.apply(rg)
	if err := h.store.CreateRegatta(c.Request().Context(), rg); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rg)
}

// UpdateRegatta overwrites the editable fields of a regatta.
func (h *Handler) UpdateRegatta(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req regattaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	rg, err := h.store.GetRegatta(ctx, id)
	if err != nil {
		return httpError(err)
	}
	req.apply(rg)
	if err := h.store.UpdateRegatta(ctx, rg); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rg)
}

// DeleteRegatta removes a regatta with its boats, races and results.
func (h *Handler) DeleteRegatta(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	races, err := h.store.ListRaces(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if err := h.store.DeleteRegatta(ctx, id); err != nil {
		return httpError(err)
	}
	for _, rc := range races {
		h.svc.CloseCapture(rc.ID)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetDiscards changes how many worst scores each boat drops.
func (h *Handler) SetDiscards(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		DiscardCount int `json:"discardCount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.store.SetDiscardCount(c.Request().Context(), id, req.DiscardCount); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"discardCount": req.DiscardCount})
}
