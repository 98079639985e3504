package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/regattaapi/models"
)

type boatRequest struct {
	SailNumber string `json:"sailNumber"`
	Helm       string `json:"helm"`
	Club       string `json:"club"`
}

// ListBoats returns the regatta's boats ordered by sail number.
func (h *Handler) ListBoats(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.store.GetRegatta(ctx, id); err != nil {
		return httpError(err)
	}
	out, err := h.store.ListBoats(ctx, id)
	if err != nil {
		return httpError(err)
	}
	if out == nil {
		out = []models.Boat{}
	}
	return c.JSON(http.StatusOK, out)
}

// CreateBoat enters a boat in the regatta.
func (h *Handler) CreateBoat(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req boatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b := &models.Boat{RegattaID: id, SailNumber: req.SailNumber, Helm: req.Helm, Club: req.Club}
	if err := h.store.CreateBoat(c.Request().Context(), b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

// UpdateBoat edits a boat's sail number, helm and club.
func (h *Handler) UpdateBoat(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	var req boatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	b, err := h.store.GetBoat(ctx, id)
	if err != nil {
		return httpError(err)
	}
	b.SailNumber, b.Helm, b.Club = req.SailNumber, req.Helm, req.Club
	if err := h.store.UpdateBoat(ctx, b); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// DeleteBoat removes a boat and its results from every race.
func (h *Handler) DeleteBoat(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteBoat(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	h.svc.ForgetBoat(id)
	return c.NoContent(http.StatusNoContent)
}
