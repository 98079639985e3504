package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/regattaapi/regatta"
	"github.com/padraicbc/regattaapi/scoring"
	"github.com/padraicbc/regattaapi/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	store  *store.Store
	svc    *regatta.Service
	JWTKey []byte
	// DefaultDiscards applies to regattas created without a discard count.
	DefaultDiscards int
}

// New creates a Handler over the store, the capture service and the JWT signing key.
func New(st *store.Store, svc *regatta.Service, jwtKey []byte) *Handler {
	return &Handler{store: st, svc: svc, JWTKey: jwtKey}
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

type missingBoatsBody struct {
	Message string `json:"message"`
	Missing int    `json:"missing"`
	BoatIDs []int  `json:"boatIDs"`
}

// httpError maps service and store errors onto HTTP statuses.
func httpError(err error) error {
	var (
		ve *store.ValidationError
		mb *scoring.MissingBoatsError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &he):
		return he
	case errors.As(err, &ve):
		body := echo.Map{"code": ve.Code, "message": ve.Message}
		if ve.Code == store.CodeSailNumberExists {
			return echo.NewHTTPError(http.StatusConflict, body)
		}
		return echo.NewHTTPError(http.StatusBadRequest, body)
	case errors.As(err, &mb):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, missingBoatsBody{
			Message: mb.Error(),
			Missing: mb.Count,
			BoatIDs: mb.BoatIDs,
		})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, scoring.ErrBoatAbsent):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, regatta.ErrRaceLocked),
		errors.Is(err, regatta.ErrRaceCompleted),
		errors.Is(err, regatta.ErrRaceNotCompleted),
		errors.Is(err, regatta.ErrUnknownBoat),
		errors.Is(err, scoring.ErrBoatPresent):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNameRequired),
		errors.Is(err, store.ErrInvalidDiscards),
		errors.Is(err, store.ErrFinishBeforeStart),
		errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, scoring.ErrIndexOutOfRange),
		errors.Is(err, scoring.ErrCrossesPenaltyBoundary),
		errors.Is(err, scoring.ErrInvalidRank),
		errors.Is(err, scoring.ErrUnknownPenalty),
		errors.Is(err, scoring.ErrNothingToRank):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
