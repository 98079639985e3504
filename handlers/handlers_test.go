package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/padraicbc/regattaapi/db/dbtest"
	mw "github.com/padraicbc/regattaapi/middleware"
	"github.com/padraicbc/regattaapi/models"
	"github.com/padraicbc/regattaapi/regatta"
	"github.com/padraicbc/regattaapi/store"
)

var testKey = []byte("test-secret")

type api struct {
	t  *testing.T
	e  *echo.Echo
	st *store.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	log := zaptest.NewLogger(t)
	st := store.New(dbtest.New(t), log)
	h := New(st, regatta.NewService(st, log, regatta.Options{AutosaveAttempts: 1}), testKey)
	h.DefaultDiscards = 1

	e := echo.New()
	e.POST("/api/signin", h.Signin)
	h.Register(e.Group("/api", mw.JWT(testKey)))
	return &api{t: t, e: e, st: st}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if path != "/api/signin" {
		tok, err := mw.NewToken("officer", testKey, time.Now().Add(time.Hour))
		require.NoError(a.t, err)
		req.Header.Set(echo.HeaderAuthorization, tok)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) json(rec *httptest.ResponseRecorder, status int, out any) {
	a.t.Helper()
	require.Equal(a.t, status, rec.Code, rec.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

// seed creates a regatta with the given boats and one race.
func (a *api) seed(sails ...string) (regattaID int, boats map[string]int, raceID int) {
	a.t.Helper()
	var rg models.Regatta
	a.json(a.do(http.MethodPost, "/api/regattas", map[string]any{"name": "Spring Series"}), http.StatusCreated, &rg)

	boats = map[string]int{}
	for _, s := range sails {
		var b models.Boat
		a.json(a.do(http.MethodPost, fmt.Sprintf("/api/regattas/%d/boats", rg.ID), map[string]string{"sailNumber": s}), http.StatusCreated, &b)
		boats[s] = b.ID
	}
	return rg.ID, boats, a.race(rg.ID)
}

func (a *api) race(regattaID int) int {
	a.t.Helper()
	var rc models.Race
	a.json(a.do(http.MethodPost, fmt.Sprintf("/api/regattas/%d/races", regattaID), nil), http.StatusCreated, &rc)
	return rc.ID
}

func (a *api) finish(raceID int, boatIDs ...int) {
	a.t.Helper()
	for _, id := range boatIDs {
		a.json(a.do(http.MethodPost, fmt.Sprintf("/api/races/%d/capture/boats", raceID), map[string]int{"boatID": id}), http.StatusOK, nil)
	}
}

func TestRegattas(t *testing.T) {
	a := newAPI(t)

	var rg models.Regatta
	a.json(a.do(http.MethodPost, "/api/regattas", map[string]any{"name": "  Autumn Cup ", "boatClass": "Laser"}), http.StatusCreated, &rg)
	assert.Equal(t, "Autumn Cup", rg.Name)
	assert.Equal(t, models.StatusPreparation, rg.Status)
	assert.Equal(t, 1, rg.DiscardCount, "configured default")

	a.json(a.do(http.MethodPost, "/api/regattas", map[string]any{"name": ""}), http.StatusBadRequest, nil)
	a.json(a.do(http.MethodPost, "/api/regattas", map[string]any{"name": "x", "status": "sunk"}), http.StatusBadRequest, nil)

	var updated models.Regatta
	a.json(a.do(http.MethodPut, fmt.Sprintf("/api/regattas/%d", rg.ID), map[string]any{"name": "Autumn Cup", "status": "active", "discardCount": 0}), http.StatusOK, &updated)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Equal(t, 0, updated.DiscardCount)

	a.json(a.do(http.MethodPut, fmt.Sprintf("/api/regattas/%d/discards", rg.ID), map[string]int{"discardCount": -1}), http.StatusBadRequest, nil)
	a.json(a.do(http.MethodPut, fmt.Sprintf("/api/regattas/%d/discards", rg.ID), map[string]int{"discardCount": 2}), http.StatusOK, nil)

	var list []models.Regatta
	a.json(a.do(http.MethodGet, "/api/regattas", nil), http.StatusOK, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].DiscardCount)

	a.json(a.do(http.MethodGet, "/api/regattas/abc", nil), http.StatusBadRequest, nil)
	a.json(a.do(http.MethodGet, "/api/regattas/999", nil), http.StatusNotFound, nil)

	a.json(a.do(http.MethodDelete, fmt.Sprintf("/api/regattas/%d", rg.ID), nil), http.StatusNoContent, nil)
	a.json(a.do(http.MethodGet, fmt.Sprintf("/api/regattas/%d", rg.ID), nil), http.StatusNotFound, nil)
}

func TestBoatValidation(t *testing.T) {
	a := newAPI(t)
	rgID, boats, _ := a.seed("GER 1")
	path := fmt.Sprintf("/api/regattas/%d/boats", rgID)

	tests := []struct {
		sail   string
		status int
		code   string
	}{
		{"", http.StatusBadRequest, store.CodeSailNumberRequired},
		{" GER 1 ", http.StatusConflict, store.CodeSailNumberExists},
		{"GER#2", http.StatusBadRequest, store.CodeSailNumberInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			var body struct {
				Code string `json:"code"`
			}
			a.json(a.do(http.MethodPost, path, map[string]string{"sailNumber": tt.sail}), tt.status, &body)
			assert.Equal(t, tt.code, body.Code)
		})
	}

	var b models.Boat
	a.json(a.do(http.MethodPut, fmt.Sprintf("/api/boats/%d", boats["GER 1"]), map[string]string{"sailNumber": "GER 1", "helm": "Kim"}), http.StatusOK, &b)
	assert.Equal(t, "Kim", b.Helm)
}

func TestCaptureAndComplete(t *testing.T) {
	a := newAPI(t)
	_, boats, raceID := a.seed("A", "B", "C")
	base := fmt.Sprintf("/api/races/%d", raceID)

	var view captureData
	a.json(a.do(http.MethodGet, base+"/capture", nil), http.StatusOK, &view)
	assert.Empty(t, view.Placings)
	assert.Len(t, view.Available, 3)

	a.finish(raceID, boats["A"], boats["B"])
	a.json(a.do(http.MethodPost, base+"/capture/boats", map[string]int{"boatID": boats["A"]}), http.StatusConflict, nil)

	a.json(a.do(http.MethodPost, base+"/capture/reorder", map[string]int{"from": 1, "to": 0}), http.StatusOK, &view)
	assert.Equal(t, boats["B"], view.Placings[0].BoatID)

	a.json(a.do(http.MethodPut, fmt.Sprintf("%s/capture/boats/%d/penalty", base, boats["B"]), map[string]string{"penalty": "ufo"}), http.StatusBadRequest, nil)
	a.json(a.do(http.MethodPut, fmt.Sprintf("%s/capture/boats/%d/penalty", base, boats["B"]), map[string]string{"penalty": "dsq"}), http.StatusOK, &view)
	require.Len(t, view.Placings, 2)
	assert.Equal(t, resultData{BoatID: boats["A"], Placement: 1}, view.Placings[0])
	assert.Equal(t, resultData{BoatID: boats["B"], Penalty: "DSQ"}, view.Placings[1])
	assert.Len(t, view.Available, 1)

	var missing missingBoatsBody
	a.json(a.do(http.MethodPost, base+"/complete", nil), http.StatusUnprocessableEntity, &missing)
	assert.Equal(t, 1, missing.Missing)
	assert.Equal(t, []int{boats["C"]}, missing.BoatIDs)

	var done completionData
	a.json(a.do(http.MethodPost, base+"/complete?force=true", nil), http.StatusOK, &done)
	assert.True(t, done.Incomplete)
	assert.True(t, done.Race.Completed)
	assert.Equal(t, []int{boats["C"]}, done.Backfilled)

	a.json(a.do(http.MethodDelete, fmt.Sprintf("%s/capture/boats/%d", base, boats["A"]), nil), http.StatusConflict, nil)
	a.json(a.do(http.MethodPost, base+"/complete", nil), http.StatusConflict, nil)

	var results []resultData
	a.json(a.do(http.MethodGet, base+"/results", nil), http.StatusOK, &results)
	assert.Len(t, results, 3)

	var rc models.Race
	a.json(a.do(http.MethodPost, base+"/reopen", nil), http.StatusOK, &rc)
	assert.False(t, rc.Completed)
	a.json(a.do(http.MethodPost, base+"/reopen", nil), http.StatusConflict, nil)

	a.json(a.do(http.MethodPut, fmt.Sprintf("%s/capture/boats/%d/placement", base, boats["C"]), map[string]int{"placement": 1}), http.StatusOK, &view)
	assert.Equal(t, resultData{BoatID: boats["C"], Placement: 1}, view.Placings[0])
}

func TestCompleteEmptyRace(t *testing.T) {
	a := newAPI(t)
	_, _, raceID := a.seed("A")
	a.json(a.do(http.MethodPost, fmt.Sprintf("/api/races/%d/complete?force=true", raceID), nil), http.StatusBadRequest, nil)
}

func TestStandings(t *testing.T) {
	a := newAPI(t)
	rgID, boats, r1 := a.seed("A", "B")
	path := fmt.Sprintf("/api/regattas/%d/standings", rgID)

	a.finish(r1, boats["A"], boats["B"])
	a.json(a.do(http.MethodPost, fmt.Sprintf("/api/races/%d/complete", r1), nil), http.StatusOK, nil)

	var st standingsData
	a.json(a.do(http.MethodGet, path, nil), http.StatusOK, &st)
	assert.False(t, st.Ready)
	a.json(a.do(http.MethodGet, path+"?format=csv", nil), http.StatusConflict, nil)

	r2 := a.race(rgID)
	a.finish(r2, boats["A"], boats["B"])
	a.json(a.do(http.MethodPost, fmt.Sprintf("/api/races/%d/complete", r2), nil), http.StatusOK, nil)

	a.json(a.do(http.MethodGet, path, nil), http.StatusOK, &st)
	require.True(t, st.Ready)
	require.Len(t, st.Rows, 2)
	assert.Equal(t, "A", st.Rows[0].SailNumber)
	assert.Equal(t, 1, st.Rows[0].Total, "one discard by default")
	assert.Len(t, st.Races, 2)

	rec := a.do(http.MethodGet, path+"?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "rank,sail_number,helm,club,total,races", lines[0])
	assert.Equal(t, "1,A,,,1,1 / (1)", lines[1], "the later of equal scores is discarded")
}

func TestDeleteBoatDuringCapture(t *testing.T) {
	a := newAPI(t)
	_, boats, raceID := a.seed("A", "B")
	a.finish(raceID, boats["A"], boats["B"])

	a.json(a.do(http.MethodDelete, fmt.Sprintf("/api/boats/%d", boats["A"]), nil), http.StatusNoContent, nil)

	var view captureData
	a.json(a.do(http.MethodGet, fmt.Sprintf("/api/races/%d/capture", raceID), nil), http.StatusOK, &view)
	assert.Equal(t, []resultData{{BoatID: boats["B"], Placement: 1}}, view.Placings)
}

func TestPenalties(t *testing.T) {
	a := newAPI(t)
	var out []penaltyData
	a.json(a.do(http.MethodGet, "/api/penalties", nil), http.StatusOK, &out)
	require.Len(t, out, 7)
	assert.Equal(t, penaltyData{Code: "DNF", Label: "Did Not Finish", Priority: 0}, out[0])
	assert.Equal(t, "RET", out[6].Code)
}

func TestSignin(t *testing.T) {
	a := newAPI(t)
	hash, err := HashPasswordForUser("officer", "hunter2")
	require.NoError(t, err)
	require.NoError(t, a.st.SaveUser(context.Background(), "officer", hash))

	var tok map[string]string
	a.json(a.do(http.MethodPost, "/api/signin", credentials{Username: " officer ", Password: "hunter2"}), http.StatusOK, &tok)
	assert.NotEmpty(t, tok["token"])

	a.json(a.do(http.MethodPost, "/api/signin", credentials{Username: "officer", Password: "nope"}), http.StatusUnauthorized, nil)
	a.json(a.do(http.MethodPost, "/api/signin", credentials{Username: "ghost", Password: "x"}), http.StatusBadRequest, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/penalties", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok["token"])
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = HashPasswordForUser("", "x")
	assert.Error(t, err)
}
