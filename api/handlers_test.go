package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dsaude/roster-engine/api"
	"github.com/dsaude/roster-engine/engine"
	"github.com/dsaude/roster-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	repo := store.NewMemory()
	handler := api.NewHandler(repo, zap.NewNop())
	server := httptest.NewServer(api.NewRouter(handler, []string{"*"}))
	t.Cleanup(server.Close)
	return server, repo
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func saveTestSoldier(t *testing.T, repo *store.Memory, id, name string, rank engine.Rank, order int) {
	t.Helper()
	err := repo.SaveSoldier(context.Background(), engine.Soldier{
		ID:         engine.SoldierID(id),
		Name:       name,
		Rank:       rank,
		Status:     engine.StatusAtivo,
		OrderExtra: order,
	})
	require.NoError(t, err)
}

// =============================================================================
// SOLDIER ENDPOINTS
// =============================================================================

func TestAPI_CreateAndGetSoldier(t *testing.T) {
	// GIVEN: A running server
	// WHEN: Creating a soldier without an id, then fetching it
	// THEN: 201 with a generated id, and the GET returns derived fields

	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/soldiers", map[string]any{
		"name":   "Cruz",
		"rank":   "Subten",
		"status": "Ativo",
		"team":   "ALFA",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID         string `json:"id"`
		RankWeight int    `json:"rankWeight"`
	}
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 9, created.RankWeight)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/soldiers/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_SaveSoldierValidation(t *testing.T) {
	// GIVEN: A request missing the required name
	// WHEN: Posting it
	// THEN: 400 with a validation error payload

	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/soldiers", map[string]any{
		"rank":   "Sd",
		"status": "Ativo",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SaveSoldierPreservesBankHistory(t *testing.T) {
	// GIVEN: A soldier with ledger entries
	// WHEN: Updating the registration form fields
	// THEN: The ledger is untouched

	server, repo := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSoldier(ctx, engine.Soldier{
		ID: "s1", Name: "Cruz", Rank: engine.RankSd, Status: engine.StatusAtivo,
		BankHistory: []engine.BankTransaction{
			{ID: "tx1", Type: engine.TxCredit, Date: engine.NewDate(2024, time.January, 1), Description: "extra"},
		},
	}))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/soldiers", map[string]any{
		"id":     "s1",
		"name":   "Cruz Filho",
		"rank":   "Sd",
		"status": "Ativo",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	soldiers, err := repo.Soldiers(ctx)
	require.NoError(t, err)
	s, _ := engine.FindSoldier(soldiers, "s1")
	assert.Equal(t, "Cruz Filho", s.Name)
	require.Len(t, s.BankHistory, 1)
}

func TestAPI_UpdateSoldierKeepsQueuePositionWhenOmitted(t *testing.T) {
	// GIVEN: A soldier holding extra-duty queue position 7
	// WHEN: Updating the record without an orderExtra field, then with one
	// THEN: The omitted update keeps position 7; the explicit one applies

	server, repo := newTestServer(t)
	ctx := context.Background()
	saveTestSoldier(t, repo, "s1", "Cruz", engine.RankSd, 7)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/soldiers", map[string]any{
		"id":     "s1",
		"name":   "Cruz",
		"rank":   "Sd",
		"status": "Ativo",
		"phone":  "85 99999-0000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	soldiers, err := repo.Soldiers(ctx)
	require.NoError(t, err)
	s, _ := engine.FindSoldier(soldiers, "s1")
	assert.Equal(t, 7, s.OrderExtra)
	assert.Equal(t, "85 99999-0000", s.Phone)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/soldiers", map[string]any{
		"id":         "s1",
		"name":       "Cruz",
		"rank":       "Sd",
		"status":     "Ativo",
		"orderExtra": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	soldiers, err = repo.Soldiers(ctx)
	require.NoError(t, err)
	s, _ = engine.FindSoldier(soldiers, "s1")
	assert.Equal(t, 2, s.OrderExtra)
}

func TestAPI_DeleteSoldierRequiresConfirmation(t *testing.T) {
	// GIVEN: An existing soldier
	// WHEN: Deleting without and then with ?confirm=true
	// THEN: 400 first, 204 after

	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "s1", "Cruz", engine.RankSd, 1)

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/soldiers/s1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/soldiers/s1?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/soldiers/s1?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ListSoldiersWithSearch(t *testing.T) {
	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "s1", "Cruz", engine.RankSd, 1)
	saveTestSoldier(t, repo, "s2", "Maria", engine.RankSgt1, 2)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/soldiers?q=mar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var soldiers []json.RawMessage
	decode(t, resp, &soldiers)
	assert.Len(t, soldiers, 1)
}

// =============================================================================
// TIME-BANK ENDPOINTS
// =============================================================================

func TestAPI_BankRecordAndStatement(t *testing.T) {
	// GIVEN: A soldier with a debit and a credit posted via the API
	// WHEN: Fetching the statement
	// THEN: Balance is 2 and the newest line leads

	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "s1", "Cruz", engine.RankSd, 1)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/soldiers/s1/bank", map[string]any{
		"type":        "DEBIT",
		"date":        "2024-01-05",
		"description": "Folga",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/soldiers/s1/bank", map[string]any{
		"type":        "CREDIT",
		"date":        "2024-01-10",
		"description": "Serviço extra",
		"amount":      "3",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/soldiers/s1/bank", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var statement struct {
		Balance json.Number       `json:"balance"`
		Lines   []json.RawMessage `json:"lines"`
	}
	decode(t, resp, &statement)
	assert.Equal(t, "2", statement.Balance.String())
	assert.Len(t, statement.Lines, 2)
}

func TestAPI_BankRecordRejectsUnknownType(t *testing.T) {
	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "s1", "Cruz", engine.RankSd, 1)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/soldiers/s1/bank", map[string]any{
		"type":        "TRANSFER",
		"date":        "2024-01-05",
		"description": "x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_BankDeleteTransaction(t *testing.T) {
	// GIVEN: A posted ledger entry
	// WHEN: Deleting it with confirmation
	// THEN: 204, and a repeat delete is 404

	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "s1", "Cruz", engine.RankSd, 1)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/soldiers/s1/bank", map[string]any{
		"type":        "CREDIT",
		"date":        "2024-01-10",
		"description": "Serviço extra",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx struct {
		ID string `json:"id"`
	}
	decode(t, resp, &tx)

	url := fmt.Sprintf("%s/api/soldiers/s1/bank/%s", server.URL, tx.ID)

	resp = doJSON(t, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing confirmation")

	resp = doJSON(t, http.MethodDelete, url+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, url+"?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// DUTY FORECAST ENDPOINT
// =============================================================================

func TestAPI_DutyForecast(t *testing.T) {
	// GIVEN: A registered ALFA soldier and no rosters
	// WHEN: Forecasting the cycle anchor date
	// THEN: ALFA under the fixed-forecast label

	server, repo := newTestServer(t)

	err := repo.SaveSoldier(context.Background(), engine.Soldier{
		ID: "s1", Name: "Cruz", Rank: engine.RankSd, Team: "ALFA", Status: engine.StatusAtivo,
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/duty/forecast?date=2024-01-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var forecast struct {
		CycleIndex  int  `json:"cycleIndex"`
		Theoretical bool `json:"theoretical"`
		Team24      struct {
			Name string `json:"name"`
		} `json:"team24"`
	}
	decode(t, resp, &forecast)
	assert.Equal(t, 0, forecast.CycleIndex)
	assert.Equal(t, "ALFA", forecast.Team24.Name)
	assert.True(t, forecast.Theoretical)
}

func TestAPI_DutyForecastRequiresDate(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/duty/forecast", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/duty/forecast?date=01/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// EXTRA-DUTY ENDPOINTS
// =============================================================================

func TestAPI_ExtraDutyFlow(t *testing.T) {
	// GIVEN: A three-soldier queue
	// WHEN: Previewing two and confirming them
	// THEN: The queue rotates and the history records the call-up

	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "a", "Cruz", engine.RankSd, 1)
	saveTestSoldier(t, repo, "b", "Maria", engine.RankSd, 2)
	saveTestSoldier(t, repo, "c", "Ricardo", engine.RankSd, 3)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/extra-duty/preview", map[string]any{"count": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview []struct {
		ID string `json:"id"`
	}
	decode(t, resp, &preview)
	require.Len(t, preview, 2)
	assert.Equal(t, "a", preview[0].ID)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/extra-duty/confirm", map[string]any{
		"soldierIds": []string{"a", "b"},
		"rosterDate": "2024-06-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/extra-duty/queue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var queue []struct {
		ID string `json:"id"`
	}
	decode(t, resp, &queue)
	require.Len(t, queue, 3)
	assert.Equal(t, "c", queue[0].ID)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/extra-duty/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []struct {
		Amount int `json:"amount"`
	}
	decode(t, resp, &history)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].Amount)
}

func TestAPI_ExtraDutyPreviewEmptyQueue(t *testing.T) {
	// GIVEN: No soldiers
	// WHEN: Previewing
	// THEN: 409, the condition is reported rather than an empty success

	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/extra-duty/preview", map[string]any{"count": 2})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_ExtraDutyResetRequiresConfirmation(t *testing.T) {
	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "a", "Cruz", engine.RankSd, 5)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/extra-duty/reset", map[string]any{"confirm": false})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/extra-duty/reset", map[string]any{"confirm": true})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// =============================================================================
// SETTINGS / HOLIDAYS / REPORTS
// =============================================================================

func TestAPI_SettingsRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var settings engine.AppSettings
	decode(t, resp, &settings)
	assert.Equal(t, "DIRETORIA DE SAÚDE – PMCE", settings.OrgName)

	settings.OrgName = "CUSTOM"
	resp = doJSON(t, http.MethodPut, server.URL+"/api/settings", settings)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/settings", nil)
	decode(t, resp, &settings)
	assert.Equal(t, "CUSTOM", settings.OrgName)
}

func TestAPI_Holidays(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/holidays?year=2024", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var holidays []struct {
		Date string `json:"date"`
		Name string `json:"name"`
	}
	decode(t, resp, &holidays)
	assert.Len(t, holidays, 11)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/holidays?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_StrengthReport(t *testing.T) {
	server, repo := newTestServer(t)
	saveTestSoldier(t, repo, "s1", "Cruz", engine.RankSd, 1)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/reports/strength", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	}
	decode(t, resp, &report)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Active)
}

// =============================================================================
// ROSTER ENDPOINTS
// =============================================================================

func TestAPI_RosterCRUD(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/rosters", map[string]any{
		"title":     "ESCALA AMBULÂNCIA",
		"type":      "cat_amb",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var roster struct {
		ID string `json:"id"`
	}
	decode(t, resp, &roster)
	require.NotEmpty(t, roster.ID)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/rosters", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/rosters/"+roster.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_RosterRejectsInvertedRange(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/rosters", map[string]any{
		"title":     "ESCALA",
		"type":      "cat_amb",
		"startDate": "2024-03-31",
		"endDate":   "2024-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
