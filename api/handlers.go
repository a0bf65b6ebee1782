/*
handlers.go - HTTP handlers for the roster engine

PURPOSE:
  Exposes the engines over REST. Handlers parse and validate input,
  delegate to the domain logic, and translate errors into HTTP status
  codes. No business rules live here.

ENDPOINTS:
  Soldiers:
    GET    /api/soldiers                    List (optional ?q= search)
    POST   /api/soldiers                    Create/update
    GET    /api/soldiers/{id}               Get one
    DELETE /api/soldiers/{id}               Delete (?confirm=true)

  Time bank:
    GET    /api/soldiers/{id}/bank          Statement (?q= filter)
    POST   /api/soldiers/{id}/bank          Record transaction
    DELETE /api/soldiers/{id}/bank/{txID}   Delete entry (?confirm=true)

  Rosters:
    GET    /api/rosters                     List
    POST   /api/rosters                     Create/update
    DELETE /api/rosters/{id}                Delete (?confirm=true)

  Duty cycle:
    GET    /api/duty/forecast?date=&category=

  Extra duty:
    GET    /api/extra-duty/queue
    POST   /api/extra-duty/preview
    POST   /api/extra-duty/confirm
    POST   /api/extra-duty/reset            Requires {"confirm": true}
    GET    /api/extra-duty/history

  Misc:
    GET    /api/settings    PUT /api/settings
    GET    /api/holidays?year=
    GET    /api/reports/strength

ERROR HANDLING:
  Errors are JSON with appropriate status:
  - 400: validation errors, invalid input, missing confirmation
  - 404: unknown soldier/roster/transaction
  - 409: no extra-duty candidates (reported condition)
  - 500: store failures

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dsaude/roster-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo  engine.Repository
	Cycle *engine.CycleEngine
	Extra *engine.ExtraDutyEngine
	Bank  *engine.TimeBank

	log      *zap.Logger
	validate *validator.Validate
}

// NewHandler wires the engines over the given repository.
func NewHandler(repo engine.Repository, log *zap.Logger) *Handler {
	return &Handler{
		Repo:     repo,
		Cycle:    engine.NewCycleEngine(repo),
		Extra:    engine.NewExtraDutyEngine(repo),
		Bank:     engine.NewTimeBank(repo),
		log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// SOLDIER HANDLERS
// =============================================================================

func (h *Handler) ListSoldiers(w http.ResponseWriter, r *http.Request) {
	soldiers, err := h.Repo.Soldiers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list soldiers", err)
		return
	}

	if q := r.URL.Query().Get("q"); q != "" {
		soldiers = engine.SearchSoldiers(soldiers, q)
	}

	dtos := make([]SoldierDTO, 0, len(soldiers))
	for _, s := range soldiers {
		dtos = append(dtos, toSoldierDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSoldier(w http.ResponseWriter, r *http.Request) {
	id := engine.SoldierID(chi.URLParam(r, "id"))

	soldiers, err := h.Repo.Soldiers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load soldiers", err)
		return
	}
	s, ok := engine.FindSoldier(soldiers, id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Soldier not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSoldierDTO(s))
}

func (h *Handler) SaveSoldier(w http.ResponseWriter, r *http.Request) {
	var req SaveSoldierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	id := engine.SoldierID(req.ID)
	created := false
	if id == "" {
		id = engine.SoldierID(uuid.NewString())
		created = true
	}

	// Preserve fields the form does not own (bank history, queue position
	// when the request omits it).
	soldiers, err := h.Repo.Soldiers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load soldiers", err)
		return
	}
	existing, _ := engine.FindSoldier(soldiers, id)

	orderExtra := existing.OrderExtra
	if req.OrderExtra != nil {
		orderExtra = *req.OrderExtra
	}

	s := engine.Soldier{
		ID:                id,
		Name:              req.Name,
		FullName:          req.FullName,
		Rank:              engine.Rank(req.Rank),
		Cadre:             engine.Cadre(req.Cadre),
		Role:              req.Role,
		RoleShort:         req.RoleShort,
		Sector:            req.Sector,
		Team:              req.Team,
		Status:            engine.Status(req.Status),
		Matricula:         req.Matricula,
		Phone:             req.Phone,
		AvailableForExtra: req.AvailableForExtra,
		OrderExtra:        orderExtra,
		BankHistory:       existing.BankHistory,
	}

	if err := h.Repo.SaveSoldier(r.Context(), s); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save soldier", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toSoldierDTO(s))
}

func (h *Handler) DeleteSoldier(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		h.writeError(w, http.StatusBadRequest, "Deletion requires ?confirm=true", engine.ErrConfirmationRequired)
		return
	}
	id := engine.SoldierID(chi.URLParam(r, "id"))
	if err := h.Repo.DeleteSoldier(r.Context(), id); err != nil {
		h.writeEngineError(w, err, "Failed to delete soldier")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TIME-BANK HANDLERS
// =============================================================================

func (h *Handler) GetBankStatement(w http.ResponseWriter, r *http.Request) {
	id := engine.SoldierID(chi.URLParam(r, "id"))

	soldiers, err := h.Repo.Soldiers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load soldiers", err)
		return
	}
	s, ok := engine.FindSoldier(soldiers, id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Soldier not found", nil)
		return
	}

	lines := engine.RunningBalances(s.BankHistory)
	if q := r.URL.Query().Get("q"); q != "" {
		lines = engine.FilterLines(lines, q)
	}
	credits, debits := engine.BankStats(s.BankHistory)

	writeJSON(w, http.StatusOK, BankStatementResponse{
		SoldierID: id,
		Balance:   engine.Balance(s.BankHistory),
		Credits:   credits,
		Debits:    debits,
		Lines:     lines,
	})
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	id := engine.SoldierID(chi.URLParam(r, "id"))

	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := engine.ParseDate(req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	tx, err := h.Bank.Record(r.Context(), id, engine.TransactionInput{
		Type:        engine.TransactionType(req.Type),
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		h.writeEngineError(w, err, "Failed to record transaction")
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := engine.SoldierID(chi.URLParam(r, "id"))
	txID := engine.TransactionID(chi.URLParam(r, "txID"))

	err := h.Bank.Delete(r.Context(), id, txID, confirmed(r))
	if err != nil {
		h.writeEngineError(w, err, "Failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	rosters, err := h.Repo.Rosters(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list rosters", err)
		return
	}
	writeJSON(w, http.StatusOK, rosters)
}

func (h *Handler) SaveRoster(w http.ResponseWriter, r *http.Request) {
	var roster engine.Roster
	if err := json.NewDecoder(r.Body).Decode(&roster); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if roster.Title == "" || roster.Type == "" {
		h.writeError(w, http.StatusBadRequest, "Roster title and type are required", nil)
		return
	}
	if roster.StartDate.IsZero() || roster.EndDate.IsZero() || roster.EndDate.Before(roster.StartDate) {
		h.writeError(w, http.StatusBadRequest, "Invalid roster date range", engine.ErrInvalidDate)
		return
	}

	created := false
	if roster.ID == "" {
		roster.ID = engine.RosterID(uuid.NewString())
		created = true
	}
	if roster.CreatedAt.IsZero() {
		roster.CreatedAt = time.Now()
	}

	if err := h.Repo.SaveRoster(r.Context(), roster); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save roster", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, roster)
}

func (h *Handler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		h.writeError(w, http.StatusBadRequest, "Deletion requires ?confirm=true", engine.ErrConfirmationRequired)
		return
	}
	id := engine.RosterID(chi.URLParam(r, "id"))
	if err := h.Repo.DeleteRoster(r.Context(), id); err != nil {
		h.writeEngineError(w, err, "Failed to delete roster")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DUTY FORECAST
// =============================================================================

func (h *Handler) DutyForecast(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.writeError(w, http.StatusBadRequest, "Missing date parameter", engine.ErrInvalidDate)
		return
	}
	date, err := engine.ParseDate(dateStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	forecast, err := h.Cycle.Forecast(r.Context(), date, r.URL.Query().Get("category"))
	if err != nil {
		h.writeEngineError(w, err, "Failed to compute forecast")
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

// =============================================================================
// EXTRA-DUTY HANDLERS
// =============================================================================

func (h *Handler) ExtraDutyQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.Extra.Queue(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load queue", err)
		return
	}
	dtos := make([]SoldierDTO, 0, len(queue))
	for _, s := range queue {
		dtos = append(dtos, toSoldierDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ExtraDutyPreview(w http.ResponseWriter, r *http.Request) {
	var req ExtraDutyPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	preview, err := h.Extra.Preview(r.Context(), req.Count)
	if errors.Is(err, engine.ErrNoCandidates) {
		// Zero results is a reported condition, not a server failure.
		h.writeError(w, http.StatusConflict, "No available soldiers for the requested count", err)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to generate preview", err)
		return
	}

	dtos := make([]SoldierDTO, 0, len(preview))
	for _, s := range preview {
		dtos = append(dtos, toSoldierDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ExtraDutyConfirm(w http.ResponseWriter, r *http.Request) {
	var req ExtraDutyConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	rosterDate, err := engine.ParseDate(req.RosterDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid roster date (use YYYY-MM-DD)", err)
		return
	}

	entry, err := h.Extra.Confirm(r.Context(), req.SoldierIDs, rosterDate)
	if err != nil {
		h.writeEngineError(w, err, "Failed to confirm extra duty")
		return
	}

	h.log.Info("extra-duty queue rotated",
		zap.Int("count", entry.Count),
		zap.String("rosterDate", entry.RosterDate.String()))
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) ExtraDutyReset(w http.ResponseWriter, r *http.Request) {
	var req ExtraDutyResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Extra.ResetBySeniority(r.Context(), req.Confirm); err != nil {
		h.writeEngineError(w, err, "Failed to reset queue")
		return
	}

	h.log.Info("extra-duty queue reset by seniority")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExtraDutyHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Extra.History(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}
	if entries == nil {
		entries = []engine.ExtraDutyEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// =============================================================================
// SETTINGS / HOLIDAYS / REPORTS
// =============================================================================

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Repo.Settings(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings engine.AppSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Repo.SaveSettings(r.Context(), settings.Normalize()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings.Normalize())
}

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid year", nil)
			return
		}
		year = parsed
	}
	writeJSON(w, http.StatusOK, engine.HolidaysForYear(year))
}

func (h *Handler) StrengthReport(w http.ResponseWriter, r *http.Request) {
	soldiers, err := h.Repo.Soldiers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load soldiers", err)
		return
	}
	writeJSON(w, http.StatusOK, engine.ComputeStrength(soldiers))
}

// =============================================================================
// HELPERS
// =============================================================================

func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	if status >= http.StatusInternalServerError && h.log != nil {
		h.log.Error(message, zap.Error(err))
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps a domain error to its HTTP status.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error, message string) {
	switch {
	case engine.IsClientError(err):
		h.writeError(w, http.StatusBadRequest, message, err)
	case engine.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, engine.ErrNoCandidates):
		h.writeError(w, http.StatusConflict, message, err)
	default:
		h.writeError(w, http.StatusInternalServerError, message, err)
	}
}
