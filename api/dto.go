/*
dto.go - Request/response shapes for the HTTP API

PURPOSE:
  Wire-level structs separated from the engine types so the JSON surface
  can evolve without touching domain code. Inbound shapes carry
  validator tags; handlers run them through the shared validator before
  touching the engines.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/dsaude/roster-engine/engine"
)

// =============================================================================
// SOLDIERS
// =============================================================================

type SaveSoldierRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name" validate:"required"`
	FullName          string `json:"fullName"`
	Rank              string `json:"rank" validate:"required"`
	Cadre             string `json:"cadre"`
	Role              string `json:"role"`
	RoleShort         string `json:"roleShort"`
	Sector            string `json:"sector"`
	Team              string `json:"team"`
	Status            string `json:"status" validate:"required"`
	Matricula         string `json:"matricula"`
	Phone             string `json:"phone"`
	AvailableForExtra *bool  `json:"availableForExtra"`
	OrderExtra        *int   `json:"orderExtra" validate:"omitempty,min=0"`
}

// SoldierDTO augments the stored record with derived fields.
type SoldierDTO struct {
	engine.Soldier
	RankWeight  int             `json:"rankWeight"`
	BankBalance decimal.Decimal `json:"bankBalance"`
}

func toSoldierDTO(s engine.Soldier) SoldierDTO {
	return SoldierDTO{
		Soldier:     s,
		RankWeight:  engine.RankWeight(s.Rank),
		BankBalance: engine.Balance(s.BankHistory),
	}
}

// =============================================================================
// TIME BANK
// =============================================================================

type RecordTransactionRequest struct {
	Type        string          `json:"type" validate:"required,oneof=CREDIT DEBIT"`
	Date        string          `json:"date" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

type BankStatementResponse struct {
	SoldierID engine.SoldierID    `json:"soldierId"`
	Balance   decimal.Decimal     `json:"balance"`
	Credits   decimal.Decimal     `json:"credits"`
	Debits    decimal.Decimal     `json:"debits"`
	Lines     []engine.LedgerLine `json:"lines"`
}

// =============================================================================
// EXTRA DUTY
// =============================================================================

type ExtraDutyPreviewRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

type ExtraDutyConfirmRequest struct {
	SoldierIDs []engine.SoldierID `json:"soldierIds" validate:"required,min=1"`
	RosterDate string             `json:"rosterDate" validate:"required"`
}

type ExtraDutyResetRequest struct {
	Confirm bool `json:"confirm"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
