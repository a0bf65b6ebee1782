/*
Package engine provides the core roster and duty-cycle domain logic.

PURPOSE:
  This package contains the domain types and algorithms of the personnel
  roster system: the shift-cycle projection engine, the rotating extra-duty
  queue, the per-soldier time-bank ledger, and the pure holiday/rank
  utilities they depend on.

KEY CONCEPTS IN THIS FILE (types.go):
  - Soldier: A personnel record including queue position and bank history
  - BankTransaction: An immutable time-bank ledger entry
  - Roster: A generated schedule (sections of rows + shift assignments)
  - ExtraDutyEntry: Append-only audit record of one extra-duty confirmation
  - AppSettings: Process-wide configuration (cycle anchor, team mappings)

DESIGN PRINCIPLES:
  1. Plain data: every shape round-trips through JSON with no loss
  2. Precision: time-bank amounts use decimal.Decimal, never float64
  3. Type safety: strong typing for IDs prevents mixing soldier/roster IDs
  4. Snapshots: engines read full collections per call and never cache

SEE ALSO:
  - cycle.go: Shift-cycle projection engine
  - extraduty.go: Rotating extra-duty queue
  - timebank.go: Time-bank ledger operations
  - store.go: Repository contract the engines consume
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SoldierID string
type RosterID string
type TransactionID string

// =============================================================================
// RANKS AND STATUS - Enumerations matching the force's registry
// =============================================================================

// Rank is a military rank label, ordered by seniority via RankWeight.
type Rank string

const (
	RankCel    Rank = "Cel"
	RankTenCel Rank = "Ten Cel"
	RankMaj    Rank = "Maj"
	RankCap    Rank = "Cap"
	RankTen1   Rank = "1º Ten"
	RankTen2   Rank = "2º Ten"
	RankAsp    Rank = "Asp Of"
	RankAlOf   Rank = "Al Of"
	RankSubTen Rank = "Subten"
	RankSgt1   Rank = "1º Sgt"
	RankSgt2   Rank = "2º Sgt"
	RankSgt3   Rank = "3º Sgt"
	RankCb     Rank = "Cb"
	RankSd     Rank = "Sd"
	RankCivil  Rank = "Civil"
)

// Cadre is the officer corps a soldier belongs to.
type Cadre string

const (
	CadreQOPM  Cadre = "QOPM"  // combatant officers
	CadreQOAPM Cadre = "QOAPM" // administration officers
	CadreQOCPM Cadre = "QOCPM" // complementary officers
	CadreQOPPM Cadre = "QOPPM" // enlisted corps
)

// Status is a soldier's availability status. Anything other than Ativo
// counts as an absence for scheduling purposes.
type Status string

const (
	StatusAtivo      Status = "Ativo"
	StatusFerias     Status = "Férias"
	StatusLicenca    Status = "Licença"
	StatusCurso      Status = "Curso"
	StatusDisposicao Status = "À Disposição"
)

// =============================================================================
// SOLDIER - A personnel record
// =============================================================================

type Soldier struct {
	ID        SoldierID `json:"id"`
	Name      string    `json:"name"`
	FullName  string    `json:"fullName,omitempty"`
	Rank      Rank      `json:"rank"`
	Cadre     Cadre     `json:"cadre,omitempty"`
	Role      string    `json:"role,omitempty"`
	RoleShort string    `json:"roleShort,omitempty"`
	Sector    string    `json:"sector,omitempty"`
	Team      string    `json:"team,omitempty"`
	Status    Status    `json:"status"`
	Matricula string    `json:"matricula,omitempty"`
	Phone     string    `json:"phone,omitempty"`

	// AvailableForExtra opts the soldier out of the extra-duty rotation
	// when explicitly false. Absent (nil) means available.
	AvailableForExtra *bool `json:"availableForExtra,omitempty"`

	// OrderExtra is the position in the extra-duty rotation; lower is
	// called up sooner. Zero means never assigned and sorts first.
	OrderExtra int `json:"orderExtra,omitempty"`

	BankHistory []BankTransaction `json:"bankHistory,omitempty"`
}

// ExtraAvailable reports whether the soldier participates in the
// extra-duty queue. Only an explicit false opts out.
func (s Soldier) ExtraAvailable() bool {
	return s.AvailableForExtra == nil || *s.AvailableForExtra
}

// DisplayName is the "rank + name" form captured in audit snapshots.
func (s Soldier) DisplayName() string {
	return string(s.Rank) + " " + s.Name
}

// =============================================================================
// TIME-BANK TRANSACTION - Immutable ledger entry (delete + re-create to edit)
// =============================================================================

type TransactionType string

const (
	TxCredit TransactionType = "CREDIT" // leave-day earned
	TxDebit  TransactionType = "DEBIT"  // leave-day taken
)

type BankTransaction struct {
	ID          TransactionID   `json:"id"`
	Type        TransactionType `json:"type"`
	Date        Date            `json:"date"` // event date, not creation time
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // zero treated as 1

	// RecordedAt orders entries that share the same event date.
	RecordedAt time.Time `json:"recordedAt"`
}

// EffectiveAmount returns the transaction amount, defaulting to 1 for
// legacy entries recorded without one.
func (t BankTransaction) EffectiveAmount() decimal.Decimal {
	if t.Amount.IsZero() {
		return decimal.NewFromInt(1)
	}
	return t.Amount
}

// =============================================================================
// ROSTER - A generated schedule for a date range (read-only to the engines)
// =============================================================================

type Roster struct {
	ID        RosterID  `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"` // category id, e.g. "cat_amb"
	StartDate Date      `json:"startDate"`
	EndDate   Date      `json:"endDate"`
	CreatedAt time.Time `json:"creationDate"`

	// Sections are ordered row-groups: section 0 holds the 24-hour
	// rotation rows, section 1 the 2x2 rotation rows.
	Sections []Section `json:"sections,omitempty"`
	Shifts   []Shift   `json:"shifts,omitempty"`
}

type Section struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows,omitempty"`
}

type Row struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// Shift assigns one soldier to one row on one date. Period references a
// row id from one of the roster's sections.
type Shift struct {
	Date      Date      `json:"date"`
	Period    string    `json:"period"`
	SoldierID SoldierID `json:"soldierId"`
}

// RowIDs returns the row ids of the section at index i, or nil when the
// roster has no such section.
func (r Roster) RowIDs(i int) []string {
	if i < 0 || i >= len(r.Sections) {
		return nil
	}
	ids := make([]string, 0, len(r.Sections[i].Rows))
	for _, row := range r.Sections[i].Rows {
		ids = append(ids, row.ID)
	}
	return ids
}

// Covers reports whether the roster's date range contains d (inclusive).
func (r Roster) Covers(d Date) bool {
	return r.StartDate.BeforeOrEqual(d) && d.BeforeOrEqual(r.EndDate)
}

// =============================================================================
// EXTRA-DUTY HISTORY - Append-only audit trail of confirmations
// =============================================================================

// ExtraDutyEntry records one confirmed extra-duty call-up. SoldierNames is
// a denormalized "rank + name" snapshot, not a live reference: later rank
// changes or deletions must not rewrite history.
type ExtraDutyEntry struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"date"`
	RosterDate   Date      `json:"rosterDate"`
	Count        int       `json:"amount"`
	SoldierNames []string  `json:"soldierNames"`
}

// =============================================================================
// APP SETTINGS - Process-wide configuration
// =============================================================================

// TeamMapping pairs a 24-hour team with its 2x2 counterpart.
type TeamMapping struct {
	TeamName  string `json:"teamName"`
	ShiftName string `json:"shiftName"`
}

// IconTag identifies a presentation icon for a roster category. Tags are
// resolved against a fixed set at settings load; unknown values fall back
// to IconDefault.
type IconTag string

const (
	IconTruck     IconTag = "Truck"
	IconBrain     IconTag = "Brain"
	IconHeart     IconTag = "HeartPulse"
	IconBriefcase IconTag = "Briefcase"
	IconStar      IconTag = "Star"
	IconDefault   IconTag = "FileText"
)

var knownIconTags = map[IconTag]bool{
	IconTruck:     true,
	IconBrain:     true,
	IconHeart:     true,
	IconBriefcase: true,
	IconStar:      true,
	IconDefault:   true,
}

// ResolveIconTag maps an arbitrary stored tag to a known icon.
func ResolveIconTag(tag IconTag) IconTag {
	if knownIconTags[tag] {
		return tag
	}
	return IconDefault
}

type RosterCategory struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon IconTag `json:"icon"`
}

type AppSettings struct {
	OrgName           string           `json:"orgName"`
	DirectorName      string           `json:"directorName"`
	DirectorRank      string           `json:"directorRank"`
	DirectorRole      string           `json:"directorRole"`
	DirectorMatricula string           `json:"directorMatricula"`
	City              string           `json:"city"`
	ShiftCycleRefDate Date             `json:"shiftCycleRefDate"`
	RosterCategories  []RosterCategory `json:"rosterCategories"`
	TeamMappings      []TeamMapping    `json:"teamMappings"`
}

// CategoryAmbulance is the roster category the duty forecast defaults to.
const CategoryAmbulance = "cat_amb"

// DefaultSettings returns the factory configuration.
func DefaultSettings() AppSettings {
	return AppSettings{
		OrgName:           "DIRETORIA DE SAÚDE – PMCE",
		DirectorName:      "FRANCISCO ÉLITON ARAÚJO",
		DirectorRank:      "Cel PM",
		DirectorRole:      "Diretor de Saúde - DS/PMCE",
		DirectorMatricula: "M.F 108.819-1-9",
		City:              "Fortaleza-CE",
		ShiftCycleRefDate: NewDate(2024, time.January, 1),
		RosterCategories: []RosterCategory{
			{ID: CategoryAmbulance, Name: "Ambulância", Icon: IconTruck},
			{ID: "cat_psi", Name: "Psicologia", Icon: IconBrain},
			{ID: "cat_ast", Name: "Assistencial", Icon: IconHeart},
			{ID: "cat_adm", Name: "Administrativo", Icon: IconBriefcase},
			{ID: "cat_extra", Name: "Escala Extra / Voluntária", Icon: IconStar},
		},
		TeamMappings: []TeamMapping{
			{TeamName: "ALFA", ShiftName: "TURMA 01"},
			{TeamName: "BRAVO", ShiftName: "TURMA 01"},
			{TeamName: "CHARLIE", ShiftName: "TURMA 02"},
			{TeamName: "DELTA", ShiftName: "TURMA 02"},
		},
	}
}

// Normalize fills missing fields from the defaults and resolves icon tags.
// Repositories call this so Settings never returns partially-empty config.
func (s AppSettings) Normalize() AppSettings {
	def := DefaultSettings()
	if s.OrgName == "" {
		s.OrgName = def.OrgName
	}
	if s.DirectorName == "" {
		s.DirectorName = def.DirectorName
	}
	if s.DirectorRank == "" {
		s.DirectorRank = def.DirectorRank
	}
	if s.DirectorRole == "" {
		s.DirectorRole = def.DirectorRole
	}
	if s.DirectorMatricula == "" {
		s.DirectorMatricula = def.DirectorMatricula
	}
	if s.City == "" {
		s.City = def.City
	}
	if s.ShiftCycleRefDate.IsZero() {
		s.ShiftCycleRefDate = def.ShiftCycleRefDate
	}
	if len(s.RosterCategories) == 0 {
		s.RosterCategories = def.RosterCategories
	}
	// Resolve icons into a fresh slice: the input may share its backing
	// array with a stored document, and Normalize must not write to it.
	categories := make([]RosterCategory, len(s.RosterCategories))
	copy(categories, s.RosterCategories)
	for i := range categories {
		categories[i].Icon = ResolveIconTag(categories[i].Icon)
	}
	s.RosterCategories = categories
	if len(s.TeamMappings) == 0 {
		s.TeamMappings = def.TeamMappings
	}
	return s
}

// Shift2x2For resolves the 2x2 team paired with a 24-hour team. Explicit
// mappings win; without one, cycle positions {0,1} pair with the first 2x2
// team and {2,3} with the second.
func (s AppSettings) Shift2x2For(team24 string, cycleIndex int) string {
	for _, m := range s.TeamMappings {
		if m.TeamName == team24 {
			return m.ShiftName
		}
	}
	if cycleIndex == 0 || cycleIndex == 1 {
		return Team2x2Defs[0].Name
	}
	return Team2x2Defs[1].Name
}
