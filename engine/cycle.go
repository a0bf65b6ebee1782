/*
cycle.go - Shift-cycle projection engine

PURPOSE:
  Determines, for an arbitrary calendar date, which 24-hour team and which
  2x2 team are on duty and who their members are, using the best evidence
  available.

THE CYCLE:
  Duty rotates on a fixed 4-day cycle anchored at the configurable
  reference date (AppSettings.ShiftCycleRefDate). The cycle index is

      ((daysBetween(target, ref) mod 4) + 4) mod 4

  so index 0 falls on the reference date and every 4th day after it.
  Index maps to the 24-hour teams in fixed order (ALFA, BRAVO, CHARLIE,
  DELTA); the paired 2x2 team comes from the team-mapping table, with a
  positional default when no mapping exists.

MEMBERSHIP SOURCE PRIORITY (first match wins):
  1. Generated roster - a roster of the category covering the date
     (most recently created wins). Real schedule, not theoretical.
  2. Projection - replay the last roster of the category: bucket every
     historical shift by its own cycle index, then return the target
     index's bucket. "Whoever worked this slot last time works it again."
     An empty bucket falls back per block to static team matching.
  3. Static registration - active soldiers whose Team field equals the
     resolved team name. Used when the category has no rosters at all.

  Tiers 2 and 3 are flagged theoretical for UI disclosure; there is no
  staleness threshold on the projection (known accuracy gap, disclosed
  via the source label instead).

SEE ALSO:
  - types.go: Roster/Section/Shift shapes
  - store.go: Repository the engine reads from
*/
package engine

import (
	"context"
	"fmt"
	"sort"
)

// =============================================================================
// TEAM DEFINITIONS
// =============================================================================

// TeamDef names a rotating team and its display color token.
type TeamDef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Team24Defs are the four 24-hour teams in cycle-index order.
var Team24Defs = [4]TeamDef{
	{Name: "ALFA", Color: "blue"},
	{Name: "BRAVO", Color: "green"},
	{Name: "CHARLIE", Color: "yellow"},
	{Name: "DELTA", Color: "purple"},
}

// Team2x2Defs are the two 2-day-on/2-day-off teams.
var Team2x2Defs = [2]TeamDef{
	{Name: "TURMA 01", Color: "orange"},
	{Name: "TURMA 02", Color: "teal"},
}

func team2x2ByName(name string) TeamDef {
	for _, t := range Team2x2Defs {
		if t.Name == name {
			return t
		}
	}
	return Team2x2Defs[0]
}

// =============================================================================
// CYCLE INDEX
// =============================================================================

// CycleIndex returns the position of target within the 4-day rotation
// anchored at ref. Always in [0,3], for targets before or after ref.
func CycleIndex(target, ref Date) int {
	return ((DaysBetween(ref, target) % 4) + 4) % 4
}

// =============================================================================
// DUTY FORECAST
// =============================================================================

// DutySource labels which evidence tier produced a forecast.
type DutySource string

const (
	SourceGenerated    DutySource = "ESCALA GERADA"
	SourceProjection   DutySource = "PROJEÇÃO (BASEADA NA ÚLTIMA ESCALA)"
	SourceRegistration DutySource = "CADASTRO (PREVISÃO FIXA)"
)

// DutyForecast is the resolved duty picture for one date.
type DutyForecast struct {
	Date       Date       `json:"date"`
	CycleIndex int        `json:"cycleIndex"`
	Team24     TeamDef    `json:"team24"`
	Members24  []Soldier  `json:"members24"`
	Team2x2    TeamDef    `json:"team2x2"`
	Members2x2 []Soldier  `json:"members2x2"`
	Source     DutySource `json:"source"`

	// Theoretical marks forecasts not backed by a generated roster;
	// Projection narrows that to the roster-replay tier.
	Theoretical bool `json:"theoretical"`
	Projection  bool `json:"projection"`
}

// CycleEngine resolves duty forecasts from the current store state.
type CycleEngine struct {
	repo Repository
}

func NewCycleEngine(repo Repository) *CycleEngine {
	return &CycleEngine{repo: repo}
}

// Forecast computes the duty picture for target within the given roster
// category. Snapshots are re-read from the repository on every call.
func (e *CycleEngine) Forecast(ctx context.Context, target Date, category string) (*DutyForecast, error) {
	if target.IsZero() {
		return nil, ErrInvalidDate
	}
	if category == "" {
		category = CategoryAmbulance
	}

	soldiers, err := e.repo.Soldiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load soldiers: %w", err)
	}
	rosters, err := e.repo.Rosters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}
	settings, err := e.repo.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return forecast(target, category, soldiers, rosters, settings), nil
}

// forecast is the pure computation over in-memory snapshots.
func forecast(target Date, category string, soldiers []Soldier, rosters []Roster, settings AppSettings) *DutyForecast {
	idx := CycleIndex(target, settings.ShiftCycleRefDate)

	team24 := Team24Defs[idx]
	team2x2 := team2x2ByName(settings.Shift2x2For(team24.Name, idx))

	result := &DutyForecast{
		Date:       target,
		CycleIndex: idx,
		Team24:     team24,
		Team2x2:    team2x2,
	}

	if active := activeRosterFor(rosters, category, target); active != nil {
		result.Source = SourceGenerated
		result.Members24, result.Members2x2 = rosterMembers(*active, target, soldiers)
		return result
	}

	if last := latestRosterOf(rosters, category); last != nil {
		result.Source = SourceProjection
		result.Theoretical = true
		result.Projection = true
		result.Members24, result.Members2x2 = projectedMembers(*last, idx, settings.ShiftCycleRefDate, soldiers)

		// Per-block fallback when the projection bucket is empty.
		if len(result.Members24) == 0 {
			result.Members24 = teamMembers(soldiers, team24.Name)
		}
		if len(result.Members2x2) == 0 {
			result.Members2x2 = teamMembers(soldiers, team2x2.Name)
		}
		return result
	}

	result.Source = SourceRegistration
	result.Theoretical = true
	result.Members24 = teamMembers(soldiers, team24.Name)
	result.Members2x2 = teamMembers(soldiers, team2x2.Name)
	return result
}

// =============================================================================
// TIER 1 - GENERATED ROSTER
// =============================================================================

// activeRosterFor finds the roster of the category covering target,
// preferring the most recently created when several overlap.
func activeRosterFor(rosters []Roster, category string, target Date) *Roster {
	sorted := make([]Roster, len(rosters))
	copy(sorted, rosters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	for i := range sorted {
		if sorted[i].Type == category && sorted[i].Covers(target) {
			return &sorted[i]
		}
	}
	return nil
}

// rosterMembers resolves the soldiers assigned on target, split by block:
// section 0 rows feed the 24h block, section 1 rows the 2x2 block.
func rosterMembers(r Roster, target Date, soldiers []Soldier) (members24, members2x2 []Soldier) {
	rows24 := toSet(r.RowIDs(0))
	rows2x2 := toSet(r.RowIDs(1))

	for _, shift := range r.Shifts {
		if !shift.Date.Equal(target) {
			continue
		}
		s, ok := FindSoldier(soldiers, shift.SoldierID)
		if !ok {
			continue
		}
		if rows24[shift.Period] {
			members24 = append(members24, s)
		}
		if rows2x2[shift.Period] {
			members2x2 = append(members2x2, s)
		}
	}
	return members24, members2x2
}

// =============================================================================
// TIER 2 - PROJECTION FROM LAST ROSTER
// =============================================================================

// latestRosterOf returns the category's roster with the latest end date.
func latestRosterOf(rosters []Roster, category string) *Roster {
	var last *Roster
	for i := range rosters {
		if rosters[i].Type != category {
			continue
		}
		if last == nil || rosters[i].EndDate.After(last.EndDate) {
			last = &rosters[i]
		}
	}
	return last
}

// projectedMembers replays the roster's shift history: every shift is
// bucketed under its own cycle index, and the bucket for idx is the
// projected membership. First-seen order is preserved so projections are
// deterministic.
func projectedMembers(r Roster, idx int, ref Date, soldiers []Soldier) (members24, members2x2 []Soldier) {
	rows24 := toSet(r.RowIDs(0))
	rows2x2 := toSet(r.RowIDs(1))

	var ids24, ids2x2 []SoldierID
	seen24 := map[SoldierID]bool{}
	seen2x2 := map[SoldierID]bool{}

	for _, shift := range r.Shifts {
		if shift.SoldierID == "" {
			continue
		}
		if CycleIndex(shift.Date, ref) != idx {
			continue
		}
		if rows24[shift.Period] && !seen24[shift.SoldierID] {
			seen24[shift.SoldierID] = true
			ids24 = append(ids24, shift.SoldierID)
		}
		if rows2x2[shift.Period] && !seen2x2[shift.SoldierID] {
			seen2x2[shift.SoldierID] = true
			ids2x2 = append(ids2x2, shift.SoldierID)
		}
	}

	for _, id := range ids24 {
		if s, ok := FindSoldier(soldiers, id); ok {
			members24 = append(members24, s)
		}
	}
	for _, id := range ids2x2 {
		if s, ok := FindSoldier(soldiers, id); ok {
			members2x2 = append(members2x2, s)
		}
	}
	return members24, members2x2
}

// =============================================================================
// TIER 3 - STATIC REGISTRATION
// =============================================================================

// teamMembers returns active soldiers whose Team field matches the team
// name textually.
func teamMembers(soldiers []Soldier, teamName string) []Soldier {
	var members []Soldier
	for _, s := range soldiers {
		if s.Team == teamName && s.Status == StatusAtivo {
			members = append(members, s)
		}
	}
	return members
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
