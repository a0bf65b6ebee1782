package engine

import (
	"sort"
	"strings"
)

// =============================================================================
// STRENGTH REPORT - Headcount statistics over a personnel snapshot
// =============================================================================

// Strength summarizes the force: totals, per-rank counts, officer cadre
// split, and role/sector distributions.
type Strength struct {
	Total        int              `json:"total"`
	Active       int              `json:"active"`
	Away         int              `json:"away"`
	ByRank       map[Rank]int     `json:"byRank"`
	OfficerQO    OfficerBreakdown `json:"officers"`
	ByRole       []LabelCount     `json:"byRole"`
	BySector     []LabelCount     `json:"bySector"`
	AwaySoldiers []Soldier        `json:"awaySoldiers"`
}

// OfficerBreakdown counts officer-rank soldiers by cadre.
type OfficerBreakdown struct {
	QOPM   int `json:"qopm"`
	QOAPM  int `json:"qoapm"`
	QOCPM  int `json:"qocpm"`
	Others int `json:"others"`
}

// LabelCount is a (label, count) pair, used for role/sector tallies.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ComputeStrength tallies the snapshot. Pure.
func ComputeStrength(soldiers []Soldier) Strength {
	st := Strength{
		Total:  len(soldiers),
		ByRank: make(map[Rank]int),
	}
	roles := map[string]int{}
	sectors := map[string]int{}

	for _, s := range soldiers {
		st.ByRank[s.Rank]++
		if s.Status == StatusAtivo {
			st.Active++
		} else {
			st.Away++
			st.AwaySoldiers = append(st.AwaySoldiers, s)
		}

		if IsOfficer(s.Rank) {
			switch s.Cadre {
			case CadreQOPM:
				st.OfficerQO.QOPM++
			case CadreQOAPM:
				st.OfficerQO.QOAPM++
			case CadreQOCPM:
				st.OfficerQO.QOCPM++
			default:
				st.OfficerQO.Others++
			}
		}

		role := s.Role
		if role == "" {
			role = "Não Definido"
		}
		roles[role]++

		sector := s.Sector
		if sector == "" {
			sector = "Não Atribuído"
		}
		sectors[sector]++
	}

	st.ByRole = sortedCounts(roles)
	st.BySector = sortedCounts(sectors)
	return st
}

// sortedCounts orders tallies by count descending, then label for
// determinism.
func sortedCounts(m map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(m))
	for label, n := range m {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// =============================================================================
// SEARCH
// =============================================================================

// SearchSoldiers filters by case-insensitive substring over name, full
// name and matricula, returning results in seniority order.
func SearchSoldiers(soldiers []Soldier, term string) []Soldier {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []Soldier
	for _, s := range soldiers {
		if strings.Contains(strings.ToLower(s.Name), term) ||
			strings.Contains(strings.ToLower(s.FullName), term) ||
			strings.Contains(s.Matricula, term) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return RankWeight(out[i].Rank) < RankWeight(out[j].Rank)
	})
	return out
}
