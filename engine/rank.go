package engine

// =============================================================================
// RANK ORDERING - Seniority weights
// =============================================================================

// rankWeights assigns each known rank a sort weight, lower = more senior:
// officers first, then the special ranks, then enlisted, then civilian.
var rankWeights = map[Rank]int{
	RankCel:    1,
	RankTenCel: 2,
	RankMaj:    3,
	RankCap:    4,
	RankTen1:   5,
	RankTen2:   6,
	RankAsp:    7,
	RankAlOf:   8,
	RankSubTen: 9,
	RankSgt1:   10,
	RankSgt2:   11,
	RankSgt3:   12,
	RankCb:     13,
	RankSd:     14,
	RankCivil:  15,
}

// unknownRankWeight sorts unrecognized labels after everything else.
const unknownRankWeight = 99

// RankWeight maps a rank label to its seniority weight. Unknown labels
// sort last.
func RankWeight(r Rank) int {
	if w, ok := rankWeights[r]; ok {
		return w
	}
	return unknownRankWeight
}

// Rank groups used by the strength report.
var (
	OfficerRanks  = []Rank{RankCel, RankTenCel, RankMaj, RankCap, RankTen1, RankTen2}
	SpecialRanks  = []Rank{RankAsp, RankAlOf}
	EnlistedRanks = []Rank{RankSubTen, RankSgt1, RankSgt2, RankSgt3, RankCb, RankSd}
)

// IsOfficer reports whether the rank belongs to the officer tier.
func IsOfficer(r Rank) bool {
	for _, o := range OfficerRanks {
		if r == o {
			return true
		}
	}
	return false
}
