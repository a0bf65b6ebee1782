package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsaude/roster-engine/engine"
)

func TestRankWeight_SeniorityOrder(t *testing.T) {
	// GIVEN: The full rank hierarchy
	// WHEN: Comparing weights
	// THEN: Weights ascend strictly from Cel (1) to Civil (15)

	ordered := []engine.Rank{
		engine.RankCel, engine.RankTenCel, engine.RankMaj, engine.RankCap,
		engine.RankTen1, engine.RankTen2, engine.RankAsp, engine.RankAlOf,
		engine.RankSubTen, engine.RankSgt1, engine.RankSgt2, engine.RankSgt3,
		engine.RankCb, engine.RankSd, engine.RankCivil,
	}

	for i, r := range ordered {
		assert.Equal(t, i+1, engine.RankWeight(r), "rank %s", r)
	}
}

func TestRankWeight_UnknownSortsLast(t *testing.T) {
	// GIVEN: A label outside the hierarchy
	// WHEN: Resolving its weight
	// THEN: It sorts after every known rank

	unknown := engine.RankWeight(engine.Rank("Estagiário"))
	assert.Greater(t, unknown, engine.RankWeight(engine.RankCivil))
}

func TestIsOfficer(t *testing.T) {
	// GIVEN: Officer and non-officer ranks
	// WHEN: Checking the officer tier
	// THEN: Only Cel..2º Ten qualify

	assert.True(t, engine.IsOfficer(engine.RankCel))
	assert.True(t, engine.IsOfficer(engine.RankTen2))
	assert.False(t, engine.IsOfficer(engine.RankAsp))
	assert.False(t, engine.IsOfficer(engine.RankSubTen))
	assert.False(t, engine.IsOfficer(engine.RankSd))
	assert.False(t, engine.IsOfficer(engine.RankCivil))
}
