package main

import (
	"context"
	"fmt"

	"github.com/dsaude/roster-engine/engine"
)

// boolPtr is a helper for the optional availability flag.
func boolPtr(b bool) *bool { return &b }

// seedSoldiers is the starter dataset for a fresh installation.
var seedSoldiers = []engine.Soldier{
	{
		ID: "1", Name: "Cruz", Rank: engine.RankSubTen, Cadre: engine.CadreQOPPM,
		Role: "Fiscal/Motorista", RoleShort: "(F.M)", Sector: "Ambulância",
		Team: "ALFA", Status: engine.StatusAtivo, Phone: "98651.4680",
		AvailableForExtra: boolPtr(true), OrderExtra: 1,
	},
	{
		ID: "2", Name: "Virginia", Rank: engine.RankTen1, Cadre: engine.CadreQOAPM,
		Role: "Fiscal", RoleShort: "(F)", Sector: "Ambulância",
		Team: "BRAVO", Status: engine.StatusAtivo, Phone: "88 99335.6947",
		AvailableForExtra: boolPtr(true), OrderExtra: 2,
	},
	{
		ID: "3", Name: "Ricardo", Rank: engine.RankSgt1, Cadre: engine.CadreQOPPM,
		Role: "Fiscal", RoleShort: "(F)", Sector: "Ambulância",
		Team: "CHARLIE", Status: engine.StatusAtivo, Matricula: "20126",
		Phone: "98838-4022", AvailableForExtra: boolPtr(true), OrderExtra: 3,
	},
	{
		ID: "20", Name: "Maria", Rank: engine.RankSd, Cadre: engine.CadreQOPPM,
		Role: "Enfermeiro", RoleShort: "(1)", Sector: "Ambulância",
		Team: "TURMA 01", Status: engine.StatusAtivo, Matricula: "36.113",
		Phone: "98180-1288", AvailableForExtra: boolPtr(true), OrderExtra: 4,
	},
}

// seed writes the starter soldiers and default settings. Existing records
// with the same IDs are overwritten.
func seed(ctx context.Context, repo engine.Repository) (int, error) {
	for _, s := range seedSoldiers {
		if err := repo.SaveSoldier(ctx, s); err != nil {
			return 0, fmt.Errorf("failed to seed soldier %s: %w", s.ID, err)
		}
	}
	if err := repo.SaveSettings(ctx, engine.DefaultSettings()); err != nil {
		return 0, fmt.Errorf("failed to seed settings: %w", err)
	}
	return len(seedSoldiers), nil
}
