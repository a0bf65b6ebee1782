// Package store provides Repository implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dsaude/roster-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps every aggregate in a map keyed by id, so upsert is O(1)
// instead of a scan. Reads return copies; callers never share slices
// with the store.
type Memory struct {
	engine.Notifier

	mu       sync.RWMutex
	soldiers map[engine.SoldierID]engine.Soldier
	rosters  map[engine.RosterID]engine.Roster
	settings *engine.AppSettings
	history  []engine.ExtraDutyEntry

	// insertion order for stable listing
	soldierOrder []engine.SoldierID
	rosterOrder  []engine.RosterID
}

func NewMemory() *Memory {
	return &Memory{
		soldiers: make(map[engine.SoldierID]engine.Soldier),
		rosters:  make(map[engine.RosterID]engine.Roster),
	}
}

// =============================================================================
// SOLDIERS
// =============================================================================

func (m *Memory) Soldiers(_ context.Context) ([]engine.Soldier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.Soldier, 0, len(m.soldiers))
	for _, id := range m.soldierOrder {
		s := m.soldiers[id]
		s.BankHistory = append([]engine.BankTransaction(nil), s.BankHistory...)
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) SaveSoldier(_ context.Context, s engine.Soldier) error {
	m.mu.Lock()
	if _, exists := m.soldiers[s.ID]; !exists {
		m.soldierOrder = append(m.soldierOrder, s.ID)
	}
	s.BankHistory = append([]engine.BankTransaction(nil), s.BankHistory...)
	m.soldiers[s.ID] = s
	m.mu.Unlock()

	m.Notify()
	return nil
}

func (m *Memory) DeleteSoldier(_ context.Context, id engine.SoldierID) error {
	m.mu.Lock()
	if _, exists := m.soldiers[id]; !exists {
		m.mu.Unlock()
		return &engine.NotFoundError{Kind: "soldier", ID: string(id)}
	}
	delete(m.soldiers, id)
	for i, sid := range m.soldierOrder {
		if sid == id {
			m.soldierOrder = append(m.soldierOrder[:i], m.soldierOrder[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.Notify()
	return nil
}

// =============================================================================
// ROSTERS
// =============================================================================

func (m *Memory) Rosters(_ context.Context) ([]engine.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.Roster, 0, len(m.rosters))
	for _, id := range m.rosterOrder {
		out = append(out, cloneRoster(m.rosters[id]))
	}
	return out, nil
}

func (m *Memory) SaveRoster(_ context.Context, r engine.Roster) error {
	m.mu.Lock()
	if _, exists := m.rosters[r.ID]; !exists {
		m.rosterOrder = append(m.rosterOrder, r.ID)
	}
	m.rosters[r.ID] = cloneRoster(r)
	m.mu.Unlock()

	m.Notify()
	return nil
}

func (m *Memory) DeleteRoster(_ context.Context, id engine.RosterID) error {
	m.mu.Lock()
	if _, exists := m.rosters[id]; !exists {
		m.mu.Unlock()
		return &engine.NotFoundError{Kind: "roster", ID: string(id)}
	}
	delete(m.rosters, id)
	for i, rid := range m.rosterOrder {
		if rid == id {
			m.rosterOrder = append(m.rosterOrder[:i], m.rosterOrder[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.Notify()
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) Settings(_ context.Context) (engine.AppSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return engine.DefaultSettings(), nil
	}
	// Clone before Normalize so neither the icon resolution pass nor the
	// caller ever writes through the stored slice headers.
	return cloneSettings(*m.settings).Normalize(), nil
}

func (m *Memory) SaveSettings(_ context.Context, s engine.AppSettings) error {
	m.mu.Lock()
	copied := cloneSettings(s)
	m.settings = &copied
	m.mu.Unlock()

	m.Notify()
	return nil
}

// =============================================================================
// EXTRA-DUTY HISTORY (append-only)
// =============================================================================

func (m *Memory) ExtraDutyHistory(_ context.Context) ([]engine.ExtraDutyEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.ExtraDutyEntry, len(m.history))
	copy(out, m.history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) AppendExtraDutyHistory(_ context.Context, e engine.ExtraDutyEntry) error {
	m.mu.Lock()
	m.history = append(m.history, e)
	m.mu.Unlock()

	m.Notify()
	return nil
}

// =============================================================================
// DEEP COPIES - Isolate stored slice headers from callers
// =============================================================================

func cloneRoster(r engine.Roster) engine.Roster {
	if r.Sections != nil {
		sections := make([]engine.Section, len(r.Sections))
		for i, sec := range r.Sections {
			sections[i] = sec
			sections[i].Rows = append([]engine.Row(nil), sec.Rows...)
		}
		r.Sections = sections
	}
	r.Shifts = append([]engine.Shift(nil), r.Shifts...)
	return r
}

func cloneSettings(s engine.AppSettings) engine.AppSettings {
	s.RosterCategories = append([]engine.RosterCategory(nil), s.RosterCategories...)
	s.TeamMappings = append([]engine.TeamMapping(nil), s.TeamMappings...)
	return s
}
