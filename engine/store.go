/*
store.go - Repository contract consumed by the engines

PURPOSE:
  Defines the persistence interface between the domain logic and the
  backing store. The contract is pull-then-mutate-then-push per aggregate:
  engines re-read full collections on every invocation, mutate plain
  values, and push them back. Nothing is cached across calls.

AGGREGATES:
  Soldiers:         upsert by id; the engines only rewrite OrderExtra
                    and BankHistory
  Rosters:          read-only to the engines, written by the roster editor
  Settings:         single document, always returned with defaults filled
  ExtraDutyHistory: APPEND-ONLY. No update, no delete. Ever.

CHANGE NOTIFICATION:
  Subscribe registers a listener invoked after any store mutation.
  Listeners receive no payload: consumers re-read the collections they
  care about (no incremental/delta updates).

CONCURRENCY:
  Last-write-wins. Two administrators saving the same soldier race and
  the second write overwrites the first; the engines do not compensate.

IMPLEMENTATIONS:
  - engine/store/memory.go: in-memory, for tests and development
  - store/sqlite/sqlite.go: SQLite, keyed tables with JSON documents
*/
package engine

import (
	"context"
	"sync"
)

// =============================================================================
// REPOSITORY - Persistence contract
// =============================================================================

type Repository interface {
	// Soldiers returns the full personnel collection.
	Soldiers(ctx context.Context) ([]Soldier, error)

	// SaveSoldier upserts one soldier by id.
	SaveSoldier(ctx context.Context, s Soldier) error

	// DeleteSoldier removes a soldier. Returns ErrSoldierNotFound when
	// the id is unknown.
	DeleteSoldier(ctx context.Context, id SoldierID) error

	// Rosters returns all generated rosters.
	Rosters(ctx context.Context) ([]Roster, error)

	// SaveRoster upserts one roster by id.
	SaveRoster(ctx context.Context, r Roster) error

	// DeleteRoster removes a roster.
	DeleteRoster(ctx context.Context, id RosterID) error

	// Settings returns the app configuration, never partially empty:
	// missing fields are filled from DefaultSettings.
	Settings(ctx context.Context) (AppSettings, error)

	// SaveSettings replaces the app configuration.
	SaveSettings(ctx context.Context, s AppSettings) error

	// ExtraDutyHistory returns all confirmation records.
	ExtraDutyHistory(ctx context.Context) ([]ExtraDutyEntry, error)

	// AppendExtraDutyHistory appends one record. Append-only.
	AppendExtraDutyHistory(ctx context.Context, e ExtraDutyEntry) error

	// Subscribe registers a mutation listener and returns its
	// unsubscribe function.
	Subscribe(fn func()) (unsubscribe func())
}

// =============================================================================
// NOTIFIER - Shared subscribe/notify bus for Repository implementations
// =============================================================================

// Notifier is a minimal broadcast bus. Implementations embed it and call
// Notify after every successful mutation.
type Notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

func (n *Notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// Notify invokes every registered listener synchronously, in no
// particular order.
func (n *Notifier) Notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// =============================================================================
// LOOKUP HELPERS
// =============================================================================

// FindSoldier returns the soldier with the given id from a snapshot.
func FindSoldier(soldiers []Soldier, id SoldierID) (Soldier, bool) {
	for _, s := range soldiers {
		if s.ID == id {
			return s, true
		}
	}
	return Soldier{}, false
}
