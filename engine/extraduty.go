/*
extraduty.go - Rotating extra-duty queue

PURPOSE:
  Maintains a total order over personnel for extra-duty call-up and
  applies atomic rotation on confirmation.

THE QUEUE:
  Every soldier carries OrderExtra (queue position, zero = unset, sorts
  first) and AvailableForExtra (opt-out flag). The live queue is the
  available subsequence sorted ascending by OrderExtra; ties keep the
  collection's insertion order (stable sort).

ROTATION INVARIANT:
  After Confirm, the confirmed soldiers hold positions strictly above the
  previous global maximum, in preview order. A soldier just called up
  cannot be re-selected until everyone behind them in the queue has had a
  turn, assuming availability and status stay put.

RESET:
  ResetBySeniority rebuilds the entire queue from rank weight + name.
  It discards all rotation history and is irreversible; callers must pass
  explicit confirmation.

SEE ALSO:
  - rank.go: seniority weights used by the reset
  - types.go: ExtraDutyEntry audit record
*/
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EXTRA-DUTY ENGINE
// =============================================================================

type ExtraDutyEngine struct {
	repo Repository

	// now and newID are injectable for tests.
	now   func() time.Time
	newID func() string
}

func NewExtraDutyEngine(repo Repository) *ExtraDutyEngine {
	return &ExtraDutyEngine{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Queue returns the live rotation: available soldiers sorted ascending by
// OrderExtra, unset (zero) first.
func (e *ExtraDutyEngine) Queue(ctx context.Context) ([]Soldier, error) {
	soldiers, err := e.repo.Soldiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load soldiers: %w", err)
	}
	return sortedQueue(soldiers), nil
}

func sortedQueue(soldiers []Soldier) []Soldier {
	var queue []Soldier
	for _, s := range soldiers {
		if s.ExtraAvailable() {
			queue = append(queue, s)
		}
	}
	// Ties (multiple unset positions) keep insertion order; see DESIGN.md.
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].OrderExtra < queue[j].OrderExtra
	})
	return queue
}

// Preview selects the next n active soldiers from the queue. A non-positive
// n is a caller error; zero matches with a valid n is reported as
// ErrNoCandidates, not swallowed.
func (e *ExtraDutyEngine) Preview(ctx context.Context, n int) ([]Soldier, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	queue, err := e.Queue(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []Soldier
	for _, s := range queue {
		if s.Status == StatusAtivo {
			candidates = append(candidates, s)
		}
	}
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return candidates, nil
}

// Confirm rotates the previewed soldiers to the back of the global queue
// and appends one immutable history entry. The preview's order is
// preserved in the new positions.
func (e *ExtraDutyEngine) Confirm(ctx context.Context, preview []SoldierID, rosterDate Date) (*ExtraDutyEntry, error) {
	if len(preview) == 0 {
		return nil, ErrEmptyPreview
	}

	soldiers, err := e.repo.Soldiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load soldiers: %w", err)
	}

	// Next position exceeds the maximum over ALL soldiers, including
	// unavailable ones, so re-enabled soldiers can't jump the line.
	nextOrder := 1
	for _, s := range soldiers {
		if s.OrderExtra >= nextOrder {
			nextOrder = s.OrderExtra + 1
		}
	}

	names := make([]string, 0, len(preview))
	for _, id := range preview {
		s, ok := FindSoldier(soldiers, id)
		if !ok {
			return nil, &NotFoundError{Kind: "soldier", ID: string(id)}
		}
		s.OrderExtra = nextOrder
		nextOrder++
		if err := e.repo.SaveSoldier(ctx, s); err != nil {
			return nil, fmt.Errorf("rotate soldier %s: %w", s.ID, err)
		}
		names = append(names, s.DisplayName())
	}

	entry := ExtraDutyEntry{
		ID:           e.newID(),
		CreatedAt:    e.now(),
		RosterDate:   rosterDate,
		Count:        len(preview),
		SoldierNames: names,
	}
	if err := e.repo.AppendExtraDutyHistory(ctx, entry); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	return &entry, nil
}

// ResetBySeniority rebuilds the whole queue ordered by rank weight, then
// name. Destructive and irreversible: confirm must be true.
func (e *ExtraDutyEngine) ResetBySeniority(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}

	soldiers, err := e.repo.Soldiers(ctx)
	if err != nil {
		return fmt.Errorf("load soldiers: %w", err)
	}

	sorted := make([]Soldier, len(soldiers))
	copy(sorted, soldiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := RankWeight(sorted[i].Rank), RankWeight(sorted[j].Rank)
		if wi != wj {
			return wi < wj
		}
		return sorted[i].Name < sorted[j].Name
	})

	for i, s := range sorted {
		s.OrderExtra = i + 1
		if err := e.repo.SaveSoldier(ctx, s); err != nil {
			return fmt.Errorf("reset soldier %s: %w", s.ID, err)
		}
	}
	return nil
}

// History returns the confirmation audit trail, most recent first.
func (e *ExtraDutyEngine) History(ctx context.Context) ([]ExtraDutyEntry, error) {
	entries, err := e.repo.ExtraDutyHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
