/*
timebank.go - Per-soldier leave-day ledger

PURPOSE:
  Append-only transaction log of earned (CREDIT) and consumed (DEBIT)
  leave-days per soldier, with derived balances.

INVARIANTS:
  - Entries are immutable once created; an edit is delete + re-create
  - Balance is a pure, order-independent fold: credits - debits
  - Running balances fold over entries sorted by (event date, recordedAt)
    and the final chronological balance MUST equal the unsorted total

ORDERING:
  The event date is when the leave was earned or taken; RecordedAt is
  when the entry was typed in and only breaks same-day ties.

SEE ALSO:
  - types.go: BankTransaction shape
  - store.go: soldier persistence
*/
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME BANK
// =============================================================================

type TimeBank struct {
	repo Repository

	now   func() time.Time
	newID func() TransactionID
}

func NewTimeBank(repo Repository) *TimeBank {
	return &TimeBank{
		repo:  repo,
		now:   time.Now,
		newID: func() TransactionID { return TransactionID(uuid.NewString()) },
	}
}

// TransactionInput is the caller-supplied part of a new ledger entry.
type TransactionInput struct {
	Type        TransactionType
	Date        Date
	Description string
	Amount      decimal.Decimal // zero defaults to 1
}

// Record validates and appends one transaction to the soldier's history,
// then persists the soldier. The prior state is unchanged on any error.
func (b *TimeBank) Record(ctx context.Context, soldierID SoldierID, in TransactionInput) (*BankTransaction, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, ErrEmptyDescription
	}
	if in.Type != TxCredit && in.Type != TxDebit {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionType, in.Type)
	}
	if in.Date.IsZero() {
		return nil, ErrInvalidDate
	}
	amount := in.Amount
	if amount.IsZero() {
		amount = decimal.NewFromInt(1)
	}
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	soldiers, err := b.repo.Soldiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load soldiers: %w", err)
	}
	s, ok := FindSoldier(soldiers, soldierID)
	if !ok {
		return nil, &NotFoundError{Kind: "soldier", ID: string(soldierID)}
	}

	tx := BankTransaction{
		ID:          b.newID(),
		Type:        in.Type,
		Date:        in.Date,
		Description: in.Description,
		Amount:      amount,
		RecordedAt:  b.now(),
	}
	s.BankHistory = append(s.BankHistory, tx)

	if err := b.repo.SaveSoldier(ctx, s); err != nil {
		return nil, fmt.Errorf("save soldier: %w", err)
	}
	return &tx, nil
}

// Delete removes one entry by id and persists the soldier. There is no
// soft delete and no audit trail of the deletion; callers must require
// explicit confirmation (confirm=false is rejected, never a silent no-op).
func (b *TimeBank) Delete(ctx context.Context, soldierID SoldierID, txID TransactionID, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}

	soldiers, err := b.repo.Soldiers(ctx)
	if err != nil {
		return fmt.Errorf("load soldiers: %w", err)
	}
	s, ok := FindSoldier(soldiers, soldierID)
	if !ok {
		return &NotFoundError{Kind: "soldier", ID: string(soldierID)}
	}

	kept := s.BankHistory[:0:0]
	found := false
	for _, tx := range s.BankHistory {
		if tx.ID == txID {
			found = true
			continue
		}
		kept = append(kept, tx)
	}
	if !found {
		return &NotFoundError{Kind: "transaction", ID: string(txID)}
	}

	s.BankHistory = kept
	if err := b.repo.SaveSoldier(ctx, s); err != nil {
		return fmt.Errorf("save soldier: %w", err)
	}
	return nil
}

// =============================================================================
// BALANCE COMPUTATION - Pure functions over a history snapshot
// =============================================================================

// Balance folds the unsorted history: sum(credits) - sum(debits).
func Balance(history []BankTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range history {
		switch tx.Type {
		case TxCredit:
			total = total.Add(tx.EffectiveAmount())
		case TxDebit:
			total = total.Sub(tx.EffectiveAmount())
		}
	}
	return total
}

// BankStats splits the totals for display.
func BankStats(history []BankTransaction) (credits, debits decimal.Decimal) {
	credits, debits = decimal.Zero, decimal.Zero
	for _, tx := range history {
		switch tx.Type {
		case TxCredit:
			credits = credits.Add(tx.EffectiveAmount())
		case TxDebit:
			debits = debits.Add(tx.EffectiveAmount())
		}
	}
	return credits, debits
}

// LedgerLine is one history entry with its balance after application,
// in chronological order.
type LedgerLine struct {
	BankTransaction
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
}

// RunningBalances sorts the history by (event date, recordedAt), folds a
// running balance, and returns the lines most-recent-first. The first
// returned line's BalanceAfter equals Balance(history).
func RunningBalances(history []BankTransaction) []LedgerLine {
	sorted := make([]BankTransaction, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].RecordedAt.Before(sorted[j].RecordedAt)
	})

	lines := make([]LedgerLine, len(sorted))
	running := decimal.Zero
	for i, tx := range sorted {
		if tx.Type == TxCredit {
			running = running.Add(tx.EffectiveAmount())
		} else {
			running = running.Sub(tx.EffectiveAmount())
		}
		lines[i] = LedgerLine{BankTransaction: tx, BalanceAfter: running}
	}

	// Most recent first for presentation.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

// typeKeyword is the translated search keyword for a transaction type.
func typeKeyword(t TransactionType) string {
	if t == TxCredit {
		return "aquisição"
	}
	return "baixa"
}

// FilterLines applies a case-insensitive substring filter over the
// description, the dd/mm/yyyy event date, and the translated type
// keyword. Computed balances are preserved.
func FilterLines(lines []LedgerLine, term string) []LedgerLine {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return lines
	}
	var out []LedgerLine
	for _, l := range lines {
		if strings.Contains(strings.ToLower(l.Description), term) ||
			strings.Contains(l.Date.FormatBR(), term) ||
			strings.Contains(typeKeyword(l.Type), term) {
			out = append(out, l)
		}
	}
	return out
}
