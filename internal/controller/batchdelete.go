package controller

import (
	"context"
	"log"
	"sync"

	"gossip/client/internal/policy"
	"gossip/client/internal/session"
)

// BatchState is the coordinator's position in its state machine.
type BatchState int

const (
	// BatchIdle: no selection, controls hidden.
	BatchIdle BatchState = iota
	// BatchSelecting: management mode on, selection accumulating.
	BatchSelecting
	// BatchExecuting: deletions in flight, one at a time.
	BatchExecuting
)

// BatchDelete coordinates admin-only mass deletion over one id-keyed
// list. Deletions run sequentially in selection order and deliberately
// continue past per-item failures; whatever survived shows up in the
// final list refresh.
type BatchDelete struct {
	session *session.Session
	policy  *policy.Policy
	confirm Confirmer
	prompt  string

	deleteOne func(ctx context.Context, id int) error
	refresh   func(ctx context.Context)
	afterAll  func()

	mu        sync.Mutex
	state     BatchState
	selection []int
	selected  map[int]bool
}

// NewBatchDelete wires a coordinator. deleteOne removes a single id,
// refresh re-fetches the owning list, and afterAll (optional) runs last,
// once the coordinator is back to idle.
func NewBatchDelete(sess *session.Session, pol *policy.Policy, confirm Confirmer, prompt string,
	deleteOne func(ctx context.Context, id int) error,
	refresh func(ctx context.Context),
	afterAll func()) *BatchDelete {
	return &BatchDelete{
		session:   sess,
		policy:    pol,
		confirm:   confirm,
		prompt:    prompt,
		deleteOne: deleteOne,
		refresh:   refresh,
		afterAll:  afterAll,
		selected:  make(map[int]bool),
	}
}

// State returns the coordinator's current state.
func (b *BatchDelete) State() BatchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Active reports whether management mode is on in any form.
func (b *BatchDelete) Active() bool {
	return b.State() != BatchIdle
}

// Enter switches management mode on. Only the admin may enter.
func (b *BatchDelete) Enter() error {
	username, _ := b.session.CurrentUser()
	if !b.policy.IsAdmin(username) {
		return ErrNotAllowed
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BatchIdle {
		return nil
	}
	b.state = BatchSelecting
	return nil
}

// Exit leaves management mode and drops the selection without deleting
// anything.
func (b *BatchDelete) Exit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BatchSelecting {
		return
	}
	b.reset()
}

// ToggleSelect adds id to the selection, or removes it if present.
// Selection order is preserved for execution.
func (b *BatchDelete) ToggleSelect(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BatchSelecting {
		return
	}
	if b.selected[id] {
		delete(b.selected, id)
		for i, sel := range b.selection {
			if sel == id {
				b.selection = append(b.selection[:i], b.selection[i+1:]...)
				break
			}
		}
		return
	}
	b.selected[id] = true
	b.selection = append(b.selection, id)
}

// IsSelected reports whether id is part of the current selection.
func (b *BatchDelete) IsSelected(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected[id]
}

// Selected returns the selection in the order items were picked.
func (b *BatchDelete) Selected() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, len(b.selection))
	copy(out, b.selection)
	return out
}

// Confirm executes the batch: one delete per selected id, sequentially,
// in selection order, request i+1 only after request i resolved. A
// failed delete does not stop the ones after it. Afterwards the
// selection is cleared, the mode exits, the owning list refreshes and
// afterAll runs. Confirming an empty selection is a no-op.
func (b *BatchDelete) Confirm(ctx context.Context) error {
	b.mu.Lock()
	if b.state != BatchSelecting || len(b.selection) == 0 {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	if b.confirm != nil && !b.confirm.Confirm(b.prompt) {
		return nil
	}

	b.mu.Lock()
	if b.state != BatchSelecting || len(b.selection) == 0 {
		b.mu.Unlock()
		return nil
	}
	b.state = BatchExecuting
	batch := make([]int, len(b.selection))
	copy(batch, b.selection)
	b.mu.Unlock()

	for _, id := range batch {
		if err := b.deleteOne(ctx, id); err != nil {
			// Continue-on-error: the final refresh reveals what
			// remained undeleted.
			log.Printf("batch delete: id %d: %v", id, err)
		}
	}

	b.mu.Lock()
	b.reset()
	b.mu.Unlock()

	if b.refresh != nil {
		b.refresh(ctx)
	}
	if b.afterAll != nil {
		b.afterAll()
	}
	return nil
}

// reset returns to idle. Callers must hold mu.
func (b *BatchDelete) reset() {
	b.state = BatchIdle
	b.selection = nil
	b.selected = make(map[int]bool)
}
