// Package reconciler keeps the view model in sync with the remote API.
//
// After each mutation the reconciler either patches a single entry, when the
// renderer supports it, or reloads the whole record set. Failures never touch
// the records: they are reported once through the [Notifier] and the last
// known state stays visible.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oaiiae/addressbook/addressbook"
	"github.com/oaiiae/addressbook/client"
)

// Status texts shown while operations run and once they settle.
const (
	StatusLoading   = "loading…"
	StatusSaving    = "saving…"
	StatusImporting = "importing…"
	StatusReady     = "ready"
	StatusError     = "error"
)

var (
	// ErrInProgress rejects a submission while another one is outstanding.
	ErrInProgress = errors.New("reconciler: submission in progress")

	// ErrDeclined is returned when a delete was not confirmed.
	ErrDeclined = errors.New("reconciler: not confirmed")
)

// ViewModel is the state handed to the [Renderer].
type ViewModel struct {
	Records addressbook.RecordSet
	Status  string
}

// Reconciler applies user actions through a [Repository] and brings the
// [ViewModel] back in sync after each of them.
type Reconciler struct {
	repo      Repository
	renderer  Renderer
	notifier  Notifier
	confirmer Confirmer
	logger    *slog.Logger

	mu         sync.Mutex // serializes mutations and view model updates
	vm         ViewModel
	submitting atomic.Bool
}

// New returns a [Reconciler] with an empty record set. A nil confirmer
// accepts every prompt and a nil logger discards.
func New(repo Repository, renderer Renderer, notifier Notifier, confirmer Confirmer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		repo:      repo,
		renderer:  renderer,
		notifier:  notifier,
		confirmer: confirmer,
		logger:    logger,
		vm:        ViewModel{Records: addressbook.RecordSet{}},
	}
}

// Records returns a copy of the current record set.
func (rc *Reconciler) Records() addressbook.RecordSet {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.vm.Records.Clone()
}

// Refresh reloads the whole record set and replaces the current one.
// On failure the previous records stay in place.
func (rc *Reconciler) Refresh(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.refresh(ctx)
}

func (rc *Reconciler) refresh(ctx context.Context) error {
	rc.status(StatusLoading)
	set, err := rc.repo.List(ctx)
	if err != nil {
		rc.status(StatusError)
		rc.notifier.Alert("load failed", err)
		rc.logger.WarnContext(ctx, "could not load records", "err", err)
		return fmt.Errorf("refresh: %w", err)
	}
	rc.vm.Records = set
	rc.vm.Status = StatusReady
	rc.renderer.Render(&rc.vm)
	rc.notifier.Status(StatusReady)
	rc.logger.DebugContext(ctx, "records loaded", "count", len(set))
	return nil
}

// Create stores a new record then adds it to the view.
func (rc *Reconciler) Create(ctx context.Context, r addressbook.Record) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.create(ctx, r)
}

func (rc *Reconciler) create(ctx context.Context, r addressbook.Record) error {
	rc.status(StatusSaving)
	key, err := rc.repo.Create(ctx, r)
	if err != nil {
		return rc.fail(ctx, "could not add entry", err)
	}
	if key == "" {
		return rc.refresh(ctx)
	}
	return rc.apply(ctx, Change{Op: OpAdd, Key: key, Record: r.Normalize()})
}

// Update replaces the record stored under key then updates the view.
func (rc *Reconciler) Update(ctx context.Context, key string, r addressbook.Record) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.status(StatusSaving)
	if err := rc.repo.Update(ctx, key, r); err != nil {
		return rc.fail(ctx, "could not update entry", err)
	}
	return rc.apply(ctx, Change{Op: OpUpdate, Key: key, Record: r.Normalize()})
}

// Delete asks for confirmation, removes the record stored under key, then
// removes it from the view. It returns [ErrDeclined] if not confirmed.
func (rc *Reconciler) Delete(ctx context.Context, key string) error {
	if rc.confirmer != nil {
		ok, err := rc.confirmer.Confirm(ctx, fmt.Sprintf("Delete %q?", key))
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			return ErrDeclined
		}
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.status(StatusSaving)
	if err := rc.repo.Delete(ctx, key); err != nil {
		return rc.fail(ctx, "could not delete entry", err)
	}
	return rc.apply(ctx, Change{Op: OpDelete, Key: key})
}

// Submit is the add-form path: it creates r unless another submission is
// outstanding, in which case it returns [ErrInProgress] right away.
// The guard is released once the attempt completes, then reset is called.
// An invalid record is reported without calling reset.
func (rc *Reconciler) Submit(ctx context.Context, r addressbook.Record, reset func()) error {
	if err := r.Validate(); err != nil {
		rc.notifier.Alert("please fill in all required fields", err)
		return err
	}
	if !rc.submitting.CompareAndSwap(false, true) {
		return ErrInProgress
	}
	err := rc.Create(ctx, r)
	rc.submitting.Store(false)
	if reset != nil {
		reset()
	}
	return err
}

// apply patches the view model with change, or reloads it when the
// renderer cannot be patched. Called with rc.mu held.
func (rc *Reconciler) apply(ctx context.Context, change Change) error {
	patcher, ok := rc.renderer.(Patcher)
	if !ok {
		return rc.refresh(ctx)
	}

	switch change.Op {
	case OpAdd, OpUpdate:
		rc.vm.Records[change.Key] = change.Record
	case OpDelete:
		delete(rc.vm.Records, change.Key)
	}
	rc.vm.Status = StatusReady
	patcher.Patch(&rc.vm, change)
	rc.notifier.Status(StatusReady)
	rc.logger.DebugContext(ctx, "view patched", "op", change.Op, "key", change.Key)
	return nil
}

// fail reports err and leaves the records untouched.
func (rc *Reconciler) fail(ctx context.Context, msg string, err error) error {
	rc.status(StatusError)
	if errors.Is(err, client.ErrConflict) {
		msg = "entry already exists"
	}
	rc.notifier.Alert(msg, err)
	rc.logger.WarnContext(ctx, msg, "err", err)
	return err
}

func (rc *Reconciler) status(text string) {
	rc.vm.Status = text
	rc.notifier.Status(text)
}
