package reconciler

import (
	"context"

	"github.com/oaiiae/addressbook/addressbook"
)

// Repository is the remote API as seen by the [Reconciler].
// [*client.Client] implements it.
type Repository interface {
	List(ctx context.Context) (addressbook.RecordSet, error)
	Create(ctx context.Context, r addressbook.Record) (string, error)
	Update(ctx context.Context, key string, r addressbook.Record) error
	Delete(ctx context.Context, key string) error
}

// Renderer presents the whole view model.
type Renderer interface {
	Render(vm *ViewModel)
}

// Patcher is implemented by renderers able to present a single changed
// entry without a full reload.
type Patcher interface {
	Patch(vm *ViewModel, change Change)
}

// Notifier surfaces status text and blocking failure notifications.
type Notifier interface {
	Status(text string)
	Alert(msg string, err error)
}

// Confirmer is asked before destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Op tells which mutation a [Change] describes.
type Op int

const (
	OpAdd Op = iota
	OpUpdate
	OpDelete
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one entry patched into the view model. Record is the zero
// value for [OpDelete].
type Change struct {
	Op     Op
	Key    string
	Record addressbook.Record
}
