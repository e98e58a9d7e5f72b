package card

import "context"

// Filter narrows List results. Nil fields match everything.
type Filter struct {
	OwnerID *int64
	Status  *Status
	Limit   int
	Offset  int
}

// TxStore is the view of the store available inside InTx. FindForUpdate
// acquires an exclusive row lock held until the unit of work ends, so
// concurrent transfers or status changes on the same card serialize
// through the row lock rather than an in-process mutex.
type TxStore interface {
	FindForUpdate(ctx context.Context, id int64) (Card, error)
	Save(ctx context.Context, c Card) error
}

// Store persists cards.
type Store interface {
	Create(ctx context.Context, c Card) (Card, error)
	FindByID(ctx context.Context, id int64) (Card, error)
	ExistsByNumber(ctx context.Context, encrypted string) (bool, error)
	Update(ctx context.Context, c Card) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]Card, error)

	// InTx runs fn as one atomic unit of work: everything fn saved commits
	// together, or nothing does. Lock-wait timeouts and deadlock detection
	// belong to the backing store; failures surface through the returned
	// error.
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}
