package card

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kossahokia/bankcards/internal/apperr"
)

func TestMemoryStoreInTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c, err := store.Create(ctx, Card{Number: "enc-1", OwnerID: 1, Status: StatusActive, Balance: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = store.InTx(ctx, func(tx TxStore) error {
		got, err := tx.FindForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		got.Balance = decimal.NewFromInt(42)
		return tx.Save(ctx, got)
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}

	got, err := store.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("expected committed balance 42, got %s", got.Balance)
	}
}

func TestMemoryStoreInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c, err := store.Create(ctx, Card{Number: "enc-1", OwnerID: 1, Status: StatusActive, Balance: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err = store.InTx(ctx, func(tx TxStore) error {
		got, err := tx.FindForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		got.Balance = decimal.NewFromInt(0)
		if err := tx.Save(ctx, got); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := store.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance unchanged at 100, got %s", got.Balance)
	}
}

func TestMemoryStoreInTxReadsStagedWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c, err := store.Create(ctx, Card{Number: "enc-1", OwnerID: 1, Status: StatusActive, Balance: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = store.InTx(ctx, func(tx TxStore) error {
		got, err := tx.FindForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		got.Balance = decimal.NewFromInt(10)
		if err := tx.Save(ctx, got); err != nil {
			return err
		}
		again, err := tx.FindForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		if !again.Balance.Equal(decimal.NewFromInt(10)) {
			t.Fatalf("expected staged balance 10, got %s", again.Balance)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}
}

func TestMemoryStoreListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i, tc := range []struct {
		owner  int64
		status Status
	}{
		{1, StatusActive},
		{1, StatusBlocked},
		{2, StatusActive},
	} {
		if _, err := store.Create(ctx, Card{Number: "enc-" + string(rune('a'+i)), OwnerID: tc.owner, Status: tc.status}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	owner := int64(1)
	cards, err := store.List(ctx, Filter{OwnerID: &owner})
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards for owner 1, got %d", len(cards))
	}

	active := StatusActive
	cards, err = store.List(ctx, Filter{OwnerID: &owner, Status: &active})
	if err != nil {
		t.Fatalf("list by owner and status: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 active card for owner 1, got %d", len(cards))
	}

	cards, err = store.List(ctx, Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("list paginated: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards with offset 1, got %d", len(cards))
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.FindByID(ctx, 99); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Delete(ctx, 99); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}
