package transfer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kossahokia/bankcards/internal/apperr"
	"github.com/kossahokia/bankcards/internal/card"
	"github.com/kossahokia/bankcards/internal/pan"
	"github.com/kossahokia/bankcards/internal/user"
)

type fixture struct {
	svc    *Service
	store  *card.MemoryStore
	cipher *pan.Cipher
	owner  user.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	cipher := pan.NewCipher("test-encryption-secret")
	store := card.NewMemoryStore()
	return &fixture{
		svc:    NewService(store, cipher),
		store:  store,
		cipher: cipher,
		owner:  user.User{ID: 1, Username: "alice"},
	}
}

func (f *fixture) addCard(t *testing.T, number string, ownerID int64, status card.Status, balance int64) card.Card {
	t.Helper()
	encrypted, err := f.cipher.Encrypt(number)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	c, err := f.store.Create(context.Background(), card.Card{
		Number:  encrypted,
		OwnerID: ownerID,
		Status:  status,
		Balance: decimal.NewFromInt(balance),
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	return c
}

func (f *fixture) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	c, err := f.store.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find card %d: %v", id, err)
	}
	return c.Balance
}

func TestTransferMovesFunds(t *testing.T) {
	f := setup(t)
	from := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 1000)
	to := f.addCard(t, "5555666677778888", f.owner.ID, card.StatusActive, 50)

	err := f.svc.Transfer(context.Background(), f.owner, from.ID, to.ID, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := f.balance(t, from.ID); !got.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected source balance 800, got %s", got)
	}
	if got := f.balance(t, to.ID); !got.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected destination balance 250, got %s", got)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	f := setup(t)
	from := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 50)
	to := f.addCard(t, "5555666677778888", f.owner.ID, card.StatusActive, 0)

	err := f.svc.Transfer(context.Background(), f.owner, from.ID, to.ID, decimal.NewFromInt(200))
	if apperr.KindOf(err) != apperr.KindBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if !strings.Contains(err.Error(), "**** **** **** 4444") {
		t.Fatalf("expected masked source number in error, got %q", err.Error())
	}

	if got := f.balance(t, from.ID); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected source balance unchanged, got %s", got)
	}
	if got := f.balance(t, to.ID); !got.Equal(decimal.NewFromInt(0)) {
		t.Fatalf("expected destination balance unchanged, got %s", got)
	}
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	f := setup(t)
	from := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 100)
	to := f.addCard(t, "5555666677778888", f.owner.ID, card.StatusActive, 100)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		err := f.svc.Transfer(context.Background(), f.owner, from.ID, to.ID, amount)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("amount %s: expected validation error, got %v", amount, err)
		}
	}
}

func TestTransferRejectsSameCard(t *testing.T) {
	f := setup(t)
	from := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 100)

	err := f.svc.Transfer(context.Background(), f.owner, from.ID, from.ID, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransferRejectsForeignCard(t *testing.T) {
	f := setup(t)
	from := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 100)
	to := f.addCard(t, "5555666677778888", 99, card.StatusActive, 100)

	err := f.svc.Transfer(context.Background(), f.owner, from.ID, to.ID, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
}

func TestTransferMissingCards(t *testing.T) {
	f := setup(t)
	from := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 100)

	err := f.svc.Transfer(context.Background(), f.owner, 404, from.ID, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for missing source, got %v", err)
	}
	err = f.svc.Transfer(context.Background(), f.owner, from.ID, 404, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for missing destination, got %v", err)
	}
}

func TestTransferRejectsInactiveCards(t *testing.T) {
	f := setup(t)

	blocked := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusBlocked, 100)
	active := f.addCard(t, "5555666677778888", f.owner.ID, card.StatusActive, 100)

	err := f.svc.Transfer(context.Background(), f.owner, blocked.ID, active.ID, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if !strings.Contains(err.Error(), "source card is not active: **** **** **** 4444") {
		t.Fatalf("unexpected error message %q", err.Error())
	}

	err = f.svc.Transfer(context.Background(), f.owner, active.ID, blocked.ID, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if !strings.Contains(err.Error(), "destination card is not active: **** **** **** 4444") {
		t.Fatalf("unexpected error message %q", err.Error())
	}
}

func TestTransferRejectsExpiredDestination(t *testing.T) {
	f := setup(t)
	from := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 100)

	encrypted, err := f.cipher.Encrypt("5555666677778888")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	to, err := f.store.Create(context.Background(), card.Card{
		Number:     encrypted,
		OwnerID:    f.owner.ID,
		Status:     card.StatusActive,
		ExpiryDate: time.Now().UTC().AddDate(-1, 0, 0),
		Balance:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}

	err = f.svc.Transfer(context.Background(), f.owner, from.ID, to.ID, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
}

func TestTransferCorruptedCiphertext(t *testing.T) {
	f := setup(t)
	from, err := f.store.Create(context.Background(), card.Card{
		Number:  "garbage",
		OwnerID: f.owner.ID,
		Status:  card.StatusActive,
		Balance: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	to := f.addCard(t, "5555666677778888", f.owner.ID, card.StatusActive, 100)

	err = f.svc.Transfer(context.Background(), f.owner, from.ID, to.ID, decimal.NewFromInt(10))
	if apperr.KindOf(err) != apperr.KindCorruptedData {
		t.Fatalf("expected corrupted data error, got %v", err)
	}
}

func TestTransferConservesTotalUnderConcurrency(t *testing.T) {
	f := setup(t)
	a := f.addCard(t, "1111222233334444", f.owner.ID, card.StatusActive, 1000)
	b := f.addCard(t, "5555666677778888", f.owner.ID, card.StatusActive, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = f.svc.Transfer(context.Background(), f.owner, a.ID, b.ID, decimal.NewFromInt(7))
		}()
		go func() {
			defer wg.Done()
			_ = f.svc.Transfer(context.Background(), f.owner, b.ID, a.ID, decimal.NewFromInt(3))
		}()
	}
	wg.Wait()

	total := f.balance(t, a.ID).Add(f.balance(t, b.ID))
	if !total.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected total 2000, got %s", total)
	}
}
