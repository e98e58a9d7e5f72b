// Package transfer implements atomic balance transfers between a user's
// own cards.
package transfer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kossahokia/bankcards/internal/apperr"
	"github.com/kossahokia/bankcards/internal/card"
	"github.com/kossahokia/bankcards/internal/pan"
	"github.com/kossahokia/bankcards/internal/user"
)

// Service moves funds between two cards of the same owner.
//
// The whole validation-and-mutation sequence runs inside one store unit
// of work: either every precondition holds and both balance changes
// commit together, or nothing is persisted. The sum of the two balances
// is therefore conserved on every call, successful or not.
type Service struct {
	cards  card.Store
	cipher *pan.Cipher
}

// NewService builds a transfer service.
func NewService(cards card.Store, cipher *pan.Cipher) *Service {
	return &Service{cards: cards, cipher: cipher}
}

// Transfer debits fromID and credits toID by amount.
//
// Cards are locked in caller-argument order, source first. Two
// concurrent opposite-direction transfers between the same pair can
// therefore deadlock; the database's deadlock detection aborts one of
// them and that failure surfaces to the caller. Locking by ascending id
// would avoid this but changes which lock is taken first, so the
// caller-order behavior is kept.
func (s *Service) Transfer(ctx context.Context, owner user.User, fromID, toID int64, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return apperr.Validation("transfer amount must be positive")
	}
	if fromID == toID {
		return apperr.Validation("cannot transfer to the same card")
	}

	return s.cards.InTx(ctx, func(tx card.TxStore) error {
		from, err := tx.FindForUpdate(ctx, fromID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return apperr.NotFound("source card not found")
			}
			return err
		}
		to, err := tx.FindForUpdate(ctx, toID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return apperr.NotFound("destination card not found")
			}
			return err
		}

		if from.OwnerID != owner.ID || to.OwnerID != owner.ID {
			return apperr.BusinessRule("both cards must belong to the same user")
		}

		// Decrypt once up front; the masked numbers feed the error
		// messages below. A decrypt failure is an integrity incident,
		// never a generic rejection.
		fromPlain, err := s.cipher.Decrypt(from.Number)
		if err != nil {
			return apperr.CorruptedData(fmt.Sprintf("corrupted card data for card id=%d", from.ID), err)
		}
		toPlain, err := s.cipher.Decrypt(to.Number)
		if err != nil {
			return apperr.CorruptedData(fmt.Sprintf("corrupted card data for card id=%d", to.ID), err)
		}
		fromMasked := pan.Mask(fromPlain)
		toMasked := pan.Mask(toPlain)

		if from.Status != card.StatusActive || card.Expired(&from) {
			return apperr.BusinessRule("source card is not active: " + fromMasked)
		}
		if to.Status != card.StatusActive || card.Expired(&to) {
			return apperr.BusinessRule("destination card is not active: " + toMasked)
		}

		if from.Balance.LessThan(amount) {
			return apperr.BusinessRule("insufficient funds on card: " + fromMasked)
		}

		from.Balance = from.Balance.Sub(amount)
		to.Balance = to.Balance.Add(amount)

		if err := tx.Save(ctx, from); err != nil {
			return err
		}
		return tx.Save(ctx, to)
	})
}
