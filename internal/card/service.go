package card

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kossahokia/bankcards/internal/apperr"
	"github.com/kossahokia/bankcards/internal/pan"
	"github.com/kossahokia/bankcards/internal/user"
)

// Service owns the card lifecycle: creation, status transitions and the
// masked projection returned to callers.
type Service struct {
	store  Store
	users  user.Store
	cipher *pan.Cipher
}

// NewService builds a card lifecycle service.
func NewService(store Store, users user.Store, cipher *pan.Cipher) *Service {
	return &Service{store: store, users: users, cipher: cipher}
}

// View is the only card representation that leaves this package: the PAN
// appears masked, never in plaintext or ciphertext.
type View struct {
	ID         int64           `json:"id"`
	Number     string          `json:"number"`
	Owner      string          `json:"owner"`
	ExpiryDate string          `json:"expiry_date"`
	Status     Status          `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
}

// CreateInput carries an administrative card-creation request.
type CreateInput struct {
	Number         string
	OwnerUsername  string
	ExpiryDate     time.Time
	InitialBalance decimal.Decimal
}

// Create encrypts the PAN, enforces ciphertext uniqueness and persists
// the card as ACTIVE for the given owner.
func (s *Service) Create(ctx context.Context, input CreateInput) (View, error) {
	if input.Number == "" {
		return View{}, apperr.Validation("card number is required")
	}
	if input.InitialBalance.Sign() < 0 {
		return View{}, apperr.Validation("initial balance must not be negative")
	}

	owner, err := s.users.FindByUsername(ctx, input.OwnerUsername)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return View{}, apperr.NotFound("owner not found: " + input.OwnerUsername)
		}
		return View{}, err
	}

	encrypted, err := s.cipher.Encrypt(input.Number)
	if err != nil {
		return View{}, err
	}
	exists, err := s.store.ExistsByNumber(ctx, encrypted)
	if err != nil {
		return View{}, err
	}
	if exists {
		return View{}, apperr.Validation("card with this number already exists")
	}

	saved, err := s.store.Create(ctx, Card{
		Number:        encrypted,
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		ExpiryDate:    input.ExpiryDate,
		Status:        StatusActive,
		Balance:       input.InitialBalance,
	})
	if err != nil {
		return View{}, err
	}
	return s.View(saved)
}

// RequestBlock lets the owner of an active, unexpired card ask for it to
// be blocked. The admin later confirms via AdminSetStatus.
func (s *Service) RequestBlock(ctx context.Context, cardID int64, owner user.User) (View, error) {
	c, err := s.store.FindByID(ctx, cardID)
	if err != nil {
		return View{}, err
	}
	if c.OwnerID != owner.ID {
		return View{}, apperr.BusinessRule("you are not the owner of this card")
	}
	if c.Status != StatusActive || Expired(&c) {
		return View{}, apperr.BusinessRule("card is not active, cannot request block")
	}

	c.Status = StatusBlockRequested
	if err := s.store.Update(ctx, c); err != nil {
		return View{}, err
	}
	return s.View(c)
}

// AdminSetStatus forcibly moves a card to any status, with no
// precondition. The locking fetch keeps the override from racing a
// concurrent transfer on the same card.
func (s *Service) AdminSetStatus(ctx context.Context, cardID int64, status Status) (View, error) {
	var c Card
	err := s.store.InTx(ctx, func(tx TxStore) error {
		var err error
		c, err = tx.FindForUpdate(ctx, cardID)
		if err != nil {
			return err
		}
		c.Status = status
		return tx.Save(ctx, c)
	})
	if err != nil {
		return View{}, err
	}
	return s.View(c)
}

// Get returns the masked view of one card, restricted to its owner.
func (s *Service) Get(ctx context.Context, cardID int64, owner user.User) (View, error) {
	c, err := s.store.FindByID(ctx, cardID)
	if err != nil {
		return View{}, err
	}
	if c.OwnerID != owner.ID {
		return View{}, apperr.NotFound("card not found for this user")
	}
	return s.View(c)
}

// Balance reads the current balance without locking; callers accept that
// it may change right after the read.
func (s *Service) Balance(ctx context.Context, cardID int64, owner user.User) (decimal.Decimal, error) {
	c, err := s.store.FindByID(ctx, cardID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if c.OwnerID != owner.ID {
		return decimal.Decimal{}, apperr.NotFound("card not found for this user")
	}
	return c.Balance, nil
}

// List returns masked views of cards matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]View, error) {
	cards, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(cards))
	for _, c := range cards {
		v, err := s.View(c)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Delete removes a card row entirely. Administrative escape hatch.
func (s *Service) Delete(ctx context.Context, cardID int64) error {
	return s.store.Delete(ctx, cardID)
}

// View decrypts and masks the card number. A decrypt failure means the
// row or the key is corrupted and surfaces as a data-corruption error
// instead of being swallowed, so a systemic key mismatch cannot go
// unnoticed.
func (s *Service) View(c Card) (View, error) {
	plain, err := s.cipher.Decrypt(c.Number)
	if err != nil {
		return View{}, apperr.CorruptedData(fmt.Sprintf("corrupted card data for card id=%d", c.ID), err)
	}
	expiry := ""
	if !c.ExpiryDate.IsZero() {
		expiry = c.ExpiryDate.Format("2006-01-02")
	}
	return View{
		ID:         c.ID,
		Number:     pan.Mask(plain),
		Owner:      c.OwnerUsername,
		ExpiryDate: expiry,
		Status:     c.Status,
		Balance:    c.Balance,
	}, nil
}
