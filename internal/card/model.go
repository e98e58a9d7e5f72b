// Package card holds the card entity, its persistence contract and the
// lifecycle service.
package card

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the stored lifecycle state of a card.
type Status string

const (
	StatusActive         Status = "ACTIVE"
	StatusBlockRequested Status = "BLOCK_REQUESTED"
	StatusBlocked        Status = "BLOCKED"
	StatusExpired        Status = "EXPIRED"
)

// ParseStatus validates a status value supplied by an administrator.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusBlockRequested, StatusBlocked, StatusExpired:
		return Status(s), true
	}
	return "", false
}

// Card is a bank card row. Number holds the encrypted PAN; the plaintext
// never reaches storage. A card belongs to exactly one owner for its
// lifetime.
type Card struct {
	ID            int64
	Number        string // AES ciphertext, unique across all cards
	OwnerID       int64
	OwnerUsername string
	ExpiryDate    time.Time // date only, UTC midnight
	Status        Status
	Balance       decimal.Decimal
}

// Expired reports whether the card's expiry date lies strictly before
// today, at date granularity. A zero expiry date means the card never
// expires. A nil card is a programming error, not a business outcome.
//
// The stored status is deliberately not consulted: usability is
// Status == StatusActive && !Expired(card), and nothing promotes a stored
// status to EXPIRED automatically.
func Expired(c *Card) bool {
	if c == nil {
		panic("card must not be nil")
	}
	if c.ExpiryDate.IsZero() {
		return false
	}
	y, m, d := time.Now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return c.ExpiryDate.Before(today)
}
