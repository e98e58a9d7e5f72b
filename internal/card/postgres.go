package card

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kossahokia/bankcards/internal/apperr"
)

const cardColumns = `c.id, c.card_number, c.owner_id, u.username, c.expiry_date, c.status, c.balance`

// PostgresStore stores cards in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed card store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a card row and returns it with the generated id.
func (s *PostgresStore) Create(ctx context.Context, c Card) (Card, error) {
	err := s.db.QueryRow(ctx, `INSERT INTO cards (card_number, owner_id, expiry_date, status, balance)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.Number, c.OwnerID, c.ExpiryDate, c.Status, c.Balance).Scan(&c.ID)
	if err != nil {
		return Card{}, err
	}
	return c, nil
}

// FindByID fetches a card without locking it. Read-mostly paths accept
// that the balance may change right after the read.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (Card, error) {
	row := s.db.QueryRow(ctx, `SELECT `+cardColumns+`
        FROM cards c JOIN users u ON u.id = c.owner_id WHERE c.id = $1`, id)
	return scanCard(row)
}

// ExistsByNumber probes ciphertext uniqueness at card creation.
func (s *PostgresStore) ExistsByNumber(ctx context.Context, encrypted string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE card_number = $1)`, encrypted).Scan(&exists)
	return exists, err
}

// Update persists the mutable card fields.
func (s *PostgresStore) Update(ctx context.Context, c Card) error {
	cmd, err := s.db.Exec(ctx, `UPDATE cards SET status = $1, balance = $2 WHERE id = $3`,
		c.Status, c.Balance, c.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("card not found")
	}
	return nil
}

// Delete removes a card row.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("card not found")
	}
	return nil
}

// List returns cards matching the filter, ordered by id.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards c JOIN users u ON u.id = c.owner_id`
	var args []any
	var where []string
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		where = append(where, fmt.Sprintf("c.owner_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// InTx wraps fn in a database transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(&postgresTxStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type postgresTxStore struct {
	tx pgx.Tx
}

// FindForUpdate fetches a card and holds an exclusive row lock until the
// transaction ends.
func (s *postgresTxStore) FindForUpdate(ctx context.Context, id int64) (Card, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+cardColumns+`
        FROM cards c JOIN users u ON u.id = c.owner_id WHERE c.id = $1 FOR UPDATE OF c`, id)
	return scanCard(row)
}

// Save persists the mutable card fields inside the transaction.
func (s *postgresTxStore) Save(ctx context.Context, c Card) error {
	cmd, err := s.tx.Exec(ctx, `UPDATE cards SET status = $1, balance = $2 WHERE id = $3`,
		c.Status, c.Balance, c.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("card not found")
	}
	return nil
}

func scanCard(row pgx.Row) (Card, error) {
	var c Card
	err := row.Scan(&c.ID, &c.Number, &c.OwnerID, &c.OwnerUsername, &c.ExpiryDate, &c.Status, &c.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Card{}, apperr.NotFound("card not found")
		}
		return Card{}, err
	}
	c.ExpiryDate = c.ExpiryDate.UTC()
	return c, nil
}
