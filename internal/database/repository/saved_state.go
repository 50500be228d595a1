package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/gomvi/internal/database"
)

// savedStateNamespace scopes the deterministic row ids of saved_state.
var savedStateNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("gomvi.saved_state"))

// SavedStateRepo persists view-model state per owner and key. It implements
// savedstate.Backend.
type SavedStateRepo struct {
	db *sql.DB
}

func NewSavedStateRepo(db *sql.DB) *SavedStateRepo {
	return &SavedStateRepo{db: db}
}

// SavedStateID returns the row id of (owner, key).
func SavedStateID(owner, key string) string {
	return uuid.NewSHA1(savedStateNamespace, []byte(owner+"\x00"+key)).String()
}

func (r *SavedStateRepo) SaveState(ctx context.Context, owner, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO saved_state(id, owner, key, payload, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(owner, key) DO UPDATE SET
	 payload=excluded.payload,
	 updated_at=excluded.updated_at;
	`, SavedStateID(owner, key), owner, key, payload, database.Now())
	return err
}

func (r *SavedStateRepo) LoadState(ctx context.Context, owner, key string) ([]byte, bool, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM saved_state WHERE owner = ? AND key = ?`, owner, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Reset drops every row of the given owners in one transaction and returns
// how many were removed.
func (r *SavedStateRepo) Reset(ctx context.Context, owners ...string) (int, error) {
	var removed int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, owner := range owners {
			res, err := tx.ExecContext(ctx, `DELETE FROM saved_state WHERE owner = ?`, owner)
			if err != nil {
				return fmt.Errorf("reset %s: %w", owner, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}
