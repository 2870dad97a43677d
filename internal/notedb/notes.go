package notedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/seaglass/internal/notes"
)

var _ notes.Store = (*DB)(nil)

// List returns owner's notes, oldest first.
func (db *DB) List(ctx context.Context, owner string) ([]notes.Note, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner, text, category, color, created_at
		FROM notes WHERE owner = ?
		ORDER BY created_at, id
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []notes.Note
	for rows.Next() {
		var n notes.Note
		var created int64
		if err := rows.Scan(&n.ID, &n.Owner, &n.Text, &n.Category, &n.Color, &created); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func (db *DB) Get(ctx context.Context, owner, id string) (notes.Note, error) {
	var n notes.Note
	var created int64
	err := db.QueryRowContext(ctx, `
		SELECT id, owner, text, category, color, created_at
		FROM notes WHERE owner = ? AND id = ?
	`, owner, id).Scan(&n.ID, &n.Owner, &n.Text, &n.Category, &n.Color, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return n, notes.ErrNotFound
	}
	if err != nil {
		return n, fmt.Errorf("get note: %w", err)
	}
	n.CreatedAt = time.UnixMilli(created).UTC()
	return n, nil
}

func (db *DB) Create(ctx context.Context, n notes.Note) error {
	created := n.CreatedAt.UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO notes (id, owner, text, category, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Owner, n.Text, n.Category, n.Color, created, created)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (db *DB) Update(ctx context.Context, owner, id, text string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE notes SET text = ?, updated_at = ? WHERE owner = ? AND id = ?
	`, text, time.Now().UnixMilli(), owner, id)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return expectOne(result)
}

func (db *DB) Delete(ctx context.Context, owner, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM notes WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectOne(result)
}

func expectOne(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notes.ErrNotFound
	}
	return nil
}
