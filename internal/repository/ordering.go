package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// reorder rewrites the position column of table so that ids[i] gets position
// i. ids must be a permutation of every row in the table.
func reorder(ctx context.Context, tx *sql.Tx, table string, ids []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrInvalidOrder
		}
		seen[id] = struct{}{}
	}

	if err := lockPositions(ctx, tx, table); err != nil {
		return err
	}
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s FOR UPDATE`, table))
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", table, err)
	}
	stored := 0
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan %s id: %w", table, err)
		}
		if _, ok := seen[id]; !ok {
			rows.Close()
			return ErrInvalidOrder
		}
		stored++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating %s: %w", table, err)
	}
	rows.Close()
	if stored != len(ids) {
		return ErrInvalidOrder
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s t SET position = o.ord - 1
		FROM unnest($1::uuid[]) WITH ORDINALITY AS o(id, ord)
		WHERE t.id = o.id
	`, table), pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("failed to reorder %s: %w", table, err)
	}
	return nil
}

// compact renumbers positions to 0..n-1 keeping their relative order.
func compact(ctx context.Context, tx *sql.Tx, table string) error {
	if err := lockPositions(ctx, tx, table); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %[1]s t SET position = r.rn - 1
		FROM (SELECT id, ROW_NUMBER() OVER (ORDER BY position, created_at, id) AS rn FROM %[1]s) r
		WHERE t.id = r.id AND t.position <> r.rn - 1
	`, table))
	if err != nil {
		return fmt.Errorf("failed to compact %s positions: %w", table, err)
	}
	return nil
}

func nextPosition(ctx context.Context, tx *sql.Tx, table string) (int, error) {
	if err := lockPositions(ctx, tx, table); err != nil {
		return 0, err
	}
	var next int
	err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT COALESCE(MAX(position) + 1, 0) FROM %s`, table)).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next %s position: %w", table, err)
	}
	return next, nil
}

// lockPositions serializes every writer of table's position column until the
// transaction ends. Row locks would not cover rows inserted in the meantime.
func lockPositions(ctx context.Context, tx *sql.Tx, table string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "positions:"+table); err != nil {
		return fmt.Errorf("failed to lock %s positions: %w", table, err)
	}
	return nil
}
