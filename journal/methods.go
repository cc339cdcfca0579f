package journal

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

const methodColumns = `id, code, name, description, is_default, usage_count, win_rate, total_pnl`

// listOrder is shared by List and the Default fallback.
const listOrder = ` ORDER BY usage_count DESC, win_rate DESC, rowid ASC`

// MethodRepo reads and writes the methods table.
type MethodRepo struct {
	store *Store
	log   *zap.Logger
}

func NewMethodRepo(store *Store, log *zap.Logger) *MethodRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &MethodRepo{store: store, log: log.Named("methods")}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMethod(s rowScanner) (methodRow, error) {
	var r methodRow
	err := s.Scan(&r.ID, &r.Code, &r.Name, &r.Description,
		&r.IsDefault, &r.UsageCount, &r.WinRate, &r.TotalPnL)
	return r, err
}

// Create inserts m. Code and Name are required. An empty ID is generated.
// The derived stats are stored as given, which is zero unless the caller is
// restoring previously exported methods.
func (r *MethodRepo) Create(ctx context.Context, m Method) (Method, error) {
	m.Code = strings.TrimSpace(m.Code)
	m.Name = strings.TrimSpace(m.Name)
	if m.Code == "" {
		return Method{}, validationErrorf("method code is required")
	}
	if m.Name == "" {
		return Method{}, validationErrorf("method name is required")
	}

	err := r.store.withTx(ctx, "create method", func(tx *sql.Tx) error {
		if m.ID == "" {
			for {
				m.ID = id.New("method")
				taken, err := methodExists(ctx, tx, m.ID)
				if err != nil {
					return err
				}
				if !taken {
					break
				}
			}
		} else {
			taken, err := methodExists(ctx, tx, m.ID)
			if err != nil {
				return err
			}
			if taken {
				return validationErrorf("method id %q already exists", m.ID)
			}
		}

		if m.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE methods SET is_default = 0`); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO methods (`+methodColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Code, m.Name, nullString(m.Description), m.IsDefault,
			m.UsageCount, m.WinRate, m.TotalPnL,
		)
		return err
	})
	if err != nil {
		return Method{}, err
	}

	r.log.Info("method created", zap.String("id", m.ID), zap.String("code", m.Code))
	return m, nil
}

func methodExists(ctx context.Context, tx *sql.Tx, methodID string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM methods WHERE id = ?`, methodID).Scan(&n)
	return n > 0, err
}

// Get returns the method with the given id.
func (r *MethodRepo) Get(ctx context.Context, methodID string) (Method, error) {
	db, err := r.store.DB()
	if err != nil {
		return Method{}, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+methodColumns+` FROM methods WHERE id = ?`, methodID)
	rec, err := scanMethod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Method{}, notFoundErrorf("method %q", methodID)
	}
	if err != nil {
		return Method{}, storageError("get method", err)
	}
	return rec.method(), nil
}

// List returns every method with a valid id, most used first.
func (r *MethodRepo) List(ctx context.Context) ([]Method, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+methodColumns+` FROM methods
		WHERE id IS NOT NULL AND id != ''`+listOrder)
	if err != nil {
		return nil, storageError("list methods", err)
	}
	defer rows.Close()

	out := []Method{}
	for rows.Next() {
		rec, err := scanMethod(rows)
		if err != nil {
			return nil, storageError("list methods", err)
		}
		out = append(out, rec.method())
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list methods", err)
	}
	return out, nil
}

// Update applies the non-nil fields of p. The derived stats columns are
// never touched here. Setting IsDefault clears the flag on every other method
// in the same transaction.
func (r *MethodRepo) Update(ctx context.Context, methodID string, p MethodPatch) (Method, error) {
	var (
		sets []string
		args []any
	)
	if p.Code != nil {
		code := strings.TrimSpace(*p.Code)
		if code == "" {
			return Method{}, validationErrorf("method code is required")
		}
		sets = append(sets, "code = ?")
		args = append(args, code)
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Method{}, validationErrorf("method name is required")
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(*p.Description))
	}
	if p.IsDefault != nil {
		sets = append(sets, "is_default = ?")
		args = append(args, *p.IsDefault)
	}

	if len(sets) == 0 {
		return r.Get(ctx, methodID)
	}

	err := r.store.withTx(ctx, "update method", func(tx *sql.Tx) error {
		if p.IsDefault != nil && *p.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE methods SET is_default = 0 WHERE id != ?`, methodID); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE methods SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			append(args, methodID)...)
		if err != nil {
			return err
		}
		return expectRows(res, notFoundErrorf("method %q", methodID))
	})
	if err != nil {
		return Method{}, err
	}
	return r.Get(ctx, methodID)
}

// Delete removes the method. Trades referencing it keep their methodName and
// have methodId set to NULL by the foreign key.
func (r *MethodRepo) Delete(ctx context.Context, methodID string) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM methods WHERE id = ?`, methodID)
	if err != nil {
		return storageError("delete method", err)
	}
	if err := expectRows(res, notFoundErrorf("method %q", methodID)); err != nil {
		return storageError("delete method", err)
	}

	r.log.Info("method deleted", zap.String("id", methodID))
	return nil
}

// Default returns the method flagged as default. When none is flagged it
// falls back to the first method in List order. An empty table is ErrNotFound.
func (r *MethodRepo) Default(ctx context.Context) (Method, error) {
	db, err := r.store.DB()
	if err != nil {
		return Method{}, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT `+methodColumns+` FROM methods
		WHERE id IS NOT NULL AND id != ''
		ORDER BY is_default DESC, usage_count DESC, win_rate DESC, rowid ASC
		LIMIT 1`)
	rec, err := scanMethod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Method{}, notFoundErrorf("no methods")
	}
	if err != nil {
		return Method{}, storageError("get default method", err)
	}
	return rec.method(), nil
}

// SetDefault makes methodID the only default method. Both steps run in one
// transaction; an unknown id rolls back and keeps the previous default.
//
// Concurrent SetDefault calls are not coordinated beyond the single
// connection.
func (r *MethodRepo) SetDefault(ctx context.Context, methodID string) error {
	err := r.store.withTx(ctx, "set default method", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE methods SET is_default = 0`); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE methods SET is_default = 1 WHERE id = ?`, methodID)
		if err != nil {
			return err
		}
		return expectRows(res, notFoundErrorf("method %q", methodID))
	})
	if err != nil {
		return err
	}

	r.log.Info("default method set", zap.String("id", methodID))
	return nil
}

// CleanupInvalid deletes method rows with a NULL or empty id and returns how
// many were removed.
func (r *MethodRepo) CleanupInvalid(ctx context.Context) (int64, error) {
	db, err := r.store.DB()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM methods WHERE id IS NULL OR id = ''`)
	if err != nil {
		return 0, storageError("cleanup methods", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError("cleanup methods", err)
	}
	if n > 0 {
		r.log.Info("removed methods without id", zap.Int64("count", n))
	}
	return n, nil
}

// expectRows returns notFound when res affected no rows.
func expectRows(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
