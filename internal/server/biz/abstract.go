package biz

import (
	"context"
	"database/sql"

	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/tenancy"
)

// AbstractService carries the shared database handle and transaction plumbing.
type AbstractService struct {
	db *db.DB
}

// RunInTransaction executes fn inside a transaction, committing on success and
// rolling back on error or panic. The transaction is exposed through the
// returned querier.
func (a *AbstractService) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()

			panic(r)
		}

		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	committed = true

	return nil
}

// insertReturningID works around the missing LastInsertId support of the
// postgres driver with a RETURNING clause; sqlite keeps LastInsertId.
func (a *AbstractService) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if a.db.Dialect == tenancy.DialectPostgres {
		var id int64

		err := a.db.QueryRowContext(ctx, query+` RETURNING id`, args...).Scan(&id)

		return id, err
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}
