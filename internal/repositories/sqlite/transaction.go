package sqlite

import (
	"context"
	"database/sql"

	"garage-billing-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// withTransaction runs fn inside a transaction scope with guaranteed cleanup:
// commit on success, rollback on error or panic. Every multi-statement store
// operation goes through here so no exit path can leave a transaction open.
func withTransaction(ctx context.Context, db *sql.DB, logger *logrus.Logger, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		logger.WithError(err).Error("Failed to begin transaction")
		return repositories.TransactionError("begin", err)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r) // Re-throw panic after cleanup
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			logger.WithError(rollbackErr).Error("Failed to rollback transaction after error")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.WithError(err).Error("Failed to commit transaction")
		return repositories.TransactionError("commit", err)
	}

	return nil
}
