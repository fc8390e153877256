package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook-api/internal/database"
)

// maxTxAttempts bounds retries of serializable transactions that lost a conflict.
const maxTxAttempts = 3

// runSerializable executes fn in a serializable transaction, retrying serialization failures.
func runSerializable(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.WithContext(ctx).Transaction(fn, opts...)
		if err == nil || !database.IsSerializationFailure(err) {
			return err
		}
	}
	return err
}
