// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"navega/internal/database"
	"navega/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type primaryKey struct{}

// ReadPrimary marks ctx so lookups made with it skip the read replica. Use it
// for reads that must observe a write the caller just committed, and for
// read-modify-write sequences.
func ReadPrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryKey{}, true)
}

func wantsPrimary(ctx context.Context) bool {
	v, _ := ctx.Value(primaryKey{}).(bool)
	return v
}

// readDB picks the replica for reads unless db is bound to a transaction,
// whose reads must see its own writes, or ctx asks for the primary.
func readDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if _, inTx := db.Statement.ConnPool.(gorm.TxCommitter); inTx || wantsPrimary(ctx) {
		return db
	}
	if replica := database.GetReadDB(); replica != nil {
		return replica
	}
	return db
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, uniqueViolation)
}

// lookupError maps a single-row lookup failure onto the AppError taxonomy.
func lookupError(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// writeError maps an insert/update failure; conflictMsg is used for unique violations.
func writeError(err error, conflictMsg string) error {
	if isUniqueConstraintError(err) {
		return &models.AppError{Code: models.CodeConflict, Message: conflictMsg, Err: err}
	}
	return models.NewInternalError(err)
}

// Page bounds a listing query. A zero Limit returns every row.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
