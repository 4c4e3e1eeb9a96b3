package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies the authenticated staff member acting on a request. It is
// built from the JWT claims at the handler boundary; services trust it for
// tenant and branch scoping.
type Actor struct {
	IDVendedor    uuid.UUID
	IDSucursal    uuid.UUID
	IDRestaurante uuid.UUID
	Username      string
	Rol           string
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode with stub repositories).
// Commit on success, rollback on error or panic — the orchestrator sequence
// can never leak a half-committed transaction.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
