package infra

import (
	"fmt"

	"mentapos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the DDL
// GORM cannot express (partial unique indexes, CHECK constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates all tables and applies the schema patches.
// Also used by the provisioning CLI and integration tests against a fresh DB.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Restaurante{},
		&model.Sucursal{},
		&model.Vendedor{},
		&model.MetodoPago{},
		&model.CategoriaProducto{},
		&model.Producto{},
		&model.Mesa{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.Prefactura{},
		&model.Factura{},
		&model.Reserva{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM AutoMigrate cannot express.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open prefactura per mesa; enforced by the database, not
		// just the service layer. Closed rows are excluded from the index.
		{"partial unique index prefacturas abiertas", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_prefacturas_mesa_abierta') THEN
    CREATE UNIQUE INDEX uq_prefacturas_mesa_abierta
        ON prefacturas (id_mesa)
        WHERE estado = 'abierta';
  END IF;
END $$`},
		// Stock never goes negative even if application code regresses.
		{"check constraint stock no negativo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos
      ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
		// Kitchen poll: open orders by sucursal, oldest first.
		{"index ventas abiertas por sucursal", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_cocina_pendientes') THEN
    CREATE INDEX idx_ventas_cocina_pendientes
        ON ventas (id_sucursal, fecha)
        WHERE estado IN ('recibido', 'en_preparacion', 'listo_para_servir');
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
