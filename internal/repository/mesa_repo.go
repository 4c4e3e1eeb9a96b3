package repository

import (
	"context"
	"time"

	"mentapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MesaRepository is the data access contract for mesas. State-changing
// methods take a *gorm.DB tx because mesa transitions always run inside the
// orchestrator's transaction. Every query is tenant-scoped.
type MesaRepository interface {
	FindByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Mesa, error)
	FindByNumero(ctx context.Context, numero int, sucursal, restaurante uuid.UUID) (*model.Mesa, error)
	ListBySucursal(ctx context.Context, sucursal, restaurante uuid.UUID) ([]model.Mesa, error)
	// ListNumeros returns the configured mesa numbers of a sucursal, used as
	// the "available tables" hint on not-found errors.
	ListNumeros(ctx context.Context, sucursal, restaurante uuid.UUID) ([]int, error)

	// AbrirTx marks the mesa en_uso and resets the session columns.
	AbrirTx(tx *gorm.DB, id, restaurante, mesero uuid.UUID) error
	// ResetALibreTx returns the mesa to libre with zeroed session columns.
	// Shared by cerrar and liberar.
	ResetALibreTx(tx *gorm.DB, id, restaurante uuid.UUID) error
	UpdateEstadoTx(tx *gorm.DB, id, restaurante uuid.UUID, estado model.EstadoMesa) error
	// AcumularTotalTx adds delta server-side (total_acumulado + δ) so two
	// concurrent orders on the same mesa cannot lose an update.
	AcumularTotalTx(tx *gorm.DB, id, restaurante uuid.UUID, delta decimal.Decimal) error
	AsignarVentaActualTx(tx *gorm.DB, id, restaurante, venta uuid.UUID) error
	AsignarMeseroTx(tx *gorm.DB, id, restaurante, mesero uuid.UUID) error

	// CountDependencias counts ventas, prefacturas and reservas referencing
	// the mesa. A mesa may only be deleted when this is zero.
	CountDependencias(ctx context.Context, id, restaurante uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, restaurante uuid.UUID) error

	Create(ctx context.Context, m *model.Mesa) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type mesaRepo struct{ db *gorm.DB }

func NewMesaRepository(db *gorm.DB) MesaRepository { return &mesaRepo{db: db} }

func (r *mesaRepo) DB() *gorm.DB { return r.db }

func (r *mesaRepo) FindByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := r.db.WithContext(ctx).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		First(&m).Error
	return &m, err
}

func (r *mesaRepo) FindByNumero(ctx context.Context, numero int, sucursal, restaurante uuid.UUID) (*model.Mesa, error) {
	var m model.Mesa
	err := r.db.WithContext(ctx).
		Where("numero = ? AND id_sucursal = ? AND id_restaurante = ?", numero, sucursal, restaurante).
		First(&m).Error
	return &m, err
}

func (r *mesaRepo) ListBySucursal(ctx context.Context, sucursal, restaurante uuid.UUID) ([]model.Mesa, error) {
	var mesas []model.Mesa
	err := r.db.WithContext(ctx).
		Where("id_sucursal = ? AND id_restaurante = ?", sucursal, restaurante).
		Order("numero ASC").
		Find(&mesas).Error
	return mesas, err
}

func (r *mesaRepo) ListNumeros(ctx context.Context, sucursal, restaurante uuid.UUID) ([]int, error) {
	var numeros []int
	err := r.db.WithContext(ctx).Model(&model.Mesa{}).
		Where("id_sucursal = ? AND id_restaurante = ?", sucursal, restaurante).
		Order("numero ASC").
		Pluck("numero", &numeros).Error
	return numeros, err
}

func (r *mesaRepo) AbrirTx(tx *gorm.DB, id, restaurante, mesero uuid.UUID) error {
	return tx.Model(&model.Mesa{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Updates(map[string]interface{}{
			"estado":           model.MesaEnUso,
			"total_acumulado":  decimal.Zero,
			"id_venta_actual":  nil,
			"id_mesero_actual": mesero,
			"hora_apertura":    time.Now(),
		}).Error
}

func (r *mesaRepo) ResetALibreTx(tx *gorm.DB, id, restaurante uuid.UUID) error {
	return tx.Model(&model.Mesa{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Updates(map[string]interface{}{
			"estado":           model.MesaLibre,
			"total_acumulado":  decimal.Zero,
			"id_venta_actual":  nil,
			"id_mesero_actual": nil,
			"hora_cierre":      time.Now(),
		}).Error
}

func (r *mesaRepo) UpdateEstadoTx(tx *gorm.DB, id, restaurante uuid.UUID, estado model.EstadoMesa) error {
	return tx.Model(&model.Mesa{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("estado", estado).Error
}

func (r *mesaRepo) AcumularTotalTx(tx *gorm.DB, id, restaurante uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Mesa{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("total_acumulado", gorm.Expr("total_acumulado + ?", delta)).Error
}

func (r *mesaRepo) AsignarVentaActualTx(tx *gorm.DB, id, restaurante, venta uuid.UUID) error {
	return tx.Model(&model.Mesa{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("id_venta_actual", venta).Error
}

func (r *mesaRepo) AsignarMeseroTx(tx *gorm.DB, id, restaurante, mesero uuid.UUID) error {
	return tx.Model(&model.Mesa{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("id_mesero_actual", mesero).Error
}

func (r *mesaRepo) CountDependencias(ctx context.Context, id, restaurante uuid.UUID) (int64, error) {
	var total int64
	db := r.db.WithContext(ctx)

	var n int64
	if err := db.Model(&model.Venta{}).
		Where("id_mesa = ? AND id_restaurante = ?", id, restaurante).Count(&n).Error; err != nil {
		return 0, err
	}
	total += n
	if err := db.Model(&model.Prefactura{}).
		Where("id_mesa = ? AND id_restaurante = ?", id, restaurante).Count(&n).Error; err != nil {
		return 0, err
	}
	total += n
	if err := db.Model(&model.Reserva{}).
		Where("id_mesa = ? AND id_restaurante = ?", id, restaurante).Count(&n).Error; err != nil {
		return 0, err
	}
	total += n
	return total, nil
}

func (r *mesaRepo) Delete(ctx context.Context, id, restaurante uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Delete(&model.Mesa{}).Error
}

func (r *mesaRepo) Create(ctx context.Context, m *model.Mesa) error {
	return r.db.WithContext(ctx).Create(m).Error
}
