package repository

import (
	"context"
	"time"

	"mentapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PrefacturaRepository manages running tabs. Open/close always happen inside
// the mesa transaction; a partial unique index on (id_mesa) WHERE
// estado='abierta' (see infra schema patches) makes a double-open fail at
// the DB even if a caller skips the application guard.
type PrefacturaRepository interface {
	CrearTx(tx *gorm.DB, p *model.Prefactura) error
	// CerrarTx freezes total_acumulado to totalFinal and stamps fecha_cierre.
	CerrarTx(tx *gorm.DB, id, restaurante uuid.UUID, totalFinal decimal.Decimal) error
	FindAbiertaByMesa(ctx context.Context, mesa, restaurante uuid.UUID) (*model.Prefactura, error)
	FindAbiertaByMesaTx(tx *gorm.DB, mesa, restaurante uuid.UUID) (*model.Prefactura, error)
	// ActualizarTotalTx mirrors the mesa's accumulated total onto the open
	// prefactura, server-side.
	ActualizarTotalTx(tx *gorm.DB, id, restaurante uuid.UUID, delta decimal.Decimal) error
}

type prefacturaRepo struct{ db *gorm.DB }

func NewPrefacturaRepository(db *gorm.DB) PrefacturaRepository { return &prefacturaRepo{db: db} }

func (r *prefacturaRepo) CrearTx(tx *gorm.DB, p *model.Prefactura) error {
	return tx.Create(p).Error
}

func (r *prefacturaRepo) CerrarTx(tx *gorm.DB, id, restaurante uuid.UUID, totalFinal decimal.Decimal) error {
	return tx.Model(&model.Prefactura{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Updates(map[string]interface{}{
			"estado":          model.PrefacturaCerrada,
			"total_acumulado": totalFinal,
			"fecha_cierre":    time.Now(),
		}).Error
}

func (r *prefacturaRepo) FindAbiertaByMesa(ctx context.Context, mesa, restaurante uuid.UUID) (*model.Prefactura, error) {
	return r.findAbierta(r.db.WithContext(ctx), mesa, restaurante)
}

func (r *prefacturaRepo) FindAbiertaByMesaTx(tx *gorm.DB, mesa, restaurante uuid.UUID) (*model.Prefactura, error) {
	return r.findAbierta(tx, mesa, restaurante)
}

func (r *prefacturaRepo) findAbierta(db *gorm.DB, mesa, restaurante uuid.UUID) (*model.Prefactura, error) {
	var p model.Prefactura
	err := db.
		Where("id_mesa = ? AND id_restaurante = ? AND estado = ?", mesa, restaurante, model.PrefacturaAbierta).
		Order("fecha_apertura DESC").
		First(&p).Error
	return &p, err
}

func (r *prefacturaRepo) ActualizarTotalTx(tx *gorm.DB, id, restaurante uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Prefactura{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("total_acumulado", gorm.Expr("total_acumulado + ?", delta)).Error
}
