package repository

import (
	"context"
	"time"

	"mentapos/internal/dto"
	"mentapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CrearTx inserts the venta header together with its Detalles.
	CrearTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Venta, error)
	UpdateEstado(ctx context.Context, id, restaurante uuid.UUID, estado model.EstadoVenta) error
	// CerrarAbiertasDeMesaTx force-closes stale open ventas for a mesa/sucursal
	// pair left behind by an improperly closed session, so they cannot pollute
	// the new session's accounting.
	CerrarAbiertasDeMesaTx(tx *gorm.DB, mesaNumero int, sucursal, restaurante uuid.UUID) error
	List(ctx context.Context, restaurante uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error)
	// ListSesionMesa returns the ventas of the mesa session opened at desde.
	ListSesionMesa(ctx context.Context, mesa, restaurante uuid.UUID, desde time.Time) ([]model.Venta, error)
	// ListPendientesCocina feeds the kitchen display: open orders not yet
	// delivered, oldest first.
	ListPendientesCocina(ctx context.Context, sucursal, restaurante uuid.UUID) ([]model.Venta, error)
	CrearFacturaTx(tx *gorm.DB, f *model.Factura) error
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CrearTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").Preload("Vendedor").Preload("Pago").
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		First(&v).Error
	return &v, err
}

func (r *ventaRepo) UpdateEstado(ctx context.Context, id, restaurante uuid.UUID, estado model.EstadoVenta) error {
	res := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("estado", estado)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ventaRepo) CerrarAbiertasDeMesaTx(tx *gorm.DB, mesaNumero int, sucursal, restaurante uuid.UUID) error {
	return tx.Model(&model.Venta{}).
		Where("mesa_numero = ? AND id_sucursal = ? AND id_restaurante = ? AND estado IN ?",
			mesaNumero, sucursal, restaurante, model.EstadosVentaAbiertos).
		Update("estado", model.VentaCerrada).Error
}

func (r *ventaRepo) List(ctx context.Context, restaurante uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id_restaurante = ?", restaurante)

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.IDSucursal != "" {
		q = q.Where("id_sucursal = ?", filter.IDSucursal)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(fecha) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(fecha) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Detalles.Producto").Preload("Vendedor").Preload("Pago").
		Order("fecha DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) ListSesionMesa(ctx context.Context, mesa, restaurante uuid.UUID, desde time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").
		Where("id_mesa = ? AND id_restaurante = ? AND fecha >= ? AND estado IN ?",
			mesa, restaurante, desde, model.EstadosVentaAbiertos).
		Order("fecha ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListPendientesCocina(ctx context.Context, sucursal, restaurante uuid.UUID) ([]model.Venta, error) {
	pendientes := []model.EstadoVenta{model.VentaRecibido, model.VentaEnPreparacion, model.VentaListoParaServir}
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").
		Where("id_sucursal = ? AND id_restaurante = ? AND estado IN ?", sucursal, restaurante, pendientes).
		Order("fecha ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) CrearFacturaTx(tx *gorm.DB, f *model.Factura) error {
	return tx.Create(f).Error
}
