package repository

import (
	"context"

	"mentapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoRepository resolves the reference entities an order needs:
// sucursales, metodos de pago and vendedores. Read-mostly; vendedor writes
// back the admin user-management surface.
type CatalogoRepository interface {
	FindRestauranteByID(ctx context.Context, id uuid.UUID) (*model.Restaurante, error)
	FindSucursalByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Sucursal, error)
	ListSucursales(ctx context.Context, restaurante uuid.UUID) ([]model.Sucursal, error)

	FindMetodoPagoByDescripcion(ctx context.Context, descripcion string, restaurante uuid.UUID) (*model.MetodoPago, error)
	// FindOrCreateMetodoPago auto-creates the method when missing. Used for
	// "pendiente_caja", the placeholder method assigned to table orders that
	// will be settled at close time.
	FindOrCreateMetodoPago(ctx context.Context, descripcion string, restaurante uuid.UUID) (*model.MetodoPago, error)
	ListMetodosPago(ctx context.Context, restaurante uuid.UUID) ([]model.MetodoPago, error)

	FindVendedorByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Vendedor, error)
	FindVendedorByUsername(ctx context.Context, username string, restaurante uuid.UUID) (*model.Vendedor, error)
	// FindVendedorPorCredencial resolves a login username across tenants.
	FindVendedorPorCredencial(ctx context.Context, username string) (*model.Vendedor, error)
	CrearVendedor(ctx context.Context, v *model.Vendedor) error
	ListVendedores(ctx context.Context, restaurante uuid.UUID, incluirInactivos bool) ([]model.Vendedor, error)
	UpdateVendedor(ctx context.Context, v *model.Vendedor) error
	SetVendedorActivo(ctx context.Context, id, restaurante uuid.UUID, activo bool) error
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) FindRestauranteByID(ctx context.Context, id uuid.UUID) (*model.Restaurante, error) {
	var rest model.Restaurante
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rest).Error
	return &rest, err
}

func (r *catalogoRepo) FindSucursalByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).
		Where("id = ? AND id_restaurante = ? AND activo = true", id, restaurante).
		First(&s).Error
	return &s, err
}

func (r *catalogoRepo) ListSucursales(ctx context.Context, restaurante uuid.UUID) ([]model.Sucursal, error) {
	var sucursales []model.Sucursal
	err := r.db.WithContext(ctx).
		Where("id_restaurante = ? AND activo = true", restaurante).
		Order("nombre ASC").
		Find(&sucursales).Error
	return sucursales, err
}

func (r *catalogoRepo) FindMetodoPagoByDescripcion(ctx context.Context, descripcion string, restaurante uuid.UUID) (*model.MetodoPago, error) {
	var m model.MetodoPago
	err := r.db.WithContext(ctx).
		Where("descripcion = ? AND id_restaurante = ? AND activo = true", descripcion, restaurante).
		First(&m).Error
	return &m, err
}

func (r *catalogoRepo) FindOrCreateMetodoPago(ctx context.Context, descripcion string, restaurante uuid.UUID) (*model.MetodoPago, error) {
	m, err := r.FindMetodoPagoByDescripcion(ctx, descripcion, restaurante)
	if err == nil {
		return m, nil
	}
	nuevo := &model.MetodoPago{IDRestaurante: restaurante, Descripcion: descripcion, Activo: true}
	if err := r.db.WithContext(ctx).Create(nuevo).Error; err != nil {
		return nil, err
	}
	return nuevo, nil
}

func (r *catalogoRepo) ListMetodosPago(ctx context.Context, restaurante uuid.UUID) ([]model.MetodoPago, error) {
	var metodos []model.MetodoPago
	err := r.db.WithContext(ctx).
		Where("id_restaurante = ? AND activo = true", restaurante).
		Find(&metodos).Error
	return metodos, err
}

func (r *catalogoRepo) FindVendedorByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Vendedor, error) {
	var v model.Vendedor
	err := r.db.WithContext(ctx).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		First(&v).Error
	return &v, err
}

func (r *catalogoRepo) FindVendedorByUsername(ctx context.Context, username string, restaurante uuid.UUID) (*model.Vendedor, error) {
	var v model.Vendedor
	err := r.db.WithContext(ctx).
		Where("username = ? AND id_restaurante = ?", username, restaurante).
		First(&v).Error
	return &v, err
}

func (r *catalogoRepo) FindVendedorPorCredencial(ctx context.Context, username string) (*model.Vendedor, error) {
	var v model.Vendedor
	err := r.db.WithContext(ctx).
		Where("username = ? AND activo = true", username).
		First(&v).Error
	return &v, err
}

func (r *catalogoRepo) CrearVendedor(ctx context.Context, v *model.Vendedor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *catalogoRepo) ListVendedores(ctx context.Context, restaurante uuid.UUID, incluirInactivos bool) ([]model.Vendedor, error) {
	q := r.db.WithContext(ctx).Where("id_restaurante = ?", restaurante)
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	var vendedores []model.Vendedor
	err := q.Order("nombre ASC").Find(&vendedores).Error
	return vendedores, err
}

func (r *catalogoRepo) UpdateVendedor(ctx context.Context, v *model.Vendedor) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *catalogoRepo) SetVendedorActivo(ctx context.Context, id, restaurante uuid.UUID, activo bool) error {
	return r.db.WithContext(ctx).Model(&model.Vendedor{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("activo", activo).Error
}
