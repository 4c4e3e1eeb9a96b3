package repository

import (
	"context"

	"mentapos/internal/dto"
	"mentapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, restaurante uuid.UUID, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id, restaurante uuid.UUID) error
	Reactivar(ctx context.Context, id, restaurante uuid.UUID) error
	ListCategorias(ctx context.Context, restaurante uuid.UUID) ([]model.CategoriaProducto, error)

	// DescontarStockClampTx runs the clamped decrement inside the sale
	// transaction as a single server-side statement and returns the new
	// stock, so concurrent sales of the same product cannot lose an update
	// and stock can never go negative.
	DescontarStockClampTx(tx *gorm.DB, id, restaurante uuid.UUID, cantidad int) (int, error)
	// AjustarStock applies a manual delta, clamped at zero.
	AjustarStock(ctx context.Context, id, restaurante uuid.UUID, delta int) (int, error)

	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id, restaurante uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, restaurante uuid.UUID, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id_restaurante = ?", restaurante)

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.IDCategoria != "" {
		q = q.Where("id_categoria = ?", filter.IDCategoria)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Categoria").Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id, restaurante uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, id, restaurante uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND id_restaurante = ?", id, restaurante).
		Update("activo", true).Error
}

func (r *productoRepo) ListCategorias(ctx context.Context, restaurante uuid.UUID) ([]model.CategoriaProducto, error) {
	var categorias []model.CategoriaProducto
	err := r.db.WithContext(ctx).
		Where("id_restaurante = ? AND activo = true", restaurante).
		Order("nombre ASC").
		Find(&categorias).Error
	return categorias, err
}

func (r *productoRepo) DescontarStockClampTx(tx *gorm.DB, id, restaurante uuid.UUID, cantidad int) (int, error) {
	var nuevoStock int
	err := tx.Raw(`
		UPDATE productos
		SET stock_actual = GREATEST(0, stock_actual - ?)
		WHERE id = ? AND id_restaurante = ?
		RETURNING stock_actual`,
		cantidad, id, restaurante).Scan(&nuevoStock).Error
	return nuevoStock, err
}

func (r *productoRepo) AjustarStock(ctx context.Context, id, restaurante uuid.UUID, delta int) (int, error) {
	var nuevoStock int
	err := r.db.WithContext(ctx).Raw(`
		UPDATE productos
		SET stock_actual = GREATEST(0, stock_actual + ?)
		WHERE id = ? AND id_restaurante = ? AND activo = true
		RETURNING stock_actual`,
		delta, id, restaurante).Scan(&nuevoStock).Error
	return nuevoStock, err
}
