package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable menu item.
//
// Invariant: StockActual >= 0 always. The decrement path clamps server-side
// (GREATEST(0, stock_actual - qty)); overselling is absorbed, not rejected.
type Producto struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID       `gorm:"type:uuid;not null;index"`
	Nombre        string          `gorm:"index;not null"`
	Precio        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IDCategoria   *uuid.UUID      `gorm:"type:uuid;index"`
	StockActual   int             `gorm:"not null;default:0"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Categoria *CategoriaProducto `gorm:"foreignKey:IDCategoria"`
}

func (Producto) TableName() string { return "productos" }

// CategoriaProducto groups menu items for the dashboard.
type CategoriaProducto struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre        string    `gorm:"not null"`
	Activo        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
}

func (CategoriaProducto) TableName() string { return "categorias_producto" }
