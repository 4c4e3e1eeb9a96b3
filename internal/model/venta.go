package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is an append-only sale record. Estado drives the kitchen workflow
// (see EstadoVenta); rows are never deleted, cancellations are a state.
//
// Invariant: every venta created through order intake has at least one
// DetalleVenta and Total equals the sum of line subtotals, enforced at
// creation time by the pedido service. The settlement venta written when a
// mesa is invoiced carries the session total and no lines of its own (the
// lines live on the session's ventas).
type Venta struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID       `gorm:"type:uuid;not null;index"`
	IDSucursal    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Fecha         time.Time       `gorm:"not null;default:now();index"`
	IDVendedor    uuid.UUID       `gorm:"type:uuid;not null"`
	IDPago        uuid.UUID       `gorm:"type:uuid;not null"`
	TipoServicio  TipoServicio    `gorm:"type:varchar(20);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// IDMesa / MesaNumero are set only for tipo_servicio = Mesa.
	IDMesa     *uuid.UUID  `gorm:"type:uuid;index"`
	MesaNumero *int
	Estado     EstadoVenta `gorm:"type:varchar(30);not null;default:'recibido';index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Detalles []DetalleVenta `gorm:"foreignKey:IDVenta"`
	Vendedor *Vendedor      `gorm:"foreignKey:IDVendedor"`
	Pago     *MetodoPago    `gorm:"foreignKey:IDPago"`
}

func (Venta) TableName() string { return "ventas" }

// DetalleVenta is a sale line item. Cantidad must be positive; Subtotal is
// computed as Cantidad × PrecioUnitario at creation. Creating a line inside
// the sale transaction triggers the clamped stock decrement on the product.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante  uuid.UUID       `gorm:"type:uuid;not null;index"`
	IDVenta        uuid.UUID       `gorm:"type:uuid;not null;index"`
	IDProducto     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observaciones  *string
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:IDProducto"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }

// Factura is an optional fiscal invoice record created when a mesa is closed
// with invoice data.
type Factura struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID       `gorm:"type:uuid;not null;index"`
	IDVenta       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Numero        string          `gorm:"type:varchar(40);not null"`
	NITCliente    string          `gorm:"type:varchar(30);not null;column:nit_cliente"`
	RazonSocial   string          `gorm:"not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha         time.Time       `gorm:"not null;default:now()"`
}

func (Factura) TableName() string { return "facturas" }
