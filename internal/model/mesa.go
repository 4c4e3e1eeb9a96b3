package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mesa is the persisted state of a dining table. Numero is the display number
// shown to staff and is unique per sucursal.
//
// Invariant: Estado == libre ⇒ TotalAcumulado == 0 ∧ IDVentaActual == nil.
// The pedido/mesa services are the only writers of Estado.
type Mesa struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID  `gorm:"type:uuid;not null;index:idx_mesas_numero_sucursal,unique"`
	IDSucursal    uuid.UUID  `gorm:"type:uuid;not null;index:idx_mesas_numero_sucursal,unique"`
	Numero        int        `gorm:"not null;index:idx_mesas_numero_sucursal,unique"`
	Capacidad     int        `gorm:"not null;default:4"`
	Estado        EstadoMesa `gorm:"type:varchar(20);not null;default:'libre'"`
	// TotalAcumulado is the running session total. Updated only via
	// server-side "total_acumulado + delta" expressions to avoid lost
	// updates between concurrent orders on the same mesa.
	TotalAcumulado decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// IDVentaActual references the most recent venta of the open session.
	IDVentaActual  *uuid.UUID `gorm:"type:uuid"`
	IDMeseroActual *uuid.UUID `gorm:"type:uuid"`
	HoraApertura   *time.Time
	HoraCierre     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	VentaActual *Venta `gorm:"foreignKey:IDVentaActual"`
}

// TableName overrides GORM's default pluralization.
func (Mesa) TableName() string { return "mesas" }
