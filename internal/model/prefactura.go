package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prefactura is the running tab of an open mesa session. At most one abierta
// prefactura may exist per mesa at a time; a partial unique index on
// (id_mesa) WHERE estado = 'abierta' backs the application-level guard.
//
// TotalAcumulado is frozen when the prefactura is closed: to the session
// total when the mesa is invoiced, or to 0 when the mesa is liberated
// without billing.
type Prefactura struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID `gorm:"type:uuid;not null;index"`
	IDMesa        uuid.UUID `gorm:"type:uuid;not null;index"`
	// IDVentaPrincipal links the first venta of the session, when known.
	IDVentaPrincipal *uuid.UUID       `gorm:"type:uuid"`
	TotalAcumulado   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Estado           EstadoPrefactura `gorm:"type:varchar(20);not null;default:'abierta'"`
	FechaApertura    time.Time        `gorm:"not null;default:now()"`
	FechaCierre      *time.Time

	Mesa *Mesa `gorm:"foreignKey:IDMesa"`
}

func (Prefactura) TableName() string { return "prefacturas" }
