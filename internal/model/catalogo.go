package model

import (
	"time"

	"github.com/google/uuid"
)

// Restaurante is the tenant root. Every other entity carries IDRestaurante
// and every query filters by it; no entity crosses tenant boundaries.
type Restaurante struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (Restaurante) TableName() string { return "restaurantes" }

// Sucursal is a branch of a restaurante. Mesas, ventas and prefacturas are
// further scoped by sucursal.
type Sucursal struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre        string    `gorm:"not null"`
	Ciudad        string
	Activo        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
}

func (Sucursal) TableName() string { return "sucursales" }

// Vendedor is a staff account (cajero, mesero, cocinero, admin). It doubles
// as the login principal: Username/PasswordHash feed the JWT flow.
type Vendedor struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID `gorm:"type:uuid;not null;index:idx_vendedores_username,unique"`
	IDSucursal    uuid.UUID `gorm:"type:uuid;not null"`
	Nombre        string    `gorm:"not null"`
	Username      string    `gorm:"not null;index:idx_vendedores_username,unique"`
	PasswordHash  string    `gorm:"not null"`
	Rol           string    `gorm:"type:varchar(20);not null;default:'cajero'"`
	Activo        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Vendedor) TableName() string { return "vendedores" }

// MetodoPago is a tenant-scoped payment method referenced by ventas.
type MetodoPago struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID `gorm:"type:uuid;not null;index"`
	Descripcion   string    `gorm:"not null"`
	Activo        bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
}

func (MetodoPago) TableName() string { return "metodos_pago" }

// Reserva blocks a mesa ahead of time; a mesa with pending reservas cannot
// be deleted and may sit in estado "reservada".
type Reserva struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IDRestaurante uuid.UUID `gorm:"type:uuid;not null;index"`
	IDSucursal    uuid.UUID `gorm:"type:uuid;not null"`
	IDMesa        uuid.UUID `gorm:"type:uuid;not null;index"`
	NombreCliente string    `gorm:"not null"`
	Telefono      string
	FechaReserva  time.Time `gorm:"not null"`
	Estado        string    `gorm:"type:varchar(20);not null;default:'pendiente'"`
	CreatedAt     time.Time
}

func (Reserva) TableName() string { return "reservas" }
