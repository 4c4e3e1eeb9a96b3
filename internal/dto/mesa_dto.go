package dto

import "github.com/shopspring/decimal"

type CrearMesaRequest struct {
	Numero     int     `json:"numero"      validate:"required,min=1"`
	Capacidad  int     `json:"capacidad"   validate:"omitempty,min=1"`
	IDSucursal *string `json:"id_sucursal" validate:"omitempty,uuid"`
}

type CambiarEstadoMesaRequest struct {
	Estado string `json:"estado" validate:"required,oneof=libre reservada mantenimiento"`
}

type AbrirMesaRequest struct {
	Numero     int     `json:"numero"      validate:"required,min=1"`
	IDSucursal *string `json:"id_sucursal" validate:"omitempty,uuid"`
}

type MesaResponse struct {
	ID             string          `json:"id"`
	Numero         int             `json:"numero"`
	Capacidad      int             `json:"capacidad"`
	Estado         string          `json:"estado"`
	TotalAcumulado decimal.Decimal `json:"total_acumulado"`
	IDVentaActual  *string         `json:"id_venta_actual,omitempty"`
	HoraApertura   *string         `json:"hora_apertura,omitempty"`
	HoraCierre     *string         `json:"hora_cierre,omitempty"`
}

type MesaListResponse struct {
	Data []MesaResponse `json:"data"`
	// Fuente indicates whether the snapshot came from the redis cache or a
	// direct read, mainly for the dashboard's staleness indicator.
	Fuente string `json:"fuente"`
}

// PrefacturaResponse is the running-tab view shown before asking for payment:
// the open prefactura plus every venta of the current session.
type PrefacturaResponse struct {
	ID             string           `json:"id"`
	IDMesa         string           `json:"id_mesa"`
	MesaNumero     int              `json:"mesa_numero"`
	Estado         string           `json:"estado"`
	TotalAcumulado decimal.Decimal  `json:"total_acumulado"`
	FechaApertura  string           `json:"fecha_apertura"`
	Ventas         []PedidoResponse `json:"ventas"`
}
