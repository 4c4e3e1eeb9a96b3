package dto

import "github.com/shopspring/decimal"

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha      string `form:"fecha"`       // YYYY-MM-DD; empty = today
	Estado     string `form:"estado"`      // kitchen state | cerrada | all
	IDSucursal string `form:"id_sucursal"` // optional branch filter
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListItem struct {
	ID           string            `json:"id"`
	Fecha        string            `json:"fecha"`
	Vendedor     string            `json:"vendedor"`
	MetodoPago   string            `json:"metodo_pago"`
	TipoServicio string            `json:"tipo_servicio"`
	MesaNumero   *int              `json:"mesa_numero,omitempty"`
	Total        decimal.Decimal   `json:"total"`
	Estado       string            `json:"estado"`
	Detalles     []DetalleResponse `json:"detalles"`
}

type VentaListResponse struct {
	Data  []VentaListItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ActualizarEstadoRequest advances the kitchen workflow of a venta.
type ActualizarEstadoRequest struct {
	Estado string `json:"estado" validate:"required"`
}

type EstadoVentaResponse struct {
	IDVenta    string `json:"id_venta"`
	Estado     string `json:"estado"`
	MesaNumero *int   `json:"mesa_numero,omitempty"`
}
