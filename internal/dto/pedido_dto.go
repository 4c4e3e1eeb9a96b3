package dto

import "github.com/shopspring/decimal"

// ─── Order intake (POST /v1/ventas) ─────────────────────────────────────────

type ItemPedidoRequest struct {
	IDProducto    string  `json:"id_producto"  validate:"required,uuid"`
	Cantidad      int     `json:"cantidad"     validate:"required,min=1"`
	Observaciones *string `json:"observaciones"`
}

// RegistrarPedidoRequest is the order-entry payload. For tipo_servicio=Mesa a
// mesa_numero is required; Delivery / Para Llevar skip all mesa handling.
// id_sucursal may be omitted, in which case the JWT claim's sucursal is used.
type RegistrarPedidoRequest struct {
	Items        []ItemPedidoRequest `json:"items"         validate:"required,min=1,dive"`
	TipoServicio string              `json:"tipo_servicio" validate:"required,oneof=Mesa Delivery 'Para Llevar'"`
	MetodoPago   string              `json:"metodo_pago"   validate:"required"`
	MesaNumero   *int                `json:"mesa_numero"   validate:"omitempty,min=1"`
	IDSucursal   *string             `json:"id_sucursal"   validate:"omitempty,uuid"`
}

type DetalleResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Observaciones  *string         `json:"observaciones,omitempty"`
}

type PedidoResponse struct {
	IDVenta      string            `json:"id_venta"`
	Estado       string            `json:"estado"`
	TipoServicio string            `json:"tipo_servicio"`
	Total        decimal.Decimal   `json:"total"`
	Detalles     []DetalleResponse `json:"detalles"`
	// Mesa fields are populated only for table service.
	MesaNumero     *int             `json:"mesa_numero,omitempty"`
	EstadoMesa     string           `json:"estado_mesa,omitempty"`
	TotalAcumulado *decimal.Decimal `json:"total_acumulado,omitempty"`
	CreatedAt      string           `json:"created_at"`
}

// ─── Close table with invoice (POST /v1/ventas/cerrar-mesa) ─────────────────

type InvoiceData struct {
	NIT         string `json:"nit"          validate:"required"`
	RazonSocial string `json:"razon_social" validate:"required"`
	Email       string `json:"email"        validate:"omitempty,email"`
}

type CerrarMesaRequest struct {
	IDMesa      string       `json:"id_mesa"     validate:"required,uuid"`
	MetodoPago  string       `json:"metodo_pago" validate:"required"`
	InvoiceData *InvoiceData `json:"invoice_data" validate:"omitempty"`
}

type CerrarMesaResponse struct {
	Mesa       MesaResponse     `json:"mesa"`
	VentaFinal PedidoResponse   `json:"venta_final"`
	TotalFinal decimal.Decimal  `json:"total_final"`
	Factura    *FacturaResponse `json:"factura,omitempty"`
}

type FacturaResponse struct {
	ID          string          `json:"id"`
	Numero      string          `json:"numero"`
	NITCliente  string          `json:"nit_cliente"`
	RazonSocial string          `json:"razon_social"`
	Total       decimal.Decimal `json:"total"`
	Fecha       string          `json:"fecha"`
}
