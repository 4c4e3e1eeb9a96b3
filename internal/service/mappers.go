package service

import (
	"time"

	"mentapos/internal/dto"
	"mentapos/internal/model"
)

// DTO mappers shared by the mesa and pedido services.

func mesaToResponse(m *model.Mesa) dto.MesaResponse {
	resp := dto.MesaResponse{
		ID:             m.ID.String(),
		Numero:         m.Numero,
		Capacidad:      m.Capacidad,
		Estado:         string(m.Estado),
		TotalAcumulado: m.TotalAcumulado,
	}
	if m.IDVentaActual != nil {
		id := m.IDVentaActual.String()
		resp.IDVentaActual = &id
	}
	if m.HoraApertura != nil {
		hora := m.HoraApertura.Format(time.RFC3339)
		resp.HoraApertura = &hora
	}
	if m.HoraCierre != nil {
		hora := m.HoraCierre.Format(time.RFC3339)
		resp.HoraCierre = &hora
	}
	return resp
}

func ventaToPedidoResponse(v *model.Venta) dto.PedidoResponse {
	detalles := make([]dto.DetalleResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		detalles = append(detalles, dto.DetalleResponse{
			Producto:       nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
			Observaciones:  d.Observaciones,
		})
	}
	return dto.PedidoResponse{
		IDVenta:      v.ID.String(),
		Estado:       string(v.Estado),
		TipoServicio: string(v.TipoServicio),
		Total:        v.Total,
		Detalles:     detalles,
		MesaNumero:   v.MesaNumero,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
}
