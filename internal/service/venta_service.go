package service

import (
	"context"
	"errors"

	"mentapos/internal/apierror"
	"mentapos/internal/dto"
	"mentapos/internal/model"
	"mentapos/internal/repository"
	"mentapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// VentaService reads the sale ledger and advances the kitchen workflow.
// Ventas are append-only records: the only mutable column is estado, and
// every change is validated against the whitelist plus the transition graph.
type VentaService interface {
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VentaListItem, error)
	List(ctx context.Context, actor Actor, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	// PendientesCocina is the HTTP fallback for kitchen displays without a
	// live websocket: open orders, oldest first.
	PendientesCocina(ctx context.Context, actor Actor, sucursalID *uuid.UUID) ([]dto.VentaListItem, error)
	ActualizarEstado(ctx context.Context, actor Actor, id uuid.UUID, estado string) (*dto.EstadoVentaResponse, error)
}

type ventaService struct {
	ventas     repository.VentaRepository
	dispatcher *worker.Dispatcher
}

func NewVentaService(ventas repository.VentaRepository, dispatcher *worker.Dispatcher) VentaService {
	return &ventaService{ventas: ventas, dispatcher: dispatcher}
}

func (s *ventaService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VentaListItem, error) {
	venta, err := s.ventas.FindByID(ctx, id, actor.IDRestaurante)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Venta no encontrada")
		}
		return nil, apierror.Persistence(err)
	}
	item := ventaToListItem(venta)
	return &item, nil
}

func (s *ventaService) List(ctx context.Context, actor Actor, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Estado != "" && filter.Estado != "all" {
		e := model.EstadoVenta(filter.Estado)
		if !e.EnWhitelist() && e != model.VentaCerrada {
			return nil, apierror.Validationf("estado de filtro invalido: %q", filter.Estado)
		}
	}

	ventas, total, err := s.ventas.List(ctx, actor.IDRestaurante, filter)
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	data := make([]dto.VentaListItem, 0, len(ventas))
	for i := range ventas {
		data = append(data, ventaToListItem(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) PendientesCocina(ctx context.Context, actor Actor, sucursalID *uuid.UUID) ([]dto.VentaListItem, error) {
	sucursal := actor.IDSucursal
	if sucursalID != nil {
		sucursal = *sucursalID
	}
	ventas, err := s.ventas.ListPendientesCocina(ctx, sucursal, actor.IDRestaurante)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	data := make([]dto.VentaListItem, 0, len(ventas))
	for i := range ventas {
		data = append(data, ventaToListItem(&ventas[i]))
	}
	return data, nil
}

func (s *ventaService) ActualizarEstado(ctx context.Context, actor Actor, id uuid.UUID, estado string) (*dto.EstadoVentaResponse, error) {
	destino := model.EstadoVenta(estado)
	if !destino.EnWhitelist() {
		return nil, apierror.Validationf("Estado %q no permitido", estado)
	}

	venta, err := s.ventas.FindByID(ctx, id, actor.IDRestaurante)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Venta no encontrada")
		}
		return nil, apierror.Persistence(err)
	}

	if venta.Estado.Terminal() {
		return nil, apierror.Conflictf(string(venta.Estado),
			"La venta ya esta en estado terminal %q", venta.Estado)
	}
	if !venta.Estado.PuedeTransicionar(destino) {
		return nil, apierror.Conflictf(string(venta.Estado),
			"Transicion %s → %s no permitida", venta.Estado, destino)
	}

	if err := s.ventas.UpdateEstado(ctx, id, actor.IDRestaurante, destino); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Venta no encontrada")
		}
		return nil, apierror.Persistence(err)
	}

	if s.dispatcher != nil {
		ev := worker.EventoCocina{
			Evento:        "estado_actualizado",
			IDVenta:       venta.ID.String(),
			Estado:        string(destino),
			MesaNumero:    venta.MesaNumero,
			IDSucursal:    venta.IDSucursal.String(),
			IDRestaurante: actor.IDRestaurante.String(),
		}
		if err := s.dispatcher.EnqueueEventoCocina(ctx, ev); err != nil {
			log.Warn().Err(err).Msg("evento de cocina no encolado")
		}
	}
	log.Info().
		Str("venta", venta.ID.String()).
		Str("de", string(venta.Estado)).
		Str("a", string(destino)).
		Str("usuario", actor.Username).
		Msg("estado de venta actualizado")

	return &dto.EstadoVentaResponse{
		IDVenta:    venta.ID.String(),
		Estado:     string(destino),
		MesaNumero: venta.MesaNumero,
	}, nil
}

func ventaToListItem(v *model.Venta) dto.VentaListItem {
	item := dto.VentaListItem{
		ID:           v.ID.String(),
		Fecha:        v.Fecha.Format("2006-01-02 15:04:05"),
		TipoServicio: string(v.TipoServicio),
		MesaNumero:   v.MesaNumero,
		Total:        v.Total,
		Estado:       string(v.Estado),
		Detalles:     make([]dto.DetalleResponse, 0, len(v.Detalles)),
	}
	if v.Vendedor != nil {
		item.Vendedor = v.Vendedor.Nombre
	}
	if v.Pago != nil {
		item.MetodoPago = v.Pago.Descripcion
	}
	for _, d := range v.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		item.Detalles = append(item.Detalles, dto.DetalleResponse{
			Producto:       nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
			Observaciones:  d.Observaciones,
		})
	}
	return item
}
