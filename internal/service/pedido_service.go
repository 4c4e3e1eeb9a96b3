package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentapos/internal/apierror"
	"mentapos/internal/dto"
	"mentapos/internal/infra"
	"mentapos/internal/model"
	"mentapos/internal/repository"
	"mentapos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MetodoPendienteCaja is the placeholder payment method assigned to table
// orders. The real method is chosen when the mesa is invoiced.
const MetodoPendienteCaja = "pendiente_caja"

// PedidoService is the order-intake orchestrator. RegistrarPedido and
// CerrarMesaConFactura each run as ONE transaction touching mesa, prefactura,
// venta and stock, so a failure in any step leaves no partial state behind.
// Side effects that may not roll back (cache invalidation, kitchen events,
// receipt mail) happen strictly after commit.
type PedidoService interface {
	RegistrarPedido(ctx context.Context, actor Actor, req dto.RegistrarPedidoRequest) (*dto.PedidoResponse, error)
	// CerrarMesaConFactura settles an occupied mesa: session orders close,
	// a settlement venta records the charge, the prefactura freezes at the
	// session total, the mesa returns to libre, and optionally a factura
	// is issued and the receipt mailed.
	CerrarMesaConFactura(ctx context.Context, actor Actor, req dto.CerrarMesaRequest) (*dto.CerrarMesaResponse, error)
}

type pedidoService struct {
	mesas       repository.MesaRepository
	prefacturas repository.PrefacturaRepository
	ventas      repository.VentaRepository
	productos   repository.ProductoRepository
	catalogo    repository.CatalogoRepository
	inventario  InventarioService
	dispatcher  *worker.Dispatcher
	rdb         *redis.Client
	pdfPath     string
}

func NewPedidoService(
	mesas repository.MesaRepository,
	prefacturas repository.PrefacturaRepository,
	ventas repository.VentaRepository,
	productos repository.ProductoRepository,
	catalogo repository.CatalogoRepository,
	inventario InventarioService,
	dispatcher *worker.Dispatcher,
	rdb *redis.Client,
	pdfPath string,
) PedidoService {
	return &pedidoService{
		mesas:       mesas,
		prefacturas: prefacturas,
		ventas:      ventas,
		productos:   productos,
		catalogo:    catalogo,
		inventario:  inventario,
		dispatcher:  dispatcher,
		rdb:         rdb,
		pdfPath:     pdfPath,
	}
}

// lineaPedido is a resolved order line: product loaded, price snapshotted.
type lineaPedido struct {
	producto *model.Producto
	cantidad int
	obs      *string
	subtotal decimal.Decimal
}

func (s *pedidoService) RegistrarPedido(ctx context.Context, actor Actor, req dto.RegistrarPedidoRequest) (*dto.PedidoResponse, error) {
	tipo, err := model.ParseTipoServicio(req.TipoServicio)
	if err != nil {
		return nil, apierror.Validationf("tipo_servicio invalido: %q", req.TipoServicio)
	}

	sucursal, err := s.resolverSucursal(ctx, actor, req.IDSucursal)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalogo.FindVendedorByID(ctx, actor.IDVendedor, actor.IDRestaurante); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Vendedor no encontrado o inactivo")
		}
		return nil, apierror.Persistence(err)
	}

	// Table orders always settle later at caja; the request's metodo_pago
	// only matters for takeaway/delivery.
	descripcionPago := req.MetodoPago
	if tipo == model.ServicioMesa {
		descripcionPago = MetodoPendienteCaja
	}
	metodoPago, err := s.resolverMetodoPago(ctx, actor, descripcionPago)
	if err != nil {
		return nil, err
	}

	lineas, total, err := s.resolverLineas(ctx, actor, req.Items)
	if err != nil {
		return nil, err
	}

	var mesa *model.Mesa
	if tipo == model.ServicioMesa {
		if req.MesaNumero == nil {
			return nil, apierror.Validationf("mesa_numero es requerido para tipo_servicio=Mesa")
		}
		mesa, err = s.buscarMesaPorNumero(ctx, actor, *req.MesaNumero, sucursal)
		if err != nil {
			return nil, err
		}
		// Intake is valid on a free table (it opens the session) or an
		// occupied one (it accumulates). Anything else is a conflict.
		if mesa.Estado != model.MesaLibre && mesa.Estado != model.MesaEnUso {
			return nil, apierror.Conflictf(string(mesa.Estado),
				"La mesa %d no admite pedidos: %s", mesa.Numero, mesa.Estado.Descripcion())
		}
	}

	venta := &model.Venta{
		IDRestaurante: actor.IDRestaurante,
		IDSucursal:    sucursal,
		Fecha:         time.Now(),
		IDVendedor:    actor.IDVendedor,
		IDPago:        metodoPago.ID,
		TipoServicio:  tipo,
		Total:         total,
		Estado:        model.VentaRecibido,
	}
	if mesa != nil {
		venta.IDMesa = &mesa.ID
		numero := mesa.Numero
		venta.MesaNumero = &numero
	}

	err = runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		if mesa != nil {
			if mesa.Estado == model.MesaLibre {
				if err := s.abrirSesionTx(tx, actor, mesa, sucursal); err != nil {
					return err
				}
			}
		}

		venta.Detalles = make([]model.DetalleVenta, 0, len(lineas))
		for _, l := range lineas {
			venta.Detalles = append(venta.Detalles, model.DetalleVenta{
				IDRestaurante:  actor.IDRestaurante,
				IDProducto:     l.producto.ID,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.producto.Precio,
				Subtotal:       l.subtotal,
				Observaciones:  l.obs,
			})
		}
		if err := s.ventas.CrearTx(tx, venta); err != nil {
			return err
		}

		if mesa != nil {
			if err := s.mesas.AcumularTotalTx(tx, mesa.ID, actor.IDRestaurante, total); err != nil {
				return err
			}
			if err := s.mesas.AsignarVentaActualTx(tx, mesa.ID, actor.IDRestaurante, venta.ID); err != nil {
				return err
			}
			if err := s.mesas.AsignarMeseroTx(tx, mesa.ID, actor.IDRestaurante, actor.IDVendedor); err != nil {
				return err
			}
			pre, err := s.prefacturas.FindAbiertaByMesaTx(tx, mesa.ID, actor.IDRestaurante)
			if err != nil {
				return err
			}
			if err := s.prefacturas.ActualizarTotalTx(tx, pre.ID, actor.IDRestaurante, total); err != nil {
				return err
			}
		}

		for _, l := range lineas {
			if _, err := s.inventario.DescontarStockTx(ctx, tx, l.producto.ID, actor.IDRestaurante, l.cantidad); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pe *apierror.PersistenceError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, apierror.Persistence(err)
	}

	// Post-commit side effects: best-effort, never fail the request.
	if mesa != nil {
		InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, sucursal)
	}
	s.notificarCocina(ctx, worker.EventoCocina{
		Evento:        "pedido_creado",
		IDVenta:       venta.ID.String(),
		Estado:        string(venta.Estado),
		MesaNumero:    venta.MesaNumero,
		IDSucursal:    sucursal.String(),
		IDRestaurante: actor.IDRestaurante.String(),
	})
	log.Info().
		Str("venta", venta.ID.String()).
		Str("tipo", string(tipo)).
		Str("total", total.StringFixed(2)).
		Str("vendedor", actor.Username).
		Msg("pedido registrado")

	resp := ventaToPedidoResponse(venta)
	// Detalles on the fresh venta lack the Producto preload; fill names from
	// the already-resolved lines.
	for i, l := range lineas {
		resp.Detalles[i].Producto = l.producto.Nombre
	}
	if mesa != nil {
		if actual, err := s.mesas.FindByID(ctx, mesa.ID, actor.IDRestaurante); err == nil {
			resp.EstadoMesa = string(actual.Estado)
			resp.TotalAcumulado = &actual.TotalAcumulado
		}
	}
	return &resp, nil
}

func (s *pedidoService) CerrarMesaConFactura(ctx context.Context, actor Actor, req dto.CerrarMesaRequest) (*dto.CerrarMesaResponse, error) {
	mesaID, err := uuid.Parse(req.IDMesa)
	if err != nil {
		return nil, apierror.Validationf("id_mesa invalido")
	}
	mesa, err := s.mesas.FindByID(ctx, mesaID, actor.IDRestaurante)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Mesa no encontrada")
		}
		return nil, apierror.Persistence(err)
	}
	if mesa.Estado != model.MesaEnUso && mesa.Estado != model.MesaPendienteCobro {
		return nil, apierror.Conflictf(string(mesa.Estado),
			"La mesa %d no tiene una sesion cobrable: %s", mesa.Numero, mesa.Estado.Descripcion())
	}

	metodoPago, err := s.resolverMetodoPago(ctx, actor, req.MetodoPago)
	if err != nil {
		return nil, err
	}
	if metodoPago.Descripcion == MetodoPendienteCaja {
		return nil, apierror.Validationf("El cierre requiere un metodo de pago real, no %q", MetodoPendienteCaja)
	}

	totalFinal := mesa.TotalAcumulado

	// Session lines are gathered before the close settles them, so the
	// receipt can still itemize them.
	var detalleSesion []model.DetalleVenta
	if mesa.HoraApertura != nil {
		if sesion, err := s.ventas.ListSesionMesa(ctx, mesa.ID, actor.IDRestaurante, *mesa.HoraApertura); err == nil {
			for _, v := range sesion {
				detalleSesion = append(detalleSesion, v.Detalles...)
			}
		}
	}

	numero := mesa.Numero
	ventaFinal := &model.Venta{
		IDRestaurante: actor.IDRestaurante,
		IDSucursal:    mesa.IDSucursal,
		Fecha:         time.Now(),
		IDVendedor:    actor.IDVendedor,
		IDPago:        metodoPago.ID,
		TipoServicio:  model.ServicioMesa,
		Total:         totalFinal,
		IDMesa:        &mesa.ID,
		MesaNumero:    &numero,
		Estado:        model.VentaCerrada,
	}
	var factura *model.Factura

	err = runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		if err := s.ventas.CerrarAbiertasDeMesaTx(tx, mesa.Numero, mesa.IDSucursal, actor.IDRestaurante); err != nil {
			return err
		}
		if err := s.ventas.CrearTx(tx, ventaFinal); err != nil {
			return err
		}

		if req.InvoiceData != nil {
			factura = &model.Factura{
				IDRestaurante: actor.IDRestaurante,
				IDVenta:       ventaFinal.ID,
				Numero:        fmt.Sprintf("F-%s-%d", time.Now().Format("20060102150405"), mesa.Numero),
				NITCliente:    req.InvoiceData.NIT,
				RazonSocial:   req.InvoiceData.RazonSocial,
				Total:         totalFinal,
				Fecha:         time.Now(),
			}
			if err := s.ventas.CrearFacturaTx(tx, factura); err != nil {
				return err
			}
		}

		if pre, err := s.prefacturas.FindAbiertaByMesaTx(tx, mesa.ID, actor.IDRestaurante); err == nil {
			if err := s.prefacturas.CerrarTx(tx, pre.ID, actor.IDRestaurante, totalFinal); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return s.mesas.ResetALibreTx(tx, mesa.ID, actor.IDRestaurante)
	})
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, mesa.IDSucursal)
	s.notificarCocina(ctx, worker.EventoCocina{
		Evento:        "mesa_actualizada",
		MesaNumero:    &numero,
		Estado:        string(model.MesaLibre),
		IDSucursal:    mesa.IDSucursal.String(),
		IDRestaurante: actor.IDRestaurante.String(),
	})
	log.Info().
		Int("mesa", mesa.Numero).
		Str("total", totalFinal.StringFixed(2)).
		Str("metodo_pago", metodoPago.Descripcion).
		Str("usuario", actor.Username).
		Msg("mesa cerrada y facturada")

	// Receipt: rendered from the session's lines, mailed when the customer
	// left an address on the invoice.
	if req.InvoiceData != nil && req.InvoiceData.Email != "" {
		ventaFinal.Detalles = detalleSesion
		s.enviarRecibo(ctx, actor, ventaFinal, metodoPago.Descripcion, totalFinal, req.InvoiceData.Email)
	}

	mesaActual, err := s.mesas.FindByID(ctx, mesa.ID, actor.IDRestaurante)
	if err != nil {
		mesaActual = mesa
	}
	resp := &dto.CerrarMesaResponse{
		Mesa:       mesaToResponse(mesaActual),
		VentaFinal: ventaToPedidoResponse(ventaFinal),
		TotalFinal: totalFinal,
	}
	if factura != nil {
		resp.Factura = &dto.FacturaResponse{
			ID:          factura.ID.String(),
			Numero:      factura.Numero,
			NITCliente:  factura.NITCliente,
			RazonSocial: factura.RazonSocial,
			Total:       factura.Total,
			Fecha:       factura.Fecha.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// abrirSesionTx opens the mesa session inside the intake transaction: stale
// leftovers are settled first, then the mesa goes en_uso with a fresh
// prefactura. Mirrors MesaService.Abrir.
func (s *pedidoService) abrirSesionTx(tx *gorm.DB, actor Actor, mesa *model.Mesa, sucursal uuid.UUID) error {
	if err := s.ventas.CerrarAbiertasDeMesaTx(tx, mesa.Numero, sucursal, actor.IDRestaurante); err != nil {
		return err
	}
	if stale, err := s.prefacturas.FindAbiertaByMesaTx(tx, mesa.ID, actor.IDRestaurante); err == nil {
		log.Warn().
			Int("mesa", mesa.Numero).
			Str("prefactura", stale.ID.String()).
			Msg("prefactura abierta huerfana cerrada al abrir por pedido")
		if err := s.prefacturas.CerrarTx(tx, stale.ID, actor.IDRestaurante, decimal.Zero); err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := s.mesas.AbrirTx(tx, mesa.ID, actor.IDRestaurante, actor.IDVendedor); err != nil {
		return err
	}
	return s.prefacturas.CrearTx(tx, &model.Prefactura{
		IDRestaurante:  actor.IDRestaurante,
		IDMesa:         mesa.ID,
		TotalAcumulado: decimal.Zero,
		Estado:         model.PrefacturaAbierta,
		FechaApertura:  time.Now(),
	})
}

// resolverLineas loads and validates every product of the order and computes
// line subtotals and the order total.
func (s *pedidoService) resolverLineas(ctx context.Context, actor Actor, items []dto.ItemPedidoRequest) ([]lineaPedido, decimal.Decimal, error) {
	lineas := make([]lineaPedido, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		id, err := uuid.Parse(item.IDProducto)
		if err != nil {
			return nil, decimal.Zero, apierror.Validationf("id_producto invalido: %q", item.IDProducto)
		}
		if item.Cantidad < 1 {
			return nil, decimal.Zero, apierror.Validationf("cantidad debe ser positiva")
		}
		producto, err := s.productos.FindByID(ctx, id, actor.IDRestaurante)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, apierror.NotFoundf("Producto %s no encontrado", item.IDProducto)
			}
			return nil, decimal.Zero, apierror.Persistence(err)
		}
		if !producto.Activo {
			return nil, decimal.Zero, apierror.Conflictf("inactivo", "El producto %q no esta disponible", producto.Nombre)
		}

		subtotal := producto.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		lineas = append(lineas, lineaPedido{
			producto: producto,
			cantidad: item.Cantidad,
			obs:      item.Observaciones,
			subtotal: subtotal,
		})
		total = total.Add(subtotal)
	}
	return lineas, total, nil
}

func (s *pedidoService) resolverSucursal(ctx context.Context, actor Actor, raw *string) (uuid.UUID, error) {
	id := actor.IDSucursal
	if raw != nil {
		parsed, err := uuid.Parse(*raw)
		if err != nil {
			return uuid.Nil, apierror.Validationf("id_sucursal invalido")
		}
		id = parsed
	}
	if _, err := s.catalogo.FindSucursalByID(ctx, id, actor.IDRestaurante); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apierror.NotFoundf("Sucursal no encontrada")
		}
		return uuid.Nil, apierror.Persistence(err)
	}
	return id, nil
}

func (s *pedidoService) resolverMetodoPago(ctx context.Context, actor Actor, descripcion string) (*model.MetodoPago, error) {
	if descripcion == MetodoPendienteCaja {
		// Auto-provisioned: older tenants predate the placeholder method.
		m, err := s.catalogo.FindOrCreateMetodoPago(ctx, MetodoPendienteCaja, actor.IDRestaurante)
		if err != nil {
			return nil, apierror.Persistence(err)
		}
		return m, nil
	}

	m, err := s.catalogo.FindMetodoPagoByDescripcion(ctx, descripcion, actor.IDRestaurante)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Persistence(err)
	}

	nf := apierror.NotFoundf("Metodo de pago %q no encontrado", descripcion)
	if metodos, lerr := s.catalogo.ListMetodosPago(ctx, actor.IDRestaurante); lerr == nil && len(metodos) > 0 {
		nombres := make([]string, 0, len(metodos))
		for _, md := range metodos {
			nombres = append(nombres, md.Descripcion)
		}
		nf.Alternativas = "Metodos disponibles: " + strings.Join(nombres, ", ")
	}
	return nil, nf
}

func (s *pedidoService) buscarMesaPorNumero(ctx context.Context, actor Actor, numero int, sucursal uuid.UUID) (*model.Mesa, error) {
	mesa, err := s.mesas.FindByNumero(ctx, numero, sucursal, actor.IDRestaurante)
	if err == nil {
		return mesa, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Persistence(err)
	}
	nf := apierror.NotFoundf("Mesa %d no encontrada en la sucursal", numero)
	if numeros, lerr := s.mesas.ListNumeros(ctx, sucursal, actor.IDRestaurante); lerr == nil && len(numeros) > 0 {
		partes := make([]string, 0, len(numeros))
		for _, n := range numeros {
			partes = append(partes, fmt.Sprint(n))
		}
		nf.Alternativas = "Mesas disponibles: " + strings.Join(partes, ", ")
	}
	return nil, nf
}

func (s *pedidoService) notificarCocina(ctx context.Context, ev worker.EventoCocina) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueEventoCocina(ctx, ev); err != nil {
		log.Warn().Err(err).Str("evento", ev.Evento).Msg("evento de cocina no encolado")
	}
}

func (s *pedidoService) enviarRecibo(ctx context.Context, actor Actor, venta *model.Venta, metodoPago string, total decimal.Decimal, destinatario string) {
	if s.dispatcher == nil {
		return
	}
	nombre := "MentaPOS"
	if rest, err := s.catalogo.FindRestauranteByID(ctx, actor.IDRestaurante); err == nil {
		nombre = rest.Nombre
	}
	pdfPath, err := infra.GenerarReciboPDF(nombre, venta, metodoPago, total, s.pdfPath)
	if err != nil {
		log.Warn().Err(err).Msg("recibo PDF no generado")
		pdfPath = ""
	}
	job := worker.EmailRecibo{
		Destinatario: destinatario,
		Asunto:       fmt.Sprintf("Recibo de %s", nombre),
		Cuerpo:       fmt.Sprintf("Gracias por su visita. Total: $%s", total.StringFixed(2)),
		PDFPath:      pdfPath,
	}
	if err := s.dispatcher.EnqueueEmailRecibo(ctx, job); err != nil {
		log.Warn().Err(err).Str("destinatario", destinatario).Msg("recibo no encolado")
	}
}
