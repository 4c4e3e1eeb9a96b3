package service_test

import (
	"context"
	"testing"

	"mentapos/internal/apierror"
	"mentapos/internal/config"
	"mentapos/internal/dto"
	"mentapos/internal/model"
	"mentapos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPedidoSvc(e *entorno, politica string) service.PedidoService {
	inventario := service.NewInventarioService(e.productos, politica)
	return service.NewPedidoService(
		e.mesas, e.prefacturas, e.ventas, e.productos, e.catalogo,
		inventario, nil, nil, "",
	)
}

func pedidoMesa(numero int, items ...dto.ItemPedidoRequest) dto.RegistrarPedidoRequest {
	return dto.RegistrarPedidoRequest{
		Items:        items,
		TipoServicio: "Mesa",
		MetodoPago:   "efectivo",
		MesaNumero:   &numero,
	}
}

func item(p *model.Producto, cantidad int) dto.ItemPedidoRequest {
	return dto.ItemPedidoRequest{IDProducto: p.ID.String(), Cantidad: cantidad}
}

func TestRegistrarPedido_AbreMesaLibre(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(5, model.MesaLibre)
	pizza := e.seedProducto("Pizza Margarita", 45.50, 10)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	resp, err := svc.RegistrarPedido(context.Background(), e.actor, pedidoMesa(5, item(pizza, 2)))
	require.NoError(t, err)

	assert.Equal(t, "recibido", resp.Estado)
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(91.00)), "total %s", resp.Total)
	require.NotNil(t, resp.MesaNumero)
	assert.Equal(t, 5, *resp.MesaNumero)
	assert.Equal(t, "en_uso", resp.EstadoMesa)
	require.NotNil(t, resp.TotalAcumulado)
	assert.True(t, resp.TotalAcumulado.Equal(decimal.NewFromFloat(91.00)))

	// The mesa session opened inside the same transaction.
	actual := e.mesas.mesas[mesa.ID]
	assert.Equal(t, model.MesaEnUso, actual.Estado)
	assert.NotNil(t, actual.IDVentaActual)
	assert.NotNil(t, actual.IDMeseroActual)

	// A fresh prefactura carries the order total.
	pre, err := e.prefacturas.FindAbiertaByMesa(context.Background(), mesa.ID, e.actor.IDRestaurante)
	require.NoError(t, err)
	assert.True(t, pre.TotalAcumulado.Equal(decimal.NewFromFloat(91.00)))

	// Stock decremented.
	assert.Equal(t, 8, e.productos.productos[pizza.ID].StockActual)
}

func TestRegistrarPedido_AcumulaEnMesaEnUso(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(3, model.MesaLibre)
	pizza := e.seedProducto("Pizza", 40, 20)
	refresco := e.seedProducto("Refresco", 10, 20)
	svc := buildPedidoSvc(e, config.StockFailureAbort)
	ctx := context.Background()

	_, err := svc.RegistrarPedido(ctx, e.actor, pedidoMesa(3, item(pizza, 1)))
	require.NoError(t, err)
	resp, err := svc.RegistrarPedido(ctx, e.actor, pedidoMesa(3, item(refresco, 3)))
	require.NoError(t, err)

	// Second order accumulates on the same session, no re-open.
	actual := e.mesas.mesas[mesa.ID]
	assert.Equal(t, model.MesaEnUso, actual.Estado)
	assert.True(t, actual.TotalAcumulado.Equal(decimal.NewFromInt(70)), "acumulado %s", actual.TotalAcumulado)
	require.NotNil(t, resp.TotalAcumulado)
	assert.True(t, resp.TotalAcumulado.Equal(decimal.NewFromInt(70)))

	pre, err := e.prefacturas.FindAbiertaByMesa(ctx, mesa.ID, e.actor.IDRestaurante)
	require.NoError(t, err)
	assert.True(t, pre.TotalAcumulado.Equal(decimal.NewFromInt(70)))
	assert.Len(t, e.prefacturas.prefacturas, 1, "la sesion reutiliza la prefactura")
	assert.Len(t, e.ventas.ventas, 2)
}

func TestRegistrarPedido_MesaPendienteCobro_Conflicto(t *testing.T) {
	e := nuevoEntorno()
	e.seedMesa(7, model.MesaPendienteCobro)
	pizza := e.seedProducto("Pizza", 40, 5)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	_, err := svc.RegistrarPedido(context.Background(), e.actor, pedidoMesa(7, item(pizza, 1)))

	var ce *apierror.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "pendiente_cobro", ce.EstadoActual)
	// Nothing was written and no stock moved.
	assert.Empty(t, e.ventas.ventas)
	assert.Equal(t, 5, e.productos.productos[pizza.ID].StockActual)
}

func TestRegistrarPedido_MesaInexistente_SugiereAlternativas(t *testing.T) {
	e := nuevoEntorno()
	e.seedMesa(1, model.MesaLibre)
	e.seedMesa(2, model.MesaLibre)
	pizza := e.seedProducto("Pizza", 40, 5)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	_, err := svc.RegistrarPedido(context.Background(), e.actor, pedidoMesa(99, item(pizza, 1)))

	var nf *apierror.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Detail, "99")
	assert.Contains(t, nf.Alternativas, "Mesas disponibles")
}

func TestRegistrarPedido_MesaNumeroRequerido(t *testing.T) {
	e := nuevoEntorno()
	pizza := e.seedProducto("Pizza", 40, 5)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	req := dto.RegistrarPedidoRequest{
		Items:        []dto.ItemPedidoRequest{item(pizza, 1)},
		TipoServicio: "Mesa",
		MetodoPago:   "efectivo",
	}
	_, err := svc.RegistrarPedido(context.Background(), e.actor, req)

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Detail, "mesa_numero")
}

func TestRegistrarPedido_ParaLlevar_SinMesa(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(1, model.MesaLibre)
	cafe := e.seedProducto("Cafe", 12, 6)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	req := dto.RegistrarPedidoRequest{
		Items:        []dto.ItemPedidoRequest{item(cafe, 2)},
		TipoServicio: "Para Llevar",
		MetodoPago:   "efectivo",
	}
	resp, err := svc.RegistrarPedido(context.Background(), e.actor, req)
	require.NoError(t, err)

	assert.Nil(t, resp.MesaNumero)
	assert.Empty(t, resp.EstadoMesa)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(24)))
	// Takeaway keeps the requested payment method and never touches mesas.
	assert.Equal(t, model.MesaLibre, e.mesas.mesas[mesa.ID].Estado)
	assert.Empty(t, e.prefacturas.prefacturas)
	for _, v := range e.ventas.ventas {
		assert.Equal(t, e.catalogo.metodos["efectivo"].ID, v.IDPago)
	}
}

func TestRegistrarPedido_MesaAsignaPendienteCaja(t *testing.T) {
	e := nuevoEntorno()
	e.seedMesa(4, model.MesaLibre)
	pizza := e.seedProducto("Pizza", 40, 5)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	// The client sends "tarjeta" but table orders always settle at caja.
	req := pedidoMesa(4, item(pizza, 1))
	req.MetodoPago = "tarjeta"
	_, err := svc.RegistrarPedido(context.Background(), e.actor, req)
	require.NoError(t, err)

	pendiente, ok := e.catalogo.metodos[service.MetodoPendienteCaja]
	require.True(t, ok, "metodo pendiente_caja auto-creado")
	for _, v := range e.ventas.ventas {
		assert.Equal(t, pendiente.ID, v.IDPago)
	}
}

func TestRegistrarPedido_StockClampeadoEnCero(t *testing.T) {
	e := nuevoEntorno()
	e.seedMesa(2, model.MesaLibre)
	pizza := e.seedProducto("Pizza", 40, 2)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	// Ordering 5 with stock 2: the sale completes and stock clamps at 0.
	resp, err := svc.RegistrarPedido(context.Background(), e.actor, pedidoMesa(2, item(pizza, 5)))
	require.NoError(t, err)

	assert.True(t, resp.Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 0, e.productos.productos[pizza.ID].StockActual)
}

func TestRegistrarPedido_ProductoInactivo(t *testing.T) {
	e := nuevoEntorno()
	e.seedMesa(2, model.MesaLibre)
	pizza := e.seedProducto("Pizza", 40, 5)
	e.productos.productos[pizza.ID].Activo = false
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	_, err := svc.RegistrarPedido(context.Background(), e.actor, pedidoMesa(2, item(pizza, 1)))

	var ce *apierror.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Detail, "Pizza")
}

func TestRegistrarPedido_TipoServicioInvalido(t *testing.T) {
	e := nuevoEntorno()
	pizza := e.seedProducto("Pizza", 40, 5)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	req := dto.RegistrarPedidoRequest{
		Items:        []dto.ItemPedidoRequest{item(pizza, 1)},
		TipoServicio: "Barra",
		MetodoPago:   "efectivo",
	}
	_, err := svc.RegistrarPedido(context.Background(), e.actor, req)

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCerrarMesaConFactura(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(6, model.MesaLibre)
	pizza := e.seedProducto("Pizza", 40, 10)
	svc := buildPedidoSvc(e, config.StockFailureAbort)
	ctx := context.Background()

	_, err := svc.RegistrarPedido(ctx, e.actor, pedidoMesa(6, item(pizza, 2)))
	require.NoError(t, err)

	resp, err := svc.CerrarMesaConFactura(ctx, e.actor, dto.CerrarMesaRequest{
		IDMesa:     mesa.ID.String(),
		MetodoPago: "tarjeta",
		InvoiceData: &dto.InvoiceData{
			NIT:         "1234567",
			RazonSocial: "Empresa SRL",
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalFinal.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, "libre", resp.Mesa.Estado)
	assert.Equal(t, string(model.VentaCerrada), resp.VentaFinal.Estado)
	require.NotNil(t, resp.Factura)
	assert.Equal(t, "1234567", resp.Factura.NITCliente)
	assert.True(t, resp.Factura.Total.Equal(decimal.NewFromInt(80)))
	require.Len(t, e.ventas.facturas, 1)

	// Mesa back to libre with zeroed session columns.
	actual := e.mesas.mesas[mesa.ID]
	assert.Equal(t, model.MesaLibre, actual.Estado)
	assert.True(t, actual.TotalAcumulado.IsZero())
	assert.Nil(t, actual.IDVentaActual)

	// Every session venta settled; prefactura frozen at the session total.
	for _, v := range e.ventas.ventas {
		assert.Equal(t, model.VentaCerrada, v.Estado)
	}
	for _, p := range e.prefacturas.prefacturas {
		assert.Equal(t, model.PrefacturaCerrada, p.Estado)
		assert.True(t, p.TotalAcumulado.Equal(decimal.NewFromInt(80)))
	}
}

func TestCerrarMesa_SinFactura(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(6, model.MesaLibre)
	pizza := e.seedProducto("Pizza", 40, 10)
	svc := buildPedidoSvc(e, config.StockFailureAbort)
	ctx := context.Background()

	_, err := svc.RegistrarPedido(ctx, e.actor, pedidoMesa(6, item(pizza, 1)))
	require.NoError(t, err)

	resp, err := svc.CerrarMesaConFactura(ctx, e.actor, dto.CerrarMesaRequest{
		IDMesa:     mesa.ID.String(),
		MetodoPago: "efectivo",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Factura)
	assert.Empty(t, e.ventas.facturas)
}

func TestCerrarMesa_DesdePendienteCobro(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(8, model.MesaPendienteCobro)
	mesa.TotalAcumulado = decimal.NewFromInt(150)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	resp, err := svc.CerrarMesaConFactura(context.Background(), e.actor, dto.CerrarMesaRequest{
		IDMesa:     mesa.ID.String(),
		MetodoPago: "tarjeta",
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalFinal.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, model.MesaLibre, e.mesas.mesas[mesa.ID].Estado)
}

func TestCerrarMesa_MesaLibre_Conflicto(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(9, model.MesaLibre)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	_, err := svc.CerrarMesaConFactura(context.Background(), e.actor, dto.CerrarMesaRequest{
		IDMesa:     mesa.ID.String(),
		MetodoPago: "efectivo",
	})

	var ce *apierror.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "libre", ce.EstadoActual)
}

func TestCerrarMesa_RechazaPendienteCaja(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(10, model.MesaEnUso)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	_, err := svc.CerrarMesaConFactura(context.Background(), e.actor, dto.CerrarMesaRequest{
		IDMesa:     mesa.ID.String(),
		MetodoPago: service.MetodoPendienteCaja,
	})

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	// The mesa keeps its session.
	assert.Equal(t, model.MesaEnUso, e.mesas.mesas[mesa.ID].Estado)
}

func TestCerrarMesa_MetodoPagoDesconocido(t *testing.T) {
	e := nuevoEntorno()
	mesa := e.seedMesa(11, model.MesaEnUso)
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	_, err := svc.CerrarMesaConFactura(context.Background(), e.actor, dto.CerrarMesaRequest{
		IDMesa:     mesa.ID.String(),
		MetodoPago: "cheque",
	})

	var nf *apierror.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Alternativas, "efectivo")
}
