package service_test

import (
	"context"
	"errors"
	"testing"

	"mentapos/internal/apierror"
	"mentapos/internal/config"
	"mentapos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescontarStock_ClampEnCero(t *testing.T) {
	e := nuevoEntorno()
	p := e.seedProducto("Jugo", 8, 2)
	svc := service.NewInventarioService(e.productos, config.StockFailureAbort)

	nuevo, err := svc.DescontarStockTx(context.Background(), nil, p.ID, e.actor.IDRestaurante, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, nuevo)
}

func TestDescontarStock_FalloConAbort(t *testing.T) {
	e := nuevoEntorno()
	p := e.seedProducto("Jugo", 8, 2)
	e.productos.falloStock = errors.New("deadlock detected")
	svc := service.NewInventarioService(e.productos, config.StockFailureAbort)

	_, err := svc.DescontarStockTx(context.Background(), nil, p.ID, e.actor.IDRestaurante, 1)

	var pe *apierror.PersistenceError
	require.ErrorAs(t, err, &pe)
}

func TestDescontarStock_FalloConContinue(t *testing.T) {
	e := nuevoEntorno()
	p := e.seedProducto("Jugo", 8, 2)
	e.productos.falloStock = errors.New("deadlock detected")
	svc := service.NewInventarioService(e.productos, config.StockFailureContinue)

	// Policy warn-and-continue: the failure is swallowed so the sale commits.
	nuevo, err := svc.DescontarStockTx(context.Background(), nil, p.ID, e.actor.IDRestaurante, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, nuevo)
	assert.Equal(t, 2, e.productos.productos[p.ID].StockActual, "stock intacto")
}

func TestRegistrarPedido_FalloStockAbortaVenta(t *testing.T) {
	e := nuevoEntorno()
	e.seedMesa(1, "libre")
	p := e.seedProducto("Jugo", 8, 2)
	e.productos.falloStock = errors.New("deadlock detected")
	svc := buildPedidoSvc(e, config.StockFailureAbort)

	_, err := svc.RegistrarPedido(context.Background(), e.actor, pedidoMesa(1, item(p, 1)))

	var pe *apierror.PersistenceError
	require.ErrorAs(t, err, &pe)
}

func TestRegistrarPedido_FalloStockContinuaVenta(t *testing.T) {
	e := nuevoEntorno()
	e.seedMesa(1, "libre")
	p := e.seedProducto("Jugo", 8, 2)
	e.productos.falloStock = errors.New("deadlock detected")
	svc := buildPedidoSvc(e, config.StockFailureContinue)

	resp, err := svc.RegistrarPedido(context.Background(), e.actor, pedidoMesa(1, item(p, 1)))
	require.NoError(t, err)
	assert.Equal(t, "recibido", resp.Estado)
}

func TestAjustarStock(t *testing.T) {
	e := nuevoEntorno()
	p := e.seedProducto("Jugo", 8, 2)
	svc := service.NewInventarioService(e.productos, config.StockFailureAbort)

	nuevo, err := svc.AjustarStock(context.Background(), e.actor, p.ID, 10, "reposicion")
	require.NoError(t, err)
	assert.Equal(t, 12, nuevo)

	// Negative adjustments clamp at zero too.
	nuevo, err = svc.AjustarStock(context.Background(), e.actor, p.ID, -50, "merma")
	require.NoError(t, err)
	assert.Equal(t, 0, nuevo)
}
