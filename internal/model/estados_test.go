package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstadoMesa_Transiciones(t *testing.T) {
	casos := []struct {
		de, a    EstadoMesa
		permitida bool
	}{
		{MesaLibre, MesaEnUso, true},
		{MesaLibre, MesaReservada, true},
		{MesaLibre, MesaMantenimiento, true},
		{MesaLibre, MesaPendienteCobro, false},
		{MesaEnUso, MesaPendienteCobro, true},
		{MesaEnUso, MesaLibre, true},
		{MesaEnUso, MesaReservada, false},
		{MesaPendienteCobro, MesaLibre, true},
		{MesaPendienteCobro, MesaEnUso, false},
		{MesaPendienteCobro, MesaMantenimiento, false},
		{MesaReservada, MesaEnUso, true},
		{MesaReservada, MesaLibre, true},
		{MesaReservada, MesaMantenimiento, false},
		{MesaMantenimiento, MesaLibre, true},
		{MesaMantenimiento, MesaEnUso, false},
	}
	for _, c := range casos {
		assert.Equal(t, c.permitida, c.de.PuedeTransicionar(c.a), "%s → %s", c.de, c.a)
	}
}

func TestEstadoMesa_Valida(t *testing.T) {
	assert.True(t, MesaLibre.Valida())
	assert.True(t, MesaPendienteCobro.Valida())
	assert.False(t, EstadoMesa("ocupada").Valida())
	assert.False(t, EstadoMesa("").Valida())
}

func TestEstadoVenta_FlujoMonotono(t *testing.T) {
	casos := []struct {
		de, a    EstadoVenta
		permitida bool
	}{
		{VentaRecibido, VentaEnPreparacion, true},
		{VentaRecibido, VentaListoParaServir, false},
		{VentaRecibido, VentaEntregado, false},
		{VentaRecibido, VentaCancelado, true},
		{VentaEnPreparacion, VentaListoParaServir, true},
		{VentaEnPreparacion, VentaRecibido, false},
		{VentaEnPreparacion, VentaCancelado, true},
		{VentaListoParaServir, VentaEntregado, true},
		{VentaListoParaServir, VentaEnPreparacion, false},
		{VentaListoParaServir, VentaCancelado, true},
		{VentaEntregado, VentaCancelado, false},
		{VentaCancelado, VentaRecibido, false},
		{VentaCerrada, VentaRecibido, false},
	}
	for _, c := range casos {
		assert.Equal(t, c.permitida, c.de.PuedeTransicionar(c.a), "%s → %s", c.de, c.a)
	}
}

func TestEstadoVenta_Terminal(t *testing.T) {
	assert.False(t, VentaRecibido.Terminal())
	assert.False(t, VentaEnPreparacion.Terminal())
	assert.False(t, VentaListoParaServir.Terminal())
	assert.True(t, VentaEntregado.Terminal())
	assert.True(t, VentaCancelado.Terminal())
	assert.True(t, VentaCerrada.Terminal())
}

func TestEstadoVenta_Whitelist(t *testing.T) {
	for _, e := range EstadosVentaPermitidos {
		assert.True(t, e.EnWhitelist(), string(e))
	}
	assert.False(t, VentaCerrada.EnWhitelist(), "cerrada es interno")
	assert.False(t, EstadoVenta("pagado").EnWhitelist())
}

func TestParseTipoServicio(t *testing.T) {
	for _, s := range []string{"Mesa", "Delivery", "Para Llevar"} {
		tipo, err := ParseTipoServicio(s)
		assert.NoError(t, err)
		assert.Equal(t, s, string(tipo))
	}
	_, err := ParseTipoServicio("Barra")
	assert.Error(t, err)
	_, err = ParseTipoServicio("mesa")
	assert.Error(t, err, "sensible a mayusculas")
}
