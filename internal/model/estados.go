package model

import "fmt"

// EstadoMesa is the lifecycle state of a mesa. Transitions are driven only by
// the pedido/mesa services and must pass PuedeTransicionar.
type EstadoMesa string

const (
	MesaLibre          EstadoMesa = "libre"
	MesaEnUso          EstadoMesa = "en_uso"
	MesaPendienteCobro EstadoMesa = "pendiente_cobro"
	MesaReservada      EstadoMesa = "reservada"
	MesaMantenimiento  EstadoMesa = "mantenimiento"
)

// mesaTransiciones is the allowed transition graph. "libre" is both the
// initial and the terminal-of-session state: cerrar/liberar always land here.
var mesaTransiciones = map[EstadoMesa][]EstadoMesa{
	MesaLibre:          {MesaEnUso, MesaReservada, MesaMantenimiento},
	MesaEnUso:          {MesaPendienteCobro, MesaLibre},
	MesaPendienteCobro: {MesaLibre},
	MesaReservada:      {MesaLibre, MesaEnUso},
	MesaMantenimiento:  {MesaLibre},
}

// Valida reports whether e is a known mesa state.
func (e EstadoMesa) Valida() bool {
	_, ok := mesaTransiciones[e]
	return ok
}

// PuedeTransicionar reports whether the transition e → destino is allowed.
func (e EstadoMesa) PuedeTransicionar(destino EstadoMesa) bool {
	for _, d := range mesaTransiciones[e] {
		if d == destino {
			return true
		}
	}
	return false
}

// Descripcion returns the human-readable label shown to end users in
// conflict messages.
func (e EstadoMesa) Descripcion() string {
	switch e {
	case MesaLibre:
		return "disponible"
	case MesaEnUso:
		return "ocupada"
	case MesaPendienteCobro:
		return "pendiente de cobro"
	case MesaReservada:
		return "reservada"
	case MesaMantenimiento:
		return "en mantenimiento"
	}
	return string(e)
}

// EstadoVenta is the kitchen-workflow state of a venta.
type EstadoVenta string

const (
	VentaRecibido        EstadoVenta = "recibido"
	VentaEnPreparacion   EstadoVenta = "en_preparacion"
	VentaListoParaServir EstadoVenta = "listo_para_servir"
	VentaEntregado       EstadoVenta = "entregado"
	VentaCancelado       EstadoVenta = "cancelado"
	// VentaCerrada is an internal settling state: assigned when a mesa is
	// re-opened over stale orders from an improperly closed session, and to
	// open orders settled by cerrar-mesa. It is not part of the kitchen
	// whitelist and cannot be requested through the API.
	VentaCerrada EstadoVenta = "cerrada"
)

// EstadosVentaPermitidos is the whitelist accepted by the status-update
// endpoints. Any other value is a validation error.
var EstadosVentaPermitidos = []EstadoVenta{
	VentaRecibido, VentaEnPreparacion, VentaListoParaServir, VentaEntregado, VentaCancelado,
}

// ventaTransiciones: the kitchen flow is monotonic; cancelado is reachable
// from any non-terminal state. entregado/cancelado/cerrada are terminal.
var ventaTransiciones = map[EstadoVenta][]EstadoVenta{
	VentaRecibido:        {VentaEnPreparacion, VentaCancelado},
	VentaEnPreparacion:   {VentaListoParaServir, VentaCancelado},
	VentaListoParaServir: {VentaEntregado, VentaCancelado},
	VentaEntregado:       {},
	VentaCancelado:       {},
	VentaCerrada:         {},
}

// EnWhitelist reports whether e may be requested through the API.
func (e EstadoVenta) EnWhitelist() bool {
	for _, v := range EstadosVentaPermitidos {
		if v == e {
			return true
		}
	}
	return false
}

// Terminal reports whether e admits no further transitions.
func (e EstadoVenta) Terminal() bool {
	return len(ventaTransiciones[e]) == 0
}

// PuedeTransicionar reports whether e → destino follows the kitchen flow.
func (e EstadoVenta) PuedeTransicionar(destino EstadoVenta) bool {
	for _, d := range ventaTransiciones[e] {
		if d == destino {
			return true
		}
	}
	return false
}

// EstadosVentaAbiertos are the states considered "open" when computing a mesa
// session total and when force-closing stale orders on mesa open.
var EstadosVentaAbiertos = []EstadoVenta{
	VentaRecibido, VentaEnPreparacion, VentaListoParaServir, VentaEntregado,
}

// EstadoPrefactura is the state of a running tab.
type EstadoPrefactura string

const (
	PrefacturaAbierta EstadoPrefactura = "abierta"
	PrefacturaCerrada EstadoPrefactura = "cerrada"
)

// TipoServicio distinguishes table service from takeaway flows.
type TipoServicio string

const (
	ServicioMesa       TipoServicio = "Mesa"
	ServicioDelivery   TipoServicio = "Delivery"
	ServicioParaLlevar TipoServicio = "Para Llevar"
)

func (t TipoServicio) Valida() bool {
	switch t {
	case ServicioMesa, ServicioDelivery, ServicioParaLlevar:
		return true
	}
	return false
}

func ParseTipoServicio(s string) (TipoServicio, error) {
	t := TipoServicio(s)
	if !t.Valida() {
		return "", fmt.Errorf("tipo_servicio invalido: %q", s)
	}
	return t, nil
}
